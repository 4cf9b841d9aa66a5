// AngelaMos | 2026
// handler.go

package collection

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/riff/internal/core"
	"github.com/carterperez-dev/riff/internal/middleware"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: core.NewValidator(),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/collections", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Delete("/{id}", h.Delete)
		r.Post("/{id}/pieces", h.AddPiece)
		r.Delete("/{id}/pieces/{pieceId}", h.RemovePiece)
	})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		core.BadRequest(w, "Invalid request body")
		return false
	}

	if err := h.validator.Struct(dst); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return false
	}

	return true
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	collections, err := h.service.List(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, core.Envelope{"collections": ToSummaryResponseList(collections)})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateCollectionRequest
	if !h.decode(w, r, &req) {
		return
	}

	c, err := h.service.Create(r.Context(), middleware.GetUserID(r.Context()), req)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.Created(w, core.Envelope{"collection": ToDetailResponse(c)})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.Get(
		r.Context(),
		chi.URLParam(r, "id"),
		middleware.GetUserID(r.Context()),
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, core.Envelope{"collection": ToDetailResponse(c)})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.service.Delete(
		r.Context(),
		chi.URLParam(r, "id"),
		middleware.GetUserID(r.Context()),
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, core.Envelope{"message": "Collection deleted successfully"})
}

func (h *Handler) AddPiece(w http.ResponseWriter, r *http.Request) {
	var req AddPieceRequest
	if !h.decode(w, r, &req) {
		return
	}

	err := h.service.AddPiece(
		r.Context(),
		chi.URLParam(r, "id"),
		middleware.GetUserID(r.Context()),
		req.PieceID,
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, core.Envelope{"message": "Piece added to collection"})
}

func (h *Handler) RemovePiece(w http.ResponseWriter, r *http.Request) {
	err := h.service.RemovePiece(
		r.Context(),
		chi.URLParam(r, "id"),
		middleware.GetUserID(r.Context()),
		chi.URLParam(r, "pieceId"),
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, core.Envelope{"message": "Piece removed from collection"})
}
