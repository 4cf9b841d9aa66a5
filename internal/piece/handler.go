// AngelaMos | 2026
// handler.go

package piece

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
	r.Route("/pieces", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Patch("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
		r.Patch("/{id}/autosave", h.Autosave)
		r.Post("/{id}/share", h.Share)
		r.Post("/{id}/unshare", h.Unshare)
		r.Get("/{id}/versions", h.ListVersions)
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
	userID := middleware.GetUserID(r.Context())
	q := r.URL.Query()

	pieces, err := h.service.List(r.Context(), userID, ListFilter{
		AuthorID: q.Get("authorId"),
		CircleID: q.Get("circleId"),
	})
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, core.Envelope{"pieces": ToPieceResponseList(pieces, userID)})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreatePieceRequest
	if !h.decode(w, r, &req) {
		return
	}

	userID := middleware.GetUserID(r.Context())

	p, err := h.service.Create(r.Context(), userID, req)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.Created(w, core.Envelope{"piece": ToPieceResponse(p, userID)})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	detail, err := h.service.Get(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, core.Envelope{"piece": ToDetailResponse(detail, userID)})
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdatePieceRequest
	if !h.decode(w, r, &req) {
		return
	}

	userID := middleware.GetUserID(r.Context())

	p, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), userID, req)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, core.Envelope{"piece": ToPieceResponse(p, userID)})
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

	core.OK(w, core.Envelope{"message": "Piece deleted successfully"})
}

func (h *Handler) Autosave(w http.ResponseWriter, r *http.Request) {
	var req AutosaveRequest
	if !h.decode(w, r, &req) {
		return
	}

	saved, err := h.service.Autosave(
		r.Context(),
		chi.URLParam(r, "id"),
		middleware.GetUserID(r.Context()),
		req.CurrentContent,
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, core.Envelope{"piece": saved})
}

func (h *Handler) Share(w http.ResponseWriter, r *http.Request) {
	var req ShareRequest
	if !h.decode(w, r, &req) {
		return
	}

	share, err := h.service.Share(
		r.Context(),
		chi.URLParam(r, "id"),
		middleware.GetUserID(r.Context()),
		req,
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, core.Envelope{"share": ToShareResponse(share, true)})
}

func (h *Handler) Unshare(w http.ResponseWriter, r *http.Request) {
	var req UnshareRequest
	if !h.decode(w, r, &req) {
		return
	}

	err := h.service.Unshare(
		r.Context(),
		chi.URLParam(r, "id"),
		middleware.GetUserID(r.Context()),
		req.CircleID,
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, core.Envelope{"message": "Piece unshared from circle"})
}

func (h *Handler) ListVersions(w http.ResponseWriter, r *http.Request) {
	versions, err := h.service.ListVersions(
		r.Context(),
		chi.URLParam(r, "id"),
		middleware.GetUserID(r.Context()),
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, core.Envelope{"versions": ToVersionResponseList(versions)})
}
