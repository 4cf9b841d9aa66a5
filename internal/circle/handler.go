// AngelaMos | 2026
// handler.go

package circle

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/riff/internal/access"
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
	r.Route("/circles", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Patch("/{id}", h.Update)
		r.Post("/{id}/invite", h.Invite)
		r.Post("/{id}/remove", h.RemoveMember)
		r.Post("/{id}/leave", h.Leave)
		r.Patch("/{id}/role", h.SetRole)
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
	includeArchived := r.URL.Query().Get("includeArchived") == "true"

	circles, err := h.service.List(
		r.Context(),
		middleware.GetUserID(r.Context()),
		includeArchived,
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, core.Envelope{"circles": ToSummaryResponseList(circles)})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateCircleRequest
	if !h.decode(w, r, &req) {
		return
	}

	detail, err := h.service.Create(
		r.Context(),
		middleware.GetUserID(r.Context()),
		req,
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.Created(w, core.Envelope{"circle": ToDetailResponse(detail)})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	detail, err := h.service.Get(
		r.Context(),
		chi.URLParam(r, "id"),
		middleware.GetUserID(r.Context()),
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, core.Envelope{"circle": ToDetailResponse(detail)})
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateCircleRequest
	if !h.decode(w, r, &req) {
		return
	}

	detail, err := h.service.Update(
		r.Context(),
		chi.URLParam(r, "id"),
		middleware.GetUserID(r.Context()),
		req,
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, core.Envelope{"circle": ToDetailResponse(detail)})
}

func (h *Handler) Invite(w http.ResponseWriter, r *http.Request) {
	var req InviteRequest
	if !h.decode(w, r, &req) {
		return
	}

	member, err := h.service.Invite(
		r.Context(),
		chi.URLParam(r, "id"),
		middleware.GetUserID(r.Context()),
		req,
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, core.Envelope{"member": ToMemberResponse(member)})
}

func (h *Handler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	var req RemoveMemberRequest
	if !h.decode(w, r, &req) {
		return
	}

	err := h.service.RemoveMember(
		r.Context(),
		chi.URLParam(r, "id"),
		middleware.GetUserID(r.Context()),
		req.UserID,
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, core.Envelope{"message": "Member removed successfully"})
}

func (h *Handler) Leave(w http.ResponseWriter, r *http.Request) {
	err := h.service.Leave(
		r.Context(),
		chi.URLParam(r, "id"),
		middleware.GetUserID(r.Context()),
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, core.Envelope{"message": "Left circle successfully"})
}

func (h *Handler) SetRole(w http.ResponseWriter, r *http.Request) {
	var req SetRoleRequest
	if !h.decode(w, r, &req) {
		return
	}

	member, err := h.service.SetRole(
		r.Context(),
		chi.URLParam(r, "id"),
		middleware.GetUserID(r.Context()),
		req,
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	env := core.Envelope{"member": ToMemberResponse(member)}
	if member.Role == access.RoleOwner {
		env["message"] = "Ownership transferred successfully"
	}

	core.OK(w, env)
}
