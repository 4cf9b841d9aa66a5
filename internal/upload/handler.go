// AngelaMos | 2026
// handler.go

package upload

import (
	"errors"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/riff/internal/core"
	"github.com/carterperez-dev/riff/internal/middleware"
)

// multipartOverhead covers boundaries and part headers around the file.
const multipartOverhead = 1 << 20

type Handler struct {
	store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/upload", func(r chi.Router) {
		r.Use(authenticator)

		r.Post("/image", h.Image)
	})
}

// FileServer serves stored images read-only. Directories are never
// listed, so an image is reachable only by its name.
func (h *Handler) FileServer(prefix string) http.Handler {
	return http.StripPrefix(prefix, http.FileServer(filesOnly{http.Dir(h.store.Dir())}))
}

type filesOnly struct {
	root http.FileSystem
}

func (f filesOnly) Open(name string) (http.File, error) {
	file, err := f.root.Open(name)
	if err != nil {
		return nil, err
	}

	info, err := file.Stat()
	if err != nil {
		_ = file.Close() //nolint:errcheck // already failing
		return nil, err
	}
	if info.IsDir() {
		_ = file.Close() //nolint:errcheck // refused
		return nil, fs.ErrNotExist
	}

	return file, nil
}

func (h *Handler) Image(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.store.MaxBytes()+multipartOverhead)

	file, _, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			core.JSONError(w, h.store.tooLarge())
			return
		}
		core.BadRequest(w, "No file provided")
		return
	}
	defer file.Close() //nolint:errcheck // read-only multipart part

	url, err := h.store.Save(file)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	slog.DebugContext(r.Context(), "image uploaded",
		"user_id", middleware.GetUserID(r.Context()),
		"url", url,
	)

	core.OK(w, core.Envelope{"url": url})
}
