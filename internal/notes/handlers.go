package notes

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

var errTrailingData = errors.New("unexpected data after json object")

type Handlers struct {
	store    Store
	log      zerolog.Logger
	validate *validator.Validate
}

// Store is an abstraction over the notes storage.
// It allows unit-testing handlers without a real database.
type Store interface {
	Create(ctx context.Context, title, content string) (Note, error)
	Get(ctx context.Context, id int64) (Note, error)
	Update(ctx context.Context, id int64, title, content string) (Note, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]Note, error)
}

func NewHandlers(store Store, log zerolog.Logger) *Handlers {
	return &Handlers{
		store:    store,
		log:      log,
		validate: validator.New(),
	}
}

func (h *Handlers) Routes() http.Handler {
	r := chi.NewRouter()

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/notes", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.create)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.get)
			r.Put("/", h.update)
			r.Delete("/", h.delete)
		})
	})

	return r
}

func (h *Handlers) list(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.List(r.Context())
	if err != nil {
		h.storeFailure(r, "list", 0, err)
		writeError(w, http.StatusInternalServerError, "could not load notes")
		return
	}
	if items == nil {
		items = []Note{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handlers) create(w http.ResponseWriter, r *http.Request) {
	var req CreateNoteRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	// A client hanging up must not abort an insert that already started.
	n, err := h.store.Create(context.WithoutCancel(r.Context()), req.Title, req.Content)
	if err != nil {
		h.storeFailure(r, "create", 0, err)
		writeError(w, http.StatusInternalServerError, "could not save note")
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

func (h *Handlers) get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.noteID(w, r)
	if !ok {
		return
	}

	n, err := h.store.Get(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		writeError(w, http.StatusNotFound, "note not found")
		return
	}
	if err != nil {
		h.storeFailure(r, "get", id, err)
		writeError(w, http.StatusInternalServerError, "could not load note")
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (h *Handlers) update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.noteID(w, r)
	if !ok {
		return
	}

	var req UpdateNoteRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	n, err := h.store.Update(context.WithoutCancel(r.Context()), id, req.Title, req.Content)
	if errors.Is(err, ErrNotFound) {
		writeError(w, http.StatusNotFound, "note not found")
		return
	}
	if err != nil {
		h.storeFailure(r, "update", id, err)
		writeError(w, http.StatusInternalServerError, "could not save note")
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (h *Handlers) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.noteID(w, r)
	if !ok {
		return
	}

	if err := h.store.Delete(context.WithoutCancel(r.Context()), id); errors.Is(err, ErrNotFound) {
		writeError(w, http.StatusNotFound, "note not found")
		return
	} else if err != nil {
		h.storeFailure(r, "delete", id, err)
		writeError(w, http.StatusInternalServerError, "could not delete note")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// noteID parses the {id} path segment and writes a 400 when it is not a positive integer.
func (h *Handlers) noteID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err == nil {
		err = h.validate.Var(id, "required,gt=0")
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

// storeFailure logs through the request logger when one is attached, else through h.log.
func (h *Handlers) storeFailure(r *http.Request, op string, id int64, err error) {
	l := hlog.FromRequest(r)
	if l.GetLevel() == zerolog.Disabled {
		l = &h.log
	}

	ev := l.Error().Err(err).Str("op", op)
	if id != 0 {
		ev = ev.Int64("note_id", id)
	}
	ev.Msg("notes store failure")
}

// decodeBody reads a single JSON object. An empty body decodes as {}.
func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errTrailingData
	}
	return nil
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
