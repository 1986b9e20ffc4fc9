package sandbox

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"github.com/sagarc03/sfs"
	"github.com/sagarc03/sfs/filesystem"
)

const maxFieldBytes = 4 << 10

type Storage interface {
	Get(ctx context.Context, org, contextName, name string) (io.ReadSeekCloser, error)
	Write(ctx context.Context, org, contextName, name string, content io.Reader) (filesystem.SaveResult, error)
	Delete(ctx context.Context, org, contextName, name string) error
	List(ctx context.Context, org, contextName string) ([]filesystem.FileEntry, error)
	Contexts(ctx context.Context) ([]filesystem.ContextEntry, error)
}

type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type HandlerConfig struct {
	// Auth verifies basic-auth credentials. Nil disables authentication.
	Auth          Authenticator
	CORS          CORSConfig
	MaxUploadSize int64
}

// Handler serves the Secure File Service REST API over a Storage.
type Handler struct {
	config  HandlerConfig
	storage Storage
}

// NewHandler creates a new Handler with the given configuration and storage.
func NewHandler(config *HandlerConfig, storage Storage) *Handler {
	return &Handler{
		config:  *config,
		storage: storage,
	}
}

// Router returns an http.Handler exposing:
//
//	GET    /contexts
//	GET    /files/{org}/{context}
//	POST   /files/{org}/{context}/
//	GET    /files/{org}/{context}/{name}
//	DELETE /files/{org}/{context}/{name}
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger)

	if h.config.CORS.Enabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   h.config.CORS.AllowedOrigins,
			AllowedMethods:   h.config.CORS.AllowedMethods,
			AllowedHeaders:   h.config.CORS.AllowedHeaders,
			ExposedHeaders:   h.config.CORS.ExposedHeaders,
			AllowCredentials: h.config.CORS.AllowCredentials,
			MaxAge:           h.config.CORS.MaxAge,
		}))
	}

	r.Group(func(r chi.Router) {
		r.Use(BasicAuthMiddleware(h.config.Auth))

		r.Get(sfs.ContextsPath, h.handleContexts)
		r.Route("/files/{org}/{context}", func(r chi.Router) {
			r.Use(SegmentValidationMiddleware)
			r.Get("/", h.handleList)
			r.Post("/", h.handleUpload)
			r.Get("/{name}", h.handleGet)
			r.Delete("/{name}", h.handleDelete)
		})
	})

	return r
}

// UploadResponse is returned after a successful upload.
type UploadResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Size int64     `json:"size"`
	ETag string    `json:"etag"`
	Date int64     `json:"date"`
}

// ListResponse is the body of a file listing.
type ListResponse struct {
	Files []filesystem.FileEntry `json:"files"`
}

// ContextsResponse is the body of a contexts listing.
type ContextsResponse struct {
	Contexts []filesystem.ContextEntry `json:"contexts"`
}

// DeleteResponse is returned after a successful delete.
type DeleteResponse struct {
	Deleted string `json:"deleted"`
}

func (h *Handler) handleContexts(w http.ResponseWriter, r *http.Request) {
	contexts, err := h.storage.Contexts(r.Context())
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, ContextsResponse{Contexts: contexts})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	files, err := h.storage.List(r.Context(), chi.URLParam(r, "org"), chi.URLParam(r, "context"))
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, ListResponse{Files: files})
}

// handleUpload streams the multipart body. The "filename" field names the
// stored file; when it is absent the file part's own filename is used.
func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	if h.config.MaxUploadSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.config.MaxUploadSize)
	}

	mr, err := r.MultipartReader()
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_upload", "Expected multipart/form-data body")
		return
	}

	org, ctxName := chi.URLParam(r, "org"), chi.URLParam(r, "context")
	var filename string
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			HandleError(w, fmt.Errorf("%w: %w", ErrInvalidUpload, err))
			return
		}

		switch part.FormName() {
		case "filename":
			filename, err = readField(part)
			if err != nil {
				HandleError(w, err)
				return
			}
		case sfs.UploadField:
			if part.FileName() == "" {
				continue
			}
			if filename == "" {
				filename = part.FileName()
			}
			h.store(w, r, part, org, ctxName, filename)
			return
		}
	}

	WriteError(w, http.StatusBadRequest, "missing_file", "No "+sfs.UploadField+" file part")
}

func (h *Handler) store(w http.ResponseWriter, r *http.Request, part *multipart.Part, org, ctxName, filename string) {
	result, err := h.storage.Write(r.Context(), org, ctxName, filename, part)
	if err != nil {
		HandleError(w, err)
		return
	}

	resp := UploadResponse{
		ID:   uuid.New(),
		Name: filename,
		Size: result.BytesWritten,
		ETag: result.Etag,
		Date: result.Date.Unix(),
	}
	slog.Info("file uploaded", "id", resp.ID, "org", org, "context", ctxName, "name", filename, "size", resp.Size)
	_ = WriteJSON(w, http.StatusOK, resp)
}

func readField(part *multipart.Part) (string, error) {
	b, err := io.ReadAll(io.LimitReader(part, maxFieldBytes))
	if err != nil {
		return "", fmt.Errorf("%w: read field %s: %w", ErrInvalidUpload, part.FormName(), err)
	}
	return strings.TrimSpace(string(b)), nil
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	org, ctxName := chi.URLParam(r, "org"), chi.URLParam(r, "context")

	name, content, err := h.open(r.Context(), org, ctxName, chi.URLParam(r, "name"))
	if err != nil {
		HandleError(w, err)
		return
	}
	defer func() { _ = content.Close() }()

	if strings.HasSuffix(name, sfs.ArchiveExt) {
		w.Header().Set("Content-Type", "application/zip")
	}
	http.ServeContent(w, r, name, time.Time{}, content)
}

// open resolves a logical name to a stored file, trying the archive name
// when the exact name does not exist.
func (h *Handler) open(ctx context.Context, org, ctxName, name string) (string, io.ReadSeekCloser, error) {
	content, err := h.storage.Get(ctx, org, ctxName, name)
	if err == nil || !errors.Is(err, filesystem.ErrNotFound) || strings.HasSuffix(name, sfs.ArchiveExt) {
		return name, content, err
	}

	name += sfs.ArchiveExt
	content, err = h.storage.Get(ctx, org, ctxName, name)
	return name, content, err
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	org, ctxName, name := chi.URLParam(r, "org"), chi.URLParam(r, "context"), chi.URLParam(r, "name")

	err := h.storage.Delete(r.Context(), org, ctxName, name)
	if errors.Is(err, filesystem.ErrNotFound) && !strings.HasSuffix(name, sfs.ArchiveExt) {
		name += sfs.ArchiveExt
		err = h.storage.Delete(r.Context(), org, ctxName, name)
	}
	if err != nil {
		HandleError(w, err)
		return
	}

	slog.Info("file deleted", "org", org, "context", ctxName, "name", name)
	_ = WriteJSON(w, http.StatusOK, DeleteResponse{Deleted: name})
}
