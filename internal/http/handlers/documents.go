package handlers

import (
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ubietysphere/sphere-web/internal/documents"
	"github.com/ubietysphere/sphere-web/internal/http/middleware"
	"github.com/ubietysphere/sphere-web/internal/sphere"
	"github.com/ubietysphere/sphere-web/pkg/logging"
)

// maxUploadBytes caps document uploads at 20 MiB.
const maxUploadBytes = 20 << 20

// DocumentsHandler exposes the medical document library.
type DocumentsHandler struct {
	lib    *documents.Library
	logger *logging.Logger
}

// NewDocumentsHandler creates the document library handler.
func NewDocumentsHandler(lib *documents.Library, logger *logging.Logger) *DocumentsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &DocumentsHandler{lib: lib, logger: logger}
}

func (h *DocumentsHandler) fail(w http.ResponseWriter, err error) {
	switch {
	case sphere.IsNotFound(err):
		jsonError(w, "document not found", http.StatusNotFound)
	case sphere.IsUnauthorized(err):
		jsonError(w, "session expired, sign in again", http.StatusUnauthorized)
	default:
		h.logger.Error("document library error", "error", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
	}
}

// List returns the caller's documents.
// GET /api/documents
func (h *DocumentsHandler) List(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.PrincipalFromContext(r.Context())
	reports, err := h.lib.List(r.Context(), p.AccessToken)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": reports})
}

// Upload accepts a multipart document upload with title and category fields.
// POST /api/documents
func (h *DocumentsHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		jsonError(w, "invalid multipart body", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	p, _ := middleware.PrincipalFromContext(r.Context())
	rep, err := h.lib.Upload(r.Context(), p.AccessToken,
		r.FormValue("title"), r.FormValue("category"), header.Filename, file)
	if err != nil {
		if strings.HasPrefix(err.Error(), "documents:") {
			jsonError(w, strings.TrimPrefix(err.Error(), "documents: "), http.StatusBadRequest)
			return
		}
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rep)
}

type shareRequest struct {
	UserIDs []string `json:"userIds"`
}

// Share grants other users access to a document.
// POST /api/documents/{reportID}/share
func (h *DocumentsHandler) Share(w http.ResponseWriter, r *http.Request) {
	reportID := chi.URLParam(r, "reportID")
	var req shareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.UserIDs) == 0 {
		jsonError(w, "userIds is required", http.StatusBadRequest)
		return
	}

	p, _ := middleware.PrincipalFromContext(r.Context())
	if err := h.lib.Share(r.Context(), p.AccessToken, reportID, req.UserIDs); err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "shared"})
}

// Delete removes a document.
// DELETE /api/documents/{reportID}
func (h *DocumentsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	reportID := chi.URLParam(r, "reportID")
	p, _ := middleware.PrincipalFromContext(r.Context())
	if err := h.lib.Delete(r.Context(), p.AccessToken, reportID); err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Preview renders a document viewer page: images inline, PDFs embedded,
// everything else as a download link.
// GET /documents/preview?url=...&title=...
func (h *DocumentsHandler) Preview(w http.ResponseWriter, r *http.Request) {
	fileURL := r.URL.Query().Get("url")
	if fileURL == "" {
		jsonError(w, "url is required", http.StatusBadRequest)
		return
	}
	if !strings.HasPrefix(fileURL, "https://") && !strings.HasPrefix(fileURL, "http://") {
		jsonError(w, "url must be absolute", http.StatusBadRequest)
		return
	}
	title := r.URL.Query().Get("title")
	if title == "" {
		title = "Document"
	}

	safeURL := html.EscapeString(fileURL)
	safeTitle := html.EscapeString(title)

	var body string
	switch documents.PreviewKind(fileURL) {
	case "image":
		body = fmt.Sprintf(`<img src=%q alt=%q />`, safeURL, safeTitle)
	case "pdf":
		body = fmt.Sprintf(`<embed src=%q type="application/pdf" width="100%%" height="800" />`, safeURL)
	default:
		body = fmt.Sprintf(`<p>Preview not available.</p><a class="button" href=%q download>Download %s</a>`, safeURL, safeTitle)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = fmt.Fprintf(w, previewPageHTML, safeTitle, safeTitle, body)
}

const previewPageHTML = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>%s | Ubiety Sphere</title>
  <style>
    body { font-family: system-ui, sans-serif; margin: 0; background: #f5f6f8; color: #1d2733; }
    header { background: #123a5e; color: #fff; padding: 14px 24px; }
    main { max-width: 960px; margin: 24px auto; padding: 0 16px; }
    img, embed { max-width: 100%%; border-radius: 8px; box-shadow: 0 1px 4px rgba(0,0,0,.15); }
    .button { display: inline-block; background: #123a5e; color: #fff; padding: 10px 18px; border-radius: 6px; text-decoration: none; }
  </style>
</head>
<body>
  <header><strong>%s</strong></header>
  <main>%s</main>
</body>
</html>`
