// Package documents fronts the patient's report library in the Sphere API and
// classifies files for the inline preview page. The gateway never stores a
// file; uploads stream straight through.
package documents

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/ubietysphere/sphere-web/internal/sphere"
	"github.com/ubietysphere/sphere-web/pkg/logging"
)

// LibraryAPI is the slice of the Sphere client the library needs.
type LibraryAPI interface {
	ListReports(ctx context.Context, token string) ([]sphere.Report, error)
	UploadReport(ctx context.Context, token string, req sphere.UploadReportRequest) (*sphere.Report, error)
	ShareReport(ctx context.Context, token, reportID string, userIDs []string) error
	DeleteReport(ctx context.Context, token, reportID string) error
}

// Library manages the user's documents.
type Library struct {
	api    LibraryAPI
	logger *logging.Logger
}

// NewLibrary constructs the document library service.
func NewLibrary(api LibraryAPI, logger *logging.Logger) *Library {
	if api == nil {
		panic("documents: api required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Library{api: api, logger: logger}
}

// List returns the caller's documents.
func (l *Library) List(ctx context.Context, token string) ([]sphere.Report, error) {
	return l.api.ListReports(ctx, token)
}

// Upload validates and streams a new document to the backend.
func (l *Library) Upload(ctx context.Context, token, title, category, fileName string, file io.Reader) (*sphere.Report, error) {
	switch {
	case strings.TrimSpace(title) == "":
		return nil, fmt.Errorf("documents: title is required")
	case strings.TrimSpace(category) == "":
		return nil, fmt.Errorf("documents: category is required")
	case strings.TrimSpace(fileName) == "":
		return nil, fmt.Errorf("documents: file name is required")
	case file == nil:
		return nil, fmt.Errorf("documents: file is required")
	}
	rep, err := l.api.UploadReport(ctx, token, sphere.UploadReportRequest{
		Title:    title,
		Category: category,
		FileName: fileName,
		File:     file,
	})
	if err != nil {
		return nil, err
	}
	l.logger.Info("report uploaded", "report_id", rep.ID, "category", category)
	return rep, nil
}

// Share shares a document with other users.
func (l *Library) Share(ctx context.Context, token, reportID string, userIDs []string) error {
	if reportID == "" {
		return fmt.Errorf("documents: report id required")
	}
	if len(userIDs) == 0 {
		return fmt.Errorf("documents: at least one user to share with")
	}
	return l.api.ShareReport(ctx, token, reportID, userIDs)
}

// Delete removes a document from the library.
func (l *Library) Delete(ctx context.Context, token, reportID string) error {
	if reportID == "" {
		return fmt.Errorf("documents: report id required")
	}
	return l.api.DeleteReport(ctx, token, reportID)
}

// PreviewKind classifies a CMS-relative file path for the preview page:
// images render inline, PDFs in an iframe, anything else as a download link.
func PreviewKind(fileURL string) string {
	ext := strings.ToLower(path.Ext(strings.Split(fileURL, "?")[0]))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".gif", ".webp", ".svg":
		return "image"
	case ".pdf":
		return "pdf"
	}
	return "download"
}
