package documents

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ubietysphere/sphere-web/internal/sphere"
	"github.com/ubietysphere/sphere-web/pkg/logging"
)

type mockLibraryAPI struct {
	reports  []sphere.Report
	uploaded []sphere.UploadReportRequest
	shared   map[string][]string
	deleted  []string
}

func (m *mockLibraryAPI) ListReports(_ context.Context, _ string) ([]sphere.Report, error) {
	return m.reports, nil
}

func (m *mockLibraryAPI) UploadReport(_ context.Context, _ string, req sphere.UploadReportRequest) (*sphere.Report, error) {
	m.uploaded = append(m.uploaded, req)
	return &sphere.Report{ID: "r1", Title: req.Title, Category: req.Category, FileName: req.FileName}, nil
}

func (m *mockLibraryAPI) ShareReport(_ context.Context, _, reportID string, userIDs []string) error {
	if m.shared == nil {
		m.shared = map[string][]string{}
	}
	m.shared[reportID] = userIDs
	return nil
}

func (m *mockLibraryAPI) DeleteReport(_ context.Context, _, reportID string) error {
	m.deleted = append(m.deleted, reportID)
	return nil
}

func newLibrary(api *mockLibraryAPI) *Library {
	return NewLibrary(api, logging.New("error"))
}

func TestUpload(t *testing.T) {
	api := &mockLibraryAPI{}
	l := newLibrary(api)

	rep, err := l.Upload(context.Background(), "tok", "Blood work", "lab", "results.pdf", strings.NewReader("data"))
	require.NoError(t, err)
	assert.Equal(t, "r1", rep.ID)
	require.Len(t, api.uploaded, 1)
	assert.Equal(t, "results.pdf", api.uploaded[0].FileName)
}

func TestUploadValidation(t *testing.T) {
	l := newLibrary(&mockLibraryAPI{})
	file := strings.NewReader("data")

	tests := []struct {
		name                      string
		title, category, fileName string
		file                      io.Reader
	}{
		{"missing title", "", "lab", "a.pdf", file},
		{"missing category", "t", "", "a.pdf", file},
		{"missing file name", "t", "lab", "", file},
		{"missing file", "t", "lab", "a.pdf", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.Upload(context.Background(), "tok", tt.title, tt.category, tt.fileName, tt.file)
			assert.Error(t, err)
		})
	}
}

func TestShareAndDelete(t *testing.T) {
	api := &mockLibraryAPI{}
	l := newLibrary(api)

	require.Error(t, l.Share(context.Background(), "tok", "", []string{"u2"}))
	require.Error(t, l.Share(context.Background(), "tok", "r1", nil))
	require.NoError(t, l.Share(context.Background(), "tok", "r1", []string{"u2"}))
	assert.Equal(t, []string{"u2"}, api.shared["r1"])

	require.Error(t, l.Delete(context.Background(), "tok", ""))
	require.NoError(t, l.Delete(context.Background(), "tok", "r1"))
	assert.Equal(t, []string{"r1"}, api.deleted)
}

func TestPreviewKind(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"/uploads/scan.png", "image"},
		{"/uploads/photo.JPG", "image"},
		{"/uploads/results.pdf", "pdf"},
		{"/uploads/results.pdf?token=abc", "pdf"},
		{"/uploads/notes.docx", "download"},
		{"/uploads/noextension", "download"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PreviewKind(tt.url), "kind of %s", tt.url)
	}
}
