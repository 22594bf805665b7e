package handlers

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ubietysphere/sphere-web/internal/documents"
	"github.com/ubietysphere/sphere-web/internal/session"
	"github.com/ubietysphere/sphere-web/internal/sphere"
	"github.com/ubietysphere/sphere-web/pkg/logging"
)

type fakeLibraryAPI struct {
	uploaded *sphere.UploadReportRequest
}

func (f *fakeLibraryAPI) ListReports(ctx context.Context, token string) ([]sphere.Report, error) {
	return []sphere.Report{{ID: "r1", Title: "Blood Panel", Category: "lab-results"}}, nil
}

func (f *fakeLibraryAPI) UploadReport(ctx context.Context, token string, req sphere.UploadReportRequest) (*sphere.Report, error) {
	f.uploaded = &req
	return &sphere.Report{ID: "r2", Title: req.Title, Category: req.Category, FileName: req.FileName}, nil
}

func (f *fakeLibraryAPI) ShareReport(ctx context.Context, token, reportID string, userIDs []string) error {
	return nil
}

func (f *fakeLibraryAPI) DeleteReport(ctx context.Context, token, reportID string) error {
	return nil
}

func newDocumentsFixture(t *testing.T, api *fakeLibraryAPI) *DocumentsHandler {
	t.Helper()
	lib := documents.NewLibrary(api, logging.New("error"))
	return NewDocumentsHandler(lib, logging.New("error"))
}

func withTestPrincipal(r *http.Request) *http.Request {
	mw := testPrincipal(session.Principal{UserID: "u1", AccessToken: "tok"})
	var out *http.Request
	mw(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		out = req
	})).ServeHTTP(httptest.NewRecorder(), r)
	return out
}

func TestDocumentsList(t *testing.T) {
	h := newDocumentsFixture(t, &fakeLibraryAPI{})
	rec := httptest.NewRecorder()
	h.List(rec, withTestPrincipal(httptest.NewRequest(http.MethodGet, "/api/documents", nil)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Blood Panel")
}

func TestDocumentsUpload(t *testing.T) {
	api := &fakeLibraryAPI{}
	h := newDocumentsFixture(t, api)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("title", "MRI Scan"))
	require.NoError(t, mw.WriteField("category", "imaging"))
	part, err := mw.CreateFormFile("file", "scan.pdf")
	require.NoError(t, err)
	_, err = io.WriteString(part, "%PDF-1.4 fake")
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/documents", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.Upload(rec, withTestPrincipal(req))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.NotNil(t, api.uploaded)
	assert.Equal(t, "MRI Scan", api.uploaded.Title)
	assert.Equal(t, "scan.pdf", api.uploaded.FileName)
}

func TestDocumentsUpload_MissingTitle(t *testing.T) {
	h := newDocumentsFixture(t, &fakeLibraryAPI{})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "scan.pdf")
	require.NoError(t, err)
	_, err = io.WriteString(part, "data")
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/documents", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.Upload(rec, withTestPrincipal(req))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "title is required")
}

func TestPreview_RendersByKind(t *testing.T) {
	h := newDocumentsFixture(t, &fakeLibraryAPI{})

	cases := []struct {
		name string
		url  string
		want string
	}{
		{"image", "https://cdn.example.com/scan.png", "<img"},
		{"pdf", "https://cdn.example.com/report.pdf", "application/pdf"},
		{"download", "https://cdn.example.com/notes.docx", "download"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/documents/preview?url="+tc.url+"&title=Scan", nil)
			rec := httptest.NewRecorder()
			h.Preview(rec, withTestPrincipal(req))

			require.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
			assert.Contains(t, rec.Body.String(), tc.want)
		})
	}
}

func TestPreview_RequiresAbsoluteURL(t *testing.T) {
	h := newDocumentsFixture(t, &fakeLibraryAPI{})

	rec := httptest.NewRecorder()
	h.Preview(rec, withTestPrincipal(httptest.NewRequest(http.MethodGet, "/documents/preview?url=javascript:alert(1)", nil)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.Preview(rec, withTestPrincipal(httptest.NewRequest(http.MethodGet, "/documents/preview", nil)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
