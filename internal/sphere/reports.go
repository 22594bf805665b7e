package sphere

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// UploadReportRequest describes a document upload. The file is streamed to the
// backend unmodified; the gateway keeps no copy.
type UploadReportRequest struct {
	Title    string `json:"title"`
	Category string `json:"category"`
	FileName string    `json:"-"`
	File     io.Reader `json:"-"`
}

// ListReports returns the caller's document library.
func (c *Client) ListReports(ctx context.Context, token string) ([]Report, error) {
	var out []Report
	if err := c.do(ctx, http.MethodGet, "/user/reports", token, nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UploadReport uploads a document as multipart form-data: a "dto" JSON part
// with the metadata plus the file part.
func (c *Client) UploadReport(ctx context.Context, token string, req UploadReportRequest) (*Report, error) {
	ctx, span := c.tracer.Start(ctx, "sphere.upload_report")
	defer span.End()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	dto, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("sphere: marshal report dto: %w", err)
	}
	if err := mw.WriteField("dto", string(dto)); err != nil {
		return nil, fmt.Errorf("sphere: write dto part: %w", err)
	}
	part, err := mw.CreateFormFile("file", req.FileName)
	if err != nil {
		return nil, fmt.Errorf("sphere: create file part: %w", err)
	}
	if _, err := io.Copy(part, req.File); err != nil {
		return nil, fmt.Errorf("sphere: copy file part: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("sphere: close multipart writer: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/user/reports", &buf)
	if err != nil {
		return nil, fmt.Errorf("sphere: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())
	httpReq.Header.Set("Authorization", "Bearer "+token)

	var out Report
	if err := c.send(httpReq, span, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ShareReport shares a document with the given users.
func (c *Client) ShareReport(ctx context.Context, token, reportID string, userIDs []string) error {
	body := map[string]any{
		"reportId": reportID,
		"userIds":  userIDs,
	}
	return c.do(ctx, http.MethodPost, "/user/reports/share", token, nil, body, nil)
}

// DeleteReport removes a document from the library.
func (c *Client) DeleteReport(ctx context.Context, token, reportID string) error {
	return c.do(ctx, http.MethodDelete, "/user/reports/"+reportID, token, nil, nil, nil)
}
