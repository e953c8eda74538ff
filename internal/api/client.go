// Package api is the HTTP client for the invoice parsing backend. It covers
// the four surfaces the review tool needs: invoice upload, document
// generation, the parts catalog, and part images.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"customsdesk/internal/model"
)

// MaxUploadSize is the largest invoice PDF the backend accepts.
const MaxUploadSize = 50 << 20

// APIError is a non-2xx response decoded from the backend's {detail} body.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("backend returned %d", e.StatusCode)
	}
	return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Detail)
}

// ValidationError is a client-side rejection; no request was sent.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

type Client struct {
	baseURL string
	httpc   *http.Client
	logger  *zap.Logger
}

// NewClient builds a client for the backend at baseURL. Uploads and document
// generation can take minutes on large invoices, so there is no client-wide
// timeout; callers cancel through ctx.
func NewClient(baseURL string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{},
		logger:  logger,
	}
}

// ValidatePDF checks an invoice file against the backend's upload constraints
// without touching the network: the file must exist, carry a .pdf name, sniff
// as application/pdf, and not exceed MaxUploadSize.
func ValidatePDF(path string) error {
	fi, err := os.Stat(path)
	if err != nil {
		return &ValidationError{Msg: "Файл не найден: " + path}
	}
	if fi.Size() > MaxUploadSize {
		return &ValidationError{Msg: "Файл слишком большой (макс. 50 МБ)"}
	}
	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		return &ValidationError{Msg: "Пожалуйста, выберите файл PDF"}
	}
	f, err := os.Open(path)
	if err != nil {
		return &ValidationError{Msg: "Не удалось открыть файл: " + err.Error()}
	}
	defer f.Close()
	head := make([]byte, 512)
	n, err := f.Read(head)
	if err != nil && err != io.EOF {
		return &ValidationError{Msg: "Не удалось прочитать файл: " + err.Error()}
	}
	if http.DetectContentType(head[:n]) != "application/pdf" {
		return &ValidationError{Msg: "Пожалуйста, выберите файл PDF"}
	}
	return nil
}

// UploadInvoice validates the file locally, then posts it as multipart form
// data for parsing. method selects the parsing backend; apiKey is optional and
// forwarded only when set.
func (c *Client) UploadInvoice(ctx context.Context, path, method, apiKey string) (*model.UploadResponse, error) {
	if err := ValidatePDF(path); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open invoice: %w", err)
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("build upload form: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("read invoice: %w", err)
	}
	if err := mw.WriteField("method", method); err != nil {
		return nil, fmt.Errorf("build upload form: %w", err)
	}
	if apiKey != "" {
		if err := mw.WriteField("api_key", apiKey); err != nil {
			return nil, fmt.Errorf("build upload form: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("build upload form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/invoices/upload", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	c.logger.Debug("uploading invoice",
		zap.String("file", filepath.Base(path)),
		zap.String("method", method))

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload invoice: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return nil, decodeAPIError(resp)
	}

	var out model.UploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode upload response: %w", err)
	}
	return &out, nil
}

// GenerateDocuments requests the customs document bundle and streams it into
// outDir. The saved file's name comes from Content-Disposition when the
// backend sends one, otherwise from the document selection. Returns the full
// path of the written file.
func (c *Client) GenerateDocuments(ctx context.Context, genReq model.GenerateRequest, outDir string) (string, error) {
	payload, err := json.Marshal(genReq)
	if err != nil {
		return "", fmt.Errorf("encode generate request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/invoices/generate", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("generate documents: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return "", decodeAPIError(resp)
	}

	name := downloadName(resp.Header.Get("Content-Disposition"), model.DocSelection{
		GenTechDesc:     genReq.GenTechDesc,
		GenNonInsurance: genReq.GenNonInsurance,
		GenDecision130:  genReq.GenDecision130,
	})

	dst := filepath.Join(outDir, name)
	f, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", dst, err)
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(dst)
		return "", fmt.Errorf("write %s: %w", dst, err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	c.logger.Debug("documents saved", zap.String("path", dst))
	return dst, nil
}

// downloadName picks the filename for a generated document stream.
func downloadName(contentDisposition string, sel model.DocSelection) string {
	if contentDisposition != "" {
		if _, params, err := mime.ParseMediaType(contentDisposition); err == nil {
			if fn := params["filename"]; fn != "" {
				return filepath.Base(fn)
			}
		}
	}
	return sel.FallbackFilename()
}

// ListParts fetches catalog entries. search filters by designation substring;
// limit caps the result count (0 means the backend default).
func (c *Client) ListParts(ctx context.Context, search string, limit int) ([]model.Part, error) {
	q := url.Values{}
	if search != "" {
		q.Set("search", search)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	u := c.baseURL + "/api/v1/parts/"
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list parts: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return nil, decodeAPIError(resp)
	}

	var parts []model.Part
	if err := json.NewDecoder(resp.Body).Decode(&parts); err != nil {
		return nil, fmt.Errorf("decode parts: %w", err)
	}
	return parts, nil
}

// LookupPart finds the catalog entry matching a designation exactly. Returns
// (nil, nil) when the catalog has no such part.
func (c *Client) LookupPart(ctx context.Context, designation string) (*model.Part, error) {
	parts, err := c.ListParts(ctx, designation, 1)
	if err != nil {
		return nil, err
	}
	if len(parts) == 0 || parts[0].Designation != designation {
		return nil, nil
	}
	p := parts[0]
	return &p, nil
}

// SavePart sends a partial update and returns the backend's authoritative
// version of the record.
func (c *Client) SavePart(ctx context.Context, id int64, patch model.PartPatch) (*model.Part, error) {
	payload, err := json.Marshal(patch)
	if err != nil {
		return nil, fmt.Errorf("encode part update: %w", err)
	}
	u := fmt.Sprintf("%s/api/v1/parts/%d", c.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, u, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("save part: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return nil, decodeAPIError(resp)
	}

	var saved model.Part
	if err := json.NewDecoder(resp.Body).Decode(&saved); err != nil {
		return nil, fmt.Errorf("decode saved part: %w", err)
	}
	return &saved, nil
}

// ImageURL resolves a part's relative image path against the backend.
func (c *Client) ImageURL(imagePath string) string {
	if imagePath == "" {
		return ""
	}
	return c.baseURL + "/" + strings.TrimLeft(imagePath, "/")
}

// decodeAPIError turns a non-2xx response into an *APIError. The backend
// sends {"detail": ...} where detail is usually a string but can be a
// validation object; anything undecodable falls back to the raw body.
func decodeAPIError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var wrapper struct {
		Detail json.RawMessage `json:"detail"`
	}
	detail := ""
	if err := json.Unmarshal(body, &wrapper); err == nil && len(wrapper.Detail) > 0 {
		var s string
		if json.Unmarshal(wrapper.Detail, &s) == nil {
			detail = s
		} else {
			detail = string(wrapper.Detail)
		}
	}
	if detail == "" {
		detail = strings.TrimSpace(string(body))
	}
	return &APIError{StatusCode: resp.StatusCode, Detail: detail}
}
