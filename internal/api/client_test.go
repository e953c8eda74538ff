package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"customsdesk/internal/model"
)

// writePDF creates a minimal file that sniffs as application/pdf.
func writePDF(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("%PDF-1.4\n1 0 obj\nendobj\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestValidatePDF(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	if err := ValidatePDF(writePDF(t, dir, "invoice.pdf")); err != nil {
		t.Fatalf("valid file rejected: %v", err)
	}

	txt := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(txt, []byte("%PDF-1.4"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := ValidatePDF(txt); err == nil {
		t.Fatal("wrong extension accepted")
	}

	fake := filepath.Join(dir, "fake.pdf")
	if err := os.WriteFile(fake, []byte("just text"), 0o644); err != nil {
		t.Fatal(err)
	}
	var verr *ValidationError
	if err := ValidatePDF(fake); !errors.As(err, &verr) {
		t.Fatalf("wrong content type: got %v", err)
	}
}

func TestUploadInvoice_OversizeFileSendsNoRequest(t *testing.T) {
	t.Parallel()

	var requests atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
	}))
	defer srv.Close()

	// A sparse file just over the limit; no real 51MB payload is written.
	path := filepath.Join(t.TempDir(), "big.pdf")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := f.Truncate(MaxUploadSize + 1); err != nil {
		t.Fatal(err)
	}
	f.Close()

	c := NewClient(srv.URL, nil)
	_, err = c.UploadInvoice(context.Background(), path, "gemini", "")
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v; want ValidationError", err)
	}
	if n := requests.Load(); n != 0 {
		t.Fatalf("oversize upload reached the server %d times", n)
	}
}

func TestUploadInvoice_SendsMultipartForm(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/invoices/upload" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if got := r.FormValue("method"); got != "gemini" {
			t.Errorf("method = %q", got)
		}
		if got := r.FormValue("api_key"); got != "k-123" {
			t.Errorf("api_key = %q", got)
		}
		file, hdr, err := r.FormFile("file")
		if err != nil {
			t.Errorf("form file: %v", err)
		} else {
			file.Close()
			if hdr.Filename != "invoice.pdf" {
				t.Errorf("filename = %q", hdr.Filename)
			}
		}
		json.NewEncoder(w).Encode(model.UploadResponse{
			Items:    []model.Item{{Designation: "АВП 25.01", Name: "Втулка"}},
			Metadata: &model.BatchMeta{Supplier: "Acme"},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	resp, err := c.UploadInvoice(context.Background(), writePDF(t, t.TempDir(), "invoice.pdf"), "gemini", "k-123")
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Items) != 1 || resp.Items[0].Designation != "АВП 25.01" {
		t.Fatalf("items = %+v", resp.Items)
	}
	if resp.Metadata == nil || resp.Metadata.Supplier != "Acme" {
		t.Fatalf("metadata = %+v", resp.Metadata)
	}
}

func TestUploadInvoice_DetailError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		want string
	}{
		{"string detail", `{"detail":"не удалось распознать файл"}`, "не удалось распознать файл"},
		{"object detail", `{"detail":{"field":"file"}}`, `{"field":"file"}`},
		{"no detail", `oops`, "oops"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnprocessableEntity)
				io.WriteString(w, tc.body)
			}))
			defer srv.Close()

			c := NewClient(srv.URL, nil)
			_, err := c.UploadInvoice(context.Background(), writePDF(t, t.TempDir(), "a.pdf"), "gemini", "")
			var aerr *APIError
			if !errors.As(err, &aerr) {
				t.Fatalf("err = %v; want APIError", err)
			}
			if aerr.StatusCode != http.StatusUnprocessableEntity || aerr.Detail != tc.want {
				t.Fatalf("got %d %q", aerr.StatusCode, aerr.Detail)
			}
		})
	}
}

func TestGenerateDocuments_FilenameFromHeader(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req model.GenerateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if req.Supplier != "Acme" || !req.GenTechDesc {
			t.Errorf("payload = %+v", req)
		}
		w.Header().Set("Content-Disposition", `attachment; filename="Отчет_2026.docx"`)
		w.Write([]byte("DOCX"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	dir := t.TempDir()
	req := model.GenerateRequest{Supplier: "Acme", GenTechDesc: true}
	path, err := c.GenerateDocuments(context.Background(), req, dir)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "Отчет_2026.docx" {
		t.Fatalf("saved as %q", filepath.Base(path))
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "DOCX" {
		t.Fatalf("content = %q, err = %v", data, err)
	}
}

func TestGenerateDocuments_FallbackFilenames(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		req  model.GenerateRequest
		want string
	}{
		{"one doc", model.GenerateRequest{GenNonInsurance: true}, "Non_Insurance_Letter.docx"},
		{"two docs", model.GenerateRequest{GenTechDesc: true, GenDecision130: true}, "Documents.zip"},
		{"no docs", model.GenerateRequest{}, "Documents.zip"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("x"))
			}))
			defer srv.Close()

			c := NewClient(srv.URL, nil)
			path, err := c.GenerateDocuments(context.Background(), tc.req, t.TempDir())
			if err != nil {
				t.Fatal(err)
			}
			if filepath.Base(path) != tc.want {
				t.Fatalf("saved as %q; want %q", filepath.Base(path), tc.want)
			}
		})
	}
}

func TestListParts_QueryParameters(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/parts/" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("search"); got != "АВП" {
			t.Errorf("search = %q", got)
		}
		if got := r.URL.Query().Get("limit"); got != "1000" {
			t.Errorf("limit = %q", got)
		}
		json.NewEncoder(w).Encode([]model.Part{{ID: 1, Designation: "АВП 25.01"}})
	}))
	defer srv.Close()

	parts, err := NewClient(srv.URL, nil).ListParts(context.Background(), "АВП", 1000)
	if err != nil {
		t.Fatal(err)
	}
	if len(parts) != 1 || parts[0].ID != 1 {
		t.Fatalf("parts = %+v", parts)
	}
}

func TestLookupPart_ExactMatchOnly(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The backend searches by substring; the client demands exactness.
		json.NewEncoder(w).Encode([]model.Part{{ID: 2, Designation: "АВП 25.011"}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	p, err := c.LookupPart(context.Background(), "АВП 25.01")
	if err != nil {
		t.Fatal(err)
	}
	if p != nil {
		t.Fatalf("substring match accepted: %+v", p)
	}

	p, err = c.LookupPart(context.Background(), "АВП 25.011")
	if err != nil {
		t.Fatal(err)
	}
	if p == nil || p.ID != 2 {
		t.Fatalf("exact match missed: %+v", p)
	}
}

func TestSavePart_ReturnsAuthoritativeRecord(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/api/v1/parts/42" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		var patch map[string]json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			t.Errorf("decode patch: %v", err)
		}
		if _, ok := patch["material"]; !ok {
			t.Error("material missing from patch")
		}
		if _, ok := patch["weight"]; ok {
			t.Error("unset field sent in patch")
		}
		json.NewEncoder(w).Encode(model.Part{ID: 42, Material: "Сталь 45 нормализованная"})
	}))
	defer srv.Close()

	mat := "Сталь 45"
	saved, err := NewClient(srv.URL, nil).SavePart(context.Background(), 42, model.PartPatch{Material: &mat})
	if err != nil {
		t.Fatal(err)
	}
	if saved.Material != "Сталь 45 нормализованная" {
		t.Fatalf("material = %q; want the server's version", saved.Material)
	}
}

func TestImageURL(t *testing.T) {
	t.Parallel()

	c := NewClient("http://backend:8000/", nil)
	if got := c.ImageURL("static/images/p1.png"); got != "http://backend:8000/static/images/p1.png" {
		t.Fatalf("got %q", got)
	}
	if got := c.ImageURL(""); got != "" {
		t.Fatalf("got %q for empty path", got)
	}
}
