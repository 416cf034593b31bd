package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"HamptonCollector/internal/domain"
)

func TestJSONSendsQueryParams(t *testing.T) {
	t.Parallel()

	var gotQuery url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		_, _ = w.Write([]byte(`[{"permit_number":"P-1"}]`))
	}))
	defer server.Close()

	client := NewClient(server.Client())

	params := url.Values{}
	params.Set("$limit", "100")

	body, err := client.JSON(context.Background(), server.URL+"/resource/permits.json", params)
	if err != nil {
		t.Fatalf("JSON returned error: %v", err)
	}
	if len(body) == 0 {
		t.Fatal("expected non-empty body")
	}
	if gotQuery.Get("$limit") != "100" {
		t.Fatalf("expected $limit=100, got %q", gotQuery.Get("$limit"))
	}
}

func TestJSONNonOKStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(server.Client())
	if _, err := client.JSON(context.Background(), server.URL, nil); err == nil {
		t.Fatal("expected error for 503 response")
	}
}

func TestJSONNetworkError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewClient(nil)
	body, err := client.JSON(context.Background(), server.URL, nil)
	if err == nil {
		t.Fatal("expected error for closed server")
	}
	if body != nil {
		t.Fatalf("expected nil body, got %q", body)
	}
}

func TestVerifyDocumentOK(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("expected HEAD, got %s", r.Method)
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Length", "2048")
		w.Header().Set("Last-Modified", "Mon, 02 Jan 2006 15:04:05 GMT")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(server.Client())

	rec, err := client.VerifyDocument(context.Background(), server.URL+"/plans/comprehensive-plan.pdf")
	if err != nil {
		t.Fatalf("VerifyDocument returned error: %v", err)
	}
	if rec == nil {
		t.Fatal("expected record, got nil")
	}
	if rec.Type != domain.TypePrimaryDocument {
		t.Fatalf("unexpected type: %s", rec.Type)
	}
	if rec.ID == "" {
		t.Fatal("expected non-empty id")
	}
	if rec.DocumentType != domain.DocumentTypePrimarySource {
		t.Fatalf("unexpected document type: %s", rec.DocumentType)
	}
	if rec.ContentType != "application/pdf" {
		t.Fatalf("unexpected content type: %s", rec.ContentType)
	}
	if rec.LastModified == "" {
		t.Fatal("expected last-modified to be carried over")
	}
}

func TestVerifyDocumentNonOK(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.Client())

	rec, err := client.VerifyDocument(context.Background(), server.URL+"/missing.pdf")
	if err == nil {
		t.Fatal("expected error for 404 response")
	}
	if rec != nil {
		t.Fatalf("expected nil record, got %+v", rec)
	}
}

func TestDocumentID(t *testing.T) {
	t.Parallel()

	if got := documentID("https://example.gov/docs/plan.pdf"); got != "plan.pdf" {
		t.Fatalf("unexpected id: %s", got)
	}
	if got := documentID("https://example.gov/"); got != "https://example.gov/" {
		t.Fatalf("expected fallback to full url, got %s", got)
	}
}
