package contentstore

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

func testStore(t *testing.T, srv *httptest.Server, gateway string) *pinataStore {
	t.Helper()
	return &pinataStore{
		endpoint: srv.URL,
		jwt:      "test-jwt",
		gateway:  normalizeGateway(gateway),
		client:   &http.Client{Timeout: 5 * time.Second},
		logger:   zaptest.NewLogger(t),
	}
}

func TestPut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-jwt" {
			t.Errorf("expected bearer auth, but got '%s'", got)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("expected file part: %v", err)
		}
		defer file.Close()
		if header.Filename != "s1-t1.pdf" {
			t.Errorf("expected filename 's1-t1.pdf', but got '%s'", header.Filename)
		}
		data, _ := io.ReadAll(file)
		if string(data) != "pdf-bytes" {
			t.Errorf("unexpected payload: %s", data)
		}
		if got := r.FormValue("network"); got != "public" {
			t.Errorf("expected network 'public', but got '%s'", got)
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"data": {"id": "file-1", "cid": "bafytestcid"}}`))
	}))
	defer srv.Close()

	store := testStore(t, srv, "gateway.pinata.cloud")

	pin, err := store.Put(context.Background(), []byte("pdf-bytes"), "s1-t1.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pin.CID != "bafytestcid" {
		t.Errorf("expected cid 'bafytestcid', but got '%s'", pin.CID)
	}
	if pin.URL != "https://gateway.pinata.cloud/ipfs/bafytestcid" {
		t.Errorf("unexpected gateway url: '%s'", pin.URL)
	}
	if pin.IPFSURI() != "ipfs://bafytestcid" {
		t.Errorf("unexpected ipfs uri: '%s'", pin.IPFSURI())
	}
}

func TestPutRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()

	store := testStore(t, srv, "gateway.pinata.cloud")

	if _, err := store.Put(context.Background(), []byte("data"), "x.pdf"); err == nil {
		t.Fatal("expected error, but got nil")
	}
}

func TestPutMissingCID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": {"id": "file-1"}}`))
	}))
	defer srv.Close()

	store := testStore(t, srv, "gateway.pinata.cloud")

	if _, err := store.Put(context.Background(), []byte("data"), "x.pdf"); err == nil {
		t.Fatal("expected error, but got nil")
	}
}

func TestNormalizeGateway(t *testing.T) {
	tests := []struct {
		name     string
		gateway  string
		expected string
	}{
		{name: "empty_default", gateway: "", expected: "gateway.pinata.cloud"},
		{name: "bare_host", gateway: "my-gw.mypinata.cloud", expected: "my-gw.mypinata.cloud"},
		{name: "https_scheme", gateway: "https://my-gw.mypinata.cloud", expected: "my-gw.mypinata.cloud"},
		{name: "trailing_slash", gateway: "https://my-gw.mypinata.cloud/", expected: "my-gw.mypinata.cloud"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizeGateway(tt.gateway); got != tt.expected {
				t.Errorf("expected '%s', but got '%s'", tt.expected, got)
			}
		})
	}
}
