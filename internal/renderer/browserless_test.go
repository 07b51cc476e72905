package renderer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

func TestRenderPDF(t *testing.T) {
	var gotReq pdfRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/pdf" {
			t.Errorf("expected path '/pdf', but got '%s'", r.URL.Path)
		}
		if r.URL.Query().Get("token") != "test-token" {
			t.Errorf("expected token query param, but got '%s'", r.URL.Query().Get("token"))
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		w.Write([]byte("%PDF-1.7 rendered"))
	}))
	defer srv.Close()

	r := NewBrowserlessRenderer(srv.URL, "test-token", 5*time.Second, zaptest.NewLogger(t))

	pdf, err := r.RenderPDF(context.Background(), "<html>cert</html>")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(pdf) != "%PDF-1.7 rendered" {
		t.Errorf("unexpected pdf bytes: %s", pdf)
	}
	if gotReq.HTML != "<html>cert</html>" {
		t.Errorf("expected html to be forwarded, but got '%s'", gotReq.HTML)
	}
	if gotReq.Options.Format != "A4" || !gotReq.Options.PrintBackground {
		t.Errorf("unexpected pdf options: %+v", gotReq.Options)
	}
}

func TestRenderPNG(t *testing.T) {
	var gotReq screenshotRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/screenshot" {
			t.Errorf("expected path '/screenshot', but got '%s'", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		w.Write([]byte("png-bytes"))
	}))
	defer srv.Close()

	r := NewBrowserlessRenderer(srv.URL, "test-token", 5*time.Second, zaptest.NewLogger(t))

	png, err := r.RenderPNG(context.Background(), "<html>card</html>", VOICViewport)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(png) != "png-bytes" {
		t.Errorf("unexpected png bytes: %s", png)
	}
	if gotReq.Viewport != VOICViewport {
		t.Errorf("expected viewport %+v, but got %+v", VOICViewport, gotReq.Viewport)
	}
	if gotReq.Options.Type != "png" || gotReq.Options.Encoding != "binary" || !gotReq.Options.FullPage {
		t.Errorf("unexpected screenshot options: %+v", gotReq.Options)
	}
}

func TestRenderFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "render crashed", http.StatusInternalServerError)
	}))
	defer srv.Close()

	r := NewBrowserlessRenderer(srv.URL, "test-token", 5*time.Second, zaptest.NewLogger(t))

	if _, err := r.RenderPDF(context.Background(), "<html></html>"); err == nil {
		t.Fatal("expected error, but got nil")
	}
}
