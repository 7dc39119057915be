package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHead_ReturnsFinalRedirectedURL(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/start", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/final", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/final", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewClient(5, 1000, 1000)
	finalURL, status, err := c.Head(context.Background(), srv.URL+"/start")
	if err != nil {
		t.Fatalf("Head: %v", err)
	}
	if status != http.StatusOK {
		t.Errorf("status = %d, want 200", status)
	}
	if !strings.HasSuffix(finalURL, "/final") {
		t.Errorf("finalURL = %q, want the post-redirect URL", finalURL)
	}
}

func TestHead_RedirectCap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, r.URL.Path+"x", http.StatusFound)
	}))
	defer srv.Close()

	c := NewClient(3, 1000, 1000)
	_, _, err := c.Head(context.Background(), srv.URL+"/loop")
	if err == nil {
		t.Fatal("expected an error after exceeding the redirect cap")
	}
	if !errors.Is(err, ErrTooManyRedirects) {
		t.Errorf("err = %v, want ErrTooManyRedirects", err)
	}
}

func TestHead_ReportsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(5, 1000, 1000)
	_, status, err := c.Head(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Head: %v", err)
	}
	if status != http.StatusNotFound {
		t.Errorf("status = %d, want 404", status)
	}
}

func TestGet_FailsOnErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer srv.Close()

	c := NewClient(5, 1000, 1000)
	if _, err := c.Get(context.Background(), srv.URL); err == nil {
		t.Fatal("expected an error for HTTP 410")
	}
}

func TestGet_ReadsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			t.Error("request carried no User-Agent")
		}
		_, _ = w.Write([]byte("payload"))
	}))
	defer srv.Close()

	c := NewClient(5, 1000, 1000)
	body, err := c.Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(body) != "payload" {
		t.Errorf("body = %q, want %q", body, "payload")
	}
}

func TestWaitHost_HonorsContextCancel(t *testing.T) {
	// Rate 0.001 with burst 1: the second wait would block for minutes,
	// so a canceled context must surface immediately.
	c := NewClient(5, 0.001, 1)

	if err := c.waitHost(context.Background(), "slow.example"); err != nil {
		t.Fatalf("first wait: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := c.waitHost(ctx, "slow.example"); err == nil {
		t.Fatal("expected context error from rate-limited wait")
	}
}
