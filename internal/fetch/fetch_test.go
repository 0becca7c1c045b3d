package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/starford/rounded/internal/apperr"
)

func TestFetch_HTTPOK(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"r"}`))
	}))
	defer srv.Close()

	data, err := New(WithUserAgent("rounded-test")).Fetch(context.Background(), srv.URL+"/repo.json")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(data) != `{"name":"r"}` {
		t.Errorf("data = %q", data)
	}
	if gotUA != "rounded-test" {
		t.Errorf("user agent = %q", gotUA)
	}
}

func TestFetch_Non2xxIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := New().Fetch(context.Background(), srv.URL)
	if !errors.Is(err, apperr.ErrNetwork) {
		t.Fatalf("err = %v, want ErrNetwork", err)
	}
	if !strings.Contains(err.Error(), "404") {
		t.Errorf("err = %v, want status in message", err)
	}
}

func TestFetch_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	_, err := New(WithTimeout(50*time.Millisecond)).Fetch(context.Background(), srv.URL)
	if !errors.Is(err, apperr.ErrNetwork) {
		t.Fatalf("err = %v, want ErrNetwork", err)
	}
}

func TestFetch_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel()
	}()
	if _, err := New().Fetch(ctx, srv.URL); err == nil {
		t.Fatal("expected error after cancellation")
	}
}

func TestFetch_TooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 64)))
	}))
	defer srv.Close()

	_, err := New(WithMaxBytes(16)).Fetch(context.Background(), srv.URL)
	if !errors.Is(err, apperr.ErrNetwork) || !strings.Contains(err.Error(), "exceeds") {
		t.Errorf("err = %v", err)
	}
}

func TestFetch_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "repo.json")
	if err := os.WriteFile(path, []byte(`{}`), 0o644); err != nil {
		t.Fatal(err)
	}
	data, err := New().Fetch(context.Background(), "file://"+filepath.ToSlash(path))
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(data) != `{}` {
		t.Errorf("data = %q", data)
	}
}

func TestFetch_MissingFile(t *testing.T) {
	_, err := New().Fetch(context.Background(), "file:///definitely/not/here.json")
	if !errors.Is(err, apperr.ErrNetwork) {
		t.Errorf("err = %v, want ErrNetwork", err)
	}
}

func TestFetch_UnsupportedScheme(t *testing.T) {
	_, err := New().Fetch(context.Background(), "ftp://ex.com/repo.json")
	if !errors.Is(err, apperr.ErrNetwork) {
		t.Errorf("err = %v, want ErrNetwork", err)
	}
}
