package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/starford/rounded/internal/apperr"
	"github.com/starford/rounded/internal/fetch"
)

// fakeFetcher serves canned bodies keyed by URL, with optional per-URL delays.
type fakeFetcher struct {
	bodies map[string]string
	delays map[string]time.Duration
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if d, ok := f.delays[url]; ok {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", apperr.ErrNetwork, ctx.Err())
		}
	}
	body, ok := f.bodies[url]
	if !ok {
		return nil, fmt.Errorf("%w: no such host", apperr.ErrNetwork)
	}
	return []byte(body), nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestLoad_FailedFetchYieldsPlaceholder(t *testing.T) {
	var mu sync.Mutex
	var events []Event
	l := NewLoader(&fakeFetcher{}, WithLogger(quietLogger()), WithEventCallback(func(ev Event) {
		mu.Lock()
		events = append(events, ev)
		mu.Unlock()
	}))

	cat, err := l.Load(context.Background(), []string{"https://bad.invalid/x.json"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cat.Len() != 1 {
		t.Fatalf("len = %d, want 1", cat.Len())
	}
	repo, err := cat.Repository(0)
	if err != nil {
		t.Fatalf("Repository(0): %v", err)
	}
	if repo.Description == "" || !strings.Contains(repo.Description, "https://bad.invalid/x.json") {
		t.Errorf("description = %q, want message naming the URL", repo.Description)
	}
	if !strings.Contains(repo.Description, "network error") {
		t.Errorf("description = %q, want error kind", repo.Description)
	}
	if repo.Packages.Len() != 0 || len(repo.Featured) != 0 {
		t.Error("placeholder should have no packages or featured entries")
	}

	if len(events) != 1 || events[0].Kind != EventFailed || events[0].Failure.URL != "https://bad.invalid/x.json" {
		t.Errorf("events = %+v", events)
	}
	if f := cat.Failures(); len(f) != 1 || f[0].Kind != apperr.ErrNetwork.Error() {
		t.Errorf("failures = %+v", f)
	}
}

func TestLoad_PreservesOrderRegardlessOfCompletion(t *testing.T) {
	urls := []string{"https://a/r.json", "https://b/r.json", "https://c/r.json", "https://d/r.json"}
	f := &fakeFetcher{
		bodies: map[string]string{
			urls[0]: `{"name":"A"}`,
			urls[1]: `{"name":"B"}`,
			urls[2]: `not json`,
			urls[3]: `{"name":"D"}`,
		},
		delays: map[string]time.Duration{
			urls[0]: 80 * time.Millisecond,
			urls[1]: 40 * time.Millisecond,
		},
	}
	cat, err := NewLoader(f, WithConcurrency(4), WithLogger(quietLogger())).Load(context.Background(), urls)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	snap := cat.Snapshot()
	if len(snap) != len(urls) {
		t.Fatalf("snapshot len = %d", len(snap))
	}
	for i, want := range []string{"A", "B", "", "D"} {
		if snap[i].URL != urls[i] {
			t.Errorf("slot %d url = %q, want %q", i, snap[i].URL, urls[i])
		}
		if snap[i].Name != want {
			t.Errorf("slot %d name = %q, want %q", i, snap[i].Name, want)
		}
	}
	if !snap[2].Failed || !strings.Contains(snap[2].Description, "parse error") {
		t.Errorf("slot 2 = %+v, want parse failure placeholder", snap[2])
	}
	if !cat.Ready() {
		t.Error("catalog should be ready")
	}
}

func TestLoad_AllFail(t *testing.T) {
	urls := []string{"https://x/1", "https://x/2", "https://x/3"}
	cat, err := NewLoader(&fakeFetcher{}, WithLogger(quietLogger())).Load(context.Background(), urls)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cat.Len() != len(urls) || cat.Loaded() != len(urls) {
		t.Errorf("len = %d loaded = %d, want %d", cat.Len(), cat.Loaded(), len(urls))
	}
	if len(cat.Failures()) != len(urls) {
		t.Errorf("failures = %d", len(cat.Failures()))
	}
}

func TestLoad_ValidationErrorKind(t *testing.T) {
	f := &fakeFetcher{bodies: map[string]string{"https://v/r.json": `{"packages":{}}`}}
	cat, _ := NewLoader(f, WithLogger(quietLogger())).Load(context.Background(), []string{"https://v/r.json"})
	repo, _ := cat.Repository(0)
	if repo.Error != apperr.ErrValidation.Error() {
		t.Errorf("error kind = %q, want %q", repo.Error, apperr.ErrValidation.Error())
	}
}

func TestLoad_EmptyURLList(t *testing.T) {
	cat, err := NewLoader(&fakeFetcher{}, WithLogger(quietLogger())).Load(context.Background(), nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cat.Len() != 0 || !cat.Ready() {
		t.Errorf("len = %d ready = %v", cat.Len(), cat.Ready())
	}
}

func TestLoad_CancelledLeavesSlotsUnfilled(t *testing.T) {
	urls := []string{"https://fast/r.json", "https://slow/r.json"}
	f := &fakeFetcher{
		bodies: map[string]string{urls[0]: `{}`, urls[1]: `{}`},
		delays: map[string]time.Duration{urls[1]: 5 * time.Second},
	}
	var mu sync.Mutex
	var kinds []string
	l := NewLoader(f, WithLogger(quietLogger()), WithEventCallback(func(ev Event) {
		mu.Lock()
		kinds = append(kinds, ev.Kind)
		mu.Unlock()
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	cat, err := l.Load(ctx, urls)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Error("cancelled load did not return promptly")
	}
	if cat.Len() != 2 {
		t.Fatalf("len = %d", cat.Len())
	}
	if _, err := cat.Repository(0); err != nil {
		t.Errorf("fast slot should be filled: %v", err)
	}
	if _, err := cat.Repository(1); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("slow slot err = %v, want still loading", err)
	}
	if cat.Ready() {
		t.Error("cancelled catalog reported ready")
	}
	mu.Lock()
	defer mu.Unlock()
	if len(kinds) != 1 || kinds[0] != EventLoaded {
		t.Errorf("events = %v, want one loaded event", kinds)
	}
}

func TestLoad_OverHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v6/repo.json":
			_, _ = w.Write([]byte(`{"name":"Snow","icon":"icon.png","packages":[{"bundleid":"a","icon":"a/i.png"}],"featured":[{"bundleid":"a","banner":"f.png"}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	urls := []string{srv.URL + "/v6/repo.json", srv.URL + "/missing.json"}
	cat, err := NewLoader(fetch.New(), WithLogger(quietLogger())).Load(context.Background(), urls)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	p, err := cat.Package(0, "a")
	if err != nil {
		t.Fatalf("Package: %v", err)
	}
	if p.Icon != srv.URL+"/v6/a/i.png" {
		t.Errorf("icon = %q", p.Icon)
	}
	repo, _ := cat.Repository(0)
	if repo.Featured[0].LinkedPackage != p {
		t.Error("featured entry not linked")
	}
	failed, _ := cat.Repository(1)
	if !failed.Failed || !strings.Contains(failed.Description, "404") {
		t.Errorf("missing manifest = %+v", failed)
	}
}
