package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kataras/markup-extractor/pkg/dom"
	"golang.org/x/time/rate"
)

func newTestClient() *Client {
	c := NewClientWith(http.DefaultClient)
	c.Backoff = 0
	return c
}

func TestGet(t *testing.T) {
	tests := []struct {
		name      string
		statuses  []int // one per attempt; the last repeats
		wantErr   bool
		wantCalls int32
	}{
		{name: "ok", statuses: []int{200}, wantCalls: 1},
		{name: "retry after 503", statuses: []int{503, 200}, wantCalls: 2},
		{name: "retry after 429", statuses: []int{429, 429, 200}, wantCalls: 3},
		{name: "gives up after max retries", statuses: []int{500}, wantErr: true, wantCalls: 3},
		{name: "no retry on 404", statuses: []int{404}, wantErr: true, wantCalls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				n := int(calls.Add(1)) - 1
				if n >= len(tt.statuses) {
					n = len(tt.statuses) - 1
				}
				if ua := r.Header.Get("User-Agent"); ua != UserAgent {
					t.Errorf("User-Agent = %q", ua)
				}
				w.WriteHeader(tt.statuses[n])
				fmt.Fprint(w, "body")
			}))
			defer srv.Close()

			got, err := newTestClient().Get(context.Background(), srv.URL)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Get() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != "body" {
				t.Errorf("Get() = %q", got)
			}
			if calls.Load() != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls.Load(), tt.wantCalls)
			}
		})
	}
}

func TestGetCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := newTestClient().Get(ctx, srv.URL); err == nil {
		t.Fatal("Get() succeeded with a canceled context")
	}
}

func TestHostPacing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "ok")
	}))
	defer srv.Close()

	c := newTestClient()
	c.HostRate = rate.Every(40 * time.Millisecond)
	c.HostBurst = 1

	start := time.Now()
	for i := 0; i < 3; i++ {
		if _, err := c.Get(context.Background(), srv.URL); err != nil {
			t.Fatal(err)
		}
	}
	if elapsed := time.Since(start); elapsed < 70*time.Millisecond {
		t.Errorf("3 paced requests took %v", elapsed)
	}
	if c.limiter("example.com") == c.limiter(strings.TrimPrefix(srv.URL, "http://")) {
		t.Error("hosts share a limiter")
	}

	c.HostRate = 0
	if c.limiter("example.com") != nil {
		t.Error("pacing not disabled")
	}
}

func TestDocument(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head><title>Shop</title>
<link rel="stylesheet" href="/site.css">
<link rel="stylesheet" href="https://fonts.example.org/f.css">
</head><body><div class="hero">x</div></body></html>`)
	})
	mux.HandleFunc("/site.css", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `.hero { color: teal; } @media (min-width: 640px) { .hero { padding: 2rem; } }`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	doc, err := newTestClient().Document(context.Background(), srv.URL+"/")
	if err != nil {
		t.Fatal(err)
	}
	if doc.Title() != "Shop" {
		t.Errorf("Title() = %q", doc.Title())
	}

	hero, _ := doc.Query(".hero")
	style, err := hero.ComputedStyle()
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := style.Get("color"); v != "teal" {
		t.Errorf("color from linked sheet = %q", v)
	}

	sheets, _ := doc.StyleSheets()
	if len(sheets) != 2 {
		t.Fatalf("sheets = %d", len(sheets))
	}
	if blocks, err := sheets[0].MediaBlocks(); err != nil || len(blocks) != 1 {
		t.Errorf("same-origin media = %v, %v", blocks, err)
	}
	if _, err := sheets[1].MediaBlocks(); !errors.Is(err, dom.ErrInaccessible) || !strings.Contains(err.Error(), "cross-origin") {
		t.Errorf("cross-origin err = %v", err)
	}
}
