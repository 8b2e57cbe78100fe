// Package browser drives Chrome through go-rod and exposes the loaded page as
// a dom.Document, so the extractor reads real computed styles and real
// stylesheet access rules.
package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// ErrClosed is returned by a Session that has been closed.
var ErrClosed = errors.New("browser: session is closed")

// Config controls how Chrome is started.
type Config struct {
	// RemoteURL is the DevTools websocket of an already running Chrome. When
	// empty a local Chrome is launched.
	RemoteURL string
	// Headful shows the browser window of a locally launched Chrome.
	Headful bool
	// Stealth applies the go-rod/stealth evasions to every page.
	Stealth bool
	// NavigationTimeout bounds Navigate plus WaitLoad. Default 30s.
	NavigationTimeout time.Duration
	Logger            *slog.Logger
}

func (c *Config) defaults() {
	if c.NavigationTimeout <= 0 {
		c.NavigationTimeout = 30 * time.Second
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Session owns one Chrome connection. Extractions through a session are
// serialized: Do holds the session lock for the whole callback.
type Session struct {
	cfg     Config
	mu      sync.Mutex
	browser *rod.Browser
	lnch    *launcher.Launcher
	closed  bool
}

// Open launches or connects to Chrome.
func Open(ctx context.Context, cfg Config) (*Session, error) {
	cfg.defaults()
	s := &Session{cfg: cfg}

	b, err := s.launch(ctx)
	if err != nil {
		return nil, err
	}
	s.browser = b
	return s, nil
}

func (s *Session) launch(ctx context.Context) (*rod.Browser, error) {
	log := s.cfg.Logger

	var wsURL string
	if s.cfg.RemoteURL != "" {
		wsURL = s.cfg.RemoteURL
		log.Info("browser: connecting to remote", "url", wsURL)
	} else {
		l := launcher.New().Context(ctx).Headless(!s.cfg.Headful)
		l = l.Set("disable-blink-features", "AutomationControlled")

		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("browser: launch: %w", err)
		}
		wsURL = u
		s.lnch = l
		log.Info("browser: launched local chrome", "url", wsURL, "headful", s.cfg.Headful)
	}

	b := rod.New().ControlURL(wsURL)
	if err := b.Connect(); err != nil {
		s.cleanupLauncher()
		return nil, fmt.Errorf("browser: connect: %w", err)
	}
	if err := b.IgnoreCertErrors(true); err != nil {
		log.Warn("browser: ignore cert errors failed", "error", err)
	}
	return b, nil
}

// Do loads pageURL in a new tab and calls fn with the loaded page. The tab is
// closed when fn returns. Calls on the same session never overlap.
func (s *Session) Do(ctx context.Context, pageURL string, fn func(*Page) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	p, err := s.load(ctx, pageURL)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := p.close(); cerr != nil {
			s.cfg.Logger.Warn("browser: close tab", "url", pageURL, "error", cerr)
		}
	}()

	return fn(p)
}

func (s *Session) load(ctx context.Context, pageURL string) (*Page, error) {
	var (
		page *rod.Page
		err  error
	)
	if s.cfg.Stealth {
		page, err = stealth.Page(s.browser)
	} else {
		page, err = s.browser.Page(proto.TargetCreateTarget{URL: ""})
	}
	if err != nil {
		return nil, fmt.Errorf("browser: create tab: %w", err)
	}

	navCtx, cancel := context.WithTimeout(ctx, s.cfg.NavigationTimeout)
	defer cancel()

	if err := page.Context(navCtx).Navigate(pageURL); err != nil {
		_ = page.Close()
		return nil, fmt.Errorf("browser: navigate %s: %w", pageURL, err)
	}
	if err := page.Context(navCtx).WaitLoad(); err != nil {
		s.cfg.Logger.Warn("browser: wait load timeout", "url", pageURL, "error", err)
	}

	p := &Page{page: page.Context(ctx)}
	if err := p.loadInfo(); err != nil {
		_ = page.Close()
		return nil, err
	}
	s.cfg.Logger.Info("browser: page loaded", "url", p.url, "title", p.title)
	return p, nil
}

// Close shuts down the connection and, for a launched Chrome, the process.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	var err error
	if s.browser != nil {
		err = s.browser.Close()
		s.browser = nil
	}
	s.cleanupLauncher()
	return err
}

func (s *Session) cleanupLauncher() {
	if s.lnch != nil {
		s.lnch.Cleanup()
		s.lnch = nil
	}
}
