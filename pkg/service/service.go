// Package service runs extraction requests against parsed or downloaded
// pages and records the results in the history. The HTTP API and the MCP
// tools are both thin transports over it.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	markupextractor "github.com/kataras/markup-extractor"
	"github.com/kataras/markup-extractor/pkg/dom"
	"github.com/kataras/markup-extractor/pkg/fetch"
	"github.com/kataras/markup-extractor/pkg/generator"
	"github.com/kataras/markup-extractor/pkg/history"
	"github.com/kataras/markup-extractor/pkg/picker"
	"github.com/kataras/markup-extractor/pkg/settings"
)

var (
	// ErrInvalidRequest wraps malformed requests such as a missing source,
	// an unknown format, a selector that does not compile or a walk that
	// cannot be replayed.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrSource wraps failures to download or parse the page.
	ErrSource = errors.New("source unavailable")
)

// ExtractRequest describes one extraction. HTML is parsed as given; without
// it the page at URL is downloaded. Unset switches fall back to the
// settings.
type ExtractRequest struct {
	HTML                   string   `json:"html,omitempty"`
	URL                    string   `json:"url,omitempty"`
	Selector               string   `json:"selector,omitempty"`
	Walk                   []string `json:"walk,omitempty"`
	Formats                []string `json:"formats,omitempty"`
	PreserveUtilityClasses *bool    `json:"preserveUtilityClasses,omitempty"`
	IncludeInlineStyles    *bool    `json:"includeInlineStyles,omitempty"`
	ComponentName          string   `json:"componentName,omitempty"`
}

// Config configures a Service.
type Config struct {
	Store    *history.Store
	Settings settings.Settings
	// Fetcher downloads pages for requests that name a URL. Default
	// fetch.NewClient().
	Fetcher *fetch.Client
	Logger  *slog.Logger
}

// Service executes extraction requests.
type Service struct {
	cfg Config
}

// New validates cfg and returns a Service.
func New(cfg Config) (*Service, error) {
	if cfg.Store == nil {
		return nil, errors.New("service: a history store is required")
	}
	if err := cfg.Settings.Validate(); err != nil {
		return nil, err
	}
	if cfg.Fetcher == nil {
		cfg.Fetcher = fetch.NewClient()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Service{cfg: cfg}, nil
}

// Store returns the history the service saves into.
func (s *Service) Store() *history.Store { return s.cfg.Store }

// Settings returns the settings requests default to.
func (s *Service) Settings() settings.Settings { return s.cfg.Settings }

// Options resolves req against the settings.
func (s *Service) Options(req ExtractRequest) (markupextractor.Options, error) {
	opts := markupextractor.Options{
		PreserveUtilityClasses: s.cfg.Settings.PreserveTailwind,
		IncludeInlineStyles:    s.cfg.Settings.IncludeInlineStyles,
		ComponentName:          req.ComponentName,
		Selector:               req.Selector,
		Logger:                 logAdapter{s.cfg.Logger},
	}
	if req.PreserveUtilityClasses != nil {
		opts.PreserveUtilityClasses = *req.PreserveUtilityClasses
	}
	if req.IncludeInlineStyles != nil {
		opts.IncludeInlineStyles = *req.IncludeInlineStyles
	}
	for _, f := range req.Formats {
		format, err := generator.ParseFormat(f)
		if err != nil {
			return opts, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		opts.Formats = append(opts.Formats, format)
	}
	for _, k := range req.Walk {
		keys, err := picker.ParseKeys(k)
		if err != nil {
			return opts, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		opts.Walk = append(opts.Walk, keys...)
	}
	return opts, nil
}

// Extract runs req and saves the result as the newest history entry.
func (s *Service) Extract(ctx context.Context, req ExtractRequest) (*history.Component, error) {
	if req.HTML == "" && req.URL == "" {
		return nil, fmt.Errorf("%w: html or url is required", ErrInvalidRequest)
	}
	opts, err := s.Options(req)
	if err != nil {
		return nil, err
	}

	var doc *dom.HTMLDocument
	if req.HTML != "" {
		doc, err = dom.ParseString(req.HTML, dom.ParseOptions{URL: req.URL})
	} else {
		doc, err = s.cfg.Fetcher.Document(ctx, req.URL)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSource, err)
	}

	result, err := markupextractor.ExtractDocument(doc, opts)
	if err != nil {
		if errors.Is(err, dom.ErrInvalidSelector) || errors.Is(err, markupextractor.ErrWalk) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
		}
		return nil, err
	}
	c, err := s.cfg.Store.Save(ctx, result)
	if err != nil {
		return nil, err
	}
	s.cfg.Logger.Info("service: extracted", "id", c.ID, "element", c.Element, "warnings", len(result.Warnings))
	return c, nil
}

// Artifact returns the text of one export of a stored component. part is
// "primary" (or empty), "auxiliary" or "fragment". name is the download file
// name of that text.
func (s *Service) Artifact(ctx context.Context, id string, format generator.Format, part string) (name, text string, err error) {
	c, err := s.cfg.Store.Get(ctx, id)
	if err != nil {
		return "", "", err
	}
	a, ok := c.Result.Artifacts[format]
	if !ok {
		return "", "", fmt.Errorf("%w: component %s has no %s export", history.ErrNotFound, c.ID, format)
	}

	name, text = a.Filename(c.Time()), a.Primary
	switch part {
	case "", "primary":
	case "auxiliary":
		name, text = generator.AuxiliaryFilename(format, c.Result.Component), a.Auxiliary
	case "fragment":
		text = a.Fragment
	default:
		return "", "", fmt.Errorf("%w: unknown part %q", ErrInvalidRequest, part)
	}
	if text == "" {
		return "", "", fmt.Errorf("%w: component %s has no %s %s text", history.ErrNotFound, c.ID, format, part)
	}
	return name, text, nil
}

// logAdapter routes extraction progress to a slog.Logger.
type logAdapter struct{ l *slog.Logger }

func (a logAdapter) Infof(format string, args ...any) {
	a.l.Debug("extract: " + fmt.Sprintf(format, args...))
}

func (a logAdapter) Warnf(format string, args ...any) {
	a.l.Warn("extract: " + fmt.Sprintf(format, args...))
}

func (a logAdapter) Errorf(format string, args ...any) {
	a.l.Error("extract: " + fmt.Sprintf(format, args...))
}
