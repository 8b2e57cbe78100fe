// Package assets downloads the images referenced by extracted markup so an
// exported component can be used offline.
package assets

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/kataras/markup-extractor/pkg/fetch"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/sync/errgroup"
)

// Config holds configuration for asset download.
type Config struct {
	BaseURL   string // page URL that relative sources resolve against
	OutputDir string // local directory, default "markup-assets"
}

// Asset is one downloaded file.
type Asset struct {
	Source   string // value as written in the markup
	URL      string // resolved absolute URL
	FileName string

	order int
}

// Result holds the outcome of a download run.
type Result struct {
	Assets []Asset
	Errors []error // non-fatal per-file failures
}

const maxParallelDownloads = 5

// DefaultOutputDir is used when Config.OutputDir is empty.
const DefaultOutputDir = "markup-assets"

// CollectSources returns the image sources used under root in document order
// without duplicates: img and source src attributes, every srcset candidate
// and the poster of video elements. data: URIs are skipped.
func CollectSources(root *html.Node) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(src string) {
		src = strings.TrimSpace(src)
		if src == "" || seen[src] || strings.HasPrefix(strings.ToLower(src), "data:") {
			return
		}
		seen[src] = true
		out = append(out, src)
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Img, atom.Source:
				for _, a := range n.Attr {
					switch a.Key {
					case "src":
						add(a.Val)
					case "srcset":
						for _, candidate := range strings.Split(a.Val, ",") {
							if f := strings.Fields(candidate); len(f) > 0 {
								add(f[0])
							}
						}
					}
				}
			case atom.Video:
				for _, a := range n.Attr {
					if a.Key == "poster" {
						add(a.Val)
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return out
}

// Download fetches every source concurrently into config.OutputDir. Sources
// that fail to resolve or download are reported in Result.Errors.
func Download(ctx context.Context, client *fetch.Client, sources []string, config Config) (*Result, error) {
	if config.OutputDir == "" {
		config.OutputDir = DefaultOutputDir
	}
	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %q: %w", config.OutputDir, err)
	}

	var base *url.URL
	if config.BaseURL != "" {
		u, err := url.Parse(config.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("parse base url: %w", err)
		}
		base = u
	}

	result := &Result{}
	usedNames := make(map[string]int) // track filename collisions

	var g errgroup.Group
	g.SetLimit(maxParallelDownloads)
	var mu sync.Mutex

	for i, src := range sources {
		abs, err := resolve(base, src)
		if err != nil {
			mu.Lock()
			result.Errors = append(result.Errors, fmt.Errorf("resolve %s: %w", src, err))
			mu.Unlock()
			continue
		}

		// Deduplicate filenames in source order so names are stable.
		fileName := buildFileName(abs)
		if count, exists := usedNames[fileName]; exists {
			ext := filepath.Ext(fileName)
			stem := strings.TrimSuffix(fileName, ext)
			usedNames[fileName] = count + 1
			fileName = fmt.Sprintf("%s-%d%s", stem, count+1, ext)
		} else {
			usedNames[fileName] = 1
		}

		g.Go(func() error {
			data, err := client.GetBytes(ctx, abs)
			if err == nil {
				err = os.WriteFile(filepath.Join(config.OutputDir, fileName), data, 0644)
			}
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				// per-file failures never cancel the other downloads
				result.Errors = append(result.Errors, fmt.Errorf("failed to download %s: %w", src, err))
				return nil
			}
			result.Assets = append(result.Assets, Asset{Source: src, URL: abs, FileName: fileName, order: i})
			return nil
		})
	}

	_ = g.Wait()
	sort.Slice(result.Assets, func(i, j int) bool { return result.Assets[i].order < result.Assets[j].order })
	return result, nil
}

func resolve(base *url.URL, src string) (string, error) {
	ref, err := url.Parse(src)
	if err != nil {
		return "", err
	}
	if base != nil {
		ref = base.ResolveReference(ref)
	}
	if ref.Scheme != "http" && ref.Scheme != "https" {
		return "", fmt.Errorf("unsupported url %q", ref.String())
	}
	return ref.String(), nil
}

// buildFileName derives a kebab-case file name from the last path segment of
// an image URL, keeping its extension.
func buildFileName(rawURL string) string {
	name := "asset"
	ext := ""
	if u, err := url.Parse(rawURL); err == nil {
		seg := path.Base(u.Path)
		if seg != "/" && seg != "." {
			ext = strings.ToLower(path.Ext(seg))
			name = strings.TrimSuffix(seg, path.Ext(seg))
		}
	}

	name = toKebabCase(name)
	if name == "" {
		name = "asset"
	}
	if ext == "" || toKebabCase(strings.TrimPrefix(ext, ".")) == "" {
		ext = ".img"
	}
	return name + ext
}

// toKebabCase converts a string to kebab-case format (lowercase with hyphens).
func toKebabCase(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, " ", "-")
	s = strings.ReplaceAll(s, "_", "-")

	var result strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			result.WriteRune(r)
		}
	}
	return result.String()
}
