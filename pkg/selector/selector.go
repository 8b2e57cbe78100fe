// Package selector assigns every extracted node a stable, human readable
// selector key: tag#id, tag.custom1.custom2 or tag[data-extract-<nonce>].
package selector

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/kataras/markup-extractor/pkg/classify"
	"github.com/kataras/markup-extractor/pkg/dom"
	"golang.org/x/net/html"
)

// MarkerPrefix starts every synthetic marker attribute name.
const MarkerPrefix = "data-extract-"

var (
	// processToken keeps markers from different processes apart.
	processToken = strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	counter      atomic.Uint64
)

func nextMarker() string {
	return fmt.Sprintf("%s%s-%d", MarkerPrefix, processToken, counter.Add(1))
}

// Assigner hands out keys for one extraction pass. It is not safe for
// concurrent use; callers serialize extractions per document.
type Assigner struct {
	keys map[dom.Node]string
}

// NewAssigner starts a pass.
func NewAssigner() *Assigner {
	return &Assigner{keys: make(map[dom.Node]string)}
}

// Assign returns the key of n, computing it on first use. Only the marker
// case writes to the node.
func (a *Assigner) Assign(n dom.Node) (string, error) {
	if k, ok := a.keys[n]; ok {
		return k, nil
	}

	tag := n.TagName()
	var key string
	switch _, custom := classify.Split(n.ClassList()); {
	case n.ID() != "":
		key = tag + "#" + n.ID()
	case len(custom) > 0:
		key = tag + "." + strings.Join(custom, ".")
	default:
		name := existingMarker(n)
		if name == "" {
			name = nextMarker()
			if err := n.SetAttr(name, ""); err != nil {
				return "", fmt.Errorf("selector: mark %s: %w", tag, err)
			}
		}
		key = tag + "[" + name + "]"
	}

	a.keys[n] = key
	return key, nil
}

// Len reports how many nodes were assigned a key.
func (a *Assigner) Len() int { return len(a.keys) }

// existingMarker reuses a marker written by an earlier pass.
func existingMarker(n dom.Node) string {
	for _, attr := range n.Attributes() {
		if IsMarker(attr.Key) {
			return attr.Key
		}
	}
	return ""
}

// IsMarker reports whether an attribute name is a synthetic marker.
func IsMarker(name string) bool { return strings.HasPrefix(name, MarkerPrefix) }

// StripMarkers removes marker attributes from n and its descendants.
func StripMarkers(n *html.Node) {
	if n.Type == html.ElementNode && len(n.Attr) > 0 {
		kept := n.Attr[:0]
		for _, a := range n.Attr {
			if !IsMarker(a.Key) {
				kept = append(kept, a)
			}
		}
		n.Attr = kept
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		StripMarkers(c)
	}
}
