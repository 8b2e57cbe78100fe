// Package picker holds the element selection interaction as explicit state
// and a pure transition function. Nothing here touches a screen; the caller
// applies the returned effects (draw an outline, show a tooltip, start an
// extraction) in whatever surface it drives.
package picker

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kataras/markup-extractor/pkg/dom"
)

// UIPrefix marks the ids and classes of the picker's own overlay elements.
// Events on such nodes are ignored.
const UIPrefix = "markup-extractor-ui-"

var (
	// ErrNotInitialized is reported when the picker is used before Init.
	ErrNotInitialized = errors.New("picker: not initialized")
	// ErrNoSelection is reported when an extraction is asked for with no
	// selected element.
	ErrNoSelection = errors.New("picker: no element selected")
)

// State is the whole picker state. The zero value is an uninitialized,
// inactive picker.
type State struct {
	Initialized bool
	Active      bool
	Hovered     dom.Node
	Selected    dom.Node
}

// Event is an input to Reduce.
type Event interface{ event() }

type (
	// Init sets the picker up once. Repeated Init events are no-ops.
	Init struct{}
	// Activate starts listening for pointer and keyboard events.
	Activate struct{}
	// Deactivate stops the picker and forgets hover and selection.
	Deactivate struct{}
	// Hover moves the pointer over Node.
	Hover struct{ Node dom.Node }
	// Leave moves the pointer out of Node.
	Leave struct{ Node dom.Node }
	// Click selects Node.
	Click struct{ Node dom.Node }
	// Key is a key press, named as in KeyboardEvent.key.
	Key struct{ Key string }
	// ExtractSelected asks for the selected element to be extracted.
	ExtractSelected struct{}
)

func (Init) event()            {}
func (Activate) event()        {}
func (Deactivate) event()      {}
func (Hover) event()           {}
func (Leave) event()           {}
func (Click) event()           {}
func (Key) event()             {}
func (ExtractSelected) event() {}

// Keys handled while active.
const (
	KeyEscape = "Escape"
	KeyEnter  = "Enter"
	KeyUp     = "ArrowUp"
	KeyDown   = "ArrowDown"
	KeyLeft   = "ArrowLeft"
	KeyRight  = "ArrowRight"
)

// Effect is an instruction for the caller.
type Effect interface{ effect() }

type (
	// Highlight outlines Node. Selected distinguishes a selection from a
	// hover outline.
	Highlight struct {
		Node     dom.Node
		Selected bool
	}
	// Tooltip shows Text next to Node.
	Tooltip struct {
		Node dom.Node
		Text string
	}
	// HideTooltip hides the tooltip.
	HideTooltip struct{}
	// Clear removes every overlay element.
	Clear struct{}
	// RequestExtraction hands Node to the extraction pipeline.
	RequestExtraction struct{ Node dom.Node }
	// Notify reports an outcome to the user. Err is set for failures.
	Notify struct {
		Message string
		Err     error
	}
)

func (Highlight) effect()         {}
func (Tooltip) effect()           {}
func (HideTooltip) effect()       {}
func (Clear) effect()             {}
func (RequestExtraction) effect() {}
func (Notify) effect()            {}

// Reduce applies ev to s and returns the next state plus the effects to run.
// It never mutates the document.
func Reduce(s State, ev Event) (State, []Effect) {
	switch ev.(type) {
	case Init:
		s.Initialized = true
		return s, nil
	case Activate:
		if !s.Initialized {
			return s, []Effect{Notify{Err: ErrNotInitialized}}
		}
		if s.Active {
			return s, nil
		}
		s.Active = true
		return s, []Effect{Notify{Message: "Hover over elements, click to select, arrows to navigate, Escape to exit"}}
	case ExtractSelected:
		if s.Selected == nil {
			return s, []Effect{Notify{Err: ErrNoSelection}}
		}
		return s, []Effect{RequestExtraction{Node: s.Selected}}
	}

	if !s.Active {
		return s, nil
	}

	switch ev := ev.(type) {
	case Deactivate:
		return deactivate(s)
	case Hover:
		if ev.Node == nil || IsOwnUI(ev.Node) {
			return s, nil
		}
		return hover(s, ev.Node)
	case Leave:
		if ev.Node == nil || IsOwnUI(ev.Node) || !same(s.Hovered, ev.Node) {
			return s, nil
		}
		return s, []Effect{HideTooltip{}}
	case Click:
		if ev.Node == nil || IsOwnUI(ev.Node) {
			return s, nil
		}
		return selectNode(s, ev.Node)
	case Key:
		return key(s, ev.Key)
	}
	return s, nil
}

func deactivate(s State) (State, []Effect) {
	return State{Initialized: s.Initialized}, []Effect{Clear{}}
}

func hover(s State, n dom.Node) (State, []Effect) {
	s.Hovered = n
	return s, []Effect{
		Highlight{Node: n},
		Tooltip{Node: n, Text: TooltipText(n)},
	}
}

func selectNode(s State, n dom.Node) (State, []Effect) {
	s.Selected = n
	return s, []Effect{
		Highlight{Node: n, Selected: true},
		Notify{Message: "Selected " + TooltipText(n)},
	}
}

func key(s State, k string) (State, []Effect) {
	switch k {
	case KeyEscape:
		return deactivate(s)
	case KeyEnter:
		if s.Hovered == nil {
			return s, nil
		}
		return selectNode(s, s.Hovered)
	case KeyUp, KeyDown, KeyLeft, KeyRight:
		if s.Hovered == nil {
			return s, nil
		}
		next, err := move(s.Hovered, k)
		if err != nil {
			return s, []Effect{Notify{Err: fmt.Errorf("picker: %s from %s: %w", k, dom.Describe(s.Hovered), err)}}
		}
		if next == nil || IsOwnUI(next) {
			return s, nil
		}
		return hover(s, next)
	}
	return s, nil
}

func move(n dom.Node, k string) (dom.Node, error) {
	switch k {
	case KeyUp:
		return n.Parent()
	case KeyDown:
		children, err := n.Children()
		if err != nil || len(children) == 0 {
			return nil, err
		}
		return children[0], nil
	}

	parent, err := n.Parent()
	if err != nil || parent == nil {
		return nil, err
	}
	siblings, err := parent.Children()
	if err != nil {
		return nil, err
	}
	for i, sib := range siblings {
		if !same(sib, n) {
			continue
		}
		switch {
		case k == KeyLeft && i > 0:
			return siblings[i-1], nil
		case k == KeyRight && i+1 < len(siblings):
			return siblings[i+1], nil
		}
		return nil, nil
	}
	return nil, nil
}

// sameNoder is implemented by nodes whose wrappers are not unique per
// element, such as browser elements.
type sameNoder interface {
	SameNode(dom.Node) bool
}

func same(a, b dom.Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a == b {
		return true
	}
	if s, ok := a.(sameNoder); ok {
		return s.SameNode(b)
	}
	return false
}

// IsOwnUI reports whether n belongs to the picker overlay.
func IsOwnUI(n dom.Node) bool {
	if strings.HasPrefix(n.ID(), UIPrefix) {
		return true
	}
	for _, c := range n.ClassList() {
		if strings.HasPrefix(c, UIPrefix) {
			return true
		}
	}
	return false
}

// TooltipText describes n as tag.class1.class2#id.
func TooltipText(n dom.Node) string {
	var sb strings.Builder
	sb.WriteString(n.TagName())
	for _, c := range n.ClassList() {
		sb.WriteByte('.')
		sb.WriteString(c)
	}
	if id := n.ID(); id != "" {
		sb.WriteByte('#')
		sb.WriteString(id)
	}
	return sb.String()
}
