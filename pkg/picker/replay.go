package picker

import (
	"fmt"
	"strings"

	"github.com/kataras/markup-extractor/pkg/dom"
)

// keyAliases lets command lines spell arrow keys briefly.
var keyAliases = map[string]string{
	"up":     KeyUp,
	"parent": KeyUp,
	"down":   KeyDown,
	"child":  KeyDown,
	"left":   KeyLeft,
	"prev":   KeyLeft,
	"right":  KeyRight,
	"next":   KeyRight,
	"enter":  KeyEnter,
}

// ParseKeys splits a comma separated walk such as "up,up,next" into key names.
func ParseKeys(s string) ([]string, error) {
	var keys []string
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		if k, ok := keyAliases[strings.ToLower(f)]; ok {
			keys = append(keys, k)
			continue
		}
		switch f {
		case KeyUp, KeyDown, KeyLeft, KeyRight, KeyEnter:
			keys = append(keys, f)
		default:
			return nil, fmt.Errorf("picker: unknown key %q", f)
		}
	}
	return keys, nil
}

// Replay drives a fresh picker from start through keys and returns the node
// it ends on: the selected node when a key selected one, the hovered node
// otherwise. Navigation failures are returned as errors.
func Replay(start dom.Node, keys []string) (dom.Node, error) {
	s, _ := Reduce(State{}, Init{})
	s, _ = Reduce(s, Activate{})
	s, _ = Reduce(s, Hover{Node: start})

	for _, k := range keys {
		var effects []Effect
		s, effects = Reduce(s, Key{Key: k})
		for _, e := range effects {
			if n, ok := e.(Notify); ok && n.Err != nil {
				return nil, n.Err
			}
		}
	}

	if s.Selected != nil {
		return s.Selected, nil
	}
	if s.Hovered == nil {
		return nil, fmt.Errorf("picker: nothing to pick from %s", dom.Describe(start))
	}
	return s.Hovered, nil
}
