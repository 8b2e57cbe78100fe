// Package dom describes the live document the extractor reads from and ships
// an in-memory implementation of it built on golang.org/x/net/html.
//
// Two documents implement these interfaces: the parsed document in this
// package, whose computed styles come from a source-order static cascade, and
// the Chrome-backed document in package browser, which asks the page.
package dom

import (
	"errors"

	"github.com/kataras/markup-extractor/pkg/css"
	"golang.org/x/net/html"
)

var (
	// ErrDetached is returned when a node is no longer part of its document.
	ErrDetached = errors.New("dom: node is detached from its document")
	// ErrInvalidSelector wraps selectors that cannot be compiled.
	ErrInvalidSelector = errors.New("dom: invalid selector")
	// ErrInaccessible marks a stylesheet whose rules cannot be read, for
	// example a cross-origin sheet.
	ErrInaccessible = errors.New("dom: stylesheet rules are not accessible")
)

// Node is one element of a live document.
type Node interface {
	// TagName is the lower-cased element name.
	TagName() string
	ID() string
	ClassList() []string
	// StyleText is the raw value of the style attribute.
	StyleText() string
	Attr(name string) (string, bool)
	Attributes() []html.Attribute
	SetAttr(name, value string) error
	// Parent returns nil at the document element.
	Parent() (Node, error)
	// Children returns the element children in source order.
	Children() ([]Node, error)
	ComputedStyle() (css.Declarations, error)
	Matches(selector string) (bool, error)
	// Snapshot returns a detached deep copy of the node and its subtree.
	Snapshot() (*html.Node, error)
	Attached() (bool, error)
	Document() Document
}

// Document is the owner of a tree of nodes.
type Document interface {
	URL() string
	Title() string
	StyleSheets() ([]StyleSheet, error)
}

// StyleSheet is one stylesheet attached to a document.
type StyleSheet interface {
	// Href is empty for embedded <style> sheets.
	Href() string
	// MediaBlocks returns the @media blocks of the sheet, in source order. An
	// error wrapping ErrInaccessible means the rules could not be read.
	MediaBlocks() ([]css.MediaBlock, error)
}

// Walk visits root and its element descendants in pre-order. Returning false
// from fn skips the children of the visited node.
func Walk(root Node, fn func(Node) (bool, error)) error {
	descend, err := fn(root)
	if err != nil || !descend {
		return err
	}
	children, err := root.Children()
	if err != nil {
		return err
	}
	for _, c := range children {
		if err := Walk(c, fn); err != nil {
			return err
		}
	}
	return nil
}

// Describe renders a short label such as div#main.card.
func Describe(n Node) string {
	s := n.TagName()
	if id := n.ID(); id != "" {
		s += "#" + id
	}
	for _, c := range n.ClassList() {
		s += "." + c
	}
	return s
}
