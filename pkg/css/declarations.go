// Package css holds the small CSS model shared by the extractor and the code
// generator: ordered declaration blocks, rules, media blocks, inline style
// parsing, stylesheet parsing and the presentational property tables.
package css

import (
	"encoding/json"
	"strings"
)

// Declaration is a single "property: value" pair.
type Declaration struct {
	Property string `json:"property"`
	Value    string `json:"value"`
}

// Declarations is an insertion-ordered property map. The zero value is ready
// to use. Rendering always follows insertion order so output is byte-stable.
// Copies share storage; Clone before mutating a block you do not own.
type Declarations struct {
	items []Declaration
	index map[string]int
}

// NewDeclarations builds an ordered block from pairs. Later duplicates replace
// earlier values in place.
func NewDeclarations(pairs ...Declaration) Declarations {
	var d Declarations
	for _, p := range pairs {
		d.Set(p.Property, p.Value)
	}
	return d
}

// Len reports the number of properties.
func (d Declarations) Len() int { return len(d.items) }

// Items returns a copy of the ordered pairs.
func (d Declarations) Items() []Declaration {
	out := make([]Declaration, len(d.items))
	copy(out, d.items)
	return out
}

// Get returns the value of a property.
func (d Declarations) Get(property string) (string, bool) {
	if d.index == nil {
		return "", false
	}
	i, ok := d.index[property]
	if !ok {
		return "", false
	}
	return d.items[i].Value, true
}

// Has reports whether property is set.
func (d Declarations) Has(property string) bool {
	_, ok := d.Get(property)
	return ok
}

// Set replaces an existing value in place or appends a new property.
func (d *Declarations) Set(property, value string) {
	if d.index == nil {
		d.index = make(map[string]int)
	}
	if i, ok := d.index[property]; ok {
		d.items[i].Value = value
		return
	}
	d.index[property] = len(d.items)
	d.items = append(d.items, Declaration{Property: property, Value: value})
}

// Delete removes a property, keeping the order of the rest.
func (d *Declarations) Delete(property string) {
	i, ok := d.index[property]
	if !ok {
		return
	}
	d.items = append(d.items[:i], d.items[i+1:]...)
	delete(d.index, property)
	for j := i; j < len(d.items); j++ {
		d.index[d.items[j].Property] = j
	}
}

// Merge returns a new block holding d overlaid with other. Properties already
// in d keep their position; values from other win.
func (d Declarations) Merge(other Declarations) Declarations {
	out := d.Clone()
	for _, it := range other.items {
		out.Set(it.Property, it.Value)
	}
	return out
}

// Clone returns an independent copy.
func (d Declarations) Clone() Declarations {
	var out Declarations
	for _, it := range d.items {
		out.Set(it.Property, it.Value)
	}
	return out
}

// Filter returns the declarations for which keep reports true.
func (d Declarations) Filter(keep func(property, value string) bool) Declarations {
	var out Declarations
	for _, it := range d.items {
		if keep(it.Property, it.Value) {
			out.Set(it.Property, it.Value)
		}
	}
	return out
}

// String renders the block as inline style text: "a: 1; b: 2".
func (d Declarations) String() string {
	parts := make([]string, 0, len(d.items))
	for _, it := range d.items {
		parts = append(parts, it.Property+": "+it.Value)
	}
	return strings.Join(parts, "; ")
}

// MarshalJSON encodes the block as an ordered list of pairs.
func (d Declarations) MarshalJSON() ([]byte, error) {
	if d.items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(d.items)
}

// UnmarshalJSON decodes an ordered list of pairs.
func (d *Declarations) UnmarshalJSON(data []byte) error {
	var items []Declaration
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	*d = NewDeclarations(items...)
	return nil
}

// MarshalYAML encodes the block as an ordered list of pairs.
func (d Declarations) MarshalYAML() (any, error) {
	return d.Items(), nil
}
