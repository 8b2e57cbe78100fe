package selector

import (
	"strings"
	"testing"

	"github.com/kataras/markup-extractor/pkg/dom"
)

const markup = `<html><body>
<section id="hero" class="card">
  <div class="flex p-4 myCard primary"><span class="text-sm">a</span><span>b</span></div>
  <div class="myCard primary">c</div>
</section>
</body></html>`

func TestAssign(t *testing.T) {
	doc, err := dom.ParseString(markup, dom.ParseOptions{})
	if err != nil {
		t.Fatal(err)
	}
	els, err := doc.QueryAll("section, section *")
	if err != nil {
		t.Fatal(err)
	}

	a := NewAssigner()
	keys := make([]string, len(els))
	for i, el := range els {
		k, err := a.Assign(el)
		if err != nil {
			t.Fatalf("Assign(%s): %v", dom.Describe(el), err)
		}
		keys[i] = k
	}

	if keys[0] != "section#hero" {
		t.Errorf("id key = %q", keys[0])
	}
	if keys[1] != "div.myCard.primary" {
		t.Errorf("class key = %q", keys[1])
	}
	for _, i := range []int{2, 3} {
		if !strings.HasPrefix(keys[i], "span["+MarkerPrefix) || !strings.HasSuffix(keys[i], "]") {
			t.Errorf("marker key = %q", keys[i])
		}
	}
	if keys[2] == keys[3] {
		t.Errorf("marker keys collide: %q", keys[2])
	}
	// identical custom class lists share a key.
	if keys[4] != keys[1] {
		t.Errorf("collision group = %q, want %q", keys[4], keys[1])
	}

	again, _ := a.Assign(els[2])
	if again != keys[2] {
		t.Errorf("Assign not memoized: %q != %q", again, keys[2])
	}

	name := strings.TrimSuffix(strings.TrimPrefix(keys[2], "span["), "]")
	if _, ok := els[2].Attr(name); !ok {
		t.Errorf("marker %q not written on the node", name)
	}

	// a new pass reuses the marker instead of adding another.
	next, _ := NewAssigner().Assign(els[2])
	if next != keys[2] {
		t.Errorf("second pass key = %q, want %q", next, keys[2])
	}
	if n := len(els[2].Attributes()); n != 1 {
		t.Errorf("attributes after two passes = %d, want 1", n)
	}
}

func TestStripMarkers(t *testing.T) {
	doc, err := dom.ParseString(markup, dom.ParseOptions{})
	if err != nil {
		t.Fatal(err)
	}
	section, _ := doc.Query("section")
	spans, _ := doc.QueryAll("span")
	a := NewAssigner()
	for _, s := range spans {
		if _, err := a.Assign(s); err != nil {
			t.Fatal(err)
		}
	}

	snap, err := section.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	StripMarkers(snap)
	out, _ := dom.Render(snap)
	if strings.Contains(out, MarkerPrefix) {
		t.Errorf("markers left in %s", out)
	}
	if !strings.Contains(out, `class="text-sm"`) {
		t.Errorf("other attributes lost: %s", out)
	}
}
