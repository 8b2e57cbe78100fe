package classify

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		class string
		want  Kind
		group string
	}{
		{name: "display", class: "flex", want: Utility, group: "display"},
		{name: "hidden", class: "hidden", want: Utility, group: "display"},
		{name: "position", class: "absolute", want: Utility, group: "position"},
		{name: "flex direction", class: "flex-col", want: Utility, group: "flex-direction"},
		{name: "padding", class: "p-4", want: Utility, group: "padding"},
		{name: "padding axis", class: "px-2.5", want: Utility, group: "padding"},
		{name: "negative margin", class: "-mt-2", want: Utility, group: "margin"},
		{name: "margin auto", class: "mx-auto", want: Utility, group: "margin"},
		{name: "gap", class: "gap-x-4", want: Utility, group: "gap"},
		{name: "fraction width", class: "w-1/2", want: Utility, group: "width"},
		{name: "max width", class: "max-w-2xl", want: Utility, group: "max-width"},
		{name: "font size", class: "text-2xl", want: Utility, group: "font-size"},
		{name: "font weight", class: "font-bold", want: Utility, group: "font-weight"},
		{name: "text align", class: "text-center", want: Utility, group: "text-align"},
		{name: "text shade", class: "text-red-500", want: Utility, group: "text-color-shade"},
		{name: "text white", class: "text-white", want: Utility, group: "text-color"},
		{name: "bg shade", class: "bg-blue-50", want: Utility, group: "background-color-shade"},
		{name: "border shade", class: "border-gray-200", want: Utility, group: "border-color-shade"},
		{name: "rounded", class: "rounded-lg", want: Utility, group: "border-radius"},
		{name: "border", class: "border", want: Utility, group: "border-width"},
		{name: "border side width", class: "border-b-2", want: Utility, group: "border-width"},
		{name: "shadow", class: "shadow-md", want: Utility, group: "shadow"},
		{name: "opacity", class: "opacity-50", want: Utility, group: "opacity"},
		{name: "transition", class: "transition-colors", want: Utility, group: "transition"},
		{name: "animation", class: "animate-spin", want: Utility, group: "animation"},

		{name: "responsive prefix", class: "md:flex", want: Utility, group: "display"},
		{name: "state prefix", class: "hover:bg-blue-600", want: Utility, group: "background-color-shade"},
		{name: "both prefixes", class: "lg:focus:p-2", want: Utility, group: "padding"},

		{name: "custom", class: "myCard", want: Custom},
		{name: "bem custom", class: "card__title--active", want: Custom},
		{name: "unknown colour", class: "text-brand-500", want: Custom},
		{name: "shade-less colour", class: "bg-red", want: Custom},
		{name: "prefix only", class: "md:", want: Custom},
		{name: "state before responsive", class: "hover:md:flex", want: Custom},
		{name: "two responsive prefixes", class: "sm:md:flex", want: Custom},
		{name: "unknown prefix", class: "print:flex", want: Custom},
		{name: "empty", class: "", want: Custom},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.class); got != tt.want {
				t.Fatalf("Classify(%q) = %s, want %s", tt.class, got, tt.want)
			}
			if tt.want != Utility {
				return
			}
			r, ok := Match(tt.class)
			if !ok {
				t.Fatalf("Match(%q) found no rule", tt.class)
			}
			if r.Group != tt.group {
				t.Errorf("Match(%q) group = %q, want %q", tt.class, r.Group, tt.group)
			}
		})
	}
}

func TestSplitPartitions(t *testing.T) {
	classes := []string{"flex", "myCard", "p-4", "hover:text-blue-500", "card", "flex", ""}

	utility, custom := Split(classes)
	if want := []string{"flex", "p-4", "hover:text-blue-500", "flex"}; !reflect.DeepEqual(utility, want) {
		t.Errorf("utility = %v, want %v", utility, want)
	}
	if want := []string{"myCard", "card"}; !reflect.DeepEqual(custom, want) {
		t.Errorf("custom = %v, want %v", custom, want)
	}

	// every non-empty input lands on exactly one side.
	seen := map[string]int{}
	for _, c := range utility {
		seen[c]++
	}
	for _, c := range custom {
		if seen[c] > 0 {
			t.Errorf("%q classified both ways", c)
		}
		seen[c]++
	}
	for _, c := range classes {
		if c != "" && seen[c] == 0 {
			t.Errorf("%q lost by Split", c)
		}
	}
}

func TestSet(t *testing.T) {
	s := NewSet("p-4", "flex", "p-4")
	s.Add("block")

	if s.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", s.Len())
	}
	if !s.Has("flex") || s.Has("grid") {
		t.Errorf("Has() wrong")
	}
	if want := []string{"p-4", "flex", "block"}; !reflect.DeepEqual(s.Items(), want) {
		t.Errorf("Items() = %v, want %v", s.Items(), want)
	}
	if want := []string{"block", "flex", "p-4"}; !reflect.DeepEqual(s.Sorted(), want) {
		t.Errorf("Sorted() = %v, want %v", s.Sorted(), want)
	}

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `["p-4","flex","block"]` {
		t.Errorf("MarshalJSON = %s", data)
	}

	var empty Set
	data, _ = json.Marshal(empty)
	if string(data) != "[]" {
		t.Errorf("empty MarshalJSON = %s", data)
	}
}
