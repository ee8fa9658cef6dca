package workspace

import (
	"testing"

	"github.com/starford/gistnote/internal/models"
)

func pos(line, ch int) models.Position { return models.Position{Line: line, Ch: ch} }

func TestExtract(t *testing.T) {
	text := "first line\nsecond line\nthird line"

	cases := []struct {
		name string
		sel  models.Selection
		want string
	}{
		{"within one line", models.Selection{From: pos(1, 0), To: pos(1, 6)}, "second"},
		{"across lines", models.Selection{From: pos(0, 6), To: pos(1, 6)}, "line\nsecond"},
		{"reversed", models.Selection{From: pos(1, 6), To: pos(0, 6)}, "line\nsecond"},
		{"ch past line end clamps", models.Selection{From: pos(0, 0), To: pos(0, 99)}, "first line"},
		{"line past end clamps", models.Selection{From: pos(2, 6), To: pos(9, 0)}, "line"},
		{"empty", models.Selection{From: pos(1, 3), To: pos(1, 3)}, ""},
	}
	for _, tc := range cases {
		if got := Extract(text, tc.sel); got != tc.want {
			t.Errorf("%s: Extract = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestExtract_CountsRunes(t *testing.T) {
	text := "héllo wörld"
	got := Extract(text, models.Selection{From: pos(0, 6), To: pos(0, 11)})
	if got != "wörld" {
		t.Errorf("Extract = %q", got)
	}
}

func TestParseLineRange(t *testing.T) {
	text := "a\nb\nc\nd\n"
	sel, err := ParseLineRange("2:3")
	if err != nil {
		t.Fatalf("ParseLineRange: %v", err)
	}
	if got := Extract(text, sel); got != "b\nc" {
		t.Errorf("lines 2:3 = %q", got)
	}

	sel, err = ParseLineRange("4")
	if err != nil {
		t.Fatalf("ParseLineRange: %v", err)
	}
	if got := Extract(text, sel); got != "d" {
		t.Errorf("line 4 = %q", got)
	}

	for _, bad := range []string{"", "0:2", "x", "1:y"} {
		if _, err := ParseLineRange(bad); err == nil {
			t.Errorf("ParseLineRange(%q) expected error", bad)
		}
	}
}

func TestParsePosition(t *testing.T) {
	p, err := ParsePosition("3:7")
	if err != nil || p != pos(3, 7) {
		t.Errorf("ParsePosition = %v, %v", p, err)
	}
	for _, bad := range []string{"3", "-1:0", "a:b"} {
		if _, err := ParsePosition(bad); err == nil {
			t.Errorf("ParsePosition(%q) expected error", bad)
		}
	}
}
