package input

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/cjeanneret/ScaraGo/internal/config"
)

func TestConsole_ReadsPairs(t *testing.T) {
	c := NewConsole(strings.NewReader("10 20\n-5.5,30.25\n"))

	x, y, err := c.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if x != 10 || y != 20 {
		t.Errorf("got (%v, %v), want (10, 20)", x, y)
	}

	x, y, err = c.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if x != -5.5 || y != 30.25 {
		t.Errorf("got (%v, %v), want (-5.5, 30.25)", x, y)
	}

	_, _, err = c.Next()
	if !errors.Is(err, io.EOF) {
		t.Errorf("err = %v, want io.EOF", err)
	}
}

func TestConsole_SkipsBlankLines(t *testing.T) {
	c := NewConsole(strings.NewReader("\n\n   \n1 2\n"))

	x, y, err := c.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if x != 1 || y != 2 {
		t.Errorf("got (%v, %v), want (1, 2)", x, y)
	}
}

func TestConsole_MalformedLine(t *testing.T) {
	c := NewConsole(strings.NewReader("not a pair\n3 4\n"))

	if _, _, err := c.Next(); err == nil {
		t.Fatal("expected error for malformed line")
	}

	// The next line is still readable.
	x, y, err := c.Next()
	if err != nil {
		t.Fatalf("Next after malformed line: %v", err)
	}
	if x != 3 || y != 4 {
		t.Errorf("got (%v, %v), want (3, 4)", x, y)
	}
}

func TestParsePair(t *testing.T) {
	cases := []struct {
		name    string
		line    string
		x, y    float64
		wantErr bool
	}{
		{"space separated", "1.5 -2", 1.5, -2, false},
		{"comma separated", "1.5,-2", 1.5, -2, false},
		{"comma with spaces", "1.5, -2", 1.5, -2, false},
		{"single value", "42", 0, 0, true},
		{"three values", "1 2 3", 0, 0, true},
		{"non numeric x", "abc 2", 0, 0, true},
		{"non numeric y", "1 xyz", 0, 0, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			x, y, err := ParsePair(tc.line)
			if tc.wantErr {
				if err == nil {
					t.Errorf("ParsePair(%q) expected error", tc.line)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePair(%q): %v", tc.line, err)
			}
			if x != tc.x || y != tc.y {
				t.Errorf("ParsePair(%q) = (%v, %v), want (%v, %v)", tc.line, x, y, tc.x, tc.y)
			}
		})
	}
}

func TestNew_Console(t *testing.T) {
	src, err := New(config.InputConfig{Type: "console"}, strings.NewReader("7 8\n"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer src.Close()

	x, y, err := src.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if x != 7 || y != 8 {
		t.Errorf("got (%v, %v), want (7, 8)", x, y)
	}
}

func TestNew_UnsupportedType(t *testing.T) {
	if _, err := New(config.InputConfig{Type: "pigeon"}, strings.NewReader("")); err == nil {
		t.Error("expected error for unsupported input type")
	}
}
