package document

import "testing"

func TestNewNormalizesCRLF(t *testing.T) {
	d := New("a.js", "javascript", "a\r\nb\r\nc")
	if d.Text() != "a\nb\nc" {
		t.Errorf("expected normalized text, got %q", d.Text())
	}
	if d.LineCount() != 3 {
		t.Errorf("expected 3 lines, got %d", d.LineCount())
	}
}

func TestOffsetPositionRoundTrip(t *testing.T) {
	d := New("a.go", "go", "package main\n\nfunc main() {\n}\n")
	for off := 0; off <= d.Len(); off++ {
		p := d.PositionAt(off)
		if got := d.OffsetAt(p); got != off {
			t.Fatalf("offset %d -> %+v -> %d", off, p, got)
		}
	}
}

func TestClamp(t *testing.T) {
	d := New("a.txt", "plaintext", "ab\ncd")
	tests := []struct {
		in, want Position
	}{
		{Position{Line: -1, Character: 3}, Position{}},
		{Position{Line: 0, Character: 9}, Position{Line: 0, Character: 2}},
		{Position{Line: 7, Character: 0}, Position{Line: 1, Character: 2}},
		{Position{Line: 1, Character: -2}, Position{Line: 1, Character: 0}},
	}
	for _, tt := range tests {
		if got := d.Clamp(tt.in); got != tt.want {
			t.Errorf("Clamp(%+v) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestLinesTextIsContiguous(t *testing.T) {
	d := New("a.txt", "plaintext", "one\ntwo\nthree\nfour")
	got := d.LinesText(0, 2) + d.LinesText(2, 4)
	if got != d.Text() {
		t.Errorf("expected %q, got %q", d.Text(), got)
	}
	if d.LinesText(3, 3) != "" {
		t.Error("expected empty text for empty line range")
	}
	if d.LinesText(3, 10) != "four" {
		t.Errorf("expected clamped last line, got %q", d.LinesText(3, 10))
	}
}

func TestRangeContains(t *testing.T) {
	r := Range{Start: Position{Line: 2, Character: 0}, End: Position{Line: 5, Character: 1}}
	if !r.Contains(Position{Line: 3, Character: 10}) {
		t.Error("expected inner position to be contained")
	}
	if !r.Contains(Position{Line: 5, Character: 1}) {
		t.Error("expected end position to be contained")
	}
	if r.Contains(Position{Line: 1, Character: 0}) {
		t.Error("expected earlier line to be outside")
	}
	if r.LineSpan() != 4 {
		t.Errorf("expected span 4, got %d", r.LineSpan())
	}
}
