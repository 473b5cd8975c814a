package stcl

import (
	"strings"
	"testing"
)

func TestTokenizer(t *testing.T) {
	input := `Star 12345 "Name One:Name Two" { RA 101.28 Dist -1.5e2 } [ 1 2 3 ] # comment`

	tok := NewTokenizer(strings.NewReader(input))

	want := []struct {
		kind TokenKind
		text string
		num  float64
	}{
		{TokenName, "Star", 0},
		{TokenNumber, "", 12345},
		{TokenString, "Name One:Name Two", 0},
		{TokenBeginGroup, "", 0},
		{TokenName, "RA", 0},
		{TokenNumber, "", 101.28},
		{TokenName, "Dist", 0},
		{TokenNumber, "", -150},
		{TokenEndGroup, "", 0},
		{TokenBeginArray, "", 0},
		{TokenNumber, "", 1},
		{TokenNumber, "", 2},
		{TokenNumber, "", 3},
		{TokenEndArray, "", 0},
		{TokenEnd, "", 0},
	}

	for i, w := range want {
		kind := tok.NextToken()
		if kind != w.kind {
			t.Fatalf("token %d: kind = %v, want %v", i, kind, w.kind)
		}
		switch w.kind {
		case TokenName, TokenString:
			if tok.Text() != w.text {
				t.Errorf("token %d: text = %q, want %q", i, tok.Text(), w.text)
			}
		case TokenNumber:
			if tok.Number() != w.num {
				t.Errorf("token %d: number = %f, want %f", i, tok.Number(), w.num)
			}
		}
	}
}

func TestTokenizerPushBack(t *testing.T) {
	tok := NewTokenizer(strings.NewReader("Alpha 42"))

	if tok.NextToken() != TokenName {
		t.Fatal("expected name")
	}
	tok.PushBack()
	if tok.NextToken() != TokenName || tok.Text() != "Alpha" {
		t.Fatal("push back must replay the same token")
	}
	if tok.NextToken() != TokenNumber || tok.Number() != 42 {
		t.Fatal("expected 42 after replay")
	}
}

func TestTokenizerLineNumbers(t *testing.T) {
	tok := NewTokenizer(strings.NewReader("a\n# comment line\nb\n"))

	tok.NextToken()
	if tok.LineNumber() != 1 {
		t.Errorf("line = %d, want 1", tok.LineNumber())
	}
	tok.NextToken()
	if tok.Text() != "b" || tok.LineNumber() != 3 {
		t.Errorf("token %q at line %d, want b at 3", tok.Text(), tok.LineNumber())
	}
}

func TestParserHash(t *testing.T) {
	input := `{
		RA 219.90
		Dec -60.83
		Distance 4.39
		SpectralType "G2V"
		SemiAxes [ 1 0.9 1 ]
		Clickable true
	}`

	v, err := NewParser(NewTokenizer(strings.NewReader(input))).ReadValue()
	if err != nil {
		t.Fatalf("ReadValue: %v", err)
	}
	if v.Kind() != HashValue {
		t.Fatalf("kind = %v, want hash", v.Kind())
	}
	h := v.Hash()

	if ra, ok := h.GetAngle("RA"); !ok || ra != 219.90 {
		t.Errorf("RA = %f, %v", ra, ok)
	}
	if d, ok := h.GetLength("Distance", 2); !ok || d != 8.78 {
		t.Errorf("Distance scaled = %f, %v", d, ok)
	}
	if st, ok := h.GetString("SpectralType"); !ok || st != "G2V" {
		t.Errorf("SpectralType = %q, %v", st, ok)
	}
	if axes, ok := h.GetVector3("SemiAxes"); !ok || axes != [3]float64{1, 0.9, 1} {
		t.Errorf("SemiAxes = %v, %v", axes, ok)
	}
	if b, ok := h.GetBoolean("Clickable"); !ok || !b {
		t.Errorf("Clickable = %v, %v", b, ok)
	}

	// Type mismatches read as absent.
	if _, ok := h.GetString("RA"); ok {
		t.Error("GetString on a number must report absent")
	}
	if _, ok := h.GetNumber("Missing"); ok {
		t.Error("absent key must report absent")
	}
}

func TestParserErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unterminated group", `{ RA 1.0`},
		{"unterminated array", `[ 1 2`},
		{"bare name value", `{ RA oops }`},
		{"empty stream", ``},
		{"unterminated string", `{ Name "abc`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewParser(NewTokenizer(strings.NewReader(tt.input))).ReadValue()
			if err == nil {
				t.Fatal("ReadValue succeeded, want error")
			}
		})
	}
}
