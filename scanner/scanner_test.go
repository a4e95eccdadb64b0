package scanner

import (
	"testing"

	"treelox/token"
)

func scanAll(src string) []token.Token {
	s := MakeScanner(src)
	var toks []token.Token
	for {
		tok := s.NextToken()
		toks = append(toks, tok)
		if tok.Kind == token.END_OF_FILE {
			return toks
		}
	}
}

func kinds(toks []token.Token) []token.TokenKind {
	out := make([]token.TokenKind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func TestNextTokenPunctuationAndOperators(t *testing.T) {
	tests := []struct {
		src  string
		want []token.TokenKind
	}{
		{"(){},.;:?", []token.TokenKind{
			token.LEFT_PAREN, token.RIGHT_PAREN, token.LEFT_BRACE, token.RIGHT_BRACE,
			token.COMMA, token.DOT, token.SEMICOLON, token.COLON, token.QUESTION,
			token.END_OF_FILE,
		}},
		{"! != = == < <= > >=", []token.TokenKind{
			token.BANG, token.BANG_EQUAL, token.EQUAL, token.EQUAL_EQUAL,
			token.LESS, token.LESS_EQUAL, token.GREATER, token.GREATER_EQUAL,
			token.END_OF_FILE,
		}},
	}

	for _, tt := range tests {
		got := kinds(scanAll(tt.src))
		if len(got) != len(tt.want) {
			t.Fatalf("scanAll(%q) = %v, want %v", tt.src, got, tt.want)
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("scanAll(%q)[%d] = %v, want %v", tt.src, i, got[i], tt.want[i])
			}
		}
	}
}

func TestNextTokenLineComment(t *testing.T) {
	toks := scanAll("1 // a comment\n// another\n2")
	got := kinds(toks)
	want := []token.TokenKind{token.NUMBER, token.NUMBER, token.END_OF_FILE}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if toks[1].Line != 3 {
		t.Errorf("second number on line %v, want 3", toks[1].Line)
	}
}

func TestNextTokenStringLiteral(t *testing.T) {
	toks := scanAll(`"hello world"`)
	if toks[0].Kind != token.STRING {
		t.Fatalf("got kind %v, want STRING", toks[0].Kind)
	}
	if toks[0].Literal != "hello world" {
		t.Errorf("got literal %q, want %q", toks[0].Literal, "hello world")
	}
}

func TestNextTokenUnterminatedString(t *testing.T) {
	s := MakeScanner(`"unterminated`)
	tok := s.NextToken()
	if tok.Kind != token.INVALID {
		t.Fatalf("got kind %v, want INVALID", tok.Kind)
	}
	if !s.HadError {
		t.Error("HadError not set after unterminated string")
	}
}

func TestNextTokenNumberLiteral(t *testing.T) {
	tests := []struct {
		src  string
		want float64
	}{
		{"123", 123},
		{"3.14", 3.14},
		{"0.5", 0.5},
	}
	for _, tt := range tests {
		s := MakeScanner(tt.src)
		tok := s.NextToken()
		if tok.Kind != token.NUMBER {
			t.Fatalf("scan(%q) kind = %v, want NUMBER", tt.src, tok.Kind)
		}
		if tok.Literal != tt.want {
			t.Errorf("scan(%q) literal = %v, want %v", tt.src, tok.Literal, tt.want)
		}
	}
}

func TestNextTokenKeywordsVsIdentifiers(t *testing.T) {
	toks := scanAll("class foo super this classic")
	want := []token.TokenKind{
		token.CLASS, token.IDENTIFIER, token.SUPER, token.THIS, token.IDENTIFIER,
		token.END_OF_FILE,
	}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Errorf("[%d] got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestNextTokenUnknownCharacter(t *testing.T) {
	s := MakeScanner("@")
	tok := s.NextToken()
	if tok.Kind != token.INVALID {
		t.Fatalf("got kind %v, want INVALID", tok.Kind)
	}
	if !s.HadError {
		t.Error("HadError not set for unknown character")
	}
}

func TestNextTokenTracksLineNumber(t *testing.T) {
	toks := scanAll("1\n2\n\n3")
	var lines []int
	for _, tok := range toks {
		if tok.Kind == token.NUMBER {
			lines = append(lines, tok.Line)
		}
	}
	want := []int{1, 2, 4}
	if len(lines) != len(want) {
		t.Fatalf("got lines %v, want %v", lines, want)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("lines[%d] = %v, want %v", i, lines[i], want[i])
		}
	}
}
