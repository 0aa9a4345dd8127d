package lexer

import "testing"

func kinds(toks []Token) []Kind {
	out := make([]Kind, 0, len(toks))
	for _, t := range toks {
		out = append(out, t.Kind)
	}
	return out
}

func assertKinds(t *testing.T, src string, want []Kind) {
	t.Helper()
	l := New(src, "test")
	got := kinds(l.Tokenize())
	if l.Errors().HasErrors() {
		t.Fatalf("Tokenize(%q) produced lexical errors: %v", src, l.Errors())
	}
	if len(got) != len(want) {
		t.Fatalf("Tokenize(%q) = %v, want %v", src, got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Tokenize(%q)[%d] = %v, want %v", src, i, got[i], want[i])
		}
	}
}

func TestTokenizeSimpleComparison(t *testing.T) {
	assertKinds(t, "credit_score greater_than 700",
		[]Kind{Identifier, KwGreaterThan, Number, EOF})
}

func TestTokenizeSymbolicOperators(t *testing.T) {
	assertKinds(t, "a == b and c != d",
		[]Kind{Identifier, EqEq, Identifier, KwAnd, Identifier, NotEq, Identifier, EOF})
}

func TestTokenizeArithmetic(t *testing.T) {
	assertKinds(t, "(income - debt) / 12 * 100 ** 2",
		[]Kind{LParen, Identifier, Minus, Identifier, RParen, Slash, Number, Star, Number, StarStar, Number, EOF})
}

func TestTokenizeStringLiteralWithEscapes(t *testing.T) {
	l := New(`"hello \"world\"\n"`, "test")
	toks := l.Tokenize()
	if l.Errors().HasErrors() {
		t.Fatalf("unexpected lexical errors: %v", l.Errors())
	}
	if toks[0].Kind != String {
		t.Fatalf("want String token, got %v", toks[0].Kind)
	}
	if toks[0].Literal.(string) != "hello \"world\"\n" {
		t.Errorf("string literal = %q, want %q", toks[0].Literal, "hello \"world\"\n")
	}
}

func TestTokenizeComments(t *testing.T) {
	assertKinds(t, "a equals 1 # this is a comment\nb equals 2",
		[]Kind{Identifier, KwEquals, Number, Identifier, KwEquals, Number, EOF})
}

func TestTokenizeUnterminatedString(t *testing.T) {
	l := New(`"unterminated`, "test")
	l.Tokenize()
	if !l.Errors().HasErrors() {
		t.Fatal("expected a LEX_UNTERMINATED_STRING error")
	}
}

func TestTokenizeDottedIdentifier(t *testing.T) {
	assertKinds(t, "customer.address.zip_code",
		[]Kind{Identifier, Dot, Identifier, Dot, Identifier, EOF})
}

func TestTokenizeKeywordRetagging(t *testing.T) {
	assertKinds(t, "set monthly_payment to calculate (p * r) / (1 - (1 + r) ** -n)",
		[]Kind{KwSet, Identifier, KwTo, KwCalculate, LParen, Identifier, Star, Identifier, RParen, Slash,
			LParen, Number, Minus, LParen, Number, Plus, Identifier, RParen, StarStar, Minus, Identifier, RParen, EOF})
}

func TestTokenLocationsAreOneBased(t *testing.T) {
	l := New("a\nb", "test")
	toks := l.Tokenize()
	if toks[0].Loc.Line != 1 || toks[0].Loc.Column != 1 {
		t.Errorf("first token loc = %v, want line 1 col 1", toks[0].Loc)
	}
	if toks[1].Loc.Line != 2 {
		t.Errorf("second token line = %d, want 2", toks[1].Loc.Line)
	}
}

func TestTokenizeNoExponentForm(t *testing.T) {
	// spec: number literals have no exponent form; "1.5e3" lexes as
	// Number(1.5) followed by an Identifier("e3"), not scientific notation.
	assertKinds(t, "1.5e3", []Kind{Number, Identifier, EOF})
}
