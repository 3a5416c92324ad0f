package invoiceseq

import (
	"testing"
)

func TestNext_Plain(t *testing.T) {
	tok := Default()
	if tok != "000000" {
		t.Fatalf("expected 000000, got %s", tok)
	}

	tok = Next(tok)
	if tok != "000001" {
		t.Errorf("expected 000001, got %s", tok)
	}

	tok = Next(tok)
	if tok != "000002" {
		t.Errorf("expected 000002, got %s", tok)
	}
}

func TestNext_Prefixed(t *testing.T) {
	tok := New("INV-")
	if tok != "INV-000000" {
		t.Fatalf("expected INV-000000, got %s", tok)
	}

	tok = Next(tok)
	if tok != "INV-000001" {
		t.Errorf("expected INV-000001, got %s", tok)
	}
}

func TestNext_WidthGrowsOnOverflow(t *testing.T) {
	tok := Next(Token("999999"))
	if tok != "1000000" {
		t.Errorf("expected 1000000, got %s", tok)
	}

	// Wider stored tokens keep their width.
	tok = Next(Token("INV-0000042"))
	if tok != "INV-0000043" {
		t.Errorf("expected INV-0000043, got %s", tok)
	}
}

func TestNext_MalformedFailsClosed(t *testing.T) {
	for _, bad := range []Token{"", "INV-", "garbage", "12x"} {
		got := Next(bad)
		if got != "000001" {
			t.Errorf("Next(%q) = %s, want 000001", bad, got)
		}
	}
}

func TestNext_IsStrictlyIncreasing(t *testing.T) {
	tok := New("A")
	for i := 0; i < 1000; i++ {
		next := Next(tok)
		if !Less(tok, next) {
			t.Fatalf("Next(%s) = %s is not greater", tok, next)
		}
		tok = next
	}
}

func TestNext_Deterministic(t *testing.T) {
	cur := Token("INV-000041")
	a := Next(cur)
	b := Next(cur)
	if a != b {
		t.Errorf("Next is not deterministic: %s vs %s", a, b)
	}
	if cur != "INV-000041" {
		t.Errorf("Next mutated its input: %s", cur)
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b Token
		want int
	}{
		{"000001", "000002", -1},
		{"000002", "000001", 1},
		{"000002", "000002", 0},
		{"INV-000009", "INV-000010", -1},
		// Width growth preserves numeric order.
		{"999999", "1000000", -1},
	}

	for _, tt := range tests {
		if got := Compare(tt.a, tt.b); got != tt.want {
			t.Errorf("Compare(%s, %s) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestNumber(t *testing.T) {
	if n := Number("INV-000042"); n != 42 {
		t.Errorf("expected 42, got %d", n)
	}
	if n := Number("garbage"); n != -1 {
		t.Errorf("expected -1 for malformed token, got %d", n)
	}
}
