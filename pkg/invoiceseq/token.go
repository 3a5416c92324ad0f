// Package invoiceseq provides the invoice-number token rule.
//
// A token is an opaque, strictly-ordered value: an optional prefix followed
// by a zero-padded integer (e.g. "000042" or "INV-000042"). Next is a pure
// function so the coordinator can project a candidate number speculatively
// before the real commit transaction runs.
package invoiceseq

import (
	"fmt"
	"strconv"
	"strings"
)

// Token is the formatted, strictly-ordered invoice number value.
type Token string

// DefaultWidth is the minimum digit width for the numeric part.
const DefaultWidth = 6

// Default returns the counter value of a store that has not allocated
// any invoice numbers yet. Next(Default()) yields the first number.
func Default() Token {
	return Token(format("", 0, DefaultWidth))
}

// New creates the initial token for a store with the given prefix.
// An empty prefix yields the bare zero-padded form.
func New(prefix string) Token {
	return Token(format(prefix, 0, DefaultWidth))
}

// Next returns the successor token. Pure and deterministic.
// Malformed input fails closed: it is treated as Default rather than
// producing an error, so a corrupted stored counter restarts the sequence
// instead of blocking every sale.
func Next(cur Token) Token {
	prefix, n, width, ok := split(cur)
	if !ok {
		prefix, n, width = "", 0, DefaultWidth
	}
	return Token(format(prefix, n+1, width))
}

// Compare orders two tokens in allocation order.
// Tokens with the same prefix compare by numeric part; differing prefixes
// fall back to lexicographic order (they belong to different sequences
// anyway, so only equality of prefix matters in practice).
func Compare(a, b Token) int {
	pa, na, _, oka := split(a)
	pb, nb, _, okb := split(b)
	if oka && okb && pa == pb {
		switch {
		case na < nb:
			return -1
		case na > nb:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(string(a), string(b))
}

// Less reports whether a precedes b in allocation order.
func Less(a, b Token) bool {
	return Compare(a, b) < 0
}

// Number returns the numeric part of a token, or -1 if malformed.
func Number(t Token) int64 {
	_, n, _, ok := split(t)
	if !ok {
		return -1
	}
	return n
}

// split separates a token into prefix, numeric value and digit width.
// The numeric part is the trailing run of ASCII digits.
func split(t Token) (prefix string, n int64, width int, ok bool) {
	s := string(t)
	i := len(s)
	for i > 0 && s[i-1] >= '0' && s[i-1] <= '9' {
		i--
	}
	digits := s[i:]
	if digits == "" {
		return "", 0, 0, false
	}
	v, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		// Trailing digit run longer than int64 range.
		return "", 0, 0, false
	}
	w := len(digits)
	if w < DefaultWidth {
		w = DefaultWidth
	}
	return s[:i], v, w, true
}

func format(prefix string, n int64, width int) string {
	return fmt.Sprintf("%s%0*d", prefix, width, n)
}
