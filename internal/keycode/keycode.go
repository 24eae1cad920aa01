package keycode

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/keygrid/internal/layout"
)

// Token is a firmware keycode constant such as KC_A or MO(1).
type Token string

// NoOp is the keycode for a position that emits nothing.
const NoOp Token = "KC_NO"

// Map returns the keycode token for label on platform p.
//
// nil and the Blank placeholder map to NoOp. A single ASCII letter or
// digit maps to KC_<upper>; other single characters go through the
// symbol table. Named keys are looked up in p's vocabulary first and then
// in every other platform's, so a layout authored on one host compiles
// identically on another. Anything else maps to NoOp.
func Map(label *string, p Platform) Token {
	if label == nil {
		return NoOp
	}
	return MapLabel(*label, p)
}

// MapLabel is Map for a non-nil label.
func MapLabel(label string, p Platform) Token {
	label = norm.NFC.String(label)
	if label == "" || label == layout.Blank {
		return NoOp
	}

	if utf8.RuneCountInString(label) == 1 {
		r, _ := utf8.DecodeRuneInString(label)
		if isAlnum(r) {
			return Token("KC_" + strings.ToUpper(label))
		}
		if tok, ok := symbolKeys[r]; ok {
			return tok
		}
		return NoOp
	}

	if tok, ok := lookup(label, p); ok {
		return tok
	}
	return NoOp
}

// Known reports whether label is a recognized key on platform p: a
// mappable single character, a member of p's vocabulary, or a hidden
// layer key.
func Known(label string, p Platform) bool {
	label = norm.NFC.String(label)
	if utf8.RuneCountInString(label) == 1 {
		r, _ := utf8.DecodeRuneInString(label)
		_, ok := symbolKeys[r]
		return ok || isAlnum(r)
	}
	if _, ok := tables[p].tokens[label]; ok {
		return true
	}
	_, ok := hidden.tokens[label]
	return ok
}

// Foreign reports whether label belongs to another platform's vocabulary
// but not to p's. Foreign labels still compile.
func Foreign(label string, p Platform) bool {
	if Known(label, p) {
		return false
	}
	label = norm.NFC.String(label)
	for _, other := range Platforms {
		if _, ok := tables[other].tokens[label]; ok {
			return true
		}
	}
	return false
}

// Vocabulary returns the named keys offered on platform p, in the order
// the editor presents them. The returned slice is a copy.
func Vocabulary(p Platform) []string {
	t, ok := tables[p]
	if !ok {
		t = tables[Generic]
	}
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

func lookup(label string, p Platform) (Token, bool) {
	if tok, ok := tables[p].tokens[label]; ok {
		return tok, true
	}
	for _, other := range Platforms {
		if other == p {
			continue
		}
		if tok, ok := tables[other].tokens[label]; ok {
			return tok, true
		}
	}
	tok, ok := hidden.tokens[label]
	return tok, ok
}

func isAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
