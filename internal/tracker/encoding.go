package tracker

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// recodeStep re-interprets text encoded in from as text encoded in to.
// A nil to means UTF-8.
type recodeStep struct {
	from *charmap.Charmap
	to   *charmap.Charmap
}

var legacyChain = []recodeStep{
	{from: charmap.CodePage866, to: nil},
	{from: charmap.Windows1251, to: nil},
	{from: charmap.CodePage866, to: charmap.Windows1251},
}

// Normalizer repairs JQL typed into a console whose code page differs from
// the one the text was decoded with.
type Normalizer struct {
	// Legacy enables the Cyrillic code-page fallback chain.
	Legacy bool
}

// Normalize returns the first successful re-encoding of q, or q unchanged.
// Text made only of ASCII and Russian letters is already readable and is
// returned as typed.
func (n Normalizer) Normalize(q string) string {
	if !n.Legacy || plainCyrillic(q) {
		return q
	}
	for _, step := range legacyChain {
		if out, ok := recode(q, step.from, step.to); ok {
			return out
		}
	}
	return q
}

func recode(s string, from, to *charmap.Charmap) (string, bool) {
	raw, err := from.NewEncoder().String(s)
	if err != nil {
		return "", false
	}
	if to == nil {
		if !utf8.ValidString(raw) {
			return "", false
		}
		return raw, true
	}
	out, err := to.NewDecoder().String(raw)
	if err != nil || strings.ContainsRune(out, utf8.RuneError) {
		return "", false
	}
	return out, true
}

func plainCyrillic(s string) bool {
	for _, r := range s {
		switch {
		case r < utf8.RuneSelf:
		case r >= 'А' && r <= 'я', r == 'Ё', r == 'ё', r == '№':
		default:
			return false
		}
	}
	return true
}
