// Package moderation screens outgoing messages before they reach the
// shared log: configured words are masked, the detected language rides
// along for logging.
package moderation

import (
	"unicode"

	"github.com/abadojack/whatlanggo"
	goahocorasick "github.com/anknown/ahocorasick"
)

// Guard masks blocked words in outgoing text. Matching runs on a
// normalized view (lowercased, leet speak folded, punctuation stripped)
// so "b4d-w0rd" still matches "badword", while the mask is applied to
// the original runes to preserve spacing.
type Guard struct {
	matcher  *goahocorasick.Machine
	maskRune rune
}

type textMapping struct {
	normalized []rune
	origIdx    []int
}

func NewGuard(blockedWords []string, maskRune rune) (*Guard, error) {
	patterns := make([][]rune, len(blockedWords))
	for i, word := range blockedWords {
		patterns[i] = foldRunes([]rune(word))
	}

	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return nil, err
	}
	return &Guard{matcher: m, maskRune: maskRune}, nil
}

// Sanitize masks every blocked word and reports the detected language
// as an ISO 639-1 code.
func (g *Guard) Sanitize(original string) (string, string) {
	lang := whatlanggo.Detect(original).Lang.Iso6391()

	mapping := g.fold(original)
	if len(mapping.normalized) == 0 {
		return original, lang
	}

	spans := g.matcher.MultiPatternSearch(mapping.normalized, false)
	if len(spans) == 0 {
		return original, lang
	}

	origRunes := []rune(original)
	for _, span := range spans {
		start := span.Pos
		end := start + len(span.Word)
		if start < 0 || end > len(mapping.origIdx) {
			continue
		}
		for i := mapping.origIdx[start]; i <= mapping.origIdx[end-1]; i++ {
			origRunes[i] = g.maskRune
		}
	}
	return string(origRunes), lang
}

// fold builds the searchable view of the input and remembers where each
// kept rune came from.
func (g *Guard) fold(input string) textMapping {
	origRunes := []rune(input)
	norm := make([]rune, 0, len(origRunes))
	origIdx := make([]int, 0, len(origRunes))

	for i, r := range origRunes {
		clean := foldRune(r)
		if isNoise(clean) {
			continue
		}
		norm = append(norm, unicode.ToLower(clean))
		origIdx = append(origIdx, i)
	}
	return textMapping{normalized: norm, origIdx: origIdx}
}

func foldRunes(input []rune) []rune {
	out := make([]rune, 0, len(input))
	for _, r := range input {
		clean := foldRune(r)
		if isNoise(clean) {
			continue
		}
		out = append(out, unicode.ToLower(clean))
	}
	return out
}

// foldRune maps common leet speak characters back to their alphabet
// counterparts.
func foldRune(r rune) rune {
	switch r {
	case '4', '@':
		return 'a'
	case '3':
		return 'e'
	case '1', '!', '|':
		return 'i'
	case '0':
		return 'o'
	case '5', '$':
		return 's'
	default:
		return r
	}
}

// isNoise identifies characters ignored during the pattern matching phase.
func isNoise(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSpace(r) || unicode.IsSymbol(r)
}
