package mapper

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	apperrors "github.com/mcbagz/edSIS/pkg/errors"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// suggestThreshold is the minimum Levenshtein similarity for a "did you mean".
const suggestThreshold = 0.6

// Vocabulary maps free-form SIS values onto one Ed-Fi descriptor's code
// values. Lookups ignore case, diacritics and separator punctuation.
type Vocabulary struct {
	descriptor string
	entries    map[string]string
	codes      []string
	fallback   string
}

// NewVocabulary registers every code value under its own name plus the given
// aliases. An empty fallback makes unknown values an error.
func NewVocabulary(descriptor string, codes []string, aliases map[string]string, fallback string) *Vocabulary {
	v := &Vocabulary{
		descriptor: descriptor,
		entries:    make(map[string]string, len(codes)+len(aliases)),
		fallback:   fallback,
	}
	for _, code := range codes {
		v.entries[normalizeKey(code)] = code
		v.codes = append(v.codes, code)
	}
	for alias, code := range aliases {
		v.entries[normalizeKey(alias)] = code
	}
	sort.Strings(v.codes)
	return v
}

func (v *Vocabulary) Name() string { return v.descriptor }

// Lookup returns the code value for raw, or false when raw is not in the table.
func (v *Vocabulary) Lookup(raw string) (string, bool) {
	code, ok := v.entries[normalizeKey(raw)]
	return code, ok
}

// Resolve returns the descriptor URI for raw, falling back when the table has
// a fallback and failing with ErrUnknownVocabulary otherwise.
func (v *Vocabulary) Resolve(raw string) (string, error) {
	if code, ok := v.Lookup(raw); ok {
		return Descriptor(v.descriptor, code), nil
	}
	if v.fallback != "" {
		return Descriptor(v.descriptor, v.fallback), nil
	}

	if s := v.Suggest(raw); s != "" {
		return "", fmt.Errorf("%w: %s %q (did you mean %q?)", apperrors.ErrUnknownVocabulary, v.descriptor, raw, s)
	}
	return "", fmt.Errorf("%w: %s %q", apperrors.ErrUnknownVocabulary, v.descriptor, raw)
}

// Suggest returns the closest code value to raw, or "" when nothing is close.
func (v *Vocabulary) Suggest(raw string) string {
	key := normalizeKey(raw)
	if key == "" {
		return ""
	}

	metric := metrics.NewLevenshtein()
	best, bestScore := "", 0.0
	for _, code := range v.codes {
		score := strutil.Similarity(key, normalizeKey(code), metric)
		if score > bestScore {
			best, bestScore = code, score
		}
	}
	if bestScore < suggestThreshold {
		return ""
	}
	return best
}

func normalizeKey(s string) string {
	decomposed := norm.NFKD.String(strings.TrimSpace(s))

	var b strings.Builder
	space := false
	for _, r := range decomposed {
		switch {
		case unicode.Is(unicode.Mn, r):
			continue
		case r == '_' || r == '-' || r == '.' || unicode.IsSpace(r):
			space = b.Len() > 0
			continue
		}
		if space {
			b.WriteByte(' ')
			space = false
		}
		b.WriteRune(r)
	}
	return cases.Fold().String(b.String())
}
