package history

import (
	"cmp"
	"slices"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// LikeEscape is the escape character used in LIKE patterns built by LikePattern.
const LikeEscape = `\`

var likeEscaper = strings.NewReplacer(
	`\`, `\\`,
	`%`, `\%`,
	`_`, `\_`,
)

// Fold returns the Unicode case folded form of s in NFC. Both sides of every
// comparison are folded so that matching is case-insensitive for all
// letters, not only ASCII, and a decomposed "o\u0308" equals "ö".
func Fold(s string) string {
	// A Caser carries state and must not be shared between goroutines.
	return norm.NFC.String(cases.Fold().String(s))
}

// EscapeLike escapes the LIKE metacharacters in s so that every character
// is matched literally under an ESCAPE '\' clause.
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// LikePattern builds the substring pattern for term: folded, escaped and
// wrapped in wildcards. It is meant to be compared against folded columns.
func LikePattern(term string) string {
	return "%" + EscapeLike(Fold(term)) + "%"
}

// Matches reports whether e matches the search term. The empty term matches
// everything; otherwise term must occur, ignoring case, in the URL or title.
func Matches(e Entry, term string) bool {
	if term == "" {
		return true
	}
	folded := Fold(term)
	return strings.Contains(Fold(e.URL), folded) || strings.Contains(Fold(e.Title), folded)
}

// Rank orders entries in place: shorter URLs first, measured in code
// points, with ties going to the entry that was created first.
func Rank(entries []Entry) {
	slices.SortStableFunc(entries, func(a, b Entry) int {
		if c := cmp.Compare(utf8.RuneCountInString(a.URL), utf8.RuneCountInString(b.URL)); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}
