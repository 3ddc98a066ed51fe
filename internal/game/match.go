package game

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	parenRe   = regexp.MustCompile(`\([^)]*\)`)
	bracketRe = regexp.MustCompile(`\[[^\]]*\]`)
)

// normalizeText strips accents (NFD decompose, drop combining marks), drops
// everything but letters, digits, underscore and spaces, collapses
// whitespace and lowercases. Idempotent.
func normalizeText(s string) string {
	decomposed := norm.NFD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		switch {
		case unicode.Is(unicode.Mn, r):
			// combining mark
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
			b.WriteRune(unicode.ToLower(r))
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// removeBrackets drops parenthetical and square-bracketed clarifying spans.
func removeBrackets(s string) string {
	s = parenRe.ReplaceAllString(s, "")
	s = bracketRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// levenshtein computes the edit distance between two strings by rune.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) < len(rb) {
		ra, rb = rb, ra
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i, ca := range ra {
		cur[0] = i + 1
		for j, cb := range rb {
			cost := 0
			if ca != cb {
				cost = 1
			}
			cur[j+1] = min3(prev[j+1]+1, cur[j]+1, prev[j]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

// maxEditDistance is the typo budget for an accepted alternative of the
// given rune length: short answers allow none, long ones up to two.
func maxEditDistance(length int) int {
	switch {
	case length <= 4:
		return 0
	case length <= 12:
		return 1
	default:
		return 2
	}
}

// answersMatch compares a submission against one accepted alternative under
// the four normalized raw/bracket-stripped combinations. A pair matches on
// containment either way or within the length-dependent edit budget.
func answersMatch(user, correct string) bool {
	userNorm := normalizeText(user)
	correctNorm := normalizeText(correct)
	userBare := normalizeText(removeBrackets(user))
	correctBare := normalizeText(removeBrackets(correct))

	pairs := [4][2]string{
		{userNorm, correctNorm},
		{userBare, correctNorm},
		{userNorm, correctBare},
		{userBare, correctBare},
	}
	for _, p := range pairs {
		u, c := p[0], p[1]
		if u == "" || c == "" {
			continue
		}
		if strings.Contains(u, c) || strings.Contains(c, u) {
			return true
		}
		if levenshtein(u, c) <= maxEditDistance(len([]rune(c))) {
			return true
		}
	}
	return false
}

// MatchesAnswer evaluates a submission against an accepted-answer field that
// may hold several slash-separated alternatives.
func MatchesAnswer(submission, answerField string) bool {
	for _, alt := range strings.Split(answerField, "/") {
		alt = strings.TrimSpace(alt)
		if alt == "" {
			continue
		}
		if answersMatch(submission, alt) {
			return true
		}
	}
	return false
}
