package quiz

import (
	"regexp"
	"strings"
)

var optionPrefix = regexp.MustCompile(`^[a-d][.)]`)

// Normalize lowercases s, strips leading option labels such as "a." or "b)",
// and collapses whitespace. Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	s = strings.ToLower(s)
	for {
		s = strings.TrimSpace(s)
		loc := optionPrefix.FindStringIndex(s)
		if loc == nil {
			break
		}
		s = s[loc[1]:]
	}
	return strings.Join(strings.Fields(s), " ")
}

// optionLetter returns the option letter s starts with, if its first character is A, B, C or D.
func optionLetter(s string) (byte, bool) {
	if s == "" || s[0] < 'A' || s[0] > 'D' {
		return 0, false
	}
	return s[0], true
}

// AnswerMatches applies the three comparisons in order: exact text, normalized
// text, then option letter. An empty answer never matches.
func AnswerMatches(correct, answer string) bool {
	if strings.TrimSpace(answer) == "" {
		return false
	}
	if correct == answer {
		return true
	}
	if nc := Normalize(correct); nc != "" && nc == Normalize(answer) {
		return true
	}
	cl, ok1 := optionLetter(correct)
	al, ok2 := optionLetter(answer)
	return ok1 && ok2 && cl == al
}
