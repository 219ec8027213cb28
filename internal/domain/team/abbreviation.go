package team

import "strings"

// DeriveAbbreviation builds a stable code from a team name: initials of up
// to four words, or the first three letters of a single word. Never empty.
func DeriveAbbreviation(name string) string {
	tokens := basicTokens(name)
	switch len(tokens) {
	case 0:
		return "UNK"
	case 1:
		word := []rune(tokens[0])
		if len(word) > 3 {
			word = word[:3]
		}
		return strings.ToUpper(string(word))
	}

	if len(tokens) > 4 {
		tokens = tokens[:4]
	}
	var b strings.Builder
	for _, tok := range tokens {
		b.WriteRune([]rune(tok)[0])
	}
	return strings.ToUpper(b.String())
}
