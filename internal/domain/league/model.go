package league

import "strings"

type League struct {
	ID   int64
	Code string
	Name string
}

// NormalizeCode upper-cases and trims a league code ("nba " -> "NBA").
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
