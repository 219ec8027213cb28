package team

import (
	"maps"
	"strings"
)

type Team struct {
	ID            int64
	LeagueID      int64
	Name          string
	ShortName     string
	Abbreviation  string
	ExternalRef   string
	ExternalCodes map[string]string
	// GameCount is derived at read time and only used to break ties.
	GameCount int
}

// Identity is how a source describes a team.
type Identity struct {
	League       string `validate:"required"`
	Name         string `validate:"required"`
	ShortName    string
	Abbreviation string
	ExternalRef  string
	// Source/SourceCode record the team's code in a particular source system.
	Source     string
	SourceCode string
}

func (id Identity) Normalized() Identity {
	id.League = strings.ToUpper(strings.TrimSpace(id.League))
	id.Name = strings.Join(strings.Fields(id.Name), " ")
	id.ShortName = strings.Join(strings.Fields(id.ShortName), " ")
	id.Abbreviation = strings.ToUpper(strings.TrimSpace(id.Abbreviation))
	id.ExternalRef = strings.TrimSpace(id.ExternalRef)
	id.Source = strings.ToLower(strings.TrimSpace(id.Source))
	id.SourceCode = strings.TrimSpace(id.SourceCode)
	return id
}

// New builds the row inserted for an identity seen for the first time.
func New(leagueID int64, id Identity) Team {
	t := Team{
		LeagueID:     leagueID,
		Name:         id.Name,
		ShortName:    id.ShortName,
		Abbreviation: id.Abbreviation,
		ExternalRef:  id.ExternalRef,
	}
	if t.Abbreviation == "" {
		t.Abbreviation = DeriveAbbreviation(id.Name)
	}
	if id.Source != "" && id.SourceCode != "" {
		t.ExternalCodes = map[string]string{id.Source: id.SourceCode}
	}
	return t
}

// Enrich applies a later sighting to an existing team. Supplied values win,
// missing values never blank stored ones, and the name is only upgraded to
// a longer form that still contains the stored one.
func Enrich(existing Team, id Identity) (Team, bool) {
	out := existing
	out.ExternalCodes = maps.Clone(existing.ExternalCodes)
	changed := false

	if id.Abbreviation != "" && id.Abbreviation != out.Abbreviation {
		out.Abbreviation = id.Abbreviation
		changed = true
	}
	if id.ShortName != "" && out.ShortName == "" {
		out.ShortName = id.ShortName
		changed = true
	}
	if id.ExternalRef != "" && id.ExternalRef != out.ExternalRef {
		out.ExternalRef = id.ExternalRef
		changed = true
	}
	if id.Source != "" && id.SourceCode != "" && out.ExternalCodes[id.Source] != id.SourceCode {
		if out.ExternalCodes == nil {
			out.ExternalCodes = make(map[string]string, 1)
		}
		out.ExternalCodes[id.Source] = id.SourceCode
		changed = true
	}
	if upgradesName(out.Name, id.Name) {
		out.Name = id.Name
		changed = true
	}

	return out, changed
}

func upgradesName(stored, incoming string) bool {
	if len(incoming) <= len(stored) {
		return false
	}
	return containsWords(basicTokens(incoming), basicTokens(stored))
}
