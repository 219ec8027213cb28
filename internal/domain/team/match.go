package team

import (
	"sort"
	"strings"
)

// MatchOptions carries the per-league switches that affect matching.
type MatchOptions struct {
	League        string
	Abbreviations bool
	StripMascots  bool
}

// Stage names the strategy that produced a match.
type Stage string

const (
	StageExternalRef  Stage = "external_ref"
	StageExact        Stage = "exact"
	StageAbbreviation Stage = "abbreviation"
	StageCanonical    Stage = "canonical"
	StageContainment  Stage = "containment"
)

// Match picks the stored team an identity refers to. Strategies run in order
// and the first that yields candidates wins; several candidates from one
// strategy are ranked by canonical equality, containment, game count and
// finally the shorter name.
func (r *Rules) Match(teams []Team, id Identity, opts MatchOptions) (Team, Stage, bool) {
	name := id.Name
	if curated, ok := r.Override(opts.League, name); ok {
		name = curated
	}

	stages := []struct {
		stage Stage
		match func(Team) bool
	}{
		{StageExternalRef, func(t Team) bool {
			if id.ExternalRef != "" && t.ExternalRef == id.ExternalRef {
				return true
			}
			return id.Source != "" && id.SourceCode != "" && t.ExternalCodes[id.Source] == id.SourceCode
		}},
		{StageExact, func(t Team) bool {
			return strings.EqualFold(t.Name, name) || (t.ShortName != "" && strings.EqualFold(t.ShortName, name))
		}},
		{StageAbbreviation, func(t Team) bool {
			if !opts.Abbreviations || t.Abbreviation == "" {
				return false
			}
			return strings.EqualFold(t.Abbreviation, id.Abbreviation) || strings.EqualFold(t.Abbreviation, name)
		}},
		{StageCanonical, func(t Team) bool {
			want := r.Canonical(name, opts.StripMascots)
			return want != "" && (r.Canonical(t.Name, opts.StripMascots) == want ||
				(t.ShortName != "" && r.Canonical(t.ShortName, opts.StripMascots) == want))
		}},
		{StageContainment, func(t Team) bool {
			return r.contains(t.Name, name, opts.StripMascots) ||
				(t.ShortName != "" && r.contains(t.ShortName, name, opts.StripMascots))
		}},
	}

	for _, s := range stages {
		var candidates []Team
		for _, t := range teams {
			if s.match(t) {
				candidates = append(candidates, t)
			}
		}
		if len(candidates) == 0 {
			continue
		}
		return r.rank(candidates, name, opts.StripMascots), s.stage, true
	}
	return Team{}, "", false
}

// contains is whole-word containment of canonical forms in either direction.
func (r *Rules) contains(a, b string, stripMascots bool) bool {
	ta := r.tokens(a, stripMascots)
	tb := r.tokens(b, stripMascots)
	return containsWords(ta, tb) || containsWords(tb, ta)
}

func (r *Rules) rank(candidates []Team, name string, stripMascots bool) Team {
	if len(candidates) == 1 {
		return candidates[0]
	}

	want := r.Canonical(name, stripMascots)
	type scored struct {
		team      Team
		canonical bool
		contained bool
	}
	rows := make([]scored, 0, len(candidates))
	for _, t := range candidates {
		rows = append(rows, scored{
			team:      t,
			canonical: r.Canonical(t.Name, stripMascots) == want,
			contained: r.contains(t.Name, name, stripMascots),
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.canonical != b.canonical {
			return a.canonical
		}
		if a.contained != b.contained {
			return a.contained
		}
		if a.team.GameCount != b.team.GameCount {
			return a.team.GameCount > b.team.GameCount
		}
		if len(a.team.Name) != len(b.team.Name) {
			return len(a.team.Name) < len(b.team.Name)
		}
		return a.team.ID < b.team.ID
	})
	return rows[0].team
}

// NamesMatch compares two raw team names under a league's name-match mode:
// canonical equality, or additionally whole-word containment.
func (r *Rules) NamesMatch(a, b string, contains, stripMascots bool) bool {
	ca, cb := r.Canonical(a, stripMascots), r.Canonical(b, stripMascots)
	if ca == "" || cb == "" {
		return false
	}
	if ca == cb {
		return true
	}
	return contains && r.contains(a, b, stripMascots)
}
