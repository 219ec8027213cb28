package league

import "time"

func proLeague(code, name string, duration time.Duration, minPlays int) Config {
	return Config{
		Code:                 code,
		Name:                 name,
		PregameWindow:        2 * time.Hour,
		EstimatedDuration:    duration,
		StaleBuffer:          3 * time.Hour,
		PostGameLookback:     6 * time.Hour,
		ArchiveAfter:         72 * time.Hour,
		HasLiveFeed:          true,
		MinExpectedPlays:     minPlays,
		AbbreviationMatching: true,
		NameMatch:            NameMatchExact,
	}
}

func collegeLeague(code, name string, duration time.Duration, minPlays int) Config {
	cfg := proLeague(code, name, duration, minPlays)
	cfg.AbbreviationMatching = false
	cfg.NameMatch = NameMatchContains
	cfg.StripMascots = true
	return cfg
}

// DefaultConfigs returns the built-in league table.
func DefaultConfigs() []Config {
	nhl := proLeague("NHL", "National Hockey League", 150*time.Minute, 60)
	nhl.RequiredPlayerFields = []string{"role"}

	mlb := proLeague("MLB", "Major League Baseball", 3*time.Hour, 40)
	mlb.HasLiveFeed = false

	return []Config{
		proLeague("NBA", "National Basketball Association", 150*time.Minute, 250),
		proLeague("WNBA", "Women's National Basketball Association", 2*time.Hour, 200),
		proLeague("NFL", "National Football League", 210*time.Minute, 120),
		nhl,
		mlb,
		collegeLeague("NCAAB", "NCAA Men's Basketball", 135*time.Minute, 150),
		collegeLeague("NCAAF", "NCAA Football", 210*time.Minute, 120),
	}
}
