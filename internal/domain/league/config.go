package league

import (
	"errors"
	"fmt"
	"time"
)

var ErrUnknownLeague = errors.New("unknown league")

type NameMatchMode string

const (
	NameMatchExact    NameMatchMode = "exact"
	NameMatchContains NameMatchMode = "contains"
)

// Config holds every per-league tunable used by matching, lifecycle and
// diagnostics.
type Config struct {
	Code string `yaml:"code"`
	Name string `yaml:"name"`

	// PregameWindow is how far ahead of tip a scheduled game is promoted to
	// pregame and enters the PRE active window.
	PregameWindow     time.Duration `yaml:"pregame_window"`
	EstimatedDuration time.Duration `yaml:"estimated_duration"`
	// StaleBuffer is added to tip + EstimatedDuration before a game that
	// never reported live is forced final.
	StaleBuffer      time.Duration `yaml:"stale_buffer"`
	PostGameLookback time.Duration `yaml:"post_game_lookback"`
	ArchiveAfter     time.Duration `yaml:"archive_after"`

	HasLiveFeed      bool `yaml:"has_live_feed"`
	MinExpectedPlays int  `yaml:"min_expected_plays"`

	AbbreviationMatching bool          `yaml:"abbreviation_matching"`
	NameMatch            NameMatchMode `yaml:"name_match"`
	StripMascots         bool          `yaml:"strip_mascots"`

	RequiredPlayerFields []string `yaml:"required_player_fields"`
}

// StaleAfter is the offset from tip after which an unfinished game is
// treated as over.
func (c Config) StaleAfter() time.Duration {
	return c.EstimatedDuration + c.StaleBuffer
}

// ExpectsPlays reports whether play-by-play is expected at all, either from
// a live feed or from post-game scraping.
func (c Config) ExpectsPlays() bool {
	return c.HasLiveFeed || c.MinExpectedPlays > 0
}

func (c Config) Validate() error {
	if NormalizeCode(c.Code) == "" {
		return fmt.Errorf("league code is required")
	}
	if c.PregameWindow <= 0 {
		return fmt.Errorf("league %s: pregame_window must be > 0", c.Code)
	}
	if c.EstimatedDuration <= 0 {
		return fmt.Errorf("league %s: estimated_duration must be > 0", c.Code)
	}
	if c.StaleBuffer < 0 {
		return fmt.Errorf("league %s: stale_buffer must be >= 0", c.Code)
	}
	if c.PostGameLookback <= 0 {
		return fmt.Errorf("league %s: post_game_lookback must be > 0", c.Code)
	}
	if c.ArchiveAfter <= 0 {
		return fmt.Errorf("league %s: archive_after must be > 0", c.Code)
	}
	if c.MinExpectedPlays < 0 {
		return fmt.Errorf("league %s: min_expected_plays must be >= 0", c.Code)
	}
	switch c.NameMatch {
	case NameMatchExact, NameMatchContains:
	default:
		return fmt.Errorf("league %s: invalid name_match %q", c.Code, c.NameMatch)
	}
	return nil
}
