package boxscore

import (
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/game-reconciler/internal/domain/team"
)

// TeamRow is one team's box score line for a game. TeamID may be left zero
// when Team identifies it instead.
type TeamRow struct {
	TeamID int64
	Team   team.Identity
	Score  *int
	Stats  map[string]any
}

type PlayerRow struct {
	TeamID           int64
	Team             team.Identity
	PlayerExternalID string
	PlayerName       string
	Position         string
	Role             string
	Starter          bool
	Stats            map[string]any
}

// Counts is the per-call outcome of a boxscore ingestion.
type Counts struct {
	Inserted int
	Rejected int
	Errors   int
}

// StoredTeamRow / StoredPlayerRow are rows as persisted for a game.
type StoredTeamRow struct {
	GameID    int64
	TeamID    int64
	Score     *int
	Stats     map[string]any
	UpdatedAt time.Time
}

type StoredPlayerRow struct {
	GameID           int64
	TeamID           int64
	PlayerExternalID string
	PlayerName       string
	Position         string
	Role             string
	Starter          bool
	Stats            map[string]any
	UpdatedAt        time.Time
}

// Rejection is a shape-check failure. It is counted, not retried.
type Rejection struct {
	Reason string
}

func (r Rejection) Error() string {
	return "boxscore row rejected: " + r.Reason
}

// ValidatePlayerRow applies generic checks plus the league's required
// fields (e.g. "role" for hockey).
func ValidatePlayerRow(row PlayerRow, required []string) error {
	if strings.TrimSpace(row.PlayerName) == "" && strings.TrimSpace(row.PlayerExternalID) == "" {
		return Rejection{Reason: "player identity missing"}
	}
	for _, field := range required {
		var value string
		switch field {
		case "role":
			value = row.Role
		case "position":
			value = row.Position
		case "player_external_id":
			value = row.PlayerExternalID
		case "player_name":
			value = row.PlayerName
		default:
			return Rejection{Reason: fmt.Sprintf("unknown required field %q", field)}
		}
		if strings.TrimSpace(value) == "" {
			return Rejection{Reason: field + " missing"}
		}
	}
	return nil
}

// PlayerKey identifies a player within a game for upserts.
func PlayerKey(row PlayerRow) string {
	if id := strings.TrimSpace(row.PlayerExternalID); id != "" {
		return id
	}
	return "name:" + strings.ToLower(strings.Join(strings.Fields(row.PlayerName), " "))
}
