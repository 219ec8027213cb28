package memory

import (
	"sync"

	"github.com/riskibarqy/game-reconciler/internal/domain/boxscore"
	"github.com/riskibarqy/game-reconciler/internal/domain/diagnostics"
	"github.com/riskibarqy/game-reconciler/internal/domain/game"
	"github.com/riskibarqy/game-reconciler/internal/domain/league"
	"github.com/riskibarqy/game-reconciler/internal/domain/odds"
	"github.com/riskibarqy/game-reconciler/internal/domain/play"
	"github.com/riskibarqy/game-reconciler/internal/domain/team"
)

type oddsKey struct {
	gameID  int64
	book    string
	market  string
	side    string
	closing bool
}

type teamBoxKey struct {
	gameID int64
	teamID int64
}

type playerBoxKey struct {
	gameID int64
	teamID int64
	player string
}

// Store holds every table behind one lock so cross-table reads (team game
// counts, play counts per game) see a consistent snapshot.
type Store struct {
	mu sync.RWMutex

	seq       int64
	leagues   map[int64]league.League
	teams     map[int64]team.Team
	games     map[int64]game.Game
	odds      map[oddsKey]odds.Line
	teamBox   map[teamBoxKey]boxscore.StoredTeamRow
	playerBox map[playerBoxKey]boxscore.StoredPlayerRow
	plays     map[int64]map[int]play.Stored
	conflicts map[int64]map[string]diagnostics.Conflict
	missing   map[int64]map[int64]diagnostics.MissingPbp
}

func NewStore(leagues ...league.League) *Store {
	s := &Store{
		leagues:   make(map[int64]league.League, len(leagues)),
		teams:     make(map[int64]team.Team),
		games:     make(map[int64]game.Game),
		odds:      make(map[oddsKey]odds.Line),
		teamBox:   make(map[teamBoxKey]boxscore.StoredTeamRow),
		playerBox: make(map[playerBoxKey]boxscore.StoredPlayerRow),
		plays:     make(map[int64]map[int]play.Stored),
		conflicts: make(map[int64]map[string]diagnostics.Conflict),
		missing:   make(map[int64]map[int64]diagnostics.MissingPbp),
	}
	for _, item := range leagues {
		if item.ID == 0 {
			item.ID = s.nextID()
		} else if item.ID > s.seq {
			s.seq = item.ID
		}
		item.Code = league.NormalizeCode(item.Code)
		s.leagues[item.ID] = item
	}
	return s
}

// nextID must be called with mu held (or before the store is shared).
func (s *Store) nextID() int64 {
	s.seq++
	return s.seq
}

func (s *Store) Leagues() *LeagueRepository          { return &LeagueRepository{s: s} }
func (s *Store) Teams() *TeamRepository              { return &TeamRepository{s: s} }
func (s *Store) Games() *GameRepository              { return &GameRepository{s: s} }
func (s *Store) Odds() *OddsRepository               { return &OddsRepository{s: s} }
func (s *Store) Boxscores() *BoxscoreRepository      { return &BoxscoreRepository{s: s} }
func (s *Store) Plays() *PlayRepository              { return &PlayRepository{s: s} }
func (s *Store) Diagnostics() *DiagnosticsRepository { return &DiagnosticsRepository{s: s} }
