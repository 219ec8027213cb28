package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/game-reconciler/internal/domain/boxscore"
	"github.com/riskibarqy/game-reconciler/internal/domain/game"
	"github.com/riskibarqy/game-reconciler/internal/domain/league"
	"github.com/riskibarqy/game-reconciler/internal/domain/odds"
	"github.com/riskibarqy/game-reconciler/internal/domain/play"
	"github.com/riskibarqy/game-reconciler/internal/domain/team"
	"github.com/riskibarqy/game-reconciler/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

// GameInput is one normalized game observation from a schedule, box score
// or live source.
type GameInput struct {
	game.Identification
	TipTime   *time.Time
	HomeScore *int
	AwayScore *int
	Venue     string
	// Status is the source's raw status text; unknown values are ignored.
	Status         string
	ExternalSource string
	ExternalID     string
}

type GameResult struct {
	GameID  int64
	Created bool
	Changed bool
	Status  game.Status
}

// OddsBatchResult tallies UpsertOddsBatch outcomes. Errors counts snapshots
// that failed validation or storage.
type OddsBatchResult struct {
	Persisted      int
	SkippedNoMatch int
	SkippedLive    int
	Errors         int
}

// IngestionService is the write path for every normalized record. Each call
// resolves identities first and then persists through the conflict-aware
// repository upserts.
type IngestionService struct {
	leagues   *LeagueDirectory
	teams     *TeamResolver
	resolver  *GameResolver
	games     game.Repository
	odds      odds.Repository
	plays     play.Repository
	boxscores boxscore.Repository
	now       func() time.Time
	logger    *logging.Logger
}

func NewIngestionService(
	leagues *LeagueDirectory,
	teams *TeamResolver,
	resolver *GameResolver,
	games game.Repository,
	oddsRepo odds.Repository,
	plays play.Repository,
	boxscores boxscore.Repository,
	logger *logging.Logger,
) *IngestionService {
	if logger == nil {
		logger = logging.Default()
	}
	return &IngestionService{
		leagues:   leagues,
		teams:     teams,
		resolver:  resolver,
		games:     games,
		odds:      oddsRepo,
		plays:     plays,
		boxscores: boxscores,
		now:       time.Now,
		logger:    logger.Named("ingestion"),
	}
}

// ForRun returns a service whose game match cache is scoped to one
// ingestion run.
func (s *IngestionService) ForRun() *IngestionService {
	next := *s
	next.resolver = s.resolver.NewRun()
	return &next
}

// UpsertGame resolves (or creates) the game and merges the observation into
// it.
func (s *IngestionService) UpsertGame(ctx context.Context, in GameInput) (GameResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestionService.UpsertGame",
		attribute.String("league", in.League),
	)
	defer span.End()

	in.League = league.NormalizeCode(in.League)
	if in.Home.League == "" {
		in.Home.League = in.League
	}
	if in.Away.League == "" {
		in.Away.League = in.League
	}
	if err := validateInput(in.Identification); err != nil {
		return GameResult{}, err
	}

	var status game.Status
	if raw := strings.TrimSpace(in.Status); raw != "" {
		parsed, ok := game.ParseStatus(raw)
		if !ok {
			s.logger.WarnContext(ctx, "ignoring unknown game status",
				"league", in.League,
				"status", raw,
			)
		}
		status = parsed
	}

	match, err := s.resolver.ResolveOrCreate(ctx, ResolveGameInput{
		League:         in.League,
		Home:           in.Home,
		Away:           in.Away,
		GameDate:       in.GameDate,
		TipTime:        in.TipTime,
		Season:         in.Season,
		SeasonType:     in.SeasonType,
		SourceGameKey:  in.SourceGameKey,
		ExternalSource: in.ExternalSource,
		ExternalID:     in.ExternalID,
		AllowCreate:    true,
	})
	if err != nil {
		return GameResult{}, fmt.Errorf("resolve game: %w", err)
	}

	homeScore, awayScore := in.HomeScore, in.AwayScore
	if match.Swapped {
		homeScore, awayScore = awayScore, homeScore
	}

	update := game.Update{
		Season:        in.Season,
		SeasonType:    strings.TrimSpace(in.SeasonType),
		TipTime:       in.TipTime,
		HomeScore:     homeScore,
		AwayScore:     awayScore,
		Venue:         strings.TrimSpace(in.Venue),
		Status:        status,
		SourceGameKey: strings.TrimSpace(in.SourceGameKey),
	}
	if src, id := strings.ToLower(strings.TrimSpace(in.ExternalSource)), strings.TrimSpace(in.ExternalID); src != "" && id != "" {
		update.ExternalIDs = map[string]string{src: id}
	}

	g, changed, err := s.games.Upsert(ctx, match.GameID, update, s.now())
	if err != nil {
		return GameResult{}, fmt.Errorf("upsert game %d: %w", match.GameID, err)
	}

	return GameResult{
		GameID:  g.ID,
		Created: match.Created,
		Changed: changed,
		Status:  g.Status,
	}, nil
}

// UpsertOdds stores one odds snapshot. Unmatched snapshots and games that
// are already live are reported as skipped outcomes, not errors.
func (s *IngestionService) UpsertOdds(ctx context.Context, snap odds.Snapshot) (odds.Outcome, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestionService.UpsertOdds",
		attribute.String("book", snap.Book),
		attribute.String("market", snap.MarketType),
	)
	defer span.End()

	snap = snap.Normalized()
	if err := validateInput(snap); err != nil {
		return "", err
	}

	match, err := s.resolver.ResolveOrCreate(ctx, ResolveGameInput{
		League:      snap.League,
		Home:        snap.Home,
		Away:        snap.Away,
		GameDate:    snap.GameDate,
		TipTime:     snap.TipTime,
		AllowCreate: true,
	})
	if errors.Is(err, ErrNoMatch) {
		s.logger.DebugContext(ctx, "odds snapshot has no matching game",
			"league", snap.League,
			"book", snap.Book,
			"home", snap.Home.Name,
			"away", snap.Away.Name,
		)
		return odds.OutcomeSkippedNoMatch, nil
	}
	if err != nil {
		return "", fmt.Errorf("resolve game for odds: %w", err)
	}

	g, ok, err := s.games.Get(ctx, match.GameID)
	if err != nil {
		return "", fmt.Errorf("get game %d: %w", match.GameID, err)
	}
	if !ok {
		return odds.OutcomeSkippedNoMatch, nil
	}
	if g.Status == game.StatusLive {
		return odds.OutcomeSkippedLive, nil
	}

	if match.Swapped {
		snap.Side = swapSide(snap.Side)
	}

	line := odds.FromSnapshot(g.ID, snap)
	if snap.IsClosingLine {
		_, err = s.odds.UpsertClosing(ctx, line, s.now())
	} else {
		_, err = s.odds.UpsertOpening(ctx, line, s.now())
	}
	if err != nil {
		return "", fmt.Errorf("upsert odds line for game %d: %w", g.ID, err)
	}
	return odds.OutcomePersisted, nil
}

// UpsertOddsBatch applies UpsertOdds to every snapshot; a failing snapshot
// is logged and counted and the batch continues.
func (s *IngestionService) UpsertOddsBatch(ctx context.Context, snaps []odds.Snapshot) OddsBatchResult {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestionService.UpsertOddsBatch")
	defer span.End()

	var result OddsBatchResult
	for _, snap := range snaps {
		outcome, err := s.UpsertOdds(ctx, snap)
		if err != nil {
			result.Errors++
			s.logger.WarnContext(ctx, "odds snapshot failed",
				"league", snap.League,
				"book", snap.Book,
				"market", snap.MarketType,
				"error", err,
			)
			continue
		}
		switch outcome {
		case odds.OutcomePersisted:
			result.Persisted++
		case odds.OutcomeSkippedLive:
			result.SkippedLive++
		case odds.OutcomeSkippedNoMatch:
			result.SkippedNoMatch++
		}
	}
	return result
}

// UpsertPlays writes plays for an existing game and returns how many were
// processed. An end-of-game play sets end_time (once) and moves the game
// to final.
func (s *IngestionService) UpsertPlays(ctx context.Context, gameID int64, plays []play.Play) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestionService.UpsertPlays",
		attribute.Int64("game_id", gameID),
		attribute.Int("plays", len(plays)),
	)
	defer span.End()

	if gameID <= 0 {
		return 0, fmt.Errorf("%w: game id is required", ErrInvalidInput)
	}
	if len(plays) == 0 {
		return 0, nil
	}

	if _, ok, err := s.games.Get(ctx, gameID); err != nil {
		return 0, fmt.Errorf("get game %d: %w", gameID, err)
	} else if !ok {
		return 0, fmt.Errorf("%w: game %d", ErrNotFound, gameID)
	}

	valid := make([]play.Play, 0, len(plays))
	for _, p := range plays {
		if err := validateInput(p); err != nil {
			s.logger.WarnContext(ctx, "rejecting play",
				"game_id", gameID,
				"play_index", p.PlayIndex,
				"error", err,
			)
			continue
		}
		valid = append(valid, p)
	}
	valid = play.Dedupe(valid)
	if len(valid) == 0 {
		return 0, nil
	}

	now := s.now()
	processed, err := s.plays.UpsertMany(ctx, gameID, valid, now)
	if err != nil {
		return 0, fmt.Errorf("upsert plays for game %d: %w", gameID, err)
	}

	if ended, end := play.GameEnd(valid); ended {
		if _, _, err := s.games.Upsert(ctx, gameID, game.Update{Status: game.StatusFinal, EndTime: end}, now); err != nil {
			s.logger.WarnContext(ctx, "set game end from plays failed", "game_id", gameID, "error", err)
		}
	}

	if err := s.games.Touch(ctx, gameID, game.TouchPbp, now); err != nil {
		s.logger.WarnContext(ctx, "touch pbp timestamp failed", "game_id", gameID, "error", err)
	}
	return processed, nil
}

// UpsertTeamBoxscores enriches an existing game with team box score rows. A
// missing game is a warned no-op. A row's score also updates the game score.
func (s *IngestionService) UpsertTeamBoxscores(ctx context.Context, gameID int64, rows []boxscore.TeamRow) (boxscore.Counts, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestionService.UpsertTeamBoxscores",
		attribute.Int64("game_id", gameID),
	)
	defer span.End()

	g, lc, ok, err := s.boxscoreTarget(ctx, gameID)
	if err != nil || !ok {
		return boxscore.Counts{}, err
	}

	now := s.now()
	var counts boxscore.Counts
	var scores game.Update
	for _, row := range rows {
		teamID, err := s.rowTeam(ctx, lc, g, row.TeamID, row.Team)
		if err != nil {
			s.countRowError(ctx, &counts, gameID, err)
			continue
		}
		if _, err := s.boxscores.UpsertTeamRow(ctx, gameID, teamID, row, now); err != nil {
			s.countRowError(ctx, &counts, gameID, err)
			continue
		}
		counts.Inserted++

		if row.Score != nil {
			score := *row.Score
			if teamID == g.HomeTeamID {
				scores.HomeScore = &score
			} else {
				scores.AwayScore = &score
			}
		}
	}

	if scores.HomeScore != nil || scores.AwayScore != nil {
		if _, _, err := s.games.Upsert(ctx, gameID, scores, now); err != nil {
			s.logger.WarnContext(ctx, "update game score from boxscore failed", "game_id", gameID, "error", err)
		}
	}
	s.touchBoxscore(ctx, gameID, counts, now)
	return counts, nil
}

// UpsertPlayerBoxscores enriches an existing game with player rows. Rows
// failing the league's shape checks are rejected and counted.
func (s *IngestionService) UpsertPlayerBoxscores(ctx context.Context, gameID int64, rows []boxscore.PlayerRow) (boxscore.Counts, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestionService.UpsertPlayerBoxscores",
		attribute.Int64("game_id", gameID),
	)
	defer span.End()

	g, lc, ok, err := s.boxscoreTarget(ctx, gameID)
	if err != nil || !ok {
		return boxscore.Counts{}, err
	}

	now := s.now()
	var counts boxscore.Counts
	for _, row := range rows {
		if err := boxscore.ValidatePlayerRow(row, lc.Config.RequiredPlayerFields); err != nil {
			s.countRowError(ctx, &counts, gameID, err)
			continue
		}
		teamID, err := s.rowTeam(ctx, lc, g, row.TeamID, row.Team)
		if err != nil {
			s.countRowError(ctx, &counts, gameID, err)
			continue
		}
		if _, err := s.boxscores.UpsertPlayerRow(ctx, gameID, teamID, row, now); err != nil {
			s.countRowError(ctx, &counts, gameID, err)
			continue
		}
		counts.Inserted++
	}

	s.touchBoxscore(ctx, gameID, counts, now)
	return counts, nil
}

func (s *IngestionService) boxscoreTarget(ctx context.Context, gameID int64) (game.Game, LeagueContext, bool, error) {
	if gameID <= 0 {
		return game.Game{}, LeagueContext{}, false, fmt.Errorf("%w: game id is required", ErrInvalidInput)
	}

	g, ok, err := s.games.Get(ctx, gameID)
	if err != nil {
		return game.Game{}, LeagueContext{}, false, fmt.Errorf("get game %d: %w", gameID, err)
	}
	if !ok {
		s.logger.WarnContext(ctx, "boxscore for unknown game skipped", "game_id", gameID)
		return game.Game{}, LeagueContext{}, false, nil
	}

	lc, err := s.leagues.ResolveID(ctx, g.LeagueID)
	if err != nil {
		return game.Game{}, LeagueContext{}, false, err
	}
	return g, lc, true, nil
}

// rowTeam resolves a boxscore row to one of the game's two teams without
// creating teams.
func (s *IngestionService) rowTeam(ctx context.Context, lc LeagueContext, g game.Game, teamID int64, id team.Identity) (int64, error) {
	if teamID == 0 {
		if strings.TrimSpace(id.Name) == "" && strings.TrimSpace(id.Abbreviation) != "" {
			id.Name = id.Abbreviation
		}
		id.League = lc.Config.Code
		t, ok, err := s.teams.Lookup(ctx, id)
		if errors.Is(err, ErrInvalidInput) {
			return 0, boxscore.Rejection{Reason: "team identity missing"}
		}
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, boxscore.Rejection{Reason: fmt.Sprintf("team %q unknown", id.Name)}
		}
		teamID = t.ID
	}
	if teamID != g.HomeTeamID && teamID != g.AwayTeamID {
		return 0, boxscore.Rejection{Reason: fmt.Sprintf("team %d not in game", teamID)}
	}
	return teamID, nil
}

func (s *IngestionService) countRowError(ctx context.Context, counts *boxscore.Counts, gameID int64, err error) {
	var rejection boxscore.Rejection
	if errors.As(err, &rejection) {
		counts.Rejected++
		s.logger.WarnContext(ctx, "boxscore row rejected", "game_id", gameID, "reason", rejection.Reason)
		return
	}
	counts.Errors++
	s.logger.ErrorContext(ctx, "boxscore row failed", "game_id", gameID, "error", err)
}

func (s *IngestionService) touchBoxscore(ctx context.Context, gameID int64, counts boxscore.Counts, now time.Time) {
	if counts.Inserted == 0 {
		return
	}
	if err := s.games.Touch(ctx, gameID, game.TouchBoxscore, now); err != nil {
		s.logger.WarnContext(ctx, "touch boxscore timestamp failed", "game_id", gameID, "error", err)
	}
}

func swapSide(side string) string {
	switch strings.ToLower(side) {
	case "home":
		return "away"
	case "away":
		return "home"
	}
	return side
}
