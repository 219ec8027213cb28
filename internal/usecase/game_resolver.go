package usecase

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/game-reconciler/internal/domain/game"
	"github.com/riskibarqy/game-reconciler/internal/domain/league"
	"github.com/riskibarqy/game-reconciler/internal/domain/team"
	basecache "github.com/riskibarqy/game-reconciler/internal/platform/cache"
	"github.com/riskibarqy/game-reconciler/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

const (
	StrategyExternalID = "external_id"
	StrategyExact      = "exact"
	StrategySwapped    = "swapped"
	StrategyName       = "name"
	StrategyCreated    = "created"
)

type GameResolverConfig struct {
	// MatchWindow is how far either side of the requested date candidate
	// games are searched.
	MatchWindow time.Duration
	// MaxFutureDays bounds how far ahead a game may be created.
	MaxFutureDays int
}

func (c GameResolverConfig) withDefaults() GameResolverConfig {
	if c.MatchWindow <= 0 {
		c.MatchWindow = 24 * time.Hour
	}
	if c.MaxFutureDays <= 0 {
		c.MaxFutureDays = 14
	}
	return c
}

// ResolveGameInput describes a game the way a source sees it.
type ResolveGameInput struct {
	League        string `validate:"required"`
	Home          team.Identity
	Away          team.Identity
	GameDate      time.Time `validate:"required"`
	TipTime       *time.Time
	Season        int `validate:"gte=0"`
	SeasonType    string
	SourceGameKey string
	// ExternalSource/ExternalID look the game up by a source-specific id
	// stored in external_ids.
	ExternalSource string
	ExternalID     string
	AllowCreate    bool
}

type GameMatch struct {
	GameID     int64
	HomeTeamID int64
	AwayTeamID int64
	Found      bool
	Created    bool
	// Swapped is set when the stored game has home and away reversed
	// relative to the input.
	Swapped  bool
	Strategy string
}

// GameResolver finds or creates the game a source record refers to. Results
// (including misses) are cached for the lifetime of the resolver; use
// NewRun for a fresh cache per ingestion run.
type GameResolver struct {
	leagues *LeagueDirectory
	teams   *TeamResolver
	games   game.Repository
	cfg     GameResolverConfig
	cache   *basecache.Store
	now     func() time.Time
	logger  *logging.Logger
}

func NewGameResolver(
	leagues *LeagueDirectory,
	teams *TeamResolver,
	games game.Repository,
	cfg GameResolverConfig,
	logger *logging.Logger,
) *GameResolver {
	if logger == nil {
		logger = logging.Default()
	}
	return &GameResolver{
		leagues: leagues,
		teams:   teams,
		games:   games,
		cfg:     cfg.withDefaults(),
		cache:   basecache.NewStore(0),
		now:     time.Now,
		logger:  logger.Named("game_resolver"),
	}
}

// NewRun returns a resolver sharing dependencies but with an empty cache.
func (r *GameResolver) NewRun() *GameResolver {
	next := *r
	next.cache = basecache.NewStore(0)
	return &next
}

// ResolveOrCreate finds the game for in, creating a stub when in.AllowCreate is set.
// A miss returns ErrNoMatch. Concurrent calls for the same matchup share one
// resolution.
func (r *GameResolver) ResolveOrCreate(ctx context.Context, in ResolveGameInput) (GameMatch, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameResolver.ResolveOrCreate",
		attribute.String("league", in.League),
		attribute.Bool("allow_create", in.AllowCreate),
	)
	defer span.End()

	in = normalizeResolveInput(in)
	if err := validateInput(in); err != nil {
		return GameMatch{}, err
	}
	if in.Home.Name == "" || in.Away.Name == "" {
		return GameMatch{}, fmt.Errorf("%w: home and away team names are required", ErrInvalidInput)
	}

	lc, err := r.leagues.Resolve(ctx, in.League)
	if err != nil {
		return GameMatch{}, err
	}

	home, homeOK, err := r.teams.Lookup(ctx, in.Home)
	if err != nil {
		return GameMatch{}, err
	}
	away, awayOK, err := r.teams.Lookup(ctx, in.Away)
	if err != nil {
		return GameMatch{}, err
	}
	if homeOK && awayOK && home.ID == away.ID {
		return GameMatch{}, fmt.Errorf("%w: home and away resolve to the same team %d", ErrInvalidInput, home.ID)
	}

	date := game.CalendarDate(in.GameDate)
	homeSide := r.sideKey(lc, in.Home, home, homeOK)
	awaySide := r.sideKey(lc, in.Away, away, awayOK)
	key := matchKey(lc, date, homeSide, awaySide)
	orient := func(entry cachedMatch) GameMatch {
		return entry.orientFor(homeSide, home, homeOK, away, awayOK)
	}

	if cached, ok := r.cache.Get(ctx, key); ok {
		entry := cached.(cachedMatch)
		if entry.match.Found {
			match := orient(entry)
			match.Created = false
			return match, nil
		}
		if !in.AllowCreate {
			return GameMatch{}, fmt.Errorf("%w: %s %s vs %s on %s", ErrNoMatch, lc.Config.Code, in.Away.Name, in.Home.Name, date.Format(time.DateOnly))
		}
	}

	value, err := r.cache.Refresh(ctx, key, func(ctx context.Context) (any, error) {
		match, err := r.resolve(ctx, lc, in, date, home, homeOK, away, awayOK)
		if err != nil {
			return nil, err
		}
		return cachedMatch{match: match, homeSide: homeSide}, nil
	})
	if err != nil {
		return GameMatch{}, err
	}

	entry := value.(cachedMatch)
	if !entry.match.Found {
		return GameMatch{}, fmt.Errorf("%w: %s %s vs %s on %s", ErrNoMatch, lc.Config.Code, in.Away.Name, in.Home.Name, date.Format(time.DateOnly))
	}
	return orient(entry), nil
}

// cachedMatch is a resolution shared by both orientations of a matchup.
// homeSide records which side was home in the call that resolved it.
type cachedMatch struct {
	match    GameMatch
	homeSide string
}

// orientFor recomputes Swapped for the caller's orientation. Known team ids
// decide it directly; otherwise the caller's home side is compared to the
// side that was home when the entry was resolved.
func (c cachedMatch) orientFor(homeSide string, home team.Team, homeOK bool, away team.Team, awayOK bool) GameMatch {
	m := c.match
	switch {
	case homeOK && (home.ID == m.HomeTeamID || home.ID == m.AwayTeamID):
		m.Swapped = home.ID != m.HomeTeamID
	case awayOK && (away.ID == m.HomeTeamID || away.ID == m.AwayTeamID):
		m.Swapped = away.ID != m.AwayTeamID
	case homeSide != c.homeSide:
		m.Swapped = !m.Swapped
	}
	return m
}

func (r *GameResolver) resolve(
	ctx context.Context,
	lc LeagueContext,
	in ResolveGameInput,
	date time.Time,
	home team.Team, homeOK bool,
	away team.Team, awayOK bool,
) (GameMatch, error) {
	if match, ok, err := r.byExternalID(ctx, lc, in); err != nil || ok {
		return match, err
	}

	candidates, err := r.games.FindCandidates(ctx, lc.League.ID, date.Add(-r.cfg.MatchWindow), date.Add(r.cfg.MatchWindow))
	if err != nil {
		return GameMatch{}, fmt.Errorf("find candidate games: %w", err)
	}

	if homeOK && awayOK {
		var exact, swapped []game.Game
		for _, g := range candidates {
			switch {
			case g.HomeTeamID == home.ID && g.AwayTeamID == away.ID:
				exact = append(exact, g)
			case g.HomeTeamID == away.ID && g.AwayTeamID == home.ID:
				swapped = append(swapped, g)
			}
		}
		if len(exact) > 0 {
			return found(closestGame(exact, date, in.TipTime), StrategyExact, false), nil
		}
		if len(swapped) > 0 {
			return found(closestGame(swapped, date, in.TipTime), StrategySwapped, true), nil
		}
	}

	if len(candidates) > 0 {
		match, ok, err := r.byName(ctx, lc, in, date, candidates)
		if err != nil || ok {
			return match, err
		}
	}

	if !in.AllowCreate {
		return GameMatch{}, nil
	}

	horizon := game.CalendarDate(r.now()).AddDate(0, 0, r.cfg.MaxFutureDays)
	if date.After(horizon) {
		r.logger.WarnContext(ctx, "refusing to create game beyond future horizon",
			"league", lc.Config.Code,
			"game_date", date.Format(time.DateOnly),
			"max_future_days", r.cfg.MaxFutureDays,
		)
		return GameMatch{}, nil
	}

	return r.create(ctx, lc, in, date)
}

func (r *GameResolver) byExternalID(ctx context.Context, lc LeagueContext, in ResolveGameInput) (GameMatch, bool, error) {
	lookups := make([][2]string, 0, 2)
	if in.ExternalSource != "" && in.ExternalID != "" {
		lookups = append(lookups, [2]string{in.ExternalSource, in.ExternalID})
	}
	if in.SourceGameKey != "" {
		lookups = append(lookups, [2]string{"", in.SourceGameKey})
	}

	for _, l := range lookups {
		g, ok, err := r.games.FindByExternalID(ctx, lc.League.ID, l[0], l[1])
		if err != nil {
			return GameMatch{}, false, fmt.Errorf("find game by external id: %w", err)
		}
		if ok {
			return found(g, StrategyExternalID, false), true, nil
		}
	}
	return GameMatch{}, false, nil
}

// byName compares raw names against the stored team names of each candidate
// using the league's name-match mode, in both orientations.
func (r *GameResolver) byName(ctx context.Context, lc LeagueContext, in ResolveGameInput, date time.Time, candidates []game.Game) (GameMatch, bool, error) {
	byID, err := r.teams.TeamsByID(ctx, lc.League.ID)
	if err != nil {
		return GameMatch{}, false, err
	}

	rules := r.teams.Rules()
	contains := lc.Config.NameMatch == league.NameMatchContains
	strip := lc.Config.StripMascots
	same := func(raw string, teamID int64) bool {
		t, ok := byID[teamID]
		if !ok {
			return false
		}
		if curated, ok := rules.Override(lc.Config.Code, raw); ok {
			raw = curated
		}
		return rules.NamesMatch(raw, t.Name, contains, strip) ||
			(t.ShortName != "" && rules.NamesMatch(raw, t.ShortName, contains, strip))
	}

	var direct, swapped []game.Game
	for _, g := range candidates {
		switch {
		case same(in.Home.Name, g.HomeTeamID) && same(in.Away.Name, g.AwayTeamID):
			direct = append(direct, g)
		case same(in.Home.Name, g.AwayTeamID) && same(in.Away.Name, g.HomeTeamID):
			swapped = append(swapped, g)
		}
	}
	if len(direct) > 0 {
		return found(closestGame(direct, date, in.TipTime), StrategyName, false), true, nil
	}
	if len(swapped) > 0 {
		return found(closestGame(swapped, date, in.TipTime), StrategyName, true), true, nil
	}
	return GameMatch{}, false, nil
}

func (r *GameResolver) create(ctx context.Context, lc LeagueContext, in ResolveGameInput, date time.Time) (GameMatch, error) {
	homeID, err := r.teams.Resolve(ctx, in.Home)
	if err != nil {
		return GameMatch{}, fmt.Errorf("resolve home team: %w", err)
	}
	awayID, err := r.teams.Resolve(ctx, in.Away)
	if err != nil {
		return GameMatch{}, fmt.Errorf("resolve away team: %w", err)
	}
	if homeID == awayID {
		return GameMatch{}, fmt.Errorf("%w: home and away resolve to the same team %d", ErrInvalidInput, homeID)
	}

	var externalIDs map[string]string
	if in.ExternalSource != "" && in.ExternalID != "" {
		externalIDs = map[string]string{in.ExternalSource: in.ExternalID}
	}

	g, created, err := r.games.CreateStub(ctx, game.Stub{
		LeagueID:      lc.League.ID,
		Season:        in.Season,
		SeasonType:    in.SeasonType,
		GameDate:      date,
		TipTime:       in.TipTime,
		HomeTeamID:    homeID,
		AwayTeamID:    awayID,
		SourceGameKey: in.SourceGameKey,
		ExternalIDs:   externalIDs,
	}, r.now())
	if err != nil {
		return GameMatch{}, fmt.Errorf("create game stub: %w", err)
	}

	if created {
		r.logger.InfoContext(ctx, "game created",
			"game_id", g.ID,
			"league", lc.Config.Code,
			"game_date", date.Format(time.DateOnly),
			"home_team_id", homeID,
			"away_team_id", awayID,
		)
	}

	match := found(g, StrategyCreated, false)
	match.Created = created
	return match, nil
}

func (r *GameResolver) sideKey(lc LeagueContext, id team.Identity, t team.Team, ok bool) string {
	if ok {
		return "t:" + strconv.FormatInt(t.ID, 10)
	}
	return "n:" + r.teams.Rules().Canonical(id.Name, lc.Config.StripMascots)
}

// matchKey is the same for both orientations of a matchup.
func matchKey(lc LeagueContext, date time.Time, homeSide, awaySide string) string {
	pair := []string{homeSide, awaySide}
	sort.Strings(pair)
	return strings.Join([]string{lc.Config.Code, date.Format(time.DateOnly), pair[0], pair[1]}, "|")
}

func found(g game.Game, strategy string, swapped bool) GameMatch {
	return GameMatch{
		GameID:     g.ID,
		HomeTeamID: g.HomeTeamID,
		AwayTeamID: g.AwayTeamID,
		Found:      true,
		Swapped:    swapped,
		Strategy:   strategy,
	}
}

// closestGame prefers the candidate nearest the requested date, then the
// nearest tip time when both are known, then the lowest id.
func closestGame(games []game.Game, date time.Time, tip *time.Time) game.Game {
	sort.SliceStable(games, func(i, j int) bool {
		di, dj := absDuration(games[i].GameDate.Sub(date)), absDuration(games[j].GameDate.Sub(date))
		if di != dj {
			return di < dj
		}
		if tip != nil && games[i].TipTime != nil && games[j].TipTime != nil {
			ti, tj := absDuration(games[i].TipTime.Sub(*tip)), absDuration(games[j].TipTime.Sub(*tip))
			if ti != tj {
				return ti < tj
			}
		}
		return games[i].ID < games[j].ID
	})
	return games[0]
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

func normalizeResolveInput(in ResolveGameInput) ResolveGameInput {
	in.League = league.NormalizeCode(in.League)
	in.Home = in.Home.Normalized()
	in.Away = in.Away.Normalized()
	if in.Home.League == "" {
		in.Home.League = in.League
	}
	if in.Away.League == "" {
		in.Away.League = in.League
	}
	in.SeasonType = strings.TrimSpace(in.SeasonType)
	in.SourceGameKey = strings.TrimSpace(in.SourceGameKey)
	in.ExternalSource = strings.ToLower(strings.TrimSpace(in.ExternalSource))
	in.ExternalID = strings.TrimSpace(in.ExternalID)
	return in
}
