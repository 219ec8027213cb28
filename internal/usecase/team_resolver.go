package usecase

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/riskibarqy/game-reconciler/internal/domain/team"
	basecache "github.com/riskibarqy/game-reconciler/internal/platform/cache"
	"github.com/riskibarqy/game-reconciler/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

// TeamResolver maps source team identities to stored team ids, creating and
// enriching rows as sources reveal more about a team.
type TeamResolver struct {
	leagues *LeagueDirectory
	repo    team.Repository
	rules   *team.Rules
	cache   *basecache.Store
	logger  *logging.Logger
}

func NewTeamResolver(
	leagues *LeagueDirectory,
	repo team.Repository,
	rules *team.Rules,
	cacheTTL time.Duration,
	logger *logging.Logger,
) *TeamResolver {
	if rules == nil {
		rules = team.DefaultRules()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &TeamResolver{
		leagues: leagues,
		repo:    repo,
		rules:   rules,
		cache:   basecache.NewStore(cacheTTL),
		logger:  logger.Named("team_resolver"),
	}
}

func (r *TeamResolver) Rules() *team.Rules {
	return r.rules
}

// Lookup finds the stored team without creating or enriching anything.
func (r *TeamResolver) Lookup(ctx context.Context, id team.Identity) (team.Team, bool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamResolver.Lookup")
	defer span.End()

	id = id.Normalized()
	if err := validateInput(id); err != nil {
		return team.Team{}, false, err
	}

	lc, err := r.leagues.Resolve(ctx, id.League)
	if err != nil {
		return team.Team{}, false, err
	}
	teams, err := r.teams(ctx, lc.League.ID)
	if err != nil {
		return team.Team{}, false, err
	}

	found, _, ok := r.rules.Match(teams, id, r.matchOptions(lc))
	return found, ok, nil
}

// Resolve returns the team id for id, inserting a new team on a miss and
// enriching the matched team on a hit. Enrichment failures are logged and
// never fail the resolution.
func (r *TeamResolver) Resolve(ctx context.Context, id team.Identity) (int64, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamResolver.Resolve",
		attribute.String("league", id.League),
	)
	defer span.End()

	id = id.Normalized()
	if err := validateInput(id); err != nil {
		return 0, err
	}

	lc, err := r.leagues.Resolve(ctx, id.League)
	if err != nil {
		return 0, err
	}
	teams, err := r.teams(ctx, lc.League.ID)
	if err != nil {
		return 0, err
	}

	if curated, ok := r.rules.Override(lc.Config.Code, id.Name); ok {
		id.Name = curated
	}

	found, stage, ok := r.rules.Match(teams, id, r.matchOptions(lc))
	if ok {
		if enriched, changed := team.Enrich(found, id); changed {
			if err := r.repo.Update(ctx, enriched); err != nil {
				r.logger.WarnContext(ctx, "enrich team failed",
					"team_id", found.ID,
					"league", lc.Config.Code,
					"error", err,
				)
			} else {
				r.invalidate(ctx, lc.League.ID)
			}
		}
		r.logger.DebugContext(ctx, "team resolved",
			"team_id", found.ID,
			"league", lc.Config.Code,
			"stage", string(stage),
		)
		return found.ID, nil
	}

	created, err := r.repo.Insert(ctx, team.New(lc.League.ID, id))
	if err != nil {
		return 0, fmt.Errorf("insert team %q: %w", id.Name, err)
	}
	r.invalidate(ctx, lc.League.ID)
	r.logger.InfoContext(ctx, "team created",
		"team_id", created.ID,
		"league", lc.Config.Code,
		"name", created.Name,
		"abbreviation", created.Abbreviation,
	)
	return created.ID, nil
}

// TeamsByID indexes a league's teams by id.
func (r *TeamResolver) TeamsByID(ctx context.Context, leagueID int64) (map[int64]team.Team, error) {
	teams, err := r.teams(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	out := make(map[int64]team.Team, len(teams))
	for _, t := range teams {
		out[t.ID] = t
	}
	return out, nil
}

func (r *TeamResolver) matchOptions(lc LeagueContext) team.MatchOptions {
	return team.MatchOptions{
		League:        lc.Config.Code,
		Abbreviations: lc.Config.AbbreviationMatching,
		StripMascots:  lc.Config.StripMascots,
	}
}

func (r *TeamResolver) teams(ctx context.Context, leagueID int64) ([]team.Team, error) {
	value, err := r.cache.GetOrLoad(ctx, teamCacheKey(leagueID), func(ctx context.Context) (any, error) {
		items, err := r.repo.ListByLeague(ctx, leagueID)
		if err != nil {
			return nil, fmt.Errorf("list teams for league %d: %w", leagueID, err)
		}
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	return value.([]team.Team), nil
}

func (r *TeamResolver) invalidate(ctx context.Context, leagueID int64) {
	r.cache.Delete(ctx, teamCacheKey(leagueID))
}

func teamCacheKey(leagueID int64) string {
	return "teams:" + strconv.FormatInt(leagueID, 10)
}
