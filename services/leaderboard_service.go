package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"go.uber.org/zap"

	"shmboard/config"
	"shmboard/models"
	"shmboard/utils"
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// LeaderboardService ranks validators by how often they were activated
type LeaderboardService struct {
	cfg         *config.Config
	baseURL     string
	explorerURL string
	client      *jsonClient
	cache       *CacheService
	geo         *utils.GeoResolver
	logger      *zap.Logger
}

func NewLeaderboardService(cfg *config.Config, cache *CacheService, geo *utils.GeoResolver, logger *zap.Logger) *LeaderboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LeaderboardService{
		cfg:         cfg,
		baseURL:     strings.TrimRight(cfg.Leaderboard.BackendURL, "/"),
		explorerURL: cfg.Leaderboard.ExplorerURL,
		client:      newJSONClient(cfg.LeaderboardTimeoutDuration(), 2),
		cache:       cache,
		geo:         geo,
		logger:      logger,
	}
}

// Leaderboard returns one page of validators, most activations first
func (ls *LeaderboardService) Leaderboard(ctx context.Context, period string, page, limit int) (*models.LeaderboardPage, error) {
	return ls.board(ctx, period, page, limit, false)
}

// Loserboard returns one page of validators, fewest activations first
func (ls *LeaderboardService) Loserboard(ctx context.Context, period string, page, limit int) (*models.LeaderboardPage, error) {
	return ls.board(ctx, period, page, limit, true)
}

func (ls *LeaderboardService) board(ctx context.Context, period string, page, limit int, ascending bool) (*models.LeaderboardPage, error) {
	p, err := models.ParsePeriod(period)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPeriod, err)
	}

	validators, stale, err := ls.Validators(ctx, p)
	if err != nil {
		return nil, err
	}

	ranked := RankValidators(validators, p, ascending)

	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}

	total := len(ranked)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	order := "desc"
	if ascending {
		order = "asc"
	}

	cards := make([]models.RankedValidator, 0, end-start)
	for i, v := range ranked[start:end] {
		cards = append(cards, ls.card(v, start+i+1, p))
	}

	return &models.LeaderboardPage{
		Period:     p,
		Order:      order,
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: (total + limit - 1) / limit,
		Validators: cards,
		Stale:      stale,
	}, nil
}

// Validators returns the raw validator list for p, cached per period. When the
// backend fails the last known list is returned with stale set.
func (ls *LeaderboardService) Validators(ctx context.Context, p models.Period) ([]models.Validator, bool, error) {
	if validators, _, ok := ls.cache.GetValidators(p, false); ok {
		return validators, false, nil
	}

	validators, err := ls.fetchValidators(ctx, p)
	if err == nil {
		ls.cache.Set(ValidatorsKey(p), validators, ls.cfg.ValidatorTTLDuration())
		return validators, false, nil
	}

	promUpstreamFailures.WithLabelValues("leaderboard").Inc()
	if validators, _, ok := ls.cache.GetValidators(p, true); ok {
		ls.logger.Warn("leaderboard fetch failed, serving stale list",
			zap.String("period", string(p)), zap.Error(err))
		return validators, true, nil
	}
	return nil, false, err
}

func (ls *LeaderboardService) fetchValidators(ctx context.Context, p models.Period) ([]models.Validator, error) {
	u := ls.baseURL + "/api/validators?period=" + url.QueryEscape(string(p))

	var raw json.RawMessage
	if err := ls.client.do(ctx, http.MethodGet, u, nil, nil, &raw); err != nil {
		return nil, fmt.Errorf("fetch validators: %w", err)
	}

	var validators []models.Validator
	if err := json.Unmarshal(raw, &validators); err != nil {
		return nil, fmt.Errorf("%w: response is not a list", ErrNoValidators)
	}
	if len(validators) == 0 {
		return nil, ErrNoValidators
	}
	return validators, nil
}

// RankValidators orders a copy of validators by their count for p. Ties are
// broken by address so ranking is stable between requests.
func RankValidators(validators []models.Validator, p models.Period, ascending bool) []models.Validator {
	ranked := make([]models.Validator, len(validators))
	copy(ranked, validators)

	sort.SliceStable(ranked, func(i, j int) bool {
		ci, cj := ranked[i].Count(p), ranked[j].Count(p)
		if ci != cj {
			if ascending {
				return ci < cj
			}
			return ci > cj
		}
		return ranked[i].Address < ranked[j].Address
	})
	return ranked
}

func (ls *LeaderboardService) card(v models.Validator, rank int, p models.Period) models.RankedValidator {
	nodeType := "Community Node"
	avatar := v.Avatar
	if v.Foundation {
		nodeType = "Foundation Node"
	}
	if avatar == "" {
		avatar = "default-avatar.png"
		if v.Foundation {
			avatar = "foundation_validator.png"
		}
	}

	return models.RankedValidator{
		Rank:         rank,
		Address:      v.Address,
		ShortAddress: utils.TruncateAddress(v.Address),
		DisplayAlias: utils.DisplayAlias(v.Alias),
		Avatar:       avatar,
		Identifier:   v.Identifier,
		Country:      ls.geo.Country(v.Identifier),
		Foundation:   v.Foundation,
		NodeType:     nodeType,
		Activations:  v.Count(p),
		ExplorerURL:  ls.explorerURL + url.PathEscape(v.Address),
	}
}
