package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"shmboard/config"
	"shmboard/models"
)

// AdminService forwards caller supplied credentials to the leaderboard
// backend's admin API. It holds no credentials of its own.
type AdminService struct {
	baseURL string
	client  *jsonClient
	cache   *CacheService
	logger  *zap.Logger
}

func NewAdminService(cfg *config.Config, cache *CacheService, logger *zap.Logger) *AdminService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminService{
		baseURL: strings.TrimRight(cfg.Leaderboard.BackendURL, "/"),
		client:  newJSONClient(cfg.LeaderboardTimeoutDuration(), 1),
		cache:   cache,
		logger:  logger,
	}
}

func (as *AdminService) ListValidators(ctx context.Context, creds models.Credentials) ([]models.AdminValidator, error) {
	if creds.Empty() {
		return nil, fmt.Errorf("%w: credentials required", ErrUnauthorized)
	}

	var validators []models.AdminValidator
	if err := as.client.do(ctx, http.MethodGet, as.baseURL+"/api/admin/validators", &creds, nil, &validators); err != nil {
		return nil, mapAdminError(err)
	}
	return validators, nil
}

// UpdateValidator sets a validator's alias and avatar
func (as *AdminService) UpdateValidator(ctx context.Context, creds models.Credentials, publicKey, alias, avatar string) error {
	publicKey = strings.TrimSpace(publicKey)
	alias = strings.TrimSpace(alias)
	avatar = strings.TrimSpace(avatar)

	switch {
	case publicKey == "":
		return ErrInvalidPublicKey
	case alias == "":
		return ErrInvalidAlias
	case !models.IsAllowedAvatar(avatar):
		return fmt.Errorf("%w: %q", ErrInvalidAvatar, avatar)
	case creds.Empty():
		return fmt.Errorf("%w: credentials required", ErrUnauthorized)
	}

	aliasReq := map[string]string{"publicKey": publicKey, "alias": alias}
	if err := as.client.do(ctx, http.MethodPost, as.baseURL+"/api/set-alias", &creds, aliasReq, nil); err != nil {
		return fmt.Errorf("set alias: %w", mapAdminError(err))
	}

	avatarReq := map[string]string{"publicKey": publicKey, "avatar": avatar}
	if err := as.client.do(ctx, http.MethodPost, as.baseURL+"/api/set-avatar", &creds, avatarReq, nil); err != nil {
		return fmt.Errorf("set avatar: %w", mapAdminError(err))
	}

	as.logger.Info("validator updated",
		zap.String("public_key", publicKey), zap.String("alias", alias), zap.String("avatar", avatar))

	// leaderboard cards show the alias, drop cached lists
	for _, p := range []models.Period{models.PeriodDaily, models.PeriodWeekly, models.PeriodMonthly, models.PeriodAll} {
		as.cache.Delete(ValidatorsKey(p))
	}
	return nil
}

func mapAdminError(err error) error {
	var he *HTTPError
	if errors.As(err, &he) && (he.Code == http.StatusUnauthorized || he.Code == http.StatusForbidden) {
		msg := he.Message
		if msg == "" {
			msg = http.StatusText(he.Code)
		}
		return fmt.Errorf("%w: %s", ErrUnauthorized, msg)
	}
	return err
}
