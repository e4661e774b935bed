package services

import "errors"

var (
	ErrNoValidators     = errors.New("no validators returned by leaderboard backend")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrInvalidPeriod    = errors.New("invalid period")
	ErrInvalidAlias     = errors.New("alias must not be empty")
	ErrInvalidAvatar    = errors.New("avatar is not one of the allowed avatars")
	ErrInvalidPublicKey = errors.New("public key must not be empty")
)
