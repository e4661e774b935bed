package models

import (
	"fmt"
	"strings"
)

// Period is a leaderboard counting window
type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
	PeriodAll     Period = "all"
)

func ParsePeriod(s string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PeriodWeekly, nil
	case PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodAll:
		return p, nil
	}
	return "", fmt.Errorf("unknown period %q", s)
}

// Validator is one entry from the leaderboard backend
type Validator struct {
	Address      string `json:"address"`
	Alias        string `json:"alias"`
	Avatar       string `json:"avatar"`
	Identifier   string `json:"identifier"` // ip address
	Foundation   bool   `json:"foundation"`
	DailyCount   int64  `json:"dailycount"`
	WeeklyCount  int64  `json:"weeklycount"`
	MonthlyCount int64  `json:"monthlycount"`
	AllCount     int64  `json:"allcount"`
}

// Count returns the activation count for p
func (v Validator) Count(p Period) int64 {
	switch p {
	case PeriodDaily:
		return v.DailyCount
	case PeriodWeekly:
		return v.WeeklyCount
	case PeriodMonthly:
		return v.MonthlyCount
	case PeriodAll:
		return v.AllCount
	}
	return 0
}

// RankedValidator is a leaderboard card
type RankedValidator struct {
	Rank         int    `json:"rank"`
	Address      string `json:"address"`
	ShortAddress string `json:"short_address"`
	DisplayAlias string `json:"alias"`
	Avatar       string `json:"avatar"`
	Identifier   string `json:"identifier"`
	Country      string `json:"country,omitempty"`
	Foundation   bool   `json:"foundation"`
	NodeType     string `json:"node_type"`
	Activations  int64  `json:"activations"`
	ExplorerURL  string `json:"explorer_url"`
}

// LeaderboardPage is one page of ranked validators
type LeaderboardPage struct {
	Period     Period            `json:"period"`
	Order      string            `json:"order"` // "desc" leaderboard, "asc" loserboard
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	Total      int               `json:"total"`
	TotalPages int               `json:"total_pages"`
	Validators []RankedValidator `json:"validators"`
	Stale      bool              `json:"stale"`
}

// AdminValidator is a validator as seen by the admin API
type AdminValidator struct {
	PublicKey  string `json:"public_key"`
	Alias      string `json:"alias"`
	Avatar     string `json:"avatar"`
	IP         string `json:"ip"`
	Foundation bool   `json:"foundation"`
}

// AllowedAvatars are the avatar files the frontend ships
var AllowedAvatars = []string{
	"default-avatar.png",
	"foundation_validator.png",
	"avatar1.png",
	"avatar2.png",
	"avatar3.png",
}

func IsAllowedAvatar(name string) bool {
	for _, a := range AllowedAvatars {
		if a == name {
			return true
		}
	}
	return false
}

// Credentials are admin credentials supplied by the caller and passed through
type Credentials struct {
	Username string
	Password string
}

func (c Credentials) Empty() bool {
	return c.Username == "" || c.Password == ""
}
