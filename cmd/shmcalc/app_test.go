package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shmboard/models"
)

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("CONFIG_FILE", "testdata-does-not-exist.json")
	var buf bytes.Buffer
	app := initApp()
	app.out = &buf
	err := app.cliCmd.Run(context.Background(), append([]string{"shmcalc"}, args...))
	return buf.String(), err
}

func TestEstimateOffline(t *testing.T) {
	out, err := runApp(t, "estimate", "--offline",
		"--servers", "2", "--running-currency", "SHM", "--node-currency", "shm",
		"--probability", "0.5", "--reward", "40")
	require.NoError(t, err)

	assert.Contains(t, out, "offline")
	assert.Contains(t, out, "50.0% per day")
	assert.Regexp(t, `Daily reward:\s+40\.00 SHM`, out)
	assert.Regexp(t, `Weekly reward:\s+280\.00 SHM`, out)
	assert.Regexp(t, `Total investment:\s+4800\.00 SHM`, out)
	// 14600 SHM a year on 4800 staked
	assert.Regexp(t, `APY:\s+304\.17%`, out)
}

func TestEstimateOfflineFiatWithoutPrice(t *testing.T) {
	out, err := runApp(t, "estimate", "--offline", "--running-cost", "10")
	require.NoError(t, err)
	assert.Contains(t, out, "warning: running cost: no USD spot price")
}

func TestEstimateRejectsUnknownCurrency(t *testing.T) {
	_, err := runApp(t, "estimate", "--offline", "--node-currency", "GBP")
	assert.ErrorContains(t, err, "unknown currency")
}

func TestLeaderboardCommand(t *testing.T) {
	validators := []models.Validator{
		{Address: "0xaaaaaaaaaaaaaaaa", Alias: "busy", WeeklyCount: 9},
		{Address: "0xbbbbbbbbbbbbbbbb", Alias: "idle", WeeklyCount: 1},
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "weekly", r.URL.Query().Get("period"))
		_ = json.NewEncoder(w).Encode(validators)
	}))
	defer srv.Close()

	out, err := runApp(t, "--leaderboard-url", srv.URL, "leaderboard", "--limit", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Leaderboard (weekly) page 1/2, 2 validators")
	assert.Contains(t, out, "busy")
	assert.NotContains(t, out, "idle")

	out, err = runApp(t, "--leaderboard-url", srv.URL, "leaderboard", "--limit", "1", "--loser")
	require.NoError(t, err)
	assert.Contains(t, out, "Loserboard")
	assert.Contains(t, out, "idle")
}

func TestAdminListCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "admin" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"bad credentials"}`))
			return
		}
		_ = json.NewEncoder(w).Encode([]models.AdminValidator{
			{PublicKey: "abcdef1234567890", Avatar: "avatar1.png", IP: "1.2.3.4"},
		})
	}))
	defer srv.Close()

	out, err := runApp(t, "--leaderboard-url", srv.URL, "admin", "list", "--user", "admin", "--password", "secret")
	require.NoError(t, err)
	assert.Contains(t, out, "abcde…67890")
	assert.Contains(t, out, "Unknown")

	_, err = runApp(t, "--leaderboard-url", srv.URL, "admin", "list", "--user", "admin", "--password", "wrong")
	assert.ErrorContains(t, err, "unauthorized")
}

func TestCacheCheckUnreachable(t *testing.T) {
	_, err := runApp(t, "cache", "check", "--address", "127.0.0.1:1")
	assert.ErrorContains(t, err, "unreachable")
}
