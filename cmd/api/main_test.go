package main

import (
	"log/slog"
	"net"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"lyceum/internal/platform/config"
)

func testConfig() config.Config {
	return config.Config{
		ServiceName:   "lyceum",
		StorageDriver: config.StorageMemory,
		SessionSecret: "0123456789abcdef0123456789abcdef",
	}
}

func TestRunReportsBootstrapFailure(t *testing.T) {
	logs := &strings.Builder{}
	cfg := testConfig()
	cfg.StorageDriver = "sqlite"

	err := run(cfg, slog.New(slog.NewJSONHandler(logs, nil)))
	require.ErrorContains(t, err, "unknown storage driver")
	require.Contains(t, logs.String(), `"event":"api_bootstrap_failed"`)
}

func TestRunReportsServerFailureAfterClose(t *testing.T) {
	busy, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer busy.Close()

	logs := &strings.Builder{}
	cfg := testConfig()
	cfg.HTTPPort = strconv.Itoa(busy.Addr().(*net.TCPAddr).Port)

	err = run(cfg, slog.New(slog.NewJSONHandler(logs, nil)))
	require.Error(t, err)
	require.Contains(t, logs.String(), `"event":"api_stopped"`)
	require.NotContains(t, logs.String(), `"event":"api_close_failed"`)
}
