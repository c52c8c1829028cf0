package cmd

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbsmedya/idseek/internal/logger"
	"github.com/dbsmedya/idseek/internal/timecodec"
)

func TestAlignCommandStructure(t *testing.T) {
	assert.Equal(t, "align <timestamp> [table...]", alignCmd.Use)
	assert.NotNil(t, alignCmd.RunE)
	assert.NotNil(t, alignCmd.Flags().Lookup("all"))
}

func TestAlignAndPrint(t *testing.T) {
	resetFlags(t)
	policy, gapStrategy = "", ""
	cfg := testConfig()

	s := eventsStore()
	s.PutSeries("login_log", 1, day.Unix(), day.Add(20*time.Hour).Unix())

	var out bytes.Buffer
	err := alignAndPrint(context.Background(), &out, cfg, s, logger.NewNop(),
		day.Add(3*time.Hour), []string{"late", "login_log", "events", "empty_table"})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "TABLE"))

	// Both configured names resolve to device_events; the first request wins.
	assert.True(t, strings.HasPrefix(lines[1], "device_events"))
	assert.Contains(t, lines[1], "rightmost")
	assert.Contains(t, lines[1], "1005")

	assert.True(t, strings.HasPrefix(lines[2], "login_log"))
	assert.Contains(t, lines[2], " 2 ")

	assert.True(t, strings.HasPrefix(lines[3], "empty_table"))
	assert.Contains(t, lines[3], "none")
	assert.Contains(t, lines[3], "table is empty")

	// Columns line up.
	col := strings.Index(lines[0], "POLICY")
	for _, line := range lines[1:] {
		assert.Equal(t, "  ", line[col-2:col], line)
	}
	assert.Equal(t, strings.Index(lines[0], "ID"), strings.Index(lines[1], "1005"))
}

func TestAlignAndPrint_Failure(t *testing.T) {
	resetFlags(t)
	policy, gapStrategy = "", ""
	cfg := testConfig()

	s := eventsStore()
	s.Fail("bounds", nil)

	var out bytes.Buffer
	err := alignAndPrint(context.Background(), &out, cfg, s, logger.NewNop(), day, []string{"events"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 1 table(s) failed")
	assert.Contains(t, out.String(), "error")
	assert.Contains(t, out.String(), "injected failure")
}

func TestRunAlign_InvalidTimestampBeforeConnect(t *testing.T) {
	resetFlags(t)
	cfgFile = unreachableConfig(t)
	policy, gapStrategy, timezone = "", "", ""

	start := time.Now()
	err := runAlign(alignCmd, []string{"yesterday", "events", "logins"})
	require.Error(t, err)
	assert.ErrorIs(t, err, timecodec.ErrInvalidTimestamp)
	assert.Less(t, time.Since(start), time.Second)
}
