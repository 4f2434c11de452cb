package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/dcsystem/dcs-backend/internal/models"
	"github.com/dcsystem/dcs-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConsoleHandler_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewConsoleHandler(&buf, "json", "info"))

	logger.Debug("hidden")
	logger.Info("role assigned", "role_id", 3)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "role assigned", line["msg"])
	assert.EqualValues(t, 3, line["role_id"])
}

func TestNewConsoleHandler_Text(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewConsoleHandler(&buf, "text", "debug"))

	logger.Debug("visible")
	assert.Contains(t, buf.String(), "visible")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("nonsense"))
}

func TestDBHandler_PersistsErrors(t *testing.T) {
	db := testutil.NewDB(t)
	h := NewDBHandler(db, time.Hour)
	defer h.Stop()

	var buf bytes.Buffer
	logger := slog.New(NewMultiHandler(NewConsoleHandler(&buf, "json", "info"), h)).
		With("request_id", "req-1")

	logger.Info("not persisted")
	logger.Error("delete failed", "error", "constraint", "path", "/api/v1/role/1", "role_id", 1)
	h.Flush()

	var logs []models.SystemLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, "delete failed", logs[0].Message)
	assert.Equal(t, "req-1", logs[0].RequestID)
	assert.Equal(t, "constraint", logs[0].Error)
	assert.Equal(t, "/api/v1/role/1", logs[0].Path)
	assert.Contains(t, string(logs[0].Extra), "role_id")

	assert.Contains(t, buf.String(), "not persisted")
}

func TestPurgeOlderThan(t *testing.T) {
	db := testutil.NewDB(t)
	now := time.Now()
	require.NoError(t, db.Create(&[]models.SystemLog{
		{Timestamp: now.AddDate(0, 0, -40), Level: "ERROR", Message: "old"},
		{Timestamp: now, Level: "ERROR", Message: "new"},
	}).Error)

	deleted, err := PurgeOlderThan(db, now.AddDate(0, 0, -30))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}
