package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Veraticus/bhada/internal/billing"
	"github.com/Veraticus/bhada/internal/common"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("BHADA_TEST_DIR", "/srv/ledgers")

	assert.Equal(t, "", ExpandPath(""))
	assert.Equal(t, home, ExpandPath("~"))
	assert.Equal(t, filepath.Join(home, "books", "a.xlsx"), ExpandPath("~/books/a.xlsx"))
	assert.Equal(t, "/srv/ledgers/a.xlsx", ExpandPath("$BHADA_TEST_DIR/a.xlsx"))
	assert.Equal(t, "relative.xlsx", ExpandPath("relative.xlsx"))
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg-data")

	v := viper.New()
	SetDefaults(v)

	s, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/xdg-data/bhada/bhada.db", s.DatabasePath)
	assert.Equal(t, DefaultControlWorkbook, s.ControlWorkbook)
	assert.Equal(t, DefaultLedgerWorkbook, s.LedgerWorkbook)
	assert.Equal(t, billing.DefaultWorkers, s.Workers)
	assert.Equal(t, "info", s.LogLevel)
}

func TestLoad_Overrides(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set(KeyDatabasePath, ":memory:")
	v.Set(KeyWorkers, 8)

	s, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, ":memory:", s.DatabasePath)
	assert.Equal(t, 8, s.Workers)

	v.Set(KeyWorkers, 0)
	_, err = Load(v)
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
}

func TestLoadSheetsConfig(t *testing.T) {
	for _, k := range []string{
		"GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH", "GOOGLE_SHEETS_CLIENT_ID", "GOOGLE_SHEETS_CLIENT_SECRET",
		"GOOGLE_SHEETS_REFRESH_TOKEN", "GOOGLE_SHEETS_SPREADSHEET_ID",
	} {
		t.Setenv(k, "")
	}

	v := viper.New()
	_, err := LoadSheetsConfig(v)
	assert.ErrorIs(t, err, common.ErrMissingConfig)

	v.Set("sheets.client_id", "id")
	v.Set("sheets.client_secret", "secret")
	t.Setenv("GOOGLE_SHEETS_REFRESH_TOKEN", "refresh")
	t.Setenv("GOOGLE_SHEETS_SPREADSHEET_ID", "sheet-123")

	cfg, err := LoadSheetsConfig(v)
	require.NoError(t, err)
	assert.Equal(t, "id", cfg.ClientID)
	assert.Equal(t, "refresh", cfg.RefreshToken)
	assert.Equal(t, "sheet-123", cfg.SpreadsheetID)
}
