package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Veraticus/bhada/internal/billing"
	"github.com/Veraticus/bhada/internal/common"
	"github.com/spf13/viper"
)

// Configuration keys.
const (
	KeyDatabasePath    = "database.path"
	KeyControlWorkbook = "workbook.control"
	KeyLedgerWorkbook  = "workbook.ledger"
	KeyWorkers         = "billing.workers"
	KeyLogLevel        = "logging.level"
	KeyLogFormat       = "logging.format"
)

// Default workbook names, looked up in the working directory.
const (
	DefaultControlWorkbook = "Control Panel.xlsx"
	DefaultLedgerWorkbook  = "હિસાબ.xlsx"
)

// Settings is the resolved application configuration.
type Settings struct {
	DatabasePath    string
	ControlWorkbook string
	LedgerWorkbook  string
	LogLevel        string
	LogFormat       string
	Workers         int
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyDatabasePath, "")
	v.SetDefault(KeyControlWorkbook, DefaultControlWorkbook)
	v.SetDefault(KeyLedgerWorkbook, DefaultLedgerWorkbook)
	v.SetDefault(KeyWorkers, billing.DefaultWorkers)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")
}

// Load reads Settings from v, expanding paths.
func Load(v *viper.Viper) (Settings, error) {
	s := Settings{
		DatabasePath:    ExpandPath(v.GetString(KeyDatabasePath)),
		ControlWorkbook: ExpandPath(v.GetString(KeyControlWorkbook)),
		LedgerWorkbook:  ExpandPath(v.GetString(KeyLedgerWorkbook)),
		LogLevel:        v.GetString(KeyLogLevel),
		LogFormat:       v.GetString(KeyLogFormat),
		Workers:         v.GetInt(KeyWorkers),
	}

	if s.DatabasePath == "" {
		path, err := DefaultDatabasePath()
		if err != nil {
			return s, err
		}
		s.DatabasePath = path
	}

	if s.Workers < 1 {
		return s, fmt.Errorf("%w: %s must be at least 1, got %d", common.ErrInvalidConfig, KeyWorkers, s.Workers)
	}

	return s, nil
}

// DefaultDatabasePath follows the XDG data directory convention.
func DefaultDatabasePath() (string, error) {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "bhada", "bhada.db"), nil
}

// ConfigDir returns the directory holding config.yaml and saved tokens.
func ConfigDir() (string, error) {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, "bhada"), nil
}
