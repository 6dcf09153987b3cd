package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Environment overrides.
const (
	EnvPort          = "STUDYLEAVE_PORT"
	EnvDataDir       = "STUDYLEAVE_DATA_DIR"
	EnvDBDriver      = "STUDYLEAVE_DB_DRIVER"
	EnvDBDSN         = "STUDYLEAVE_DB_DSN"
	EnvDatabaseURL   = "DATABASE_URL"
	EnvDueWindowDays = "STUDYLEAVE_DUE_WINDOW_DAYS"
)

// DatabaseFile is the SQLite file name inside the data directory.
const DatabaseFile = "studyleave.db"

// AppConfig is the application configuration read from config.toml.
type AppConfig struct {
	Server   ServerConfig   `toml:"server"`
	Data     DataConfig     `toml:"data"`
	Database DatabaseConfig `toml:"database"`
	Import   ImportConfig   `toml:"import"`
	Report   ReportConfig   `toml:"report"`
}

type ServerConfig struct {
	Port        int  `toml:"port"`
	DevMode     bool `toml:"dev_mode"`
	OpenBrowser bool `toml:"open_browser"`
}

type DataConfig struct {
	DataDir string `toml:"data_dir"`
}

// DatabaseConfig selects the store. An empty DSN with sqlite3 means
// <data_dir>/studyleave.db.
type DatabaseConfig struct {
	Driver string `toml:"driver"`
	DSN    string `toml:"dsn"`
}

// ImportConfig bounds spreadsheet imports.
type ImportConfig struct {
	HeaderScanRows       int   `toml:"header_scan_rows"`
	DataStartScanRows    int   `toml:"data_start_scan_rows"`
	MaxSkippedRows       int   `toml:"max_skipped_rows"`
	MaxDuplicateExamples int   `toml:"max_duplicate_examples"`
	MaxUploadMB          int64 `toml:"max_upload_mb"`
}

type ReportConfig struct {
	DueWindowDays int `toml:"due_window_days"`
}

// LoadConfigInfo describes where the configuration came from.
type LoadConfigInfo struct {
	Path          string // empty when defaults were used
	PortSpecified bool
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:        8080,
			DevMode:     false,
			OpenBrowser: false,
		},
		Data: DataConfig{
			DataDir: "data",
		},
		Database: DatabaseConfig{
			Driver: "sqlite3",
		},
		Import: ImportConfig{
			HeaderScanRows:       30,
			DataStartScanRows:    40,
			MaxSkippedRows:       200,
			MaxDuplicateExamples: 20,
			MaxUploadMB:          20,
		},
		Report: ReportConfig{
			DueWindowDays: 90,
		},
	}
}

func isPortSpecifiedInToml(data []byte) bool {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return false
	}

	serverAny, ok := raw["server"]
	if !ok {
		return false
	}

	serverMap, ok := serverAny.(map[string]any)
	if !ok {
		return false
	}

	_, ok = serverMap["port"]
	return ok
}

// GetExeDir returns the directory of the running executable.
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

func exeDirOrDot() string {
	exeDir, err := GetExeDir()
	if err != nil || exeDir == "" {
		return "."
	}
	return exeDir
}

// LoadConfigWithInfo loads .env files and config.toml next to the executable.
func LoadConfigWithInfo() (*AppConfig, LoadConfigInfo, error) {
	exeDir := exeDirOrDot()
	LoadDotEnv(exeDir, ".")
	return LoadFile(filepath.Join(exeDir, "config.toml"))
}

// LoadDotEnv loads .env.local then .env from each directory. Variables that
// are already set are never overwritten.
func LoadDotEnv(dirs ...string) {
	for _, dir := range dirs {
		for _, name := range []string{".env.local", ".env"} {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err != nil {
				continue
			}
			_ = godotenv.Load(path)
		}
	}
}

// LoadFile reads one TOML file over the defaults and applies environment
// overrides. A missing file is not an error.
func LoadFile(configPath string) (*AppConfig, LoadConfigInfo, error) {
	info := LoadConfigInfo{}
	config := DefaultConfig()

	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		info.Path = configPath
		info.PortSpecified = isPortSpecifiedInToml(data)
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, info, fmt.Errorf("failed to parse %s: %w", configPath, err)
		}
	case os.IsNotExist(err):
	default:
		return nil, info, err
	}

	if err := applyEnv(config, &info); err != nil {
		return nil, info, err
	}
	return config, info, nil
}

func applyEnv(config *AppConfig, info *LoadConfigInfo) error {
	if v := os.Getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvPort, err)
		}
		config.Server.Port = port
		info.PortSpecified = true
	}
	if v := os.Getenv(EnvDataDir); v != "" {
		config.Data.DataDir = v
	}
	if v := os.Getenv(EnvDBDriver); v != "" {
		config.Database.Driver = v
	}
	if v := os.Getenv(EnvDBDSN); v != "" {
		config.Database.DSN = v
	}
	if v := os.Getenv(EnvDatabaseURL); v != "" {
		config.Database.Driver = "postgres"
		config.Database.DSN = v
	}
	if v := os.Getenv(EnvDueWindowDays); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvDueWindowDays, err)
		}
		config.Report.DueWindowDays = days
	}
	return nil
}

// LoadConfig loads config.toml from the executable directory.
func LoadConfig() (*AppConfig, error) {
	config, _, err := LoadConfigWithInfo()
	return config, err
}

// SaveConfig writes config.toml next to the executable.
func SaveConfig(config *AppConfig) error {
	configPath := filepath.Join(exeDirOrDot(), "config.toml")

	data, err := toml.Marshal(config)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0644)
}

// ResolveDataDir returns the absolute data directory; relative paths are
// taken from the executable directory.
func ResolveDataDir(config *AppConfig) string {
	if filepath.IsAbs(config.Data.DataDir) {
		return config.Data.DataDir
	}
	return filepath.Join(exeDirOrDot(), config.Data.DataDir)
}

// EnsureDataDir creates the data directory and its uploads, exports and
// backups subdirectories.
func EnsureDataDir(config *AppConfig) (string, error) {
	dataDir := ResolveDataDir(config)

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", err
	}

	subdirs := []string{"uploads", "exports", "backups"}
	for _, subdir := range subdirs {
		path := filepath.Join(dataDir, subdir)
		if err := os.MkdirAll(path, 0755); err != nil {
			return "", err
		}
	}

	return dataDir, nil
}

// GetDataPath joins a subdirectory and file name onto the data directory.
func GetDataPath(config *AppConfig, subdir, filename string) string {
	return filepath.Join(ResolveDataDir(config), subdir, filename)
}

// DatabaseTarget returns the driver and DSN the store should open.
func DatabaseTarget(config *AppConfig) (driver, dsn string) {
	driver = config.Database.Driver
	if driver == "" {
		driver = "sqlite3"
	}
	dsn = config.Database.DSN
	if driver == "sqlite3" && dsn == "" {
		dsn = GetDataPath(config, "", DatabaseFile)
	}
	return driver, dsn
}
