package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const EnvPrefix = "LICENZIA"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

// Environment variable names, exported so tests and docs stay in sync.
const (
	EnvAppEnv    = "LICENZIA_APP_ENV"
	EnvLogLevel  = "LICENZIA_LOG_LEVEL"
	EnvLogFile   = "LICENZIA_LOG_FILE"
	EnvDBDSN     = "LICENZIA_DB_DSN"
	EnvDBHost    = "LICENZIA_DB_HOST"
	EnvDBPort    = "LICENZIA_DB_PORT"
	EnvDBUser    = "LICENZIA_DB_USER"
	EnvDBName    = "LICENZIA_DB_NAME"
	EnvInputFile = "LICENZIA_IMPORT_FILE"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App    AppConfig
	DB     DBConfig
	Import ImportConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"LICENZIA_APP_ENV" required:"true"`
	LogLevel     string `envconfig:"LICENZIA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"LICENZIA_LOG_WARN_STACK" default:"false"`
	LogFile      string `envconfig:"LICENZIA_LOG_FILE" default:"license_import.log"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"LICENZIA_DB_DSN"`
	Driver string `envconfig:"LICENZIA_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"LICENZIA_DB_HOST"`
	LegacyPort     int    `envconfig:"LICENZIA_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"LICENZIA_DB_USER"`
	LegacyPassword string `envconfig:"LICENZIA_DB_PASSWORD"`
	LegacyName     string `envconfig:"LICENZIA_DB_NAME"`
	LegacySSLMode  string `envconfig:"LICENZIA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"LICENZIA_DB_MAX_OPEN_CONNS" default:"5"`
	MaxIdleConns    int           `envconfig:"LICENZIA_DB_MAX_IDLE_CONNS" default:"2"`
	ConnMaxLifetime time.Duration `envconfig:"LICENZIA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"LICENZIA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// ImportConfig drives a single import run.
type ImportConfig struct {
	InputFile           string `envconfig:"LICENZIA_IMPORT_FILE" default:"license_inventory.xlsx"`
	SheetName           string `envconfig:"LICENZIA_IMPORT_SHEET"`
	BatchSize           int    `envconfig:"LICENZIA_IMPORT_BATCH_SIZE" default:"500"`
	StoreDuplicatesFile string `envconfig:"LICENZIA_IMPORT_STORE_DUPLICATES_FILE" default:"store_duplicates.txt"`
	FileDuplicatesFile  string `envconfig:"LICENZIA_IMPORT_FILE_DUPLICATES_FILE" default:"file_duplicates.txt"`
	AutoMigrate         bool   `envconfig:"LICENZIA_IMPORT_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
