package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces every environment variable read by the service.
const EnvPrefix = "JDLM"

const (
	defaultWikidataURL  = "https://www.wikidata.org/w/api.php"
	defaultPhotoBaseURL = "https://commons.wikimedia.org/wiki/Special:FilePath/"
)

type Config struct {
	// http server
	Bind           string
	Port           int
	AllowedOrigins []string

	// storage
	DatabaseDriver string // sqlite or postgres
	DatabaseDSN    string

	// sessions
	JWTSecret string
	JWTTTL    time.Duration

	// wikidata proxy
	WikidataURL      string
	WikidataLanguage string
	WikidataTimeout  time.Duration
	WikidataRPS      float64
	RedisURL         string // empty disables the search cache
	SearchCacheTTL   time.Duration
	PhotoBaseURL     string

	// background death sync
	DeathSyncSchedule string // cron spec, empty disables
	DeathSyncWorkers  int

	LogLevel string
	LogJSON  bool
}

// RegisterFlags declares every setting on fs with its default.
func (c *Config) RegisterFlags(fs *pflag.FlagSet) {
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&c.Bind, "bind", "b", "0.0.0.0", "address to bind to (env: JDLM_BIND)")
	fs.IntVarP(&c.Port, "port", "p", 8080, "port to listen on (env: JDLM_PORT)")
	fs.StringSliceVar(&c.AllowedOrigins, "allowed-origins", []string{"http://localhost:3000"}, "origins allowed by CORS (env: JDLM_ALLOWED_ORIGINS)")
	fs.StringVar(&c.DatabaseDriver, "database-driver", "sqlite", "sqlite or postgres (env: JDLM_DATABASE_DRIVER)")
	fs.StringVar(&c.DatabaseDSN, "database-dsn", "jeudelamort.db", "database path or connection string (env: JDLM_DATABASE_DSN)")
	fs.StringVar(&c.JWTSecret, "jwt-secret", "", "secret used to sign session tokens (env: JDLM_JWT_SECRET)")
	fs.DurationVar(&c.JWTTTL, "jwt-ttl", 24*time.Hour, "session token lifetime (env: JDLM_JWT_TTL)")
	fs.StringVar(&c.WikidataURL, "wikidata-url", defaultWikidataURL, "wikidata API endpoint (env: JDLM_WIKIDATA_URL)")
	fs.StringVar(&c.WikidataLanguage, "wikidata-language", "fr", "language for wikidata labels (env: JDLM_WIKIDATA_LANGUAGE)")
	fs.DurationVar(&c.WikidataTimeout, "wikidata-timeout", 10*time.Second, "timeout of a single wikidata call (env: JDLM_WIKIDATA_TIMEOUT)")
	fs.Float64Var(&c.WikidataRPS, "wikidata-rps", 20, "maximum wikidata requests per second (env: JDLM_WIKIDATA_RPS)")
	fs.StringVar(&c.RedisURL, "redis-url", "", "redis URL for caching search results (env: JDLM_REDIS_URL)")
	fs.DurationVar(&c.SearchCacheTTL, "search-cache-ttl", 10*time.Minute, "lifetime of cached search results (env: JDLM_SEARCH_CACHE_TTL)")
	fs.StringVar(&c.PhotoBaseURL, "photo-base-url", defaultPhotoBaseURL, "prefix turning a photo reference into a URL (env: JDLM_PHOTO_BASE_URL)")
	fs.StringVar(&c.DeathSyncSchedule, "death-sync-schedule", "@daily", "cron schedule of the death sync, empty to disable (env: JDLM_DEATH_SYNC_SCHEDULE)")
	fs.IntVar(&c.DeathSyncWorkers, "death-sync-workers", 4, "concurrent wikidata lookups during a death sync (env: JDLM_DEATH_SYNC_WORKERS)")
	fs.StringVar(&c.LogLevel, "log-level", "info", "logrus level (env: JDLM_LOG_LEVEL)")
	fs.BoolVar(&c.LogJSON, "log-json", false, "log as JSON (env: JDLM_LOG_JSON)")
}

// BindEnv lets JDLM_* environment variables fill in any flag not given on the
// command line.
func BindEnv(fs *pflag.FlagSet) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})
}

func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.Port)
	}
	switch c.DatabaseDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported database driver %q", c.DatabaseDriver)
	}
	if c.DatabaseDSN == "" {
		return errors.New("--database-dsn is required")
	}
	if c.JWTSecret == "" {
		return errors.New("--jwt-secret is required")
	}
	if c.JWTTTL <= 0 {
		return fmt.Errorf("invalid jwt ttl: %s", c.JWTTTL)
	}
	if c.WikidataRPS <= 0 {
		return fmt.Errorf("invalid wikidata rate: %v", c.WikidataRPS)
	}
	if c.DeathSyncWorkers < 1 {
		return fmt.Errorf("invalid death sync worker count: %d", c.DeathSyncWorkers)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Bind, c.Port)
}

// NewLogger builds the process logger from the logging settings.
func (c *Config) NewLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)
	if level, err := logrus.ParseLevel(c.LogLevel); err == nil {
		log.SetLevel(level)
	}
	if c.LogJSON {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return log
}
