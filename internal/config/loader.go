package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

// Store backends selectable through CLUB_STORE.
const (
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

// Config captures environment driven configuration values for the club portal.
type Config struct {
	HTTPPort       int
	Store          string
	SQLitePath     string
	SessionSecret  string
	SessionTTL     time.Duration
	Location       *time.Location
	RosterCacheTTL time.Duration
	LogLevel       slog.Level
	CookieSecure   bool
	AdminEmail     string
	AdminPassword  string
}

// BootstrapAdmin reports whether an initial administrator should be ensured.
func (c Config) BootstrapAdmin() bool {
	return c.AdminEmail != "" && c.AdminPassword != ""
}

// LoadWithDotEnv reads the given .env files into the process environment and
// then calls Load. Missing files are skipped; variables already set in the
// environment win over the file.
func LoadWithDotEnv(paths ...string) (Config, error) {
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return Config{}, fmt.Errorf("no se pudo leer el archivo %s: %w", path, err)
		}
	}
	return Load()
}

// Load parses configuration values from the current process environment.
//
// Optional fields fall back to defaults. Every missing or invalid variable is
// reported in a single localized error.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:       8080,
		Store:          StoreSQLite,
		SQLitePath:     "data/club.db",
		SessionTTL:     7 * 24 * time.Hour,
		RosterCacheTTL: 30 * time.Second,
		LogLevel:       slog.LevelInfo,
		CookieSecure:   true,
	}

	missing := make([]string, 0, 2)
	invalid := make([]string, 0, 4)

	if portValue := env("CLUB_HTTP_PORT"); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 || port > 65535 {
			invalid = append(invalid, "CLUB_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if store := strings.ToLower(env("CLUB_STORE")); store != "" {
		switch store {
		case StoreSQLite, StoreMemory:
			cfg.Store = store
		default:
			invalid = append(invalid, "CLUB_STORE")
		}
	}

	if path := env("CLUB_SQLITE_PATH"); path != "" {
		cfg.SQLitePath = path
	}

	if secret := env("CLUB_SESSION_SECRET"); secret == "" {
		missing = append(missing, "CLUB_SESSION_SECRET")
	} else {
		cfg.SessionSecret = secret
	}

	if ttlValue := env("CLUB_SESSION_TTL"); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "CLUB_SESSION_TTL")
		} else {
			cfg.SessionTTL = ttl
		}
	}

	zone := env("CLUB_TIMEZONE")
	if zone == "" {
		zone = "America/Santiago"
	}
	if loc, err := time.LoadLocation(zone); err != nil {
		invalid = append(invalid, "CLUB_TIMEZONE")
	} else {
		cfg.Location = loc
	}

	if ttlValue := env("CLUB_ROSTER_CACHE_TTL"); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "CLUB_ROSTER_CACHE_TTL")
		} else {
			cfg.RosterCacheTTL = ttl
		}
	}

	if levelValue := env("CLUB_LOG_LEVEL"); levelValue != "" {
		var level slog.Level
		if err := level.UnmarshalText([]byte(levelValue)); err != nil {
			invalid = append(invalid, "CLUB_LOG_LEVEL")
		} else {
			cfg.LogLevel = level
		}
	}

	if secureValue := env("CLUB_COOKIE_SECURE"); secureValue != "" {
		secure, err := strconv.ParseBool(secureValue)
		if err != nil {
			invalid = append(invalid, "CLUB_COOKIE_SECURE")
		} else {
			cfg.CookieSecure = secure
		}
	}

	cfg.AdminEmail = env("CLUB_ADMIN_EMAIL")
	cfg.AdminPassword = env("CLUB_ADMIN_PASSWORD")
	switch {
	case cfg.AdminEmail != "" && cfg.AdminPassword == "":
		missing = append(missing, "CLUB_ADMIN_PASSWORD")
	case cfg.AdminEmail == "" && cfg.AdminPassword != "":
		missing = append(missing, "CLUB_ADMIN_EMAIL")
	}

	var problems []string
	if len(missing) > 0 {
		problems = append(problems, "faltan variables de entorno obligatorias: "+strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		problems = append(problems, "variables de entorno con valores inválidos: "+strings.Join(invalid, ", "))
	}
	if len(problems) > 0 {
		return Config{}, errors.New(strings.Join(problems, "; "))
	}

	return cfg, nil
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}
