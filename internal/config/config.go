package config

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Veraticus/vaultswipe/internal/common"
	"github.com/Veraticus/vaultswipe/internal/ledger"
	"github.com/Veraticus/vaultswipe/internal/model"
	"github.com/spf13/viper"
)

// Storage backends.
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
)

// Config is the resolved application configuration.
type Config struct {
	Logging LoggingConfig
	Storage StorageConfig
	Ledger  ledger.Config
}

// LoggingConfig selects the slog level and handler.
type LoggingConfig struct {
	Level  string
	Format string
}

// StorageConfig selects where the ledger is saved.
type StorageConfig struct {
	Backend        string
	Path           string
	Dir            string
	Key            string
	AutoCheckpoint bool
}

var colorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// SetDefaults registers the default value of every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("storage.backend", BackendSQLite)
	v.SetDefault("storage.path", "$HOME/.local/share/vaultswipe/vaultswipe.db")
	v.SetDefault("storage.dir", "$HOME/.local/share/vaultswipe/state")
	v.SetDefault("storage.key", "vaultswipe_mvp1")
	v.SetDefault("storage.auto_checkpoint", true)

	v.SetDefault("ledger.palette", ledger.DefaultPalette)
	v.SetDefault("ledger.default_due_day", model.MinDueDay)
	v.SetDefault("ledger.due_soon_days", ledger.DefaultDueSoonDays)
	v.SetDefault("ledger.transfer_mode", string(model.TransferStrict))
	v.SetDefault("ledger.aggregation", string(model.PendingSum))
}

// Load reads and validates the configuration held by v. Every problem is
// reported in one error.
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		Logging: LoggingConfig{
			Level:  strings.ToLower(v.GetString("logging.level")),
			Format: strings.ToLower(v.GetString("logging.format")),
		},
		Storage: StorageConfig{
			Backend:        strings.ToLower(v.GetString("storage.backend")),
			Key:            v.GetString("storage.key"),
			AutoCheckpoint: v.GetBool("storage.auto_checkpoint"),
		},
		Ledger: ledger.Config{
			Palette:       v.GetStringSlice("ledger.palette"),
			DefaultDueDay: v.GetInt("ledger.default_due_day"),
			DueSoonDays:   v.GetInt("ledger.due_soon_days"),
			TransferMode:  model.TransferMode(strings.ToLower(v.GetString("ledger.transfer_mode"))),
			Aggregation:   model.AggregationMode(strings.ToLower(v.GetString("ledger.aggregation"))),
		},
	}

	// Only the active backend's location has to resolve.
	var errs []string
	locations := []struct {
		dst     *string
		key     string
		backend string
	}{
		{dst: &cfg.Storage.Path, key: "storage.path", backend: BackendSQLite},
		{dst: &cfg.Storage.Dir, key: "storage.dir", backend: BackendFile},
	}
	for _, l := range locations {
		raw := v.GetString(l.key)
		loc, err := storageLocation(l.key, raw)
		if err != nil {
			if cfg.Storage.Backend == l.backend {
				errs = append(errs, err.Error())
			}
			loc = raw
		}
		*l.dst = loc
	}

	if err := invalid(append(errs, cfg.problems()...)); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func invalid(errs []string) error {
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w:\n  - %s", common.ErrInvalidConfig, strings.Join(errs, "\n  - "))
}

// problems checks every setting and describes each one that is invalid.
func (c Config) problems() []string {
	var errs []string

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("invalid log level '%s': must be one of debug, info, warn, error", c.Logging.Level))
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		errs = append(errs, fmt.Sprintf("invalid log format '%s': must be console or json", c.Logging.Format))
	}

	switch c.Storage.Backend {
	case BackendSQLite:
		if strings.TrimSpace(c.Storage.Path) == "" {
			errs = append(errs, "storage.path cannot be empty when using the sqlite backend")
		}
	case BackendFile:
		if strings.TrimSpace(c.Storage.Dir) == "" {
			errs = append(errs, "storage.dir cannot be empty when using the file backend")
		}
	default:
		errs = append(errs, fmt.Sprintf("invalid storage backend '%s': must be sqlite or file", c.Storage.Backend))
	}
	if strings.TrimSpace(c.Storage.Key) == "" {
		errs = append(errs, "storage.key cannot be empty")
	} else if strings.ContainsAny(c.Storage.Key, `/\`) {
		errs = append(errs, fmt.Sprintf("invalid storage key '%s': cannot contain path separators", c.Storage.Key))
	}

	if len(c.Ledger.Palette) == 0 {
		errs = append(errs, "ledger.palette must list at least one color")
	}
	for _, color := range c.Ledger.Palette {
		if !colorPattern.MatchString(color) {
			errs = append(errs, fmt.Sprintf("invalid palette color '%s': must be #RRGGBB", color))
		}
	}
	if c.Ledger.DefaultDueDay < model.MinDueDay || c.Ledger.DefaultDueDay > model.MaxDueDay {
		errs = append(errs, fmt.Sprintf("invalid default due day %d: must be between 1 and 31", c.Ledger.DefaultDueDay))
	}
	if c.Ledger.DueSoonDays < 0 || c.Ledger.DueSoonDays > model.MaxDueDay {
		errs = append(errs, fmt.Sprintf("invalid due soon window %d: must be between 0 and 31", c.Ledger.DueSoonDays))
	}
	switch c.Ledger.TransferMode {
	case model.TransferStrict, model.TransferUnchecked:
	default:
		errs = append(errs, fmt.Sprintf("invalid transfer mode '%s': must be strict or unchecked", c.Ledger.TransferMode))
	}
	switch c.Ledger.Aggregation {
	case model.PendingSum, model.StatedBalances, ledger.AggregationAuto:
	default:
		errs = append(errs, fmt.Sprintf("invalid aggregation '%s': must be pending, stated or auto", c.Ledger.Aggregation))
	}

	return errs
}
