package ledger

import (
	"time"

	"github.com/Veraticus/vaultswipe/internal/model"
	"github.com/google/uuid"
)

// AggregationAuto picks the aggregation mode from the cards themselves: stated
// balances when any card has one, pending sums otherwise.
const AggregationAuto model.AggregationMode = "auto"

// DefaultPalette holds the card colors used when none is given.
var DefaultPalette = []string{"#0F766E", "#1D4ED8", "#9333EA", "#B45309", "#065F46"}

// Config controls engine policy.
type Config struct {
	Palette       []string
	TransferMode  model.TransferMode
	Aggregation   model.AggregationMode
	DefaultDueDay int
	DueSoonDays   int
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	palette := make([]string, len(DefaultPalette))
	copy(palette, DefaultPalette)
	return Config{
		Palette:       palette,
		TransferMode:  model.TransferStrict,
		Aggregation:   model.PendingSum,
		DefaultDueDay: model.MinDueDay,
		DueSoonDays:   DefaultDueSoonDays,
	}
}

// normalize fills zero values with defaults.
func (c Config) normalize() Config {
	d := DefaultConfig()
	if len(c.Palette) == 0 {
		c.Palette = d.Palette
	}
	if c.TransferMode == "" {
		c.TransferMode = d.TransferMode
	}
	if c.Aggregation == "" {
		c.Aggregation = d.Aggregation
	}
	c.DefaultDueDay = SanitizeDueDay(float64(c.DefaultDueDay))
	if c.DueSoonDays < 0 {
		c.DueSoonDays = d.DueSoonDays
	}
	return c
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the source of "today" for commands that default a date.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithIDGenerator sets the ID generator. It receives "c" for cards and "t"
// for transactions.
func WithIDGenerator(gen func(prefix string) string) Option {
	return func(e *Engine) {
		if gen != nil {
			e.newID = gen
		}
	}
}

// WithColorPicker sets how a palette index is chosen for new cards. It
// receives the palette length and must return an index below it.
func WithColorPicker(pick func(n int) int) Option {
	return func(e *Engine) {
		if pick != nil {
			e.pickIndex = pick
		}
	}
}

func defaultID(prefix string) string {
	return prefix + "_" + uuid.NewString()
}
