package dice

import (
	"fmt"

	"go.uber.org/multierr"
)

// Config holds the interpreter bounds. It is loaded once by the caller and
// passed in by value; nothing in this package mutates it or reads ambient
// state.
type Config struct {
	// MaxDiceCount caps the declared die count of every variant.
	MaxDiceCount int64 `json:"max_dice_count" env:"DICE_MAX_COUNT"`
	// MaxOutputItems is the declared count at which itemized brackets are
	// replaced by a placeholder.
	MaxOutputItems int64 `json:"max_output_items" env:"DICE_OUTPUT_ITEMS"`
	// MaxOutputLength is the trace length above which the whole detail is
	// replaced by a placeholder.
	MaxOutputLength int `json:"max_output_length" env:"DICE_OUTPUT_LEN"`
	// MaxExponentDigits is the magnitude (as a power of ten) at which
	// numbers switch to scientific notation. Zero or negative disables the
	// switch.
	MaxExponentDigits int `json:"max_output_exponent_digits" env:"DICE_OUTPUT_DIGITS"`
}

// DefaultConfig returns the standard interpreter bounds.
func DefaultConfig() Config {
	return Config{
		MaxDiceCount:      100,
		MaxOutputItems:    50,
		MaxOutputLength:   200,
		MaxExponentDigits: 9,
	}
}

// Validate reports every bound that cannot be enforced as configured.
func (c Config) Validate() error {
	var errs error
	if c.MaxDiceCount < 1 {
		errs = multierr.Append(errs, fmt.Errorf("max dice count must be at least 1, got %d", c.MaxDiceCount))
	}
	if c.MaxOutputItems < 1 {
		errs = multierr.Append(errs, fmt.Errorf("max output items must be at least 1, got %d", c.MaxOutputItems))
	}
	if c.MaxOutputLength < 1 {
		errs = multierr.Append(errs, fmt.Errorf("max output length must be at least 1, got %d", c.MaxOutputLength))
	}
	return errs
}
