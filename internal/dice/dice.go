// Package dice parses and evaluates tabletop dice notation. Five grammars are
// supported: standard pools with keep-highest/keep-lowest ("2D6", "4D20K3"),
// fudge pools ("4DF"), percentile bonus/punish rerolls ("B2", "P"), exploding
// success pools ("10A8K6M10") and double-cross pools ("6C8M10"). A notation
// string parses into an immutable Spec; evaluating a Spec against a caller
// supplied random source yields a numeric result plus a human-readable trace
// of the draws behind it. All bounds are checked at parse time, before any
// randomness is consumed.
package dice

import (
	"strconv"
	"strings"
)

// Source supplies the randomness for an evaluation. Implementations must be
// uniform and independent across calls; a deterministic implementation makes
// evaluation fully replayable.
type Source interface {
	// NextInt returns a uniform draw from [low, high], inclusive both ends.
	NextInt(low, high int64) int64
	// Choose returns one element of options, uniformly.
	Choose(options []string) string
}

// Spec is a validated, immutable roll specification. Evaluating the same Spec
// repeatedly draws fresh randomness each time; the Spec itself never changes.
type Spec interface {
	// Code returns the normalized notation echoed at the head of traces.
	Code() string
	// Kind identifies the variant grammar.
	Kind() Kind
	// Eval draws from src and produces one outcome. Draws happen strictly in
	// trace order, so a replayable source yields a byte-identical outcome.
	Eval(src Source) Outcome
}

// Outcome is the product of one evaluation.
type Outcome struct {
	Result int64  `json:"result"`
	Detail string `json:"detail"`
}

// Kind identifies one of the supported grammars.
type Kind string

const (
	KindStandard    Kind = "standard"
	KindFudge       Kind = "fudge"
	KindBonusPunish Kind = "bonus_punish"
	KindSuccessPool Kind = "success_pool"
	KindDoubleCross Kind = "double_cross"
)

// VariantInfo describes one supported grammar for discovery surfaces.
type VariantInfo struct {
	Kind    Kind   `json:"kind"`
	Name    string `json:"name"`
	Example string `json:"example"`
}

// Variants returns the closed set of supported grammars.
func Variants() []VariantInfo {
	return []VariantInfo{
		{Kind: KindStandard, Name: "Standard", Example: "2D6K1"},
		{Kind: KindFudge, Name: "Fudge", Example: "4DF"},
		{Kind: KindBonusPunish, Name: "Bonus/Punish", Example: "B2"},
		{Kind: KindSuccessPool, Name: "Success Pool", Example: "10A8K6M10"},
		{Kind: KindDoubleCross, Name: "Double Cross", Example: "6C8M10"},
	}
}

// Parse validates notation and returns the matching roll spec. Recognition is
// case-insensitive and routes on token shape in a fixed order; the returned
// error is a *SyntaxError or *ValueError. No randomness is consumed here.
func Parse(code string, cfg Config) (Spec, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	switch {
	case strings.Contains(code, "A"):
		return parseSuccessPool(code, cfg)
	case strings.Contains(code, "C"):
		return parseDoubleCross(code, cfg)
	case strings.ContainsAny(code, "BP"):
		return parseBonusPunish(code, cfg)
	case strings.Contains(code, "F"):
		return parseFudge(code, cfg)
	case strings.ContainsAny(code, "D%"):
		return parseStandard(code, cfg)
	}
	return nil, &SyntaxError{Key: KeyInvalid}
}

// parseCount resolves an optional leading count against its default and the
// configured ceiling. An all-digit literal too large for int64 is over the
// ceiling by definition.
func parseCount(raw string, def int64, cfg Config) (int64, error) {
	n := def
	if raw != "" {
		var err error
		n, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return 0, &ValueError{Key: KeyCountOutOfRange, Value: raw, Max: cfg.MaxDiceCount}
		}
	}
	if n < 1 || n > cfg.MaxDiceCount {
		return 0, &ValueError{Key: KeyCountOutOfRange, Value: strconv.FormatInt(n, 10), Max: cfg.MaxDiceCount}
	}
	return n, nil
}

// parseField converts one grammar-bound numeric group, reporting overflow
// under the field's invalid key. Empty input resolves to the default.
func parseField(raw string, def int64, invalidKey string) (int64, error) {
	if raw == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, &ValueError{Key: invalidKey, Value: raw}
	}
	return n, nil
}

// checkSides enforces the shared sides invariants: below one is out of range
// and exactly one is its own error, never silently normalized.
func checkSides(sides int64) error {
	if sides < 1 {
		return &ValueError{Key: KeySidesOutOfRange, Value: strconv.FormatInt(sides, 10)}
	}
	if sides == 1 {
		return &ValueError{Key: KeySidesOne}
	}
	return nil
}
