package dice

import (
	"fmt"
	"regexp"
	"strings"
)

var bonusPunishPattern = regexp.MustCompile(`^([BP])(\d*)$`)

// BonusPunish is the percentile tens-digit reroll: one D100 sets the units
// digit, then count extra tens digits are drawn and each candidate is the new
// tens digit grafted onto the held units digit (00 reads as 100). Bonus (P)
// takes the best candidate, punish (B) the worst; the base roll itself always
// competes.
type BonusPunish struct {
	code  string
	count int64
	bonus bool // P takes the max, B the min
	cfg   Config
}

func parseBonusPunish(code string, cfg Config) (*BonusPunish, error) {
	m := bonusPunishPattern.FindStringSubmatch(code)
	if m == nil {
		return nil, &SyntaxError{Key: KeyInvalid}
	}
	count, err := parseCount(m[2], 1, cfg)
	if err != nil {
		return nil, err
	}
	return &BonusPunish{code: code, count: count, bonus: m[1] == "P", cfg: cfg}, nil
}

// Code returns the normalized notation.
func (b *BonusPunish) Code() string { return b.code }

// Kind identifies the variant grammar.
func (b *BonusPunish) Kind() Kind { return KindBonusPunish }

// Eval rolls the base percentile, rerolls its tens digit count times and keeps
// the best or worst candidate.
func (b *BonusPunish) Eval(src Source) Outcome {
	base := src.NextInt(1, 100)
	unit := base % 10

	var sb strings.Builder
	fmt.Fprintf(&sb, "D100=%d, %s", base, b.code)

	digits := make([]int64, b.count)
	for i := range digits {
		digits[i] = src.NextInt(0, 9)
	}

	candidates := make([]int64, 0, b.count+1)
	candidates = append(candidates, base)
	for _, d := range digits {
		c := d*10 + unit
		if c == 0 {
			c = 100
		}
		candidates = append(candidates, c)
	}

	if b.count > 1 {
		if b.count >= b.cfg.MaxOutputItems {
			sb.WriteString("=[" + tooLongItems(b.count) + "]")
		} else {
			sb.WriteString("=[")
			for i, d := range digits {
				if i > 0 {
					sb.WriteString(", ")
				}
				sb.WriteString(formatInt(b.cfg, d, false))
			}
			sb.WriteByte(']')
		}
	} else {
		sb.WriteByte('=')
		sb.WriteString(formatInt(b.cfg, digits[0], true))
	}

	result := candidates[0]
	for _, c := range candidates[1:] {
		if b.bonus && c > result {
			result = c
		}
		if !b.bonus && c < result {
			result = c
		}
	}

	sb.WriteByte('=')
	sb.WriteString(formatInt(b.cfg, result, true))
	return Outcome{Result: result, Detail: clampDetail(b.cfg, sb.String())}
}
