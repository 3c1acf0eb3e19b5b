package dice

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var standardPattern = regexp.MustCompile(`^(\d*)D(\d+|%)(?:([KQ])(\d*))?$`)

// Standard is the plain NdM pool: N dice of M sides summed, optionally keeping
// only the highest (K) or lowest (Q) adv draws before the sum. "%" is the
// percentile alias for 100 sides.
type Standard struct {
	code  string
	count int64
	sides int64
	adv   int64
	keep  int // 1 keep-highest, -1 keep-lowest, 0 no suffix
	cfg   Config
}

func parseStandard(code string, cfg Config) (*Standard, error) {
	m := standardPattern.FindStringSubmatch(code)
	if m == nil {
		return nil, &SyntaxError{Key: KeyInvalid}
	}
	count, err := parseCount(m[1], 1, cfg)
	if err != nil {
		return nil, err
	}
	var sides int64
	if m[2] == "%" {
		sides = 100
	} else {
		sides, err = parseField(m[2], 0, KeySidesInvalid)
		if err != nil {
			return nil, err
		}
	}
	var adv int64
	keep := 0
	if m[3] != "" {
		// K/Q with no number keeps a single die.
		adv, err = parseField(m[4], 1, KeyAdvInvalid)
		if err != nil {
			return nil, err
		}
		if m[3] == "K" {
			keep = 1
		} else {
			keep = -1
		}
	}
	if err := checkSides(sides); err != nil {
		return nil, err
	}
	if adv > count {
		return nil, &ValueError{Key: KeyAdvOutOfRange, Value: strconv.FormatInt(adv, 10)}
	}
	return &Standard{code: code, count: count, sides: sides, adv: adv, keep: keep, cfg: cfg}, nil
}

// Code returns the normalized notation, with the "%" alias preserved.
func (s *Standard) Code() string { return s.code }

// Kind identifies the variant grammar.
func (s *Standard) Kind() Kind { return KindStandard }

// Eval draws the pool, applies the keep rule and sums what remains.
func (s *Standard) Eval(src Source) Outcome {
	var sb strings.Builder
	sb.WriteString(s.code)

	results := make([]int64, s.count)
	for i := range results {
		results[i] = src.NextInt(1, s.sides)
	}

	kept := results
	if s.adv != 0 {
		keepSet := s.keepSet(results)
		if s.count >= s.cfg.MaxOutputItems {
			sb.WriteString("=[" + tooLongItems(s.count) + "]")
		} else {
			sb.WriteString("=[")
			for i, v := range results {
				if i > 0 {
					sb.WriteString(", ")
				}
				sb.WriteString(formatInt(s.cfg, v, false))
				if keepSet[i] {
					sb.WriteByte('*')
				}
			}
			sb.WriteByte(']')
		}
		kept = make([]int64, 0, s.adv)
		for i, v := range results {
			if keepSet[i] {
				kept = append(kept, v)
			}
		}
	}

	var result int64
	if len(kept) > 1 {
		for _, v := range kept {
			result += v
		}
		if s.count >= s.cfg.MaxOutputItems {
			sb.WriteString("=[" + tooLongItems(s.count) + "]")
		} else {
			sb.WriteString("=[")
			for i, v := range kept {
				if i > 0 {
					sb.WriteByte('+')
				}
				sb.WriteString(formatInt(s.cfg, v, false))
			}
			sb.WriteByte(']')
		}
	} else {
		result = kept[0]
	}

	sb.WriteByte('=')
	sb.WriteString(formatInt(s.cfg, result, true))
	return Outcome{Result: result, Detail: clampDetail(s.cfg, sb.String())}
}

// keepSet marks the adv highest (or lowest) draw positions. Ties resolve by
// draw order, so equal-sequence sources always keep the same positions.
func (s *Standard) keepSet(results []int64) map[int]bool {
	idx := make([]int, len(results))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return results[idx[a]] < results[idx[b]]
	})
	var chosen []int
	if s.keep == 1 {
		chosen = idx[len(idx)-int(s.adv):]
	} else {
		chosen = idx[:int(s.adv)]
	}
	set := make(map[int]bool, len(chosen))
	for _, i := range chosen {
		set[i] = true
	}
	return set
}
