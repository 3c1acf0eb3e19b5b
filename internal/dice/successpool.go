package dice

import (
	"regexp"
	"strconv"
	"strings"
)

var successPoolPattern = regexp.MustCompile(`^(\d+)A(\d+)(?:K(\d+))?(?:Q(\d+))?(?:M(\d+))?$`)

// SuccessPool is the exploding success-counting pool. Dice at or above the add
// line roll one extra die in the next round until a round explodes nothing;
// every die at or above the success line (K, default 8) or at or below the
// low success line (Q, disabled by default) scores once. Sides default to 10
// (M suffix overrides); an add line of 0 disables explosions entirely.
type SuccessPool struct {
	code     string
	count    int64
	addLine  int64
	succLine int64
	succMax  int64
	sides    int64
	cfg      Config
}

func parseSuccessPool(code string, cfg Config) (*SuccessPool, error) {
	m := successPoolPattern.FindStringSubmatch(code)
	if m == nil {
		return nil, &SyntaxError{Key: KeyInvalid}
	}
	count, err := parseCount(m[1], 1, cfg)
	if err != nil {
		return nil, err
	}
	addLine, err := parseField(m[2], 0, KeyAddLineInvalid)
	if err != nil {
		return nil, err
	}
	succLine, err := parseField(m[3], 8, KeySuccessLineInvalid)
	if err != nil {
		return nil, err
	}
	succMax, err := parseField(m[4], 0, KeySuccessLineInvalid)
	if err != nil {
		return nil, err
	}
	sides, err := parseField(m[5], 10, KeySidesInvalid)
	if err != nil {
		return nil, err
	}
	if err := checkSides(sides); err != nil {
		return nil, err
	}
	if addLine != 0 && (addLine < 2 || addLine > sides) {
		return nil, &ValueError{Key: KeyAddLineOutOfRange, Value: strconv.FormatInt(addLine, 10), Max: sides}
	}
	return &SuccessPool{
		code:     code,
		count:    count,
		addLine:  addLine,
		succLine: succLine,
		succMax:  succMax,
		sides:    sides,
		cfg:      cfg,
	}, nil
}

// Code returns the normalized notation.
func (p *SuccessPool) Code() string { return p.code }

// Kind identifies the variant grammar.
func (p *SuccessPool) Kind() Kind { return KindSuccessPool }

// Eval runs the explosion rounds and counts successes across all of them.
func (p *SuccessPool) Eval(src Source) Outcome {
	var rounds strings.Builder
	rounds.WriteString("=[")

	var successes int64
	pending := p.count
	for round := 0; pending > 0; round++ {
		if round > 0 {
			rounds.WriteString(", ")
		}
		rounds.WriteByte('{')
		var exploded int64
		for i := int64(0); i < pending; i++ {
			v := src.NextInt(1, p.sides)
			success := (p.succLine > 0 && v >= p.succLine) || (p.succMax > 0 && v <= p.succMax)
			explode := p.addLine > 0 && v >= p.addLine
			if i > 0 {
				rounds.WriteString(", ")
			}
			if explode {
				exploded++
				rounds.WriteByte('<')
				rounds.WriteString(formatInt(p.cfg, v, false))
				if success {
					rounds.WriteByte('*')
				}
				rounds.WriteByte('>')
			} else {
				rounds.WriteString(formatInt(p.cfg, v, false))
				if success {
					rounds.WriteByte('*')
				}
			}
			if success {
				successes++
			}
		}
		rounds.WriteByte('}')
		pending = exploded
	}
	rounds.WriteByte(']')

	bracket := rounds.String()
	if p.count >= p.cfg.MaxOutputItems {
		bracket = "=[" + tooLongItems(p.count) + "]"
	}
	detail := p.code + bracket + "=" + formatInt(p.cfg, successes, true)
	return Outcome{Result: successes, Detail: clampDetail(p.cfg, detail)}
}
