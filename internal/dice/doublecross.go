package dice

import (
	"regexp"
	"strconv"
	"strings"
)

var doubleCrossPattern = regexp.MustCompile(`^(\d+)C(\d+)(?:M(\d+))?$`)

// DoubleCross is the exploding pool scored by chain depth: dice at or above
// the add line reroll into the next round, and the result is a full sides
// worth of points per completed round plus the best die of the final one.
// Sides default to 10; the add line is mandatory and must sit in [2, sides].
type DoubleCross struct {
	code    string
	count   int64
	addLine int64
	sides   int64
	cfg     Config
}

func parseDoubleCross(code string, cfg Config) (*DoubleCross, error) {
	m := doubleCrossPattern.FindStringSubmatch(code)
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
	sides, err := parseField(m[3], 10, KeySidesInvalid)
	if err != nil {
		return nil, err
	}
	if err := checkSides(sides); err != nil {
		return nil, err
	}
	if addLine < 2 || addLine > sides {
		return nil, &ValueError{Key: KeyAddLineOutOfRange, Value: strconv.FormatInt(addLine, 10), Max: sides}
	}
	return &DoubleCross{code: code, count: count, addLine: addLine, sides: sides, cfg: cfg}, nil
}

// Code returns the normalized notation.
func (d *DoubleCross) Code() string { return d.code }

// Kind identifies the variant grammar.
func (d *DoubleCross) Kind() Kind { return KindDoubleCross }

// Eval runs the explosion rounds and scores the chain.
func (d *DoubleCross) Eval(src Source) Outcome {
	var rounds strings.Builder
	rounds.WriteString("=[")

	var roundCount int64
	var finalMax int64
	pending := d.count
	for pending > 0 {
		roundCount++
		if roundCount > 1 {
			rounds.WriteString(", ")
		}
		rounds.WriteByte('{')
		var exploded int64
		finalMax = 0
		for i := int64(0); i < pending; i++ {
			v := src.NextInt(1, d.sides)
			if v > finalMax {
				finalMax = v
			}
			if i > 0 {
				rounds.WriteString(", ")
			}
			if v >= d.addLine {
				exploded++
				rounds.WriteString("<" + formatInt(d.cfg, v, false) + ">")
			} else {
				rounds.WriteString(formatInt(d.cfg, v, false))
			}
		}
		rounds.WriteByte('}')
		pending = exploded
	}
	rounds.WriteByte(']')

	bracket := rounds.String()
	if d.count >= d.cfg.MaxOutputItems {
		bracket = "=[" + tooLongItems(d.count) + "]"
	}
	result := (roundCount-1)*d.sides + finalMax
	detail := d.code + bracket + "=" + formatInt(d.cfg, result, true)
	return Outcome{Result: result, Detail: clampDetail(d.cfg, detail)}
}
