package dice

import (
	"regexp"
	"strings"
)

var fudgePattern = regexp.MustCompile(`^(\d*)F$`)

// fudgeSymbols are the three faces of a fudge die.
var fudgeSymbols = []string{"-", "0", "+"}

// Fudge is the fate pool: each die lands on minus, blank or plus, and the
// result is pluses less minuses. The "D" is optional in notation ("4DF" and
// "4F" are the same roll) and absent from traces.
type Fudge struct {
	code  string
	count int64
	cfg   Config
}

func parseFudge(code string, cfg Config) (*Fudge, error) {
	stripped := strings.ReplaceAll(code, "D", "")
	m := fudgePattern.FindStringSubmatch(stripped)
	if m == nil {
		return nil, &SyntaxError{Key: KeyInvalid}
	}
	count, err := parseCount(m[1], 4, cfg)
	if err != nil {
		return nil, err
	}
	return &Fudge{code: stripped, count: count, cfg: cfg}, nil
}

// Code returns the normalized notation with the optional "D" removed.
func (f *Fudge) Code() string { return f.code }

// Kind identifies the variant grammar.
func (f *Fudge) Kind() Kind { return KindFudge }

// Eval picks count symbols and balances pluses against minuses.
func (f *Fudge) Eval(src Source) Outcome {
	picks := make([]string, f.count)
	for i := range picks {
		picks[i] = src.Choose(fudgeSymbols)
	}

	var sb strings.Builder
	sb.WriteString(f.code)
	if f.count >= f.cfg.MaxOutputItems {
		sb.WriteString("=[" + tooLongItems(f.count) + "]")
	} else {
		sb.WriteString("=[" + strings.Join(picks, ", ") + "]")
	}

	var result int64
	for _, p := range picks {
		switch p {
		case "-":
			result--
		case "+":
			result++
		}
	}
	sb.WriteByte('=')
	sb.WriteString(formatInt(f.cfg, result, true))
	return Outcome{Result: result, Detail: clampDetail(f.cfg, sb.String())}
}
