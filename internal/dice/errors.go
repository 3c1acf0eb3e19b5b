package dice

import "fmt"

// Message template identifiers carried by interpreter errors and trace
// placeholders. The interpreter never renders these to prose; callers feed
// them to their own localization layer.
const (
	KeyInvalid            = "dice.message.error.invalid"
	KeyCountOutOfRange    = "dice.message.error.value.count.out_of_range"
	KeyCountInvalid       = "dice.message.error.value.count.invalid"
	KeySidesOutOfRange    = "dice.message.error.value.sides.out_of_range"
	KeySidesOne           = "dice.message.error.value.sides.d1"
	KeySidesInvalid       = "dice.message.error.value.sides.invalid"
	KeyAdvOutOfRange      = "dice.message.error.value.advantage.out_of_range"
	KeyAdvInvalid         = "dice.message.error.value.advantage.invalid"
	KeyAddLineOutOfRange  = "dice.message.error.value.add_line.out_of_range"
	KeyAddLineInvalid     = "dice.message.error.value.add_line.invalid"
	KeySuccessLineInvalid = "dice.message.error.value.dice_success_line.invalid"
	KeyOutputTooLong      = "dice.message.output.too_long"
	KeyTooLong            = "dice.message.too_long"
)

// SyntaxError reports notation that contains an illegal character or fails a
// variant's structural pattern. It is raised before any random draw.
type SyntaxError struct {
	Key string
}

func (e *SyntaxError) Error() string {
	return "dice: invalid notation (" + e.Key + ")"
}

// ValueError reports an in-grammar number that violates a range invariant.
// Value holds the offending literal for interpolation by the caller; Max is
// set only for the bounds that carry one. Raised before any random draw.
type ValueError struct {
	Key   string
	Value string
	Max   int64
}

func (e *ValueError) Error() string {
	switch {
	case e.Value == "":
		return "dice: " + e.Key
	case e.Max != 0:
		return fmt.Sprintf("dice: %s: %s (max %d)", e.Key, e.Value, e.Max)
	default:
		return fmt.Sprintf("dice: %s: %s", e.Key, e.Value)
	}
}
