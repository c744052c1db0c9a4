package playerjs

import (
	"errors"
	"fmt"
)

var (
	// ErrRuleNotMatched is matched by every *RuleError.
	ErrRuleNotMatched   = errors.New("player script rule not matched")
	ErrDecryptionFailed = errors.New("decryption failed")
)

// RuleError reports why one analyzer rule produced no fragment.
type RuleError struct {
	Rule   string
	Reason string
	Err    error
}

func (e *RuleError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Rule, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Rule, e.Reason)
}

func (e *RuleError) Unwrap() error {
	return e.Err
}

func (e *RuleError) Is(target error) bool {
	return target == ErrRuleNotMatched
}
