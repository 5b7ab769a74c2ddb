package serrors

import "fmt"

// Base is a coded error suitable for API envelopes and log correlation.
type Base struct {
	Code    string
	Message string
	Details string
}

func NewError(code, message, details string) *Base {
	return &Base{
		Code:    code,
		Message: message,
		Details: details,
	}
}

func (e *Base) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}
