package helper

import "fmt"

// NewError prefixes an error with the operation that failed.
// The original error stays in the chain so errors.Is and errors.As keep working.
func NewError(trace string, original error) error {
	if original == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", trace, original)
}
