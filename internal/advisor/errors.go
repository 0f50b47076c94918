package advisor

import "fmt"

// ValidationError names the request field that failed validation.
type ValidationError struct {
	Field string
	Issue string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("field %s %s", e.Field, e.Issue)
}
