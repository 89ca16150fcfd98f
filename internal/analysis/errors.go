package analysis

import (
	"fmt"
	"strings"
)

// ValidationError reports a dataset that cannot be analyzed: required
// columns are missing, or no usable rows remain after coercion.
type ValidationError struct {
	Missing []string
	Reason  string
}

func (e *ValidationError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("validation: missing required columns: %s", strings.Join(e.Missing, ", "))
	}
	return "validation: " + e.Reason
}

// EmptyInputError reports that the source returned no data at all.
type EmptyInputError struct {
	Symbol string
}

func (e *EmptyInputError) Error() string {
	if e.Symbol == "" {
		return "empty input: no data"
	}
	return fmt.Sprintf("empty input: no data for %s", e.Symbol)
}
