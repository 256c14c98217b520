package content

import (
	"errors"
	"fmt"
	"strings"
)

var ErrNotFound = errors.New("record not found")

// ValidationError reports a rejected payload. It maps to HTTP 400.
type ValidationError struct {
	Fields  []string
	Message string
}

func (e ValidationError) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("missing required fields: %s", strings.Join(e.Fields, ", "))
	}
	return e.Message
}

func IsValidation(err error) bool {
	var v ValidationError
	return errors.As(err, &v)
}
