package content

import (
	"fmt"
	"time"

	"github.com/markusmobius/go-dateparser"

	"github.com/schoolcms/server/internal/sanitize"
)

// Normalize coerces a raw payload into storable values for the descriptor.
//
// Timestamp fields given as strings are parsed (RFC3339, then date-only, then
// a lenient natural-language fallback) into instants; the date-only form maps
// to midnight UTC, which display surfaces truncate back themselves. Rich-text
// fields are sanitized. Fields not named by the descriptor are dropped so the
// storage layer only ever sees known columns.
func Normalize(desc Descriptor, payload map[string]any) (map[string]any, error) {
	values := make(map[string]any, len(payload))
	for name, raw := range payload {
		field, ok := desc.Field(name)
		if !ok {
			continue
		}

		switch field.Type {
		case FieldTimestamp:
			parsed, err := normalizeTimestamp(name, raw)
			if err != nil {
				return nil, err
			}
			values[name] = parsed
		case FieldRichText:
			text, err := stringValue(name, raw)
			if err != nil {
				return nil, err
			}
			values[name] = sanitize.HTML(text)
		default:
			text, err := stringValue(name, raw)
			if err != nil {
				return nil, err
			}
			values[name] = text
		}
	}
	return values, nil
}

func normalizeTimestamp(name string, raw any) (time.Time, error) {
	switch value := raw.(type) {
	case time.Time:
		return value.UTC(), nil
	case string:
		if parsed, err := time.Parse(time.RFC3339, value); err == nil {
			return parsed.UTC(), nil
		}
		if parsed, err := time.Parse("2006-01-02", value); err == nil {
			return parsed.UTC(), nil
		}
		if parsed, err := dateparser.Parse(&dateparser.Configuration{
			DefaultTimezone: time.UTC,
		}, value); err == nil {
			return parsed.Time.UTC(), nil
		}
		return time.Time{}, ValidationError{Message: fmt.Sprintf("invalid date value for %q", name)}
	default:
		return time.Time{}, ValidationError{Message: fmt.Sprintf("invalid date value for %q", name)}
	}
}

func stringValue(name string, raw any) (string, error) {
	value, ok := raw.(string)
	if !ok {
		return "", ValidationError{Message: fmt.Sprintf("field %q must be a string", name)}
	}
	return value, nil
}
