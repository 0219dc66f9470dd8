package extractor

import (
	"context"
	"fmt"
	"time"

	"github.com/araddon/dateparse"
)

// defaultDatetimeFormat is the fallback layout spec.md §4.8 step 6c
// names when no configured format parses the extracted value.
const defaultDatetimeFormat = "2006-01-02 15:04:05"

// extractID implements spec.md §4.8 step 6c's id rule: the first
// id-query that yields a non-empty single value wins.
func (m *Module) extractID(ctx context.Context, body []byte) (string, error) {
	for _, q := range m.cfg.IDQueries {
		value, err := q.First(ctx, body)
		if err != nil {
			return "", fmt.Errorf("run id query: %w", err)
		}

		if value != "" {
			return value, nil
		}
	}

	return "", nil
}

// extractDatetime implements spec.md §4.8 step 6c's datetime rule: the
// first non-empty match from the configured queries is parsed with the
// configured format, falling back to defaultDatetimeFormat, and finally
// to lenient parsing so a plausible-but-differently-shaped timestamp is
// not simply discarded.
func (m *Module) extractDatetime(ctx context.Context, body []byte) (time.Time, error) {
	for _, q := range m.cfg.DatetimeQueries {
		raw, err := q.First(ctx, body)
		if err != nil {
			return time.Time{}, fmt.Errorf("run datetime query: %w", err)
		}

		if raw == "" {
			continue
		}

		return parseDatetime(raw, m.cfg.DatetimeFormat)
	}

	return time.Time{}, nil
}

func parseDatetime(raw, format string) (time.Time, error) {
	if format != "" {
		if t, err := time.Parse(format, raw); err == nil {
			return t, nil
		}
	}

	if t, err := time.Parse(defaultDatetimeFormat, raw); err == nil {
		return t, nil
	}

	return dateparse.ParseAny(raw)
}

// extractField returns one extracted field's value, already shaped for
// InsertTargetRow (spec.md §4.8 "Result shapes": single value, boolean,
// or nothing).
func (m *Module) extractField(ctx context.Context, f Field, body []byte) (any, error) {
	switch f.Shape {
	case ResultBool:
		ok, err := f.Query.Bool(ctx, body)
		if err != nil {
			return nil, fmt.Errorf("run field %q query: %w", f.Name, err)
		}

		return ok, nil
	default:
		value, err := f.Query.First(ctx, body)
		if err != nil {
			return nil, fmt.Errorf("run field %q query: %w", f.Name, err)
		}

		if value == "" {
			if f.WarnIfEmpty {
				m.warn.Push(fmt.Sprintf("field %q produced no value", f.Name))
			}

			return nil, nil
		}

		if f.Tidy {
			value = tidyText(value)
		}

		return value, nil
	}
}

// tidyText trims surrounding whitespace and collapses internal runs of
// it to a single space, the same light-touch cleanup the teacher's
// text-extraction helpers apply before persisting scraped strings.
func tidyText(s string) string {
	var b []byte

	lastSpace := true

	for i := 0; i < len(s); i++ {
		c := s[i]

		isSpace := c == ' ' || c == '\t' || c == '\n' || c == '\r'
		if isSpace {
			if lastSpace {
				continue
			}

			b = append(b, ' ')
			lastSpace = true

			continue
		}

		b = append(b, c)
		lastSpace = false
	}

	for len(b) > 0 && b[len(b)-1] == ' ' {
		b = b[:len(b)-1]
	}

	return string(b)
}
