package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidValue reports an input that failed type or domain vetting for a
// recognized column. Nothing is written when it is returned.
var ErrInvalidValue = errors.New("invalid value")

// Vet maps loosely-typed external inputs onto registry columns, applying
// per-column coercion and clamping. The result is the exact column→value
// mapping consumed by the repository's Apply.
//
// Unknown keys, nil values and non-updatable columns are silently dropped;
// recognized keys with unparseable values fail with ErrInvalidValue. String
// fields that are empty after trimming are dropped rather than written, so an
// admin edit with a blank optional field never erases stored data.
func Vet(raw map[string]any) (map[string]any, error) {
	vetted := make(map[string]any, len(raw))

	for key, value := range raw {
		col, ok := Lookup(key)
		if !ok || !col.Updatable || value == nil {
			continue
		}

		switch col.Kind {
		case KindInt:
			n, err := coerceInt(value)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %v", ErrInvalidValue, col.Name, err)
			}
			vetted[col.Name] = clampInt(col, n)

		case KindFloat:
			f, err := coerceFloat(value)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %v", ErrInvalidValue, col.Name, err)
			}
			vetted[col.Name] = clampFloat(col, f)

		case KindText:
			s, ok := value.(string)
			if !ok {
				return nil, fmt.Errorf("%w: %s: expected string, got %T", ErrInvalidValue, col.Name, value)
			}
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			vetted[col.Name] = s
		}
	}

	return vetted, nil
}

func clampInt(col Column, n int64) int64 {
	if !col.Clamped {
		return n
	}
	if n < int64(col.Min) {
		n = int64(col.Min)
	}
	if col.Max > col.Min && n > int64(col.Max) {
		n = int64(col.Max)
	}
	return n
}

func clampFloat(col Column, f float64) float64 {
	if !col.Clamped {
		return f
	}
	if f < col.Min {
		f = col.Min
	}
	if col.Max > col.Min && f > col.Max {
		f = col.Max
	}
	return f
}

func coerceInt(value any) (int64, error) {
	switch v := value.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case float64:
		return int64(v), nil
	case json.Number:
		return v.Int64()
	case string:
		return strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	default:
		return 0, fmt.Errorf("expected integer, got %T", value)
	}
}

func coerceFloat(value any) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case int64:
		return float64(v), nil
	case int:
		return float64(v), nil
	case json.Number:
		return v.Float64()
	case string:
		// Accept decimal-comma input ("12,5") from admin edits.
		s := strings.ReplaceAll(strings.TrimSpace(v), ",", ".")
		return strconv.ParseFloat(s, 64)
	default:
		return 0, fmt.Errorf("expected number, got %T", value)
	}
}
