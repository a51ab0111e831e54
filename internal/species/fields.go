package species

import (
	"errors"
	"fmt"
	"strconv"
)

var ErrMissingField = errors.New("species: missing required field")

// Field describes one loadable property of a Species. New properties are
// added by appending to Fields, not by changing the loaders.
type Field struct {
	Key      string
	Required bool
	Load     func(s *Species, v any) error
}

var Fields = []Field{
	{Key: "name", Required: true, Load: func(s *Species, v any) error {
		name, ok := v.(string)
		if !ok {
			return fmt.Errorf("expected string, got %T", v)
		}
		s.Name = name
		return nil
	}},
	{Key: "mass", Required: true, Load: func(s *Species, v any) error {
		f, err := toFloat64(v)
		s.Mass = f
		return err
	}},
	{Key: "charge", Load: func(s *Species, v any) error {
		f, err := toFloat64(v)
		if err != nil {
			return err
		}
		if f != float64(int(f)) {
			return fmt.Errorf("charge must be an integer, got %g", f)
		}
		s.Charge = int(f)
		return nil
	}},
	{Key: "size", Load: func(s *Species, v any) error {
		f, err := toFloat64(v)
		s.Size = f
		return err
	}},
}

// FromMap builds a Species from a decoded document entry.
func FromMap(raw map[string]any) (Species, error) {
	var s Species
	for _, f := range Fields {
		v, ok := raw[f.Key]
		if !ok {
			if f.Required {
				return s, fmt.Errorf("%w: %s", ErrMissingField, f.Key)
			}
			continue
		}
		if err := f.Load(&s, v); err != nil {
			return s, fmt.Errorf("species field %s: %w", f.Key, err)
		}
	}
	return s, nil
}

// toFloat64 accepts the numeric types produced by the yaml and toml decoders
// as well as numeric strings such as "6.63e-26".
func toFloat64(v any) (float64, error) {
	switch val := v.(type) {
	case float64:
		return val, nil
	case float32:
		return float64(val), nil
	case int:
		return float64(val), nil
	case int64:
		return float64(val), nil
	case int32:
		return float64(val), nil
	case uint64:
		return float64(val), nil
	case string:
		return strconv.ParseFloat(val, 64)
	default:
		return 0, fmt.Errorf("expected number, got %T", v)
	}
}
