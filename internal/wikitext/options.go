package wikitext

import (
	"fmt"
)

// OptionsFromMap decodes scan options from loosely typed data such as a YAML
// or JSON rule file. nil yields the zero Options. Anything other than a map
// with the keys "name" (string), "nested" and "multi" (bool) fails with
// ErrInvalidOptions.
func OptionsFromMap(v any) (Options, error) {
	var opts Options
	switch m := v.(type) {
	case nil:
		return opts, nil
	case Options:
		return m, nil
	case *Options:
		if m == nil {
			return opts, nil
		}
		return *m, nil
	case map[string]any:
		for key, raw := range m {
			if err := opts.set(key, raw); err != nil {
				return Options{}, err
			}
		}
		return opts, nil
	case map[any]any:
		for key, raw := range m {
			k, ok := key.(string)
			if !ok {
				return Options{}, fmt.Errorf("%w: key %v is not a string", ErrInvalidOptions, key)
			}
			if err := opts.set(k, raw); err != nil {
				return Options{}, err
			}
		}
		return opts, nil
	default:
		return Options{}, fmt.Errorf("%w: expected a mapping, got %T", ErrInvalidOptions, v)
	}
}

func (o *Options) set(key string, raw any) error {
	switch key {
	case "name":
		s, ok := raw.(string)
		if !ok {
			return fmt.Errorf("%w: name must be a string, got %T", ErrInvalidOptions, raw)
		}
		o.Name = s
	case "nested", "multi":
		b, ok := raw.(bool)
		if !ok {
			return fmt.Errorf("%w: %s must be a boolean, got %T", ErrInvalidOptions, key, raw)
		}
		if key == "nested" {
			o.Nested = b
		} else {
			o.Multi = b
		}
	default:
		return fmt.Errorf("%w: unknown option %q", ErrInvalidOptions, key)
	}
	return nil
}
