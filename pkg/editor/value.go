package editor

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/formflow/pkg/domain/model"
)

func asString(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	}
	return "", goerr.Wrap(ErrInvalidValue, "expected a string", goerr.V(ValueKey, v))
}

func asBool(v any) (bool, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case string:
		b, err := strconv.ParseBool(x)
		if err == nil {
			return b, nil
		}
	}
	return false, goerr.Wrap(ErrInvalidValue, "expected a boolean", goerr.V(ValueKey, v))
}

// asOptionalFloat treats nil and the empty string as "unset"
func asOptionalFloat(v any) (*float64, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case float64:
		if !math.IsNaN(x) && !math.IsInf(x, 0) {
			return &x, nil
		}
	case int:
		f := float64(x)
		return &f, nil
	case json.Number:
		if f, err := x.Float64(); err == nil {
			return &f, nil
		}
	case string:
		if strings.TrimSpace(x) == "" {
			return nil, nil
		}
		if f, err := strconv.ParseFloat(strings.TrimSpace(x), 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return &f, nil
		}
	}
	return nil, goerr.Wrap(ErrInvalidValue, "expected a number", goerr.V(ValueKey, v))
}

func asOptionalInt(v any) (*int, error) {
	f, err := asOptionalFloat(v)
	if err != nil || f == nil {
		return nil, err
	}
	if *f < 0 || *f != math.Trunc(*f) {
		return nil, goerr.Wrap(ErrInvalidValue, "expected a non-negative integer", goerr.V(ValueKey, v))
	}
	n := int(*f)
	return &n, nil
}

func asOptions(v any) ([]model.Option, error) {
	var opts []model.Option

	switch x := v.(type) {
	case []model.Option:
		opts = append(opts, x...)
	case []any:
		for _, item := range x {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, goerr.Wrap(ErrInvalidValue, "option must be an object", goerr.V(ValueKey, item))
			}
			label, _ := m["label"].(string)
			value, _ := m["value"].(string)
			if value == "" {
				value = Slugify(label)
			}
			opts = append(opts, model.Option{Label: label, Value: value})
		}
	default:
		return nil, goerr.Wrap(ErrInvalidValue, "expected a list of options", goerr.V(ValueKey, v))
	}

	if len(opts) == 0 {
		return nil, goerr.Wrap(ErrLastOption, "at least one option is required")
	}
	return opts, nil
}
