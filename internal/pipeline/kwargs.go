package pipeline

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"

	"docscribe/internal/prompt"
	"docscribe/internal/ui"

	"github.com/spf13/cast"
)

// CollectKwargs prompts for every stored kwarg, using the stored value as
// the default. It returns the new values and whether any of them changed.
// With useDefaults the stored values are returned unchanged.
func CollectKwargs(p prompt.Prompter, printer *ui.Printer, stored map[string]any, useDefaults bool) (map[string]any, bool, error) {
	out := make(map[string]any, len(stored))
	for key, value := range stored {
		out[key] = value
	}
	if useDefaults || len(stored) == 0 {
		return out, false, nil
	}

	keys := make([]string, 0, len(stored))
	for key := range stored {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		current := stored[key]
		def := formatKwarg(current)
		for {
			answer, err := p.AskDefault(fmt.Sprintf("Please enter the value for %s", key), def)
			if err != nil {
				return nil, false, err
			}
			if answer == def {
				break
			}
			value, err := parseKwarg(answer, current)
			if err != nil {
				printer.Error("%v", err)
				continue
			}
			out[key] = value
			break
		}
	}
	return out, !reflect.DeepEqual(out, stored), nil
}

func formatKwarg(v any) string {
	switch v.(type) {
	case map[string]any, []any:
		data, err := json.Marshal(v)
		if err == nil {
			return string(data)
		}
	}
	return cast.ToString(v)
}

// parseKwarg converts answer to the type of the stored value.
func parseKwarg(answer string, current any) (any, error) {
	switch current.(type) {
	case bool:
		b, err := cast.ToBoolE(answer)
		if err != nil {
			return nil, fmt.Errorf("%q is not a boolean", answer)
		}
		return b, nil
	case float64, float32:
		f, err := cast.ToFloat64E(answer)
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", answer)
		}
		return f, nil
	case int, int64, int32:
		i, err := cast.ToInt64E(answer)
		if err != nil {
			return nil, fmt.Errorf("%q is not an integer", answer)
		}
		return i, nil
	case map[string]any, []any:
		var v any
		if err := json.Unmarshal([]byte(answer), &v); err != nil {
			return nil, fmt.Errorf("%q is not valid JSON: %v", answer, err)
		}
		if reflect.TypeOf(v) != reflect.TypeOf(current) {
			return nil, fmt.Errorf("%q must be a JSON %s", answer, jsonKind(current))
		}
		return v, nil
	}
	return answer, nil
}

func jsonKind(v any) string {
	if _, ok := v.([]any); ok {
		return "array"
	}
	return "object"
}
