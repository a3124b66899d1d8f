package types

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
)

// ErrBadShape is returned when model output parses as JSON but is not an
// object of question number -> mark.
var ErrBadShape = errors.New("answer map has unexpected shape")

// Mark is the value recorded for one question:
//   - "A"          one option marked
//   - null         nothing confidently marked
//   - ["A", "C"]   several options marked
//
// The JSON form it was read from is kept so that it is written back unchanged.
type Mark struct {
	Options  []string
	Multiple bool
}

func (m Mark) IsBlank() bool { return !m.Multiple && len(m.Options) == 0 }

func (m Mark) MarshalJSON() ([]byte, error) {
	switch {
	case m.Multiple:
		opts := m.Options
		if opts == nil {
			opts = []string{}
		}
		return json.Marshal(opts)
	case len(m.Options) == 0:
		return []byte("null"), nil
	default:
		return json.Marshal(m.Options[0])
	}
}

func (m *Mark) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*m = Mark{}
		return nil
	}
	var one string
	if err := json.Unmarshal(b, &one); err == nil {
		*m = Mark{Options: []string{one}}
		return nil
	}
	var many []any
	if err := json.Unmarshal(b, &many); err == nil {
		opts := make([]string, 0, len(many))
		for _, v := range many {
			s, ok := v.(string)
			if !ok {
				return fmt.Errorf("%w: array mark holds %s, want strings", ErrBadShape, jsonKind(v))
			}
			opts = append(opts, s)
		}
		*m = Mark{Options: opts, Multiple: true}
		return nil
	}
	return fmt.Errorf("%w: mark must be a string, null or array of strings, got %s", ErrBadShape, truncate(b, 40))
}

// AnswerMap maps question number (as a string) to its mark.
type AnswerMap map[string]Mark

// ParseAnswerMap decodes model text into an AnswerMap. A syntax error is
// returned as-is; valid JSON of the wrong shape wraps ErrBadShape.
func ParseAnswerMap(text string) (AnswerMap, error) {
	var raw any
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, err
	}
	if _, ok := raw.(map[string]any); !ok {
		return nil, fmt.Errorf("%w: top level is %s, want object", ErrBadShape, jsonKind(raw))
	}
	var out AnswerMap
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		if errors.Is(err, ErrBadShape) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrBadShape, err)
	}
	return out, nil
}

// Questions returns the keys ordered numerically where possible, with
// non-numeric keys after the numeric ones in lexical order.
func (a AnswerMap) Questions() []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ni, ei := strconv.Atoi(keys[i])
		nj, ej := strconv.Atoi(keys[j])
		switch {
		case ei == nil && ej == nil:
			return ni < nj
		case ei == nil:
			return true
		case ej == nil:
			return false
		default:
			return keys[i] < keys[j]
		}
	})
	return keys
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case []any:
		return "array"
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	default:
		return "object"
	}
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "…"
}
