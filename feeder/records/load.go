package records

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// ErrUnsupportedJSON indicates the file parsed but its top-level value is
// neither an object nor an array of objects
var ErrUnsupportedJSON = errors.New("input must be a JSON object or an array of objects")

// LoadFile reads a kube-burner results file. A single top-level object is
// wrapped into a one-record slice so callers handle both layouts uniformly.
func LoadFile(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return decode(data)
}

func decode(data []byte) ([]Record, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}

	switch t := v.(type) {
	case map[string]any:
		return []Record{t}, nil
	case []any:
		recs := make([]Record, 0, len(t))
		for i, e := range t {
			m, ok := e.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%w: element %d is not an object", ErrUnsupportedJSON, i)
			}
			recs = append(recs, m)
		}
		return recs, nil
	}
	return nil, ErrUnsupportedJSON
}
