package resource

import (
	"fmt"
	"time"
)

// ISOFormat renders a timestamp in ISO 8601 form, normalized to UTC. The
// stored instant is the source of truth; wall-clock context lives in a
// separate timezone attribute where a resource keeps one. A zero time
// renders as nil.
func ISOFormat(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format("2006-01-02T15:04:05-07:00")
}

// jsonValue coerces an attribute value into something JSON-primitive
// compatible: string, number, bool, nil, nested mapping, or sequence. Live
// object references never leak into the response.
func jsonValue(v interface{}) interface{} {
	switch val := v.(type) {
	case nil:
		return nil
	case string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return val
	case time.Time:
		return ISOFormat(val)
	case *time.Time:
		if val == nil {
			return nil
		}
		return ISOFormat(*val)
	case map[string]interface{}:
		return val
	case []interface{}:
		return val
	case []string:
		out := make([]interface{}, len(val))
		for i, s := range val {
			out[i] = s
		}
		return out
	case []int64:
		out := make([]interface{}, len(val))
		for i, n := range val {
			out[i] = n
		}
		return out
	default:
		return fmt.Sprintf("%v", val)
	}
}
