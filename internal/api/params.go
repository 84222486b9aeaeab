package api

import (
	"fmt"
	"net/url"
	"strings"
)

// queryToMap flattens request query parameters for schema validation.
// Repeated keys keep their first value.
func queryToMap(values url.Values) map[string]interface{} {
	raw := make(map[string]interface{}, len(values))
	for key := range values {
		raw[key] = values.Get(key)
	}
	return raw
}

// listParams rebuilds the query parameters a page link must preserve.
// Limit and offset are owned by the paginator and excluded here.
func (a *API) listParams(cleaned map[string]interface{}) url.Values {
	params := url.Values{}
	for key, value := range cleaned {
		if key == "limit" || key == "offset" {
			continue
		}
		params.Set(key, paramString(value))
	}
	return params
}

// paramString renders a cleaned value back into query parameter form.
func paramString(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case []string:
		return "[" + strings.Join(v, ",") + "]"
	case []int64:
		parts := make([]string, len(v))
		for i, n := range v {
			parts[i] = fmt.Sprintf("%d", n)
		}
		return "[" + strings.Join(parts, ",") + "]"
	default:
		return fmt.Sprintf("%v", v)
	}
}

// stringSlice extracts a cleaned list value.
func stringSlice(value interface{}) []string {
	switch v := value.(type) {
	case []string:
		return v
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	default:
		return nil
	}
}

// toInt extracts a cleaned integer value.
func toInt(value interface{}) (int, bool) {
	switch v := value.(type) {
	case int64:
		return int(v), true
	case int:
		return v, true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
