package validate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// FieldValidator cleans and validates a single raw request value. Clean
// returns the normalized value, or an error describing why the input is
// unacceptable. A nil raw value on an optional field cleans to nil.
type FieldValidator interface {
	Clean(value interface{}) (interface{}, error)
}

// RegexField validates a string against a pattern.
type RegexField struct {
	Pattern  *regexp.Regexp
	Required bool
	// Message overrides the default error message when set.
	Message string
	// MaxLength bounds the raw string length. Zero means unbounded.
	MaxLength int
}

// Clean implements FieldValidator.
func (f *RegexField) Clean(value interface{}) (interface{}, error) {
	s, err := stringValue(value, f.Required)
	if err != nil || s == "" {
		return nil, err
	}
	if f.MaxLength > 0 && len(s) > f.MaxLength {
		return nil, fmt.Errorf("ensure this value has at most %d characters", f.MaxLength)
	}
	if !f.Pattern.MatchString(s) {
		if f.Message != "" {
			return nil, fmt.Errorf("%s", f.Message)
		}
		return nil, fmt.Errorf("enter a valid value")
	}
	return s, nil
}

// IntField validates an integer, accepting numeric JSON values and decimal
// strings.
type IntField struct {
	Required bool
	// Min and Max bound the value when MinSet/MaxSet are true.
	Min    int64
	MinSet bool
	Max    int64
	MaxSet bool
}

// Clean implements FieldValidator.
func (f *IntField) Clean(value interface{}) (interface{}, error) {
	if value == nil || value == "" {
		if f.Required {
			return nil, fmt.Errorf("this field is required")
		}
		return nil, nil
	}

	n, ok := toInt64(value)
	if !ok {
		return nil, fmt.Errorf("enter a whole number")
	}
	if f.MinSet && n < f.Min {
		return nil, fmt.Errorf("ensure this value is greater than or equal to %d", f.Min)
	}
	if f.MaxSet && n > f.Max {
		return nil, fmt.Errorf("ensure this value is less than or equal to %d", f.Max)
	}
	return n, nil
}

// ISODateTimeField validates an ISO 8601 date-time with an explicit UTC
// offset and cleans it to a ZonedTime.
type ISODateTimeField struct {
	Required bool
}

// Clean implements FieldValidator.
func (f *ISODateTimeField) Clean(value interface{}) (interface{}, error) {
	s, err := stringValue(value, f.Required)
	if err != nil || s == "" {
		return nil, err
	}
	zt, err := ParseISODateTime(s)
	if err != nil {
		return nil, err
	}
	return zt, nil
}

// TimeOfDayField validates an hh:mm time of day.
type TimeOfDayField struct {
	Required bool
}

// TimeOfDay is the cleaned value produced by TimeOfDayField.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// String formats the time of day as hh:mm.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

var timeOfDayPattern = regexp.MustCompile(`^\d{2}:\d{2}$`)

// Clean implements FieldValidator.
func (f *TimeOfDayField) Clean(value interface{}) (interface{}, error) {
	s, err := stringValue(value, f.Required)
	if err != nil || s == "" {
		return nil, err
	}
	if !timeOfDayPattern.MatchString(s) {
		return nil, fmt.Errorf("enter a valid time string; form is hh:mm")
	}
	parsed, err := time.Parse("15:04", s)
	if err != nil {
		return nil, fmt.Errorf("enter a valid time string; form is hh:mm")
	}
	return TimeOfDay{Hour: parsed.Hour(), Minute: parsed.Minute()}, nil
}

// ListField validates a bracketed, comma-separated, optionally-quoted list
// where every element must match ElementPattern. It cleans to []string, or
// to []int64 when Ints is set.
type ListField struct {
	// ElementPattern is the regex a single element must match, without
	// anchors, e.g. `[a-z_0-9-]+` or `\d+`.
	ElementPattern string
	Required       bool
	// Ints converts the cleaned elements to integers.
	Ints bool
	// MaxItems bounds the element count. Zero means unbounded.
	MaxItems int
	// Message overrides the default error message when set.
	Message string
	// MaxLength bounds the raw string length. Zero means unbounded.
	MaxLength int

	compiled *regexp.Regexp
}

// pattern lazily compiles the whole-list regex from the element pattern.
func (f *ListField) pattern() *regexp.Regexp {
	if f.compiled == nil {
		elem := f.ElementPattern
		full := fmt.Sprintf(`^\[(\s*['"]?%s['"]?\s*(,\s*['"]?%s['"]?\s*)*)?\]$`, elem, elem)
		f.compiled = regexp.MustCompile(full)
	}
	return f.compiled
}

// Clean implements FieldValidator.
func (f *ListField) Clean(value interface{}) (interface{}, error) {
	s, err := stringValue(value, f.Required)
	if err != nil || s == "" {
		return nil, err
	}
	if f.MaxLength > 0 && len(s) > f.MaxLength {
		return nil, fmt.Errorf("ensure this value has at most %d characters", f.MaxLength)
	}
	if !f.pattern().MatchString(s) {
		if f.Message != "" {
			return nil, fmt.Errorf("%s", f.Message)
		}
		return nil, fmt.Errorf("enter a valid bracketed list, e.g. [a, b] or []")
	}

	elements := splitList(s)
	if f.MaxItems > 0 && len(elements) > f.MaxItems {
		return nil, fmt.Errorf("too many elements supplied to the list; the max number for this list is %d", f.MaxItems)
	}

	if !f.Ints {
		return elements, nil
	}

	ints := make([]int64, 0, len(elements))
	for _, e := range elements {
		n, err := strconv.ParseInt(e, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("enter only a list of integers separated by commas; examples of valid inputs are [], [1,2,3], [ 23 , 53 ]")
		}
		ints = append(ints, n)
	}
	return ints, nil
}

// IntListField returns a ListField configured for integer elements.
func IntListField(maxItems int) *ListField {
	return &ListField{
		ElementPattern: `\d+`,
		Ints:           true,
		MaxItems:       maxItems,
		Message:        "enter only a list of integers separated by commas; examples of valid inputs are [], [1,2,3], [ 23 , 53 ]",
	}
}

// splitList strips the surrounding brackets and splits the body on commas,
// trimming whitespace and optional quotes from each element.
func splitList(s string) []string {
	body := strings.TrimSuffix(strings.TrimPrefix(s, "["), "]")
	if strings.TrimSpace(body) == "" {
		return []string{}
	}
	parts := strings.Split(body, ",")
	elements := make([]string, 0, len(parts))
	for _, p := range parts {
		e := strings.TrimSpace(p)
		e = strings.Trim(e, `'"`)
		elements = append(elements, e)
	}
	return elements
}

// stringValue coerces a raw value to a string, enforcing requiredness.
func stringValue(value interface{}, required bool) (string, error) {
	if value == nil {
		if required {
			return "", fmt.Errorf("this field is required")
		}
		return "", nil
	}
	s, ok := value.(string)
	if !ok {
		s = fmt.Sprintf("%v", value)
	}
	if s == "" && required {
		return "", fmt.Errorf("this field is required")
	}
	return s, nil
}

// toInt64 converts numeric JSON values and decimal strings to int64.
func toInt64(value interface{}) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case float64:
		if v != float64(int64(v)) {
			return 0, false
		}
		return int64(v), true
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}
