// Package validate implements the request-side half of the resource
// pipeline: per-operation schemas that clean and validate raw request data
// before any mutation happens. Field errors are aggregated across all
// fields, never fail-fast, and abort the request as a unit.
package validate

// Operation selects which schema validates a request.
type Operation string

const (
	// OpGet validates detail GET query parameters.
	OpGet Operation = "get"
	// OpList validates list GET query parameters.
	OpList Operation = "list"
	// OpCreate validates POST bodies.
	OpCreate Operation = "create"
	// OpUpdate validates PUT bodies.
	OpUpdate Operation = "update"
)

// resourceNamePattern matches field and ordering-key names.
const resourceNamePattern = `[a-z_0-9-]+`

// Schema validates the raw data for one operation on one resource.
// Evaluation order: every field validator runs independently and all field
// errors are collected; defaults are substituted into empty cleaned values;
// the whole-schema consistency check runs last, only when all fields passed.
type Schema struct {
	// Fields maps field names to their validators.
	Fields map[string]FieldValidator

	// Defaults are substituted post-validation for fields whose cleaned
	// value is empty.
	Defaults map[string]interface{}

	// LimitCeiling caps the "limit" field for externally-originated
	// requests. Zero disables the check.
	LimitCeiling int
}

// Validate cleans raw request data against the schema. Unknown keys pass
// through untouched so filter parameters reach the store unchanged. A
// trusted caller is exempt from the limit ceiling.
func (s *Schema) Validate(raw map[string]interface{}, trusted bool) (map[string]interface{}, error) {
	cleaned := make(map[string]interface{}, len(raw))
	for k, v := range raw {
		cleaned[k] = v
	}

	errs := NewValidationErrors()

	for name, validator := range s.Fields {
		value, cleanErr := validator.Clean(raw[name])
		if cleanErr != nil {
			errs.Add(name, cleanErr.Error())
			continue
		}
		if value == nil {
			delete(cleaned, name)
			continue
		}
		cleaned[name] = value
	}

	if errs.HasErrors() {
		return nil, errs
	}

	for name, def := range s.Defaults {
		if isEmpty(cleaned[name]) {
			cleaned[name] = def
		}
	}

	if s.LimitCeiling > 0 && !trusted {
		if limit, ok := toInt64(cleaned["limit"]); ok && int(limit) > s.LimitCeiling {
			return nil, &LimitError{Requested: int(limit), Ceiling: s.LimitCeiling}
		}
	}

	return cleaned, nil
}

// BaseGetSchema returns the schema every detail GET shares: an optional
// "fields" projection list.
func BaseGetSchema() *Schema {
	return &Schema{
		Fields: map[string]FieldValidator{
			"fields": &ListField{ElementPattern: resourceNamePattern, MaxLength: 5000},
		},
	}
}

// BaseListSchema returns the schema every list GET shares: optional
// "fields" and "order_by" lists plus limit/offset bounds checking against
// the given ceiling.
func BaseListSchema(limitCeiling int) *Schema {
	return &Schema{
		Fields: map[string]FieldValidator{
			"fields":   &ListField{ElementPattern: resourceNamePattern, MaxLength: 5000},
			"order_by": &ListField{ElementPattern: `-?` + resourceNamePattern, MaxLength: 5000},
			"limit":    &IntField{Min: 0, MinSet: true},
			"offset":   &IntField{Min: 0, MinSet: true},
		},
		LimitCeiling: limitCeiling,
	}
}

// isEmpty reports whether a cleaned value should take its default.
func isEmpty(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case []string:
		return len(val) == 0
	case []int64:
		return len(val) == 0
	default:
		return false
	}
}
