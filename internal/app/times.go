package app

import (
	"context"
	"time"

	"github.com/mliu7/trackrest/internal/resource"
)

// timeCreated renders the instant an object was first submitted.
func timeCreated() resource.ConverterFunc {
	return func(ctx context.Context, b *resource.Bundle) (interface{}, error) {
		return attrTimestamp(b, "submitted_time"), nil
	}
}

// timeLastUpdated renders the instant of the latest lifecycle action,
// falling back to the submission instant for never-edited objects.
func timeLastUpdated() resource.ConverterFunc {
	return func(ctx context.Context, b *resource.Bundle) (interface{}, error) {
		return attrTimestamp(b, "action_time", "submitted_time"), nil
	}
}

// attrTimestamp returns the first set timestamp attribute in ISO 8601
// form, or nil when none is set.
func attrTimestamp(b *resource.Bundle, names ...string) interface{} {
	for _, name := range names {
		v, ok := b.Obj.Attr(name)
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case time.Time:
			if formatted := resource.ISOFormat(t); formatted != nil {
				return formatted
			}
		case *time.Time:
			if t != nil {
				if formatted := resource.ISOFormat(*t); formatted != nil {
					return formatted
				}
			}
		}
	}
	return nil
}
