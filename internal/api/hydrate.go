package api

import (
	"github.com/mliu7/trackrest/internal/resource"
	"github.com/mliu7/trackrest/internal/trackable"
	"github.com/mliu7/trackrest/internal/validate"
)

// hydrate copies cleaned request data onto an object. Only storage
// columns are written; pipeline parameters and stray keys never touch
// the object. Zoned datetimes split into the UTC instant plus a
// timezone column when the schema carries one; times of day store in
// hh:mm form.
func hydrate(obj trackable.Mutable, desc *resource.Descriptor, cleaned map[string]interface{}) {
	for key, value := range cleaned {
		if reservedParams[key] {
			continue
		}
		if !desc.HasStorageColumn(key) {
			continue
		}
		switch v := value.(type) {
		case validate.ZonedTime:
			obj.SetAttr(key, v.UTC)
			if desc.HasStorageColumn("timezone") {
				obj.SetAttr("timezone", v.Zone)
			}
		case validate.TimeOfDay:
			obj.SetAttr(key, v.String())
		default:
			obj.SetAttr(key, value)
		}
	}
}
