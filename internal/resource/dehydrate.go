package resource

import (
	"context"
	"fmt"
	"strings"

	"github.com/mliu7/trackrest/internal/sanitize"
	"github.com/mliu7/trackrest/internal/trackable"
)

// apiURIKeys are the keys, beyond the _uri suffix convention, whose values
// are absolutized against the deployment base URL.
var apiURIKeys = []string{"resource_uri", "next", "previous"}

// Dehydrator converts domain objects into response-ready flat mappings.
// It is stateless apart from its immutable configuration and safe for
// concurrent use. No dehydrated output is ever cached; every request
// recomputes the full pipeline.
type Dehydrator struct {
	registry  *Registry
	sanitizer *sanitize.Sanitizer
	baseURL   string
}

// NewDehydrator creates a Dehydrator. baseURL is the deployment's external
// base URL, without a trailing slash.
func NewDehydrator(registry *Registry, sanitizer *sanitize.Sanitizer, baseURL string) *Dehydrator {
	return &Dehydrator{
		registry:  registry,
		sanitizer: sanitizer,
		baseURL:   strings.TrimSuffix(baseURL, "/"),
	}
}

// ResourceURI builds the canonical detail URI for an object of the given
// descriptor, relative to the API root.
func ResourceURI(d *Descriptor, ids []int64) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, fmt.Sprintf("%d", id))
	}
	return "/" + d.Name + "/" + strings.Join(parts, "/") + "/"
}

// ListURI builds the canonical list URI for a descriptor.
func ListURI(d *Descriptor) string {
	return "/" + d.Name + "/"
}

// Dehydrate populates the bundle's data mapping from its object: every
// projected field is converted by kind, custom converters override the
// default conversion entirely, and the finishing passes annotate URIs,
// synthesize _id siblings, and escape string values.
func (dh *Dehydrator) Dehydrate(ctx context.Context, b *Bundle, d *Descriptor, p *Projection) error {
	for _, name := range d.PermanentFields() {
		if _, declared := d.FieldByName(name); declared {
			continue
		}
		switch name {
		case "id":
			b.Data["id"] = b.Obj.ID()
		case "resource_uri":
			b.Data["resource_uri"] = ResourceURI(d, b.Obj.IDs())
		default:
			if v, ok := b.Obj.Attr(name); ok {
				b.Data[name] = jsonValue(v)
			}
		}
		if converter, ok := d.Converters[name]; ok {
			value, err := converter.Convert(ctx, b)
			if err != nil {
				return err
			}
			b.Data[name] = jsonValue(value)
		}
	}

	for _, f := range d.Fields {
		name := f.Name

		if !p.Include(name) {
			continue
		}

		if f.Kind.Related() && p.IdentifierOnly(name) {
			// The relationship itself is projected out but its _id
			// sibling is wanted: resolve just the identifier.
			inst, err := dh.relatedInstance(ctx, b, d, &f)
			if err != nil {
				return err
			}
			if inst == nil {
				b.Data[name+"_id"] = nil
			} else {
				b.Data[name+"_id"] = inst.ID()
			}
			continue
		}

		value, err := dh.convertField(ctx, b, d, &f)
		if err != nil {
			return err
		}
		b.Data[name] = value
	}

	dh.finish(b, d)
	return nil
}

// PartialDehydrate populates only the identifier, canonical URI, and label
// fields. It is the embedding path for related resources and a distinct,
// cheaper contract than a truncated full dehydration: custom converters
// still run for the fields it emits, and the same finishing passes apply.
func (dh *Dehydrator) PartialDehydrate(ctx context.Context, b *Bundle, d *Descriptor) error {
	b.Data["id"] = b.Obj.ID()
	b.Data["resource_uri"] = ResourceURI(d, b.Obj.IDs())

	if d.DisplayName != nil {
		label, err := d.DisplayName.Convert(ctx, b)
		if err != nil {
			return err
		}
		b.Data["name"] = jsonValue(label)
	} else if v, ok := b.Obj.Attr("name"); ok {
		b.Data["name"] = jsonValue(v)
	}
	if v, ok := b.Obj.Attr("short_name"); ok {
		b.Data["short_name"] = jsonValue(v)
	}

	for _, name := range []string{"id", "resource_uri", "name", "short_name"} {
		converter, ok := d.Converters[name]
		if !ok {
			continue
		}
		value, err := converter.Convert(ctx, b)
		if err != nil {
			return err
		}
		b.Data[name] = jsonValue(value)
	}

	dh.finish(b, d)
	return nil
}

// AbsolutizeURIs prefixes the deployment base URL onto every URI-bearing
// value in the mapping: keys ending in _uri plus the fixed key set
// (resource_uri, next, previous). Already-absolute values pass through.
// Exported because the list meta envelope needs the same treatment.
func (dh *Dehydrator) AbsolutizeURIs(data map[string]interface{}) {
	for key, value := range data {
		if !uriKey(key) {
			continue
		}
		s, ok := value.(string)
		if !ok || s == "" {
			continue
		}
		if strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") {
			continue
		}
		data[key] = dh.baseURL + "/" + strings.TrimPrefix(s, "/")
	}
}

// convertField produces the value for one declared field. A registered
// converter overrides the default conversion entirely.
func (dh *Dehydrator) convertField(ctx context.Context, b *Bundle, d *Descriptor, f *Field) (interface{}, error) {
	if converter, ok := d.Converters[f.Name]; ok {
		value, err := converter.Convert(ctx, b)
		if err != nil {
			return nil, err
		}
		return jsonValue(value), nil
	}

	switch f.Kind {
	case FieldScalar:
		v, ok := b.Obj.Attr(f.Name)
		if !ok {
			return nil, nil
		}
		return jsonValue(v), nil

	case FieldRelatedPartial, FieldRelatedFull:
		return dh.resolveRelated(ctx, b, d, f)

	case FieldDerived:
		// Registration guarantees derived fields have a converter.
		return nil, fmt.Errorf("derived field %s has no converter", f.Name)

	default:
		return nil, fmt.Errorf("unknown field kind for %s", f.Name)
	}
}

// resolveRelated produces the representation for a relationship field: nil
// for an empty relationship, the partial representation by default, or the
// complete detail-equivalent representation for fields declared full. The
// full path is the only recursive one, and it is reachable only through an
// explicit descriptor declaration, which bounds expansion through cyclic
// relationships.
func (dh *Dehydrator) resolveRelated(ctx context.Context, b *Bundle, d *Descriptor, f *Field) (interface{}, error) {
	inst, err := dh.relatedInstance(ctx, b, d, f)
	if err != nil {
		return nil, err
	}
	if inst == nil {
		return nil, nil
	}

	target, ok := dh.registry.Get(f.Target)
	if !ok {
		return nil, fmt.Errorf("field %s targets unregistered resource %s", f.Name, f.Target)
	}

	child := b.child(inst)
	if f.Kind == FieldRelatedFull {
		if err := dh.Dehydrate(ctx, child, target, nil); err != nil {
			return nil, err
		}
	} else {
		if err := dh.PartialDehydrate(ctx, child, target); err != nil {
			return nil, err
		}
	}
	return child.Data, nil
}

// relatedInstance invokes the field's registered accessor. Absent
// relationships resolve to nil, never an error.
func (dh *Dehydrator) relatedInstance(ctx context.Context, b *Bundle, d *Descriptor, f *Field) (trackable.Object, error) {
	accessor, ok := d.Accessors[f.Name]
	if !ok {
		return nil, fmt.Errorf("related field %s has no accessor", f.Name)
	}
	return accessor.Related(ctx, b)
}

// finish runs the structural passes over the flat mapping: URI
// absolutization, _id sibling synthesis for relationship values, and the
// escaping pass.
func (dh *Dehydrator) finish(b *Bundle, d *Descriptor) {
	dh.AbsolutizeURIs(b.Data)
	synthesizeIDFields(b.Data, d)
	dh.escapeFields(b.Data, d)
}

// synthesizeIDFields adds a <field>_id sibling for every relationship
// field: the nested representation's identifier, or nil when the
// relationship resolved empty, so the flat response always carries both
// the expanded object and its bare id.
func synthesizeIDFields(data map[string]interface{}, d *Descriptor) {
	for _, f := range d.Fields {
		if !f.Kind.Related() {
			continue
		}
		value, present := data[f.Name]
		if !present {
			continue
		}
		idField := f.Name + "_id"
		if nested, ok := value.(map[string]interface{}); ok {
			data[idField] = nested["id"]
		} else {
			data[idField] = nil
		}
	}
}

// escapeFields passes every string value through the sanitizer: HTML-
// permitting fields keep the allow-list, everything else is stripped bare.
// Escape-exempt fields pass through untouched.
func (dh *Dehydrator) escapeFields(data map[string]interface{}, d *Descriptor) {
	for key, value := range data {
		if d.isEscapeExempt(key) {
			continue
		}
		s, ok := value.(string)
		if !ok {
			continue
		}
		if d.isHTMLField(key) {
			data[key] = dh.sanitizer.Clean(s)
		} else {
			data[key] = dh.sanitizer.Strip(s)
		}
	}
}

// uriKey reports whether a key's value carries a URI.
func uriKey(key string) bool {
	if strings.HasSuffix(key, "_uri") {
		return true
	}
	for _, k := range apiURIKeys {
		if k == key {
			return true
		}
	}
	return false
}
