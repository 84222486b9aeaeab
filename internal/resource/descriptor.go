// Package resource implements the response-side half of the API pipeline:
// static resource descriptors, per-request field projection, related
// resource resolution with partial/full expansion, and the dehydration
// passes that turn a domain object into a sanitized, URI-annotated flat
// mapping ready for JSON serialization.
package resource

import (
	"context"

	"github.com/mliu7/trackrest/internal/trackable"
	"github.com/mliu7/trackrest/internal/validate"
)

// FieldKind determines how a declared field is dehydrated.
type FieldKind int

const (
	// FieldScalar is a plain attribute passed through as-is.
	FieldScalar FieldKind = iota
	// FieldRelatedPartial is a relationship dehydrated to its partial
	// representation (id, resource_uri, label).
	FieldRelatedPartial
	// FieldRelatedFull is a relationship dehydrated through the complete
	// pipeline of the target resource, same as a top-level detail fetch.
	FieldRelatedFull
	// FieldDerived has no backing attribute; its value comes entirely
	// from a registered converter.
	FieldDerived
)

// String returns the string representation of the field kind.
func (k FieldKind) String() string {
	switch k {
	case FieldScalar:
		return "scalar"
	case FieldRelatedPartial:
		return "related"
	case FieldRelatedFull:
		return "related_full"
	case FieldDerived:
		return "derived"
	default:
		return "unknown"
	}
}

// Related reports whether the kind is a relationship.
func (k FieldKind) Related() bool {
	return k == FieldRelatedPartial || k == FieldRelatedFull
}

// Field is one declared field on a descriptor.
type Field struct {
	Name string
	Kind FieldKind

	// Target names the descriptor a relationship field resolves to.
	// Required for related kinds, empty otherwise.
	Target string
}

// OrderAlias maps a logical ordering key to its underlying storage
// expression. Exactly one of Column or Expression is set. Expressions are
// declared here, on the descriptor, and nowhere else: user input never
// reaches query construction as raw SQL.
type OrderAlias struct {
	// Column is a plain storage column name.
	Column string

	// Expression is a computed storage expression appended as an extra
	// ordering column, e.g. "price / hours".
	Expression string
}

// Converter produces the dehydrated value for one field, overriding the
// default conversion entirely. Converters are registered on the descriptor
// and resolved once at registration time.
type Converter interface {
	Convert(ctx context.Context, b *Bundle) (interface{}, error)
}

// ConverterFunc adapts a function to the Converter interface.
type ConverterFunc func(ctx context.Context, b *Bundle) (interface{}, error)

// Convert implements Converter.
func (f ConverterFunc) Convert(ctx context.Context, b *Bundle) (interface{}, error) {
	return f(ctx, b)
}

// RelatedAccessor returns the related instance for a relationship field,
// or nil when the relationship is empty. Accessors hide how the
// relationship is computed; the resolver never inspects foreign keys.
type RelatedAccessor interface {
	Related(ctx context.Context, b *Bundle) (trackable.Object, error)
}

// AccessorFunc adapts a function to the RelatedAccessor interface.
type AccessorFunc func(ctx context.Context, b *Bundle) (trackable.Object, error)

// Related implements RelatedAccessor.
func (f AccessorFunc) Related(ctx context.Context, b *Bundle) (trackable.Object, error) {
	return f(ctx, b)
}

// Descriptor is the static, per-resource-type configuration. Descriptors
// are built once, validated at registration, and never mutated afterward;
// concurrent reads from request handlers need no synchronization.
type Descriptor struct {
	// Name is the resource name used in URIs, e.g. "jobs".
	Name string

	// Fields is the declared field set, in dehydration order.
	Fields []Field

	// Permanent fields are always included regardless of any requested
	// projection. Defaults to {"id", "resource_uri"} when empty.
	Permanent []string

	// DontEscape lists fields exempt from the HTML-escaping pass.
	DontEscape []string

	// HTMLFields lists fields where allow-listed HTML is retained
	// instead of stripped.
	HTMLFields []string

	// OrderAliases maps logical ordering keys to storage expressions.
	OrderAliases map[string]OrderAlias

	// StorageColumns is the underlying storage schema, used as the final
	// ordering-resolution tier and by the store for filtering.
	StorageColumns []string

	// NumIDs is the number of identifying keys (1 or 2) needed to
	// address a single instance.
	NumIDs int

	// Converters overrides the default conversion for named fields.
	Converters map[string]Converter

	// Accessors resolves relationship fields to their target instances.
	// Required for every related field.
	Accessors map[string]RelatedAccessor

	// DisplayName, when set, produces the human-readable label used in
	// partial representations instead of the raw name attribute.
	DisplayName Converter

	// Schemas holds the per-operation validation schemas. A missing
	// operation means no structured validation beyond transport checks.
	Schemas map[validate.Operation]*validate.Schema

	fieldIndex map[string]*Field
}

// FieldByName returns the declared field with the given name.
func (d *Descriptor) FieldByName(name string) (*Field, bool) {
	f, ok := d.fieldIndex[name]
	return f, ok
}

// PermanentFields returns the permanent field list, applying the default.
func (d *Descriptor) PermanentFields() []string {
	if len(d.Permanent) == 0 {
		return []string{"id", "resource_uri"}
	}
	return d.Permanent
}

// Schema returns the validation schema for an operation, if one exists.
func (d *Descriptor) Schema(op validate.Operation) (*validate.Schema, bool) {
	s, ok := d.Schemas[op]
	return s, ok
}

// isPermanent reports whether name is a permanent field.
func (d *Descriptor) isPermanent(name string) bool {
	for _, p := range d.PermanentFields() {
		if p == name {
			return true
		}
	}
	return false
}

// isEscapeExempt reports whether name skips the escaping pass.
func (d *Descriptor) isEscapeExempt(name string) bool {
	for _, f := range d.DontEscape {
		if f == name {
			return true
		}
	}
	return false
}

// isHTMLField reports whether name retains allow-listed HTML.
func (d *Descriptor) isHTMLField(name string) bool {
	for _, f := range d.HTMLFields {
		if f == name {
			return true
		}
	}
	return false
}

// HasStorageColumn reports whether name is a column on the underlying
// storage schema.
func (d *Descriptor) HasStorageColumn(name string) bool {
	for _, c := range d.StorageColumns {
		if c == name {
			return true
		}
	}
	return false
}
