package resource

import (
	"fmt"
	"strings"
	"sync"
)

// Registry holds every registered descriptor. Registration validates the
// descriptor eagerly: a misconfigured resource is a startup fault, not a
// request-time error. After startup the registry is read-only and safe for
// unsynchronized concurrent reads.
type Registry struct {
	descriptors map[string]*Descriptor
	mu          sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		descriptors: make(map[string]*Descriptor),
	}
}

// Register validates and registers a descriptor. Relationship targets may
// be forward references; they are checked in ValidateAll.
func (r *Registry) Register(d *Descriptor) error {
	if err := validateDescriptor(d); err != nil {
		return fmt.Errorf("descriptor %s: %w", d.Name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.descriptors[d.Name]; exists {
		return fmt.Errorf("resource %s is already registered", d.Name)
	}

	d.fieldIndex = make(map[string]*Field, len(d.Fields))
	for i := range d.Fields {
		d.fieldIndex[d.Fields[i].Name] = &d.Fields[i]
	}

	r.descriptors[d.Name] = d
	return nil
}

// Get retrieves a descriptor by resource name.
func (r *Registry) Get(name string) (*Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.descriptors[name]
	return d, ok
}

// List returns the names of all registered resources.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.descriptors))
	for name := range r.descriptors {
		names = append(names, name)
	}
	return names
}

// ValidateAll checks cross-descriptor configuration: every relationship
// target must be registered. Call once after all registrations, before
// serving.
func (r *Registry) ValidateAll() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for name, d := range r.descriptors {
		for _, f := range d.Fields {
			if !f.Kind.Related() {
				continue
			}
			if _, ok := r.descriptors[f.Target]; !ok {
				return fmt.Errorf("resource %s: field %s targets unregistered resource %s", name, f.Name, f.Target)
			}
		}
	}
	return nil
}

// Count returns the number of registered descriptors.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.descriptors)
}

// validateDescriptor checks the internal consistency of one descriptor.
func validateDescriptor(d *Descriptor) error {
	if d.Name == "" {
		return fmt.Errorf("resource name is required")
	}
	if d.NumIDs != 1 && d.NumIDs != 2 {
		return fmt.Errorf("num ids must be 1 or 2, got %d", d.NumIDs)
	}

	seen := make(map[string]bool, len(d.Fields))
	for _, f := range d.Fields {
		if f.Name == "" {
			return fmt.Errorf("field name is required")
		}
		if seen[f.Name] {
			return fmt.Errorf("duplicate field %s", f.Name)
		}
		seen[f.Name] = true

		if f.Kind.Related() {
			if f.Target == "" {
				return fmt.Errorf("related field %s needs a target resource", f.Name)
			}
			if _, ok := d.Accessors[f.Name]; !ok {
				return fmt.Errorf("related field %s has no registered accessor", f.Name)
			}
		}
		if f.Kind == FieldDerived {
			if _, ok := d.Converters[f.Name]; !ok {
				return fmt.Errorf("derived field %s has no registered converter", f.Name)
			}
		}
	}

	// Derived _id names are synthesized for relationship fields and must
	// not collide with declared names.
	for _, f := range d.Fields {
		if f.Kind.Related() && seen[f.Name+"_id"] {
			return fmt.Errorf("field %s_id collides with the synthesized id field for %s", f.Name, f.Name)
		}
	}

	for name := range d.Converters {
		if !seen[name] && !d.isPermanent(name) {
			return fmt.Errorf("converter registered for undeclared field %s", name)
		}
	}

	for key, alias := range d.OrderAliases {
		if (alias.Column == "") == (alias.Expression == "") {
			return fmt.Errorf("order alias %s must set exactly one of column or expression", key)
		}
		if alias.Expression != "" && strings.TrimSpace(alias.Expression) == "" {
			return fmt.Errorf("order alias %s has an empty expression", key)
		}
	}

	return nil
}
