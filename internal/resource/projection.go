package resource

// Projection is the per-request inclusion decision for every field,
// derived from the descriptor and an optional user-requested field list.
// A nil Projection includes everything.
type Projection struct {
	excluded map[string]bool
	idOnly   map[string]bool
}

// ComputeProjection computes the projection for a requested field subset.
// An empty request includes every declared and permanent field. Otherwise
// every requested name must be inside the valid-field closure (declared
// fields, synthesized _id fields, permanent fields) or the computation
// fails with an invalid-field error naming the offender. Permanent fields
// are always retained.
//
// A relationship field that is excluded while its _id sibling is requested
// is degraded to an identifier-only conversion rather than dropped, so the
// caller still receives the foreign identifier without the related
// resource being resolved.
func ComputeProjection(requested []string, d *Descriptor) (*Projection, error) {
	if len(requested) == 0 {
		return nil, nil
	}

	valid := make(map[string]bool, len(d.Fields)*2)
	for _, f := range d.Fields {
		valid[f.Name] = true
		if f.Kind.Related() {
			valid[f.Name+"_id"] = true
		}
	}
	for _, p := range d.PermanentFields() {
		valid[p] = true
	}

	want := make(map[string]bool, len(requested))
	for _, name := range requested {
		if !valid[name] {
			return nil, NewInvalidField(name)
		}
		want[name] = true
	}

	p := &Projection{
		excluded: make(map[string]bool),
		idOnly:   make(map[string]bool),
	}

	for _, f := range d.Fields {
		if want[f.Name] || d.isPermanent(f.Name) {
			continue
		}
		if f.Kind.Related() && want[f.Name+"_id"] {
			p.idOnly[f.Name] = true
			continue
		}
		p.excluded[f.Name] = true
	}

	return p, nil
}

// Include reports whether the field should be dehydrated at all.
func (p *Projection) Include(name string) bool {
	if p == nil {
		return true
	}
	return !p.excluded[name]
}

// IdentifierOnly reports whether a relationship field should degrade to
// its bare foreign identifier.
func (p *Projection) IdentifierOnly(name string) bool {
	if p == nil {
		return false
	}
	return p.idOnly[name]
}
