package resource

import "strings"

// OrderClause is one resolved (direction, storage expression) pair ready
// for query construction.
type OrderClause struct {
	// Column is the storage column to sort by. Empty when Expression is
	// set.
	Column string

	// Expression is a computed storage expression that must be appended
	// to the select list as an extra column before sorting on it. Always
	// taken verbatim from the descriptor's alias table, never from user
	// input.
	Expression string

	// Alias names the computed column when Expression is set.
	Alias string

	// Desc sorts descending.
	Desc bool
}

// DefaultOrdering is the ordering applied when the caller supplies no
// keys: descending by identifier, which is deterministic and unambiguous.
func DefaultOrdering() []OrderClause {
	return []OrderClause{{Column: "id", Desc: true}}
}

// ResolveOrdering resolves user-supplied ordering keys against the
// descriptor. Each key resolves through three tiers in order: an alias to
// a plain column, an alias to a computed expression, or a direct column on
// the storage schema. A key failing all three tiers is a terminal
// validation error.
//
// A trailing _id on a key is accepted for relationship fields only and
// resolves against the base field name; a relationship without an alias
// sorts on its foreign key column.
func ResolveOrdering(keys []string, d *Descriptor) ([]OrderClause, error) {
	if len(keys) == 0 {
		return DefaultOrdering(), nil
	}

	clauses := make([]OrderClause, 0, len(keys))
	for _, raw := range keys {
		key := strings.Trim(raw, `'"`)
		desc := false
		if strings.HasPrefix(key, "-") {
			desc = true
			key = key[1:]
		}

		if stripped, ok := strings.CutSuffix(key, "_id"); ok {
			if f, exists := d.FieldByName(stripped); exists && f.Kind.Related() {
				key = stripped
			}
		}
		_, declared := d.FieldByName(key)
		_, aliased := d.OrderAliases[key]
		if !declared && !aliased {
			return nil, Errorf(KindInvalidField, "The attribute '%s' does not exist on this resource.", raw)
		}

		if alias, ok := d.OrderAliases[key]; ok {
			if alias.Column != "" {
				clauses = append(clauses, OrderClause{Column: alias.Column, Desc: desc})
			} else {
				clauses = append(clauses, OrderClause{
					Expression: alias.Expression,
					Alias:      key + "_for_api_ordering",
					Desc:       desc,
				})
			}
			continue
		}

		if d.HasStorageColumn(key) {
			clauses = append(clauses, OrderClause{Column: key, Desc: desc})
			continue
		}
		if f, ok := d.FieldByName(key); ok && f.Kind.Related() && d.HasStorageColumn(key+"_id") {
			clauses = append(clauses, OrderClause{Column: key + "_id", Desc: desc})
			continue
		}

		return nil, Errorf(KindInvalidField, "Cannot order on '%s'.", raw)
	}

	return clauses, nil
}
