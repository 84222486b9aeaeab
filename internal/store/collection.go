// Package store is the storage/query collaborator: filterable, orderable,
// sliceable collections of trackable rows over database/sql, with
// ownership-aware visibility filtering and support for computed ordering
// columns declared on the resource descriptor.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/mliu7/trackrest/internal/resource"
	"github.com/mliu7/trackrest/internal/trackable"
)

// Query describes one list fetch.
type Query struct {
	// Filters are column equality filters. Keys must be storage columns;
	// a nil value matches NULL.
	Filters map[string]interface{}

	// Ordering is the resolved ordering specification.
	Ordering []resource.OrderClause

	// Limit and Offset slice the result set. A zero limit returns no
	// rows and a zero count.
	Limit  int
	Offset int

	// Viewer scopes visibility: everyone sees live rows, owners also see
	// their hidden rows, nobody lists removed rows.
	Viewer trackable.Identity
}

// Collection provides row access for one resource.
type Collection struct {
	db        *sql.DB
	desc      *resource.Descriptor
	table     string
	idColumns []string
}

// NewCollection creates a collection over the given table. idColumns
// defaults to {"id"} and must match the descriptor's identifier count.
func NewCollection(db *sql.DB, desc *resource.Descriptor, table string, idColumns []string) (*Collection, error) {
	if len(idColumns) == 0 {
		idColumns = []string{"id"}
	}
	if len(idColumns) != desc.NumIDs {
		return nil, fmt.Errorf("collection %s: %d id columns for a %d-key resource", table, len(idColumns), desc.NumIDs)
	}
	return &Collection{
		db:        db,
		desc:      desc,
		table:     table,
		idColumns: idColumns,
	}, nil
}

// IDColumns returns the identifying columns for rows of this
// collection.
func (c *Collection) IDColumns() []string {
	return c.idColumns
}

// Lookup fetches a single row by its identifying keys. Returns
// ErrNotFound when nothing matches and ErrTooManyResults when the lookup
// is ambiguous.
func (c *Collection) Lookup(ctx context.Context, ids []int64) (*Row, error) {
	if len(ids) != len(c.idColumns) {
		return nil, fmt.Errorf("%w: expected %d ids, got %d", ErrInvalidFilter, len(c.idColumns), len(ids))
	}

	var conditions []string
	var args []interface{}
	for i, col := range c.idColumns {
		conditions = append(conditions, fmt.Sprintf("%s = $%d", col, i+1))
		args = append(args, ids[i])
	}

	query := fmt.Sprintf("SELECT * FROM %s WHERE %s LIMIT 2", c.table, strings.Join(conditions, " AND "))
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, ConvertDBError(err)
	}
	defer rows.Close()

	scanned, err := scanRows(rows, c.idColumns)
	if err != nil {
		return nil, ConvertDBError(err)
	}

	switch len(scanned) {
	case 0:
		return nil, ErrNotFound
	case 1:
		return scanned[0], nil
	default:
		return nil, ErrTooManyResults
	}
}

// List fetches the rows matching the query plus the total count before
// slicing. Filters are validated against the storage schema; computed
// ordering expressions from the descriptor are appended as extra columns.
func (c *Collection) List(ctx context.Context, q Query) ([]*Row, int, error) {
	if q.Limit == 0 {
		return []*Row{}, 0, nil
	}

	where, args, err := c.buildWhere(q)
	if err != nil {
		return nil, 0, err
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s%s", c.table, where)
	var total int
	if err := c.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, ConvertDBError(err)
	}

	selectList := "*"
	for _, clause := range q.Ordering {
		if clause.Expression != "" {
			selectList += fmt.Sprintf(", (%s) AS %s", clause.Expression, clause.Alias)
		}
	}

	query := fmt.Sprintf("SELECT %s FROM %s%s%s", selectList, c.table, where, orderBy(q.Ordering))
	argn := len(args)
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argn+1, argn+2)
	args = append(args, q.Limit, q.Offset)

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, ConvertDBError(err)
	}
	defer rows.Close()

	scanned, err := scanRows(rows, c.idColumns)
	if err != nil {
		return nil, 0, ConvertDBError(err)
	}
	return scanned, total, nil
}

// Insert persists a new row and backfills its generated identifier.
func (c *Collection) Insert(ctx context.Context, row *Row) error {
	cols := row.Columns()
	names := make([]string, 0, len(cols))
	for name := range cols {
		if name == "id" {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	placeholders := make([]string, len(names))
	args := make([]interface{}, len(names))
	for i, name := range names {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = cols[name]
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING id",
		c.table, strings.Join(names, ", "), strings.Join(placeholders, ", "))

	var id int64
	if err := c.db.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return ConvertDBError(err)
	}
	cols["id"] = id
	return nil
}

// Update persists every non-identifier column of an existing row.
func (c *Collection) Update(ctx context.Context, row *Row) error {
	cols := row.Columns()
	names := make([]string, 0, len(cols))
	for name := range cols {
		if c.isIDColumn(name) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	assignments := make([]string, len(names))
	args := make([]interface{}, 0, len(names)+len(c.idColumns))
	for i, name := range names {
		assignments[i] = fmt.Sprintf("%s = $%d", name, i+1)
		args = append(args, cols[name])
	}

	var conditions []string
	for i, col := range c.idColumns {
		conditions = append(conditions, fmt.Sprintf("%s = $%d", col, len(names)+i+1))
		args = append(args, cols[col])
	}

	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s",
		c.table, strings.Join(assignments, ", "), strings.Join(conditions, " AND "))

	result, err := c.db.ExecContext(ctx, query, args...)
	if err != nil {
		return ConvertDBError(err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// buildWhere assembles the WHERE clause: user filters first, then the
// visibility predicate for the viewer.
func (c *Collection) buildWhere(q Query) (string, []interface{}, error) {
	var conditions []string
	var args []interface{}

	keys := make([]string, 0, len(q.Filters))
	for key := range q.Filters {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	n := 1
	for _, key := range keys {
		if !c.hasColumn(key) {
			return "", nil, fmt.Errorf("%w: unknown filter %s", ErrInvalidFilter, key)
		}
		if q.Filters[key] == nil {
			conditions = append(conditions, key+" IS NULL")
			continue
		}
		conditions = append(conditions, fmt.Sprintf("%s = $%d", key, n))
		args = append(args, q.Filters[key])
		n++
	}

	if q.Viewer.Authenticated() {
		conditions = append(conditions,
			fmt.Sprintf("(status = 'live' OR (status = 'hidden' AND owner_id = $%d))", n))
		args = append(args, q.Viewer.UserID)
	} else {
		conditions = append(conditions, "status = 'live'")
	}

	return " WHERE " + strings.Join(conditions, " AND "), args, nil
}

// hasColumn checks the descriptor's storage schema.
func (c *Collection) hasColumn(name string) bool {
	for _, col := range c.desc.StorageColumns {
		if col == name {
			return true
		}
	}
	return false
}

// isIDColumn reports whether name is one of the identifying columns.
func (c *Collection) isIDColumn(name string) bool {
	for _, col := range c.idColumns {
		if col == name {
			return true
		}
	}
	return false
}

// orderBy renders the ORDER BY clause for resolved ordering clauses.
func orderBy(clauses []resource.OrderClause) string {
	if len(clauses) == 0 {
		return ""
	}
	parts := make([]string, len(clauses))
	for i, clause := range clauses {
		col := clause.Column
		if clause.Expression != "" {
			col = clause.Alias
		}
		dir := "ASC"
		if clause.Desc {
			dir = "DESC"
		}
		parts[i] = col + " " + dir
	}
	return " ORDER BY " + strings.Join(parts, ", ")
}
