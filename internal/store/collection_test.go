package store

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mliu7/trackrest/internal/resource"
	"github.com/mliu7/trackrest/internal/trackable"
)

func setupCollection(t *testing.T) (*Collection, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	desc := &resource.Descriptor{
		Name: "jobs",
		Fields: []resource.Field{
			{Name: "title", Kind: resource.FieldScalar},
		},
		OrderAliases: map[string]resource.OrderAlias{
			"duration": {Expression: "end_time - start_time"},
		},
		StorageColumns: []string{"id", "title", "organization_id", "status", "owner_id", "start_time", "end_time"},
		NumIDs:         1,
	}
	col, err := NewCollection(db, desc, "jobs", nil)
	require.NoError(t, err)

	return col, mock, func() { db.Close() }
}

func TestNewCollectionIDCountMismatch(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	desc := &resource.Descriptor{Name: "memberships", NumIDs: 2}
	_, err = NewCollection(db, desc, "memberships", []string{"id"})
	assert.Error(t, err)
}

func TestCollectionLookup(t *testing.T) {
	col, mock, done := setupCollection(t)
	defer done()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM jobs WHERE id = $1 LIMIT 2")).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "status"}).
			AddRow(int64(42), "Engineer", "live"))

	row, err := col.Lookup(context.Background(), []int64{42})
	require.NoError(t, err)
	assert.Equal(t, int64(42), row.ID())

	title, _ := row.Attr("title")
	assert.Equal(t, "Engineer", title)
	assert.Equal(t, trackable.Live, row.Visibility())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCollectionLookupNotFound(t *testing.T) {
	col, mock, done := setupCollection(t)
	defer done()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM jobs WHERE id = $1 LIMIT 2")).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := col.Lookup(context.Background(), []int64{42})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCollectionLookupAmbiguous(t *testing.T) {
	col, mock, done := setupCollection(t)
	defer done()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM jobs WHERE id = $1 LIMIT 2")).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)).AddRow(int64(42)))

	_, err := col.Lookup(context.Background(), []int64{42})
	assert.ErrorIs(t, err, ErrTooManyResults)
}

func TestCollectionLookupWrongIDCount(t *testing.T) {
	col, _, done := setupCollection(t)
	defer done()

	_, err := col.Lookup(context.Background(), []int64{1, 2})
	assert.ErrorIs(t, err, ErrInvalidFilter)
}

func TestCollectionListNullFilter(t *testing.T) {
	col, mock, done := setupCollection(t)
	defer done()

	where := "WHERE end_time IS NULL AND status = 'live'"
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM jobs "+where)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM jobs "+where+" ORDER BY id DESC LIMIT $1 OFFSET $2")).
		WithArgs(100, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title"}).AddRow(int64(3), "Open-ended"))

	rows, total, err := col.List(context.Background(), Query{
		Filters:  map[string]interface{}{"end_time": nil},
		Ordering: resource.DefaultOrdering(),
		Limit:    100,
		Viewer:   trackable.Anonymous(),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, rows, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCollectionListAnonymous(t *testing.T) {
	col, mock, done := setupCollection(t)
	defer done()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM jobs WHERE status = 'live'")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM jobs WHERE status = 'live' ORDER BY id DESC LIMIT $1 OFFSET $2")).
		WithArgs(100, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title"}).
			AddRow(int64(2), "B").AddRow(int64(1), "A"))

	rows, total, err := col.List(context.Background(), Query{
		Ordering: resource.DefaultOrdering(),
		Limit:    100,
		Viewer:   trackable.Anonymous(),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(2), rows[0].ID())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCollectionListOwnerSeesHidden(t *testing.T) {
	col, mock, done := setupCollection(t)
	defer done()

	where := "WHERE organization_id = $1 AND (status = 'live' OR (status = 'hidden' AND owner_id = $2))"
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM jobs "+where)).
		WithArgs("7", int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM jobs "+where+" ORDER BY id DESC LIMIT $3 OFFSET $4")).
		WithArgs("7", int64(9), 20, 10).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(5)))

	rows, total, err := col.List(context.Background(), Query{
		Filters:  map[string]interface{}{"organization_id": "7"},
		Ordering: resource.DefaultOrdering(),
		Limit:    20,
		Offset:   10,
		Viewer:   trackable.Identity{UserID: 9},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, rows, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCollectionListComputedOrdering(t *testing.T) {
	col, mock, done := setupCollection(t)
	defer done()

	clauses, err := resource.ResolveOrdering([]string{"-duration"}, col.desc)
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM jobs WHERE status = 'live'")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT *, (end_time - start_time) AS duration_for_api_ordering FROM jobs WHERE status = 'live' ORDER BY duration_for_api_ordering DESC LIMIT $1 OFFSET $2")).
		WithArgs(50, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))

	_, _, err = col.List(context.Background(), Query{
		Ordering: clauses,
		Limit:    50,
		Viewer:   trackable.Anonymous(),
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCollectionListZeroLimit(t *testing.T) {
	col, mock, done := setupCollection(t)
	defer done()

	// A zero limit returns an empty page without touching the database.
	rows, total, err := col.List(context.Background(), Query{Viewer: trackable.Anonymous()})
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Zero(t, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCollectionListUnknownFilter(t *testing.T) {
	col, _, done := setupCollection(t)
	defer done()

	_, _, err := col.List(context.Background(), Query{
		Filters: map[string]interface{}{"bogus": "x"},
		Limit:   10,
		Viewer:  trackable.Anonymous(),
	})
	assert.ErrorIs(t, err, ErrInvalidFilter)
}

func TestCollectionInsert(t *testing.T) {
	col, mock, done := setupCollection(t)
	defer done()

	row := NewRow(nil)
	row.SetAttr("title", "Engineer")
	row.SetAttr("status", "live")

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO jobs (status, title) VALUES ($1, $2) RETURNING id")).
		WithArgs("live", "Engineer").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	require.NoError(t, col.Insert(context.Background(), row))
	assert.Equal(t, int64(7), row.ID())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCollectionUpdate(t *testing.T) {
	col, mock, done := setupCollection(t)
	defer done()

	row := NewRow(nil)
	row.SetAttr("id", int64(7))
	row.SetAttr("title", "Engineer")

	mock.ExpectExec(regexp.QuoteMeta("UPDATE jobs SET title = $1 WHERE id = $2")).
		WithArgs("Engineer", int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, col.Update(context.Background(), row))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCollectionUpdateMissingRow(t *testing.T) {
	col, mock, done := setupCollection(t)
	defer done()

	row := NewRow(nil)
	row.SetAttr("id", int64(7))
	row.SetAttr("title", "Engineer")

	mock.ExpectExec(regexp.QuoteMeta("UPDATE jobs SET title = $1 WHERE id = $2")).
		WithArgs("Engineer", int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, col.Update(context.Background(), row), ErrNotFound)
}

func TestConvertDBError(t *testing.T) {
	assert.Nil(t, ConvertDBError(nil))
	assert.ErrorIs(t, ConvertDBError(sql.ErrNoRows), ErrNotFound)
	assert.ErrorIs(t, ConvertDBError(&pgconn.PgError{Code: "23505"}), ErrUniqueViolation)
	assert.ErrorIs(t, ConvertDBError(&pgconn.PgError{Code: "23503"}), ErrForeignKeyViolation)

	other := assert.AnError
	assert.Equal(t, other, ConvertDBError(other))
}
