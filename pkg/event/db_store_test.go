package event

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*DBStore, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewDBStore(db), mock
}

func eventRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "created_at", "created_by", "modified_at", "modified_by", "event_type", "event_data",
	})
}

func TestDBStoreInsert_GeneratesDefaults(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO events").
		WithArgs(
			sqlmock.AnyArg(), sqlmock.AnyArg(), SystemActor, sqlmock.AnyArg(), SystemActor,
			"Login Success", []byte(`{"clinician_uuid":"c1"}`),
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	e := &Event{EventType: "Login Success", Data: Data{"clinician_uuid": "c1"}}
	require.NoError(t, store.Insert(context.Background(), e))

	assert.NotEmpty(t, e.ID)
	assert.False(t, e.CreatedAt.IsZero())
	assert.Equal(t, e.CreatedAt, e.ModifiedAt)
	assert.Equal(t, SystemActor, e.CreatedBy)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDBStoreInsert_PreservesPresetFields(t *testing.T) {
	store, mock := newMockStore(t)

	at := time.Date(2019, 1, 2, 3, 4, 5, 0, time.UTC)
	e := &Event{
		ID:         "11111111-1111-1111-1111-111111111111",
		CreatedAt:  at,
		CreatedBy:  "alice",
		ModifiedAt: at,
		ModifiedBy: "bob",
		EventType:  "t",
		Data:       Data{},
	}

	mock.ExpectExec("INSERT INTO events").
		WithArgs(e.ID, at, "alice", at, "bob", "t", []byte(`{}`)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, store.Insert(context.Background(), e))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDBStoreInsert_DuplicateID(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO events").
		WillReturnError(&pq.Error{Code: "23505"})

	err := store.Insert(context.Background(), &Event{
		ID:        "11111111-1111-1111-1111-111111111111",
		EventType: "t",
		Data:      Data{},
	})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestDBStoreGet(t *testing.T) {
	store, mock := newMockStore(t)

	at := time.Date(2020, 6, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT (.+) FROM events WHERE id = \\$1").
		WithArgs("e1").
		WillReturnRows(eventRows().AddRow(
			"e1", at, "alice", at, "alice", "Login Success", []byte(`{"clinician_uuid":"c1"}`),
		))

	e, err := store.Get(context.Background(), "e1")
	require.NoError(t, err)
	assert.Equal(t, "e1", e.ID)
	assert.Equal(t, "Login Success", e.EventType)
	assert.Equal(t, Data{"clinician_uuid": "c1"}, e.Data)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDBStoreGet_NotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT (.+) FROM events WHERE id = \\$1").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDBStoreList_NoFilter(t *testing.T) {
	store, mock := newMockStore(t)

	at := time.Date(2020, 6, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT (.+) FROM events WHERE 1=1 ORDER BY seq").
		WillReturnRows(eventRows().
			AddRow("e1", at, "a", at, "a", "t1", []byte(`{}`)).
			AddRow("e2", at, "b", at, "b", "t2", []byte(`{"k":"v"}`)))

	events, err := store.List(context.Background(), Filter{})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "e1", events[0].ID)
	assert.Equal(t, "e2", events[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDBStoreList_AllFilters(t *testing.T) {
	store, mock := newMockStore(t)

	start := time.Date(2020, 6, 1, 0, 0, 0, 0, time.Local)
	end := time.Date(2020, 7, 1, 0, 0, 0, 0, time.Local)

	mock.ExpectQuery(`SELECT (.+) FROM events WHERE 1=1 AND created_by = \$1 AND event_type = \$2 AND modified_at >= \$3 AND modified_at < \$4 ORDER BY seq`).
		WithArgs("alice", "Login Success", start, end).
		WillReturnRows(eventRows())

	events, err := store.List(context.Background(), Filter{
		Creator:   "alice",
		EventType: "Login Success",
		Start:     &start,
		End:       &end,
	})
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDBStoreList_PartialFilterPlaceholders(t *testing.T) {
	store, mock := newMockStore(t)

	end := time.Date(2020, 7, 1, 0, 0, 0, 0, time.Local)

	// With only event_type and end date set, placeholders renumber from $1.
	mock.ExpectQuery(`SELECT (.+) FROM events WHERE 1=1 AND event_type = \$1 AND modified_at < \$2 ORDER BY seq`).
		WithArgs("Login Failure", end).
		WillReturnRows(eventRows())

	_, err := store.List(context.Background(), Filter{EventType: "Login Failure", End: &end})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDBStoreTruncate(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("TRUNCATE TABLE events").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, store.Truncate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
