package history

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository_Record(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	ownerID := uuid.New()
	repo := NewRepository(mock)

	rec := &Record{
		OwnerID:      ownerID,
		FileName:     "extrato.csv",
		Status:       "partial",
		RowsTotal:    4,
		RowsImported: 2,
		RowsFailed:   1,
		RowsSkipped:  2,
		ErrorLog:     "row 2: insert failed\n",
	}

	mock.ExpectQuery(`INSERT INTO import_history`).
		WithArgs(pgxmock.AnyArg(), ownerID, "extrato.csv", "partial", 4, 2, 1, 2, rec.ErrorLog).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	require.NoError(t, repo.Record(context.Background(), rec))
	assert.NotEqual(t, uuid.Nil, rec.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_List(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	ownerID := uuid.New()
	repo := NewRepository(mock)

	rows := pgxmock.NewRows([]string{
		"id", "owner_id", "file_name", "status",
		"rows_total", "rows_imported", "rows_failed", "rows_skipped",
		"error_log", "created_at",
	}).AddRow(uuid.New(), ownerID, "extrato.csv", "success", 3, 3, 0, 0, "", time.Now())

	mock.ExpectQuery(`SELECT id, owner_id, file_name`).
		WithArgs(ownerID, 20).
		WillReturnRows(rows)

	records, err := repo.List(context.Background(), ownerID, 20)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "success", records[0].Status)
	assert.Equal(t, 3, records[0].RowsImported)
	assert.NoError(t, mock.ExpectationsWereMet())
}
