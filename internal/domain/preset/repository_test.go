package preset

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository_SaveAndGet(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	ownerID := uuid.New()
	repo := NewRepository(mock)

	t.Run("save upserts", func(t *testing.T) {
		p := &Preset{
			OwnerID: ownerID,
			Name:    "nubank",
			Mapping: map[string]string{"date": "data", "amount": "valor", "description": "descricao"},
		}

		id := uuid.New()
		mock.ExpectQuery(`INSERT INTO mapping_presets`).
			WithArgs(pgxmock.AnyArg(), ownerID, "nubank", pgxmock.AnyArg()).
			WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).
				AddRow(id, time.Now(), time.Now()))

		require.NoError(t, repo.Save(context.Background(), p))
		assert.Equal(t, id, p.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("get decodes mapping", func(t *testing.T) {
		mapping := []byte(`{"date":"data","amount":"valor"}`)
		mock.ExpectQuery(`SELECT id, owner_id, name, mapping`).
			WithArgs(ownerID, "nubank").
			WillReturnRows(pgxmock.NewRows([]string{"id", "owner_id", "name", "mapping", "created_at", "updated_at"}).
				AddRow(uuid.New(), ownerID, "nubank", mapping, time.Now(), time.Now()))

		p, err := repo.GetByName(context.Background(), ownerID, "nubank")
		require.NoError(t, err)
		assert.Equal(t, "data", p.Mapping["date"])
		assert.Equal(t, "valor", p.Mapping["amount"])
	})

	t.Run("get missing returns ErrNotFound", func(t *testing.T) {
		mock.ExpectQuery(`SELECT id, owner_id, name, mapping`).
			WithArgs(ownerID, "itau").
			WillReturnRows(pgxmock.NewRows([]string{"id", "owner_id", "name", "mapping", "created_at", "updated_at"}))

		_, err := repo.GetByName(context.Background(), ownerID, "itau")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestRepository_Delete(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	ownerID := uuid.New()
	repo := NewRepository(mock)

	mock.ExpectExec(`DELETE FROM mapping_presets`).
		WithArgs(ownerID, "nubank").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err = repo.Delete(context.Background(), ownerID, "nubank")
	assert.ErrorIs(t, err, ErrNotFound)
}
