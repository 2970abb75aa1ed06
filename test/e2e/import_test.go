// Package e2etest runs a real statement export through the whole import
// pipeline: tokenizing, column detection, normalization, category matching,
// duplicate flagging and commit.
package e2etest

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmacedo/extrato/internal/domain/importer/detector"
	"github.com/rmacedo/extrato/internal/domain/importer/fingerprint"
	"github.com/rmacedo/extrato/internal/domain/importer/matcher"
	"github.com/rmacedo/extrato/internal/domain/importer/service"
)

type memCategories struct {
	cats []matcher.Category
}

func (m *memCategories) ListCategories(_ context.Context, _ uuid.UUID) ([]matcher.Category, error) {
	return m.cats, nil
}

type memLedger struct {
	sources  []fingerprint.Source
	inserted []service.NewTransaction
}

func (m *memLedger) ListFingerprintSources(_ context.Context, _ uuid.UUID) ([]fingerprint.Source, error) {
	return m.sources, nil
}

func (m *memLedger) InsertTransaction(_ context.Context, _ uuid.UUID, tx service.NewTransaction) (uuid.UUID, error) {
	m.inserted = append(m.inserted, tx)
	m.sources = append(m.sources, fingerprint.Source{
		Date: tx.Date, Amount: tx.Amount, Description: tx.Description,
	})
	return uuid.New(), nil
}

type memHistory struct {
	recs []service.HistoryRecord
}

func (m *memHistory) RecordImport(_ context.Context, _ uuid.UUID, rec service.HistoryRecord) error {
	m.recs = append(m.recs, rec)
	return nil
}

// TestNubankCSVImport imports a semicolon-delimited export with a UTF-8 BOM,
// Brazilian date and amount formats, a repeated row and one broken line.
func TestNubankCSVImport(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "extrato_nubank.csv"))
	require.NoError(t, err)

	catalog := &memCategories{cats: []matcher.Category{
		{ID: uuid.New(), Name: "Mercado", Type: "expense"},
		{ID: uuid.New(), Name: "Transporte", Type: "expense"},
		{ID: uuid.New(), Name: "Saúde", Type: "expense"},
	}}
	ledger := &memLedger{}
	history := &memHistory{}

	session := service.NewSession(uuid.New(), catalog, ledger, history, slog.Default(), nil)
	ctx := context.Background()

	require.NoError(t, session.Upload(ctx, "extrato_nubank.csv", string(data)))

	mapping := session.Mapping()
	assert.Equal(t, "Data", mapping[detector.FieldDate])
	assert.Equal(t, "Valor", mapping[detector.FieldAmount])
	assert.Equal(t, "Descrição", mapping[detector.FieldDescription])
	assert.Equal(t, "Categoria", mapping[detector.FieldCategory])

	require.NoError(t, session.GeneratePreview(ctx))

	rows := session.PreviewRows()
	require.Len(t, rows, 4)

	dropped := session.Dropped()
	require.Len(t, dropped, 1)
	assert.Equal(t, 5, dropped[0].Row)

	// Semicolon delimiter keeps the comma inside the description intact.
	assert.Equal(t, "MERCADO EXTRA, LOJA 12", rows[0].Description)
	assert.True(t, rows[0].Amount.Equal(decimal.RequireFromString("1234.56")))
	require.NotNil(t, rows[0].Category)
	assert.Equal(t, "Mercado", rows[0].Category.CategoryName)

	require.NotNil(t, rows[1].Category)
	assert.Equal(t, "Transporte", rows[1].Category.CategoryName)

	// A repeated row flags every occurrence, first one included.
	assert.True(t, rows[1].IsDuplicate)
	assert.False(t, rows[1].Selected)
	assert.True(t, rows[2].IsDuplicate)
	assert.False(t, rows[2].Selected)

	// Explicit label wins over the description keywords.
	require.NotNil(t, rows[3].Category)
	assert.Equal(t, "Saúde", rows[3].Category.CategoryName)
	assert.Equal(t, 1.0, rows[3].Category.Score)

	summary, err := session.Commit(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, summary.Total)
	assert.Equal(t, 2, summary.Imported)
	assert.Equal(t, 2, summary.Duplicates)
	assert.Equal(t, 0, summary.Errors)
	assert.Len(t, ledger.inserted, 2)

	require.Len(t, history.recs, 1)
	assert.Equal(t, "success", history.recs[0].Status)
	assert.Equal(t, service.StageSummary, session.Stage())
}

// TestReimportFlagsEverything re-imports the same file against the ledger
// populated by the first run. Every parseable row must come back flagged.
func TestReimportFlagsEverything(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "extrato_nubank.csv"))
	require.NoError(t, err)

	ledger := &memLedger{}
	ownerID := uuid.New()
	ctx := context.Background()

	first := service.NewSession(ownerID, &memCategories{}, ledger, &memHistory{}, slog.Default(), nil)
	require.NoError(t, first.Upload(ctx, "extrato_nubank.csv", string(data)))
	require.NoError(t, first.GeneratePreview(ctx))
	_, err = first.Commit(ctx)
	require.NoError(t, err)

	second := service.NewSession(ownerID, &memCategories{}, ledger, &memHistory{}, slog.Default(), nil)
	require.NoError(t, second.Upload(ctx, "extrato_nubank.csv", string(data)))
	require.NoError(t, second.GeneratePreview(ctx))

	for _, row := range second.PreviewRows() {
		assert.True(t, row.IsDuplicate)
		assert.False(t, row.Selected)
	}

	_, err = second.Commit(ctx)
	assert.ErrorIs(t, err, service.ErrNothingSelected)
}
