package commands

import (
	"context"

	"github.com/google/uuid"

	"github.com/rmacedo/extrato/internal/domain/category"
	"github.com/rmacedo/extrato/internal/domain/history"
	"github.com/rmacedo/extrato/internal/domain/importer/fingerprint"
	"github.com/rmacedo/extrato/internal/domain/importer/matcher"
	"github.com/rmacedo/extrato/internal/domain/importer/service"
	"github.com/rmacedo/extrato/internal/domain/ledger"
)

// categoryAdapter adapts category.Repository to the session's CategoryStore.
type categoryAdapter struct {
	repo *category.Repository
}

func newCategoryAdapter(repo *category.Repository) service.CategoryStore {
	return &categoryAdapter{repo: repo}
}

func (a *categoryAdapter) ListCategories(ctx context.Context, ownerID uuid.UUID) ([]matcher.Category, error) {
	categories, err := a.repo.ListActive(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	out := make([]matcher.Category, len(categories))
	for i, c := range categories {
		out[i] = matcher.Category{ID: c.ID, Name: c.Name, Type: c.Type}
	}
	return out, nil
}

// ledgerAdapter adapts ledger.Repository to the session's LedgerStore,
// stamping every inserted row with the current import run.
type ledgerAdapter struct {
	repo     *ledger.Repository
	importID uuid.UUID
}

func newLedgerAdapter(repo *ledger.Repository, importID uuid.UUID) service.LedgerStore {
	return &ledgerAdapter{repo: repo, importID: importID}
}

func (a *ledgerAdapter) ListFingerprintSources(ctx context.Context, ownerID uuid.UUID) ([]fingerprint.Source, error) {
	sources, err := a.repo.ListFingerprintSources(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	out := make([]fingerprint.Source, len(sources))
	for i, s := range sources {
		out[i] = fingerprint.Source{Date: s.Date, Amount: s.Amount, Description: s.Description}
	}
	return out, nil
}

func (a *ledgerAdapter) InsertTransaction(ctx context.Context, ownerID uuid.UUID, tx service.NewTransaction) (uuid.UUID, error) {
	row := &ledger.Transaction{
		OwnerID:       ownerID,
		Date:          tx.Date,
		Amount:        tx.Amount,
		Description:   tx.Description,
		Type:          tx.Type,
		Wallet:        tx.Wallet,
		PaymentMethod: tx.PaymentMethod,
		Status:        tx.Status,
		CategoryID:    tx.CategoryID,
		ImportID:      &a.importID,
	}
	if err := a.repo.Insert(ctx, row); err != nil {
		return uuid.Nil, err
	}
	return row.ID, nil
}

// historyAdapter adapts history.Repository to the session's HistoryStore.
// The record ID doubles as the import run ID so transactions can be traced
// back to the run that created them.
type historyAdapter struct {
	repo     *history.Repository
	importID uuid.UUID
}

func newHistoryAdapter(repo *history.Repository, importID uuid.UUID) service.HistoryStore {
	return &historyAdapter{repo: repo, importID: importID}
}

func (a *historyAdapter) RecordImport(ctx context.Context, ownerID uuid.UUID, rec service.HistoryRecord) error {
	return a.repo.Record(ctx, &history.Record{
		ID:           a.importID,
		OwnerID:      ownerID,
		FileName:     rec.Filename,
		Status:       rec.Status,
		RowsTotal:    rec.RowsTotal,
		RowsImported: rec.RowsImported,
		RowsFailed:   rec.RowsFailed,
		RowsSkipped:  rec.RowsSkipped,
		ErrorLog:     rec.ErrorLog,
	})
}
