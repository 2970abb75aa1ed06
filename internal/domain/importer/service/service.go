// Package service orchestrates the statement import pipeline: a session
// walks upload → map → preview → summary, invoking the tokenizer, column
// detector, normalizers, category matcher and fingerprint engine, and
// aggregates partial failures into a final summary.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rmacedo/extrato/internal/domain/importer/detector"
	"github.com/rmacedo/extrato/internal/domain/importer/fingerprint"
	"github.com/rmacedo/extrato/internal/domain/importer/matcher"
	"github.com/rmacedo/extrato/internal/domain/importer/normalizer"
	"github.com/rmacedo/extrato/internal/domain/importer/tokenizer"
	"github.com/rmacedo/extrato/pkg/metrics"
)

// Stage identifies a state of the import session.
type Stage string

const (
	StageUpload  Stage = "upload"
	StageMap     Stage = "map"
	StagePreview Stage = "preview"
	StageSummary Stage = "summary"
)

// Stage-fatal errors. These halt progression and must be surfaced before the
// user can act again. ErrEmptyInput is re-exported from the tokenizer so
// callers only depend on this package.
var (
	ErrEmptyInput        = tokenizer.ErrEmptyInput
	ErrMappingIncomplete = errors.New("date, amount and description must be mapped")
	ErrNothingSelected   = errors.New("no rows selected for import")
	ErrInvalidStage      = errors.New("operation not allowed in current stage")
)

// CategoryStore provides the known categories of an owner. Read once per
// upload; failures degrade to an empty category set.
type CategoryStore interface {
	ListCategories(ctx context.Context, ownerID uuid.UUID) ([]matcher.Category, error)
}

// NewTransaction carries the fields of one committed preview row.
type NewTransaction struct {
	Date          time.Time
	Amount        decimal.Decimal
	Description   string
	CategoryID    *uuid.UUID
	Type          string
	Wallet        string
	PaymentMethod string
	Status        string
}

// LedgerStore provides duplicate sources and row persistence. A store call
// either succeeds or fails atomically; retries belong to the store client.
type LedgerStore interface {
	ListFingerprintSources(ctx context.Context, ownerID uuid.UUID) ([]fingerprint.Source, error)
	InsertTransaction(ctx context.Context, ownerID uuid.UUID, tx NewTransaction) (uuid.UUID, error)
}

// HistoryRecord summarizes one commit attempt.
type HistoryRecord struct {
	Filename     string
	RowsTotal    int
	RowsImported int
	RowsFailed   int
	RowsSkipped  int
	Status       string // "success", "partial" or "failed"
	ErrorLog     string
}

// HistoryStore persists one record per commit attempt.
type HistoryStore interface {
	RecordImport(ctx context.Context, ownerID uuid.UUID, rec HistoryRecord) error
}

// PreviewRow is one reviewable batch row derived from the raw input once the
// mapping is fixed.
type PreviewRow struct {
	Date          time.Time
	Amount        decimal.Decimal
	Description   string
	Category      *matcher.Match
	Type          string
	Wallet        string
	PaymentMethod string
	Status        string
	Fingerprint   string
	IsDuplicate   bool
	Selected      bool
}

// DroppedRow records a raw row excluded from the preview, with the reason.
// Dropped rows never surface in the summary; they exist for diagnostics.
type DroppedRow struct {
	Row    int // 1-based position among the raw data rows
	Reason string
}

// ErrorDetail is one per-row commit failure, in original batch order.
type ErrorDetail struct {
	Row   int    `csv:"row"` // 1-based index within the selected set
	Error string `csv:"error"`
}

// Summary is the immutable terminal aggregate of a commit.
type Summary struct {
	Total        int
	Imported     int
	Duplicates   int
	Errors       int
	ErrorDetails []ErrorDetail
}

// Session holds the working data of one import and sequences the stages.
// A session serves a single owner and a single batch at a time; methods are
// not safe for concurrent use.
type Session struct {
	ownerID    uuid.UUID
	categories CategoryStore
	ledger     LedgerStore
	history    HistoryStore
	logger     *slog.Logger
	metrics    *metrics.Metrics

	stage     Stage
	filename  string
	table     *tokenizer.Table
	mapping   detector.Mapping
	catalog   []matcher.Category
	threshold float64
	preview   []*PreviewRow
	dropped   []DroppedRow
	summary   *Summary
}

// NewSession creates an import session for the given owner. The metrics
// handle may be nil.
func NewSession(ownerID uuid.UUID, categories CategoryStore, ledger LedgerStore, history HistoryStore, logger *slog.Logger, m *metrics.Metrics) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		ownerID:    ownerID,
		categories: categories,
		ledger:     ledger,
		history:    history,
		logger:     logger,
		metrics:    m,
		threshold:  matcher.MatchThreshold,
		stage:      StageUpload,
	}
}

// SetCategoryThreshold overrides the minimum similarity score for automatic
// category suggestions. Must be in (0, 1].
func (s *Session) SetCategoryThreshold(threshold float64) error {
	if threshold <= 0 || threshold > 1 {
		return fmt.Errorf("category threshold %v out of range (0, 1]", threshold)
	}
	s.threshold = threshold
	return nil
}

// Stage returns the current session stage.
func (s *Session) Stage() Stage { return s.stage }

// Upload tokenizes raw file content, auto-detects the column mapping and
// loads the owner's categories. Moves the session to the map stage.
func (s *Session) Upload(ctx context.Context, filename, content string) error {
	if s.stage != StageUpload {
		return ErrInvalidStage
	}

	table, err := tokenizer.Tokenize(content)
	if err != nil {
		return err
	}
	s.table = table
	s.filename = filename
	s.mapping = detector.Detect(table.Headers)

	catalog, err := s.categories.ListCategories(ctx, s.ownerID)
	if err != nil {
		// Matching degrades to "no suggestions" rather than blocking upload.
		s.logger.Warn("failed to load categories, continuing without suggestions",
			"owner", s.ownerID, "error", err)
		catalog = nil
	}
	s.catalog = catalog

	s.stage = StageMap
	s.logger.Info("file uploaded",
		"filename", filename, "rows", len(table.Rows), "headers", len(table.Headers))
	return nil
}

// Headers returns the source header names of the uploaded file.
func (s *Session) Headers() []string {
	if s.table == nil {
		return nil
	}
	return append([]string(nil), s.table.Headers...)
}

// Mapping returns a copy of the current column mapping.
func (s *Session) Mapping() detector.Mapping { return s.mapping.Clone() }

// SetMapping replaces the whole column mapping, e.g. from a saved preset.
func (s *Session) SetMapping(m detector.Mapping) error {
	if s.stage != StageMap {
		return ErrInvalidStage
	}
	s.mapping = m.Clone()
	return nil
}

// AssignColumn maps a single canonical field to a source header. An empty
// header clears the assignment.
func (s *Session) AssignColumn(field, header string) error {
	if s.stage != StageMap {
		return ErrInvalidStage
	}
	if !detector.Known(field) {
		return fmt.Errorf("unknown field %q", field)
	}
	if header == "" {
		delete(s.mapping, field)
		return nil
	}
	if !s.hasHeader(header) {
		return fmt.Errorf("header %q not present in file", header)
	}
	s.mapping[field] = header
	return nil
}

// GeneratePreview derives preview rows from the raw batch: normalizes dates
// and amounts, suggests categories, fingerprints every row and annotates
// internal and external duplicates. Rows with unparseable dates are dropped.
// Moves the session to the preview stage.
func (s *Session) GeneratePreview(ctx context.Context) error {
	if s.stage != StageMap {
		return ErrInvalidStage
	}
	if !s.mapping.Complete() {
		return ErrMappingIncomplete
	}

	s.preview = s.preview[:0]
	s.dropped = s.dropped[:0]

	for _, sk := range s.table.Skipped {
		// Line 1 of the tokenized input is the header.
		s.dropped = append(s.dropped, DroppedRow{Row: sk.Line - 1, Reason: "unreadable line: " + sk.Reason})
	}

	for i, row := range s.table.Rows {
		outcome := s.deriveRow(row)
		if outcome.err != nil {
			s.dropped = append(s.dropped, DroppedRow{Row: i + 1, Reason: outcome.err.Error()})
			continue
		}
		s.preview = append(s.preview, outcome.row)
	}

	fingerprints := make([]string, len(s.preview))
	for i, p := range s.preview {
		fingerprints[i] = p.Fingerprint
	}

	internal := fingerprint.MarkInternal(fingerprints)
	external := s.externalDuplicates(ctx, fingerprints)

	for i, p := range s.preview {
		p.IsDuplicate = internal[i] || external[i]
		p.Selected = !p.IsDuplicate
	}

	s.stage = StagePreview
	s.summary = nil
	s.logger.Info("preview generated",
		"rows", len(s.preview), "dropped", len(s.dropped))
	return nil
}

// rowOutcome is the per-row derivation result: either a preview row or the
// reason the row was dropped.
type rowOutcome struct {
	row *PreviewRow
	err error
}

func (s *Session) deriveRow(row tokenizer.Row) rowOutcome {
	rawDate := row.Get(s.mapping[detector.FieldDate])
	date, ok := normalizer.ParseDate(rawDate)
	if !ok {
		return rowOutcome{err: fmt.Errorf("unparseable date %q", rawDate)}
	}

	amount := normalizer.ParseAmount(row.Get(s.mapping[detector.FieldAmount]))
	description := strings.TrimSpace(row.Get(s.mapping[detector.FieldDescription]))

	p := &PreviewRow{
		Date:          date,
		Amount:        amount,
		Description:   description,
		Type:          strings.TrimSpace(row.Get(s.mapping[detector.FieldType])),
		Wallet:        strings.TrimSpace(row.Get(s.mapping[detector.FieldWallet])),
		PaymentMethod: strings.TrimSpace(row.Get(s.mapping[detector.FieldPaymentMethod])),
		Status:        strings.TrimSpace(row.Get(s.mapping[detector.FieldStatus])),
		Fingerprint:   fingerprint.Compute(date, amount, description),
	}

	if label := strings.TrimSpace(row.Get(s.mapping[detector.FieldCategory])); label != "" {
		p.Category = matcher.Best(label, s.catalog, s.threshold)
	} else {
		p.Category = matcher.BestKeyword(description, s.catalog)
	}

	return rowOutcome{row: p}
}

// externalDuplicates marks batch fingerprints already present in the ledger.
// A failing lookup degrades to an empty duplicate set: duplicates then go
// undetected for this preview, which beats aborting the whole import.
func (s *Session) externalDuplicates(ctx context.Context, fingerprints []string) []bool {
	sources, err := s.ledger.ListFingerprintSources(ctx, s.ownerID)
	if err != nil {
		s.logger.Warn("external duplicate lookup failed, continuing without it",
			"owner", s.ownerID, "error", err)
		return make([]bool, len(fingerprints))
	}
	return fingerprint.NewSet(sources).MarkExternal(fingerprints)
}

// PreviewRows returns copies of the current preview rows in batch order.
func (s *Session) PreviewRows() []PreviewRow {
	out := make([]PreviewRow, len(s.preview))
	for i, p := range s.preview {
		out[i] = *p
	}
	return out
}

// Dropped returns the rows excluded during preview generation.
func (s *Session) Dropped() []DroppedRow {
	return append([]DroppedRow(nil), s.dropped...)
}

// SetSelected toggles the inclusion flag of a preview row.
func (s *Session) SetSelected(index int, selected bool) error {
	if s.stage != StagePreview {
		return ErrInvalidStage
	}
	if index < 0 || index >= len(s.preview) {
		return fmt.Errorf("preview row %d out of range", index)
	}
	s.preview[index].Selected = selected
	return nil
}

// Back returns from the preview to the map stage for re-mapping.
func (s *Session) Back() error {
	if s.stage != StagePreview {
		return ErrInvalidStage
	}
	s.stage = StageMap
	return nil
}

// Reopen returns from the summary to the preview stage, e.g. to retry rows
// after a partial failure.
func (s *Session) Reopen() error {
	if s.stage != StageSummary {
		return ErrInvalidStage
	}
	s.stage = StagePreview
	return nil
}

// Commit persists every selected, non-duplicate preview row in original
// order. Rows flagged as duplicates never commit, even if re-selected.
// Per-row failures are recorded and never halt the loop; there is no batch
// transaction and partial success is a normal outcome. Writes one history
// record and moves the session to the summary stage.
func (s *Session) Commit(ctx context.Context) (*Summary, error) {
	if s.stage != StagePreview {
		return nil, ErrInvalidStage
	}

	var committable []*PreviewRow
	for _, p := range s.preview {
		if p.Selected && !p.IsDuplicate {
			committable = append(committable, p)
		}
	}
	if len(committable) == 0 {
		return nil, ErrNothingSelected
	}

	imported := 0
	var details []ErrorDetail
	for i, p := range committable {
		tx := NewTransaction{
			Date:          p.Date,
			Amount:        p.Amount,
			Description:   p.Description,
			Type:          p.Type,
			Wallet:        p.Wallet,
			PaymentMethod: p.PaymentMethod,
			Status:        p.Status,
		}
		if p.Category != nil {
			id := p.Category.CategoryID
			tx.CategoryID = &id
		}

		if _, err := s.ledger.InsertTransaction(ctx, s.ownerID, tx); err != nil {
			details = append(details, ErrorDetail{Row: i + 1, Error: err.Error()})
			continue
		}
		imported++
	}

	duplicates := 0
	for _, p := range s.preview {
		if p.IsDuplicate {
			duplicates++
		}
	}

	summary := &Summary{
		Total:        len(s.preview),
		Imported:     imported,
		Duplicates:   duplicates,
		Errors:       len(details),
		ErrorDetails: details,
	}

	status := commitStatus(imported, len(details))
	s.recordHistory(ctx, summary, status)
	s.observe(summary, status)

	s.summary = summary
	s.stage = StageSummary
	s.logger.Info("import committed",
		"filename", s.filename, "imported", imported,
		"failed", len(details), "duplicates", duplicates, "status", status)
	return summary, nil
}

func commitStatus(imported, failed int) string {
	switch {
	case failed == 0:
		return "success"
	case imported == 0:
		return "failed"
	default:
		return "partial"
	}
}

func (s *Session) recordHistory(ctx context.Context, summary *Summary, status string) {
	var log strings.Builder
	for _, d := range summary.ErrorDetails {
		fmt.Fprintf(&log, "row %d: %s\n", d.Row, d.Error)
	}
	rec := HistoryRecord{
		Filename:     s.filename,
		RowsTotal:    summary.Total,
		RowsImported: summary.Imported,
		RowsFailed:   summary.Errors,
		RowsSkipped:  summary.Total - summary.Imported,
		Status:       status,
		ErrorLog:     log.String(),
	}
	if err := s.history.RecordImport(ctx, s.ownerID, rec); err != nil {
		s.logger.Warn("failed to record import history", "filename", s.filename, "error", err)
	}
}

func (s *Session) observe(summary *Summary, status string) {
	if s.metrics == nil {
		return
	}
	s.metrics.ImportsTotal.WithLabelValues(status).Inc()
	s.metrics.RowsImported.Add(float64(summary.Imported))
	s.metrics.DuplicatesFlagged.Add(float64(summary.Duplicates))
}

// Summary returns the terminal aggregate of the last commit, or nil.
func (s *Session) Summary() *Summary { return s.summary }

// Reset discards all in-memory batch data and returns to the upload stage.
// Available from any stage.
func (s *Session) Reset() {
	s.table = nil
	s.filename = ""
	s.mapping = nil
	s.catalog = nil
	s.preview = nil
	s.dropped = nil
	s.summary = nil
	s.stage = StageUpload
}

func (s *Session) hasHeader(header string) bool {
	for _, h := range s.table.Headers {
		if h == header {
			return true
		}
	}
	return false
}
