package service

import (
	"fmt"

	"github.com/gocarina/gocsv"
)

// ErrorReportCSV renders the commit error details as a two-column CSV
// (row, error) for user download. Only available in the summary stage.
func (s *Session) ErrorReportCSV() (string, error) {
	if s.stage != StageSummary || s.summary == nil {
		return "", ErrInvalidStage
	}
	details := s.summary.ErrorDetails
	if details == nil {
		details = []ErrorDetail{}
	}
	out, err := gocsv.MarshalString(&details)
	if err != nil {
		return "", fmt.Errorf("marshal error report: %w", err)
	}
	return out, nil
}
