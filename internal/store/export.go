package store

import (
	"fmt"
	"time"

	"github.com/eduai/assistant/internal/model"
)

// ExportAll builds an export snapshot of every stored submission.
func (s *Store) ExportAll() (model.SubmissionExport, error) {
	subs, err := s.ListSubmissions()
	if err != nil {
		return model.SubmissionExport{}, fmt.Errorf("list submissions: %w", err)
	}
	return model.SubmissionExport{
		GeneratedAt: time.Now().UTC(),
		Count:       len(subs),
		Submissions: subs,
	}, nil
}
