package service

import (
	"context"

	"github.com/fxstream-enrichment-pipeline/internal/domain/deadletter"
)

// DeadLetterServiceImpl implements the DeadLetterService interface
type DeadLetterServiceImpl struct {
	deadLetterRepo deadletter.Repository
}

// NewDeadLetterService creates a new dead-letter service
func NewDeadLetterService(deadLetterRepo deadletter.Repository) DeadLetterService {
	return &DeadLetterServiceImpl{
		deadLetterRepo: deadLetterRepo,
	}
}

// List returns one page of archived records plus the total count.
func (s *DeadLetterServiceImpl) List(ctx context.Context, page, perPage int) ([]*deadletter.Record, int64, error) {
	offset := (page - 1) * perPage

	records, err := s.deadLetterRepo.List(ctx, perPage, offset)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.deadLetterRepo.Count(ctx)
	if err != nil {
		return nil, 0, err
	}

	return records, total, nil
}
