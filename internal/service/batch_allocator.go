package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"labqc/internal/model"
	"labqc/internal/repository"
	"labqc/pkg/apperror"

	"gorm.io/gorm"
)

// maxAllocationAttempts bounds the derive-and-insert retry loop. Exhausting
// it is a data-integrity concern and is always logged.
const maxAllocationAttempts = 5

// BatchAllocator issues batch numbers of the form <prefix><3-digit
// sequence>, one sequence per sample-type prefix. The unique index on
// batch_number is the final arbiter: two concurrent creations can derive the
// same candidate, so the insert is retried on duplicate-key conflict with a
// freshly derived maximum each time.
type BatchAllocator struct {
	samples repository.SampleRepository
}

func NewBatchAllocator(samples repository.SampleRepository) *BatchAllocator {
	return &BatchAllocator{samples: samples}
}

// NextBatchNumber derives the next candidate for the prefix without
// inserting. Exposed for display purposes; AllocateAndCreate is the only
// path that guarantees uniqueness.
func (a *BatchAllocator) NextBatchNumber(ctx context.Context, sampleType model.SampleType) (string, error) {
	prefix := sampleType.BatchPrefix()
	if prefix == "" {
		return "", apperror.Validation("unknown sample type %q", sampleType)
	}
	max, err := a.samples.MaxBatchSequence(ctx, prefix)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%03d", prefix, max+1), nil
}

// AllocateAndCreate assigns sample.BatchNumber and persists the sample.
// On a duplicate-key conflict the maximum is re-derived and the insert
// retried, up to maxAllocationAttempts; beyond that the operation fails
// with AllocationExhausted and is never silently duplicated.
func (a *BatchAllocator) AllocateAndCreate(ctx context.Context, sample *model.Sample) error {
	prefix := sample.SampleType.BatchPrefix()
	if prefix == "" {
		return apperror.Validation("unknown sample type %q", sample.SampleType)
	}

	for attempt := 1; attempt <= maxAllocationAttempts; attempt++ {
		max, err := a.samples.MaxBatchSequence(ctx, prefix)
		if err != nil {
			return err
		}
		sample.BatchNumber = fmt.Sprintf("%s%03d", prefix, max+1)

		err = a.samples.Create(ctx, sample)
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
		log.Printf("batch allocation conflict on %s (attempt %d/%d), retrying",
			sample.BatchNumber, attempt, maxAllocationAttempts)
	}

	log.Printf("DATA INTEGRITY: batch allocation exhausted %d attempts for prefix %s",
		maxAllocationAttempts, prefix)
	return apperror.AllocationExhausted(
		"could not allocate a unique batch number for prefix %s after %d attempts",
		prefix, maxAllocationAttempts)
}
