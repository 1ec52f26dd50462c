package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"labqc/internal/model"
	"labqc/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestSample(t model.SampleType) *model.Sample {
	return &model.Sample{
		SampleType:  t,
		CollectedAt: time.Now().UTC(),
		AssignedTo:  "EMP001",
	}
}

func TestAllocateSequential(t *testing.T) {
	repo := newFakeSampleRepo()
	allocator := NewBatchAllocator(repo)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		sample := newTestSample(model.SampleWhiteSugar)
		require.NoError(t, allocator.AllocateAndCreate(ctx, sample))
		assert.Equal(t, fmt.Sprintf("W%03d", i), sample.BatchNumber)
	}
}

// Wash water (WW) and white sugar (W) share a leading letter; their
// sequences must stay independent.
func TestAllocatePrefixesDoNotCollide(t *testing.T) {
	repo := newFakeSampleRepo()
	allocator := NewBatchAllocator(repo)
	ctx := context.Background()

	ww := newTestSample(model.SampleWashWater)
	require.NoError(t, allocator.AllocateAndCreate(ctx, ww))
	assert.Equal(t, "WW001", ww.BatchNumber)

	w := newTestSample(model.SampleWhiteSugar)
	require.NoError(t, allocator.AllocateAndCreate(ctx, w))
	assert.Equal(t, "W001", w.BatchNumber)

	w2 := newTestSample(model.SampleWhiteSugar)
	require.NoError(t, allocator.AllocateAndCreate(ctx, w2))
	assert.Equal(t, "W002", w2.BatchNumber)

	ww2 := newTestSample(model.SampleWashWater)
	require.NoError(t, allocator.AllocateAndCreate(ctx, ww2))
	assert.Equal(t, "WW002", ww2.BatchNumber)
}

func TestAllocateUnknownType(t *testing.T) {
	allocator := NewBatchAllocator(newFakeSampleRepo())

	err := allocator.AllocateAndCreate(context.Background(), newTestSample("molasses"))
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))

	_, err = allocator.NextBatchNumber(context.Background(), "molasses")
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
}

func TestNextBatchNumberZeroPadded(t *testing.T) {
	repo := newFakeSampleRepo()
	allocator := NewBatchAllocator(repo)
	ctx := context.Background()

	next, err := allocator.NextBatchNumber(ctx, model.SampleCondensate)
	require.NoError(t, err)
	assert.Equal(t, "C001", next)

	require.NoError(t, allocator.AllocateAndCreate(ctx, newTestSample(model.SampleCondensate)))
	next, err = allocator.NextBatchNumber(ctx, model.SampleCondensate)
	require.NoError(t, err)
	assert.Equal(t, "C002", next)
}

// conflictingSampleRepo rejects the first n inserts with a duplicate-key
// error, simulating a concurrent writer winning the race.
type conflictingSampleRepo struct {
	*fakeSampleRepo
	mu        sync.Mutex
	conflicts int
}

func (c *conflictingSampleRepo) Create(ctx context.Context, sample *model.Sample) error {
	c.mu.Lock()
	remaining := c.conflicts
	if remaining > 0 {
		c.conflicts--
	}
	c.mu.Unlock()
	if remaining > 0 {
		return gorm.ErrDuplicatedKey
	}
	return c.fakeSampleRepo.Create(ctx, sample)
}

func TestAllocateRetriesOnConflict(t *testing.T) {
	repo := &conflictingSampleRepo{fakeSampleRepo: newFakeSampleRepo(), conflicts: 2}
	allocator := NewBatchAllocator(repo)

	sample := newTestSample(model.SampleRawSugar)
	require.NoError(t, allocator.AllocateAndCreate(context.Background(), sample))
	assert.Equal(t, "R001", sample.BatchNumber)
}

func TestAllocateExhaustion(t *testing.T) {
	repo := &conflictingSampleRepo{fakeSampleRepo: newFakeSampleRepo(), conflicts: maxAllocationAttempts}
	allocator := NewBatchAllocator(repo)

	err := allocator.AllocateAndCreate(context.Background(), newTestSample(model.SampleRawSugar))
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindAllocationExhausted))
}

// All goroutines race on a single sample type, so every conflict is a real
// same-prefix collision resolved by the retry loop. Waves of
// maxAllocationAttempts goroutines allocating once each: a goroutine can
// lose the race at most once per competing winner, so the retry bound is
// never exceeded.
func TestAllocateConcurrentSameType(t *testing.T) {
	repo := newFakeSampleRepo()
	allocator := NewBatchAllocator(repo)
	ctx := context.Background()

	const waves = 4
	for w := 0; w < waves; w++ {
		var wg sync.WaitGroup
		errs := make(chan error, maxAllocationAttempts)
		for g := 0; g < maxAllocationAttempts; g++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := allocator.AllocateAndCreate(ctx, newTestSample(model.SampleRawSugar)); err != nil {
					errs <- err
				}
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			t.Fatalf("allocation failed: %v", err)
		}
	}

	total := waves * maxAllocationAttempts
	seen := make(map[string]bool)
	for i := 1; i <= total; i++ {
		batch := fmt.Sprintf("R%03d", i)
		_, err := repo.GetByBatchNumber(ctx, batch)
		require.NoError(t, err, "missing batch %s", batch)
		assert.False(t, seen[batch])
		seen[batch] = true
	}
	assert.Len(t, seen, total)
}

// Each goroutine allocates on its own sample type. Sequences never cross
// prefixes, so every allocation must land a distinct batch number without
// retries interfering across types.
func TestAllocateConcurrentPerType(t *testing.T) {
	repo := newFakeSampleRepo()
	allocator := NewBatchAllocator(repo)
	ctx := context.Background()

	const perType = 20
	types := model.SampleTypes()

	var wg sync.WaitGroup
	errs := make(chan error, len(types)*perType)
	for _, st := range types {
		wg.Add(1)
		go func(st model.SampleType) {
			defer wg.Done()
			for i := 0; i < perType; i++ {
				if err := allocator.AllocateAndCreate(ctx, newTestSample(st)); err != nil {
					errs <- err
				}
			}
		}(st)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("allocation failed: %v", err)
	}

	seen := make(map[string]bool)
	for _, st := range types {
		for i := 1; i <= perType; i++ {
			batch := fmt.Sprintf("%s%03d", st.BatchPrefix(), i)
			_, err := repo.GetByBatchNumber(ctx, batch)
			require.NoError(t, err, "missing batch %s", batch)
			assert.False(t, seen[batch])
			seen[batch] = true
		}
	}
	assert.Len(t, seen, len(types)*perType)
}
