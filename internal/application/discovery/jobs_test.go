package discovery

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ChemSource/internal/domain/supplier"
	"github.com/turtacn/ChemSource/pkg/errors"
)

func TestMemoryJobStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryJobStore(time.Hour)
	now := time.Now()

	job := &supplier.SearchJob{ID: "j1", Status: supplier.JobPending, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, store.Create(ctx, job))
	assert.True(t, errors.IsCode(store.Create(ctx, job), errors.ErrCodeConflict))

	job.Status = supplier.JobRunning
	got, err := store.Get(ctx, "j1")
	require.NoError(t, err)
	assert.Equal(t, supplier.JobPending, got.Status, "store must hold a copy")

	require.NoError(t, store.Update(ctx, job))
	got, err = store.Get(ctx, "j1")
	require.NoError(t, err)
	assert.Equal(t, supplier.JobRunning, got.Status)

	_, err = store.Get(ctx, "missing")
	assert.True(t, errors.IsNotFound(err))
	assert.True(t, errors.IsNotFound(store.Update(ctx, &supplier.SearchJob{ID: "missing"})))
}

func TestMemoryJobStore_Expiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryJobStore(time.Minute)
	clock := time.Now()
	store.now = func() time.Time { return clock }

	require.NoError(t, store.Create(ctx, &supplier.SearchJob{ID: "old", UpdatedAt: clock}))
	clock = clock.Add(2 * time.Minute)

	_, err := store.Get(ctx, "old")
	assert.True(t, errors.IsNotFound(err))

	require.NoError(t, store.Create(ctx, &supplier.SearchJob{ID: "new", UpdatedAt: clock}))
	assert.NotContains(t, store.jobs, "old")
}

func TestJobStatus_Terminal(t *testing.T) {
	assert.False(t, supplier.JobPending.Terminal())
	assert.False(t, supplier.JobRunning.Terminal())
	assert.True(t, supplier.JobCompleted.Terminal())
	assert.True(t, supplier.JobFailed.Terminal())
}

//Personal.AI order the ending
