package repositories

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/temptedwithouta/eazy-career-backend/domain"
)

func TestOTPRepositoryImpl_UpsertReplacesCode(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOTPRepository(db)
	ctx := context.Background()

	first, err := repo.Upsert(ctx, 3, "111111", time.Now().Add(15*time.Minute))
	require.NoError(t, err)

	second, err := repo.Upsert(ctx, 3, "222222", time.Now().Add(15*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "222222", second.Code)

	var count int64
	db.Model(&DBOTP{}).Where("user_id = ?", 3).Count(&count)
	assert.Equal(t, int64(1), count)

	found, err := repo.FindByUserID(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "222222", found.Code)
}

func TestOTPRepositoryImpl_Delete(t *testing.T) {
	repo := NewOTPRepository(setupTestDB(t))
	ctx := context.Background()

	otp, err := repo.Upsert(ctx, 4, "123456", time.Now().Add(time.Minute))
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, otp.ID, "123456"))
	_, err = repo.FindByUserID(ctx, 4)
	assert.ErrorIs(t, err, domain.ErrOTPNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, otp.ID, "123456"), domain.ErrOTPNotFound)
}

func TestOTPRepositoryImpl_DeleteKeepsResentCode(t *testing.T) {
	repo := NewOTPRepository(setupTestDB(t))
	ctx := context.Background()

	old, err := repo.Upsert(ctx, 5, "111111", time.Now().Add(time.Minute))
	require.NoError(t, err)
	_, err = repo.Upsert(ctx, 5, "222222", time.Now().Add(time.Minute))
	require.NoError(t, err)

	assert.ErrorIs(t, repo.Delete(ctx, old.ID, "111111"), domain.ErrOTPNotFound)

	found, err := repo.FindByUserID(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, "222222", found.Code)
}

func TestOTPRepositoryImpl_ConcurrentUpsert(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOTPRepository(db)
	ctx := context.Background()

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := repo.Upsert(ctx, 9, fmt.Sprintf("%06d", i), time.Now().Add(time.Minute))
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	var count int64
	db.Model(&DBOTP{}).Where("user_id = ?", 9).Count(&count)
	assert.Equal(t, int64(1), count)
}
