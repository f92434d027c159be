package taskid

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"task-assignment-api/internal/apperrors"
	"task-assignment-api/internal/models"
	"task-assignment-api/internal/testutil"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newGenerator(t *testing.T) (*Generator, *gorm.DB) {
	t.Helper()
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)
	return NewGenerator(db, Options{MaxAttempts: 5, Backoff: -1}), db
}

func TestFormat_Padding(t *testing.T) {
	require.Equal(t, "TSK001", Format(1))
	require.Equal(t, "TSK007", Format(7))
	require.Equal(t, "TSK999", Format(999))
	require.Equal(t, "TSK1000", Format(1000))
}

func TestNext_StartsAtOneOnEmptyStore(t *testing.T) {
	g, db := newGenerator(t)

	id, err := g.Next(context.Background())
	require.NoError(t, err)
	require.Equal(t, "TSK001", id)

	id, err = g.Next(context.Background())
	require.NoError(t, err)
	require.Equal(t, "TSK002", id)

	var counter models.TaskCounter
	require.NoError(t, db.First(&counter, "name = ?", models.TaskCounterKey).Error)
	require.Equal(t, int64(2), counter.LastTaskNumber)
}

func TestNext_ContinuesFromExistingCounter(t *testing.T) {
	g, db := newGenerator(t)
	require.NoError(t, db.Create(&models.TaskCounter{Name: models.TaskCounterKey, LastTaskNumber: 999}).Error)

	id, err := g.Next(context.Background())
	require.NoError(t, err)
	require.Equal(t, "TSK1000", id)
}

func TestNext_ConcurrentCallsAreGapless(t *testing.T) {
	for _, n := range []int{1, 2, 50} {
		t.Run(strconv.Itoa(n), func(t *testing.T) {
			g, _ := newGenerator(t)

			ids := make([]string, n)
			errs := make([]error, n)
			var wg sync.WaitGroup
			for i := 0; i < n; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					ids[i], errs[i] = g.Next(context.Background())
				}(i)
			}
			wg.Wait()

			nums := make([]int, 0, n)
			seen := make(map[string]bool, n)
			for i := range ids {
				require.NoError(t, errs[i])
				require.False(t, seen[ids[i]], "duplicate id %s", ids[i])
				seen[ids[i]] = true
				num, err := strconv.Atoi(strings.TrimPrefix(ids[i], Prefix))
				require.NoError(t, err)
				nums = append(nums, num)
			}
			sort.Ints(nums)
			for i, num := range nums {
				require.Equal(t, i+1, num)
			}
		})
	}
}

func TestNext_RetriesAfterLostRace(t *testing.T) {
	g, _ := newGenerator(t)

	attempts := 0
	g.beforeWrite = func(tx *gorm.DB) {
		attempts++
		if attempts == 1 {
			// Another writer bumps the counter between our read and write.
			require.NoError(t, tx.Exec(
				"UPDATE task_counters SET last_task_number = last_task_number + 1 WHERE name = ?",
				models.TaskCounterKey,
			).Error)
		}
	}

	id, err := g.Next(context.Background())
	require.NoError(t, err)
	require.Equal(t, "TSK001", id)
	require.Equal(t, 2, attempts)
}

func TestNext_GivesUpAfterRetryBudget(t *testing.T) {
	g, db := newGenerator(t)

	attempts := 0
	g.beforeWrite = func(tx *gorm.DB) {
		attempts++
		require.NoError(t, tx.Exec(
			"UPDATE task_counters SET last_task_number = last_task_number + 1 WHERE name = ?",
			models.TaskCounterKey,
		).Error)
	}

	_, err := g.Next(context.Background())
	require.Error(t, err)
	require.True(t, apperrors.Is(err, apperrors.KindTransient))
	require.Equal(t, 5, attempts)

	// Every failed attempt rolled back, so the counter never moved.
	var count int64
	require.NoError(t, db.Model(&models.TaskCounter{}).Where("last_task_number > 0").Count(&count).Error)
	require.Zero(t, count)
}

func TestNext_StoreFaultIsNotRetried(t *testing.T) {
	g, db := newGenerator(t)
	require.NoError(t, db.Migrator().DropTable(&models.TaskCounter{}))

	attempts := 0
	g.beforeWrite = func(*gorm.DB) { attempts++ }

	_, err := g.Next(context.Background())
	require.Error(t, err)
	require.True(t, apperrors.Is(err, apperrors.KindTransient))
	require.Zero(t, attempts)
}
