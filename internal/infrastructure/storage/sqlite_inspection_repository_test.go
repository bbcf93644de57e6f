package storage

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"railscan/internal/domain/entity"
)

func newTestRepo(t *testing.T) *SQLiteInspectionRepository {
	t.Helper()
	repo, err := OpenSQLite(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func insertTestInspection(t *testing.T, repo *SQLiteInspectionRepository, name string, count int, uploadDate time.Time) *entity.Inspection {
	t.Helper()
	score, level, notes := entity.ScoreCriticality(count)
	insp := &entity.Inspection{
		Filename:         "stored_" + name,
		OriginalFilename: name,
		UploadDate:       uploadDate,
		AnomaliesCount:   count,
		CriticalityScore: score,
		CriticalityLevel: level,
		ProcessingTime:   0.5,
		Notes:            notes,
		AnnotatedImage:   "stored_" + name + "_annotated",
	}
	require.NoError(t, repo.Insert(context.Background(), insp))
	return insp
}

func TestSQLiteRepository_InsertAndGet(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	insp := insertTestInspection(t, repo, "rail_track.jpg", 15, time.Now().UTC())
	require.Greater(t, insp.ID, int64(0))

	got, err := repo.GetByID(ctx, insp.ID)
	require.NoError(t, err)
	require.Equal(t, insp.OriginalFilename, got.OriginalFilename)
	require.Equal(t, insp.AnomaliesCount, got.AnomaliesCount)
	require.Equal(t, entity.LevelMedium, got.CriticalityLevel)
	require.True(t, insp.UploadDate.Equal(got.UploadDate))
}

func TestSQLiteRepository_GetMissing(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetByID(context.Background(), 404)
	require.ErrorIs(t, err, entity.ErrNotFound)
}

func TestSQLiteRepository_ListOrderAndFilter(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)

	insertTestInspection(t, repo, "old.jpg", 2, base)
	insertTestInspection(t, repo, "mid.jpg", 15, base.Add(time.Minute))
	insertTestInspection(t, repo, "new.jpg", 40, base.Add(2*time.Minute))

	all, err := repo.List(ctx, "", 10, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, "new.jpg", all[0].OriginalFilename)
	require.Equal(t, "old.jpg", all[2].OriginalFilename)

	medium, err := repo.List(ctx, entity.LevelMedium, 10, 0)
	require.NoError(t, err)
	require.Len(t, medium, 1)
	require.Equal(t, "mid.jpg", medium[0].OriginalFilename)

	count, err := repo.Count(ctx, entity.LevelMedium)
	require.NoError(t, err)
	require.Equal(t, 1, count)

	paged, err := repo.List(ctx, "", 2, 2)
	require.NoError(t, err)
	require.Len(t, paged, 1)
}

func TestSQLiteRepository_SearchCaseInsensitive(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	insertTestInspection(t, repo, "rail_image.jpg", 3, time.Now().UTC())
	insertTestInspection(t, repo, "bridge.png", 3, time.Now().UTC())

	found, err := repo.Search(ctx, "Rail", 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, "rail_image.jpg", found[0].OriginalFilename)

	none, err := repo.Search(ctx, "tunnel", 10)
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestSQLiteRepository_Delete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	insp := insertTestInspection(t, repo, "gone.jpg", 1, time.Now().UTC())

	require.NoError(t, repo.Delete(ctx, insp.ID))
	require.ErrorIs(t, repo.Delete(ctx, insp.ID), entity.ErrNotFound)

	_, err := repo.GetByID(ctx, insp.ID)
	require.ErrorIs(t, err, entity.ErrNotFound)
}

func TestSQLiteRepository_Statistics(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	empty, err := repo.Statistics(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, empty.Total)
	require.Equal(t, 0, empty.HighCount+empty.MediumCount+empty.LowCount)
	require.Zero(t, empty.AverageAnomalies)

	now := time.Now().UTC()
	for i, count := range []int{2, 15, 40} {
		insertTestInspection(t, repo, fmt.Sprintf("img_%d.jpg", i), count, now.Add(time.Duration(i)*time.Second))
	}

	stats, err := repo.Statistics(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, stats.Total)
	require.Equal(t, 1, stats.LowCount)
	require.Equal(t, 1, stats.MediumCount)
	require.Equal(t, 1, stats.HighCount)
	require.Equal(t, stats.Total, stats.LowCount+stats.MediumCount+stats.HighCount)
	require.InDelta(t, 19.0, stats.AverageAnomalies, 1e-9)
}
