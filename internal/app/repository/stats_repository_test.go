package repository

import (
	"testing"
	"time"

	"github.com/cwd-comments/cwd-backend/internal/app/model"
	"github.com/cwd-comments/cwd-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestStatsRepository_RecordVisit(t *testing.T) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	defer db.CleanupTestDB(testDB)

	repo := NewStatsRepository(testDB)
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	visit := VisitRecord{
		PostSlug:  "/post-1",
		PostTitle: strPtr("First"),
		PostURL:   strPtr("https://blog.example.com/post-1"),
		Date:      "2026-03-01",
		Domain:    "blog.example.com",
		At:        at,
	}
	require.NoError(t, repo.RecordVisit(visit))

	visit.PostTitle = strPtr("First (edited)")
	visit.At = at.Add(time.Minute)
	require.NoError(t, repo.RecordVisit(visit))

	stat, err := repo.FindPageStat("/post-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), stat.PV)
	require.NotNil(t, stat.PostTitle)
	assert.Equal(t, "First (edited)", *stat.PostTitle)
	require.NotNil(t, stat.LastVisitAt)
	assert.Equal(t, at.Add(time.Minute).UnixMilli(), *stat.LastVisitAt)

	daily, err := repo.ListDailySince("2026-03-01", "blog.example.com")
	require.NoError(t, err)
	require.Len(t, daily, 1)
	assert.Equal(t, int64(2), daily[0].Count)

	none, err := repo.ListDailySince("2026-03-02", "")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStatsRepository_Import(t *testing.T) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	defer db.CleanupTestDB(testDB)

	repo := NewStatsRepository(testDB)
	require.NoError(t, repo.RecordVisit(VisitRecord{PostSlug: "/a", Date: "2026-01-01", At: time.Now()}))

	err = repo.ImportPageStats([]model.PageStat{
		{ID: 99, PostSlug: "/a", PV: 40},
		{PostSlug: "/b", PV: 7},
	})
	require.NoError(t, err)

	err = repo.ImportDaily([]model.PageVisitDaily{
		{Date: "2026-01-01", Domain: "", Count: 12},
		{Date: "2026-01-02", Domain: "x.dev", Count: 3},
	})
	require.NoError(t, err)

	stats, err := repo.ListPageStats()
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, "/a", stats[0].PostSlug)
	assert.Equal(t, int64(40), stats[0].PV)

	daily, err := repo.ListDaily()
	require.NoError(t, err)
	require.Len(t, daily, 2)
	assert.Equal(t, int64(12), daily[0].Count)
}
