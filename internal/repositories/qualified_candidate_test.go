package repositories

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/hareesh182003/Interview-Agent/internal/models"
	"github.com/hareesh182003/Interview-Agent/internal/testutil"
)

func createCandidate(t *testing.T, db *gorm.DB, percentage float64, qualifiedAt time.Time) *models.QualifiedCandidate {
	t.Helper()

	session := &models.AnalysisSession{
		JobDescription:  "Backend engineer",
		MatchPercentage: percentage,
	}
	require.NoError(t, NewAnalysisSessionRepository(db).Create(session))

	candidate := &models.QualifiedCandidate{
		AnalysisSessionID: session.ID,
		MatchPercentage:   percentage,
		QualificationDate: qualifiedAt,
	}
	require.NoError(t, NewQualifiedCandidateRepository(db).Create(candidate))
	return candidate
}

func floatPtr(v float64) *float64 { return &v }
func boolPtr(v bool) *bool        { return &v }
func statusPtr(s models.CandidateStatus) *models.CandidateStatus {
	return &s
}

func TestCreateDefaultsToNew(t *testing.T) {
	db := testutil.NewTestDB(t)
	c := createCandidate(t, db, 85, time.Now())

	found, err := NewQualifiedCandidateRepository(db).FindByID(c.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CandidateStatusNew, found.Status)
	assert.False(t, found.IsContacted)
	assert.False(t, found.QualificationDate.IsZero())
}

func TestCreateRejectsSecondCandidateForSession(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewQualifiedCandidateRepository(db)
	c := createCandidate(t, db, 85, time.Now())

	err := repo.Create(&models.QualifiedCandidate{
		AnalysisSessionID: c.AnalysisSessionID,
		MatchPercentage:   85,
	})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestFindByIDNotFound(t *testing.T) {
	db := testutil.NewTestDB(t)

	_, err := NewQualifiedCandidateRepository(db).FindByID(uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListOrdering(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewQualifiedCandidateRepository(db)
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	low := createCandidate(t, db, 82, base)
	olderTie := createCandidate(t, db, 91, base)
	newerTie := createCandidate(t, db, 91, base.Add(time.Hour))
	top := createCandidate(t, db, 97.5, base)

	candidates, err := repo.List(CandidateFilter{})
	require.NoError(t, err)
	require.Len(t, candidates, 4)

	assert.Equal(t, top.ID, candidates[0].ID)
	assert.Equal(t, newerTie.ID, candidates[1].ID)
	assert.Equal(t, olderTie.ID, candidates[2].ID)
	assert.Equal(t, low.ID, candidates[3].ID)
}

func TestListCapsAtFifty(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewQualifiedCandidateRepository(db)
	for i := 0; i < 55; i++ {
		createCandidate(t, db, 81+float64(i%10), time.Now())
	}

	candidates, err := repo.List(CandidateFilter{Limit: 500})
	require.NoError(t, err)
	assert.Len(t, candidates, models.MaxCandidateResults)
}

func TestListFilters(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewQualifiedCandidateRepository(db)

	below := createCandidate(t, db, 89.99, time.Now())
	boundary := createCandidate(t, db, 90.00, time.Now())
	above := createCandidate(t, db, 95, time.Now())

	_, err := repo.Update(above.ID, &CandidateUpdateData{Status: statusPtr(models.CandidateStatusHired)})
	require.NoError(t, err)

	tests := []struct {
		name   string
		filter CandidateFilter
		want   []uuid.UUID
	}{
		{"min percentage", CandidateFilter{MinPercentage: floatPtr(90)}, []uuid.UUID{above.ID, boundary.ID}},
		{"highly qualified", CandidateFilter{HighlyQualified: boolPtr(true)}, []uuid.UUID{above.ID, boundary.ID}},
		{"not highly qualified", CandidateFilter{HighlyQualified: boolPtr(false)}, []uuid.UUID{below.ID}},
		{"status", CandidateFilter{Status: statusPtr(models.CandidateStatusHired)}, []uuid.UUID{above.ID}},
		{"status and min", CandidateFilter{Status: statusPtr(models.CandidateStatusNew), MinPercentage: floatPtr(90)}, []uuid.UUID{boundary.ID}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			candidates, err := repo.List(tt.filter)
			require.NoError(t, err)

			got := make([]uuid.UUID, 0, len(candidates))
			for _, c := range candidates {
				got = append(got, c.ID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUpdateIsPartial(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewQualifiedCandidateRepository(db)
	c := createCandidate(t, db, 88, time.Now())

	notes := "Strong systems background"
	_, err := repo.Update(c.ID, &CandidateUpdateData{Notes: &notes, IsContacted: boolPtr(true)})
	require.NoError(t, err)

	updated, err := repo.Update(c.ID, &CandidateUpdateData{Status: statusPtr(models.CandidateStatusInterviewing)})
	require.NoError(t, err)

	assert.Equal(t, models.CandidateStatusInterviewing, updated.Status)
	assert.Equal(t, notes, updated.Notes)
	assert.True(t, updated.IsContacted)
}

func TestUpdateAllowsAnyTransition(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewQualifiedCandidateRepository(db)
	c := createCandidate(t, db, 88, time.Now())

	for _, status := range []models.CandidateStatus{
		models.CandidateStatusRejected,
		models.CandidateStatusNew,
		models.CandidateStatusHired,
		models.CandidateStatusReviewed,
	} {
		updated, err := repo.Update(c.ID, &CandidateUpdateData{Status: statusPtr(status)})
		require.NoError(t, err)
		assert.Equal(t, status, updated.Status)
	}
}

func TestUpdateUnknownCandidate(t *testing.T) {
	db := testutil.NewTestDB(t)

	_, err := NewQualifiedCandidateRepository(db).Update(uuid.New(), &CandidateUpdateData{IsContacted: boolPtr(true)})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBulkUpdate(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewQualifiedCandidateRepository(db)
	a := createCandidate(t, db, 85, time.Now())
	b := createCandidate(t, db, 86, time.Now())
	untouched := createCandidate(t, db, 87, time.Now())

	updated, err := repo.BulkUpdate([]uuid.UUID{a.ID, b.ID, uuid.New()}, &CandidateUpdateData{
		Status:      statusPtr(models.CandidateStatusContacted),
		IsContacted: boolPtr(true),
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2, updated)

	got, err := repo.FindByID(untouched.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CandidateStatusNew, got.Status)
	assert.False(t, got.IsContacted)
}

func TestStats(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewQualifiedCandidateRepository(db)

	createCandidate(t, db, 82, time.Now())
	hired := createCandidate(t, db, 90, time.Now())
	createCandidate(t, db, 96, time.Now())

	_, err := repo.Update(hired.ID, &CandidateUpdateData{
		Status:      statusPtr(models.CandidateStatusHired),
		IsContacted: boolPtr(true),
	})
	require.NoError(t, err)

	stats, err := repo.Stats()
	require.NoError(t, err)

	assert.EqualValues(t, 3, stats.Total)
	assert.EqualValues(t, 2, stats.HighlyQualified)
	assert.EqualValues(t, 1, stats.Contacted)
	assert.EqualValues(t, 2, stats.StatusBreakdown[models.CandidateStatusNew])
	assert.EqualValues(t, 1, stats.StatusBreakdown[models.CandidateStatusHired])
	assert.EqualValues(t, 0, stats.StatusBreakdown[models.CandidateStatusRejected])
	assert.Len(t, stats.StatusBreakdown, len(models.CandidateStatuses))
	assert.ElementsMatch(t, []float64{82, 90, 96}, stats.MatchPercentages)
}

func TestStatsEmpty(t *testing.T) {
	db := testutil.NewTestDB(t)

	stats, err := NewQualifiedCandidateRepository(db).Stats()
	require.NoError(t, err)
	assert.Zero(t, stats.Total)
	assert.Empty(t, stats.MatchPercentages)
}
