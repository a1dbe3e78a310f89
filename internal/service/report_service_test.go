package service

import (
	"context"
	"testing"
	"time"

	"alcyxob/gym-platform/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestPercentageChange(t *testing.T) {
	tests := []struct {
		old, new float64
		want     string
	}{
		{0, 0, "0%"},
		{0, 3, "+100%"},
		{0, 5, "+100%"},
		{10, 5, "-50%"},
		{10, 15, "+50%"},
		{2, 3, "+50%"},
		{4, 2, "-50%"},
		{3, 3, "+0%"},
		{3, 1, "-67%"},
		{3, 0, "-100%"},
		{1, 4, "+300%"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PercentageChange(tt.old, tt.new), "old=%v new=%v", tt.old, tt.new)
	}
}

func rate(t *testing.T, f *fixture, w *domain.Workout, r int) {
	t.Helper()
	_, err := f.clientFeedback.Create(context.Background(), &domain.Feedback{
		WorkoutID: w.ID, ClientID: w.ClientID, CoachID: w.CoachID, Comment: "ok", Rating: intPtr(r),
	})
	require.NoError(t, err)
}

func day(d, h int) time.Time {
	return time.Date(2030, 6, d, h, 0, 0, 0, time.UTC)
}

// seedReport fills 24-06..30-06 (previous window) and 01-07..07-07 (current).
func seedReport(t *testing.T, f *fixture) (anna, ben primitive.ObjectID) {
	anna = f.addCoach(t, "Anna", "Yoga")
	ben = f.addCoach(t, "Ben", "Pilates")
	client := primitive.NewObjectID()

	// previous window: one Pilates session with Ben, rated 2
	prev := f.addWorkout(t, ben, client, "Pilates", day(30, 23), domain.StatusFinished)
	rate(t, f, prev, 2)
	// just before the previous window
	f.addWorkout(t, ben, client, "Pilates", day(23, 10), domain.StatusFinished)

	// current window
	y1 := f.addWorkout(t, anna, client, "Yoga", time.Date(2030, 7, 1, 10, 0, 0, 0, time.UTC), domain.StatusFinished)
	rate(t, f, y1, 4)
	y2 := f.addWorkout(t, anna, client, "Yoga", time.Date(2030, 7, 7, 20, 0, 0, 0, time.UTC), domain.StatusWaitingForFeedback)
	rate(t, f, y2, 5)
	f.addWorkout(t, anna, client, "Yoga", time.Date(2030, 7, 3, 10, 0, 0, 0, time.UTC), domain.StatusCancelled)
	p1 := f.addWorkout(t, ben, client, "Pilates", time.Date(2030, 7, 2, 12, 0, 0, 0, time.UTC), domain.StatusFinished)
	rate(t, f, p1, 3)
	f.addWorkout(t, ben, client, "Pilates", time.Date(2030, 7, 4, 12, 0, 0, 0, time.UTC), domain.StatusFinished)
	// after the current window
	f.addWorkout(t, anna, client, "Yoga", time.Date(2030, 7, 8, 8, 0, 0, 0, time.UTC), domain.StatusScheduled)
	return anna, ben
}

func TestGenerateReport_Coach(t *testing.T) {
	f := newFixture()
	seedReport(t, f)
	svc := NewReportService(f.coaches, f.workouts, f.clientFeedback, time.UTC, "Main Street 1")

	report, err := svc.GenerateReport(context.Background(), domain.ReportCoach, "01-07-2030", "07-07-2030")
	require.NoError(t, err)
	assert.Equal(t, domain.ReportPeriod{Start: "01-07-2030", End: "07-07-2030"}, report.Period)
	assert.Empty(t, report.Sales)
	require.Len(t, report.Coach, 2)

	anna := report.Coach[0]
	assert.Equal(t, "Anna Coach", anna.CoachName)
	assert.Equal(t, "annacoach@gmail.com", anna.Email)
	assert.Equal(t, "Main Street 1", anna.GymLocation)
	assert.Equal(t, 2, anna.NoOfWorkouts)
	assert.Equal(t, "+100%", anna.WorkoutsPercentChange)
	assert.Equal(t, 4.5, anna.AverageFeedback)
	assert.Equal(t, 4, anna.MinFeedback)
	assert.Equal(t, "+100%", anna.MinFeedbackPercentChange)

	ben := report.Coach[1]
	assert.Equal(t, 2, ben.NoOfWorkouts)
	assert.Equal(t, "+100%", ben.WorkoutsPercentChange)
	assert.Equal(t, 3.0, ben.AverageFeedback)
	assert.Equal(t, 3, ben.MinFeedback)
	assert.Equal(t, "+50%", ben.MinFeedbackPercentChange)
}

func TestGenerateReport_Sales(t *testing.T) {
	f := newFixture()
	seedReport(t, f)
	svc := NewReportService(f.coaches, f.workouts, f.clientFeedback, time.UTC, "Main Street 1")

	report, err := svc.GenerateReport(context.Background(), domain.ReportSales, "01-07-2030", "07-07-2030")
	require.NoError(t, err)
	assert.Empty(t, report.Coach)
	require.Len(t, report.Sales, 2)

	// first-seen order by scheduledAt
	yoga := report.Sales[0]
	assert.Equal(t, "Yoga", yoga.WorkoutType)
	assert.Equal(t, 2, yoga.WorkoutsLeadWithinReportingPeriod)
	assert.Equal(t, "50%", yoga.ClientsAttendanceRate)
	assert.Equal(t, "+100%", yoga.DeltaOfClientsAttendance)
	assert.Equal(t, 4.5, yoga.AverageFeedback)
	assert.Equal(t, 4, yoga.MinimumFeedback)

	pilates := report.Sales[1]
	assert.Equal(t, "Pilates", pilates.WorkoutType)
	assert.Equal(t, "100%", pilates.ClientsAttendanceRate)
	assert.Equal(t, "+0%", pilates.DeltaOfClientsAttendance)
	assert.Equal(t, "+50%", pilates.DeltaOfMinimumFeedback)
}

func TestGenerateReport_WorkoutCountDoubles(t *testing.T) {
	f := newFixture()
	coach := f.addCoach(t, "Xena", "Boxing")
	client := primitive.NewObjectID()

	// prior 7-day window 24-06..30-06
	for _, d := range []int{24, 27} {
		f.addWorkout(t, coach, client, "Boxing", day(d, 10), domain.StatusFinished)
	}
	// current 7-day window 01-07..07-07
	for d := 1; d <= 4; d++ {
		f.addWorkout(t, coach, client, "Boxing", time.Date(2030, 7, d, 12, 0, 0, 0, time.UTC), domain.StatusFinished)
	}

	svc := NewReportService(f.coaches, f.workouts, f.clientFeedback, time.UTC, "")
	report, err := svc.GenerateReport(context.Background(), domain.ReportCoach, "01-07-2030", "07-07-2030")
	require.NoError(t, err)
	require.Len(t, report.Coach, 1)
	assert.Equal(t, 4, report.Coach[0].NoOfWorkouts)
	assert.Equal(t, "+100%", report.Coach[0].WorkoutsPercentChange)
}

func TestGenerateReport_SingleDayWindow(t *testing.T) {
	f := newFixture()
	seedReport(t, f)
	svc := NewReportService(f.coaches, f.workouts, f.clientFeedback, time.UTC, "")

	// n = 0: previous window is 30-06 alone
	report, err := svc.GenerateReport(context.Background(), domain.ReportCoach, "01-07-2030", "01-07-2030")
	require.NoError(t, err)
	assert.Equal(t, 1, report.Coach[0].NoOfWorkouts)
	assert.Equal(t, 0, report.Coach[1].NoOfWorkouts)
	assert.Equal(t, "-100%", report.Coach[1].WorkoutsPercentChange)
}

func TestGenerateReport_Validation(t *testing.T) {
	f := newFixture()
	svc := NewReportService(f.coaches, f.workouts, f.clientFeedback, time.UTC, "")
	ctx := context.Background()

	_, err := svc.GenerateReport(ctx, "weekly", "01-07-2030", "07-07-2030")
	assert.ErrorIs(t, err, ErrInvalidReportType)

	_, err = svc.GenerateReport(ctx, domain.ReportSales, "07-07-2030", "01-07-2030")
	assert.ErrorIs(t, err, ErrInvalidDateRange)

	_, err = svc.GenerateReport(ctx, domain.ReportSales, "2030-07-01", "07-07-2030")
	_, code := Classify(err)
	assert.Equal(t, "INVALID_DATE", code)

	_, err = svc.GenerateReport(ctx, "", "", "07-07-2030")
	kind, code := Classify(err)
	assert.Equal(t, KindValidation, kind)
	assert.Equal(t, "MISSING_FIELDS", code)
}

func TestGenerateReport_EmptyStore(t *testing.T) {
	f := newFixture()
	svc := NewReportService(f.coaches, f.workouts, f.clientFeedback, time.UTC, "")

	report, err := svc.GenerateReport(context.Background(), domain.ReportSales, "01-07-2030", "07-07-2030")
	require.NoError(t, err)
	assert.Empty(t, report.Sales)
}
