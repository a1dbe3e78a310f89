package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"alcyxob/gym-platform/internal/datetime"
	"alcyxob/gym-platform/internal/domain"
	"alcyxob/gym-platform/internal/metrics"
	"alcyxob/gym-platform/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ReportService interface {
	// GenerateReport aggregates [startDate, endDate] (DD-MM-YYYY, inclusive)
	// and compares it with the window of equal length ending the day
	// before startDate.
	GenerateReport(ctx context.Context, reportType domain.ReportType, startDate, endDate string) (*domain.Report, error)
}

type reportService struct {
	coachRepo      repository.CoachRepository
	workoutRepo    repository.WorkoutRepository
	clientFeedback repository.FeedbackRepository
	loc            *time.Location
	gymLocation    string
}

func NewReportService(coachRepo repository.CoachRepository, workoutRepo repository.WorkoutRepository, clientFeedback repository.FeedbackRepository, loc *time.Location, gymLocation string) ReportService {
	if loc == nil {
		loc = time.UTC
	}
	return &reportService{
		coachRepo:      coachRepo,
		workoutRepo:    workoutRepo,
		clientFeedback: clientFeedback,
		loc:            loc,
		gymLocation:    gymLocation,
	}
}

// window is a half-open [from, to) range on scheduledAt.
type window struct {
	from, to time.Time
}

func dayWindow(start, end time.Time) window {
	return window{from: datetime.StartOfDay(start), to: datetime.StartOfDay(end).AddDate(0, 0, 1)}
}

func (s *reportService) GenerateReport(ctx context.Context, reportType domain.ReportType, startDate, endDate string) (*domain.Report, error) {
	var missing []string
	if strings.TrimSpace(string(reportType)) == "" {
		missing = append(missing, "type")
	}
	if strings.TrimSpace(startDate) == "" {
		missing = append(missing, "startDate")
	}
	if strings.TrimSpace(endDate) == "" {
		missing = append(missing, "endDate")
	}
	if len(missing) > 0 {
		return nil, missingFieldsError(missing)
	}
	if !reportType.Valid() {
		return nil, ErrInvalidReportType
	}

	start, err := datetime.ParseDate(startDate, s.loc)
	if err != nil {
		return nil, invalidDateError(KindValidation, "startDate")
	}
	end, err := datetime.ParseDate(endDate, s.loc)
	if err != nil {
		return nil, invalidDateError(KindValidation, "endDate")
	}
	if end.Before(start) {
		return nil, ErrInvalidDateRange
	}

	// Comparison window: same number of days, ending the day before start.
	n := datetime.DaysBetween(start, end)
	prevEnd := start.AddDate(0, 0, -1)
	prevStart := prevEnd.AddDate(0, 0, -n)

	current, err := s.collect(ctx, dayWindow(start, end))
	if err != nil {
		return nil, err
	}
	previous, err := s.collect(ctx, dayWindow(prevStart, prevEnd))
	if err != nil {
		return nil, err
	}

	report := &domain.Report{
		Type:   reportType,
		Period: domain.ReportPeriod{Start: datetime.FormatDate(start), End: datetime.FormatDate(end)},
	}
	switch reportType {
	case domain.ReportCoach:
		report.Coach, err = s.coachRows(ctx, report.Period, current, previous)
	case domain.ReportSales:
		report.Sales = s.salesRows(report.Period, current, previous)
	}
	if err != nil {
		return nil, err
	}

	metrics.RecordReport(string(reportType))
	return report, nil
}

// windowData holds the non-cancelled workouts of a window and the client
// ratings left for them.
type windowData struct {
	workouts []domain.Workout
	ratings  map[primitive.ObjectID]int
}

func (s *reportService) collect(ctx context.Context, w window) (windowData, error) {
	workouts, err := s.workoutRepo.Find(ctx, domain.WorkoutFilter{From: w.from, To: w.to, ExcludeCancelled: true})
	if err != nil {
		return windowData{}, err
	}
	data := windowData{workouts: workouts, ratings: make(map[primitive.ObjectID]int)}
	if len(workouts) == 0 {
		return data, nil
	}

	ids := make([]primitive.ObjectID, len(workouts))
	for i, wk := range workouts {
		ids[i] = wk.ID
	}
	feedbacks, err := s.clientFeedback.ListByWorkoutIDs(ctx, ids)
	if err != nil {
		return windowData{}, err
	}
	for _, f := range feedbacks {
		if f.Rating != nil {
			data.ratings[f.WorkoutID] = *f.Rating
		}
	}
	return data, nil
}

func (d windowData) subset(keep func(domain.Workout) bool) []domain.Workout {
	out := []domain.Workout{}
	for _, w := range d.workouts {
		if keep(w) {
			out = append(out, w)
		}
	}
	return out
}

func (d windowData) stats(workouts []domain.Workout) domain.RatingStats {
	var st domain.RatingStats
	sum := 0
	for _, w := range workouts {
		r, ok := d.ratings[w.ID]
		if !ok {
			continue
		}
		if st.Count == 0 || r < st.Min {
			st.Min = r
		}
		st.Count++
		sum += r
	}
	if st.Count > 0 {
		st.Average = math.Round(float64(sum)/float64(st.Count)*10) / 10
	}
	return st
}

func (s *reportService) coachRows(ctx context.Context, period domain.ReportPeriod, current, previous windowData) ([]domain.CoachPerformance, error) {
	coaches, err := s.coachRepo.List(ctx, "")
	if err != nil {
		return nil, err
	}

	rows := make([]domain.CoachPerformance, 0, len(coaches))
	for _, c := range coaches {
		byCoach := func(w domain.Workout) bool { return w.CoachID == c.ID }
		cur := current.subset(byCoach)
		prev := previous.subset(byCoach)
		curStats := current.stats(cur)
		prevStats := previous.stats(prev)

		rows = append(rows, domain.CoachPerformance{
			GymLocation:              s.gymLocation,
			CoachName:                c.FullName(),
			Email:                    c.ContactEmail(),
			ReportPeriodStart:        period.Start,
			ReportPeriodEnd:          period.End,
			NoOfWorkouts:             len(cur),
			WorkoutsPercentChange:    PercentageChange(float64(len(prev)), float64(len(cur))),
			AverageFeedback:          curStats.Average,
			MinFeedback:              curStats.Min,
			MinFeedbackPercentChange: PercentageChange(float64(prevStats.Min), float64(curStats.Min)),
		})
	}
	return rows, nil
}

func (s *reportService) salesRows(period domain.ReportPeriod, current, previous windowData) []domain.SalesStatistics {
	var types []string
	seen := make(map[string]bool)
	for _, w := range current.workouts {
		if !seen[w.Type] {
			seen[w.Type] = true
			types = append(types, w.Type)
		}
	}

	rows := make([]domain.SalesStatistics, 0, len(types))
	for _, t := range types {
		byType := func(w domain.Workout) bool { return w.Type == t }
		cur := current.subset(byType)
		prev := previous.subset(byType)
		curRate := attendanceRate(cur)
		prevRate := attendanceRate(prev)
		curStats := current.stats(cur)
		prevStats := previous.stats(prev)

		rows = append(rows, domain.SalesStatistics{
			GymLocation:                       s.gymLocation,
			WorkoutType:                       t,
			ReportPeriodStart:                 period.Start,
			ReportPeriodEnd:                   period.End,
			WorkoutsLeadWithinReportingPeriod: len(cur),
			ClientsAttendanceRate:             fmt.Sprintf("%d%%", curRate),
			DeltaOfClientsAttendance:          PercentageChange(float64(prevRate), float64(curRate)),
			AverageFeedback:                   curStats.Average,
			MinimumFeedback:                   curStats.Min,
			DeltaOfMinimumFeedback:            PercentageChange(float64(prevStats.Min), float64(curStats.Min)),
		})
	}
	return rows
}

// attendanceRate is the rounded share of workouts the client finished.
func attendanceRate(workouts []domain.Workout) int {
	if len(workouts) == 0 {
		return 0
	}
	finished := 0
	for _, w := range workouts {
		if w.ClientStatus == domain.StatusFinished {
			finished++
		}
	}
	return int(math.Round(float64(finished) / float64(len(workouts)) * 100))
}

// PercentageChange formats the relative change from old to new as "+NN%"
// or "-NN%". A zero baseline yields "+100%" for any growth and "0%" otherwise.
func PercentageChange(old, new float64) string {
	if old == 0 {
		if new > 0 {
			return "+100%"
		}
		return "0%"
	}
	r := math.Round((new - old) / old * 100)
	if r == 0 {
		// avoids "-0%"
		return "+0%"
	}
	if r > 0 {
		return fmt.Sprintf("+%.0f%%", r)
	}
	return fmt.Sprintf("%.0f%%", r)
}
