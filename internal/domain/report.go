package domain

// ReportType selects the aggregation mode.
type ReportType string

const (
	ReportCoach ReportType = "coach"
	ReportSales ReportType = "sales"
)

func (t ReportType) Valid() bool {
	return t == ReportCoach || t == ReportSales
}

// CoachPerformance is one row of the coach report. Never persisted.
type CoachPerformance struct {
	GymLocation              string  `json:"gymLocation"`
	CoachName                string  `json:"coachName"`
	Email                    string  `json:"email"`
	ReportPeriodStart        string  `json:"reportPeriodStart"`
	ReportPeriodEnd          string  `json:"reportPeriodEnd"`
	NoOfWorkouts             int     `json:"noOfWorkouts"`
	WorkoutsPercentChange    string  `json:"workoutsPercentChange"`
	AverageFeedback          float64 `json:"averageFeedback"`
	MinFeedback              int     `json:"minFeedback"`
	MinFeedbackPercentChange string  `json:"minFeedbackPercentChange"`
}

// SalesStatistics is one row of the sales report, per workout type.
type SalesStatistics struct {
	GymLocation                       string  `json:"gymLocation"`
	WorkoutType                       string  `json:"workoutType"`
	ReportPeriodStart                 string  `json:"reportPeriodStart"`
	ReportPeriodEnd                   string  `json:"reportPeriodEnd"`
	WorkoutsLeadWithinReportingPeriod int     `json:"workoutsLeadWithinReportingPeriod"`
	ClientsAttendanceRate             string  `json:"clientsAttendanceRate"`
	DeltaOfClientsAttendance          string  `json:"deltaOfClientsAttendance"`
	AverageFeedback                   float64 `json:"averageFeedback"`
	MinimumFeedback                   int     `json:"minimumFeedback"`
	DeltaOfMinimumFeedback            string  `json:"deltaOfMinimumFeedback"`
}

// ReportPeriod is an inclusive DD-MM-YYYY date range.
type ReportPeriod struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Report carries the rows of exactly one mode.
type Report struct {
	Type   ReportType         `json:"type"`
	Period ReportPeriod       `json:"period"`
	Coach  []CoachPerformance `json:"coach,omitempty"`
	Sales  []SalesStatistics  `json:"sales,omitempty"`
}
