package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"alcyxob/gym-platform/internal/domain"
)

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif;">
<h2>{{.Title}}</h2>
<p>Reporting period: {{.Period.Start}} to {{.Period.End}}</p>
{{if .Coach}}
<table border="1" cellpadding="6" cellspacing="0">
<tr>
<th>Gym location</th><th>Coach</th><th>Email</th><th>Workouts</th><th>Workouts change</th>
<th>Average feedback</th><th>Minimum feedback</th><th>Minimum feedback change</th>
</tr>
{{range .Coach}}<tr>
<td>{{.GymLocation}}</td><td>{{.CoachName}}</td><td>{{.Email}}</td><td>{{.NoOfWorkouts}}</td><td>{{.WorkoutsPercentChange}}</td>
<td>{{printf "%.1f" .AverageFeedback}}</td><td>{{.MinFeedback}}</td><td>{{.MinFeedbackPercentChange}}</td>
</tr>
{{end}}</table>
{{else if .Sales}}
<table border="1" cellpadding="6" cellspacing="0">
<tr>
<th>Gym location</th><th>Workout type</th><th>Workouts</th><th>Attendance</th><th>Attendance change</th>
<th>Average feedback</th><th>Minimum feedback</th><th>Minimum feedback change</th>
</tr>
{{range .Sales}}<tr>
<td>{{.GymLocation}}</td><td>{{.WorkoutType}}</td><td>{{.WorkoutsLeadWithinReportingPeriod}}</td><td>{{.ClientsAttendanceRate}}</td><td>{{.DeltaOfClientsAttendance}}</td>
<td>{{printf "%.1f" .AverageFeedback}}</td><td>{{.MinimumFeedback}}</td><td>{{.DeltaOfMinimumFeedback}}</td>
</tr>
{{end}}</table>
{{else}}
<p>No workouts took place in this period.</p>
{{end}}
</body>
</html>
`))

func reportTitle(t domain.ReportType) string {
	if t == domain.ReportSales {
		return "Sales Statistics"
	}
	return "Coach Performance"
}

// RenderReport turns a report into the HTML body of the weekly email.
func RenderReport(report *domain.Report) (string, error) {
	var buf bytes.Buffer
	err := reportTemplate.Execute(&buf, struct {
		Title string
		*domain.Report
	}{reportTitle(report.Type), report})
	if err != nil {
		return "", fmt.Errorf("render %s report: %w", report.Type, err)
	}
	return buf.String(), nil
}

// SendReport queues report as an HTML email to the admin.
func (s *Service) SendReport(ctx context.Context, to string, report *domain.Report) error {
	body, err := RenderReport(report)
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("Weekly %s Report: %s - %s", reportTitle(report.Type), report.Period.Start, report.Period.End)
	return s.SendHTML(ctx, "report_"+string(report.Type), to, "Admin", subject, body)
}
