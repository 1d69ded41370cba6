// Package analytics assembles the parent-facing aggregate views: the
// dashboard summary, the full child report and the trend analysis.
//
// Each payload is built from a short sequence of independent reads with no
// snapshot isolation. A write landing between two of those reads can make
// the aggregates mutually inconsistent (an average reflecting N+1 records
// next to a trend reflecting N). That is accepted: payloads are best-effort
// views, computed per request and never cached.
package analytics

import (
	"context"
	"errors"
	"math"

	"github.com/edutrackpro/edutrack/internal/domain/alert"
	"github.com/edutrackpro/edutrack/internal/domain/performance"
	"github.com/edutrackpro/edutrack/internal/domain/student"
)

// ErrChildNotFound covers both "parent has no children" and "child exists
// but is not yours". Callers translate it to a 404; ownership failures are
// deliberately indistinguishable from absence.
var ErrChildNotFound = errors.New("no child found for this parent")

// trendWindow is how many records feed the dashboard trend chart and the
// detailed analysis buckets.
const trendWindow = 6

// bucketSize splits the trend window into recent vs previous halves.
const bucketSize = 3

// attendancePlaceholder stands in until attendance is actually tracked.
// Callers must not treat the dashboard attendance value as live data.
const attendancePlaceholder = 96

type StudentDirectory interface {
	FirstByParent(ctx context.Context, parentID int64) (student.Student, error)
	GetByID(ctx context.Context, id int64) (student.Student, error)
}

type ScoreHistory interface {
	AverageScore(ctx context.Context, studentID int64) (int, error)
	Recent(ctx context.Context, studentID int64, limit int) ([]performance.Record, error)
	ListByStudent(ctx context.Context, studentID int64) ([]performance.Record, error)
}

type AlertFeed interface {
	Latest(ctx context.Context, limit int) ([]alert.Alert, error)
	CountUpcoming(ctx context.Context) (int, error)
}

type Engine struct {
	students StudentDirectory
	scores   ScoreHistory
	alerts   AlertFeed
}

func NewEngine(students StudentDirectory, scores ScoreHistory, alerts AlertFeed) *Engine {
	return &Engine{
		students: students,
		scores:   scores,
		alerts:   alerts,
	}
}

// ChildSummary is the slice of a student record a parent payload exposes.
type ChildSummary struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Class      string `json:"class"`
	RollNumber string `json:"rollNumber"`
}

func summarize(s student.Student) ChildSummary {
	return ChildSummary{
		ID:         s.ID,
		Name:       s.Name,
		Class:      s.Class,
		RollNumber: s.RollNumber,
	}
}

// TrendPoint is one charted score in chronological order.
type TrendPoint struct {
	Score        int    `json:"score"`
	AcademicYear int    `json:"academicYear"`
	Date         string `json:"date"`
}

type DashboardPayload struct {
	Child                    ChildSummary  `json:"child"`
	CurrentGPA               *float64      `json:"currentGPA"`
	AverageScore             int           `json:"averageScore"`
	Attendance               int           `json:"attendance"`
	PerformanceTrend         []TrendPoint  `json:"performanceTrend"`
	Alerts                   []alert.Alert `json:"alerts"`
	UpcomingSubmissionsCount int           `json:"upcomingSubmissionsCount"`
}

type ReportPayload struct {
	Child        ChildSummary         `json:"child"`
	AverageScore int                  `json:"averageScore"`
	Performances []performance.Record `json:"performances"`
}

type AnalysisPayload struct {
	Child           ChildSummary `json:"child"`
	AvgRecent       *int         `json:"avgRecent"`
	AvgPrev         *int         `json:"avgPrev"`
	Trend           *int         `json:"trend"`
	Recommendations []string     `json:"recommendations"`
}

// Dashboard builds the parent landing view around the parent's first child.
// Zero children is ErrChildNotFound; no partial payload is ever returned.
func (e *Engine) Dashboard(ctx context.Context, parentID int64) (DashboardPayload, error) {
	child, err := e.students.FirstByParent(ctx, parentID)

	if err != nil {
		if errors.Is(err, student.ErrNotFound) {
			return DashboardPayload{}, ErrChildNotFound
		}

		return DashboardPayload{}, err
	}

	avg, err := e.scores.AverageScore(ctx, child.ID)

	if err != nil {
		return DashboardPayload{}, err
	}

	recent, err := e.scores.Recent(ctx, child.ID, trendWindow)

	if err != nil {
		return DashboardPayload{}, err
	}

	// Recent comes newest-first; the chart wants chronological order.
	trend := make([]TrendPoint, 0, len(recent))

	for i := len(recent) - 1; i >= 0; i-- {
		rec := recent[i]

		trend = append(trend, TrendPoint{
			Score:        rec.Score,
			AcademicYear: rec.AcademicYear,
			Date:         rec.CreatedAt.Format("2006-01-02"),
		})
	}

	alerts, err := e.alerts.Latest(ctx, 5)

	if err != nil {
		return DashboardPayload{}, err
	}

	if alerts == nil {
		alerts = []alert.Alert{}
	}

	upcoming, err := e.alerts.CountUpcoming(ctx)

	if err != nil {
		return DashboardPayload{}, err
	}

	return DashboardPayload{
		Child:                    summarize(child),
		CurrentGPA:               nil,
		AverageScore:             avg,
		Attendance:               attendancePlaceholder,
		PerformanceTrend:         trend,
		Alerts:                   alerts,
		UpcomingSubmissionsCount: upcoming,
	}, nil
}

// ChildReport returns the full score history (newest first) plus the overall
// average, after re-proving ownership against the live student row.
func (e *Engine) ChildReport(ctx context.Context, parentID, childID int64) (ReportPayload, error) {
	child, err := e.ownedChild(ctx, parentID, childID)

	if err != nil {
		return ReportPayload{}, err
	}

	avg, err := e.scores.AverageScore(ctx, child.ID)

	if err != nil {
		return ReportPayload{}, err
	}

	history, err := e.scores.ListByStudent(ctx, child.ID)

	if err != nil {
		return ReportPayload{}, err
	}

	if history == nil {
		history = []performance.Record{}
	}

	return ReportPayload{
		Child:        summarize(child),
		AverageScore: avg,
		Performances: history,
	}, nil
}

// DetailedAnalysis buckets the six most recent records into recent (newest
// three) and previous (the three before) and derives the trend from the
// bucket averages. An empty bucket yields a nil average, and a nil average
// must propagate as nil: defaulting to zero would fake a collapse or a surge.
func (e *Engine) DetailedAnalysis(ctx context.Context, parentID, childID int64) (AnalysisPayload, error) {
	child, err := e.ownedChild(ctx, parentID, childID)

	if err != nil {
		return AnalysisPayload{}, err
	}

	records, err := e.scores.Recent(ctx, child.ID, trendWindow)

	if err != nil {
		return AnalysisPayload{}, err
	}

	recent := records[:min(bucketSize, len(records))]

	var previous []performance.Record

	if len(records) > bucketSize {
		previous = records[bucketSize:]
	}

	avgRecent := bucketAverage(recent)
	avgPrev := bucketAverage(previous)

	var trend *int

	if avgRecent != nil && avgPrev != nil {
		delta := *avgRecent - *avgPrev
		trend = &delta
	}

	return AnalysisPayload{
		Child:           summarize(child),
		AvgRecent:       avgRecent,
		AvgPrev:         avgPrev,
		Trend:           trend,
		Recommendations: []string{recommend(trend)},
	}, nil
}

// ownedChild loads the student and checks parent_id against the live row.
// Both a missing student and a foreign one come back as ErrChildNotFound,
// with no further queries issued.
func (e *Engine) ownedChild(ctx context.Context, parentID, childID int64) (student.Student, error) {
	child, err := e.students.GetByID(ctx, childID)

	if err != nil {
		if errors.Is(err, student.ErrNotFound) {
			return student.Student{}, ErrChildNotFound
		}

		return student.Student{}, err
	}

	if !child.OwnedBy(parentID) {
		return student.Student{}, ErrChildNotFound
	}

	return child, nil
}

func bucketAverage(records []performance.Record) *int {
	if len(records) == 0 {
		return nil
	}

	sum := 0

	for _, rec := range records {
		sum += rec.Score
	}

	avg := int(math.Round(float64(sum) / float64(len(records))))

	return &avg
}
