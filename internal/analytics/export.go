package analytics

import (
	"strconv"
	"strings"
)

// ExportCSV renders a report payload as delimited text. Every field is
// wrapped in quotes with embedded quotes doubled, including numbers.
// Rows: summary header, summary, blank separator,
// trend-table header, then one row per performance record in payload order.
// The payload order is the engine's query order (newest first); exporters
// must not re-sort.
func ExportCSV(report ReportPayload) string {
	var b strings.Builder

	writeRow(&b, "Name", "Class", "Roll Number", "Average Score")
	writeRow(&b,
		report.Child.Name,
		report.Child.Class,
		report.Child.RollNumber,
		strconv.Itoa(report.AverageScore),
	)
	b.WriteString("\n")
	writeRow(&b, "Date", "Academic Year", "Score")

	for _, rec := range report.Performances {
		writeRow(&b,
			rec.CreatedAt.Format("2006-01-02"),
			strconv.Itoa(rec.AcademicYear),
			strconv.Itoa(rec.Score),
		)
	}

	return b.String()
}

func writeRow(b *strings.Builder, fields ...string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}

		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(f, `"`, `""`))
		b.WriteByte('"')
	}

	b.WriteByte('\n')
}
