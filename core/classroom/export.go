package classroom

import (
	"bytes"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	ics "github.com/arran4/golang-ical"
	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

const reportCSVHeader = "Student Name,Submitted Assignments,Average Grade (%)"

// ExportReportCSV renders the per-student part of the course report.
// Names are always quoted; averages have two decimals.
func (svc *Service) ExportReportCSV(courseID string) (string, error) {
	rep, err := svc.CourseReport(courseID)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString(reportCSVHeader)
	for _, s := range rep.Students {
		fmt.Fprintf(&b, "\n%s,%d,%.2f", quoteCSV(s.Name), s.SubmittedCount, s.AverageGrade)
	}
	return b.String(), nil
}

func quoteCSV(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// ReportFilename suggests a file name for an exported course report.
func ReportFilename(courseTitle, ext string) string {
	name := strings.Map(func(r rune) rune {
		if r == ' ' || r == '/' || r == '\\' {
			return '_'
		}
		return r
	}, courseTitle)
	return fmt.Sprintf("%s_report.%s", name, ext)
}

// ExportReportXLSX renders the course report as a workbook with an assignments and a students sheet.
func (svc *Service) ExportReportXLSX(courseID string) (*bytes.Buffer, error) {
	rep, err := svc.CourseReport(courseID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const (
		studentsSheet    = "Students"
		assignmentsSheet = "Assignments"
	)
	if err := f.SetSheetName("Sheet1", studentsSheet); err != nil {
		return nil, errors.Wrap(err, "naming sheet")
	}
	if _, err := f.NewSheet(assignmentsSheet); err != nil {
		return nil, errors.Wrap(err, "adding sheet")
	}
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	writeRow := func(sheet string, row int, values ...interface{}) {
		for i, v := range values {
			_ = f.SetCellValue(sheet, cell(colName(i), row), v)
		}
	}

	// students
	writeRow(studentsSheet, 1, "Student Name", "Submitted Assignments", "Average Grade (%)")
	_ = f.SetCellStyle(studentsSheet, "A1", "C1", headerStyle)
	_ = f.SetColWidth(studentsSheet, "A", "A", 28)
	_ = f.SetColWidth(studentsSheet, "B", "C", 22)
	for i, s := range rep.Students {
		writeRow(studentsSheet, i+2, s.Name, s.SubmittedCount, round2(s.AverageGrade))
	}

	// assignments
	writeRow(assignmentsSheet, 1, "Assignment", "Submissions", "Submission Rate (%)", "Average Grade (%)")
	_ = f.SetCellStyle(assignmentsSheet, "A1", "D1", headerStyle)
	_ = f.SetColWidth(assignmentsSheet, "A", "A", 28)
	_ = f.SetColWidth(assignmentsSheet, "B", "D", 20)
	for i, a := range rep.Assignments {
		writeRow(assignmentsSheet, i+2, a.Title, a.SubmissionCount, round2(a.SubmissionRate), round2(a.AverageGrade))
	}
	summaryRow := len(rep.Assignments) + 3
	writeRow(assignmentsSheet, summaryRow, "Overall Average Grade (%)", round2(rep.OverallAverageGrade))

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, errors.Wrap(err, "writing workbook")
	}
	return buf, nil
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// FormatTimestamp renders seconds as MM:SS.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(math.Floor(seconds))
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// ExportVideoNotes renders a student's notes on a video as a plain text log.
func (svc *Service) ExportVideoNotes(videoID, studentID string) (string, error) {
	video, err := svc.FindVideoMaterialByID(videoID)
	if err != nil {
		return "", err
	}
	title := strings.TrimSuffix(video.FileName, filepath.Ext(video.FileName))

	var b strings.Builder
	fmt.Fprintf(&b, "Notes for %s\n\n", title)
	notes := svc.FindVideoNotesByVideoIDAndStudentID(videoID, studentID)
	for i, n := range notes {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "[%s] - %s", FormatTimestamp(n.Timestamp), n.Content)
	}
	return b.String(), nil
}

// ExportCourseCalendar renders the course's assignment due dates as an iCalendar feed.
func (svc *Service) ExportCourseCalendar(courseID string) (string, error) {
	course, err := svc.FindCourseByID(courseID)
	if err != nil {
		return "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//SmartLearn//Course Calendar//EN")
	cal.SetXWRCalName(course.Title)

	stamp := now()
	for _, a := range svc.FindAssignmentsByCourseID(courseID) {
		event := cal.AddEvent(a.ID + "@smartlearn")
		event.SetDtStampTime(stamp)
		event.SetStartAt(a.DueDate)
		event.SetEndAt(a.DueDate)
		event.SetSummary(fmt.Sprintf("%s due (%s)", a.Title, course.Title))
		if a.Description != "" {
			event.SetDescription(a.Description)
		}
		event.SetURL(courseLink(course.ID))
	}
	return cal.Serialize(), nil
}
