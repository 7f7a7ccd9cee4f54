package main

import (
	"fmt"

	"github.com/trezcool/smartlearn/core/classroom"
)

func (cli *commandLine) report(courseID, format, out string) error {
	switch format {
	case "csv":
		csv, err := cli.svc.ExportReportCSV(courseID)
		if err != nil {
			return err
		}
		return cli.write(out, []byte(csv+"\n"))
	case "xlsx":
		course, err := cli.svc.FindCourseByID(courseID)
		if err != nil {
			return err
		}
		buf, err := cli.svc.ExportReportXLSX(courseID)
		if err != nil {
			return err
		}
		if out == "" {
			out = classroom.ReportFilename(course.Title, "xlsx")
		}
		return cli.write(out, buf.Bytes())
	}
	return fmt.Errorf("unknown report format %q", format)
}

func (cli *commandLine) notes(videoID, studentID, out string) error {
	txt, err := cli.svc.ExportVideoNotes(videoID, studentID)
	if err != nil {
		return err
	}
	return cli.write(out, []byte(txt+"\n"))
}

func (cli *commandLine) calendar(courseID, out string) error {
	cal, err := cli.svc.ExportCourseCalendar(courseID)
	if err != nil {
		return err
	}
	return cli.write(out, []byte(cal))
}
