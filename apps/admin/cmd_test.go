package main

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/smartlearn/core/classroom"
	"github.com/trezcool/smartlearn/core/user"
	"github.com/trezcool/smartlearn/services/logger"
	"github.com/trezcool/smartlearn/storage/database/inmem"
)

const testPassword = "Ch4lk&Board"

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	wantField  string // validation error expected on this field
	pwd        string
}

func setup(t *testing.T) (*commandLine, *bytes.Buffer) {
	t.Helper()
	store, err := classroom.Open(context.Background(), inmemdb.Open(), logsvc.NewNopLogger())
	require.NoError(t, err)
	out := new(bytes.Buffer)
	return &commandLine{svc: classroom.NewService(store, classroom.Deps{}), out: out}, out
}

func mockPassword(t *testing.T, pwd string) {
	t.Helper()
	orig := readPasswordFunc
	readPasswordFunc = func(fd int) ([]byte, error) { return []byte(pwd), nil }
	t.Cleanup(func() { readPasswordFunc = orig })
}

func checkErr(t *testing.T, cli *commandLine, tt cliTest, err error) {
	t.Helper()
	switch {
	case tt.wantField != "":
		require.Error(t, err)
		var fields []string
		for _, f := range cli.svc.FieldErrors(err) {
			fields = append(fields, f.Field)
		}
		assert.Contains(t, fields, tt.wantField)
	case tt.wantErr != nil:
		assert.True(t, errors.Is(err, tt.wantErr), "cli.run() error = %v, wantErr %v", err, tt.wantErr)
	case tt.wantErrStr != "":
		require.Error(t, err)
		assert.Equal(t, tt.wantErrStr, err.Error())
	default:
		assert.NoError(t, err)
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli, _ := setup(t)
	db, err := sql.Open("postgres", "postgres://localhost/smartlearn?sslmode=disable")
	require.NoError(t, err)
	defer func() { _ = db.Close() }()
	cli.db = db

	orig := gooseRunFunc
	t.Cleanup(func() { gooseRunFunc = orig })
	gooseRunFunc = func(command string, db *sql.DB, dir string, args ...string) error {
		if dir != "migrations" {
			return fmt.Errorf("unexpected dir %q", dir)
		}
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "down-to: non-int arg", args: []string{"migrate", "down-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "create", args: []string{"migrate", "create", "add_index", "sql"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)
		t.Run(tt.name, func(t *testing.T) {
			checkErr(t, cli, tt, cli.run(args))
		})
	}

	cli.db = nil
	assert.ErrorIs(t, cli.run([]string{"admin", "migrate", "up"}), errNoSQL)
}

func Test_commandLine_addUser(t *testing.T) {
	cli, out := setup(t)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"adduser"}, wantErr: errHelp},
		{name: "email but no password", args: []string{"adduser", "-name", "Ms Frizzle", "-email", "frizzle@smartlearn.test"}, wantErr: errHelp},
		{name: "weak password", args: []string{"adduser", "-name", "Ms Frizzle", "-email", "frizzle@smartlearn.test"}, pwd: "12345678", wantField: "password"},
		{name: "bad role", args: []string{"adduser", "-name", "Ms Frizzle", "-email", "frizzle@smartlearn.test", "-role", "Admin"}, pwd: testPassword, wantField: "role"},
		{name: "teacher", args: []string{"adduser", "-name", "Ms Frizzle", "-email", "frizzle@smartlearn.test", "-role", "Teacher"}, pwd: testPassword},
		{name: "email taken", args: []string{"adduser", "-name", "Other", "-email", "FRIZZLE@smartlearn.test"}, pwd: testPassword, wantErr: classroom.ErrEmailExists},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)
		t.Run(tt.name, func(t *testing.T) {
			mockPassword(t, tt.pwd)
			checkErr(t, cli, tt, cli.run(args))
		})
	}

	usr, err := cli.svc.FindUserByEmail("frizzle@smartlearn.test")
	require.NoError(t, err)
	assert.Equal(t, user.RoleTeacher, usr.Role)
	assert.NoError(t, usr.CheckPassword(testPassword))
	assert.Contains(t, out.String(), "created Teacher frizzle@smartlearn.test")
	_, signedIn := cli.svc.CurrentUser()
	assert.False(t, signedIn)
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli, _ := setup(t)
	usr, err := cli.addUser("Ada Student", "ada@smartlearn.test", user.RoleStudent, testPassword)
	require.NoError(t, err)

	tests := []cliTest{
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "email but no password", args: []string{"resetpassword", "-email", usr.Email}, wantErr: errHelp},
		{name: "user not found", args: []string{"resetpassword", "-email", "lol@smartlearn.test"}, pwd: "N3w&Secret", wantErr: classroom.ErrNotFound},
		{name: "reset", args: []string{"resetpassword", "-email", usr.Email}, pwd: "N3w&Secret"},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)
		t.Run(tt.name, func(t *testing.T) {
			mockPassword(t, tt.pwd)
			checkErr(t, cli, tt, cli.run(args))
		})
	}

	refreshed, err := cli.svc.FindUserByID(usr.ID)
	require.NoError(t, err)
	assert.NoError(t, refreshed.CheckPassword("N3w&Secret"))
}

func seedCourse(t *testing.T, cli *commandLine) classroom.Course {
	t.Helper()
	svc := cli.svc
	_, err := svc.Register(user.NewUser{Name: "Ms Frizzle", Email: "frizzle@smartlearn.test", Password: testPassword, PasswordConfirm: testPassword, Role: user.RoleTeacher})
	require.NoError(t, err)
	course, err := svc.CreateCourse(classroom.NewCourse{Title: "Algebra I"})
	require.NoError(t, err)
	_, err = svc.CreateAssignment(classroom.NewAssignment{CourseID: course.ID, Title: "HW1", DueDate: time.Date(2024, 3, 11, 23, 59, 0, 0, time.UTC)})
	require.NoError(t, err)
	return course
}

func Test_commandLine_exports(t *testing.T) {
	cli, out := setup(t)
	course := seedCourse(t, cli)

	tests := []cliTest{
		{name: "report: no course", args: []string{"report"}, wantErr: errHelp},
		{name: "report: unknown course", args: []string{"report", "-course", "course-404"}, wantErr: classroom.ErrNotFound},
		{name: "report: bad format", args: []string{"report", "-course", course.ID, "-format", "pdf"}, wantErrStr: `unknown report format "pdf"`},
		{name: "report: csv", args: []string{"report", "-course", course.ID}},
		{name: "notes: no student", args: []string{"notes", "-video", "video-1"}, wantErr: errHelp},
		{name: "notes: unknown video", args: []string{"notes", "-video", "video-404", "-student", "user-1"}, wantErr: classroom.ErrNotFound},
		{name: "calendar: no course", args: []string{"calendar"}, wantErr: errHelp},
		{name: "calendar", args: []string{"calendar", "-course", course.ID}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)
		t.Run(tt.name, func(t *testing.T) {
			checkErr(t, cli, tt, cli.run(args))
		})
	}

	assert.Contains(t, out.String(), "Student Name,Submitted Assignments,Average Grade (%)")
	assert.Contains(t, out.String(), "BEGIN:VCALENDAR")
	assert.Contains(t, out.String(), "SUMMARY:HW1 due (Algebra I)")
}

func Test_commandLine_reportXLSX(t *testing.T) {
	cli, out := setup(t)
	course := seedCourse(t, cli)

	path := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, cli.run([]string{"admin", "report", "-course", course.ID, "-format", "xlsx", "-o", path}))
	assert.Equal(t, "written to "+path+"\n", out.String())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	title, err := f.GetCellValue("Assignments", "A2")
	require.NoError(t, err)
	assert.Equal(t, "HW1", title)
}

func Test_commandLine_describe(t *testing.T) {
	cli, _ := setup(t)
	_, err := cli.addUser("", "not-an-email", user.RoleStudent, testPassword)
	require.Error(t, err)

	msg := cli.describe(err)
	assert.True(t, strings.HasPrefix(msg, "invalid input:"), msg)
	assert.Contains(t, msg, "name: this field is required")
	assert.Contains(t, msg, "email: email must be a valid email address")
	assert.Equal(t, "plain", cli.describe(errors.New("plain")))
}
