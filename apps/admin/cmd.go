package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/trezcool/smartlearn/core/classroom"
	"github.com/trezcool/smartlearn/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp    = errors.New("help provided")
	errNoSQL   = errors.New("migrate needs the postgres storage engine")
	errNoStore = errors.New("the store is not open")
)

type commandLine struct {
	db  *sql.DB // only set for migrate
	svc *classroom.Service
	out io.Writer
}

func (cli *commandLine) printUsage() {
	_, _ = fmt.Fprintln(cli.out, "Usage:")
	_, _ = fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS]                                - run goose migrations (postgres engine only)")
	_, _ = fmt.Fprintln(cli.out, "  adduser -name NAME -email EMAIL [-role Student|Teacher] - create a user, the password is prompted")
	_, _ = fmt.Fprintln(cli.out, "  resetpassword -email EMAIL                            - reset user's password")
	_, _ = fmt.Fprintln(cli.out, "  report -course ID [-format csv|xlsx] [-o FILE]        - export a course report")
	_, _ = fmt.Fprintln(cli.out, "  notes -video ID -student ID [-o FILE]                 - export a student's video notes")
	_, _ = fmt.Fprintln(cli.out, "  calendar -course ID [-o FILE]                         - export assignment due dates as iCalendar")
}

func (cli *commandLine) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cli.out)
	return fs
}

// parse returns errHelp when -h is given or a required flag is empty.
func parse(fs *flag.FlagSet, args []string, required ...*string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return errHelp
		}
		return err
	}
	for _, r := range required {
		if strings.TrimSpace(*r) == "" {
			fs.Usage()
			return errHelp
		}
	}
	return nil
}

func (cli *commandLine) promptPassword(fs *flag.FlagSet) (string, error) {
	_, _ = fmt.Fprint(cli.out, "Enter password:")
	pwd, err := readPasswordFunc(syscall.Stdin)
	_, _ = fmt.Fprintln(cli.out)
	if err != nil {
		return "", err
	}
	if len(pwd) == 0 {
		fs.Usage()
		return "", errHelp
	}
	return string(pwd), nil
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}
	if args[1] != "migrate" && cli.svc == nil {
		return errNoStore
	}

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])

	case "adduser":
		cmd := cli.newFlagSet("adduser")
		name := cmd.String("name", "", "The user's full name.")
		email := cmd.String("email", "", "The user's email. The password will be prompted next.")
		role := cmd.String("role", string(user.RoleStudent), "Student or Teacher.")
		if err := parse(cmd, args[2:], name, email); err != nil {
			return err
		}
		pwd, err := cli.promptPassword(cmd)
		if err != nil {
			return err
		}
		usr, err := cli.addUser(*name, *email, user.Role(*role), pwd)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cli.out, "created %s %s (%s)\n", usr.Role, usr.Email, usr.ID)
		return nil

	case "resetpassword":
		cmd := cli.newFlagSet("resetpassword")
		email := cmd.String("email", "", "The user's email. The password will be prompted next.")
		if err := parse(cmd, args[2:], email); err != nil {
			return err
		}
		pwd, err := cli.promptPassword(cmd)
		if err != nil {
			return err
		}
		return cli.resetPassword(*email, pwd)

	case "report":
		cmd := cli.newFlagSet("report")
		course := cmd.String("course", "", "The course ID.")
		format := cmd.String("format", "csv", "csv or xlsx.")
		out := cmd.String("o", "", "Output file. Defaults to stdout for csv and to a file named after the course for xlsx.")
		if err := parse(cmd, args[2:], course); err != nil {
			return err
		}
		return cli.report(*course, *format, *out)

	case "notes":
		cmd := cli.newFlagSet("notes")
		video := cmd.String("video", "", "The video ID.")
		student := cmd.String("student", "", "The student ID.")
		out := cmd.String("o", "", "Output file. Defaults to stdout.")
		if err := parse(cmd, args[2:], video, student); err != nil {
			return err
		}
		return cli.notes(*video, *student, *out)

	case "calendar":
		cmd := cli.newFlagSet("calendar")
		course := cmd.String("course", "", "The course ID.")
		out := cmd.String("o", "", "Output file. Defaults to stdout.")
		if err := parse(cmd, args[2:], course); err != nil {
			return err
		}
		return cli.calendar(*course, *out)

	default:
		cli.printUsage()
		return errHelp
	}
}

// write sends data to `path`, or to the command output when path is empty.
func (cli *commandLine) write(path string, data []byte) error {
	if path == "" {
		_, err := cli.out.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cli.out, "written to %s\n", path)
	return nil
}

// describe renders validation errors field by field.
func (cli *commandLine) describe(err error) string {
	if cli.svc == nil {
		return err.Error()
	}
	fields := cli.svc.FieldErrors(err)
	if len(fields) == 0 {
		return err.Error()
	}
	lines := make([]string, 0, len(fields))
	for _, f := range fields {
		lines = append(lines, fmt.Sprintf("  %s: %s", f.Field, f.Error))
	}
	return "invalid input:\n" + strings.Join(lines, "\n")
}
