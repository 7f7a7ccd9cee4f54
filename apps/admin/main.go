package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/trezcool/smartlearn/core"
	"github.com/trezcool/smartlearn/core/classroom"
	"github.com/trezcool/smartlearn/core/user"
	"github.com/trezcool/smartlearn/services/email"
	"github.com/trezcool/smartlearn/services/files"
	"github.com/trezcool/smartlearn/services/genai"
	"github.com/trezcool/smartlearn/services/logger"
	"github.com/trezcool/smartlearn/services/payment"
	"github.com/trezcool/smartlearn/storage/database"
)

func main() {
	os.Exit(run(os.Args))
}

func run(args []string) int {
	std := log.New(os.Stderr, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf, err := core.NewConfig()
	if err != nil {
		std.Printf("loading config: %v", err)
		return 1
	}
	logger, err := newLogger(conf, std)
	if err != nil {
		std.Printf("setting up logger: %v", err)
		return 1
	}

	cli := commandLine{out: os.Stdout}
	ctx := context.Background()

	if len(args) > 1 && args[1] == "migrate" {
		if conf.Storage.Engine != database.EnginePostgres {
			std.Print(errNoSQL)
			return 1
		}
		if err := database.CreateIfNotExist(conf.Storage.Database); err != nil {
			std.Printf("creating database: %v", err)
			return 1
		}
		db, err := database.OpenSQL(conf.Storage.Database)
		if err != nil {
			std.Print(err)
			return 1
		}
		defer func() { _ = db.Close() }()
		cli.db = db.DB
	} else if len(args) > 1 {
		kv, err := database.Open(ctx, conf, logger)
		if err != nil {
			std.Printf("opening storage: %v", err)
			return 1
		}
		store, err := classroom.Open(ctx, kv, logger)
		if err != nil {
			_ = kv.Close()
			std.Printf("loading store: %v", err)
			return 1
		}
		defer func() { _ = store.Close() }()
		store.OnAlert(func(err error) { logger.Error(classroom.SaveFailedMessage, err) })

		validate, translator := core.NewValidator()
		user.InitValidators(validate, translator)
		deps := classroom.Deps{
			Logger:     logger,
			Validate:   validate,
			Translator: translator,
			Files:      files.NewRegistry(),
			Generator:  genai.NewClient(conf.GenAI, logger),
			Payments:   payment.NewGateway(conf.Payment, logger),
		}
		if conf.Mail.Notify {
			deps.Mailer = emailsvc.NewService(conf, logger)
		}
		cli.svc = classroom.NewService(store, deps)
	}

	if err := cli.run(args); err != nil {
		if !errors.Is(err, errHelp) {
			_, _ = fmt.Fprintf(os.Stderr, "\nerror: %s\n", cli.describe(err))
		}
		return 1
	}
	return 0
}

// newLogger reports to Rollbar when a token is configured, and to zap otherwise.
func newLogger(conf *core.Config, std *log.Logger) (core.Logger, error) {
	if conf.RollbarToken != "" {
		return logsvc.NewRollbarLogger(std, conf), nil
	}
	z, err := logsvc.NewZapLogger(conf.Log)
	if err != nil {
		return nil, err
	}
	return z, nil
}
