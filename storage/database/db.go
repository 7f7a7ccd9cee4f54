package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"

	"github.com/trezcool/smartlearn/core"
	"github.com/trezcool/smartlearn/fs"
	"github.com/trezcool/smartlearn/storage/database/badger"
	"github.com/trezcool/smartlearn/storage/database/inmem"
	"github.com/trezcool/smartlearn/storage/database/redis"
	"github.com/trezcool/smartlearn/storage/database/sqlx"
)

// Storage engines
const (
	EngineMemory   = "memory"
	EngineBadger   = "badger"
	EngineRedis    = "redis"
	EnginePostgres = "postgres"
)

// Open returns the KV store selected by conf.Storage.Engine.
// The postgres engine creates its database if needed and runs pending migrations.
func Open(ctx context.Context, conf *core.Config, logger core.Logger) (core.KVStore, error) {
	switch conf.Storage.Engine {
	case EngineMemory:
		return inmemdb.Open(), nil
	case EngineBadger, "":
		return badgerdb.Open(conf.Storage.Dir, logger)
	case EngineRedis:
		return redisdb.Open(ctx, conf.Storage.Redis)
	case EnginePostgres:
		if err := CreateIfNotExist(conf.Storage.Database); err != nil {
			return nil, err
		}
		db, err := OpenSQL(conf.Storage.Database)
		if err != nil {
			return nil, err
		}
		if err := ping(db.DB); err != nil {
			_ = db.Close()
			return nil, err
		}
		if err := Migrate(db.DB); err != nil {
			_ = db.Close()
			return nil, err
		}
		return sqlxrepos.NewKVStore(db), nil
	}
	return nil, fmt.Errorf("unknown storage engine %q", conf.Storage.Engine)
}

func dsn(dbName string, admin bool, conf core.DatabaseConfig) string {
	user := url.UserPassword(conf.User, conf.Password)
	if admin && conf.AdminUser != "" {
		user = url.UserPassword(conf.AdminUser, conf.AdminPassword)
	}

	sslMode := "require"
	if conf.DisableTLS {
		sslMode = "disable"
	}
	q := make(url.Values)
	q.Set("sslmode", sslMode)
	q.Set("timezone", "utc")

	u := url.URL{
		Scheme:   conf.Engine,
		User:     user,
		Host:     conf.Address(),
		Path:     dbName,
		RawQuery: q.Encode(),
	}
	return u.String()
}

func open(dbName string, admin bool, conf core.DatabaseConfig) (*sql.DB, error) {
	return sql.Open(conf.Engine, dsn(dbName, admin, conf))
}

// OpenSQL connects to the application database.
func OpenSQL(conf core.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open(conf.Engine, dsn(conf.Name, false, conf))
	return db, errors.Wrap(err, "opening database")
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func ping(db *sql.DB) error {
	var err error
	maxAttempts := 30
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		err = db.Ping()
		if err == nil {
			break
		}
		time.Sleep(time.Duration(attempts) * 100 * time.Millisecond)
	}

	if err != nil {
		return errors.Wrap(err, "DB ping timeout")
	}
	return nil
}

func exists(db *sql.DB, query, name string) (bool, error) {
	var found bool
	err := db.QueryRow(query, name).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return found, err
}

func createAppUser(db *sql.DB, conf core.DatabaseConfig) error {
	if conf.User == "" {
		return nil
	}

	found, err := exists(db, "SELECT true FROM pg_roles WHERE rolname = $1", conf.User)
	if err != nil {
		return errors.Wrap(err, "checking app user")
	}
	if !found {
		// identifiers and passwords cannot be bound as parameters in DDL
		q := fmt.Sprintf("CREATE USER %s CREATEDB ENCRYPTED PASSWORD %s",
			pq.QuoteIdentifier(conf.User), pq.QuoteLiteral(conf.Password))
		if _, err = db.Exec(q); err != nil {
			return errors.Wrap(err, "creating app user")
		}
	}
	return nil
}

func createDB(db *sql.DB, conf core.DatabaseConfig) error {
	found, err := exists(db, "SELECT true FROM pg_database WHERE datname = $1", conf.Name)
	if err != nil {
		return errors.Wrap(err, "checking DB")
	}
	if !found {
		if _, err = db.Exec("CREATE DATABASE " + pq.QuoteIdentifier(conf.Name)); err != nil {
			return errors.Wrap(err, "creating database")
		}
	}
	return nil
}

// CreateIfNotExist creates the application user and database.
func CreateIfNotExist(conf core.DatabaseConfig) error {
	// connect as admin
	db, err := open("postgres", true, conf)
	if err != nil {
		return errors.Wrap(err, "opening database")
	}
	defer func() { _ = db.Close() }()

	if err = ping(db); err != nil {
		return errors.Wrap(err, "pinging database")
	}
	if err = createAppUser(db, conf); err != nil {
		return err
	}

	// create DB as app user
	appDB, err := open("postgres", false, conf)
	if err != nil {
		return errors.Wrap(err, "opening database")
	}
	defer func() { _ = appDB.Close() }()
	return createDB(appDB, conf)
}

// Migrate applies every pending migration embedded in appfs.FS.
func Migrate(db *sql.DB) error {
	goose.SetBaseFS(appfs.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Wrap(err, "setting goose dialect")
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return errors.Wrap(err, "migrating database")
	}
	return nil
}
