package storage

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
)

// Dialect names the database/sql driver backing a Storage.
type Dialect string

const (
	SQLite   Dialect = "sqlite3"
	Postgres Dialect = "postgres"
)

var ErrSchemaMismatch = errors.New("schema mismatch")

// tables in dependency order; dropping follows the reverse
var tables = []string{"users", "categories", "tags", "wallpapers", "wallpaper_tags", "subscriptions"}

type Storage struct {
	Connection *sqlx.DB
	Dialect    Dialect
	logger     logrus.FieldLogger
}

// New opens the database identified by url, either a `postgres://` URL or a SQLite file path, and ensures its
// schema is in place. Existing SQLite files must match the embedded schema.
func New(logger logrus.FieldLogger, url string) (*Storage, error) {
	var storage = &Storage{logger: logger}
	var err error

	if isPostgresURL(url) {
		logger.Info("initialising Postgres DB")
		storage.Dialect = Postgres
		storage.Connection, err = openPostgres(url)
	} else {
		logger.WithField("path", url).Info("initialising SQLite DB")
		storage.Dialect = SQLite
		storage.Connection, err = openSQLite(logger, url)
	}
	if err != nil {
		return nil, err
	}

	// opening the DB will fail silently when the package is compiled without CGO_ENABLED
	if err = storage.Connection.Ping(); err != nil {
		_ = storage.Connection.Close()
		return nil, err
	}
	return storage, nil
}

func isPostgresURL(url string) bool {
	return strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://")
}

func openPostgres(url string) (*sqlx.DB, error) {
	connection, err := sqlx.Open(string(Postgres), url)
	if err != nil {
		return nil, err
	}
	if _, err = connection.Exec(postgresSchema); err != nil {
		_ = connection.Close()
		return nil, fmt.Errorf("building postgres schema: %w", err)
	}
	return connection, nil
}

func openSQLite(logger logrus.FieldLogger, path string) (connection *sqlx.DB, err error) {

	// the database already exists, check for its contents
	if _, err := os.Stat(path); err == nil {
		connection, err = getValidConnection(path)
		if err != nil {
			logger.WithError(err).Error("error while verifying existing database")
			return nil, err
		}
		return connection, nil
	}

	// create the file and initialise the schema; mind the explicit need for foreign keys constraints
	connection, err = sqlx.Open(string(SQLite), getConnectionString(path))
	if err != nil {
		logger.WithError(err).Error("error while creating new database")
		return nil, err
	}
	limitConnections(connection)
	if _, err = connection.Exec(sqliteSchema); err != nil {
		logger.WithError(err).Error("error while building database schema")
		_ = connection.Close()
		return nil, err
	}
	return connection, nil
}

// limitConnections keeps a single writer, as SQLite locks the whole file on writes.
func limitConnections(connection *sqlx.DB) {
	connection.SetMaxOpenConns(1)
}

func getValidConnection(path string) (*sqlx.DB, error) {
	connection, err := sqlx.Open(string(SQLite), getConnectionString(path))
	if err != nil {
		return nil, err
	}
	limitConnections(connection)

	// read the schema as defined in the storage package
	desired, err := sqlx.Open(string(SQLite), ":memory:")
	if err != nil {
		_ = connection.Close()
		return nil, err
	}
	defer desired.Close()
	desired.SetMaxOpenConns(1)

	if _, err = desired.Exec(sqliteSchema); err != nil {
		_ = connection.Close()
		return nil, err
	}

	// compare the defined schema with the actual one found in the existing database
	desiredTables, err := mapSchema(desired)
	if err != nil {
		_ = connection.Close()
		return nil, err
	}
	actualTables, err := mapSchema(connection)
	if err != nil {
		_ = connection.Close()
		return nil, err
	}

	// the database already exists and its schema matches the desired one
	if sameSchemaMap(desiredTables, actualTables) {
		return connection, nil
	}
	_ = connection.Close()
	return nil, ErrSchemaMismatch
}

func mapSchema(connection *sqlx.DB) (tables map[string]string, err error) {

	rows, err := connection.Query(`SELECT name, sql FROM sqlite_master WHERE type = 'table'`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	// in memory and on file sqlite schemas can differ by line endings, depending on the hosting platform
	var replacer = strings.NewReplacer(
		"\r\n", "",
		"\n", "",
		"\t", "",
	)

	tables = make(map[string]string)
	var name, sqlCode string
	for rows.Next() {
		if err = rows.Scan(&name, &sqlCode); err != nil {
			return tables, err
		}
		tables[name] = replacer.Replace(sqlCode)
	}

	return tables, rows.Err()
}

func sameSchemaMap(first, second map[string]string) bool {
	// the second map might be larger than the first, hence the additional length check
	if len(first) != len(second) {
		return false
	}
	for firstKey, firstValue := range first {
		if secondValue, found := second[firstKey]; !found || secondValue != firstValue {
			return false
		}
	}
	return true
}

// getConnectionString provides a configuration string that enables foreign keys constraints
// and waits on locks rather than failing immediately
func getConnectionString(path string) string {
	return path + "?_fk=on&_busy_timeout=5000"
}

// Reset drops every table and recreates the schema, discarding all data.
func (s *Storage) Reset() error {
	s.logger.Warn("dropping all tables")
	for i := len(tables) - 1; i >= 0; i-- {
		if _, err := s.Connection.Exec("DROP TABLE IF EXISTS " + tables[i]); err != nil {
			return fmt.Errorf("dropping %s: %w", tables[i], err)
		}
	}

	var schema = sqliteSchema
	if s.Dialect == Postgres {
		schema = postgresSchema
	}
	_, err := s.Connection.Exec(schema)
	return err
}

func (s *Storage) Close() error {
	s.logger.Debug("database stopping")
	return s.Connection.Close()
}

// IsUniqueViolation reports whether err stems from a UNIQUE constraint, for either supported driver.
func IsUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
