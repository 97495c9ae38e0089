package database

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedEmptyTable(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	spaces := []SeedSpace{{"Bagno 1", "desc", 3000}, {"Giardino", "desc", 4000}}
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM spaces FOR UPDATE")).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))
	for _, s := range spaces {
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO spaces (name, description, cost) VALUES (?, ?, ?)")).
			WithArgs(s.Name, s.Description, s.Cost).
			WillReturnResult(sqlmock.NewResult(1, 1))
	}
	mock.ExpectCommit()

	n, err := Seed(context.Background(), db, spaces)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeedLeavesExistingCatalog(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM spaces")).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(20))
	mock.ExpectRollback()

	n, err := Seed(context.Background(), db, DefaultCatalog)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeedInsertFailureRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM spaces")).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))
	mock.ExpectExec("INSERT INTO spaces").WillReturnError(errors.New("check constraint"))
	mock.ExpectRollback()

	_, err = Seed(context.Background(), db, DefaultCatalog)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateRunsEveryStatement(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	for range schema {
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS").WillReturnResult(sqlmock.NewResult(0, 0))
	}
	require.NoError(t, Migrate(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDefaultCatalog(t *testing.T) {
	require.Len(t, DefaultCatalog, 20)
	names := map[string]bool{}
	for _, s := range DefaultCatalog {
		assert.Positive(t, s.Cost, s.Name)
		assert.False(t, names[s.Name], "duplicate %s", s.Name)
		names[s.Name] = true
	}
}

func TestOptionsDSN(t *testing.T) {
	dsn := Options{User: "adopt", Password: "s3cret", Host: "db", Port: "3306", Name: "adoption"}.DSN()
	c, err := mysql.ParseDSN(dsn)
	require.NoError(t, err)
	assert.Equal(t, "adopt", c.User)
	assert.Equal(t, "s3cret", c.Passwd)
	assert.Equal(t, "db:3306", c.Addr)
	assert.Equal(t, "adoption", c.DBName)
	assert.True(t, c.ParseTime)
	assert.Equal(t, time.UTC, c.Loc)
	assert.Contains(t, dsn, "charset=utf8mb4")
}
