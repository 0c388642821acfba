package repository

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *AlertRepository) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gdb, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 db,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return db, mock, NewAlertRepo(gdb)
}

func TestAcknowledgeUpdatesUnacknowledgedAlert(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	alertID := uuid.New()
	userID := uuid.New()

	mock.ExpectExec(`UPDATE "alerts" SET .+ WHERE id = .+ AND acknowledged_at IS NULL`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rows, err := repo.Acknowledge(alertID, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAcknowledgeSkipsAlreadyAcknowledgedAlert(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE "alerts" SET .+ WHERE id = .+ AND acknowledged_at IS NULL`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	rows, err := repo.Acknowledge(uuid.New(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, int64(0), rows)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveGuardsOnResolvedAt(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE "alerts" SET .+ WHERE id = .+ AND resolved_at IS NULL`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	rows, err := repo.Resolve(uuid.New())
	require.NoError(t, err)
	assert.Equal(t, int64(0), rows)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStatsScansCountFilterRow(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{
		"total", "critical", "high", "medium", "low", "info", "unacknowledged", "unresolved",
	}).AddRow(12, 2, 3, 4, 2, 1, 5, 7)

	mock.ExpectQuery(`SELECT(.|\n)+COUNT\(\*\)(.|\n)+FROM alerts`).
		WillReturnRows(rows)

	stats, err := repo.Stats(nil)
	require.NoError(t, err)
	assert.Equal(t, int64(12), stats.Total)
	assert.Equal(t, int64(2), stats.Critical)
	assert.Equal(t, int64(5), stats.Unacknowledged)
	assert.Equal(t, int64(7), stats.Unresolved)

	assert.NoError(t, mock.ExpectationsWereMet())
}
