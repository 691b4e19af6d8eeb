package repositories

import (
	"context"
	"testing"

	"example.com/cartonbox/internal/apperrors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockedDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestStoreFailureSurfacesAsDatabaseError(t *testing.T) {
	db, mock := newMockedDB(t)
	repo := NewCustomerRepository(db, db)

	cause := errors.New("connection reset by peer")
	mock.ExpectQuery(`SELECT count(.+) FROM "customers"`).WillReturnError(cause)

	_, _, err := repo.List(context.Background(), ListParams{})

	require.Error(t, err)
	require.True(t, apperrors.IsDatabase(err))
	require.Equal(t, "DATABASE_ERROR", apperrors.CodeOf(err))
	require.True(t, errors.Is(err, cause))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMissingRowStaysNotFound(t *testing.T) {
	db, mock := newMockedDB(t)
	repo := NewPurchaseOrderRepository(db, db)

	mock.ExpectQuery(`SELECT (.+) FROM "purchase_orders"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByID(context.Background(), uuid.New())

	require.Error(t, err)
	require.True(t, apperrors.IsNotFound(err))
	require.False(t, apperrors.IsDatabase(err))
	require.NoError(t, mock.ExpectationsWereMet())
}
