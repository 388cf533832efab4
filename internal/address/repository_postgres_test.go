package address

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var addressCols = []string{"id", "user_id", "label", "name", "phone", "address", "city", "postal_code", "country", "created_at", "updated_at"}

func TestPostgresRepository_GetScopedByUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(getAddressQuery)).WithArgs("u1", "a1").
		WillReturnRows(sqlmock.NewRows(addressCols).
			AddRow("a1", "u1", "Home", "Ann", "081", "1 Main", "BKK", "10330", "TH", now, now))
	mock.ExpectQuery(regexp.QuoteMeta(getAddressQuery)).WithArgs("u2", "a1").
		WillReturnRows(sqlmock.NewRows(addressCols))

	repo := NewPostgresRepository(db)
	a, err := repo.Get(context.Background(), "u1", "a1")
	require.NoError(t, err)
	assert.Equal(t, "10330", a.PostalCode)

	_, err = repo.Get(context.Background(), "u2", "a1")
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_DeleteMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(deleteAddressQuery)).WithArgs("u1", "nope").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = NewPostgresRepository(db).Delete(context.Background(), "u1", "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}
