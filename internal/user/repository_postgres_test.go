package user

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresRepository_GetByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "name", "email", "password", "phone", "address", "role", "shop_name", "approved", "created_at", "updated_at"}).
		AddRow("s1", "Sam", "sam@example.com", "hash", "", "", "seller", "Sam's", false, now, now)
	mock.ExpectQuery(regexp.QuoteMeta(getUserByEmailQuery)).WithArgs("SAM@example.com").WillReturnRows(rows)

	repo := NewPostgresRepository(db)
	u, err := repo.GetByEmail(context.Background(), "SAM@example.com")
	require.NoError(t, err)
	assert.Equal(t, RoleSeller, u.Role)
	assert.Equal(t, "Sam's", u.ShopName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_GetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(getUserByIDQuery)).WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err = NewPostgresRepository(db).GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostgresRepository_CreateDuplicateEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(insertUserQuery)).
		WillReturnError(&pgconn.PgError{Code: uniqueViolation})

	_, err = NewPostgresRepository(db).Create(context.Background(), User{ID: "x", Email: "a@example.com", Role: RoleBuyer})
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestPostgresRepository_UpdateMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(updateUserQuery)).WillReturnResult(sqlmock.NewResult(0, 0))

	_, err = NewPostgresRepository(db).Update(context.Background(), User{ID: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}
