package favorite

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresRepository_AddDuplicate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(insertFavoriteQuery)).
		WithArgs("u1", "p1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(insertFavoriteQuery)).
		WithArgs("u1", "p1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewPostgresRepository(db)
	require.NoError(t, repo.Add(context.Background(), "u1", "p1"))
	assert.ErrorIs(t, repo.Add(context.Background(), "u1", "p1"), ErrAlreadyFavorite)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_ProductIDs(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(listFavoritesQuery)).WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"product_id"}).AddRow("p2").AddRow("p1"))

	ids, err := NewPostgresRepository(db).ProductIDs(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"p2", "p1"}, ids)
}
