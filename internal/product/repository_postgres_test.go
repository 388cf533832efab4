package product

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var productCols = []string{"id", "name", "price", "stock", "description", "category_id", "seller_id", "image_data", "created_at", "updated_at"}

func TestPostgresRepository_ListByIDs(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(listProductsByIDsQuery)).WithArgs(sqlmock.AnyArg()).WillReturnRows(
		sqlmock.NewRows(productCols).
			AddRow("p1", "Ball", "9.50", 3, "", "toys", "s1", "", now, now))

	repo := NewPostgresRepository(db)
	got, err := repo.ListByIDs(context.Background(), []string{"p1", "p2"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "9.5", got[0].Price.String())

	empty, err := repo.ListByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_CountByCategory(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(countByCategoryQuery)).WithArgs("toys").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	n, err := NewPostgresRepository(db).CountByCategory(context.Background(), "toys")
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestPostgresRepository_GetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(getProductByIDQuery)).WithArgs("x").WillReturnRows(sqlmock.NewRows(productCols))

	_, err = NewPostgresRepository(db).GetByID(context.Background(), "x")
	assert.ErrorIs(t, err, ErrNotFound)
}
