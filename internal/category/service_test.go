package category

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wichananm65/marketplace-backend/internal/apperr"
)

type fakeCounter map[string]int

func (f fakeCounter) CountByCategory(ctx context.Context, id string) (int, error) {
	return f[id], nil
}

func newTestService(counts fakeCounter, seed ...Category) *Service {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewService(NewInMemoryRepository(seed), counts, log)
}

func TestCreate_NameRules(t *testing.T) {
	svc := newTestService(fakeCounter{})
	ctx := context.Background()

	_, err := svc.Create(ctx, "  ")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	created, err := svc.Create(ctx, " Toys ")
	require.NoError(t, err)
	assert.Equal(t, "Toys", created.Name)

	_, err = svc.Create(ctx, "toys")
	assert.ErrorIs(t, err, ErrNameTaken)

	renamed, err := svc.Rename(ctx, created.ID, "TOYS")
	require.NoError(t, err)
	assert.Equal(t, "TOYS", renamed.Name)
}

func TestDelete_BlockedWhileInUse(t *testing.T) {
	counts := fakeCounter{"c1": 2}
	svc := newTestService(counts, Category{ID: "c1", Name: "Food"}, Category{ID: "c2", Name: "Toys"})
	ctx := context.Background()

	err := svc.Delete(ctx, "c1")
	require.ErrorIs(t, err, ErrInUse)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	ok, err := svc.Exists(ctx, "c1")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, svc.Delete(ctx, "c2"))
	ok, err = svc.Exists(ctx, "c2")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.ErrorIs(t, svc.Delete(ctx, "missing"), ErrNotFound)
}
