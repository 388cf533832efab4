package user

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wichananm65/marketplace-backend/internal/apperr"
)

func newTestService(seed ...User) *Service {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewService(NewInMemoryRepository(seed), TokenConfig{Secret: []byte("test-secret"), TTL: time.Hour}, log)
}

func authCode(t *testing.T, err error) string {
	t.Helper()
	var e *apperr.Error
	require.ErrorAs(t, err, &e)
	return e.Code
}

func TestRegister_RolesAndApproval(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	buyer, err := svc.Register(ctx, RegisterInput{Name: "Ann", Email: "ann@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, RoleBuyer, buyer.Role)
	assert.True(t, buyer.Approved)
	assert.NotEqual(t, "secret1", buyer.Password)

	seller, err := svc.Register(ctx, RegisterInput{Name: "Sam", Email: "sam@example.com", Password: "secret1", Role: RoleSeller, ShopName: "Sam's"})
	require.NoError(t, err)
	assert.False(t, seller.Approved)
	assert.Equal(t, "Sam's", seller.DisplayName())

	_, err = svc.Register(ctx, RegisterInput{Name: "Eve", Email: "eve@example.com", Password: "secret1", Role: RoleAdmin})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestRegister_AuthCodes(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Name: "A", Email: "not-an-email", Password: "secret1"})
	assert.Equal(t, apperr.CodeInvalidEmail, authCode(t, err))

	_, err = svc.Register(ctx, RegisterInput{Name: "A", Email: "a@example.com", Password: "123"})
	assert.Equal(t, apperr.CodeWeakPassword, authCode(t, err))

	_, err = svc.Register(ctx, RegisterInput{Name: "A", Email: "a@example.com", Password: "secret1"})
	require.NoError(t, err)
	_, err = svc.Register(ctx, RegisterInput{Name: "B", Email: "A@example.com", Password: "secret1"})
	assert.Equal(t, apperr.CodeEmailInUse, authCode(t, err))
}

func TestAuthenticate_Codes(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	_, err := svc.Register(ctx, RegisterInput{Name: "A", Email: "a@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, "nobody@example.com", "secret1")
	assert.Equal(t, apperr.CodeUserNotFound, authCode(t, err))

	_, err = svc.Authenticate(ctx, "a@example.com", "wrong-pass")
	assert.Equal(t, apperr.CodeWrongPassword, authCode(t, err))

	u, err := svc.Authenticate(ctx, "a@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", u.Email)
}

func TestAuthenticate_ThrottlesAfterFiveFailures(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	_, err := svc.Register(ctx, RegisterInput{Name: "A", Email: "a@example.com", Password: "secret1"})
	require.NoError(t, err)

	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	svc.throttle.now = func() time.Time { return now }

	for i := 0; i < maxLoginFailures; i++ {
		_, err = svc.Authenticate(ctx, "a@example.com", "wrong-pass")
		assert.Equal(t, apperr.CodeWrongPassword, authCode(t, err))
	}

	_, err = svc.Authenticate(ctx, "a@example.com", "secret1")
	assert.Equal(t, apperr.CodeTooManyRequests, authCode(t, err))

	now = now.Add(loginWindow + time.Second)
	_, err = svc.Authenticate(ctx, "a@example.com", "secret1")
	require.NoError(t, err)
}

func TestIssueToken_Claims(t *testing.T) {
	svc := newTestService()
	signed, err := svc.IssueToken(User{ID: "u1", Email: "a@example.com", Role: RoleSeller})
	require.NoError(t, err)

	tok, err := jwt.Parse(signed, func(*jwt.Token) (any, error) { return []byte("test-secret"), nil })
	require.NoError(t, err)
	claims := tok.Claims.(jwt.MapClaims)
	assert.Equal(t, "u1", claims["user_id"])
	assert.Equal(t, "seller", claims["role"])
}

func TestSetApprovedAndProfile(t *testing.T) {
	svc := newTestService(User{ID: "s1", Name: "Sam", Email: "s@example.com", Role: RoleSeller})
	ctx := context.Background()

	u, err := svc.SetApproved(ctx, "s1", true)
	require.NoError(t, err)
	assert.True(t, u.Approved)

	shop := "Sam Goods"
	u, err = svc.UpdateProfile(ctx, "s1", ProfileUpdate{ShopName: &shop})
	require.NoError(t, err)
	assert.Equal(t, "Sam Goods", u.ShopName)
	assert.True(t, u.Approved)

	blank := " "
	_, err = svc.UpdateProfile(ctx, "s1", ProfileUpdate{Name: &blank})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = svc.SetApproved(ctx, "missing", true)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEnsureAdmin_Idempotent(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	require.NoError(t, svc.EnsureAdmin(ctx, "root@example.com", "rootpass"))
	require.NoError(t, svc.EnsureAdmin(ctx, "root@example.com", "rootpass"))

	users, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, RoleAdmin, users[0].Role)
	assert.True(t, users[0].Approved)
}
