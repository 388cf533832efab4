package user

import (
	"encoding/json"
	"io"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wichananm65/marketplace-backend/internal/user/usertest"
)

func newTestApp(svc *Service) *fiber.App {
	h := NewHandler(svc)
	return usertest.NewApp(h.RegisterPublicRoutes, h.RegisterProtectedRoutes)
}

func decode(t *testing.T, body io.Reader, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(body).Decode(v))
}

func TestSignUpAndSignIn(t *testing.T) {
	app := newTestApp(newTestService())

	res, err := app.Test(usertest.Request("POST", "/api/v1/sign-up",
		`{"name":"Ann","email":"ann@example.com","password":"secret1"}`, "", ""))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, res.StatusCode)
	b, _ := io.ReadAll(res.Body)
	assert.NotContains(t, string(b), "password")

	res, err = app.Test(usertest.Request("POST", "/api/v1/sign-up",
		`{"name":"Ann","email":"ann@example.com","password":"secret1"}`, "", ""))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, res.StatusCode)

	res, err = app.Test(usertest.Request("POST", "/api/v1/sign-in",
		`{"email":"ann@example.com","password":"wrong-one"}`, "", ""))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, res.StatusCode)
	var failed map[string]any
	decode(t, res.Body, &failed)
	assert.Equal(t, "auth/wrong-password", failed["code"])

	res, err = app.Test(usertest.Request("POST", "/api/v1/sign-in",
		`{"email":"ann@example.com","password":"secret1"}`, "", ""))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, res.StatusCode)
	var ok map[string]any
	decode(t, res.Body, &ok)
	assert.NotEmpty(t, ok["token"])
}

func TestProfileRoute_Auth(t *testing.T) {
	app := newTestApp(newTestService(User{ID: "u7", Name: "Jenny", Email: "j@example.com", Role: RoleBuyer, Password: "hash"}))

	routes := map[string]bool{}
	for _, grp := range app.Stack() {
		for _, r := range grp {
			routes[r.Path] = true
		}
	}
	require.True(t, routes["/api/v1/profile"])

	res, err := app.Test(usertest.Request("GET", "/api/v1/profile", "", "", ""))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, res.StatusCode)

	res, err = app.Test(usertest.Request("GET", "/api/v1/profile", "", "u7", "buyer"))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, res.StatusCode)
	b, _ := io.ReadAll(res.Body)
	assert.Contains(t, string(b), "j@example.com")
	assert.NotContains(t, string(b), "hash")

	res, err = app.Test(usertest.Request("PATCH", "/api/v1/profile", `{"phone":"0812345678"}`, "u7", "buyer"))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, res.StatusCode)
	var updated User
	decode(t, res.Body, &updated)
	assert.Equal(t, "0812345678", updated.Phone)
	assert.Equal(t, "Jenny", updated.Name)
}

func TestAdminRoutes_RequireAdmin(t *testing.T) {
	svc := newTestService(
		User{ID: "a1", Name: "Root", Email: "root@example.com", Role: RoleAdmin, Approved: true},
		User{ID: "s1", Name: "Sam", Email: "sam@example.com", Role: RoleSeller},
	)
	app := newTestApp(svc)

	res, err := app.Test(usertest.Request("GET", "/api/v1/admin/users", "", "s1", "seller"))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, res.StatusCode)

	res, err = app.Test(usertest.Request("GET", "/api/v1/admin/users?role=seller", "", "a1", "admin"))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, res.StatusCode)
	var users []User
	decode(t, res.Body, &users)
	require.Len(t, users, 1)
	assert.False(t, users[0].Approved)

	res, err = app.Test(usertest.Request("PATCH", "/api/v1/admin/users/s1/approve", "", "a1", "admin"))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, res.StatusCode)
	var approved User
	decode(t, res.Body, &approved)
	assert.True(t, approved.Approved)

	res, err = app.Test(usertest.Request("DELETE", "/api/v1/admin/users/nope", "", "a1", "admin"))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, res.StatusCode)
}

func TestRequireApprovedSeller(t *testing.T) {
	svc := newTestService(
		User{ID: "s1", Email: "s1@example.com", Role: RoleSeller},
		User{ID: "s2", Email: "s2@example.com", Role: RoleSeller, Approved: true},
		User{ID: "b1", Email: "b1@example.com", Role: RoleBuyer, Approved: true},
	)
	app := usertest.NewApp(func(app *fiber.App) {
		app.Post("/write", RequireApprovedSeller(svc), func(c *fiber.Ctx) error {
			return c.SendStatus(fiber.StatusNoContent)
		})
	})

	cases := []struct {
		id, role string
		want     int
	}{
		{"s1", "seller", fiber.StatusForbidden},
		{"s2", "seller", fiber.StatusNoContent},
		{"b1", "buyer", fiber.StatusForbidden},
		{"a1", "admin", fiber.StatusNoContent},
		{"", "", fiber.StatusUnauthorized},
	}
	for _, tc := range cases {
		res, err := app.Test(usertest.Request("POST", "/write", "", tc.id, tc.role))
		require.NoError(t, err)
		assert.Equal(t, tc.want, res.StatusCode, tc.id)
	}
}
