package product

import (
	"encoding/json"
	"io"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wichananm65/marketplace-backend/internal/user"
	"github.com/wichananm65/marketplace-backend/internal/user/usertest"
)

func newTestApp(t *testing.T, seed ...Product) *fiber.App {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	users := user.NewService(user.NewInMemoryRepository([]user.User{
		{ID: "s1", Email: "s1@example.com", Role: user.RoleSeller, Approved: true},
		{ID: "s9", Email: "s9@example.com", Role: user.RoleSeller},
	}), user.TokenConfig{Secret: []byte("x")}, log)
	h := NewHandler(newTestService(seed...), users)
	return usertest.NewApp(h.RegisterPublicRoutes, h.RegisterProtectedRoutes)
}

func TestPublicProductRoutes(t *testing.T) {
	app := newTestApp(t,
		Product{ID: "p1", Name: "Ball", Category: "toys", SellerID: "s1", ImageData: "data:image/png;base64,aGVsbG8="},
		Product{ID: "p2", Name: "Kibble", Category: "food", SellerID: "s1", ImageData: "https://cdn.example.com/kibble.png"},
		Product{ID: "p3", Name: "Rope", Category: "toys", SellerID: "s2"},
	)

	res, err := app.Test(usertest.Request("GET", "/api/v1/products?category=toys", "", "", ""))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, res.StatusCode)
	var list []Product
	require.NoError(t, json.NewDecoder(res.Body).Decode(&list))
	assert.Len(t, list, 2)

	res, err = app.Test(usertest.Request("GET", "/api/v1/products/p1/image", "", "", ""))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, res.StatusCode)
	assert.Equal(t, "image/png", res.Header.Get("Content-Type"))
	b, _ := io.ReadAll(res.Body)
	assert.Equal(t, "hello", string(b))

	res, err = app.Test(usertest.Request("GET", "/api/v1/products/p2/image", "", "", ""))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusFound, res.StatusCode)
	assert.Equal(t, "https://cdn.example.com/kibble.png", res.Header.Get("Location"))

	res, err = app.Test(usertest.Request("GET", "/api/v1/products/p3/image", "", "", ""))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, res.StatusCode)

	res, err = app.Test(usertest.Request("GET", "/api/v1/products/missing", "", "", ""))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, res.StatusCode)
}

func TestProductWrites_RequireApprovedSeller(t *testing.T) {
	app := newTestApp(t)
	body := `{"name":"Ball","price":"4.99","stock":2,"category":"toys"}`

	res, err := app.Test(usertest.Request("POST", "/api/v1/products", body, "s9", "seller"))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, res.StatusCode)

	res, err = app.Test(usertest.Request("POST", "/api/v1/products", body, "b1", "buyer"))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, res.StatusCode)

	res, err = app.Test(usertest.Request("POST", "/api/v1/products", body, "s1", "seller"))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, res.StatusCode)
	var created Product
	require.NoError(t, json.NewDecoder(res.Body).Decode(&created))
	assert.Equal(t, "4.99", created.Price.String())

	res, err = app.Test(usertest.Request("GET", "/api/v1/seller/products", "", "s1", "seller"))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, res.StatusCode)
	var own []Product
	require.NoError(t, json.NewDecoder(res.Body).Decode(&own))
	assert.Len(t, own, 1)
}
