package category

import (
	"encoding/json"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wichananm65/marketplace-backend/internal/user/usertest"
)

func TestCategoryRoutes(t *testing.T) {
	svc := newTestService(fakeCounter{"c1": 1}, Category{ID: "c1", Name: "Food"})
	h := NewHandler(svc)
	app := usertest.NewApp(h.RegisterPublicRoutes, h.RegisterProtectedRoutes)

	res, err := app.Test(usertest.Request("GET", "/api/v1/categories", "", "", ""))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, res.StatusCode)
	var items []Category
	require.NoError(t, json.NewDecoder(res.Body).Decode(&items))
	assert.Len(t, items, 1)

	res, err = app.Test(usertest.Request("POST", "/api/v1/categories", `{"name":"Toys"}`, "s1", "seller"))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, res.StatusCode)

	res, err = app.Test(usertest.Request("POST", "/api/v1/categories", `{"name":"Toys"}`, "a1", "admin"))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, res.StatusCode)

	res, err = app.Test(usertest.Request("DELETE", "/api/v1/categories/c1", "", "a1", "admin"))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, res.StatusCode)
}
