package address

import (
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wichananm65/marketplace-backend/internal/user/usertest"
)

func TestAddressRoutes(t *testing.T) {
	h := NewHandler(newTestService())
	app := usertest.NewApp(h.RegisterProtectedRoutes)

	routes := map[string]bool{}
	for _, grp := range app.Stack() {
		for _, r := range grp {
			routes[r.Path] = true
		}
	}
	require.True(t, routes["/api/v1/address"], "expected /api/v1/address registered")

	res, err := app.Test(usertest.Request("GET", "/api/v1/address", "", "", ""))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, res.StatusCode)

	body := `{"label":"Home","fullName":"Ann","phone":"081","street":"1 Main","city":"BKK","zip":"10330","country":"TH"}`
	res, err = app.Test(usertest.Request("POST", "/api/v1/address", body, "42", "buyer"))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, res.StatusCode)
	var created Address
	require.NoError(t, json.NewDecoder(res.Body).Decode(&created))
	assert.Equal(t, "1 Main", created.Address)

	res, err = app.Test(usertest.Request("POST", "/api/v1/address", `{"name":"Ann"}`, "42", "buyer"))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, res.StatusCode)

	patch := strings.Replace(body, `"city":"BKK"`, `"city":"Phuket"`, 1)
	patch = strings.Replace(patch, "{", `{"addressId":"`+created.ID+`",`, 1)
	res, err = app.Test(usertest.Request("PATCH", "/api/v1/address", patch, "42", "buyer"))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, res.StatusCode)
	b, _ := io.ReadAll(res.Body)
	assert.Contains(t, string(b), "Phuket")

	res, err = app.Test(usertest.Request("GET", "/api/v1/address/"+created.ID, "", "7", "buyer"))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, res.StatusCode)

	res, err = app.Test(usertest.Request("DELETE", "/api/v1/address", `{"addressId":"`+created.ID+`"}`, "42", "buyer"))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)

	res, err = app.Test(usertest.Request("GET", "/api/v1/address", "", "42", "buyer"))
	require.NoError(t, err)
	b, _ = io.ReadAll(res.Body)
	assert.JSONEq(t, `[]`, string(b))
}
