package utils

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func TestSendSuccessWrapsPayload(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return SendSuccess(c, "done", fiber.Map{"id": 1})
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var payload APIResponse
	require.NoError(t, json.Unmarshal(body, &payload))
	require.True(t, payload.Success)
	require.Equal(t, "done", payload.Message)
	require.NotNil(t, payload.Data)
}

func TestSendErrorSetsStatusAndMessage(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return SendError(c, fiber.StatusNotFound, "missing")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var payload APIResponse
	require.NoError(t, json.Unmarshal(body, &payload))
	require.False(t, payload.Success)
	require.Equal(t, "missing", payload.Message)
}
