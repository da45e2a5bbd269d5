package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FirstShop/internal/storage"
)

func TestCart_InvocationsShareTheOrigin(t *testing.T) {
	env := testEnv(storage.NewMemArea())

	out, err := run(t, env, "cart", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Your cart is empty")

	_, err = run(t, env, "cart", "add", "1", "--qty", "3", "--size", "L")
	require.NoError(t, err)
	out, err = run(t, env, "cart", "add", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Items: 4")
	assert.Contains(t, out, "Subtotal: 60.00")
	assert.Contains(t, out, "Shipping: 10.00")
	assert.Contains(t, out, "Total: 70.00")
	assert.Contains(t, out, "L")

	out, err = run(t, env, "cart", "set", "1", "0")
	require.NoError(t, err)
	assert.NotContains(t, out, "Trail Socks")

	out, err = run(t, env, "--format", "json", "cart", "remove", "2")
	require.NoError(t, err)
	var resp struct {
		Data cartView `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Empty(t, resp.Data.Items)
	assert.Zero(t, resp.Data.Count)
}

func TestCart_AddErrors(t *testing.T) {
	env := testEnv(storage.NewMemArea())

	_, err := run(t, env, "cart", "add", "1")
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, err = run(t, env, "cart", "add", "99")
	assert.Equal(t, ExitFailure, GetExitCode(err))

	out, err := run(t, env, "--format", "json", "cart", "add", "nope")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, `"status":"error"`)
}

func TestCheckout(t *testing.T) {
	env := testEnv(storage.NewMemArea())

	_, err := run(t, env, "checkout", "begin")
	assert.Equal(t, ExitFailure, GetExitCode(err))

	_, err = run(t, env, "checkout", "summary")
	assert.Equal(t, ExitFailure, GetExitCode(err))

	_, err = run(t, env, "cart", "add", "2", "--qty", "4")
	require.NoError(t, err)

	out, err := run(t, env, "checkout", "begin")
	require.NoError(t, err)
	assert.Contains(t, out, "Checkout started with 4 items")
	assert.Contains(t, out, "Total: 120.00")

	out, err = run(t, env, "checkout", "summary")
	require.NoError(t, err)
	assert.Contains(t, out, "Tax: 9.60")
	assert.Contains(t, out, "Total: 129.60")
}
