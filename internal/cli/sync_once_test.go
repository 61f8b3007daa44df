package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePolicyFlag(t *testing.T) {
	t.Run("single field", func(t *testing.T) {
		policy, err := parsePolicyFlag("inventory")
		require.NoError(t, err)
		assert.True(t, policy.InventoryQuantity)
		assert.False(t, policy.VariantPrice)
	})

	t.Run("multiple fields with spaces and case", func(t *testing.T) {
		policy, err := parsePolicyFlag("Inventory, PRICE ,title")
		require.NoError(t, err)
		assert.True(t, policy.InventoryQuantity)
		assert.True(t, policy.VariantPrice)
		assert.True(t, policy.ProductTitle)
	})

	t.Run("unknown field", func(t *testing.T) {
		_, err := parsePolicyFlag("inventory,bogus")
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unknown policy field "bogus"`)
	})

	t.Run("empty selects nothing", func(t *testing.T) {
		_, err := parsePolicyFlag("")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no fields")
	})
}

func TestSyncOnceCommand_ParseFlags(t *testing.T) {
	cmd := NewSyncOnceCommand()
	err := cmd.ParseFlags([]string{"-feed", "warehouse", "-dry-run", "-threshold", "90"})
	require.NoError(t, err)

	assert.Equal(t, "warehouse", cmd.FeedName)
	assert.True(t, cmd.DryRun)
	assert.Equal(t, 90, cmd.Threshold)
	assert.Equal(t, "inventory", cmd.Policy)
}
