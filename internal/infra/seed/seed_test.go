package seed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataset_Shape(t *testing.T) {
	data := Dataset()

	assert.NotEmpty(t, data.Users)
	assert.NotEmpty(t, data.Merchants)
	assert.NotEmpty(t, data.Purchases)
	assert.NotEmpty(t, data.Notifications)
	assert.InDelta(t, DefaultContributionRate, data.ContributionRate, 1e-9)

	// Every user has a ledger entry and every purchase references live accounts.
	users := make(map[string]bool, len(data.Users))
	for _, user := range data.Users {
		users[user.ID] = true
		_, ok := data.Points[user.ID]
		require.True(t, ok, "user %s has no points entry", user.ID)
	}
	merchants := make(map[string]bool, len(data.Merchants))
	for _, merchant := range data.Merchants {
		merchants[merchant.ID] = true
	}
	for _, purchase := range data.Purchases {
		assert.True(t, users[purchase.CustomerID], "purchase %s has dangling customer", purchase.ID)
		assert.True(t, merchants[purchase.MerchantID], "purchase %s has dangling merchant", purchase.ID)
	}
}

func TestDataset_ReturnsIndependentCopies(t *testing.T) {
	first := Dataset()
	first.Users[0].Name = "mutated"
	first.Points["u1"] = -1

	second := Dataset()
	assert.NotEqual(t, "mutated", second.Users[0].Name)
	assert.NotEqual(t, -1, second.Points["u1"])
}
