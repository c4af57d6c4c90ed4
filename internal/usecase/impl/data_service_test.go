package impl

import (
	"testing"

	"finboard/internal/domain/entity"
	"finboard/internal/infra/persistence/appdata"
	"finboard/internal/infra/seed"
	"finboard/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataService_InitialStateIsSeed(t *testing.T) {
	data, _, _ := newTestData()

	snap := data.Snapshot()

	seedData := seed.Dataset()
	assert.Equal(t, entity.StatusIdle, snap.Status)
	assert.Len(t, snap.Users, len(seedData.Users))
	assert.Len(t, snap.Merchants, len(seedData.Merchants))
	assert.InDelta(t, seed.DefaultContributionRate, snap.ContributionRate, 1e-9)
}

func TestDataService_LoadFromDurable_AbsentKeysKeepCurrentValue(t *testing.T) {
	data, _, kv := newTestData()

	// A blob carrying only a users key must not reset the other collections.
	require.NoError(t, kv.Set(appdata.KeyAppData, `{"users":[{"id":"u9","name":"Only","registrationDate":"2024-04-01T00:00:00Z"}]}`))

	require.NoError(t, data.LoadFromDurable())

	snap := data.Snapshot()
	assert.Equal(t, entity.StatusSucceeded, snap.Status)
	require.Len(t, snap.Users, 1)
	assert.Equal(t, "u9", snap.Users[0].ID)
	assert.Len(t, snap.Merchants, len(seed.Dataset().Merchants))
}

func TestDataService_LoadFromDurable_MalformedBlobKeepsState(t *testing.T) {
	data, _, kv := newTestData()
	require.NoError(t, kv.Set(appdata.KeyAppData, "{broken"))

	require.NoError(t, data.LoadFromDurable())

	snap := data.Snapshot()
	assert.Equal(t, entity.StatusSucceeded, snap.Status)
	assert.Len(t, snap.Users, len(seed.Dataset().Users))
}

func TestDataService_ApprovePurchase(t *testing.T) {
	data, adapter, _ := newTestData()
	before := data.Snapshot()

	require.NoError(t, data.ApprovePurchase("p2"))

	snap := data.Snapshot()
	var approved *entity.Purchase
	for i := range snap.Purchases {
		if snap.Purchases[i].ID == "p2" {
			approved = &snap.Purchases[i]
		}
	}
	require.NotNil(t, approved)
	assert.True(t, approved.Approved)

	require.Len(t, snap.Notifications, len(before.Notifications)+1)
	last := snap.Notifications[len(snap.Notifications)-1]
	assert.Equal(t, entity.NotificationSuccess, last.Type)
	assert.Contains(t, last.Text, "p2")

	// Write-through happened.
	doc := adapter.ReadBlob()
	require.NotNil(t, doc)
	assert.Len(t, doc.Notifications, len(snap.Notifications))
}

func TestDataService_ApprovePurchase_UnknownIDIsNoOp(t *testing.T) {
	data, adapter, _ := newTestData()
	before := data.Snapshot()

	require.NoError(t, data.ApprovePurchase("p999"))

	snap := data.Snapshot()
	assert.Len(t, snap.Notifications, len(before.Notifications))
	assert.Nil(t, adapter.ReadBlob(), "no-op must not persist")
}

func TestDataService_AddUser(t *testing.T) {
	data, adapter, _ := newTestData()

	user, err := data.AddUser(usecase.AddUserInput{
		Name:     "Rieke",
		Email:    "rieke@example.com",
		Password: "secret",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Zero(t, user.Points)

	snap := data.Snapshot()
	balance, ok := snap.Points[user.ID]
	require.True(t, ok, "new user must get a zero ledger entry")
	assert.Zero(t, balance)

	doc := adapter.ReadBlob()
	require.NotNil(t, doc)
	assert.Len(t, doc.Users, len(snap.Users))
}

func TestDataService_AddMerchant_EmitsInfoNotification(t *testing.T) {
	data, _, _ := newTestData()
	before := data.Snapshot()

	merchant, err := data.AddMerchant(usecase.AddMerchantInput{
		StoreName: "Corner Cafe",
		Owner:     "Mina",
		Email:     "cafe@example.com",
		Password:  "secret",
	})

	require.NoError(t, err)
	assert.Equal(t, entity.MerchantStatusActive, merchant.Status)

	snap := data.Snapshot()
	require.Len(t, snap.Notifications, len(before.Notifications)+1)
	last := snap.Notifications[len(snap.Notifications)-1]
	assert.Equal(t, entity.NotificationInfo, last.Type)
	assert.Contains(t, last.Text, "Corner Cafe")
}

func TestDataService_DeleteUser_Cascades(t *testing.T) {
	data, _, _ := newTestData()

	require.NoError(t, data.DeleteUser("u1"))

	snap := data.Snapshot()
	for _, user := range snap.Users {
		assert.NotEqual(t, "u1", user.ID)
	}
	for _, purchase := range snap.Purchases {
		assert.NotEqual(t, "u1", purchase.CustomerID, "purchase %s dangles", purchase.ID)
	}
	_, ok := snap.Points["u1"]
	assert.False(t, ok, "ledger entry must be removed")

	last := snap.Notifications[len(snap.Notifications)-1]
	assert.Equal(t, entity.NotificationWarning, last.Type)
	assert.Contains(t, last.Text, "u1")
}

func TestDataService_DeleteMerchant_Cascades(t *testing.T) {
	data, _, _ := newTestData()

	require.NoError(t, data.DeleteMerchant("m2"))

	snap := data.Snapshot()
	for _, merchant := range snap.Merchants {
		assert.NotEqual(t, "m2", merchant.ID)
	}
	for _, purchase := range snap.Purchases {
		assert.NotEqual(t, "m2", purchase.MerchantID, "purchase %s dangles", purchase.ID)
	}
}

func TestDataService_DeleteUnknownIDIsNoOp(t *testing.T) {
	data, adapter, _ := newTestData()
	before := data.Snapshot()

	require.NoError(t, data.DeleteUser("ghost"))
	require.NoError(t, data.DeleteMerchant("ghost"))

	snap := data.Snapshot()
	assert.Len(t, snap.Users, len(before.Users))
	assert.Len(t, snap.Merchants, len(before.Merchants))
	assert.Len(t, snap.Notifications, len(before.Notifications))
	assert.Nil(t, adapter.ReadBlob())
}

func TestDataService_SetContributionRate(t *testing.T) {
	data, adapter, _ := newTestData()

	require.NoError(t, data.SetContributionRate(0.25))

	assert.InDelta(t, 0.25, data.Snapshot().ContributionRate, 1e-9)
	doc := adapter.ReadBlob()
	require.NotNil(t, doc)
	require.NotNil(t, doc.ContributionRate)
	assert.InDelta(t, 0.25, *doc.ContributionRate, 1e-9)
}

func TestDataService_ForceSyncRoundTrip(t *testing.T) {
	data, adapter, _ := newTestData()

	require.NoError(t, data.DeleteUser("u1"))
	require.NoError(t, data.ForceSyncToDurable())

	// A second process sharing the same store pulls the pushed state.
	other := NewDataService(adapter, newDiscardLogger())
	require.NoError(t, other.ForceSyncFromDurable())
	snap := other.Snapshot()
	assert.Len(t, snap.Users, len(seed.Dataset().Users)-1)
	for _, user := range snap.Users {
		assert.NotEqual(t, "u1", user.ID)
	}
}

func TestDataService_ResetToSeed(t *testing.T) {
	data, adapter, _ := newTestData()

	require.NoError(t, data.DeleteUser("u1"))
	require.True(t, adapter.HasBlob())

	require.NoError(t, data.ResetToSeed())

	assert.False(t, adapter.HasBlob(), "durable blob must be erased")
	snap := data.Snapshot()
	assert.Len(t, snap.Users, len(seed.Dataset().Users))
}

func TestDataService_RepairNotificationIDs(t *testing.T) {
	data, _, kv := newTestData()

	blob := `{"notifications":[{"id":"n1","text":"a","type":"info"},{"id":"n1","text":"b","type":"info"},{"id":"n2","text":"c","type":"info"}]}`
	require.NoError(t, kv.Set(appdata.KeyAppData, blob))
	require.NoError(t, data.LoadFromDurable())

	require.NoError(t, data.RepairNotificationIDs())

	snap := data.Snapshot()
	require.Len(t, snap.Notifications, 3)
	assert.Equal(t, "n1", snap.Notifications[0].ID)
	assert.NotEqual(t, "n1", snap.Notifications[1].ID)
	assert.Equal(t, "n2", snap.Notifications[2].ID)
	assert.Equal(t, "b", snap.Notifications[1].Text, "record order must survive repair")
}

func TestDataService_SubscribeObservesMutations(t *testing.T) {
	data, _, _ := newTestData()

	var observed []usecase.Snapshot
	cancel := data.Subscribe(func(snap usecase.Snapshot) {
		observed = append(observed, snap)
	})
	defer cancel()

	require.NoError(t, data.SetContributionRate(0.2))
	require.NoError(t, data.AddNotification("hello", entity.NotificationInfo))

	require.Len(t, observed, 2)
	assert.InDelta(t, 0.2, observed[0].ContributionRate, 1e-9)

	cancel()
	require.NoError(t, data.SetContributionRate(0.3))
	assert.Len(t, observed, 2)
}

func TestDataService_Lookups(t *testing.T) {
	data, _, _ := newTestData()

	user, ok := data.UserByIdentifier("sofia@example.com")
	require.True(t, ok)
	assert.Equal(t, "u1", user.ID)

	user, ok = data.UserByIdentifier("01710000002")
	require.True(t, ok)
	assert.Equal(t, "u2", user.ID)

	_, ok = data.UserByIdentifier("unknown@example.com")
	assert.False(t, ok)

	merchant, ok := data.MerchantByEmail("techcorner@example.com")
	require.True(t, ok)
	assert.Equal(t, "m2", merchant.ID)
}
