// Package impl contains the application-specific business rules implementations.
package impl

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"finboard/internal/domain/entity"
	"finboard/internal/identity"
	"finboard/internal/infra/persistence/appdata"
	"finboard/internal/infra/persistence/model"
	"finboard/internal/infra/seed"
	"finboard/internal/usecase"

	"github.com/pkg/errors"
)

// dataService implements the DataUsecase interface. It is the single
// writer of the in-memory working copy; every mutation happens under one
// lock and is followed by a full blob write-through.
type dataService struct {
	adapter *appdata.Adapter
	logger  *slog.Logger

	mu      sync.RWMutex
	state   entity.Dataset
	status  entity.Status
	subs    map[int]func(usecase.Snapshot)
	nextSub int
}

// NewDataService is the constructor for dataService. The working copy
// starts as the seed dataset with status idle, exactly what a fresh
// process sees before the first pull from the durable copy.
func NewDataService(adapter *appdata.Adapter, logger *slog.Logger) usecase.DataUsecase {
	return &dataService{
		adapter: adapter,
		logger:  logger,
		state:   seed.Dataset(),
		status:  entity.StatusIdle,
		subs:    make(map[int]func(usecase.Snapshot)),
	}
}

// Snapshot returns a deep copy of the current state.
func (srv *dataService) Snapshot() usecase.Snapshot {
	srv.mu.RLock()
	defer srv.mu.RUnlock()

	return srv.snapshotLocked()
}

// Subscribe registers an observer notified after every successful mutation.
func (srv *dataService) Subscribe(fn func(usecase.Snapshot)) func() {
	srv.mu.Lock()
	id := srv.nextSub
	srv.nextSub++
	srv.subs[id] = fn
	srv.mu.Unlock()

	return func() {
		srv.mu.Lock()
		delete(srv.subs, id)
		srv.mu.Unlock()
	}
}

// LoadFromDurable overlays the durable blob onto the working copy. Keys
// absent from the blob keep their current in-memory value, so a partial
// blob never resets collections to empty.
func (srv *dataService) LoadFromDurable() error {
	srv.mu.Lock()

	if doc := srv.adapter.ReadBlob(); doc != nil {
		doc.ApplyTo(&srv.state)
	}
	srv.status = entity.StatusSucceeded

	srv.logger.Debug("loaded working copy from durable store",
		slog.Int("users", len(srv.state.Users)),
		slog.Int("merchants", len(srv.state.Merchants)))

	return srv.finish(nil)
}

// ApprovePurchase flips the approved flag and emits a success
// notification. An unknown purchase id is a silent no-op.
func (srv *dataService) ApprovePurchase(purchaseID string) error {
	srv.mu.Lock()

	var purchase *entity.Purchase
	for i := range srv.state.Purchases {
		if srv.state.Purchases[i].ID == purchaseID {
			purchase = &srv.state.Purchases[i]

			break
		}
	}
	if purchase == nil {
		srv.mu.Unlock()
		srv.logger.Debug("approve of unknown purchase ignored", slog.String("purchase_id", purchaseID))

		return nil
	}

	purchase.Approved = true
	srv.appendNotification(fmt.Sprintf("Purchase %s approved", purchaseID), entity.NotificationSuccess)

	return srv.finish(srv.persistLocked())
}

// SetContributionRate unconditionally overwrites the global rate.
func (srv *dataService) SetContributionRate(rate float64) error {
	srv.mu.Lock()
	srv.state.ContributionRate = rate

	return srv.finish(srv.persistLocked())
}

// AddNotification appends a notification with a generated id.
func (srv *dataService) AddNotification(text string, kind entity.NotificationType) error {
	srv.mu.Lock()
	srv.appendNotification(text, kind)

	return srv.finish(srv.persistLocked())
}

// AddUser creates a member account with zero points and a zero ledger
// entry. Email/phone uniqueness is the caller's concern.
func (srv *dataService) AddUser(input usecase.AddUserInput) (entity.User, error) {
	user := entity.User{
		ID:               identity.New("u"),
		Name:             input.Name,
		Email:            input.Email,
		Phone:            input.Phone,
		Points:           0,
		Password:         input.Password,
		RegistrationDate: time.Now().UTC(),
	}

	srv.mu.Lock()
	srv.state.Users = append(srv.state.Users, user)
	srv.state.Points[user.ID] = 0

	srv.logger.Info("user registered", slog.String("user_id", user.ID))

	return user, srv.finish(srv.persistLocked())
}

// AddMerchant creates an active merchant and announces the registration.
func (srv *dataService) AddMerchant(input usecase.AddMerchantInput) (entity.Merchant, error) {
	merchant := entity.Merchant{
		ID:               identity.New("m"),
		StoreName:        input.StoreName,
		Owner:            input.Owner,
		Email:            input.Email,
		Password:         input.Password,
		RegistrationDate: time.Now().UTC(),
		Status:           entity.MerchantStatusActive,
	}

	srv.mu.Lock()
	srv.state.Merchants = append(srv.state.Merchants, merchant)
	srv.appendNotification(fmt.Sprintf("New merchant %s registered", merchant.StoreName), entity.NotificationInfo)

	srv.logger.Info("merchant registered", slog.String("merchant_id", merchant.ID))

	return merchant, srv.finish(srv.persistLocked())
}

// DeleteUser removes the user, its purchases and its ledger entry, and
// emits a warning notification. An unknown id is a silent no-op.
func (srv *dataService) DeleteUser(id string) error {
	srv.mu.Lock()

	users := srv.state.Users[:0:0]
	found := false
	for _, user := range srv.state.Users {
		if user.ID == id {
			found = true

			continue
		}
		users = append(users, user)
	}
	if !found {
		srv.mu.Unlock()
		srv.logger.Debug("delete of unknown user ignored", slog.String("user_id", id))

		return nil
	}

	srv.state.Users = users
	srv.state.Purchases = dropPurchases(srv.state.Purchases, func(p entity.Purchase) bool {
		return p.CustomerID == id
	})
	delete(srv.state.Points, id)
	srv.appendNotification(fmt.Sprintf("User %s deleted", id), entity.NotificationWarning)

	srv.logger.Info("user deleted", slog.String("user_id", id))

	return srv.finish(srv.persistLocked())
}

// DeleteMerchant removes the merchant and its purchases, and emits a
// warning notification. An unknown id is a silent no-op.
func (srv *dataService) DeleteMerchant(id string) error {
	srv.mu.Lock()

	merchants := srv.state.Merchants[:0:0]
	found := false
	for _, merchant := range srv.state.Merchants {
		if merchant.ID == id {
			found = true

			continue
		}
		merchants = append(merchants, merchant)
	}
	if !found {
		srv.mu.Unlock()
		srv.logger.Debug("delete of unknown merchant ignored", slog.String("merchant_id", id))

		return nil
	}

	srv.state.Merchants = merchants
	srv.state.Purchases = dropPurchases(srv.state.Purchases, func(p entity.Purchase) bool {
		return p.MerchantID == id
	})
	srv.appendNotification(fmt.Sprintf("Merchant %s deleted", id), entity.NotificationWarning)

	srv.logger.Info("merchant deleted", slog.String("merchant_id", id))

	return srv.finish(srv.persistLocked())
}

// ForceSyncFromDurable unconditionally pulls the durable copy into
// memory. Used by repair, where the durable copy is ground truth.
func (srv *dataService) ForceSyncFromDurable() error {
	srv.mu.Lock()

	if doc := srv.adapter.ReadBlob(); doc != nil {
		doc.ApplyTo(&srv.state)
	}

	return srv.finish(nil)
}

// ForceSyncToDurable unconditionally pushes the in-memory copy into the
// durable blob.
func (srv *dataService) ForceSyncToDurable() error {
	srv.mu.Lock()

	return srv.finish(srv.persistLocked())
}

// ResetToSeed discards all durable customization: the working copy
// returns to the seed dataset and the durable blob is erased.
func (srv *dataService) ResetToSeed() error {
	srv.mu.Lock()
	srv.state = seed.Dataset()

	srv.logger.Warn("store reset to seed dataset")

	return srv.finish(errors.Wrap(srv.adapter.EraseBlob(), "reset to seed"))
}

// RepairNotificationIDs regenerates the ids of duplicated notifications,
// keeping the first occurrence and the record order intact.
func (srv *dataService) RepairNotificationIDs() error {
	srv.mu.Lock()

	ids := make([]string, len(srv.state.Notifications))
	for i, notification := range srv.state.Notifications {
		ids[i] = notification.ID
	}
	repaired := identity.RepairDuplicates(ids, "n")
	for i := range srv.state.Notifications {
		if srv.state.Notifications[i].ID != repaired[i] {
			srv.logger.Warn("repaired duplicate notification id",
				slog.String("old_id", srv.state.Notifications[i].ID),
				slog.String("new_id", repaired[i]))
			srv.state.Notifications[i].ID = repaired[i]
		}
	}

	return srv.finish(srv.persistLocked())
}

// UserByIdentifier finds a user by email or phone.
func (srv *dataService) UserByIdentifier(identifier string) (entity.User, bool) {
	srv.mu.RLock()
	defer srv.mu.RUnlock()

	for _, user := range srv.state.Users {
		if (user.Email != "" && user.Email == identifier) || (user.Phone != "" && user.Phone == identifier) {
			return user, true
		}
	}

	return entity.User{}, false
}

// MerchantByEmail finds a merchant by email.
func (srv *dataService) MerchantByEmail(email string) (entity.Merchant, bool) {
	srv.mu.RLock()
	defer srv.mu.RUnlock()

	for _, merchant := range srv.state.Merchants {
		if merchant.Email == email {
			return merchant, true
		}
	}

	return entity.Merchant{}, false
}

// appendNotification adds a generated-id notification to the working
// copy. Call with the write lock held.
func (srv *dataService) appendNotification(text string, kind entity.NotificationType) {
	now := time.Now().UTC()
	srv.state.Notifications = append(srv.state.Notifications, entity.Notification{
		ID:        identity.New("n"),
		Text:      text,
		Type:      kind,
		Timestamp: &now,
	})
}

// persistLocked re-serializes the full working copy into the durable
// blob. Call with the write lock held.
func (srv *dataService) persistLocked() error {
	if err := srv.adapter.WriteBlob(model.FromDataset(srv.state)); err != nil {
		srv.logger.Error("write-through to durable store failed", slog.Any("error", err))

		return errors.Wrap(err, "persist working copy")
	}

	return nil
}

// finish snapshots the state, releases the write lock and notifies
// subscribers. The in-memory mutation stands even when the write-through
// failed; the error is returned so callers can surface it.
func (srv *dataService) finish(err error) error {
	snap := srv.snapshotLocked()
	observers := make([]func(usecase.Snapshot), 0, len(srv.subs))
	for _, fn := range srv.subs {
		observers = append(observers, fn)
	}
	srv.mu.Unlock()

	for _, fn := range observers {
		fn(snap)
	}

	return err
}

// snapshotLocked deep-copies the state. Call with the lock held.
func (srv *dataService) snapshotLocked() usecase.Snapshot {
	return usecase.Snapshot{
		Dataset: srv.state.Clone(),
		Status:  srv.status,
	}
}

func dropPurchases(purchases []entity.Purchase, gone func(entity.Purchase) bool) []entity.Purchase {
	kept := purchases[:0:0]
	for _, purchase := range purchases {
		if !gone(purchase) {
			kept = append(kept, purchase)
		}
	}

	return kept
}
