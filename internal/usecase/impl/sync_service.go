package impl

import (
	"fmt"
	"log/slog"
	"time"

	"finboard/internal/domain/entity"
	"finboard/internal/infra/persistence/appdata"
	"finboard/internal/infra/persistence/model"
	"finboard/internal/infra/seed"
	"finboard/internal/usecase"

	"github.com/pkg/errors"
)

// syncService implements the SyncUsecase interface.
type syncService struct {
	adapter *appdata.Adapter
	data    usecase.DataUsecase
	logger  *slog.Logger
}

// NewSyncService is the constructor for syncService.
func NewSyncService(
	adapter *appdata.Adapter,
	data usecase.DataUsecase,
	logger *slog.Logger,
) usecase.SyncUsecase {
	return &syncService{
		adapter: adapter,
		data:    data,
		logger:  logger,
	}
}

// HasDurableData reports presence of the namespaced blob key.
func (srv *syncService) HasDurableData() bool {
	return srv.adapter.HasBlob()
}

// InitializeIfEmpty seeds the durable blob when none exists yet.
func (srv *syncService) InitializeIfEmpty() (bool, error) {
	if srv.adapter.HasBlob() {
		return false, nil
	}

	srv.logger.Info("initializing durable store from seed dataset")
	if err := srv.adapter.WriteBlob(model.FromDataset(seed.Dataset())); err != nil {
		return false, errors.Wrap(err, "initialize durable store")
	}

	return true, nil
}

// MergeSeedIntoDurable unions the durable blob with the seed dataset.
// For each collection the durable records come first, followed by every
// seed record whose id is not already present, in seed order. Point maps
// are key-unioned with durable values winning; the rate keeps the durable
// value if present, else the seed default. Applying the merge twice
// yields the same blob as applying it once.
func (srv *syncService) MergeSeedIntoDurable() error {
	durable := entity.Dataset{Points: map[string]int{}}
	if doc := srv.adapter.ReadBlob(); doc != nil {
		doc.ApplyTo(&durable)
	}
	seedData := seed.Dataset()

	merged := entity.Dataset{
		Users:         mergeByID(durable.Users, seedData.Users, func(u entity.User) string { return u.ID }),
		Merchants:     mergeByID(durable.Merchants, seedData.Merchants, func(m entity.Merchant) string { return m.ID }),
		Purchases:     mergeByID(durable.Purchases, seedData.Purchases, func(p entity.Purchase) string { return p.ID }),
		Notifications: mergeByID(durable.Notifications, seedData.Notifications, func(n entity.Notification) string { return n.ID }),
		Points:        mergePoints(durable.Points, seedData.Points),
	}
	merged.ContributionRate = durable.ContributionRate
	if merged.ContributionRate == 0 {
		merged.ContributionRate = seed.DefaultContributionRate
	}

	if err := srv.adapter.WriteBlob(model.FromDataset(merged)); err != nil {
		return errors.Wrap(err, "write merged blob")
	}

	srv.logger.Debug("merged seed dataset into durable store",
		slog.Int("users", len(merged.Users)),
		slog.Int("merchants", len(merged.Merchants)),
		slog.Int("purchases", len(merged.Purchases)))

	return nil
}

// FullSync merges the seed into the durable copy, then pulls the durable
// copy into memory.
func (srv *syncService) FullSync() error {
	if err := srv.MergeSeedIntoDurable(); err != nil {
		return err
	}

	return errors.Wrap(srv.data.ForceSyncFromDurable(), "pull after merge")
}

// CheckConsistency compares record counts between the in-memory working
// copy and the durable blob. Counts only, not deep content: the audit is
// a cheap drift detector, not a diff.
func (srv *syncService) CheckConsistency() usecase.ConsistencyReport {
	snap := srv.data.Snapshot()

	doc := srv.adapter.ReadBlob()
	if doc == nil {
		return usecase.ConsistencyReport{
			Consistent: false,
			Issues:     []string{"no durable data found"},
		}
	}

	var issues []string
	check := func(name string, memory, durable int) {
		if memory != durable {
			issues = append(issues, fmt.Sprintf("%s count mismatch: memory=%d, durable=%d", name, memory, durable))
		}
	}
	check("users", len(snap.Users), len(doc.Users))
	check("merchants", len(snap.Merchants), len(doc.Merchants))
	check("purchases", len(snap.Purchases), len(doc.Purchases))

	return usecase.ConsistencyReport{
		Consistent: len(issues) == 0,
		Issues:     issues,
	}
}

// Repair forces a pull from the durable copy. The durable copy is always
// ground truth during repair, never the reverse: it is what survives a
// restart.
func (srv *syncService) Repair() error {
	srv.logger.Info("repairing working copy from durable store")

	return errors.Wrap(srv.data.ForceSyncFromDurable(), "repair")
}

// Backup snapshots the durable blob into the backup key.
func (srv *syncService) Backup() bool {
	doc := srv.adapter.ReadBlob()
	if doc == nil {
		srv.logger.Warn("backup skipped, no durable data")

		return false
	}

	doc.BackupDate = time.Now().UTC().Format(time.RFC3339)
	doc.Version = model.BackupVersion
	if err := srv.adapter.WriteBackup(doc); err != nil {
		srv.logger.Error("backup write failed", slog.Any("error", err))

		return false
	}

	srv.logger.Info("durable data backed up", slog.String("backup_date", doc.BackupDate))

	return true
}

// Restore copies the backup blob back into the primary key and forces an
// in-memory pull. A missing or malformed backup fails silently.
func (srv *syncService) Restore() bool {
	backup := srv.adapter.ReadBackup()
	if backup == nil {
		srv.logger.Warn("restore skipped, no usable backup")

		return false
	}

	if err := srv.adapter.WriteBlob(backup); err != nil {
		srv.logger.Error("restore write failed", slog.Any("error", err))

		return false
	}
	if err := srv.data.ForceSyncFromDurable(); err != nil {
		srv.logger.Error("pull after restore failed", slog.Any("error", err))

		return false
	}

	srv.logger.Info("durable data restored from backup", slog.String("backup_date", backup.BackupDate))

	return true
}

// Stats summarizes the durable copy.
func (srv *syncService) Stats() usecase.DataStats {
	stats := usecase.DataStats{
		HasDurable: srv.adapter.HasBlob(),
		HasBackup:  srv.adapter.HasBackup(),
	}
	if doc := srv.adapter.ReadBlob(); doc != nil {
		stats.Users = len(doc.Users)
		stats.Merchants = len(doc.Merchants)
		stats.Purchases = len(doc.Purchases)
		stats.Notifications = len(doc.Notifications)
	}

	return stats
}

// mergeByID keeps every durable record, then appends seed records whose
// id is not already taken, preserving seed order.
func mergeByID[T any](durable, seedRecords []T, id func(T) string) []T {
	taken := make(map[string]struct{}, len(durable))
	for _, record := range durable {
		taken[id(record)] = struct{}{}
	}

	merged := make([]T, 0, len(durable)+len(seedRecords))
	merged = append(merged, durable...)
	for _, record := range seedRecords {
		if _, ok := taken[id(record)]; !ok {
			merged = append(merged, record)
		}
	}

	return merged
}

// mergePoints key-unions the ledgers with durable balances winning.
func mergePoints(durable, seedPoints map[string]int) map[string]int {
	merged := make(map[string]int, len(durable)+len(seedPoints))
	for id, balance := range seedPoints {
		merged[id] = balance
	}
	for id, balance := range durable {
		merged[id] = balance
	}

	return merged
}
