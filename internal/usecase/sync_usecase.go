package usecase

// ConsistencyReport is the outcome of a consistency audit between the
// in-memory working copy and the durable blob.
type ConsistencyReport struct {
	Consistent bool     `json:"consistent"`
	Issues     []string `json:"issues,omitempty"`
}

// DataStats summarizes the durable copy for dashboards and tooling.
type DataStats struct {
	Users         int  `json:"users"`
	Merchants     int  `json:"merchants"`
	Purchases     int  `json:"purchases"`
	Notifications int  `json:"notifications"`
	HasDurable    bool `json:"hasDurable"`
	HasBackup     bool `json:"hasBackup"`
}

// SyncUsecase is the reconciler: it orchestrates directional syncs
// between the seed dataset, the durable blob and the in-memory working
// copy, and audits their consistency.
type SyncUsecase interface {
	// HasDurableData reports presence of the namespaced blob key.
	HasDurableData() bool

	// InitializeIfEmpty writes a blob composed entirely of seed records
	// when no blob exists. It reports whether it initialized.
	InitializeIfEmpty() (bool, error)

	// MergeSeedIntoDurable combines the durable blob with the seed
	// dataset: durable wins on conflict, seed fills gaps, in seed order.
	// The merge is idempotent; it never removes or duplicates records.
	MergeSeedIntoDurable() error

	// FullSync merges the seed into the durable copy and then pulls the
	// durable copy into memory.
	FullSync() error

	// CheckConsistency compares record counts between the in-memory copy
	// and the durable copy. A missing blob is itself an inconsistency.
	CheckConsistency() ConsistencyReport

	// Repair forces a pull from the durable copy; during repair the
	// durable copy is always ground truth, because it is what survives a
	// restart.
	Repair() error

	// Backup snapshots the durable blob into the backup key, annotated
	// with a backup timestamp and format version. Returns false when
	// there is nothing to back up.
	Backup() bool

	// Restore copies the backup blob back into the primary key and
	// forces an in-memory pull. Returns false when no valid backup
	// exists; it never fails louder than that.
	Restore() bool

	// Stats summarizes the durable copy.
	Stats() DataStats
}
