// Package entity contains the core business objects of the project.
package entity

// Status tracks the load state of the in-memory working copy.
type Status string

const (
	// StatusIdle means no load from the durable copy has happened yet.
	StatusIdle Status = "idle"
	// StatusLoading means a load is in progress.
	StatusLoading Status = "loading"
	// StatusSucceeded means the working copy has been filled from the durable copy.
	StatusSucceeded Status = "succeeded"
	// StatusFailed means the last load attempt failed.
	StatusFailed Status = "failed"
)

// Dataset is the full application dataset: the shape shared by the seed
// data, the durable blob, and the in-memory working copy.
type Dataset struct {
	Users            []User
	Merchants        []Merchant
	Purchases        []Purchase
	Notifications    []Notification
	Points           map[string]int // Ledger: User.ID -> point balance.
	ContributionRate float64        // Single global rate, despite merchant-scoped editing.
}

// Clone returns a deep copy of the dataset so callers can hand out
// snapshots without exposing the live working copy.
func (d Dataset) Clone() Dataset {
	out := Dataset{
		Users:            make([]User, len(d.Users)),
		Merchants:        make([]Merchant, len(d.Merchants)),
		Purchases:        make([]Purchase, len(d.Purchases)),
		Notifications:    make([]Notification, len(d.Notifications)),
		Points:           make(map[string]int, len(d.Points)),
		ContributionRate: d.ContributionRate,
	}
	copy(out.Users, d.Users)
	copy(out.Merchants, d.Merchants)
	copy(out.Purchases, d.Purchases)
	copy(out.Notifications, d.Notifications)
	for id, balance := range d.Points {
		out.Points[id] = balance
	}

	return out
}
