// Package model contains the persistence-layer representations of domain
// data: the wire shape of the serialized blob, kept separate from the
// pure domain entities.
package model

import "finboard/internal/domain/entity"

// BackupVersion tags backup documents with their format version.
const BackupVersion = "1.0"

// Document mirrors the serialized app-data blob. Field presence matters:
// a nil slice or map means the key was absent from the blob, while a
// non-nil empty one means the key was present and empty. ContributionRate
// is a pointer for the same reason.
type Document struct {
	Users            []entity.User         `json:"users"`
	Merchants        []entity.Merchant     `json:"merchants"`
	Purchases        []entity.Purchase     `json:"purchases"`
	Notifications    []entity.Notification `json:"notifications"`
	Points           map[string]int        `json:"points"`
	ContributionRate *float64              `json:"contributionRate,omitempty"`

	// Set only on backup documents.
	BackupDate string `json:"backupDate,omitempty"`
	Version    string `json:"version,omitempty"`
}

// FromDataset builds a complete document from a dataset. Every field is
// present in the result, so writing it re-serializes the full blob.
func FromDataset(data entity.Dataset) *Document {
	rate := data.ContributionRate
	doc := &Document{
		Users:            data.Users,
		Merchants:        data.Merchants,
		Purchases:        data.Purchases,
		Notifications:    data.Notifications,
		Points:           data.Points,
		ContributionRate: &rate,
	}
	if doc.Users == nil {
		doc.Users = []entity.User{}
	}
	if doc.Merchants == nil {
		doc.Merchants = []entity.Merchant{}
	}
	if doc.Purchases == nil {
		doc.Purchases = []entity.Purchase{}
	}
	if doc.Notifications == nil {
		doc.Notifications = []entity.Notification{}
	}
	if doc.Points == nil {
		doc.Points = map[string]int{}
	}

	return doc
}

// ApplyTo overlays the document onto a dataset: keys present in the
// document overwrite the dataset's value, absent keys keep it. This is
// the partial-read contract the reactive store's load path depends on.
func (doc *Document) ApplyTo(data *entity.Dataset) {
	if doc.Users != nil {
		data.Users = doc.Users
	}
	if doc.Merchants != nil {
		data.Merchants = doc.Merchants
	}
	if doc.Purchases != nil {
		data.Purchases = doc.Purchases
	}
	if doc.Notifications != nil {
		data.Notifications = doc.Notifications
	}
	if doc.Points != nil {
		data.Points = doc.Points
	}
	if doc.ContributionRate != nil {
		data.ContributionRate = *doc.ContributionRate
	}
}
