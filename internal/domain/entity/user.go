// Package entity contains the core business objects of the project.
package entity

import "time"

// User is a member account that earns points through purchases.
// The Points field is written at registration time; the authoritative
// balance lives in the points ledger of the Dataset.
type User struct {
	ID               string    `json:"id"`               // Opaque unique identifier; never changes once assigned.
	Name             string    `json:"name"`             // Display name.
	Email            string    `json:"email"`            // Login identifier; may be empty when Phone is set.
	Phone            string    `json:"phone"`            // Login identifier; may be empty when Email is set.
	Points           int       `json:"points"`           // Point balance snapshot taken at creation.
	Password         string    `json:"password"`         // Plaintext, demo data only.
	RegistrationDate time.Time `json:"registrationDate"` // Timestamp of account creation.
}
