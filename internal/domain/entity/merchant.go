// Package entity contains the core business objects of the project.
package entity

import "time"

// MerchantStatusActive is the status assigned to newly registered merchants.
const MerchantStatusActive = "active"

// Merchant is a store account that sells to members and approves purchases.
type Merchant struct {
	ID               string    `json:"id"`               // Opaque unique identifier; never changes once assigned.
	StoreName        string    `json:"storeName"`        // Public store name.
	Owner            string    `json:"owner"`            // Name of the store owner.
	Email            string    `json:"email"`            // Login identifier.
	Password         string    `json:"password"`         // Plaintext, demo data only.
	RegistrationDate time.Time `json:"registrationDate"` // Timestamp of account creation.
	Status           string    `json:"status"`           // Account status, e.g. "active".
}
