// Package entity contains the core business objects of the project.
package entity

// Purchase records a transaction between a member and a merchant.
// CustomerID must reference a live User and MerchantID a live Merchant at
// creation time; cascading deletes keep that invariant intact.
type Purchase struct {
	ID         string  `json:"id"`         // Opaque unique identifier.
	CustomerID string  `json:"customerId"` // References User.ID.
	MerchantID string  `json:"merchantId"` // References Merchant.ID.
	Amount     float64 `json:"amount"`     // Purchase amount.
	Approved   bool    `json:"approved"`   // Set by the merchant approval action.
	Category   string  `json:"category"`   // Free-form purchase category.
	Date       string  `json:"date"`       // Purchase date as recorded by the seed/demo data.
}
