// Package service defines interfaces for domain services whose concrete
// implementations live in the infrastructure layer.
package service

import "finboard/internal/domain/entity"

// Credentials is the input to a credential check. Which fields matter
// depends on the role: admin and merchant use Email+Password, members use
// either Phone+OTP or an Email/Phone identifier with Password.
type Credentials struct {
	Role     entity.Role
	Email    string
	Phone    string
	Password string
	OTP      string
}

// CheckResult is the outcome of a credential check.
type CheckResult struct {
	Success  bool
	Identity entity.Identity // Populated only on success.
	Message  string          // Human-readable failure reason.
}

// CredentialChecker verifies credentials against whatever account
// directory backs the deployment. It is a pure check: no session state is
// read or written, and it never fails with an error, only with a negative
// result.
type CredentialChecker interface {
	Check(creds Credentials) CheckResult
}

// Directory is the read-only account lookup a credential checker needs.
// The reactive store implements it over the in-memory working copy.
type Directory interface {
	// UserByIdentifier finds a user by email or phone.
	UserByIdentifier(identifier string) (entity.User, bool)

	// MerchantByEmail finds a merchant by email.
	MerchantByEmail(email string) (entity.Merchant, bool)
}
