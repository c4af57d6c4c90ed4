// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"finboard/config"
	"finboard/internal/domain/entity"
	"finboard/internal/domain/service"
)

// demoChecker is the bundled credential checker: a fixed admin account,
// merchant email+password against the account directory, and a member
// flow accepting either phone+OTP or an email/phone identifier with
// password. It is a pure check; sessions are someone else's job.
type demoChecker struct {
	cfg       *config.Config
	directory service.Directory
}

// NewDemoChecker is the constructor for demoChecker.
func NewDemoChecker(cfg *config.Config, directory service.Directory) service.CredentialChecker {
	return &demoChecker{cfg: cfg, directory: directory}
}

// Check verifies credentials for the requested role.
func (c *demoChecker) Check(creds service.Credentials) service.CheckResult {
	switch creds.Role {
	case entity.RoleAdmin:
		return c.checkAdmin(creds)
	case entity.RoleMerchant:
		return c.checkMerchant(creds)
	case entity.RoleMember:
		return c.checkMember(creds)
	default:
		return service.CheckResult{Message: "invalid role specified"}
	}
}

func (c *demoChecker) checkAdmin(creds service.Credentials) service.CheckResult {
	if creds.Email != c.cfg.Auth.AdminEmail || creds.Password != c.cfg.Auth.AdminPassword {
		return service.CheckResult{Message: "invalid admin credentials"}
	}

	return service.CheckResult{
		Success: true,
		Identity: entity.Identity{
			ID:    "admin",
			Email: c.cfg.Auth.AdminEmail,
			Role:  entity.RoleAdmin,
		},
	}
}

func (c *demoChecker) checkMerchant(creds service.Credentials) service.CheckResult {
	merchant, ok := c.directory.MerchantByEmail(creds.Email)
	if !ok || merchant.Password != creds.Password {
		return service.CheckResult{Message: "invalid merchant credentials"}
	}

	return service.CheckResult{
		Success: true,
		Identity: entity.Identity{
			ID:        merchant.ID,
			Email:     merchant.Email,
			StoreName: merchant.StoreName,
			Owner:     merchant.Owner,
			Role:      entity.RoleMerchant,
		},
	}
}

func (c *demoChecker) checkMember(creds service.Credentials) service.CheckResult {
	if creds.OTP != "" {
		return c.checkMemberOTP(creds)
	}

	identifier := creds.Email
	if identifier == "" {
		identifier = creds.Phone
	}
	user, ok := c.directory.UserByIdentifier(identifier)
	if !ok || user.Password != creds.Password {
		return service.CheckResult{Message: "invalid member credentials"}
	}

	return service.CheckResult{Success: true, Identity: memberIdentity(user)}
}

// checkMemberOTP is the second step of the OTP flow: the phone must be
// known and the code must match the fixed demo OTP.
func (c *demoChecker) checkMemberOTP(creds service.Credentials) service.CheckResult {
	user, ok := c.directory.UserByIdentifier(creds.Phone)
	if !ok {
		return service.CheckResult{Message: "phone number not found"}
	}
	if creds.OTP != c.cfg.Auth.DemoOTP {
		return service.CheckResult{Message: "invalid OTP code"}
	}

	return service.CheckResult{Success: true, Identity: memberIdentity(user)}
}

func memberIdentity(user entity.User) entity.Identity {
	return entity.Identity{
		ID:     user.ID,
		Name:   user.Name,
		Email:  user.Email,
		Phone:  user.Phone,
		Points: user.Points,
		Role:   entity.RoleMember,
	}
}
