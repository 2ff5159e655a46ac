package auth

import (
	"github.com/google/uuid"

	"github.com/checkpoint/api/models"
)

// Principal is the resolved, authenticated identity attached to a request or
// session. It is a read-only projection of a user record, rebuilt on every
// resolution and never cached across requests.
type Principal struct {
	ID          uuid.UUID
	Email       string
	Pseudo      string
	Authorities []string
}

// NewPrincipal builds a Principal from a user record. A principal always
// carries at least one authority; users without an assigned role get USER.
func NewPrincipal(user *models.User) *Principal {
	role := string(user.Role)
	if role == "" {
		role = string(models.RoleUser)
	}
	return &Principal{
		ID:          user.ID,
		Email:       user.Email,
		Pseudo:      user.Pseudo,
		Authorities: []string{role},
	}
}

// HasAuthority reports whether the principal carries the named authority
func (p *Principal) HasAuthority(authority string) bool {
	for _, a := range p.Authorities {
		if a == authority {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the principal carries the ADMIN authority
func (p *Principal) IsAdmin() bool {
	return p.HasAuthority(string(models.RoleAdmin))
}
