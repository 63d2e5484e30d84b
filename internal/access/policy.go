// Package access decides who may touch recipe routes and who may mutate a
// given resource.
package access

import (
	"errors"
	"fmt"
	"strings"
)

// Policy selects how recipe routes are protected.
type Policy int

const (
	// Open mounts recipe routes without authentication.
	Open Policy = iota
	// AuthenticatedOnly requires a valid token but lets any user mutate any recipe.
	AuthenticatedOnly
	// OwnerEnforced requires a valid token and restricts update/delete to the creator.
	OwnerEnforced
)

// ErrForbidden is returned when the requester does not own the resource.
var ErrForbidden = errors.New("forbidden")

// ParsePolicy maps a config value to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "open":
		return Open, nil
	case "authenticated", "authenticated_only":
		return AuthenticatedOnly, nil
	case "owner", "owner_enforced":
		return OwnerEnforced, nil
	default:
		return Open, fmt.Errorf("unknown recipe policy %q", s)
	}
}

func (p Policy) String() string {
	switch p {
	case Open:
		return "open"
	case AuthenticatedOnly:
		return "authenticated"
	case OwnerEnforced:
		return "owner"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// RequiresAuth reports whether recipe routes sit behind the auth gateway.
func (p Policy) RequiresAuth() bool {
	return p != Open
}

// EnforcesOwnership reports whether update/delete are limited to the creator.
func (p Policy) EnforcesOwnership() bool {
	return p == OwnerEnforced
}

// Owned is any resource carrying the id of the user that created it.
type Owned interface {
	OwnerID() string
}

// AuthorizeMutation permits the write only when requesterID created the resource.
// Resources without a recorded creator cannot be mutated under this check.
func AuthorizeMutation(resource Owned, requesterID string) error {
	if requesterID == "" || resource.OwnerID() != requesterID {
		return ErrForbidden
	}
	return nil
}

// Authorize applies the policy to a mutation. Policies other than
// OwnerEnforced always permit.
func (p Policy) Authorize(resource Owned, requesterID string) error {
	if !p.EnforcesOwnership() {
		return nil
	}
	return AuthorizeMutation(resource, requesterID)
}
