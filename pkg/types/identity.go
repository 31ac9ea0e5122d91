package types

import (
	"strings"

	"github.com/google/uuid"
)

// Identity names the owner of a cart: a registered customer or an anonymous
// browser session. Exactly one side is set.
type Identity struct {
	CustomerID *uuid.UUID
	SessionKey *string
}

// CustomerIdentity builds an Identity for a registered customer.
func CustomerIdentity(customerID uuid.UUID) Identity {
	return Identity{CustomerID: &customerID}
}

// SessionIdentity builds an Identity for an anonymous session key.
func SessionIdentity(sessionKey string) Identity {
	key := strings.TrimSpace(sessionKey)
	return Identity{SessionKey: &key}
}

// IsCustomer reports whether the identity belongs to a registered customer.
func (i Identity) IsCustomer() bool {
	return i.CustomerID != nil && *i.CustomerID != uuid.Nil
}

// IsSession reports whether the identity is an anonymous session.
func (i Identity) IsSession() bool {
	return i.SessionKey != nil && strings.TrimSpace(*i.SessionKey) != ""
}

// Valid reports whether exactly one side of the identity is populated.
func (i Identity) Valid() bool {
	return i.IsCustomer() != i.IsSession()
}
