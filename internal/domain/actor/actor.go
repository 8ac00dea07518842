// Package actor identifies the staff member performing an operation.
package actor

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleWaiter   Role = "waiter"
	RoleKitchen  Role = "kitchen"
	RoleCashier  Role = "cashier"
	RoleDelivery Role = "delivery"
)

// Valid reports whether r is one of the known staff roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleWaiter, RoleKitchen, RoleCashier, RoleDelivery:
		return true
	}
	return false
}

// Actor is the authenticated staff member behind a request. The engines
// receive it from the API layer after token validation.
type Actor struct {
	ID   string
	Name string
	Role Role
}

// Is reports whether the actor holds one of the given roles.
func (a Actor) Is(roles ...Role) bool {
	for _, r := range roles {
		if a.Role == r {
			return true
		}
	}
	return false
}
