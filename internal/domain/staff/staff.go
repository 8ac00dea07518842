// Package staff holds the restaurant's user accounts. Authentication
// produces an actor.Actor; the engines never look at users directly.
package staff

import (
	"context"

	"github.com/example/restaurant-pos/internal/domain/actor"
)

type User struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Role         actor.Role `json:"role"`
}

// Actor is the identity a logged-in user acts with.
func (u *User) Actor() actor.Actor {
	return actor.Actor{ID: u.ID, Name: u.Name, Role: u.Role}
}

type Store interface {
	Create(ctx context.Context, u *User) error
	Get(ctx context.Context, id string) (*User, bool, error)
	GetByEmail(ctx context.Context, email string) (*User, bool, error)
	List(ctx context.Context) ([]*User, error)
}
