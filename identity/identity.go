// Package identity owns the user records of a simulated session and the
// single active-session pointer. Passwords are stored and compared as
// plaintext; this is a teaching model, not a security boundary.
package identity

import (
	"fmt"

	"github.com/pedromagedanz/simfs"
)

// AdminID is the user id reserved for the administrator created at disk
// creation time. It can never be removed.
const AdminID = 0

// User is a single account. Records are never mutated after creation; they
// can only be removed from the registry.
type User struct {
	ID       int
	Username string
	Password string
}

// Registry issues sequential user ids starting at 0 and tracks which user
// owns the current session.
type Registry struct {
	users    map[int]*User
	order    []int
	nextID   int
	activeID int
}

func NewRegistry() *Registry {
	return &Registry{
		users: make(map[int]*User),
	}
}

// CreateAdmin constructs the id-0 administrator. It may only be called once
// per session, during disk creation, and makes the admin the active user.
func (reg *Registry) CreateAdmin(password string) (*User, error) {
	if _, exists := reg.users[AdminID]; exists {
		return nil, simfs.ErrInvalidOperation.WithMessage("administrator already exists")
	}

	admin := &User{ID: AdminID, Username: "admin", Password: password}
	reg.users[AdminID] = admin
	reg.order = append(reg.order, AdminID)
	reg.nextID = AdminID + 1
	reg.activeID = AdminID
	return admin, nil
}

// Add records a new user with the next sequential id. Only the administrator
// may add users.
func (reg *Registry) Add(requesterID int, username, password string) (*User, error) {
	if requesterID != AdminID {
		return nil, simfs.ErrPermissionDenied.WithMessage("only the administrator can add users")
	}

	user := &User{ID: reg.nextID, Username: username, Password: password}
	reg.users[user.ID] = user
	reg.order = append(reg.order, user.ID)
	reg.nextID++
	return user, nil
}

// Remove deletes a user record. The administrator and the active user can
// never be removed.
func (reg *Registry) Remove(targetID int) error {
	if targetID == AdminID {
		return simfs.ErrInvalidOperation.WithMessage("the administrator cannot be removed")
	}
	if targetID == reg.activeID {
		return simfs.ErrInvalidOperation.WithMessage("cannot remove the active user")
	}
	if _, ok := reg.users[targetID]; !ok {
		return simfs.ErrNotFound.WithMessage(fmt.Sprintf("no user with id %d", targetID))
	}

	delete(reg.users, targetID)
	for i, id := range reg.order {
		if id == targetID {
			reg.order = append(reg.order[:i], reg.order[i+1:]...)
			break
		}
	}
	return nil
}

// Authenticate reports whether the user exists and the password matches
// exactly.
func (reg *Registry) Authenticate(userID int, password string) bool {
	user, ok := reg.users[userID]
	return ok && user.Password == password
}

// SwitchActiveUser makes the given user the owner of the session. On failure
// the active user is left unchanged.
func (reg *Registry) SwitchActiveUser(userID int, password string) error {
	user, ok := reg.users[userID]
	if !ok {
		return simfs.ErrNotFound.WithMessage(fmt.Sprintf("no user with id %d", userID))
	}
	if user.Password != password {
		return simfs.ErrAuthenticationFailed.WithMessage(
			fmt.Sprintf("wrong password for user %d", userID))
	}

	reg.activeID = userID
	return nil
}

// Get returns the user with the given id, or nil if there is none.
func (reg *Registry) Get(userID int) *User {
	return reg.users[userID]
}

// ActiveID returns the id of the user owning the session.
func (reg *Registry) ActiveID() int {
	return reg.activeID
}

// ActiveUser returns the record of the user owning the session.
func (reg *Registry) ActiveUser() *User {
	return reg.users[reg.activeID]
}

// Users returns all user records in creation order.
func (reg *Registry) Users() []*User {
	users := make([]*User, 0, len(reg.order))
	for _, id := range reg.order {
		users = append(users, reg.users[id])
	}
	return users
}
