package domain

import "time"

// Role is the access level attached to a user and to the sessions issued for it.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleAdmin:
		return true
	}
	return false
}

// Address is the optional postal address of a user.
type Address struct {
	Street  string
	City    string
	State   string
	ZipCode string
	Country string
}

// User is the domain model for customers and administrators.
//
// PasswordHash is only populated on the authentication path; every other
// read leaves it empty.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	Phone        string
	Address      Address
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
