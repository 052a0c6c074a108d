package store

import "context"

// Role is the type of a role.
type Role string

const (
	// RoleAdmin is the admin role.
	RoleAdmin Role = "admin"
	// RoleUser is the user role.
	RoleUser Role = "user"
)

type User struct {
	ID int32

	// Standard fields
	CreatedTs int64
	UpdatedTs int64

	// Domain specific fields
	Username string
	Role     Role
	Email    string
	Nickname string
}

type UpdateUser struct {
	ID int32

	UpdatedTs *int64
	Email     *string
	Nickname  *string
	Role      *Role
}

type FindUser struct {
	ID       *int32
	Username *string
	Email    *string

	Limit *int
}

type DeleteUser struct {
	ID int32
}

func (s *Store) CreateUser(ctx context.Context, create *User) (*User, error) {
	return s.driver.CreateUser(ctx, create)
}

func (s *Store) UpdateUser(ctx context.Context, update *UpdateUser) (*User, error) {
	return s.driver.UpdateUser(ctx, update)
}

func (s *Store) ListUsers(ctx context.Context, find *FindUser) ([]*User, error) {
	return s.driver.ListUsers(ctx, find)
}

// GetUser returns the single user matching find, or nil if none does.
func (s *Store) GetUser(ctx context.Context, find *FindUser) (*User, error) {
	limit := 1
	find.Limit = &limit
	list, err := s.ListUsers(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

func (s *Store) DeleteUser(ctx context.Context, delete *DeleteUser) error {
	return s.driver.DeleteUser(ctx, delete)
}
