package store

import (
	"context"

	"github.com/lithammer/shortuuid/v4"
)

type ModuleStatus string

const (
	ModuleStatusDraft   ModuleStatus = "draft"
	ModuleStatusPublic  ModuleStatus = "public"
	ModuleStatusPrivate ModuleStatus = "private"
)

// APIKeyPrefix prefixes every generated module API key.
const APIKeyPrefix = "eidos_module_"

// NewAPIKey generates a module API key.
func NewAPIKey() string {
	return APIKeyPrefix + shortuuid.New()
}

type Module struct {
	ID          int32
	Name        string
	Description string
	AuthorID    int32
	Version     string
	// Manifest is the module manifest encoded as JSON.
	Manifest  string
	APIKey    string
	Status    ModuleStatus
	Installs  int32
	CreatedTs int64
	UpdatedTs int64
}

type FindModule struct {
	ID       *int32
	AuthorID *int32
	APIKey   *string
	Status   *ModuleStatus
	// VisibleTo lists public modules plus the ones authored by this user.
	VisibleTo *int32
}

type UpdateModule struct {
	ID        int32
	UpdatedTs int64

	Name        *string
	Description *string
	Version     *string
	Manifest    *string
	Status      *ModuleStatus
	// InstallsDelta is added to the installs counter.
	InstallsDelta *int32
}

type DeleteModule struct {
	ID int32
}

type UserModule struct {
	ID          int32
	UserID      int32
	ModuleID    int32
	Enabled     bool
	Config      string
	InstalledTs int64
}

type FindUserModule struct {
	UserID   *int32
	ModuleID *int32
	Enabled  *bool
}

type UpdateUserModule struct {
	UserID   int32
	ModuleID int32
	Enabled  *bool
	Config   *string
}

type DeleteUserModule struct {
	UserID   int32
	ModuleID int32
}

// InstalledModule is a module joined with one user's installation row.
type InstalledModule struct {
	Module      *Module
	Enabled     bool
	Config      string
	InstalledTs int64
}

func (s *Store) CreateModule(ctx context.Context, create *Module) (*Module, error) {
	return s.driver.CreateModule(ctx, create)
}

func (s *Store) ListModules(ctx context.Context, find *FindModule) ([]*Module, error) {
	return s.driver.ListModules(ctx, find)
}

func (s *Store) GetModule(ctx context.Context, find *FindModule) (*Module, error) {
	list, err := s.driver.ListModules(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

func (s *Store) UpdateModule(ctx context.Context, update *UpdateModule) (*Module, error) {
	return s.driver.UpdateModule(ctx, update)
}

func (s *Store) DeleteModule(ctx context.Context, delete *DeleteModule) error {
	return s.driver.DeleteModule(ctx, delete)
}

func (s *Store) CreateUserModule(ctx context.Context, create *UserModule) (*UserModule, error) {
	return s.driver.CreateUserModule(ctx, create)
}

func (s *Store) ListUserModules(ctx context.Context, find *FindUserModule) ([]*UserModule, error) {
	return s.driver.ListUserModules(ctx, find)
}

func (s *Store) UpdateUserModule(ctx context.Context, update *UpdateUserModule) (*UserModule, error) {
	return s.driver.UpdateUserModule(ctx, update)
}

func (s *Store) DeleteUserModule(ctx context.Context, delete *DeleteUserModule) error {
	return s.driver.DeleteUserModule(ctx, delete)
}

// ListInstalledModules returns the user's installed modules in install order.
func (s *Store) ListInstalledModules(ctx context.Context, userID int32, enabledOnly bool) ([]*InstalledModule, error) {
	return s.driver.ListInstalledModules(ctx, userID, enabledOnly)
}
