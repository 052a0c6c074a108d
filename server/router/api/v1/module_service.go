package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/eidos/internal/errors"
	"github.com/hrygo/eidos/plugin/ai/agent/tools"
	"github.com/hrygo/eidos/plugin/manifest"
	"github.com/hrygo/eidos/server/auth"
	"github.com/hrygo/eidos/store"
)

const defaultModuleVersion = "1.0.0"

type CreateModuleRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Version     string          `json:"version,omitempty"`
	Manifest    json.RawMessage `json:"manifest"`
}

// UpdateModuleRequest changes a module's metadata. Absent fields are kept; a
// new manifest replaces the stored one and is validated again.
type UpdateModuleRequest struct {
	Name        *string         `json:"name,omitempty"`
	Description *string         `json:"description,omitempty"`
	Version     *string         `json:"version,omitempty"`
	Manifest    json.RawMessage `json:"manifest,omitempty"`
	Status      *string         `json:"status,omitempty"`
}

// ModuleCallRequest calls one endpoint of a module's webhook directly.
type ModuleCallRequest struct {
	Endpoint string         `json:"endpoint,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
}

type SetModuleEnabledRequest struct {
	Enabled *bool `json:"enabled"`
}

type ModuleResource struct {
	ID          int32           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	AuthorID    int32           `json:"author_id"`
	Version     string          `json:"version"`
	Manifest    json.RawMessage `json:"manifest"`
	APIKey      string          `json:"api_key,omitempty"`
	Status      string          `json:"status"`
	Installs    int32           `json:"installs"`
	IsInstalled bool            `json:"is_installed"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type InstalledModuleResource struct {
	Module      *ModuleResource `json:"module"`
	Enabled     bool            `json:"enabled"`
	InstalledAt time.Time       `json:"installed_at"`
}

// convertModule renders a module. The API key is only included for its author.
func convertModule(m *store.Module, viewerID int32) *ModuleResource {
	r := &ModuleResource{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		AuthorID:    m.AuthorID,
		Version:     m.Version,
		Manifest:    json.RawMessage(m.Manifest),
		Status:      string(m.Status),
		Installs:    m.Installs,
		CreatedAt:   time.Unix(m.CreatedTs, 0).UTC(),
		UpdatedAt:   time.Unix(m.UpdatedTs, 0).UTC(),
	}
	if len(r.Manifest) == 0 || !json.Valid(r.Manifest) {
		r.Manifest = json.RawMessage("{}")
	}
	if m.AuthorID == viewerID {
		r.APIKey = m.APIKey
	}
	return r
}

// NewModule validates a manifest and builds the module row that publishes it.
func NewModule(m *manifest.Manifest, authorID int32, status store.ModuleStatus) (*store.Module, error) {
	if m.Version == "" {
		m.Version = defaultModuleVersion
	}
	if err := m.Validate(); err != nil {
		return nil, errors.Validation("invalid manifest: %s", err.Error())
	}
	raw, err := m.JSON()
	if err != nil {
		return nil, errors.Validation("invalid manifest: %s", err.Error())
	}
	return &store.Module{
		Name:        m.Name,
		Description: m.Description,
		AuthorID:    authorID,
		Version:     m.Version,
		Manifest:    raw,
		APIKey:      store.NewAPIKey(),
		Status:      status,
	}, nil
}

// CreateModule registers a draft module owned by the caller.
// POST /api/v1/modules
func (s *APIV1Service) CreateModule(c echo.Context) error {
	req := &CreateModuleRequest{}
	if err := bind(c, req); err != nil {
		return err
	}
	if len(req.Manifest) == 0 {
		return errors.Validation("manifest is required")
	}
	m, err := manifest.ParseJSON(string(req.Manifest))
	if err != nil {
		return errors.Validation("manifest must be a JSON object")
	}
	if m.Name == "" {
		m.Name = req.Name
	}
	if m.Description == "" {
		m.Description = req.Description
	}
	if m.Version == "" {
		m.Version = req.Version
	}

	userID := auth.UserID(c)
	module, err := NewModule(m, userID, store.ModuleStatusDraft)
	if err != nil {
		return err
	}
	if req.Name != "" {
		module.Name = req.Name
	}
	created, err := s.Store.CreateModule(c.Request().Context(), module)
	if err != nil {
		return errors.Store("failed to create module", err)
	}
	return c.JSON(http.StatusCreated, convertModule(created, userID))
}

// ListModules returns the public modules and the caller's own.
// GET /api/v1/modules
func (s *APIV1Service) ListModules(c echo.Context) error {
	ctx := c.Request().Context()
	userID := auth.UserID(c)
	modules, err := s.Store.ListModules(ctx, &store.FindModule{VisibleTo: &userID})
	if err != nil {
		return errors.Store("failed to list modules", err)
	}
	installed, err := s.Store.ListUserModules(ctx, &store.FindUserModule{UserID: &userID})
	if err != nil {
		return errors.Store("failed to list installed modules", err)
	}
	installedIDs := make(map[int32]bool, len(installed))
	for _, um := range installed {
		installedIDs[um.ModuleID] = true
	}

	response := make([]*ModuleResource, 0, len(modules))
	for _, m := range modules {
		r := convertModule(m, userID)
		r.IsInstalled = installedIDs[m.ID]
		response = append(response, r)
	}
	return c.JSON(http.StatusOK, response)
}

// GET /api/v1/modules/my
func (s *APIV1Service) ListMyModules(c echo.Context) error {
	userID := auth.UserID(c)
	modules, err := s.Store.ListModules(c.Request().Context(), &store.FindModule{AuthorID: &userID})
	if err != nil {
		return errors.Store("failed to list modules", err)
	}
	response := make([]*ModuleResource, 0, len(modules))
	for _, m := range modules {
		response = append(response, convertModule(m, userID))
	}
	return c.JSON(http.StatusOK, response)
}

// GET /api/v1/modules/:id
func (s *APIV1Service) GetModule(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	userID := auth.UserID(c)

	module, err := s.Store.GetModule(ctx, &store.FindModule{ID: &id, VisibleTo: &userID})
	if err != nil {
		return errors.Store("failed to get module", err)
	}
	if module == nil {
		return errors.NotFound("Module")
	}
	installation, err := s.findUserModule(ctx, userID, id)
	if err != nil {
		return err
	}
	r := convertModule(module, userID)
	r.IsInstalled = installation != nil
	return c.JSON(http.StatusOK, r)
}

// UpdateModule lets the author edit a module. Users who installed it get a
// fresh context on their next chat.
// PUT /api/v1/modules/:id
func (s *APIV1Service) UpdateModule(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	req := &UpdateModuleRequest{}
	if err := bind(c, req); err != nil {
		return err
	}
	ctx := c.Request().Context()
	userID := auth.UserID(c)

	module, err := s.findAuthoredModule(ctx, userID, id)
	if err != nil {
		return err
	}

	raw := module.Manifest
	if len(req.Manifest) > 0 {
		raw = string(req.Manifest)
	}
	m, err := manifest.ParseJSON(raw)
	if err != nil {
		return errors.Validation("manifest must be a JSON object")
	}
	if m.Name == "" {
		m.Name = module.Name
	}
	if m.Description == "" {
		m.Description = module.Description
	}
	if req.Version != nil {
		m.Version = *req.Version
	}
	if m.Version == "" {
		m.Version = module.Version
	}
	if err := m.Validate(); err != nil {
		return errors.Validation("invalid manifest: %s", err.Error())
	}
	encoded, err := m.JSON()
	if err != nil {
		return errors.Validation("invalid manifest: %s", err.Error())
	}

	update := &store.UpdateModule{
		ID:       id,
		Version:  &m.Version,
		Manifest: &encoded,
	}
	if req.Name != nil {
		if *req.Name == "" {
			return errors.Validation("name cannot be empty")
		}
		update.Name = req.Name
	} else if len(req.Manifest) > 0 {
		update.Name = &m.Name
	}
	if req.Description != nil {
		update.Description = req.Description
	} else if len(req.Manifest) > 0 {
		update.Description = &m.Description
	}
	if req.Status != nil {
		status, err := parseModuleStatus(*req.Status)
		if err != nil {
			return err
		}
		update.Status = &status
	}

	updated, err := s.Store.UpdateModule(ctx, update)
	if err != nil {
		return errors.Store("failed to update module", err)
	}
	if err := s.invalidateInstalls(ctx, id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, convertModule(updated, userID))
}

// DeleteModule removes a module and every installation of it.
// DELETE /api/v1/modules/:id
func (s *APIV1Service) DeleteModule(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	userID := auth.UserID(c)

	if _, err := s.findAuthoredModule(ctx, userID, id); err != nil {
		return err
	}
	installs, err := s.Store.ListUserModules(ctx, &store.FindUserModule{ModuleID: &id})
	if err != nil {
		return errors.Store("failed to list installations", err)
	}
	if err := s.Store.DeleteModule(ctx, &store.DeleteModule{ID: id}); err != nil {
		return errors.Store("failed to delete module", err)
	}
	for _, um := range installs {
		s.ContextCache.Invalidate(um.UserID)
	}
	return c.NoContent(http.StatusNoContent)
}

// CallModule posts data to one endpoint of a visible module's webhook and
// returns the module's result.
// POST /api/v1/modules/:id/call
func (s *APIV1Service) CallModule(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	req := &ModuleCallRequest{}
	if err := bind(c, req); err != nil {
		return err
	}
	ctx := c.Request().Context()
	userID := auth.UserID(c)

	module, err := s.Store.GetModule(ctx, &store.FindModule{ID: &id, VisibleTo: &userID})
	if err != nil {
		return errors.Store("failed to get module", err)
	}
	if module == nil {
		return errors.NotFound("Module")
	}
	m, err := manifest.ParseJSON(module.Manifest)
	if err != nil || m.WebhookURL == "" {
		return errors.Validation("Module does not have webhook_url configured")
	}
	user, err := s.Store.GetUser(ctx, &store.FindUser{ID: &userID})
	if err != nil {
		return errors.Store("failed to get user", err)
	}
	if user == nil {
		return errors.Unauthorized("user not found")
	}

	result, err := s.External.Execute(ctx, tools.ModuleCall(module, m.WebhookURL, req.Endpoint), tools.Args(req.Data), user)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

// GET /api/v1/modules/installed
func (s *APIV1Service) ListInstalledModules(c echo.Context) error {
	userID := auth.UserID(c)
	installed, err := s.Store.ListInstalledModules(c.Request().Context(), userID, false)
	if err != nil {
		return errors.Store("failed to list installed modules", err)
	}
	response := make([]*InstalledModuleResource, 0, len(installed))
	for _, im := range installed {
		module := convertModule(im.Module, userID)
		module.IsInstalled = true
		response = append(response, &InstalledModuleResource{
			Module:      module,
			Enabled:     im.Enabled,
			InstalledAt: time.Unix(im.InstalledTs, 0).UTC(),
		})
	}
	return c.JSON(http.StatusOK, response)
}

// InstallModule installs a visible module for the caller, enabled.
// POST /api/v1/modules/:id/install
func (s *APIV1Service) InstallModule(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	userID := auth.UserID(c)

	module, err := s.Store.GetModule(ctx, &store.FindModule{ID: &id, VisibleTo: &userID})
	if err != nil {
		return errors.Store("failed to get module", err)
	}
	if module == nil {
		return errors.NotFound("Module")
	}
	existing, err := s.findUserModule(ctx, userID, id)
	if err != nil {
		return err
	}
	if existing != nil {
		return errors.Validation("Module already installed")
	}

	if _, err := s.Store.CreateUserModule(ctx, &store.UserModule{
		UserID:   userID,
		ModuleID: id,
		Enabled:  true,
	}); err != nil {
		return errors.Store("failed to install module", err)
	}
	one := int32(1)
	if _, err := s.Store.UpdateModule(ctx, &store.UpdateModule{ID: id, InstallsDelta: &one}); err != nil {
		return errors.Store("failed to count install", err)
	}
	s.ContextCache.Invalidate(userID)
	return c.JSON(http.StatusCreated, map[string]string{"message": "Module installed successfully"})
}

// DELETE /api/v1/modules/:id/install
func (s *APIV1Service) UninstallModule(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	userID := auth.UserID(c)

	existing, err := s.findUserModule(ctx, userID, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return errModuleNotInstalled
	}
	if err := s.Store.DeleteUserModule(ctx, &store.DeleteUserModule{UserID: userID, ModuleID: id}); err != nil {
		return errors.Store("failed to uninstall module", err)
	}

	module, err := s.Store.GetModule(ctx, &store.FindModule{ID: &id})
	if err != nil {
		return errors.Store("failed to get module", err)
	}
	if module != nil && module.Installs > 0 {
		minusOne := int32(-1)
		if _, err := s.Store.UpdateModule(ctx, &store.UpdateModule{ID: id, InstallsDelta: &minusOne}); err != nil {
			return errors.Store("failed to count uninstall", err)
		}
	}
	s.ContextCache.Invalidate(userID)
	return c.NoContent(http.StatusNoContent)
}

// SetModuleEnabled turns an installed module's functions on or off.
// PUT /api/v1/modules/:id/enabled
func (s *APIV1Service) SetModuleEnabled(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	req := &SetModuleEnabledRequest{}
	if err := bind(c, req); err != nil {
		return err
	}
	if req.Enabled == nil {
		return errors.Validation("enabled is required")
	}
	ctx := c.Request().Context()
	userID := auth.UserID(c)

	existing, err := s.findUserModule(ctx, userID, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return errModuleNotInstalled
	}
	updated, err := s.Store.UpdateUserModule(ctx, &store.UpdateUserModule{
		UserID:   userID,
		ModuleID: id,
		Enabled:  req.Enabled,
	})
	if err != nil {
		return errors.Store("failed to update module", err)
	}
	s.ContextCache.Invalidate(userID)
	return c.JSON(http.StatusOK, map[string]any{"module_id": updated.ModuleID, "enabled": updated.Enabled})
}

var errModuleNotOwned = &errors.Error{Code: errors.ErrCodeNotFound, Message: "Module not found or you don't have permission"}

// findAuthoredModule loads module id when userID is its author.
func (s *APIV1Service) findAuthoredModule(ctx context.Context, userID, id int32) (*store.Module, error) {
	module, err := s.Store.GetModule(ctx, &store.FindModule{ID: &id, AuthorID: &userID})
	if err != nil {
		return nil, errors.Store("failed to get module", err)
	}
	if module == nil {
		return nil, errModuleNotOwned
	}
	return module, nil
}

// invalidateInstalls drops the cached context of every user who installed
// module id.
func (s *APIV1Service) invalidateInstalls(ctx context.Context, id int32) error {
	installs, err := s.Store.ListUserModules(ctx, &store.FindUserModule{ModuleID: &id})
	if err != nil {
		return errors.Store("failed to list installations", err)
	}
	for _, um := range installs {
		s.ContextCache.Invalidate(um.UserID)
	}
	return nil
}

func parseModuleStatus(raw string) (store.ModuleStatus, error) {
	switch status := store.ModuleStatus(raw); status {
	case store.ModuleStatusDraft, store.ModuleStatusPublic, store.ModuleStatusPrivate:
		return status, nil
	default:
		return "", errors.Validation("status must be one of draft, public, private")
	}
}

var errModuleNotInstalled = &errors.Error{Code: errors.ErrCodeNotFound, Message: "Module not installed"}

func (s *APIV1Service) findUserModule(ctx context.Context, userID, moduleID int32) (*store.UserModule, error) {
	list, err := s.Store.ListUserModules(ctx, &store.FindUserModule{UserID: &userID, ModuleID: &moduleID})
	if err != nil {
		return nil, errors.Store("failed to get installation", err)
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}
