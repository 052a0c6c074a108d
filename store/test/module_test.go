package test

import (
	"context"
	"testing"

	"github.com/lithammer/shortuuid/v4"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/eidos/store"
)

func createTestingModule(ctx context.Context, t *testing.T, ts *store.Store, authorID int32, name string, status store.ModuleStatus) *store.Module {
	t.Helper()
	module, err := ts.CreateModule(ctx, &store.Module{
		Name:     name,
		AuthorID: authorID,
		Version:  "1.0.0",
		Manifest: `{"name":"` + name + `","version":"1.0.0","functions":[]}`,
		APIKey:   store.APIKeyPrefix + shortuuid.New(),
		Status:   status,
	})
	require.NoError(t, err)
	return module
}

func TestModuleStore(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)
	author, err := CreateTestingUser(ctx, ts, "author")
	require.NoError(t, err)
	other, err := CreateTestingUser(ctx, ts, "other")
	require.NoError(t, err)

	public := createTestingModule(ctx, t, ts, author.ID, "weather", store.ModuleStatusPublic)
	draft := createTestingModule(ctx, t, ts, author.ID, "secret", store.ModuleStatusDraft)

	visible, err := ts.ListModules(ctx, &store.FindModule{VisibleTo: &other.ID})
	require.NoError(t, err)
	require.Len(t, visible, 1)
	require.Equal(t, public.ID, visible[0].ID)

	visible, err = ts.ListModules(ctx, &store.FindModule{VisibleTo: &author.ID})
	require.NoError(t, err)
	require.Len(t, visible, 2)

	byKey, err := ts.GetModule(ctx, &store.FindModule{APIKey: &draft.APIKey})
	require.NoError(t, err)
	require.Equal(t, draft.ID, byKey.ID)

	delta := int32(1)
	updated, err := ts.UpdateModule(ctx, &store.UpdateModule{ID: public.ID, InstallsDelta: &delta})
	require.NoError(t, err)
	require.Equal(t, int32(1), updated.Installs)
}

func TestUserModuleStore(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)
	user, err := CreateTestingUser(ctx, ts, "installer")
	require.NoError(t, err)

	first := createTestingModule(ctx, t, ts, user.ID, "first", store.ModuleStatusPublic)
	second := createTestingModule(ctx, t, ts, user.ID, "second", store.ModuleStatusPublic)

	_, err = ts.CreateUserModule(ctx, &store.UserModule{UserID: user.ID, ModuleID: first.ID, Enabled: true, InstalledTs: 100})
	require.NoError(t, err)
	_, err = ts.CreateUserModule(ctx, &store.UserModule{UserID: user.ID, ModuleID: second.ID, Enabled: true, InstalledTs: 200})
	require.NoError(t, err)

	_, err = ts.CreateUserModule(ctx, &store.UserModule{UserID: user.ID, ModuleID: first.ID, Enabled: true})
	require.Error(t, err, "a module is installed at most once per user")

	installed, err := ts.ListInstalledModules(ctx, user.ID, true)
	require.NoError(t, err)
	require.Len(t, installed, 2)
	require.Equal(t, "first", installed[0].Module.Name, "install order")
	require.Equal(t, "{}", installed[0].Config)

	disabled := false
	_, err = ts.UpdateUserModule(ctx, &store.UpdateUserModule{UserID: user.ID, ModuleID: first.ID, Enabled: &disabled})
	require.NoError(t, err)

	installed, err = ts.ListInstalledModules(ctx, user.ID, true)
	require.NoError(t, err)
	require.Len(t, installed, 1)
	require.Equal(t, "second", installed[0].Module.Name)

	all, err := ts.ListInstalledModules(ctx, user.ID, false)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.False(t, all[0].Enabled)

	require.NoError(t, ts.DeleteUserModule(ctx, &store.DeleteUserModule{UserID: user.ID, ModuleID: second.ID}))
	rows, err := ts.ListUserModules(ctx, &store.FindUserModule{UserID: &user.ID})
	require.NoError(t, err)
	require.Len(t, rows, 1)
}
