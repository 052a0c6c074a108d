package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/hrygo/eidos/internal/errors"
	"github.com/hrygo/eidos/plugin/manifest"
	"github.com/hrygo/eidos/store"
)

// ModuleKeyHeader carries the module's API key on outgoing calls.
const ModuleKeyHeader = "X-Eidos-Module-Key"

const (
	defaultModuleTimeout = 30 * time.Second
	maxErrorBody         = 512
	maxResponseBody      = 1 << 20
)

// IdentitySigner mints the short-lived token that tells a module who the
// caller is.
type IdentitySigner interface {
	SignModuleToken(userID int32) (string, error)
}

// ExternalInvoker calls functions of installed third-party modules over HTTP.
type ExternalInvoker struct {
	client *http.Client
	signer IdentitySigner
}

// NewExternalInvoker creates an invoker. A non-positive timeout uses 30s.
func NewExternalInvoker(signer IdentitySigner, timeout time.Duration) *ExternalInvoker {
	if timeout <= 0 {
		timeout = defaultModuleTimeout
	}
	return &ExternalInvoker{
		client: &http.Client{Timeout: timeout},
		signer: signer,
	}
}

// ModuleCall describes a direct call to one endpoint of module, outside any
// catalog. A relative endpoint gets a leading slash; an empty one is the
// manifest default.
func ModuleCall(module *store.Module, webhookURL, endpoint string) *Descriptor {
	switch {
	case endpoint == "":
		endpoint = manifest.DefaultEndpoint
	case !strings.HasPrefix(endpoint, "/"):
		endpoint = "/" + endpoint
	}
	return &Descriptor{
		Name:     module.Name + endpoint,
		ModuleID: module.ID,
		Target:   Target{Kind: TargetExternal, Endpoint: endpoint},
		Module: &ModuleBinding{
			ID:         module.ID,
			Name:       module.Name,
			APIKey:     module.APIKey,
			WebhookURL: webhookURL,
		},
	}
}

type invokeRequest struct {
	UserID    int32  `json:"user_id"`
	UserEmail string `json:"user_email"`
	UserName  string `json:"user_name"`
	Endpoint  string `json:"endpoint"`
	Data      Args   `json:"data"`
}

// Execute posts the call to the module's webhook. Module failures are
// reported in the Result; the call is never retried.
func (i *ExternalInvoker) Execute(ctx context.Context, d *Descriptor, args Args, user *store.User) (*Result, error) {
	if d.Module == nil || d.Module.WebhookURL == "" {
		return Failed(errors.ErrCodeTransport, fmt.Sprintf("Module for %s has no webhook_url", d.Name)), nil
	}
	if args == nil {
		args = Args{}
	}

	body, err := json.Marshal(&invokeRequest{
		UserID:    user.ID,
		UserEmail: user.Email,
		UserName:  displayName(user),
		Endpoint:  d.Target.Endpoint,
		Data:      args,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInvalidArgument, "failed to encode module request")
	}
	token, err := i.signer.SignModuleToken(user.ID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeUnauthorized, "failed to sign module identity token")
	}

	url := strings.TrimRight(d.Module.WebhookURL, "/") + d.Target.Endpoint
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Failed(errors.ErrCodeTransport, "Failed to connect to module: "+err.Error()), nil
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set(ModuleKeyHeader, d.Module.APIKey)

	start := time.Now()
	resp, err := i.client.Do(req)
	if err != nil {
		slog.Warn("module call failed",
			slog.Int("module_id", int(d.Module.ID)),
			slog.String("tool", d.Name),
			slog.String("error", err.Error()))
		return Failed(errors.ErrCodeTransport, "Failed to connect to module: "+err.Error()), nil
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return Failed(errors.ErrCodeTransport, "Failed to connect to module: "+err.Error()), nil
	}
	slog.Debug("module call finished",
		slog.Int("module_id", int(d.Module.ID)),
		slog.String("tool", d.Name),
		slog.Int("status", resp.StatusCode),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		text := truncateBody(string(raw), maxErrorBody)
		return &Result{
			Success: false,
			Error:   fmt.Sprintf("Module returned error: %d %s", resp.StatusCode, strings.TrimSpace(text)),
		}, nil
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		return OK(nil), nil
	}
	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return OK(string(raw)), nil
	}
	return OK(data), nil
}

func displayName(u *store.User) string {
	if u.Nickname != "" {
		return u.Nickname
	}
	return u.Username
}

// truncateBody cuts text to at most n bytes without splitting a rune.
func truncateBody(text string, n int) string {
	if len(text) <= n {
		return text
	}
	for n > 0 && !utf8.RuneStart(text[n]) {
		n--
	}
	return text[:n]
}
