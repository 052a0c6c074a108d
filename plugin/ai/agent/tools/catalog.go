package tools

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"strings"

	"github.com/hrygo/eidos/internal/errors"
	"github.com/hrygo/eidos/plugin/ai"
	"github.com/hrygo/eidos/plugin/manifest"
	"github.com/hrygo/eidos/store"
)

// TargetKind says who executes a tool.
type TargetKind string

const (
	TargetBuiltin  TargetKind = "builtin"
	TargetExternal TargetKind = "external"
)

// Param describes one tool argument.
type Param struct {
	Type        string   `json:"type"`
	Description string   `json:"description,omitempty"`
	Enum        []string `json:"enum,omitempty"`
	Optional    bool     `json:"-"`
}

// Target is where a call is routed.
type Target struct {
	Kind     TargetKind
	Endpoint string
}

// ModuleBinding carries what the external invoker needs to reach a module.
type ModuleBinding struct {
	ID         int32
	Name       string
	APIKey     string
	WebhookURL string
}

// Descriptor is one entry of a user's tool catalog.
type Descriptor struct {
	Name        string
	Description string
	Parameters  map[string]Param
	Required    []string
	// ModuleID is zero for built-in tools.
	ModuleID int32
	Target   Target
	Module   *ModuleBinding
}

// Schema renders the JSON schema of the arguments object.
func (d *Descriptor) Schema() map[string]any {
	properties := make(map[string]any, len(d.Parameters))
	for name, p := range d.Parameters {
		prop := map[string]any{"type": p.Type}
		if p.Description != "" {
			prop["description"] = p.Description
		}
		if len(p.Enum) > 0 {
			prop["enum"] = p.Enum
		}
		properties[name] = prop
	}
	required := d.Required
	if required == nil {
		required = []string{}
	}
	return map[string]any{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}

// ToolDescriptor converts d for the LLM request.
func (d *Descriptor) ToolDescriptor() ai.ToolDescriptor {
	params, err := json.Marshal(d.Schema())
	if err != nil {
		slog.Warn("failed to marshal tool parameters, using empty schema",
			slog.String("tool", d.Name),
			slog.String("error", err.Error()))
		params = []byte(`{"type":"object","properties":{}}`)
	}
	return ai.ToolDescriptor{
		Name:        d.Name,
		Description: d.Description,
		Parameters:  string(params),
	}
}

var optionalMarkers = []string{"(optional)", "(опционально)"}

// IsOptionalDescription reports whether a parameter description marks the
// parameter as optional: it ends, ignoring case and trailing spaces, with
// "(optional)" or "(опционально)".
func IsOptionalDescription(description string) bool {
	d := strings.ToLower(strings.TrimSpace(description))
	for _, marker := range optionalMarkers {
		if strings.HasSuffix(d, marker) {
			return true
		}
	}
	return false
}

// newDescriptor resolves the required set. A non-empty explicit list wins;
// otherwise every parameter not marked optional is required.
func newDescriptor(name, description string, params map[string]Param, explicit []string) *Descriptor {
	d := &Descriptor{
		Name:        name,
		Description: description,
		Parameters:  make(map[string]Param, len(params)),
	}
	for n, p := range params {
		p.Optional = IsOptionalDescription(p.Description)
		d.Parameters[n] = p
	}
	if len(explicit) > 0 {
		d.Required = append([]string{}, explicit...)
		required := map[string]bool{}
		for _, r := range explicit {
			required[r] = true
		}
		for n, p := range d.Parameters {
			p.Optional = !required[n]
			d.Parameters[n] = p
		}
		return d
	}
	d.Required = []string{}
	for n, p := range d.Parameters {
		if !p.Optional {
			d.Required = append(d.Required, n)
		}
	}
	sort.Strings(d.Required)
	return d
}

// ModuleSource lists a user's installed modules.
type ModuleSource interface {
	ListInstalledModules(ctx context.Context, userID int32, enabledOnly bool) ([]*store.InstalledModule, error)
}

// Catalog builds per-user tool catalogs.
type Catalog struct {
	modules ModuleSource
}

func NewCatalog(modules ModuleSource) *Catalog {
	return &Catalog{modules: modules}
}

// Tools returns the built-in tools followed by the functions of every
// installed and enabled module, in install order. Malformed manifests and
// names already taken are skipped.
func (c *Catalog) Tools(ctx context.Context, userID int32) ([]*Descriptor, error) {
	list := Builtins()
	taken := make(map[string]bool, len(list))
	for _, d := range list {
		taken[d.Name] = true
	}

	installed, err := c.modules.ListInstalledModules(ctx, userID, true)
	if err != nil {
		return nil, errors.Store("failed to list installed modules", err)
	}
	for _, im := range installed {
		m, err := manifest.ParseJSON(im.Module.Manifest)
		if err != nil {
			slog.Warn("skipping module with malformed manifest",
				slog.Int("module_id", int(im.Module.ID)),
				slog.String("error", err.Error()))
			continue
		}
		binding := &ModuleBinding{
			ID:         im.Module.ID,
			Name:       im.Module.Name,
			APIKey:     im.Module.APIKey,
			WebhookURL: m.WebhookURL,
		}
		for _, f := range m.Functions {
			if f.Name == "" {
				continue
			}
			if taken[f.Name] {
				slog.Warn("skipping module function with a name already in the catalog",
					slog.Int("module_id", int(im.Module.ID)),
					slog.String("function", f.Name))
				continue
			}
			taken[f.Name] = true

			params := make(map[string]Param, len(f.Parameters))
			for n, p := range f.Parameters {
				params[n] = Param{Type: p.Type, Description: p.Description, Enum: p.Enum}
			}
			d := newDescriptor(f.Name, f.Description, params, f.Required)
			d.ModuleID = im.Module.ID
			d.Target = Target{Kind: TargetExternal, Endpoint: f.EndpointOrDefault()}
			d.Module = binding
			list = append(list, d)
		}
	}
	return list, nil
}

// ToolDescriptors converts a catalog for the LLM request.
func ToolDescriptors(list []*Descriptor) []ai.ToolDescriptor {
	out := make([]ai.ToolDescriptor, len(list))
	for i, d := range list {
		out[i] = d.ToolDescriptor()
	}
	return out
}
