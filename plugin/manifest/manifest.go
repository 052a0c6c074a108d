// Package manifest defines the document a third-party module publishes to
// describe itself and the functions the assistant may call on it.
package manifest

import (
	"encoding/json"
	"net/url"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/hrygo/eidos/internal/version"
)

// DefaultEndpoint is used for functions that do not declare one.
const DefaultEndpoint = "/execute"

// Manifest is stored as JSON on the module row and may be authored as YAML.
type Manifest struct {
	Name        string     `json:"name" yaml:"name"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	Version     string     `json:"version" yaml:"version"`
	WebhookURL  string     `json:"webhook_url,omitempty" yaml:"webhook_url,omitempty"`
	Functions   []Function `json:"functions,omitempty" yaml:"functions,omitempty"`
}

// Function is one callable operation of a module.
type Function struct {
	Name        string               `json:"name" yaml:"name"`
	Description string               `json:"description,omitempty" yaml:"description,omitempty"`
	Parameters  map[string]Parameter `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	// Required, when present, overrides inference from parameter descriptions.
	Required []string `json:"required,omitempty" yaml:"required,omitempty"`
	Endpoint string   `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
}

type Parameter struct {
	Type        string   `json:"type" yaml:"type"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Enum        []string `json:"enum,omitempty" yaml:"enum,omitempty"`
}

// EndpointOrDefault returns the function endpoint, falling back to DefaultEndpoint.
func (f *Function) EndpointOrDefault() string {
	if f.Endpoint == "" {
		return DefaultEndpoint
	}
	return f.Endpoint
}

// ParseJSON decodes a stored manifest. An empty document yields an empty manifest.
func ParseJSON(raw string) (*Manifest, error) {
	m := &Manifest{}
	if strings.TrimSpace(raw) == "" {
		return m, nil
	}
	if err := json.Unmarshal([]byte(raw), m); err != nil {
		return nil, errors.Wrap(err, "failed to decode manifest")
	}
	return m, nil
}

// ParseYAML decodes an authored manifest.
func ParseYAML(raw []byte) (*Manifest, error) {
	m := &Manifest{}
	if err := yaml.Unmarshal(raw, m); err != nil {
		return nil, errors.Wrap(err, "failed to decode manifest yaml")
	}
	return m, nil
}

// JSON encodes the manifest for storage.
func (m *Manifest) JSON() (string, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return "", errors.Wrap(err, "failed to encode manifest")
	}
	return string(b), nil
}

// Validate checks the fields a module must declare.
func (m *Manifest) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return errors.New("manifest name is required")
	}
	if !version.IsValid(m.Version) {
		return errors.Errorf("manifest version %q is not a semantic version", m.Version)
	}
	if m.WebhookURL != "" {
		u, err := url.Parse(m.WebhookURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return errors.Errorf("manifest webhook_url %q must be an absolute http(s) URL", m.WebhookURL)
		}
	}
	seen := map[string]bool{}
	for i, f := range m.Functions {
		if strings.TrimSpace(f.Name) == "" {
			return errors.Errorf("function %d has no name", i)
		}
		if seen[f.Name] {
			return errors.Errorf("function %q is declared twice", f.Name)
		}
		seen[f.Name] = true
		for _, r := range f.Required {
			if _, ok := f.Parameters[r]; !ok {
				return errors.Errorf("function %q requires undeclared parameter %q", f.Name, r)
			}
		}
	}
	if len(m.Functions) > 0 && m.WebhookURL == "" {
		return errors.New("manifest declares functions but no webhook_url")
	}
	return nil
}
