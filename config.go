package urlwasher

import (
	"fmt"
	"net/url"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// PublicMixerInstance is a publicly available mixer.
const PublicMixerInstance = "https://urldebloater.makin.cc/"

var validate = validator.New()

// RedirectPolicy decides whether and how redirects are resolved for a rule.
type RedirectPolicy int

const (
	// Ignore leaves redirecting URLs as they are.
	Ignore RedirectPolicy = iota
	// Locally resolves redirects with a direct request. The destination
	// server sees our IP address.
	Locally
	// ViaMixer asks the configured mixer instance to resolve the redirect.
	// The mixer operator sees the URL instead of the destination seeing us.
	ViaMixer
)

var policyNames = map[RedirectPolicy]string{
	Ignore:   "ignore",
	Locally:  "locally",
	ViaMixer: "via_mixer",
}

func (p RedirectPolicy) String() string {
	if name, ok := policyNames[p]; ok {
		return name
	}
	return fmt.Sprintf("RedirectPolicy(%d)", int(p))
}

// MarshalText implements encoding.TextMarshaler.
func (p RedirectPolicy) MarshalText() ([]byte, error) {
	name, ok := policyNames[p]
	if !ok {
		return nil, fmt.Errorf("unknown redirect policy %d", int(p))
	}
	return []byte(name), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *RedirectPolicy) UnmarshalText(text []byte) error {
	for policy, name := range policyNames {
		if name == string(text) {
			*p = policy
			return nil
		}
	}
	return fmt.Errorf("unknown redirect policy %q", text)
}

// Config is a snapshot of the washer settings. A Config handed to a Washer
// must not be modified afterwards; build a new one and call SetConfig.
type Config struct {
	// MixerInstance is the base URL of the mixer used by the ViaMixer
	// policy. Nil when no mixer is configured.
	MixerInstance *url.URL
	// RedirectPolicy maps rule names to policies. Rules missing from the
	// map use Ignore; names matching no rule are ignored.
	RedirectPolicy map[string]RedirectPolicy
}

// DefaultConfig resolves redirects locally for every default rule that
// resolves redirects.
func DefaultConfig() *Config {
	cfg := &Config{RedirectPolicy: make(map[string]RedirectPolicy)}
	for _, r := range DefaultRules().Rules() {
		if r.resolvesRedirects() {
			cfg.RedirectPolicy[r.Name] = Locally
		}
	}
	return cfg
}

func (c *Config) policyFor(rule string) RedirectPolicy {
	if c == nil {
		return Ignore
	}
	if p, ok := c.RedirectPolicy[rule]; ok {
		return p
	}
	return Ignore
}

// ParseMixerInstance parses the base URL of a mixer, which has to be an
// absolute http(s) URL.
func ParseMixerInstance(raw string) (*url.URL, error) {
	u, err := parseAbsolute(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid mixer instance: %w", err)
	}
	return u, nil
}

type configFile struct {
	MixerInstance  string                    `yaml:"mixer_instance,omitempty" validate:"omitempty,url"`
	RedirectPolicy map[string]RedirectPolicy `yaml:"redirect_policy,omitempty"`
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (c *Config) UnmarshalYAML(value *yaml.Node) error {
	var f configFile
	if err := value.Decode(&f); err != nil {
		return err
	}
	if err := validate.Struct(&f); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	c.MixerInstance = nil
	if f.MixerInstance != "" {
		u, err := ParseMixerInstance(f.MixerInstance)
		if err != nil {
			return err
		}
		c.MixerInstance = u
	}
	c.RedirectPolicy = f.RedirectPolicy
	if c.RedirectPolicy == nil {
		c.RedirectPolicy = make(map[string]RedirectPolicy)
	}
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (c *Config) MarshalYAML() (interface{}, error) {
	f := configFile{RedirectPolicy: c.RedirectPolicy}
	if c.MixerInstance != nil {
		f.MixerInstance = c.MixerInstance.String()
	}
	return f, nil
}

// ParseConfig decodes a YAML (or JSON) config.
func ParseConfig(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if cfg.RedirectPolicy == nil {
		// empty document
		cfg.RedirectPolicy = make(map[string]RedirectPolicy)
	}
	return cfg, nil
}

// LoadConfigFile reads and decodes the config at path.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", path, err)
	}
	return cfg, nil
}

// Encode renders the config as YAML.
func (c *Config) Encode() ([]byte, error) {
	return yaml.Marshal(c)
}
