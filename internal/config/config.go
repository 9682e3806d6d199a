package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/Tiliavir/freshtrack/internal/storage"
)

// ErrConfiguration marks fatal configuration problems: missing keys,
// unmapped projects, unknown collectors.
var ErrConfiguration = errors.New("configuration error")

// Config is the root configuration for freshtrack, stored in ~/.freshtrack.yml.
type Config struct {
	// Company is the FreshBooks account name (<company>.freshbooks.com).
	Company string `yaml:"company"`
	// Token is the API authentication token.
	Token string `yaml:"token"`
	// APIURL overrides the endpoint derived from Company.
	APIURL string `yaml:"api_url"`
	// Collector selects the time source: "punch" or "local".
	Collector string `yaml:"collector"`
	// PunchCommand is the executable run by the punch collector.
	PunchCommand string `yaml:"punch_command"`
	// DataDir is where the local collector keeps punches.
	DataDir string `yaml:"data_dir"`
	// OAuth enables the device-code login instead of Token.
	OAuth *OAuthConfig `yaml:"oauth"`
	// ProjectTaskMapping maps local project names to remote project/task names.
	ProjectTaskMapping map[string]ProjectMapping `yaml:"project_task_mapping"`
}

// OAuthConfig holds the OAuth2 device-code flow settings.
type OAuthConfig struct {
	ClientID      string   `yaml:"client_id"`
	DeviceAuthURL string   `yaml:"device_auth_url"`
	TokenURL      string   `yaml:"token_url"`
	Scopes        []string `yaml:"scopes"`
}

// ProjectMapping names the remote project and task for a local project.
// Company and Token, when set, override the global values.
type ProjectMapping struct {
	Project string `yaml:"project"`
	Task    string `yaml:"task"`
	Company string `yaml:"company"`
	Token   string `yaml:"token"`
}

// Auth is the resolved remote account for one operation.
type Auth struct {
	Company string
	Token   string
	APIURL  string
	OAuth   *OAuthConfig
}

const (
	// DefaultCollector is used when the file does not name one.
	DefaultCollector = "punch"
	// DefaultPunchCommand is the punch executable looked up on PATH.
	DefaultPunchCommand = "punch"
)

// configTemplate is the annotated config written on first run.
const configTemplate = `# freshtrack configuration – ~/.freshtrack.yml
#
# company and token are required unless an oauth block is present.
# FRESHTRACK_COMPANY and FRESHTRACK_TOKEN (environment or .env) override them.

company: ""
token: ""

# Time source: "punch" runs the punch command-line tool,
# "local" reads punches recorded with 'freshtrack in' / 'freshtrack out'.
collector: punch
punch_command: punch
# data_dir: ~/.freshtrack/punches

# Local project name -> FreshBooks project and task names.
# company/token may be overridden per project.
project_task_mapping:
  # myproject:
  #   project: My Client Website
  #   task: Development
`

// FilePath returns the config path: $FRESHTRACK_CONFIG or ~/.freshtrack.yml.
func FilePath() (string, error) {
	if p := os.Getenv("FRESHTRACK_CONFIG"); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".freshtrack.yml"), nil
}

// Load reads the config file, creating an annotated template on first run,
// applies environment overrides (including a .env file in the working
// directory) and validates the result.
func Load() (*Config, error) {
	// A missing .env is normal.
	_ = godotenv.Load()

	path, err := FilePath()
	if err != nil {
		return nil, err
	}
	if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
		if writeErr := writeDefault(path); writeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not create config file %s: %v\n", path, writeErr)
		} else {
			fmt.Fprintf(os.Stderr, "Created %s; fill in company, token and project_task_mapping.\n", path)
		}
	}
	cfg, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	cfg.applyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadLocal reads the config file for commands that only touch the local
// punch store. Credentials are not validated and a missing file yields the
// defaults.
func LoadLocal() (*Config, error) {
	path, err := FilePath()
	if err != nil {
		return nil, err
	}
	if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
		cfg := &Config{}
		if err := cfg.applyDefaults(); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	return LoadFile(path)
}

// LoadFile parses the YAML file at path and fills defaults. It does not
// validate.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() error {
	if c.Collector == "" {
		c.Collector = DefaultCollector
	}
	if c.PunchCommand == "" {
		c.PunchCommand = DefaultPunchCommand
	}
	if c.DataDir == "" {
		dir, err := storage.BaseDir()
		if err != nil {
			return err
		}
		c.DataDir = dir
	} else if strings.HasPrefix(c.DataDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("cannot determine home directory: %w", err)
		}
		c.DataDir = filepath.Join(home, c.DataDir[2:])
	}
	if c.ProjectTaskMapping == nil {
		c.ProjectTaskMapping = map[string]ProjectMapping{}
	}
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv("FRESHTRACK_COMPANY"); v != "" {
		c.Company = v
	}
	if v := getenv("FRESHTRACK_TOKEN"); v != "" {
		c.Token = v
	}
}

// Validate checks the keys every operation needs.
func (c *Config) Validate() error {
	if c.Company == "" && c.APIURL == "" {
		return fmt.Errorf("%w: company is not set", ErrConfiguration)
	}
	if c.Token == "" && c.OAuth == nil {
		return fmt.Errorf("%w: token is not set", ErrConfiguration)
	}
	if c.OAuth != nil && (c.OAuth.ClientID == "" || c.OAuth.TokenURL == "") {
		return fmt.Errorf("%w: oauth needs client_id and token_url", ErrConfiguration)
	}
	return nil
}

// Mapping returns the remote project/task mapping for a local project.
func (c *Config) Mapping(project string) (ProjectMapping, error) {
	m, ok := c.ProjectTaskMapping[project]
	if !ok {
		return ProjectMapping{}, fmt.Errorf("%w: project %q is not in project_task_mapping", ErrConfiguration, project)
	}
	if m.Project == "" || m.Task == "" {
		return ProjectMapping{}, fmt.Errorf("%w: mapping for %q needs both project and task", ErrConfiguration, project)
	}
	return m, nil
}

// DefaultAuth returns the global remote account.
func (c *Config) DefaultAuth() Auth {
	return Auth{Company: c.Company, Token: c.Token, APIURL: c.APIURL, OAuth: c.OAuth}
}

// AuthFor returns the remote account for a mapped project, applying its
// company and token overrides. A project token replaces the global OAuth
// login.
func (c *Config) AuthFor(project string) (Auth, error) {
	m, err := c.Mapping(project)
	if err != nil {
		return Auth{}, err
	}
	auth := c.DefaultAuth()
	if m.Company != "" {
		auth.Company = m.Company
		auth.APIURL = ""
	}
	if m.Token != "" {
		auth.Token = m.Token
		auth.OAuth = nil
	}
	return auth, nil
}

// writeDefault writes the annotated default config template.
func writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(configTemplate), 0o600); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}
