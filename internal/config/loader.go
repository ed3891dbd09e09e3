package config

import (
	"errors"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".grantfinder"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// Notify holds the email notification settings. Notification is disabled
// unless a server is configured.
type Notify struct {
	// To is the recipient address for the run summary.
	To string `yaml:"to,omitempty"`

	// SMTPServer and SMTPPort locate the mail relay.
	SMTPServer string `yaml:"smtpServer,omitempty"`
	SMTPPort   int    `yaml:"smtpPort,omitempty"`

	// SMTPUser and SMTPPassword authenticate against the relay. The
	// password may also come from the GRANTFINDER_SMTP_PASSWORD
	// environment variable.
	SMTPUser     string `yaml:"smtpUser,omitempty"`
	SMTPPassword string `yaml:"smtpPassword,omitempty"`

	// HighRelevanceThreshold selects which grants make it into the email.
	// Zero uses DefaultHighRelevanceThreshold.
	HighRelevanceThreshold float64 `yaml:"highRelevanceThreshold,omitempty"`

	// MaxGrants caps the number of grants listed in the email body.
	// Zero uses DefaultMaxGrantsInEmail.
	MaxGrants int `yaml:"maxGrants,omitempty"`
}

// Keywords holds the term lists the analyzer scores against. Empty lists
// fall back to the built-in defaults in the analyzer package.
type Keywords struct {
	// Mission terms describe the organization's own focus, e.g.
	// "nonprofit technology" or "civic tech".
	Mission []string `yaml:"mission,omitempty"`

	// Signals are strong indicators of a grant opportunity, e.g.
	// "application deadline" or "request for proposals".
	Signals []string `yaml:"signals,omitempty"`
}

// File represents the structure of the .grantfinder configuration file.
type File struct {
	// Seeds are the static URLs every run starts from, depth 0.
	Seeds []string `yaml:"seeds,omitempty"`

	// Queries feed the Google Custom Search seed discovery.
	Queries []string `yaml:"queries,omitempty"`

	// Feeds are RSS/Atom URLs whose entries become additional seeds.
	Feeds []string `yaml:"feeds,omitempty"`

	// Blocklist extends the built-in global URL blocklist.
	Blocklist []string `yaml:"blocklist,omitempty"`

	// Domains maps domain names to crawl policies. Subdomains inherit a
	// parent entry unless they have their own.
	Domains map[string]*DomainPolicy `yaml:"domains,omitempty"`

	// Keywords tune the relevance scorer.
	Keywords Keywords `yaml:"keywords,omitempty"`

	// Notify configures the email summary.
	Notify Notify `yaml:"notify,omitempty"`

	tableOnce sync.Once
	table     *PolicyTable
}

// PolicyTable returns the domain policy table built from the Domains map.
// The table is built once and reused for the lifetime of the File.
func (f *File) PolicyTable() *PolicyTable {
	f.tableOnce.Do(func() {
		f.table = NewPolicyTable(f.Domains)
	})
	return f.table
}

// LoadConfigFile loads the YAML configuration from path.
// If the file does not exist, it returns ErrConfigNotFound; callers decide
// whether that is fatal based on whether the path was explicit.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}

	if f.Domains == nil {
		f.Domains = make(map[string]*DomainPolicy)
	}

	return &f, nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .grantfinder in the current directory
// 3. Look for .grantfinder in the user's home directory
//
// Returns the path if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	home, err := os.UserHomeDir()
	if err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	return ""
}
