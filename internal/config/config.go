// Package config carries the process-wide settings for an enrichment run.
// Configuration is an explicit value threaded into the components that need
// it, never ambient state.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// ConfigFile is the optional per-directory configuration file.
	ConfigFile = "lastcited.yaml"

	// DefaultCorpusXML is the default DBLP dump path.
	DefaultCorpusXML = "dblp.xml"

	// DefaultCachePath is the default query cache file.
	DefaultCachePath = "api_cache.json"

	// OutputSuffix is appended to the input basename when no output path
	// is given.
	OutputSuffix = "_with_citations"
)

// Config holds the settings for one run. Flag values override file values,
// which override defaults.
type Config struct {
	// Email is the contact identity sent to OpenAlex for polite access.
	Email string `yaml:"email"`

	// CorpusXML is the path to the DBLP XML dump.
	CorpusXML string `yaml:"dblp_xml"`

	// CachePath is the query cache file.
	CachePath string `yaml:"cache"`

	// NoDBLP disables the corpus source.
	NoDBLP bool `yaml:"no_dblp"`

	// NoOpenAlex disables the remote source.
	NoOpenAlex bool `yaml:"no_openalex"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		CorpusXML: DefaultCorpusXML,
		CachePath: DefaultCachePath,
	}
}

// Load reads configuration from path, layered over the defaults. An empty
// path means the conventional lastcited.yaml in the working directory, and
// its absence is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = ConfigFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv fills the contact email from a .env file or the environment
// when it is not already set.
func (c *Config) ApplyEnv() {
	_ = godotenv.Load()
	if c.Email == "" {
		c.Email = os.Getenv("OPENALEX_MAILTO")
	}
}

// DefaultOutputPath derives the output table path from the input path:
// papers.tsv becomes papers_with_citations.tsv.
func DefaultOutputPath(inputPath string) string {
	ext := filepath.Ext(inputPath)
	base := strings.TrimSuffix(inputPath, ext)
	return base + OutputSuffix + ".tsv"
}
