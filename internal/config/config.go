package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"askhr/internal/domain"
)

const envPrefix = "ASKHR"

// ChunkerConfig configures how documents are split into chunks.
type ChunkerConfig struct {
	Type         string `yaml:"type"`
	MaxChars     int    `yaml:"max_chars" split_words:"true"`
	OverlapChars int    `yaml:"overlap_chars" split_words:"true"`
}

// EmbedderConfig selects the vectorizer implementation.
type EmbedderConfig struct {
	Type string `yaml:"type"`
}

// StoreConfig locates the persisted knowledge base.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// RetrievalConfig tunes query resolution.
type RetrievalConfig struct {
	TopK     int     `yaml:"top_k" split_words:"true"`
	MinScore float64 `yaml:"min_score" split_words:"true"`
}

// SummarizerConfig selects and configures the corpus overview.
type SummarizerConfig struct {
	Type         string `yaml:"type"`
	MaxSentences int    `yaml:"max_sentences" split_words:"true"`
}

// IngestConfig controls which files are picked up from directories.
type IngestConfig struct {
	Extensions []string `yaml:"extensions"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr        string `yaml:"addr"`
	MaxUploadMB int64  `yaml:"max_upload_mb" split_words:"true"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Chunker    ChunkerConfig    `yaml:"chunker"`
	Embedder   EmbedderConfig   `yaml:"embedder"`
	Store      StoreConfig      `yaml:"store"`
	Retrieval  RetrievalConfig  `yaml:"retrieval"`
	Summarizer SummarizerConfig `yaml:"summarizer"`
	Ingest     IngestConfig     `yaml:"ingest"`
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
}

// Load reads a config from a specified path, then applies ASKHR_* environment
// overrides. A missing file yields defaults.
func Load(path string) (*AppConfig, error) {
	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, fmt.Errorf("env override: %w", err)
	}
	applyConfigDefaults(cfg)
	return cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/askhr/config.yaml.
// If neither exists, it writes defaults to ~/.config/askhr/config.yaml and
// returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err != nil {
		if err := Save(userPath, defaultConfig()); err != nil {
			return nil, "", err
		}
	}
	cfg, err := Load(userPath)
	return cfg, userPath, err
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// BindFlags registers command-line overrides on fs.
func BindFlags(fs *pflag.FlagSet) {
	fs.Int("max-chars", 0, "Maximum characters per chunk")
	fs.Int("overlap-chars", 0, "Characters shared by consecutive chunks")
	fs.String("store-path", "", "Path of the knowledge base record")
	fs.String("log-level", "", "Log level (debug|info|warn|error)")
	fs.String("log-format", "", "Log format (console|json)")
}

// ApplyFlags copies flags that were set on the command line into cfg.
func (c *AppConfig) ApplyFlags(fs *pflag.FlagSet) {
	setStr := func(name string, dst *string) {
		if f := fs.Lookup(name); f != nil && f.Changed {
			*dst, _ = fs.GetString(name)
		}
	}
	setInt := func(name string, dst *int) {
		if f := fs.Lookup(name); f != nil && f.Changed {
			*dst, _ = fs.GetInt(name)
		}
	}
	setInt("max-chars", &c.Chunker.MaxChars)
	setInt("overlap-chars", &c.Chunker.OverlapChars)
	setStr("store-path", &c.Store.Path)
	setStr("log-level", &c.Log.Level)
	setStr("log-format", &c.Log.Format)
}

// Validate rejects settings the rest of the system cannot work with.
func (c *AppConfig) Validate() error {
	if c.Chunker.MaxChars <= 0 || c.Chunker.OverlapChars < 0 || c.Chunker.OverlapChars >= c.Chunker.MaxChars {
		return fmt.Errorf("%w: chunker.overlap_chars (%d) must be in [0, chunker.max_chars (%d))",
			domain.ErrInvalidConfiguration, c.Chunker.OverlapChars, c.Chunker.MaxChars)
	}
	if c.Retrieval.TopK <= 0 {
		return fmt.Errorf("%w: retrieval.top_k must be positive", domain.ErrInvalidConfiguration)
	}
	return nil
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "askhr", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	return &AppConfig{
		Chunker:    ChunkerConfig{Type: "window", MaxChars: 1000, OverlapChars: 200},
		Embedder:   EmbedderConfig{Type: "tfidf"},
		Store:      StoreConfig{Path: "data/hr_knowledge.json"},
		Retrieval:  RetrievalConfig{TopK: 4},
		Summarizer: SummarizerConfig{Type: "frequency", MaxSentences: 3},
		Ingest:     IngestConfig{Extensions: []string{".pdf", ".txt", ".md"}},
		Server:     ServerConfig{Addr: ":8080", MaxUploadMB: 32},
		Log:        LogConfig{Level: "info", Format: "console"},
	}
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Store.Path == "" {
		cfg.Store.Path = "data/hr_knowledge.json"
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 4
	}
	if cfg.Summarizer.MaxSentences == 0 {
		cfg.Summarizer.MaxSentences = 3
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.MaxUploadMB == 0 {
		cfg.Server.MaxUploadMB = 32
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
}
