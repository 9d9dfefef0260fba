// Package config loads seqalign settings from a TOML file.
package config

import (
	"os"

	"github.com/aria-lang/seqalign/internal/aligner"
	"github.com/aria-lang/seqalign/internal/alignment"
	"github.com/aria-lang/seqalign/internal/kmer"
	"github.com/aria-lang/seqalign/internal/pool"
	"github.com/aria-lang/seqalign/internal/profiler"
	"github.com/aria-lang/seqalign/internal/quality"
	"github.com/aria-lang/seqalign/internal/scoring"
	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
)

// Config holds every tunable of the aligners, the pool and the server.
type Config struct {
	MaxSize int    `toml:"max-size"`
	Threads int    `toml:"threads"`
	Mode    string `toml:"mode"`

	Scoring Scoring           `toml:"scoring"`
	Gaps    scoring.GapScores `toml:"gaps"`
	Profile profiler.Options  `toml:"profile"`
	Kmer    Kmer              `toml:"kmer"`
	Cache   Cache             `toml:"cache"`
	Server  Server            `toml:"server"`
}

// Scoring selects the substitution matrix.
type Scoring struct {
	Match    int `toml:"match"`
	Mismatch int `toml:"mismatch"`
	// Degenerate scores IUPAC codes by their overlap.
	Degenerate         bool `toml:"degenerate"`
	DegenerateMatch    int  `toml:"degenerate-match"`
	DegenerateMismatch int  `toml:"degenerate-mismatch"`
}

// Kmer configures the k-mer frequency index and the batch prefilter.
type Kmer struct {
	K      int     `toml:"k"`
	Cutoff float64 `toml:"cutoff"`
	// pairs sharing a smaller fraction of k-mers are not aligned; 0 disables
	Prefilter float64 `toml:"prefilter"`
}

// Cache names the directories caches are loaded from and saved to.
type Cache struct {
	InDir  string `toml:"in-dir"`
	OutDir string `toml:"out-dir"`
}

// Server configures seqalign-server.
type Server struct {
	Addr           string `toml:"addr"`
	RequestTimeout int    `toml:"request-timeout"` // seconds
	MaxBodyBytes   int64  `toml:"max-body-bytes"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		MaxSize: 400,
		Threads: 4,
		Mode:    alignment.Global.String(),
		Scoring: Scoring{
			Match:              2,
			Mismatch:           -2,
			DegenerateMatch:    1,
			DegenerateMismatch: -1,
		},
		Gaps:    scoring.NewGapScores(5, 1),
		Profile: profiler.DefaultOptions(),
		Kmer: Kmer{
			K:      5,
			Cutoff: 3,
		},
		Server: Server{
			Addr:           ":8080",
			RequestTimeout: 60,
			MaxBodyBytes:   1 << 20,
		},
	}
}

// Load reads a TOML file over the defaults. Keys missing from the file
// keep their default values. A leading ~ in file and in cache paths is
// expanded.
func Load(file string) (*Config, error) {
	cfg := Default()

	path, err := homedir.Expand(file)
	if err != nil {
		return nil, errors.Wrapf(err, "expand config path: %s", file)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read config file: %s", path)
	}
	if err = toml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parse config file: %s", path)
	}

	if err = cfg.ExpandPaths(); err != nil {
		return nil, err
	}
	if err = cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, path)
	}
	return cfg, nil
}

// ExpandPaths expands a leading ~ in the cache directories.
func (c *Config) ExpandPaths() error {
	var err error
	if c.Cache.InDir, err = homedir.Expand(c.Cache.InDir); err != nil {
		return errors.Wrap(err, "expand cache in-dir")
	}
	if c.Cache.OutDir, err = homedir.Expand(c.Cache.OutDir); err != nil {
		return errors.Wrap(err, "expand cache out-dir")
	}
	return nil
}

// Validate checks the settings.
func (c *Config) Validate() error {
	if c.MaxSize < 1 {
		return errors.Errorf("max-size must be positive, got %d", c.MaxSize)
	}
	if c.Threads < 1 {
		return errors.Errorf("threads must be positive, got %d", c.Threads)
	}
	if _, err := alignment.ParseMode(c.Mode); err != nil {
		return err
	}
	if err := c.Gaps.Validate(); err != nil {
		return err
	}
	if err := c.Profile.Qual.Validate(); err != nil {
		return err
	}
	if c.Kmer.K < 1 || c.Kmer.K > kmer.MaxK {
		return errors.Errorf("k-mer length must be in [1, %d], got %d", kmer.MaxK, c.Kmer.K)
	}
	if c.Server.RequestTimeout < 1 {
		return errors.Errorf("server request-timeout must be positive, got %d", c.Server.RequestTimeout)
	}
	if c.Kmer.Prefilter < 0 || c.Kmer.Prefilter > 1 {
		return errors.Errorf("k-mer prefilter must be in [0, 1], got %g", c.Kmer.Prefilter)
	}
	return nil
}

// Save writes the settings as TOML.
func (c *Config) Save(file string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "marshal config")
	}
	if err = os.WriteFile(file, data, 0644); err != nil {
		return errors.Wrapf(err, "write config file: %s", file)
	}
	return nil
}

// AlignMode returns the configured alignment mode.
func (c *Config) AlignMode() alignment.Mode {
	m, _ := alignment.ParseMode(c.Mode)
	return m
}

// Model builds the scoring model.
func (c *Config) Model() (*scoring.Model, error) {
	s := c.Scoring
	if s.Degenerate {
		return scoring.NewModel(scoring.NewDegenerateMatrix(s.Match, s.Mismatch,
			s.DegenerateMatch, s.DegenerateMismatch), c.Gaps)
	}
	return scoring.Simple(s.Match, s.Mismatch, c.Gaps)
}

// Thresholds returns the quality thresholds of the profile options.
func (c *Config) Thresholds() quality.Thresholds {
	return c.Profile.Qual
}

// NewKmerIndex returns an empty k-mer index with the configured length and
// cutoff.
func (c *Config) NewKmerIndex() (*kmer.Index, error) {
	return kmer.NewIndex(c.Kmer.K, c.Kmer.Cutoff)
}

// Factory returns a pool.Factory creating Aligners with these settings.
// The k-mer index, if any, is shared read-only by all Aligners.
func (c *Config) Factory(index *kmer.Index) (pool.Factory, error) {
	model, err := c.Model()
	if err != nil {
		return nil, err
	}
	opts := c.Profile
	opts.Kmers = index
	if index == nil {
		opts.CheckKmer = false
	}
	maxSize := c.MaxSize
	return func() (*aligner.Aligner, error) {
		return aligner.New(maxSize, model, opts), nil
	}, nil
}

// NewPool creates a pool of Threads Aligners using the cache directories.
func (c *Config) NewPool(index *kmer.Index) (*pool.Pool, error) {
	factory, err := c.Factory(index)
	if err != nil {
		return nil, err
	}
	return pool.New(c.Threads, factory, c.Cache.InDir, c.Cache.OutDir)
}
