package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	Port string

	// Auth
	APIKey string

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Upload limits
	MaxUploadBytes int64
	RateLimit      float64 // uploads per second per client; 0 disables
	RateBurst      int

	// Job state
	JobTTL      time.Duration
	StatsWindow time.Duration

	// PDF
	PDFFallbackPdftotext bool

	// Generation
	MinLineLength     int
	MinSentenceLength int
	TopN              int
	Segmenter         string
	Stem              bool
	EntityPatterns    bool
	BlankMarker       string
	Seed              uint64 // 0 draws a fresh seed per run

	// Storage
	DBPath string
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Port: "8090",

		WorkerCount:  4,
		MaxQueueSize: 100,

		MaxUploadBytes: 52428800, // 50MB
		RateLimit:      2,
		RateBurst:      10,

		JobTTL:      1 * time.Hour,
		StatsWindow: 1 * time.Hour,

		PDFFallbackPdftotext: true,

		MinLineLength:     20,
		MinSentenceLength: 30,
		TopN:              10,
		Segmenter:         "prose",
		EntityPatterns:    true,
		BlankMarker:       "_____",

		DBPath: defaultDBPath(),
	}
}

// Load reads the file named by QUIZGEST_CONFIG, if any, then the
// environment.
func Load() (Config, error) {
	return LoadFrom(os.Getenv("QUIZGEST_CONFIG"))
}

// LoadFrom layers defaults, the TOML file at path (skipped when empty) and
// environment variables, in that order.
func LoadFrom(path string) (Config, error) {
	cfg := Defaults()
	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return Config{}, err
		}
	}
	cfg.mergeEnv()
	cfg.clamp()
	return cfg, nil
}

func (c *Config) mergeEnv() {
	c.Port = envOr("PORT", c.Port)
	c.APIKey = envOr("QUIZGEST_API_KEY", c.APIKey)

	c.WorkerCount = envInt("WORKER_COUNT", c.WorkerCount)
	c.MaxQueueSize = envInt("MAX_QUEUE_SIZE", c.MaxQueueSize)

	c.MaxUploadBytes = envInt64("MAX_UPLOAD_BYTES", c.MaxUploadBytes)
	c.RateLimit = envFloat("RATE_LIMIT", c.RateLimit)
	c.RateBurst = envInt("RATE_BURST", c.RateBurst)

	c.JobTTL = envDuration("JOB_TTL", c.JobTTL)
	c.StatsWindow = envDuration("STATS_WINDOW", c.StatsWindow)

	c.PDFFallbackPdftotext = envBool("PDF_FALLBACK_PDFTOTEXT", c.PDFFallbackPdftotext)

	c.MinLineLength = envInt("MIN_LINE_LENGTH", c.MinLineLength)
	c.MinSentenceLength = envInt("MIN_SENTENCE_LENGTH", c.MinSentenceLength)
	c.TopN = envInt("TOP_N", c.TopN)
	c.Segmenter = envOr("SEGMENTER", c.Segmenter)
	c.Stem = envBool("STEM", c.Stem)
	c.EntityPatterns = envBool("ENTITY_PATTERNS", c.EntityPatterns)
	c.BlankMarker = envOr("BLANK_MARKER", c.BlankMarker)
	c.Seed = envUint64("SEED", c.Seed)

	c.DBPath = envOr("QUIZGEST_DB", c.DBPath)
}

func (c *Config) clamp() {
	d := Defaults()
	if c.WorkerCount <= 0 {
		c.WorkerCount = d.WorkerCount
	}
	if c.MaxQueueSize <= 0 {
		c.MaxQueueSize = d.MaxQueueSize
	}
	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = d.MaxUploadBytes
	}
	if c.RateLimit < 0 {
		c.RateLimit = 0
	}
	if c.RateBurst <= 0 {
		c.RateBurst = 1
	}
	if c.JobTTL <= 0 {
		c.JobTTL = d.JobTTL
	}
	if c.StatsWindow <= 0 {
		c.StatsWindow = d.StatsWindow
	}
	if c.MinLineLength < 0 {
		c.MinLineLength = 0
	}
	if c.MinSentenceLength < 0 {
		c.MinSentenceLength = 0
	}
	if c.TopN < 0 {
		c.TopN = 0
	}
	if c.BlankMarker == "" {
		c.BlankMarker = d.BlankMarker
	}
}

// Validate checks the settings the HTTP server cannot run without.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("QUIZGEST_API_KEY is required")
	}
	switch c.Segmenter {
	case "prose", "simple":
	default:
		return fmt.Errorf("SEGMENTER must be prose or simple, got %q", c.Segmenter)
	}
	return nil
}

// defaultDBPath is $XDG_DATA_HOME/quizgest/quizgest.db, falling back to
// ~/.local/share and then the working directory.
func defaultDBPath() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "quizgest.db"
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "quizgest", "quizgest.db")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envUint64(key string, fallback uint64) uint64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

// fileConfig is the TOML layout. Keys absent from the file keep the
// values the struct was seeded with.
type fileConfig struct {
	Server struct {
		Port           string  `toml:"port"`
		APIKey         string  `toml:"api_key"`
		Workers        int     `toml:"workers"`
		QueueSize      int     `toml:"queue_size"`
		MaxUploadBytes int64   `toml:"max_upload_bytes"`
		RateLimit      float64 `toml:"rate_limit"`
		RateBurst      int     `toml:"rate_burst"`
		JobTTL         string  `toml:"job_ttl"`
		StatsWindow    string  `toml:"stats_window"`
	} `toml:"server"`
	Parser struct {
		PDFFallbackPdftotext bool `toml:"pdf_fallback_pdftotext"`
	} `toml:"parser"`
	Generation struct {
		MinLineLength     int    `toml:"min_line_length"`
		MinSentenceLength int    `toml:"min_sentence_length"`
		TopN              int    `toml:"top_n"`
		Segmenter         string `toml:"segmenter"`
		Stem              bool   `toml:"stem"`
		EntityPatterns    bool   `toml:"entity_patterns"`
		BlankMarker       string `toml:"blank_marker"`
		Seed              uint64 `toml:"seed"`
	} `toml:"generation"`
	Storage struct {
		DBPath string `toml:"db_path"`
	} `toml:"storage"`
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var fc fileConfig
	fc.Server.Port = c.Port
	fc.Server.APIKey = c.APIKey
	fc.Server.Workers = c.WorkerCount
	fc.Server.QueueSize = c.MaxQueueSize
	fc.Server.MaxUploadBytes = c.MaxUploadBytes
	fc.Server.RateLimit = c.RateLimit
	fc.Server.RateBurst = c.RateBurst
	fc.Server.JobTTL = c.JobTTL.String()
	fc.Server.StatsWindow = c.StatsWindow.String()
	fc.Parser.PDFFallbackPdftotext = c.PDFFallbackPdftotext
	fc.Generation.MinLineLength = c.MinLineLength
	fc.Generation.MinSentenceLength = c.MinSentenceLength
	fc.Generation.TopN = c.TopN
	fc.Generation.Segmenter = c.Segmenter
	fc.Generation.Stem = c.Stem
	fc.Generation.EntityPatterns = c.EntityPatterns
	fc.Generation.BlankMarker = c.BlankMarker
	fc.Generation.Seed = c.Seed
	fc.Storage.DBPath = c.DBPath

	if err := toml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	jobTTL, err := time.ParseDuration(fc.Server.JobTTL)
	if err != nil {
		return fmt.Errorf("server.job_ttl: %w", err)
	}
	statsWindow, err := time.ParseDuration(fc.Server.StatsWindow)
	if err != nil {
		return fmt.Errorf("server.stats_window: %w", err)
	}

	c.Port = fc.Server.Port
	c.APIKey = fc.Server.APIKey
	c.WorkerCount = fc.Server.Workers
	c.MaxQueueSize = fc.Server.QueueSize
	c.MaxUploadBytes = fc.Server.MaxUploadBytes
	c.RateLimit = fc.Server.RateLimit
	c.RateBurst = fc.Server.RateBurst
	c.JobTTL = jobTTL
	c.StatsWindow = statsWindow
	c.PDFFallbackPdftotext = fc.Parser.PDFFallbackPdftotext
	c.MinLineLength = fc.Generation.MinLineLength
	c.MinSentenceLength = fc.Generation.MinSentenceLength
	c.TopN = fc.Generation.TopN
	c.Segmenter = fc.Generation.Segmenter
	c.Stem = fc.Generation.Stem
	c.EntityPatterns = fc.Generation.EntityPatterns
	c.BlankMarker = fc.Generation.BlankMarker
	c.Seed = fc.Generation.Seed
	c.DBPath = fc.Storage.DBPath
	return nil
}
