package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/BurntSushi/toml"
)

const defaultConfig = `
# semsearch configuration.

[storage]
# local, s3 or minio
backend = "local"
path = "./data"
bucket = ""
prefix = ""
region = ""
endpoint = ""
use-path-style = false
access-key = ""
secret-key = ""
secure = true
block-cache-mb = 64
block-size-kb = 64
io-limit-mb = 0
max-concurrent-reads = 0

[index]
fulltext = "wiki.fulltext"
ontology = "wiki.ontology"
docs = "wiki"
# docs, bolt or badger
excerpts = "docs"
excerpt-path = ""

[query]
cache-entries = 4096
# json or go-json
codec = "go-json"

[build]
compress = true
block-words = 1024

[log]
# debug, info, warn, error
level = "info"
# text or json
format = "text"
`

// Config is the CLI configuration. Missing keys keep their defaults.
type Config struct {
	Storage StorageConfig `toml:"storage"`
	Index   IndexConfig   `toml:"index"`
	Query   QueryConfig   `toml:"query"`
	Build   BuildConfig   `toml:"build"`
	Log     LogConfig     `toml:"log"`
}

type StorageConfig struct {
	Backend            string `toml:"backend"`
	Path               string `toml:"path"`
	Bucket             string `toml:"bucket"`
	Prefix             string `toml:"prefix"`
	Region             string `toml:"region"`
	Endpoint           string `toml:"endpoint"`
	UsePathStyle       bool   `toml:"use-path-style"`
	AccessKey          string `toml:"access-key"`
	SecretKey          string `toml:"secret-key"`
	Secure             bool   `toml:"secure"`
	BlockCacheMB       int64  `toml:"block-cache-mb"`
	BlockSizeKB        int64  `toml:"block-size-kb"`
	IOLimitMB          int64  `toml:"io-limit-mb"`
	MaxConcurrentReads int64  `toml:"max-concurrent-reads"`
}

type IndexConfig struct {
	Fulltext    string `toml:"fulltext"`
	Ontology    string `toml:"ontology"`
	Docs        string `toml:"docs"`
	Excerpts    string `toml:"excerpts"`
	ExcerptPath string `toml:"excerpt-path"`
}

type QueryConfig struct {
	CacheEntries int    `toml:"cache-entries"`
	Codec        string `toml:"codec"`
}

type BuildConfig struct {
	Compress   bool `toml:"compress"`
	BlockWords int  `toml:"block-words"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// LoadConfig decodes the defaults and then path, if not empty.
func LoadConfig(path string) (*Config, error) {
	c := new(Config)
	if _, err := toml.Decode(defaultConfig, c); err != nil {
		return nil, fmt.Errorf("decode default config: %w", err)
	}
	if path != "" {
		md, err := toml.DecodeFile(path, c)
		if err != nil {
			return nil, fmt.Errorf("decode config %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("config %s: unknown keys %v", path, undecoded)
		}
	}
	if err := c.adjust(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) adjust() error {
	c.Storage.Backend = strings.ToLower(c.Storage.Backend)
	switch c.Storage.Backend {
	case "local":
		if c.Storage.Path == "" {
			return fmt.Errorf("storage: local backend needs a path")
		}
	case "s3", "minio":
		if c.Storage.Bucket == "" {
			return fmt.Errorf("storage: %s backend needs a bucket", c.Storage.Backend)
		}
		if c.Storage.Backend == "minio" && c.Storage.Endpoint == "" {
			return fmt.Errorf("storage: minio backend needs an endpoint")
		}
	default:
		return fmt.Errorf("storage: unknown backend %q", c.Storage.Backend)
	}
	c.Storage.BlockCacheMB = max(0, c.Storage.BlockCacheMB)
	if c.Storage.BlockSizeKB <= 0 {
		c.Storage.BlockSizeKB = 64
	}

	c.Index.Excerpts = strings.ToLower(c.Index.Excerpts)
	switch c.Index.Excerpts {
	case "docs":
	case "bolt", "badger":
		if c.Index.ExcerptPath == "" {
			return fmt.Errorf("index: %s excerpts need an excerpt-path", c.Index.Excerpts)
		}
	default:
		return fmt.Errorf("index: unknown excerpt store %q", c.Index.Excerpts)
	}
	if c.Index.Ontology == "" {
		return fmt.Errorf("index: ontology is required")
	}

	if c.Build.BlockWords <= 0 {
		c.Build.BlockWords = 1024
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("log: bad level %q: %w", s, err)
	}
	return l, nil
}
