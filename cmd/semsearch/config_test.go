package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "semsearch.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Storage.Backend)
	assert.Equal(t, "./data", cfg.Storage.Path)
	assert.Equal(t, int64(64), cfg.Storage.BlockCacheMB)
	assert.Equal(t, "wiki.ontology", cfg.Index.Ontology)
	assert.Equal(t, "docs", cfg.Index.Excerpts)
	assert.Equal(t, 4096, cfg.Query.CacheEntries)
	assert.Equal(t, "go-json", cfg.Query.Codec)
	assert.True(t, cfg.Build.Compress)
	assert.Equal(t, 1024, cfg.Build.BlockWords)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfigOverrides(t *testing.T) {
	path := writeConfig(t, `
[storage]
backend = "S3"
bucket = "indexes"
prefix = "wiki/"

[index]
excerpts = "bolt"
excerpt-path = "/var/lib/semsearch/excerpts.db"

[build]
block-words = 0

[log]
level = "debug"
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "s3", cfg.Storage.Backend)
	assert.Equal(t, "indexes", cfg.Storage.Bucket)
	assert.Equal(t, "wiki/", cfg.Storage.Prefix)
	assert.Equal(t, "bolt", cfg.Index.Excerpts)
	assert.Equal(t, 1024, cfg.Build.BlockWords)
	// untouched sections keep their defaults
	assert.Equal(t, "wiki.fulltext", cfg.Index.Fulltext)
	assert.Equal(t, 4096, cfg.Query.CacheEntries)

	level, err := parseLevel(cfg.Log.Level)
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown backend", "[storage]\nbackend = \"ftp\"\n"},
		{"s3 without bucket", "[storage]\nbackend = \"s3\"\n"},
		{"minio without endpoint", "[storage]\nbackend = \"minio\"\nbucket = \"b\"\n"},
		{"bolt without path", "[index]\nexcerpts = \"bolt\"\n"},
		{"unknown excerpts", "[index]\nexcerpts = \"redis\"\n"},
		{"no ontology", "[index]\nontology = \"\"\n"},
		{"bad level", "[log]\nlevel = \"loud\"\n"},
		{"unknown key", "[query]\ncache-size = 1\n"},
		{"bad syntax", "[query\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
