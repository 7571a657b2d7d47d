package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/semsearch/blobstore"
	"github.com/hupe1980/semsearch/query"
	"github.com/hupe1980/semsearch/testutil"
)

// writeWikiInputs writes the fixture as build input files.
func writeWikiInputs(t *testing.T) buildInputs {
	t.Helper()
	dir := t.TempDir()
	write := func(name string, lines []string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600))
		return path
	}

	facts := []string{"# relation\tlhs\trhs"}
	for _, f := range testutil.WikiFacts {
		facts = append(facts, f.Relation+"\t"+f.Lhs+"\t"+f.Rhs)
	}
	types := []string{
		testutil.BornIn + "\t" + testutil.Person + "\t" + testutil.City,
		testutil.MarriedTo + "\t" + testutil.Person + "\t" + testutil.Person,
	}
	var postings, docs []string
	for _, s := range testutil.WikiSentences {
		for _, p := range s.Postings() {
			postings = append(postings, fmt.Sprintf("%s\t%d\t%d\t%d", p.Word, p.ContextId, p.Score, p.Position))
		}
		d := s.Document()
		docs = append(docs, fmt.Sprintf("%d\t%s\t%s\t%s", d.ContextId, d.URL, d.Title, d.Text))
	}

	return buildInputs{
		facts:    write("facts.tsv", facts),
		types:    write("types.tsv", types),
		postings: write("postings.tsv", postings),
		docs:     write("docs.tsv", docs),
	}
}

func testConfig(t *testing.T, excerpts string) *Config {
	t.Helper()
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	cfg.Storage.Path = t.TempDir()
	cfg.Log.Level = "error"
	cfg.Index.Excerpts = excerpts
	if excerpts != "docs" {
		cfg.Index.ExcerptPath = filepath.Join(t.TempDir(), "excerpts")
	}
	return cfg
}

func TestBuildAndQuery(t *testing.T) {
	for _, excerpts := range []string{"docs", "bolt", "badger"} {
		t.Run(excerpts, func(t *testing.T) {
			ctx := context.Background()
			cfg := testConfig(t, excerpts)
			store := blobstore.NewLocalStore(cfg.Storage.Path)

			var out bytes.Buffer
			require.NoError(t, build(ctx, cfg, store, writeWikiInputs(t), &out))
			assert.Contains(t, out.String(), "ontology wiki.ontology:")
			assert.Contains(t, out.String(), "fulltext wiki.fulltext:")
			assert.Contains(t, out.String(), "docs: 6 contexts")

			s, err := open(ctx, cfg, store)
			require.NoError(t, err)
			defer s.Close()

			out.Reset()
			params := query.Parameters{NofInstances: 10, NofHitGroups: 1}
			triples := "$1 :r:is-a " + testutil.Person + "; $1 :r:occurs-with born"
			require.NoError(t, search(ctx, s, triples, "$1", params, false, &out))

			got := out.String()
			assert.Contains(t, got, testutil.Einstein)
			assert.Contains(t, got, testutil.Curie)
			assert.NotContains(t, got, testutil.Maric)
			assert.Contains(t, got, `"hits":[{`)
		})
	}
}

func TestQueryPretty(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t, "docs")
	store := blobstore.NewLocalStore(cfg.Storage.Path)
	require.NoError(t, build(ctx, cfg, store, writeWikiInputs(t), &bytes.Buffer{}))

	s, err := open(ctx, cfg, store)
	require.NoError(t, err)
	defer s.Close()

	var out bytes.Buffer
	params := query.Parameters{Prefix: "ci", NofClasses: 5}
	require.NoError(t, search(ctx, s, "", "$1", params, true, &out))
	assert.Contains(t, out.String(), "\n  \"classes\"")
	assert.Contains(t, out.String(), testutil.City)

	err = search(ctx, s, "$1 :r:is-a", "$1", params, false, &out)
	assert.Error(t, err)
}

func TestInspect(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t, "docs")
	store := blobstore.NewLocalStore(cfg.Storage.Path)
	require.NoError(t, build(ctx, cfg, store, writeWikiInputs(t), &bytes.Buffer{}))

	s, err := open(ctx, cfg, store)
	require.NoError(t, err)
	defer s.Close()

	var out bytes.Buffer
	require.NoError(t, inspect(s.Index(), &out))
	got := out.String()
	assert.Contains(t, got, `"name": ":r:born-in"`)
	assert.Contains(t, got, `"lhsType": ":e:person:Person"`)
	assert.Contains(t, got, `"name": ":r:is-a_(reversed)"`)
	assert.Contains(t, got, `"FulltextBlocks": 1`)
}

func TestBuildErrors(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t, "docs")
	store := blobstore.NewLocalStore(cfg.Storage.Path)

	in := writeWikiInputs(t)
	bad := filepath.Join(t.TempDir(), "bad.tsv")
	require.NoError(t, os.WriteFile(bad, []byte("only\ttwo\n"), 0o600))

	in.facts = bad
	err := build(ctx, cfg, store, in, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.tsv:1")

	err = runBuild(ctx, cfg, nil, &bytes.Buffer{})
	assert.ErrorContains(t, err, "-facts is required")
}

func TestRun(t *testing.T) {
	assert.Error(t, run("", nil))
	assert.ErrorContains(t, run("", []string{"serve"}), "unknown command")
}

func TestScanTSV(t *testing.T) {
	in := "# comment\n\na\tb\tc d\r\nx\ty\tz\tw\n"
	var rows [][]string
	err := scanTSV(strings.NewReader(in), "in", 3, func(f []string) error {
		rows = append(rows, f)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "b", "c d"}, {"x", "y", "z\tw"}}, rows)

	err = scanTSV(strings.NewReader("a\tb\n"), "in", 3, func([]string) error { return nil })
	assert.ErrorContains(t, err, "in:1: want 3 fields, got 2")
}
