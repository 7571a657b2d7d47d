package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/hupe1980/semsearch"
	"github.com/hupe1980/semsearch/blobstore"
	"github.com/hupe1980/semsearch/codec"
	"github.com/hupe1980/semsearch/query"
)

func runQuery(ctx context.Context, cfg *Config, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("query", flag.ContinueOnError)
	fs.SetOutput(stdout)
	var (
		root   = fs.String("root", "$1", "root variable")
		prefix = fs.String("prefix", "", "completion prefix")
		n      = fs.Int("n", 10, "items per box")
		hits   = fs.Int("hits", 5, "hit groups")
		pretty = fs.Bool("pretty", false, "indent the output")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	triples := strings.Join(fs.Args(), " ")

	store, err := openStore(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	s, err := open(ctx, cfg, store)
	if err != nil {
		return err
	}
	defer s.Close()

	params := query.Parameters{
		Prefix:       *prefix,
		NofWords:     *n,
		NofClasses:   *n,
		NofInstances: *n,
		NofRelations: *n,
		NofHitGroups: *hits,
	}
	return search(ctx, s, triples, *root, params, *pretty, stdout)
}

func open(ctx context.Context, cfg *Config, store blobstore.BlobStore) (*semsearch.Semsearch, error) {
	c, ok := codec.ByName(cfg.Query.Codec)
	if !ok {
		return nil, fmt.Errorf("unknown codec %q", cfg.Query.Codec)
	}
	optFns := []semsearch.Option{
		semsearch.WithLogger(newLogger(cfg.Log)),
		semsearch.WithCodec(c),
		semsearch.WithCacheEntries(cfg.Query.CacheEntries),
	}
	es, err := openExcerpts(cfg.Index)
	if err != nil {
		return nil, err
	}
	if es != nil {
		optFns = append(optFns, semsearch.WithExcerptStore(es))
	}

	files := semsearch.Files{Fulltext: cfg.Index.Fulltext, Ontology: cfg.Index.Ontology}
	if cfg.Index.Excerpts == "docs" {
		files.Docs = cfg.Index.Docs
	}
	// Open closes the excerpt store when it fails.
	return semsearch.Open(ctx, store, files, optFns...)
}

func search(ctx context.Context, s *semsearch.Semsearch, triples, root string, params query.Parameters, pretty bool, stdout io.Writer) error {
	q, err := query.New(triples, root, params)
	if err != nil {
		return err
	}
	res, err := s.Execute(ctx, q)
	if err != nil {
		return err
	}

	var data []byte
	if pretty {
		data, err = codec.Pretty(codec.NewDocument(q, res))
	} else {
		data, err = s.Encode(q, res)
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(stdout, "%s\n", data)
	return err
}
