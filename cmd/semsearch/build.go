package main

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/hupe1980/semsearch/blobstore"
	"github.com/hupe1980/semsearch/excerpt"
	"github.com/hupe1980/semsearch/indexbuilder"
	"github.com/hupe1980/semsearch/model"
)

const buildUsage = `usage: semsearch build [flags]

Input files are tab separated:
  facts     relation  lhs  rhs
  types     relation  lhsType  rhsType
  postings  word  contextId  score  position
  docs      contextId  url  title  text
`

type buildInputs struct {
	facts, types, postings, docs string
}

func runBuild(ctx context.Context, cfg *Config, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("build", flag.ContinueOnError)
	fs.SetOutput(stdout)
	fs.Usage = func() {
		fmt.Fprint(fs.Output(), buildUsage)
		fs.PrintDefaults()
	}
	var in buildInputs
	fs.StringVar(&in.facts, "facts", "", "ontology facts (required)")
	fs.StringVar(&in.types, "types", "", "relation types")
	fs.StringVar(&in.postings, "postings", "", "fulltext postings")
	fs.StringVar(&in.docs, "docs", "", "excerpt documents")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if in.facts == "" {
		fs.Usage()
		return fmt.Errorf("build: -facts is required")
	}

	store, err := openStore(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	return build(ctx, cfg, store, in, stdout)
}

func build(ctx context.Context, cfg *Config, store blobstore.BlobStore, in buildInputs, stdout io.Writer) error {
	logger := newLogger(cfg.Log)
	opts := func(o *indexbuilder.Options) {
		o.Compress = cfg.Build.Compress
		o.BlockWords = cfg.Build.BlockWords
		o.Logger = logger.Logger
	}

	ob := indexbuilder.NewOntology(opts)
	if in.types != "" {
		err := readTSV(in.types, 3, func(f []string) error {
			ob.SetTypes(f[0], f[1], f[2])
			return nil
		})
		if err != nil {
			return err
		}
	}
	if err := readTSV(in.facts, 3, func(f []string) error {
		return ob.Add(f[0], f[1], f[2])
	}); err != nil {
		return err
	}
	ontology, ostats, err := ob.Build(ctx, store, cfg.Index.Ontology)
	if err != nil {
		return fmt.Errorf("build ontology: %w", err)
	}
	fmt.Fprintf(stdout, "ontology %s: %d words, %d relations, %d rows\n",
		cfg.Index.Ontology, ostats.Words, ostats.Relations, ostats.Rows)

	if in.postings != "" && cfg.Index.Fulltext != "" {
		fb := indexbuilder.NewFulltext(opts)
		if err := readTSV(in.postings, 4, func(f []string) error {
			ctxId, err := parseUint(f[1], 64)
			if err != nil {
				return err
			}
			score, err := parseUint(f[2], 8)
			if err != nil {
				return err
			}
			pos, err := parseUint(f[3], 32)
			if err != nil {
				return err
			}
			return fb.Add(indexbuilder.Posting{
				Word:      f[0],
				ContextId: model.Id(ctxId),
				Score:     model.Score(score),
				Position:  model.Position(pos),
			})
		}); err != nil {
			return err
		}
		_, fstats, err := fb.Build(ctx, store, cfg.Index.Fulltext, ontology)
		if err != nil {
			return fmt.Errorf("build fulltext: %w", err)
		}
		fmt.Fprintf(stdout, "fulltext %s: %d words, %d blocks, %d postings, %d unknown entities\n",
			cfg.Index.Fulltext, fstats.Words, fstats.Blocks, fstats.Postings, fstats.UnknownEntities)
	}

	if in.docs != "" {
		var docs []excerpt.Document
		if err := readTSV(in.docs, 4, func(f []string) error {
			id, err := parseUint(f[0], 64)
			if err != nil {
				return err
			}
			docs = append(docs, excerpt.Document{ContextId: model.Id(id), URL: f[1], Title: f[2], Text: f[3]})
			return nil
		}); err != nil {
			return err
		}
		if err := writeDocs(ctx, cfg.Index, store, docs); err != nil {
			return fmt.Errorf("write docs: %w", err)
		}
		fmt.Fprintf(stdout, "docs: %d contexts (%s)\n", len(docs), cfg.Index.Excerpts)
	}
	return nil
}

func writeDocs(ctx context.Context, c IndexConfig, store blobstore.BlobStore, docs []excerpt.Document) error {
	if c.Excerpts == "docs" {
		return excerpt.WriteDocsFile(ctx, store, c.Docs, docs)
	}
	es, err := openExcerpts(c)
	if err != nil {
		return err
	}
	if err := es.PutDocuments(ctx, docs); err != nil {
		_ = es.Close()
		return err
	}
	return es.Close()
}
