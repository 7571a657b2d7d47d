package main

import (
	"context"
	"flag"
	"io"
	"sort"

	"github.com/hupe1980/semsearch/codec"
	"github.com/hupe1980/semsearch/index"
)

type relationInfo struct {
	Name    string `json:"name"`
	LhsType string `json:"lhsType,omitempty"`
	RhsType string `json:"rhsType,omitempty"`
	Rows    uint64 `json:"rows"`
	Blocks  int    `json:"blocks"`
}

type inspectReport struct {
	Stats     index.Stats    `json:"stats"`
	Relations []relationInfo `json:"relations"`
}

func runInspect(ctx context.Context, cfg *Config, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)
	fs.SetOutput(stdout)
	if err := fs.Parse(args); err != nil {
		return err
	}

	store, err := openStore(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	s, err := open(ctx, cfg, store)
	if err != nil {
		return err
	}
	defer s.Close()
	return inspect(s.Index(), stdout)
}

func inspect(ready *index.Ready, stdout io.Writer) error {
	report := inspectReport{Stats: ready.Stats(), Relations: []relationInfo{}}
	for _, id := range ready.RelationIds() {
		meta, err := ready.RelationMetaData(id)
		if err != nil {
			return err
		}
		info := relationInfo{Rows: meta.Count(), Blocks: len(meta.Blocks)}
		info.Name, _ = ready.OntologyWord(id)
		info.LhsType, _ = ready.OntologyWord(meta.LhsType)
		info.RhsType, _ = ready.OntologyWord(meta.RhsType)
		report.Relations = append(report.Relations, info)
	}
	sort.Slice(report.Relations, func(i, j int) bool { return report.Relations[i].Name < report.Relations[j].Name })

	data, err := codec.Pretty(report)
	if err != nil {
		return err
	}
	_, err = stdout.Write(append(data, '\n'))
	return err
}
