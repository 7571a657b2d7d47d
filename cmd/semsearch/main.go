// Command semsearch builds, queries and inspects semantic search indexes.
//
//	semsearch -c semsearch.toml build -facts facts.tsv -postings postings.tsv -docs docs.tsv
//	semsearch -c semsearch.toml query -n 5 '$1 :r:is-a :e:person:Person; $1 :r:occurs-with physics'
//	semsearch -c semsearch.toml inspect
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

type command func(ctx context.Context, cfg *Config, args []string, stdout io.Writer) error

var commands = map[string]command{
	"build":   runBuild,
	"query":   runQuery,
	"inspect": runInspect,
}

func main() {
	configFile := flag.String("c", "", "config file path")
	flag.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), "usage: semsearch [-c config.toml] build|query|inspect [flags]")
		flag.PrintDefaults()
	}
	flag.Parse()

	if err := run(*configFile, flag.Args()); err != nil {
		fmt.Fprintln(os.Stderr, "semsearch:", err)
		os.Exit(1)
	}
}

func run(configFile string, args []string) error {
	if len(args) == 0 {
		flag.Usage()
		return fmt.Errorf("missing command")
	}
	cmd, ok := commands[args[0]]
	if !ok {
		return fmt.Errorf("unknown command %q", args[0])
	}

	cfg, err := LoadConfig(configFile)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return cmd(ctx, cfg, args[1:], os.Stdout)
}
