package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"basegraph.app/scout/common/logger"
	"basegraph.app/scout/core/config"
	"basegraph.app/scout/internal/admission"
	"basegraph.app/scout/internal/cache"
	"basegraph.app/scout/internal/github"
	"basegraph.app/scout/internal/retrieval"
)

const usage = `usage: scout [-json] summary|tree|file <github-url>

  summary  repository metadata
  tree     files and directories, three levels deep (or under /tree/<branch>/<path>)
  file     contents of the file at /blob/<branch>/<path>
`

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	asJSON := false
	if len(args) > 0 && args[0] == "-json" {
		asJSON = true
		args = args[1:]
	}
	if len(args) != 2 {
		fmt.Fprint(os.Stderr, usage)
		return 2
	}

	op, err := retrieval.ParseOperation(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n\n%s", err, usage)
		return 2
	}

	cfg, err := config.Load(config.ServiceTypeCLI)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}
	logger.SetupTo(cfg, os.Stderr)

	client, err := github.NewClient(github.Config{
		Endpoint: cfg.GitHub.Endpoint,
		Token:    cfg.GitHub.Token,
		Timeout:  cfg.GitHub.Timeout,
		MaxDepth: cfg.Retrieval.MaxDepth,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create GitHub client: %v\n", err)
		return 1
	}

	svc := retrieval.NewService(
		client,
		admission.New(admission.Config{Window: cfg.Retrieval.AdmissionWindow, Limit: cfg.Retrieval.AdmissionLimit}),
		cache.NewMemory(cache.Config{Capacity: cfg.Retrieval.CacheCapacity, TTL: cfg.Retrieval.CacheTTL}),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := svc.Retrieve(ctx, retrieval.Request{Operation: op, Locator: args[1]})
	if err != nil {
		var rerr *retrieval.Error
		if errors.As(err, &rerr) {
			fmt.Fprintln(os.Stderr, rerr.Error())
		} else {
			fmt.Fprintf(os.Stderr, "Retrieval failed: %v\n", err)
		}
		return 1
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode result: %v\n", err)
			return 1
		}
		return 0
	}

	fmt.Println(res.Content)
	return 0
}
