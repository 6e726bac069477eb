package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"rankview/internal/cli/command"
	"rankview/internal/cli/config"
	httpclient "rankview/internal/cli/http"
	"rankview/internal/cli/repl"
	"rankview/internal/cli/state"
	"rankview/internal/ranklist/repository"
	"rankview/internal/ranklist/service"
)

const defaultConfigPath = "configs/cli.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "Path to config file")
	baseURL := flag.String("base", "", "Override base URL")
	timeout := flag.Duration("timeout", 0, "Override HTTP timeout (e.g. 10s)")
	statePath := flag.String("state", "", "Override session state path")
	snapshot := flag.String("open", "", "Snapshot file to open on start")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		return
	}
	if *baseURL != "" {
		cfg.BaseURL = *baseURL
	}
	if *timeout > 0 {
		cfg.Timeout = *timeout
	}
	if *statePath != "" {
		cfg.SessionStatePath = *statePath
	}

	sessionState, err := state.Load(cfg.SessionStatePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load session state failed: %v\n", err)
		return
	}

	env := &command.Env{
		Client:    httpclient.New(cfg.BaseURL, cfg.Timeout),
		State:     &sessionState,
		StatePath: cfg.SessionStatePath,
		Out:       os.Stdout,
	}

	startSnapshot := *snapshot
	if startSnapshot == "" {
		startSnapshot = sessionState.LastSnapshot
	}
	if startSnapshot != "" {
		reopenSnapshot(env, startSnapshot)
	}

	session := repl.New(env, command.Registry())
	session.Run(context.Background())
}

// reopenSnapshot restores the previous session's snapshot. Failures only
// print a notice; the REPL still starts.
func reopenSnapshot(env *command.Env, path string) {
	ranklist, err := repository.LoadSnapshotFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "reopen %s failed: %v\n", path, err)
		return
	}
	if err := service.CheckSupported(ranklist); err != nil {
		fmt.Fprintf(os.Stderr, "reopen %s failed: %v\n", path, err)
		return
	}
	env.SetBase(path, ranklist)
	fmt.Printf("reopened %s (%d rows)\n", path, len(ranklist.Rows))
}
