// Copyright 2025 The Weldsplit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the weldsplit CLI and msgpack IPC server.

A weld is a string made by gluing employee ids together with no separator,
for example "123456" from commits by 123 and 456. weldsplit splits a weld back
into ids from an employee roster and reports the split with the most commits,
along with how many splits exist in total.

# Usage

Split one weld:

	weldsplit employees.txt 123456

Split welds typed on stdin, with debug logs:

	weldsplit -c -d employees.txt

Serve split requests over msgpack on stdin/stdout:

	weldsplit -s employees.txt

The roster is a text file with one "id,surname,name" per line, or a binary
snapshot (.bin) written with -snapshot.

# Configuration

Defaults live in weldsplit.toml under the user config dir, created on first run:

	[search]
	mode = "dp"
	max_steps = 0
	timeout_ms = 0
	max_weld_len = 4096

	[server]
	allow_exhaustive = true
	max_steps = 1000000

	[cli]
	show_ids = true
	color = true

Flags given on the command line override the file.

# Search modes

"dp" finds the best split in time linear in the weld length (times the longest
id) and counts all splits without listing them. "exhaustive" lists every split
first and is exponential in the worst case, so it is best paired with -steps or
-timeout. Both modes return the same split.

# Command Line Flags

	-d  Enable debug mode with detailed logging
	-c  Read welds from stdin interactively
	-s  Run the msgpack IPC server
	-mode string
	    Search mode, dp or exhaustive
	-steps int
	    Maximum search steps, 0 for unlimited
	-timeout duration
	    Maximum time per weld, 0 for unlimited
	-config string
	    Path to a config file
	-ids
	    List the loaded employee ids
	-no-color
	    Disable colored output
	-snapshot string
	    Write the loaded roster as a binary snapshot to this path
	-version
	    Show current version
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bastiangx/weldsplit/internal/cli"
	"github.com/bastiangx/weldsplit/internal/logger"
	"github.com/bastiangx/weldsplit/internal/report"
	"github.com/bastiangx/weldsplit/pkg/config"
	"github.com/bastiangx/weldsplit/pkg/roster"
	"github.com/bastiangx/weldsplit/pkg/segment"
	"github.com/bastiangx/weldsplit/pkg/server"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

const (
	Version = "0.3.0"
	AppName = "weldsplit"
	gh      = "https://github.com/bastiangx/weldsplit"
)

// sigHandler cancels the returned context on an interrupt, then exits after a
// second interrupt or a short grace period, whichever comes first.
func sigHandler() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	c := make(chan os.Signal, 2)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		cancel()
		select {
		case <-c:
		case <-time.After(2 * time.Second):
		}
		os.Exit(130)
	}()
	return ctx
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [flags] <employees-file> <weld>\n", AppName)
	fmt.Fprintf(os.Stderr, "       %s [flags] -c|-s <employees-file>\n\n", AppName)
	flag.PrintDefaults()
}

// main parses flags, loads the roster and hands off to the chosen mode.
func main() {
	ctx := sigHandler()
	flag.Usage = usage

	showVersion := flag.Bool("version", false, "Show current version")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	cliMode := flag.Bool("c", false, "Read welds from stdin interactively")
	serverMode := flag.Bool("s", false, "Run the msgpack IPC server on stdin/stdout")
	mode := flag.String("mode", "", "Search mode: dp or exhaustive")
	maxSteps := flag.Int64("steps", 0, "Maximum search steps (0 for unlimited)")
	timeout := flag.Duration("timeout", 0, "Maximum time per weld, e.g. 2s (0 for unlimited)")
	configPath := flag.String("config", "", "Path to a custom config file")
	showIDs := flag.Bool("ids", false, "List loaded employee ids")
	noColor := flag.Bool("no-color", false, "Disable colored output")
	snapshot := flag.String("snapshot", "", "Write the loaded roster as a binary snapshot to this path")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	logger.Setup(*debugMode)

	wantArgs := 2
	if *cliMode || *serverMode {
		wantArgs = 1
	}
	if flag.NArg() != wantArgs || (*cliMode && *serverMode) {
		fmt.Fprintf(os.Stderr, "Example: %s employees.txt 123456\n", AppName)
		os.Exit(1)
	}
	rosterPath := flag.Arg(0)

	appConfig, usedPath, err := config.LoadConfigWithPriority(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Debugf("Using config file: (%s)", usedPath)

	// explicitly set flags win over the config file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "mode":
			appConfig.Search.Mode = *mode
		case "steps":
			appConfig.Search.MaxSteps = int(*maxSteps)
		case "timeout":
			appConfig.Search.TimeoutMs = int(*timeout / time.Millisecond)
		case "ids":
			appConfig.CLI.ShowIDs = *showIDs
		case "no-color":
			appConfig.CLI.Color = !*noColor
		}
	})
	opts, err := appConfig.SearchOptions()
	if err != nil {
		log.Fatalf("Invalid search options: %v", err)
	}

	dict, stats, err := roster.Load(rosterPath)
	if err != nil {
		log.Fatalf("Error loading employees: %v", err)
	}
	if stats.Rejected > 0 {
		log.Warnf("Skipped %d malformed roster lines", stats.Rejected)
	}

	if *snapshot != "" {
		if err := roster.SaveBinary(*snapshot, dict); err != nil {
			log.Fatalf("Failed to write snapshot: %v", err)
		}
		log.Infof("Wrote %d employees to %s", dict.Len(), *snapshot)
	}

	if *serverMode {
		log.Debug("spawning IPC")
		srv := server.NewServer(dict, appConfig)
		showStartupInfo(rosterPath, dict.Len())
		if err := srv.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Fatalf("Server error: %v", err)
		}
		return
	}

	renderer := report.NewRenderer(os.Stdout, appConfig.CLI.Color)
	var ids []string
	if appConfig.CLI.ShowIDs {
		ids = dict.IDs()
	}

	if *cliMode {
		log.SetReportTimestamp(false)
		log.Debug("Input info:", "mode", opts.Mode, "steps", opts.MaxSteps, "timeout", opts.Timeout)
		renderer.Roster(dict.Len(), ids)
		inputHandler := cli.NewInputHandler(dict, opts, appConfig.Search.MaxWeldLen, renderer)
		if err := inputHandler.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Fatalf("CLI error: %v", err)
		}
		return
	}

	weld := flag.Arg(1)
	if limit := appConfig.Search.MaxWeldLen; limit > 0 && len(weld) > limit {
		log.Fatalf("Weld too long: %d bytes (max %d)", len(weld), limit)
	}
	res, err := segment.Solve(ctx, segment.Problem{Dict: dict, Weld: weld}, opts)
	renderer.Render(report.Report{
		RosterPath: rosterPath,
		Weld:       weld,
		Employees:  dict.Len(),
		IDs:        ids,
		Result:     res,
		Err:        err,
		Describe:   roster.Describe(dict),
	})
	if errors.Is(err, segment.ErrBudgetExceeded) {
		os.Exit(1)
	}
}

func printVersion() {
	banner := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    false,
		ReportTimestamp: false,
		Prefix:          "",
	})

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"}).
		Background(lipgloss.AdaptiveColor{Light: "#f2e9e1", Dark: "#26233a"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	banner.SetStyles(styles)

	banner.Print("")
	banner.Print("[ weldsplit ] Splits welded commit ids back into their owners")
	banner.Print("", "version", Version)
	banner.Print("")
	banner.Print("use -h or --help to see available options")
	banner.Print("Github Repo", "gh", gh)
}

// showStartupInfo displays some basic info about the server on stderr.
func showStartupInfo(rosterPath string, employees int) {
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)

	log.Infof("%s %s", AppName, Version)
	log.Infof("Process ID: [ %d ]", os.Getpid())
	log.Infof("roster: ( %s ), %d employees", rosterPath, employees)
	log.Info("status: ready")

	log.SetLevel(currentLevel)
}
