package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v2"

	"github.com/codescope/codescope/internal/analyzer"
	"github.com/codescope/codescope/internal/config"
	"github.com/codescope/codescope/internal/engine"
	"github.com/codescope/codescope/internal/mcp"
	"github.com/codescope/codescope/internal/store"
	"github.com/codescope/codescope/internal/version"
	"github.com/codescope/codescope/internal/watcher"
)

// loadConfigWithOverrides loads configuration and applies CLI flag overrides
func loadConfigWithOverrides(c *cli.Context) (*config.Config, error) {
	root := c.String("root")
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to determine working directory: %w", err)
		}
		root = cwd
	}

	cfg, err := config.Load(root)
	if err != nil {
		return nil, err
	}

	if includeFlags := c.StringSlice("include"); len(includeFlags) > 0 {
		cfg.Include = includeFlags
	}
	if excludeFlags := c.StringSlice("exclude"); len(excludeFlags) > 0 {
		cfg.Exclude = append(cfg.Exclude, excludeFlags...)
	}
	return cfg, nil
}

// newLogger builds the process logger. Output goes to stderr so the MCP
// stdio transport stays clean.
func newLogger(c *cli.Context) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "codescope",
	})
	if levelFlag := c.String("log-level"); levelFlag != "" {
		if level, err := log.ParseLevel(levelFlag); err == nil {
			logger.SetLevel(level)
		} else {
			logger.Warn("unknown log level, using info", "value", levelFlag)
		}
	}
	return logger
}

type runtimeDeps struct {
	cfg    *config.Config
	logger *log.Logger
	engine *engine.Engine
	caches *engine.Caches
}

func buildEngine(c *cli.Context) (*runtimeDeps, error) {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return nil, err
	}
	logger := newLogger(c)

	caches := engine.NewCaches(context.Background(), cfg, logger)
	st := store.New(cfg, caches.Files, logger)
	eng := engine.New(cfg, st, analyzer.New(), caches, logger)

	return &runtimeDeps{cfg: cfg, logger: logger, engine: eng, caches: caches}, nil
}

func main() {
	app := &cli.App{
		Name:                   "codescope",
		Usage:                  "Project analysis server for AI assistants",
		Version:                version.FullInfo(),
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "Project root directory (defaults to the working directory)",
			},
			&cli.StringSliceFlag{
				Name:  "include",
				Usage: "Include files matching glob patterns (e.g., --include '**/*.go')",
			},
			&cli.StringSliceFlag{
				Name:  "exclude",
				Usage: "Exclude files matching glob patterns (e.g., --exclude '**/testdata/**')",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level: debug, info, warn, error",
				Value: "info",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Start the MCP (Model Context Protocol) server with stdio transport",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "watch",
						Aliases: []string{"w"},
						Usage:   "Watch the project root and invalidate cached analysis on change",
					},
				},
				Action: serveCommand,
			},
			{
				Name:      "analyze",
				Aliases:   []string{"a"},
				Usage:     "Analyze a project and print a summary",
				ArgsUsage: "[root]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "json",
						Aliases: []string{"j"},
						Usage:   "Output the full project context as JSON",
					},
				},
				Action: analyzeCommand,
			},
			{
				Name:      "search",
				Aliases:   []string{"s"},
				Usage:     "Analyze the project and search its files for a regex pattern",
				ArgsUsage: "<pattern>",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "case-sensitive",
						Aliases: []string{"c"},
						Usage:   "Match case exactly",
					},
					&cli.BoolFlag{
						Name:  "structure",
						Usage: "Also match extracted function, class, and export names",
					},
					&cli.IntFlag{
						Name:    "max-results",
						Aliases: []string{"m"},
						Usage:   "Maximum number of files with matches",
					},
					&cli.StringSliceFlag{
						Name:    "glob",
						Aliases: []string{"g"},
						Usage:   "Restrict the search to files matching these globs",
					},
					&cli.BoolFlag{
						Name:    "json",
						Aliases: []string{"j"},
						Usage:   "Output as JSON",
					},
				},
				Action: searchCommand,
			},
			{
				Name:      "stats",
				Aliases:   []string{"st"},
				Usage:     "Analyze the project and print aggregate statistics",
				ArgsUsage: "[root]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "json",
						Aliases: []string{"j"},
						Usage:   "Output as JSON",
					},
				},
				Action: statsCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func serveCommand(c *cli.Context) error {
	deps, err := buildEngine(c)
	if err != nil {
		return err
	}
	defer deps.caches.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		deps.logger.Info("shutting down", "signal", sig)
		cancel()
	}()

	if c.Bool("watch") {
		w, err := watcher.New(deps.cfg, deps.engine, deps.logger)
		if err != nil {
			return err
		}
		defer w.Close()
		if err := w.Watch(deps.cfg.Project.Root); err != nil {
			deps.logger.Warn("file watching unavailable", "error", err)
		}
	}

	server := mcp.NewServer(deps.engine, deps.cfg, deps.logger)
	return server.Start(ctx)
}

func analyzeCommand(c *cli.Context) error {
	deps, err := buildEngine(c)
	if err != nil {
		return err
	}
	defer deps.caches.Close()

	root := c.Args().First()
	if root == "" {
		root = deps.cfg.Project.Root
	}

	pc, err := deps.engine.Analyze(context.Background(), root, engine.AnalyzeOptions{})
	if err != nil {
		return err
	}

	if c.Bool("json") {
		return printJSON(pc)
	}

	fmt.Printf("Project: %s\n", pc.Metadata.Name)
	fmt.Printf("Root: %s\n", pc.Root)
	fmt.Printf("Files analyzed: %d\n", pc.Aggregate.TotalFiles)
	if len(pc.Aggregate.Languages) > 0 {
		fmt.Printf("Languages: %v\n", pc.Aggregate.Languages)
	}
	if len(pc.Aggregate.Frameworks) > 0 {
		fmt.Printf("Frameworks: %v\n", pc.Aggregate.Frameworks)
	}
	return nil
}

func searchCommand(c *cli.Context) error {
	pattern := c.Args().First()
	if pattern == "" {
		return fmt.Errorf("usage: codescope search <pattern>")
	}

	deps, err := buildEngine(c)
	if err != nil {
		return err
	}
	defer deps.caches.Close()

	root := deps.cfg.Project.Root
	if _, err := deps.engine.Analyze(context.Background(), root, engine.AnalyzeOptions{}); err != nil {
		return err
	}

	result, err := deps.engine.Search(root, pattern, engine.SearchOptions{
		CaseSensitive:    c.Bool("case-sensitive"),
		IncludeStructure: c.Bool("structure"),
		FileGlobs:        c.StringSlice("glob"),
		MaxResults:       c.Int("max-results"),
	})
	if err != nil {
		return err
	}

	if c.Bool("json") {
		return printJSON(result)
	}

	for _, file := range result.Files {
		for _, m := range file.Matches {
			fmt.Printf("%s:%d: %s\n", file.RelativePath, m.LineNumber, m.Line)
		}
		for _, sm := range file.StructureMatches {
			fmt.Printf("%s: %s %s\n", file.RelativePath, sm.Kind, sm.Name)
		}
	}
	fmt.Printf("%d matches in %d files", result.TotalMatches, len(result.Files))
	if result.Truncated {
		fmt.Print(" (truncated)")
	}
	fmt.Println()
	if len(result.Suggestions) > 0 {
		fmt.Printf("Did you mean: %v\n", result.Suggestions)
	}
	return nil
}

func statsCommand(c *cli.Context) error {
	deps, err := buildEngine(c)
	if err != nil {
		return err
	}
	defer deps.caches.Close()

	root := c.Args().First()
	if root == "" {
		root = deps.cfg.Project.Root
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return err
	}

	if _, err := deps.engine.Analyze(context.Background(), absRoot, engine.AnalyzeOptions{}); err != nil {
		return err
	}
	stats, err := deps.engine.ProjectStatsFor(absRoot)
	if err != nil {
		return err
	}

	if c.Bool("json") {
		return printJSON(stats)
	}

	fmt.Printf("Root: %s\n", stats.Root)
	fmt.Printf("Files: %d  Lines: %d  Bytes: %d\n", stats.TotalFiles, stats.TotalLines, stats.TotalBytes)
	for lang, count := range stats.Languages {
		fmt.Printf("  %s: %d files\n", lang, count)
	}
	if len(stats.LargestFiles) > 0 {
		fmt.Println("Largest files:")
		for _, f := range stats.LargestFiles {
			fmt.Printf("  %s (%d bytes)\n", f.RelativePath, f.SizeBytes)
		}
	}
	if len(stats.OrphanedFiles) > 0 {
		fmt.Printf("Orphaned files: %v\n", stats.OrphanedFiles)
	}
	return nil
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
