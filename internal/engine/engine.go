package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/codescope/codescope/internal/analyzer"
	"github.com/codescope/codescope/internal/cache"
	"github.com/codescope/codescope/internal/config"
	cserr "github.com/codescope/codescope/internal/errors"
	"github.com/codescope/codescope/internal/store"
	"github.com/codescope/codescope/pkg/pathutil"
)

// Caches bundles the three cache instances the engine operates on:
// raw file contents, per-file derived info, and whole project contexts.
// Constructed once at process start and injected; no package-level state.
type Caches struct {
	Files    *cache.Cache[string]
	Infos    *cache.Cache[*FileInfo]
	Contexts *cache.Cache[*ProjectContext]
}

// NewCaches builds the three cache instances from the shared settings
func NewCaches(ctx context.Context, cfg *config.Config, logger *log.Logger) *Caches {
	cacheCfg := cache.Config{
		MaxEntries:      cfg.Cache.MaxEntries,
		CleanupInterval: cfg.Cache.CleanupInterval,
		AutoCleanup:     true,
	}
	return &Caches{
		Files:    cache.New[string](ctx, cacheCfg, logger),
		Infos:    cache.New[*FileInfo](ctx, cacheCfg, logger),
		Contexts: cache.New[*ProjectContext](ctx, cacheCfg, logger),
	}
}

// Close stops all background sweepers
func (c *Caches) Close() {
	c.Files.Close()
	c.Infos.Close()
	c.Contexts.Close()
}

// Engine orchestrates project analysis: it enumerates candidate files,
// analyzes them in bounded concurrent batches, assembles project contexts,
// and serves cached-or-fresh reads, search, edits, and relationship
// queries against them.
type Engine struct {
	cfg      *config.Config
	store    *store.Store
	analyzer analyzer.Analyzer
	caches   *Caches
	logger   *log.Logger
}

// New creates an engine. All collaborators are injected; the engine owns
// none of their lifecycles.
func New(cfg *config.Config, st *store.Store, an analyzer.Analyzer, caches *Caches, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{cfg: cfg, store: st, analyzer: an, caches: caches, logger: logger}
}

// Store returns the engine's file store
func (e *Engine) Store() *store.Store {
	return e.store
}

// resolveRoot validates that root names an existing directory and returns
// its absolute path, the key for all per-project cache entries.
func (e *Engine) resolveRoot(root string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", cserr.New(cserr.ErrorTypePathValidation, "analyze", err).WithPath(root)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return "", cserr.Newf(cserr.ErrorTypeNotFound, "analyze", "project root %q not found", absRoot).WithPath(absRoot)
	}
	if !info.IsDir() {
		return "", cserr.Newf(cserr.ErrorTypePathValidation, "analyze", "project root %q is not a directory", absRoot).WithPath(absRoot)
	}
	return absRoot, nil
}

// Analyze returns the project context for root, rebuilding it when absent
// from the cache or when opts.ForceRefresh is set.
func (e *Engine) Analyze(ctx context.Context, root string, opts AnalyzeOptions) (*ProjectContext, error) {
	absRoot, err := e.resolveRoot(root)
	if err != nil {
		return nil, err
	}

	if !opts.ForceRefresh {
		if pc, ok := e.caches.Contexts.Get(absRoot); ok {
			e.logger.Debug("analyze cache hit", "root", absRoot)
			return pc, nil
		}
	}

	include := opts.Include
	if len(include) == 0 {
		include = e.cfg.Include
	}
	exclude := append([]string{}, e.cfg.Exclude...)
	exclude = append(exclude, opts.Exclude...)
	maxDepth := opts.MaxDepth
	if maxDepth == 0 {
		maxDepth = e.cfg.Analysis.MaxDepth
	}

	paths, err := e.store.FindFiles(absRoot, store.FindOptions{
		Include:  include,
		Exclude:  exclude,
		MaxDepth: maxDepth,
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	metadata := e.probeMetadata(absRoot)
	infos := e.analyzeBatches(ctx, absRoot, paths)

	pc := &ProjectContext{
		Root:     absRoot,
		BuiltAt:  time.Now(),
		Files:    make(map[string]*FileInfo, len(infos)),
		Metadata: metadata,
	}
	for _, fi := range infos {
		pc.Files[fi.RelativePath] = fi
	}
	pc.Aggregate = aggregate(pc)

	e.caches.Contexts.Set(absRoot, pc, e.cfg.Cache.ContextTTL)
	e.logger.Info("project analyzed", "root", absRoot, "files", len(pc.Files))
	return pc, nil
}

// analyzeBatches runs the analysis pipeline: fixed-size batches of
// concurrent per-file tasks with a barrier between batches. A single
// file's failure is logged and excluded; it never fails the batch.
func (e *Engine) analyzeBatches(ctx context.Context, absRoot string, paths []string) []*FileInfo {
	batchSize := e.cfg.Analysis.BatchSize
	results := make([]*FileInfo, 0, len(paths))
	var mu sync.Mutex

	for start := 0; start < len(paths); start += batchSize {
		end := start + batchSize
		if end > len(paths) {
			end = len(paths)
		}

		g, gctx := errgroup.WithContext(ctx)
		for _, absPath := range paths[start:end] {
			g.Go(func() error {
				fi, err := e.analyzeFile(gctx, absRoot, absPath)
				if err != nil {
					e.logger.Warn("skipping file after analysis failure", "path", absPath, "error", err)
					return nil
				}
				mu.Lock()
				results = append(results, fi)
				mu.Unlock()
				return nil
			})
		}
		// Barrier: the next batch never starts before this one resolves.
		_ = g.Wait()

		if ctx.Err() != nil {
			break
		}
	}
	return results
}

// analyzeFile produces the FileInfo for one file, reusing the derived-info
// cache when the file on disk is unchanged.
func (e *Engine) analyzeFile(ctx context.Context, absRoot, absPath string) (*FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stat, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("stat: %w", err)
	}

	if cached, ok := e.caches.Infos.Get(absPath); ok {
		if cached.SizeBytes == stat.Size() && cached.LastModified.Equal(stat.ModTime()) {
			return cached, nil
		}
	}

	content, err := e.store.ReadCached(absPath)
	if err != nil {
		return nil, err
	}

	rel := pathutil.ToRelative(absPath, absRoot)

	language := e.analyzer.DetectLanguage(absPath)
	deps, structure, err := e.extract(content, language)
	if err != nil {
		return nil, err
	}

	fi := &FileInfo{
		RelativePath: rel,
		AbsolutePath: absPath,
		Language:     language,
		SizeBytes:    stat.Size(),
		LineCount:    strings.Count(content, "\n") + 1,
		ContentHash:  strconv.FormatUint(xxhash.Sum64String(content), 16),
		LastModified: stat.ModTime(),
		Dependencies: deps,
		Structure:    structure,
		Content:      truncate(content, e.cfg.Files.MaxContentLength),
	}

	e.caches.Infos.Set(absPath, fi)
	return fi, nil
}

// extract invokes the language analyzer, containing any panic it raises
// so one misbehaving file cannot take down a batch.
func (e *Engine) extract(content, language string) (deps []string, structure analyzer.Structure, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("language analyzer failed: %v", r)
		}
	}()
	deps = e.analyzer.ExtractDependencies(content, language)
	structure = e.analyzer.ExtractStructure(content, language)
	return deps, structure, nil
}

// aggregate builds the reverse indexes and language/framework summary
func aggregate(pc *ProjectContext) AggregateStructure {
	agg := AggregateStructure{
		TotalFiles:    len(pc.Files),
		Frameworks:    pc.Metadata.Frameworks,
		FunctionIndex: make(map[string][]string),
		ClassIndex:    make(map[string][]string),
	}

	languages := make(map[string]bool)
	for rel, fi := range pc.Files {
		if fi.Language != "unknown" {
			languages[fi.Language] = true
		}
		for _, fn := range fi.Structure.Functions {
			agg.FunctionIndex[fn] = append(agg.FunctionIndex[fn], rel)
		}
		for _, cl := range fi.Structure.Classes {
			agg.ClassIndex[cl] = append(agg.ClassIndex[cl], rel)
		}
	}
	for lang := range languages {
		agg.Languages = append(agg.Languages, lang)
	}
	sort.Strings(agg.Languages)
	for name := range agg.FunctionIndex {
		sort.Strings(agg.FunctionIndex[name])
	}
	for name := range agg.ClassIndex {
		sort.Strings(agg.ClassIndex[name])
	}
	return agg
}

// ProjectContext returns the cached context for root without triggering
// analysis.
func (e *Engine) ProjectContext(root string) (*ProjectContext, bool) {
	absRoot, err := e.resolveRoot(root)
	if err != nil {
		return nil, false
	}
	return e.caches.Contexts.Get(absRoot)
}

// requireContext returns the cached context for root or a not_analyzed
// error; operations that depend on prior analysis never trigger it
// implicitly.
func (e *Engine) requireContext(op, root string) (*ProjectContext, error) {
	absRoot, err := e.resolveRoot(root)
	if err != nil {
		return nil, err
	}
	pc, ok := e.caches.Contexts.Get(absRoot)
	if !ok {
		return nil, cserr.Newf(cserr.ErrorTypeNotAnalyzed, op, "project %q has not been analyzed", absRoot).WithPath(absRoot)
	}
	return pc, nil
}

// Invalidate removes the cached context for root, forcing the next
// Analyze to rebuild from disk.
func (e *Engine) Invalidate(root string) {
	if absRoot, err := filepath.Abs(root); err == nil {
		e.caches.Contexts.Delete(absRoot)
	}
}

// ClearAllCaches empties every cache instance. In-flight batches complete
// and repopulate harmlessly.
func (e *Engine) ClearAllCaches() {
	e.caches.Files.Clear()
	e.caches.Infos.Clear()
	e.caches.Contexts.Clear()
	e.logger.Info("all caches cleared")
}

func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max]
}
