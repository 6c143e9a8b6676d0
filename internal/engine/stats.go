package engine

import (
	"sort"
)

// largestFileCount is how many top-sized files ProjectStats reports
const largestFileCount = 5

// ProjectStatsFor derives aggregate counts from a cached context plus the
// stats of each cache layer. It requires a prior Analyze.
func (e *Engine) ProjectStatsFor(root string) (*ProjectStats, error) {
	pc, err := e.requireContext("stats", root)
	if err != nil {
		return nil, err
	}

	stats := &ProjectStats{
		Root:       pc.Root,
		TotalFiles: len(pc.Files),
		Languages:  make(map[string]int),
		Frameworks: pc.Aggregate.Frameworks,
		Caches: CacheLayerStats{
			Files:    e.caches.Files.Stats(),
			Infos:    e.caches.Infos.Stats(),
			Contexts: e.caches.Contexts.Stats(),
		},
	}

	bySize := make([]*FileInfo, 0, len(pc.Files))
	for _, fi := range pc.Files {
		stats.TotalLines += fi.LineCount
		stats.TotalBytes += fi.SizeBytes
		stats.Languages[fi.Language]++
		bySize = append(bySize, fi)
	}

	sort.Slice(bySize, func(i, j int) bool {
		if bySize[i].SizeBytes != bySize[j].SizeBytes {
			return bySize[i].SizeBytes > bySize[j].SizeBytes
		}
		return bySize[i].RelativePath < bySize[j].RelativePath
	})
	top := largestFileCount
	if top > len(bySize) {
		top = len(bySize)
	}
	for _, fi := range bySize[:top] {
		stats.LargestFiles = append(stats.LargestFiles, FileSizeEntry{
			RelativePath: fi.RelativePath,
			SizeBytes:    fi.SizeBytes,
		})
	}

	stats.OrphanedFiles = orphanedFiles(pc)
	return stats, nil
}

// orphanedFiles lists files with no recorded dependencies and no
// dependents.
func orphanedFiles(pc *ProjectContext) []string {
	hasDependents := make(map[string]bool)
	for rel := range pc.Files {
		if len(dependentsOf(pc, rel)) > 0 {
			hasDependents[rel] = true
		}
	}

	var orphans []string
	for rel, fi := range pc.Files {
		if len(fi.Dependencies) == 0 && !hasDependents[rel] {
			orphans = append(orphans, rel)
		}
	}
	sort.Strings(orphans)
	return orphans
}
