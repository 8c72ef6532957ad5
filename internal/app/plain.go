package app

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"

	"dirscope/internal/config"
	"dirscope/internal/domain"
	"dirscope/internal/logging"
	"dirscope/internal/report"
	"dirscope/internal/services"
)

// runPlain scans once and prints the tree to stdout, expanding
// directories through the cached query path down to cfg.Depth.
func runPlain(ctx context.Context, engine *services.Engine, cfg config.Config) int {
	log := logging.L("app")

	done := make(chan error, 1)
	go func() {
		done <- engine.ScanDirectory(ctx, cfg.Path)
	}()

	var result *services.ScanResult
	for event := range engine.Events() {
		if event.Kind == services.EventScanResult {
			result = event.Result
		}
		if event.Kind == services.EventScanComplete {
			break
		}
	}
	if err := <-done; err != nil {
		log.Error("scan failed", "path", cfg.Path, "error", err)
		return 1
	}
	if result == nil {
		log.Error("scan produced no result", "path", cfg.Path)
		return 1
	}

	if info, err := engine.SpaceInfo(result.RootPath); err == nil {
		fmt.Printf("volume: %s used of %s, %s free\n\n",
			humanize.Bytes(info.Used), humanize.Bytes(info.Total), humanize.Bytes(info.Available))
	}

	printNode(engine, result.Tree, 0, cfg.Depth)
	fmt.Printf("\nscanned in %dms\n", result.ElapsedMS)
	return 0
}

func printNode(engine *services.Engine, node domain.TreeNode, depth, maxDepth int) {
	indent := strings.Repeat("  ", depth)
	name := node.Name
	if node.IsDir && !node.VirtualDir {
		name += "/"
	}
	if depth == 0 {
		name = node.Path
	}
	fmt.Printf("%s%9s  %5.1f%%  %s\n", indent, humanize.Bytes(uint64(node.SizeBytes)), node.PercentOfParent, name)

	for _, child := range node.Children {
		if child.IsDir && !child.VirtualDir && depth+1 < maxDepth {
			expanded, err := engine.DirectoryChildren(child.Path)
			if err == nil {
				expanded.PercentOfParent = child.PercentOfParent
				printNode(engine, expanded, depth+1, maxDepth)
				continue
			}
		}
		printNode(engine, child, depth+1, maxDepth)
	}
}

func runReport(ctx context.Context, cfg config.Config) int {
	log := logging.L("app")
	files, err := report.TopFiles(ctx, cfg.Path, cfg.TopFiles)
	if err != nil {
		log.Error("report failed", "path", cfg.Path, "error", err)
		return 1
	}
	for _, file := range files {
		fmt.Fprintf(os.Stdout, "%9s  %s\n", humanize.Bytes(uint64(file.Size)), file.Path)
	}
	return 0
}
