package config

import (
	"fmt"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/pflag"
)

func usage() {
	fmt.Println(heredoc.Doc(`
		dirscope analyzes disk usage of a directory tree.

		Usage:

			dirscope [flags] [path]

		Positional Arguments:
		  path                   Directory to scan. Defaults to the configured
		                         path, or the current directory.

		Without --plain a terminal UI opens for interactive exploration.
		With --plain (or when stdout is not a terminal) the scan result is
		printed once and the program exits.

		Flags:
	`))
	pflag.PrintDefaults()
}

// ParseFlags overlays command-line flags on base and returns the
// result. Flags left at their defaults do not override stored values.
func ParseFlags(base Config) Config {
	path := pflag.StringP("path", "p", base.Path, "Directory to scan")
	depth := pflag.IntP("depth", "d", base.Depth, "Tree depth shown in plain output")
	workers := pflag.IntP("workers", "w", base.Workers, "Concurrent scan workers (0 = 2x CPU count)")
	topFiles := pflag.IntP("top", "t", base.TopFiles, "Number of files in the largest-files report")
	plain := pflag.Bool("plain", base.Plain, "Print the result instead of opening the UI")
	report := pflag.BoolP("report", "r", false, "Print a largest-files report and exit")
	logLevel := pflag.String("log-level", base.LogLevel, "Log level: debug, info, warn, error")
	logFormat := pflag.String("log-format", base.LogFormat, "Log format: text or json")
	version := pflag.BoolP("version", "v", false, "Show version and exit")

	pflag.CommandLine.SortFlags = false
	pflag.Usage = usage
	pflag.Parse()

	base.Path = *path
	base.Depth = *depth
	base.Workers = *workers
	base.TopFiles = *topFiles
	base.Plain = *plain
	base.Report = *report
	base.LogLevel = *logLevel
	base.LogFormat = *logFormat
	base.ShowVersion = *version

	if pflag.NArg() > 0 {
		base.Path = pflag.Args()[0]
	}
	return base
}
