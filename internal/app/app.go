// Package app wires configuration, logging, the scan engine and the
// chosen front end together.
package app

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"

	"dirscope/internal/config"
	"dirscope/internal/logging"
	"dirscope/internal/scanner"
	"dirscope/internal/services"
	"dirscope/internal/ui"
)

const version = "0.2.0"

func Run() int {
	base := config.DefaultConfig()
	loaded, loadErr := config.LoadConfig()
	if loadErr == nil {
		base = loaded
	}
	cfg := config.ParseFlags(base)
	logging.Init(cfg.LogFormat, cfg.LogLevel, os.Stderr)
	log := logging.L("app")
	if loadErr != nil {
		log.Warn("stored config ignored", "error", loadErr)
	}

	if cfg.ShowVersion {
		fmt.Println(version)
		return 0
	}

	engine := services.NewEngine(scanner.Options{Workers: cfg.Workers})
	defer engine.Close()
	ctx := context.Background()

	if cfg.Report {
		return runReport(ctx, cfg)
	}

	interactive := !cfg.Plain && isatty.IsTerminal(os.Stdout.Fd())
	if !interactive {
		return runPlain(ctx, engine, cfg)
	}

	model := ui.NewModel(engine, cfg.Path)
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		log.Error("ui failed", "error", err)
		return 1
	}
	if err := config.SaveConfig(cfg); err != nil {
		log.Warn("config save failed", "error", err)
	}
	return 0
}
