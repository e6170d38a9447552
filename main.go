package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"pdfchat/backend"
	"pdfchat/chat"
	"pdfchat/config"
	"pdfchat/store"
	"pdfchat/ui"
)

const (
	Version = "v0.01.00"
	License = "Apache-2.0"
)

func main() {
	if len(os.Args) > 1 && (os.Args[1] == "--version" || os.Args[1] == "-v") {
		fmt.Printf("pdfchat %s (%s)\n", Version, License)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		errorModal := ui.NewErrorModal("Configuration Error", fmt.Sprintf(
			"%v\n\nCheck ~/.config/pdfchat/settings.toml and the config.toml in your data directory.", err))
		p := tea.NewProgram(errorModal, tea.WithAltScreen())
		if _, runErr := p.Run(); runErr != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", runErr)
		}
		os.Exit(1)
	}

	// Initialize debug logging after config is loaded
	config.InitDebugLog(cfg.DataDir())
	if config.DebugLog != nil {
		config.DebugLog.Printf("pdfchat %s backend=%s", Version, cfg.BackendURL)
	}

	client := backend.NewClient(cfg.BackendURL, config.NewIdentityProvider(cfg))
	bridge := ui.NewBridge()

	st := store.New(client,
		store.WithDebounce(cfg.HistoryDebounce),
		store.WithOnChange(bridge.StoreChanged),
	)

	attacher := chat.NewAttacher(client, st, bridge)
	asker := chat.NewAsker(client, st, bridge)
	asker.AutoCreate = cfg.AutoCreate
	asker.Blocking = cfg.BlockingReplies
	asker.PreservePartial = cfg.PreservePartial

	p := tea.NewProgram(
		ui.NewAppView(cfg, client, st, attacher, asker, bridge),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	bridge.Attach(p)

	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running pdfchat: %v\n", err)
		os.Exit(1)
	}
}
