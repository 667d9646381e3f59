// Command padctl is a terminal remote for a running voicepad server.
package main

import (
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/satindergrewal/voicepad/internal/api"
	"github.com/satindergrewal/voicepad/internal/config"
	"github.com/satindergrewal/voicepad/internal/tui"
)

func main() {
	cfg := config.Load()

	m := tui.NewModel(api.NewClient(cfg.Addr), cfg.Addr, time.Second)
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		log.Fatalf("padctl: %v", err)
	}
}
