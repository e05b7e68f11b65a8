package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/existflow/scic/internal/logger"
	"github.com/existflow/scic/internal/session"
)

// Run shows the dashboard until the operator quits. It returns
// session.ErrSessionExpired when the dashboard closed because the session
// ended.
func Run(ctx context.Context, backend Backend, sess Session) error {
	logger.Info("Launching dashboard")

	p := tea.NewProgram(NewModel(ctx, backend, sess), tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		logger.Error("Dashboard error", logger.F("error", err))
		return fmt.Errorf("failed to run dashboard: %w", err)
	}

	if m, ok := final.(Model); ok && m.SessionExpired() {
		return session.ErrSessionExpired
	}

	logger.Info("Dashboard exited normally")
	return nil
}
