package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/existflow/scic/internal/session"
	"github.com/existflow/scic/internal/tui"
)

var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	Aliases: []string{"ui"},
	Short:   "Open the admin dashboard",
	RunE:    runDashboard,
}

func runDashboard(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		if !a.guard.IsValid(ctx) {
			return session.ErrUnauthenticated
		}
		return tui.Run(ctx, a.client, a.guard)
	})
}
