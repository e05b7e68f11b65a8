package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/existflow/scic/internal/listview"
	"github.com/existflow/scic/internal/model"
)

var connectCmd = &cobra.Command{
	Use:     "connect",
	Aliases: []string{"find-team"},
	Short:   "Moderate team-finder registrations",
	Long: `Review who signed up on the team finder and decide who is shown publicly.

Examples:
  scic connect list --status pending
  scic connect list --skill Python --skill IoT -q "bách khoa"
  scic connect accept 66a1b2`,
}

var connectListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List registrations, pending first",
	RunE:    runConnectList,
}

var connectShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show one registration",
	Args:  cobra.ExactArgs(1),
	RunE:  runConnectShow,
}

var (
	connectPage   int
	connectStatus string
	connectSkills []string
	connectQuery  string
)

func init() {
	connectListCmd.Flags().IntVarP(&connectPage, "page", "p", 1, "Page number")
	connectListCmd.Flags().StringVar(&connectStatus, "status", "", "Only show pending, accepted or rejected")
	connectListCmd.Flags().StringArrayVar(&connectSkills, "skill", nil, "Only show members with any of these skills (repeatable)")
	connectListCmd.Flags().StringVarP(&connectQuery, "query", "q", "", "Search name, school, major and interests")

	connectCmd.AddCommand(connectListCmd)
	connectCmd.AddCommand(connectShowCmd)
	for _, st := range model.Statuses {
		connectCmd.AddCommand(newStatusCmd(st))
	}
}

// newStatusCmd builds the accept/reject/pending subcommands
func newStatusCmd(status model.Status) *cobra.Command {
	use := map[model.Status]string{
		model.StatusAccepted: "accept",
		model.StatusRejected: "reject",
		model.StatusPending:  "pending",
	}[status]

	return &cobra.Command{
		Use:   use + " [id...]",
		Short: fmt.Sprintf("Mark registrations as %s", strings.ToLower(status.Label())),
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConnectSetStatus(cmd, args, status)
		},
	}
}

func runConnectList(cmd *cobra.Command, args []string) error {
	var status model.Status
	if connectStatus != "" {
		st, err := model.ParseStatus(connectStatus)
		if err != nil {
			return err
		}
		status = st
	}

	return withApp(cmd, func(ctx context.Context, a *app) error {
		members, err := a.client.ListMembers(ctx)
		if err != nil {
			return err
		}

		counts := listview.CountByStatus(members)
		members = listview.FilterMembers(members, connectSkills, connectQuery)
		if status != "" {
			filtered := members[:0]
			for _, m := range members {
				if m.Status == status {
					filtered = append(filtered, m)
				}
			}
			members = filtered
		}
		listview.SortMembersByStatus(members)

		page := listview.Paginate(members, connectPage, listview.MembersPerPage)
		if jsonOutput {
			return printJSON(cmd, page)
		}

		out := cmd.OutOrStdout()
		printHeader(cmd, "🤝 Team finder (%d pending, %d accepted, %d rejected)",
			counts[model.StatusPending], counts[model.StatusAccepted], counts[model.StatusRejected])
		if page.Total == 0 {
			fmt.Fprintln(out, "No matching registrations.")
			return nil
		}
		for _, m := range page.Items {
			fmt.Fprintf(out, "%s %s - %s, %s\n", statusIcon(m.Status), m.FullName, m.School, m.Major)
			if len(m.Skills) > 0 {
				fmt.Fprintf(out, "   Skills: %s\n", strings.Join(m.Skills, ", "))
			}
			fmt.Fprintf(out, "   ID: %s\n", m.ID)
		}
		printPageFooter(cmd, page.Number, page.TotalPages)
		return nil
	})
}

func runConnectShow(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		m, err := a.client.GetMember(ctx, args[0])
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd, m)
		}
		printMember(cmd, m)
		return nil
	})
}

func printMember(cmd *cobra.Command, m *model.Member) {
	out := cmd.OutOrStdout()
	printHeader(cmd, "%s %s", statusIcon(m.Status), m.FullName)
	fmt.Fprintf(out, "Status:  %s\n", m.Status.Label())
	fmt.Fprintf(out, "Email:   %s\n", m.Email)
	fmt.Fprintf(out, "School:  %s\n", m.School)
	fmt.Fprintf(out, "Major:   %s\n", m.Major)
	if len(m.Skills) > 0 {
		fmt.Fprintf(out, "Skills:  %s\n", strings.Join(m.Skills, ", "))
	}
	if m.Interests != "" {
		fmt.Fprintf(out, "Interests:\n  %s\n", m.Interests)
	}
	for _, c := range m.Contact() {
		fmt.Fprintf(out, "  %s\n", c)
	}
	fmt.Fprintf(out, "Registered: %s\n\n", formatTime(m.CreatedAt))
}

// runConnectSetStatus applies status to each id in order. Each request is
// independent; the backend keeps whichever answer it processed last.
func runConnectSetStatus(cmd *cobra.Command, ids []string, status model.Status) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		var updated []*model.Member
		for _, id := range ids {
			m, err := a.client.UpdateMemberStatus(ctx, id, status)
			if err != nil {
				return err
			}
			updated = append(updated, m)
			if !jsonOutput {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s -> %s\n", statusIcon(m.Status), id, m.Status.Label())
			}
		}
		if jsonOutput {
			return printJSON(cmd, updated)
		}
		return nil
	})
}
