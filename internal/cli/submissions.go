package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/existflow/scic/internal/api"
	"github.com/existflow/scic/internal/listview"
	"github.com/existflow/scic/internal/logger"
	"github.com/existflow/scic/internal/model"
	"github.com/existflow/scic/internal/session"
)

var submissionsCmd = &cobra.Command{
	Use:     "submissions",
	Aliases: []string{"sub"},
	Short:   "Review competition submissions",
}

var submissionsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List submissions",
	Long: `List submitted projects, 5 per page.

Examples:
  scic submissions list
  scic submissions list --page 2`,
	RunE: runSubmissionsList,
}

var submissionsShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show one submission",
	Args:  cobra.ExactArgs(1),
	RunE:  runSubmissionsShow,
}

var submissionsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Download all submissions as a spreadsheet",
	RunE:  runSubmissionsExport,
}

var submissionsDeleteCmd = &cobra.Command{
	Use:     "delete [id]",
	Aliases: []string{"rm"},
	Short:   "Delete a submission",
	Args:    cobra.ExactArgs(1),
	RunE:    runSubmissionsDelete,
}

var (
	submissionsPage   int
	submissionsOutput string
	submissionsYes    bool
)

func init() {
	submissionsListCmd.Flags().IntVarP(&submissionsPage, "page", "p", 1, "Page number")
	submissionsExportCmd.Flags().StringVarP(&submissionsOutput, "output", "o", "", "Output file (default: name suggested by the server)")
	submissionsDeleteCmd.Flags().BoolVarP(&submissionsYes, "yes", "y", false, "Do not ask for confirmation")

	submissionsCmd.AddCommand(submissionsListCmd)
	submissionsCmd.AddCommand(submissionsShowCmd)
	submissionsCmd.AddCommand(submissionsExportCmd)
	submissionsCmd.AddCommand(submissionsDeleteCmd)
}

func runSubmissionsList(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		items, err := a.client.ListSubmissions(ctx)
		if err != nil {
			return err
		}

		page := listview.Paginate(items, submissionsPage, listview.SubmissionsPerPage)
		if jsonOutput {
			return printJSON(cmd, page)
		}

		if page.Total == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No submissions yet.")
			return nil
		}

		printHeader(cmd, "📋 Submissions (%d)", page.Total)
		for i, s := range page.Items {
			n := (page.Number-1)*listview.SubmissionsPerPage + i + 1
			printSubmissionRow(cmd, n, s)
		}
		printPageFooter(cmd, page.Number, page.TotalPages)
		return nil
	})
}

func printSubmissionRow(cmd *cobra.Command, n int, s model.Submission) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%2d. %s - %s\n", n, s.TeamName, s.ProjectName)
	fmt.Fprintf(out, "    Leader: %s <%s>  Team: %d  Submitted: %s\n",
		s.Leader.FullName, s.Leader.Email, s.TeamSize(), formatTime(s.CreatedAt))
	fmt.Fprintf(out, "    ID: %s\n", s.ID)
}

func runSubmissionsShow(cmd *cobra.Command, args []string) error {
	id := args[0]
	return withApp(cmd, func(ctx context.Context, a *app) error {
		s, err := fetchSubmission(ctx, a.client, id)
		if err != nil {
			return err
		}

		if jsonOutput {
			return printJSON(cmd, s)
		}
		printSubmission(cmd, s)
		return nil
	})
}

// fetchSubmission loads the detail view, falling back to the list entry
// when the detail endpoint fails for a reason other than the session.
func fetchSubmission(ctx context.Context, client *api.Client, id string) (*model.Submission, error) {
	s, err := client.GetSubmission(ctx, id)
	if err == nil {
		return s, nil
	}
	if errors.Is(err, session.ErrSessionExpired) || errors.Is(err, session.ErrUnauthenticated) {
		return nil, err
	}

	logger.Warn("Submission detail failed, using list entry", logger.F("id", id), logger.F("error", err))
	items, listErr := client.ListSubmissions(ctx)
	if listErr != nil {
		return nil, err
	}
	for i := range items {
		if items[i].ID == id {
			return &items[i], nil
		}
	}
	return nil, err
}

func printSubmission(cmd *cobra.Command, s *model.Submission) {
	out := cmd.OutOrStdout()
	printHeader(cmd, "🏆 %s - %s", s.TeamName, s.ProjectName)

	fmt.Fprintf(out, "Submitted: %s\n\n", formatTime(s.CreatedAt))
	fmt.Fprintln(out, "Leader")
	printPerson(cmd, s.Leader)
	for i, m := range s.Members {
		fmt.Fprintf(out, "Member %d\n", i+1)
		printPerson(cmd, m)
	}

	if s.Description != "" {
		fmt.Fprintf(out, "\nDescription\n  %s\n", strings.ReplaceAll(s.Description, "\n", "\n  "))
	}
	if s.Report.URL != "" {
		fmt.Fprintf(out, "\nReport: %s\n", s.Report.URL)
	}
	for _, f := range s.Attachments {
		name := f.FileName
		if name == "" {
			name = f.FileID
		}
		fmt.Fprintf(out, "Attachment: %s (%s)\n", name, f.URL)
	}
	if s.VideoLink != "" {
		fmt.Fprintf(out, "Video: %s\n", s.VideoLink)
	}
	fmt.Fprintln(out)
}

func printPerson(cmd *cobra.Command, p model.Person) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "  %s (%s)\n", p.FullName, p.StudentID)
	fmt.Fprintf(out, "  %s", p.Email)
	if p.Phone != "" {
		fmt.Fprintf(out, "  %s", p.Phone)
	}
	fmt.Fprintln(out)
}

func runSubmissionsExport(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		dir := "."
		if submissionsOutput != "" {
			dir = filepath.Dir(submissionsOutput)
		}

		tmp, err := os.CreateTemp(dir, ".scic-export-*")
		if err != nil {
			return fmt.Errorf("failed to create export file: %w", err)
		}
		defer os.Remove(tmp.Name())

		fmt.Fprintln(cmd.OutOrStdout(), "🔄 Exporting submissions...")
		name, err := a.client.ExportSubmissions(ctx, tmp)
		if closeErr := tmp.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			return err
		}

		target := submissionsOutput
		if target == "" {
			target = name
		}
		if err := os.Rename(tmp.Name(), target); err != nil {
			return fmt.Errorf("failed to save export: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "✅ Saved %s\n", target)
		return nil
	})
}

func runSubmissionsDelete(cmd *cobra.Command, args []string) error {
	id := args[0]
	if err := confirm(cmd, submissionsYes, fmt.Sprintf("Delete submission %s?", id)); err != nil {
		return err
	}

	return withApp(cmd, func(ctx context.Context, a *app) error {
		if err := a.client.DeleteSubmission(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "🗑️  Deleted submission %s\n", id)
		return nil
	})
}
