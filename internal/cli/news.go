package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/existflow/scic/internal/listview"
	"github.com/existflow/scic/internal/model"
)

var newsCmd = &cobra.Command{
	Use:   "news",
	Short: "Read competition news",
}

var newsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List news, newest first",
	RunE:    runNewsList,
}

var newsShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Read one article with related news",
	Args:  cobra.ExactArgs(1),
	RunE:  runNewsShow,
}

var newsPage int

func init() {
	newsListCmd.Flags().IntVarP(&newsPage, "page", "p", 1, "Page number")

	newsCmd.AddCommand(newsListCmd)
	newsCmd.AddCommand(newsShowCmd)
}

func runNewsList(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		posts, err := a.client.ListPosts(ctx)
		if err != nil {
			return err
		}
		listview.SortPostsNewest(posts)

		page := listview.Paginate(posts, newsPage, listview.NewsPerPage)
		if jsonOutput {
			return printJSON(cmd, page)
		}
		if page.Total == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No news yet.")
			return nil
		}

		out := cmd.OutOrStdout()
		printHeader(cmd, "📰 News")
		for _, p := range page.Items {
			fmt.Fprintf(out, "%s  %s\n", formatTime(p.CreatedAt), p.Title)
			fmt.Fprintf(out, "  %s\n", listview.Excerpt(p.Content, listview.ExcerptLength))
			fmt.Fprintf(out, "  scic news show %s\n\n", p.ID)
		}
		printPageFooter(cmd, page.Number, page.TotalPages)
		return nil
	})
}

type newsArticle struct {
	Post   *model.Post  `json:"post"`
	Recent []model.Post `json:"recent"`
}

func runNewsShow(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		post, err := a.client.GetPost(ctx, args[0])
		if err != nil {
			return err
		}

		// Related news is best effort
		var recent []model.Post
		if all, err := a.client.ListPosts(ctx); err == nil {
			recent = listview.RecentPosts(all, post.ID, listview.RecentPostsCount)
		}

		if jsonOutput {
			return printJSON(cmd, newsArticle{Post: post, Recent: recent})
		}

		printPost(cmd, post)
		if len(recent) > 0 {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Recent news")
			for _, p := range recent {
				fmt.Fprintf(out, "  • %s (%s)\n", p.Title, p.ID)
			}
		}
		return nil
	})
}
