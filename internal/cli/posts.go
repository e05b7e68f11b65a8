package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/spf13/cobra"

	"github.com/existflow/scic/internal/api"
	"github.com/existflow/scic/internal/form"
	"github.com/existflow/scic/internal/listview"
	"github.com/existflow/scic/internal/model"
)

var postsCmd = &cobra.Command{
	Use:   "posts",
	Short: "Manage news posts",
}

var postsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List posts, newest first",
	RunE:    runPostsList,
}

var postsShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show one post",
	Args:  cobra.ExactArgs(1),
	RunE:  runPostsShow,
}

var postsCreateCmd = &cobra.Command{
	Use:     "create",
	Aliases: []string{"new"},
	Short:   "Publish a post",
	Long: `Publish a news post with optional images and videos.

Examples:
  scic posts create --title "Vòng 1" --content-file round1.md --image banner.png
  scic posts create                      # interactive`,
	RunE: runPostsCreate,
}

var postsEditCmd = &cobra.Command{
	Use:   "edit [id]",
	Short: "Edit a post",
	Long: `Edit a post. Title and content keep their current value unless given.
Existing media is removed by file id (see 'scic posts show').

Examples:
  scic posts edit 65f0 --title "Kết quả vòng 1"
  scic posts edit 65f0 --image photo.jpg --remove-image img-123`,
	Args: cobra.ExactArgs(1),
	RunE: runPostsEdit,
}

var postsDeleteCmd = &cobra.Command{
	Use:     "delete [id]",
	Aliases: []string{"rm"},
	Short:   "Delete a post",
	Args:    cobra.ExactArgs(1),
	RunE:    runPostsDelete,
}

var (
	postsPage        int
	postTitle        string
	postContent      string
	postContentFile  string
	postImages       []string
	postVideos       []string
	postRemoveImages []string
	postRemoveVideos []string
	postsDeleteYes   bool
)

func init() {
	postsListCmd.Flags().IntVarP(&postsPage, "page", "p", 1, "Page number")

	for _, c := range []*cobra.Command{postsCreateCmd, postsEditCmd} {
		c.Flags().StringVarP(&postTitle, "title", "t", "", "Post title")
		c.Flags().StringVarP(&postContent, "content", "c", "", "Post content")
		c.Flags().StringVar(&postContentFile, "content-file", "", "Read content from a file")
		c.Flags().StringArrayVar(&postImages, "image", nil, "Image file to upload (repeatable)")
		c.Flags().StringArrayVar(&postVideos, "video", nil, "Video file to upload (repeatable)")
	}
	postsEditCmd.Flags().StringArrayVar(&postRemoveImages, "remove-image", nil, "File id of an image to remove (repeatable)")
	postsEditCmd.Flags().StringArrayVar(&postRemoveVideos, "remove-video", nil, "File id of a video to remove (repeatable)")
	postsDeleteCmd.Flags().BoolVarP(&postsDeleteYes, "yes", "y", false, "Do not ask for confirmation")

	postsCmd.AddCommand(postsListCmd)
	postsCmd.AddCommand(postsShowCmd)
	postsCmd.AddCommand(postsCreateCmd)
	postsCmd.AddCommand(postsEditCmd)
	postsCmd.AddCommand(postsDeleteCmd)
}

func runPostsList(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		posts, err := a.client.ListPosts(ctx)
		if err != nil {
			return err
		}
		listview.SortPostsNewest(posts)

		page := listview.Paginate(posts, postsPage, listview.AdminPostsPerPage)
		if jsonOutput {
			return printJSON(cmd, page)
		}
		if page.Total == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No posts yet. Publish one with: scic posts create")
			return nil
		}

		out := cmd.OutOrStdout()
		printHeader(cmd, "📰 Posts (%d)", page.Total)
		for _, p := range page.Items {
			fmt.Fprintf(out, "• %s\n", p.Title)
			fmt.Fprintf(out, "  %s  🖼 %d  🎬 %d  ID: %s\n", formatTime(p.CreatedAt), len(p.Images), len(p.Videos), p.ID)
		}
		printPageFooter(cmd, page.Number, page.TotalPages)
		return nil
	})
}

func runPostsShow(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		p, err := a.client.GetPost(ctx, args[0])
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd, p)
		}
		printPost(cmd, p)
		return nil
	})
}

func printPost(cmd *cobra.Command, p *model.Post) {
	out := cmd.OutOrStdout()
	printHeader(cmd, "📰 %s", p.Title)
	fmt.Fprintf(out, "%s\n\n%s\n", formatTime(p.CreatedAt), p.Content)
	for _, m := range p.Images {
		fmt.Fprintf(out, "🖼  %s  [%s]\n", m.URL, m.FileID)
	}
	for _, m := range p.Videos {
		fmt.Fprintf(out, "🎬 %s  [%s]\n", m.URL, m.FileID)
	}
	fmt.Fprintln(out)
}

// stagePostMedia checks the requested images and videos before anything is uploaded
func stagePostMedia() (api.PostMedia, error) {
	var images, videos form.Staging
	if err := images.Add(form.KindImage, postImages...); err != nil {
		return api.PostMedia{}, err
	}
	if err := videos.Add(form.KindVideo, postVideos...); err != nil {
		return api.PostMedia{}, err
	}
	return api.PostMedia{
		Images:       images.Paths(),
		Videos:       videos.Paths(),
		RemoveImages: postRemoveImages,
		RemoveVideos: postRemoveVideos,
	}, nil
}

func readPostContent() (string, error) {
	if postContentFile == "" {
		return postContent, nil
	}
	data, err := os.ReadFile(postContentFile)
	if err != nil {
		return "", fmt.Errorf("failed to read content: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func postForm(p *form.Post) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				CharLimit(form.MaxPostTitle).
				Value(&p.Title),
			huh.NewText().
				Title("Content").
				Value(&p.Content),
		).Title("News post"),
	).WithTheme(huh.ThemeBase())
}

func runPostsCreate(cmd *cobra.Command, args []string) error {
	content, err := readPostContent()
	if err != nil {
		return err
	}
	p := form.Post{Title: postTitle, Content: content}

	if (p.Title == "" || p.Content == "") && isInteractive(cmd) {
		if err := postForm(&p).Run(); err != nil {
			return err
		}
	}
	if err := validation.Validate(p); err != nil {
		return err
	}

	media, err := stagePostMedia()
	if err != nil {
		return err
	}

	return withApp(cmd, func(ctx context.Context, a *app) error {
		fmt.Fprintln(cmd.OutOrStdout(), "🔄 Publishing...")
		created, err := a.client.CreatePost(ctx, p, media)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd, created)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✅ Published %q (ID: %s)\n", created.Title, created.ID)
		return nil
	})
}

func runPostsEdit(cmd *cobra.Command, args []string) error {
	id := args[0]
	content, err := readPostContent()
	if err != nil {
		return err
	}
	media, err := stagePostMedia()
	if err != nil {
		return err
	}

	return withApp(cmd, func(ctx context.Context, a *app) error {
		current, err := a.client.GetPost(ctx, id)
		if err != nil {
			return err
		}

		p := form.Post{Title: current.Title, Content: current.Content}
		if cmd.Flags().Changed("title") {
			p.Title = postTitle
		}
		if cmd.Flags().Changed("content") || postContentFile != "" {
			p.Content = content
		}
		if err := validation.Validate(p); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), "🔄 Saving...")
		updated, err := a.client.UpdatePost(ctx, id, p, media)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd, updated)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✅ Updated %q\n", p.Title)
		return nil
	})
}

func runPostsDelete(cmd *cobra.Command, args []string) error {
	id := args[0]
	if err := confirm(cmd, postsDeleteYes, fmt.Sprintf("Delete post %s?", id)); err != nil {
		return err
	}

	return withApp(cmd, func(ctx context.Context, a *app) error {
		if err := a.client.DeletePost(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "🗑️  Deleted post %s\n", id)
		return nil
	})
}
