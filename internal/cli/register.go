package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/spf13/cobra"

	"github.com/existflow/scic/internal/form"
	"github.com/existflow/scic/internal/model"
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Sign up on the team finder",
	Long: `Register a profile on the team finder. New profiles are pending until an
administrator accepts them.

Examples:
  scic register --name "Lê Văn C" --email c@uni.edu.vn --school "ĐH Bách Khoa" \
    --major "Khoa học máy tính" --skill Python --skill "AI/ML" --zalo 0912345678
  scic register                      # interactive`,
	RunE: runRegister,
}

var (
	registration     form.Registration
	registerFacebook string
	registerZalo     string
	registerPhone    string
)

func init() {
	f := registerCmd.Flags()
	f.StringVar(&registration.FullName, "name", "", "Full name")
	f.StringVar(&registration.Email, "email", "", "Email")
	f.StringVar(&registration.School, "school", "", "School")
	f.StringVar(&registration.Major, "major", "", "Major")
	f.StringArrayVar(&registration.Skills, "skill", nil, "Skill (repeatable): "+strings.Join(form.SkillOptions, ", "))
	f.StringVar(&registration.Interests, "interests", "", "Interests (optional, max 500 characters)")
	f.StringVar(&registerFacebook, "facebook", "", "Facebook profile link")
	f.StringVar(&registerZalo, "zalo", "", "Zalo link or number")
	f.StringVar(&registerPhone, "phone", "", "Phone number")
}

func socialLinks() []model.SocialLink {
	var links []model.SocialLink
	for _, l := range []model.SocialLink{
		{Type: model.SocialFacebook, Link: registerFacebook},
		{Type: model.SocialZalo, Link: registerZalo},
		{Type: model.SocialPhone, Link: registerPhone},
	} {
		if l.Link = strings.TrimSpace(l.Link); l.Link != "" {
			links = append(links, l)
		}
	}
	return links
}

func runRegisterForm(r *form.Registration) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Full name").Value(&r.FullName),
			huh.NewInput().Title("Email").Value(&r.Email),
			huh.NewInput().Title("School").Value(&r.School),
			huh.NewInput().Title("Major").Value(&r.Major),
		).Title("About you"),
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Skills").
				Description("Use space to select, Enter to confirm").
				Options(huh.NewOptions(form.SkillOptions...)...).
				Value(&r.Skills),
			huh.NewText().
				Title("Interests").
				Description("Optional").
				CharLimit(form.MaxInterests).
				Value(&r.Interests),
		).Title("What you bring"),
		huh.NewGroup(
			huh.NewInput().Title("Facebook").Description("Optional").Value(&registerFacebook),
			huh.NewInput().Title("Zalo").Description("Optional").Value(&registerZalo),
			huh.NewInput().Title("Phone").Description("Optional").Value(&registerPhone),
		).Title("How teams reach you"),
	).WithTheme(huh.ThemeBase()).Run()
}

func runRegister(cmd *cobra.Command, args []string) error {
	r := registration
	if r.FullName == "" && r.Email == "" && isInteractive(cmd) {
		if err := runRegisterForm(&r); err != nil {
			return err
		}
	}
	r.SocialLinks = socialLinks()

	if err := validation.Validate(r); err != nil {
		return err
	}

	return withApp(cmd, func(ctx context.Context, a *app) error {
		fmt.Fprintln(cmd.OutOrStdout(), "🔄 Registering...")
		m, err := a.client.Register(ctx, r)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd, m)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✅ Registered %s. Your profile is visible once an administrator accepts it.\n", r.FullName)
		return nil
	})
}
