package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/spf13/cobra"

	"github.com/existflow/scic/internal/form"
	"github.com/existflow/scic/internal/model"
)

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit a project to the competition",
	Long: `Submit a competition entry with its report and attachments.
Without flags on a terminal, an interactive form is shown.

Members are given as "Full name;Student ID;Email[;Phone]" and may be
repeated up to 4 times.

Examples:
  scic submit --team "Alpha" --project "Smart Farm" \
    --leader-name "Nguyễn Văn A" --leader-id SV001 \
    --leader-email a@uni.edu.vn --leader-phone 0912345678 \
    --member "Trần Thị B;SV002;b@uni.edu.vn" \
    --description "..." --report report.pdf --attachment slides.pdf`,
	RunE: runSubmit,
}

var (
	submitTeam        string
	submitProject     string
	submitLeader      model.Person
	submitMembers     []string
	submitDescription string
	submitReport      string
	submitAttachments []string
	submitVideo       string
)

func init() {
	f := submitCmd.Flags()
	f.StringVar(&submitTeam, "team", "", "Team name")
	f.StringVar(&submitProject, "project", "", "Project name")
	f.StringVar(&submitLeader.FullName, "leader-name", "", "Leader full name")
	f.StringVar(&submitLeader.StudentID, "leader-id", "", "Leader student ID")
	f.StringVar(&submitLeader.Email, "leader-email", "", "Leader email")
	f.StringVar(&submitLeader.Phone, "leader-phone", "", "Leader phone")
	f.StringArrayVar(&submitMembers, "member", nil, `Member as "name;student id;email[;phone]" (repeatable)`)
	f.StringVar(&submitDescription, "description", "", "Project description (max 500 characters)")
	f.StringVar(&submitReport, "report", "", "Report file")
	f.StringArrayVar(&submitAttachments, "attachment", nil, "Attachment file (repeatable)")
	f.StringVar(&submitVideo, "video", "", "Video link")
}

// parseMember reads the --member format
func parseMember(raw string) (model.Person, error) {
	parts := strings.Split(raw, ";")
	if len(parts) < 3 || len(parts) > 4 {
		return model.Person{}, fmt.Errorf("member %q: want \"name;student id;email[;phone]\"", raw)
	}
	p := model.Person{
		FullName:  strings.TrimSpace(parts[0]),
		StudentID: strings.TrimSpace(parts[1]),
		Email:     strings.TrimSpace(parts[2]),
	}
	if len(parts) == 4 {
		p.Phone = strings.TrimSpace(parts[3])
	}
	return p, nil
}

func submissionFromFlags() (form.Submission, error) {
	var members form.MemberList
	for _, raw := range submitMembers {
		p, err := parseMember(raw)
		if err != nil {
			return form.Submission{}, err
		}
		i, err := members.Add()
		if err != nil {
			return form.Submission{}, err
		}
		if err := members.Update(i, p); err != nil {
			return form.Submission{}, err
		}
	}

	return form.Submission{
		TeamName:    strings.TrimSpace(submitTeam),
		ProjectName: strings.TrimSpace(submitProject),
		Leader:      submitLeader,
		Members:     members.Items(),
		Description: strings.TrimSpace(submitDescription),
		Report:      submitReport,
		Attachments: submitAttachments,
		VideoLink:   strings.TrimSpace(submitVideo),
	}, nil
}

func personFields(p *model.Person, who string, requirePhone bool) []huh.Field {
	phone := huh.NewInput().Title(who + " phone").Value(&p.Phone)
	if !requirePhone {
		phone = phone.Description("Optional")
	}
	return []huh.Field{
		huh.NewInput().Title(who + " full name").Value(&p.FullName),
		huh.NewInput().Title(who + " student ID").Value(&p.StudentID),
		huh.NewInput().Title(who + " email").Value(&p.Email),
		phone,
	}
}

// runSubmitForm collects the entry interactively, one group per step
func runSubmitForm(s *form.Submission) error {
	var memberCount string
	var attachments string

	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Team name").Value(&s.TeamName),
			huh.NewInput().Title("Project name").Value(&s.ProjectName),
			huh.NewSelect[string]().
				Title("Members besides the leader").
				Options(huh.NewOptions("0", "1", "2", "3", "4")...).
				Value(&memberCount),
		).Title("Step 1: Team"),
		huh.NewGroup(personFields(&s.Leader, "Leader", true)...).Title("Step 2: Leader"),
	).WithTheme(huh.ThemeBase()).Run()
	if err != nil {
		return err
	}

	var members form.MemberList
	n, _ := strconv.Atoi(memberCount)
	for i := 0; i < n; i++ {
		idx, err := members.Add()
		if err != nil {
			return err
		}
		var p model.Person
		if err := huh.NewForm(
			huh.NewGroup(personFields(&p, fmt.Sprintf("Member %d", i+1), false)...),
		).WithTheme(huh.ThemeBase()).Run(); err != nil {
			return err
		}
		if err := members.Update(idx, p); err != nil {
			return err
		}
	}
	s.Members = members.Items()

	err = huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title("Description").
				CharLimit(form.MaxDescription).
				Value(&s.Description),
			huh.NewFilePicker().
				Title("Report").
				AllowedTypes([]string{".pdf", ".doc", ".docx"}).
				Value(&s.Report),
			huh.NewInput().
				Title("Attachments").
				Description("Comma separated file paths, optional").
				Value(&attachments),
			huh.NewInput().
				Title("Video link").
				Description("Optional").
				Value(&s.VideoLink),
		).Title("Step 3: Project"),
	).WithTheme(huh.ThemeBase()).Run()
	if err != nil {
		return err
	}

	for _, a := range strings.Split(attachments, ",") {
		if a = strings.TrimSpace(a); a != "" {
			s.Attachments = append(s.Attachments, a)
		}
	}
	return nil
}

func runSubmit(cmd *cobra.Command, args []string) error {
	s, err := submissionFromFlags()
	if err != nil {
		return err
	}

	if s.TeamName == "" && s.Report == "" && isInteractive(cmd) {
		if err := runSubmitForm(&s); err != nil {
			return err
		}
	}

	if err := validation.Validate(s); err != nil {
		return err
	}

	var files form.Staging
	if err := files.Add(form.KindAny, append([]string{s.Report}, s.Attachments...)...); err != nil {
		return err
	}

	return withApp(cmd, func(ctx context.Context, a *app) error {
		fmt.Fprintf(cmd.OutOrStdout(), "🔄 Uploading %d file(s)...\n", files.Len())
		created, err := a.client.CreateSubmission(ctx, s)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd, created)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✅ Submitted %q for team %s\n", s.ProjectName, s.TeamName)
		if created.ID != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "   Reference: %s\n", created.ID)
		}
		return nil
	})
}
