package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/existflow/scic/internal/listview"
	"github.com/existflow/scic/internal/model"
)

// View renders the UI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	header := m.renderTabs()
	statusBar := m.renderStatusBar()

	var body string
	switch m.tab {
	case TabOverview:
		body = m.renderOverview()
	case TabSubmissions:
		body = m.renderSubmissions()
	case TabPosts:
		body = m.renderPosts()
	case TabMembers:
		body = m.renderMembers()
	}

	height := m.height - lipgloss.Height(header) - lipgloss.Height(statusBar)
	if height < 1 {
		height = 1
	}
	mainContent := ContentStyle.Width(m.width).Height(height).Render(body)

	if m.mode == ModeConfirmDelete {
		mainContent = lipgloss.Place(
			m.width, height,
			lipgloss.Center, lipgloss.Center,
			m.renderConfirm(),
			lipgloss.WithWhitespaceChars(" "),
		)
	}

	if m.mode == ModeHelp {
		mainContent = lipgloss.Place(m.width, height, lipgloss.Center, lipgloss.Center, m.renderHelp())
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, mainContent, statusBar)
}

func (m Model) renderTabs() string {
	parts := []string{HeaderStyle.Render("SCIC 2025")}
	for i, name := range tabNames {
		label := fmt.Sprintf("%d %s", i+1, name)
		if Tab(i) == m.tab {
			parts = append(parts, TabActiveStyle.Render(label))
		} else {
			parts = append(parts, TabStyle.Render(label))
		}
	}
	if m.loading > 0 {
		parts = append(parts, " "+m.spinner.View())
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...) + "\n" +
		lipgloss.NewStyle().Foreground(Border).Render(strings.Repeat("─", m.width))
}

func (m Model) renderOverview() string {
	counts := listview.CountByStatus(m.members)

	card := func(title string, value int, style lipgloss.Style) string {
		return CardStyle.Render(HelpStyle.Render(title) + "\n" + style.Render(fmt.Sprintf("%d", value)))
	}
	bold := lipgloss.NewStyle().Bold(true).Foreground(Primary)

	row1 := lipgloss.JoinHorizontal(lipgloss.Top,
		card("Submissions", len(m.submissions), bold),
		card("Posts", len(m.posts), bold),
		card("Registrations", len(m.members), bold),
	)
	row2 := lipgloss.JoinHorizontal(lipgloss.Top,
		card("Pending", counts[model.StatusPending], StatusStyle(model.StatusPending)),
		card("Accepted", counts[model.StatusAccepted], StatusStyle(model.StatusAccepted)),
		card("Rejected", counts[model.StatusRejected], StatusStyle(model.StatusRejected)),
	)

	s := bold.Render("Overview") + "\n\n" + row1 + "\n" + row2 + "\n\n"
	if len(m.posts) > 0 {
		s += HelpStyle.Render("Latest post: "+truncate(m.posts[0].Title, 60)) + "\n"
	}
	return s
}

// renderList draws rows with the cursor marker and a page footer
func (m Model) renderList(title string, rows []string, cursor, page, pages int) string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(Primary).Render(title) + "\n\n")

	if len(rows) == 0 {
		b.WriteString(HelpStyle.Render("  Nothing here yet. Press r to refresh."))
		return b.String()
	}

	for i, row := range rows {
		marker, style := "  ", ItemStyle
		if i == cursor {
			marker, style = "❯ ", ItemSelectedStyle
		}
		b.WriteString(style.Render(marker+row) + "\n")
	}
	if pages > 1 {
		b.WriteString("\n" + HelpStyle.Render(fmt.Sprintf("Page %d/%d  ←/→ to change page", page, pages)))
	}
	return b.String()
}

func (m Model) renderSubmissions() string {
	st := m.lists[TabSubmissions]
	if st.detail {
		if s := m.currentSubmission(); s != nil {
			return renderSubmissionDetail(s)
		}
	}

	page := m.submissionPage()
	rows := make([]string, len(page.Items))
	for i, s := range page.Items {
		rows[i] = fmt.Sprintf("%-24s %-30s %s  %d people",
			truncate(s.TeamName, 24), truncate(s.ProjectName, 30), formatDate(s.CreatedAt), s.TeamSize())
	}
	return m.renderList(fmt.Sprintf("Submissions (%d)", page.Total), rows, st.cursor, page.Number, page.TotalPages)
}

func renderSubmissionDetail(s *model.Submission) string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(Primary).Render(s.TeamName+" - "+s.ProjectName) + "\n\n")

	person := func(role string, p model.Person) {
		fmt.Fprintf(&b, "%s: %s (%s)  %s", role, p.FullName, p.StudentID, p.Email)
		if p.Phone != "" {
			fmt.Fprintf(&b, "  %s", p.Phone)
		}
		b.WriteString("\n")
	}
	person("Leader", s.Leader)
	for i, p := range s.Members {
		person(fmt.Sprintf("Member %d", i+1), p)
	}

	if s.Description != "" {
		b.WriteString("\n" + s.Description + "\n")
	}
	if s.Report.URL != "" {
		b.WriteString("\nReport: " + s.Report.URL + "\n")
	}
	for _, f := range s.Attachments {
		b.WriteString("Attachment: " + f.URL + "\n")
	}
	if s.VideoLink != "" {
		b.WriteString("Video: " + s.VideoLink + "\n")
	}
	b.WriteString("\n" + HelpStyle.Render("enter/esc: back"))
	return b.String()
}

func (m Model) renderPosts() string {
	st := m.lists[TabPosts]
	if st.detail {
		if p := m.currentPost(); p != nil {
			return renderPostDetail(p)
		}
	}

	page := m.postPage()
	rows := make([]string, len(page.Items))
	for i, p := range page.Items {
		rows[i] = fmt.Sprintf("%-50s %s  🖼 %d 🎬 %d",
			truncate(p.Title, 50), formatDate(p.CreatedAt), len(p.Images), len(p.Videos))
	}
	return m.renderList(fmt.Sprintf("Posts (%d)", page.Total), rows, st.cursor, page.Number, page.TotalPages)
}

func renderPostDetail(p *model.Post) string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(Primary).Render(p.Title) + "\n")
	b.WriteString(HelpStyle.Render(formatDate(p.CreatedAt)) + "\n\n")
	b.WriteString(p.Content + "\n\n")
	for _, img := range p.Images {
		b.WriteString("🖼  " + img.URL + "\n")
	}
	for _, v := range p.Videos {
		b.WriteString("🎬 " + v.URL + "\n")
	}
	b.WriteString("\n" + HelpStyle.Render("enter/esc: back  d: delete"))
	return b.String()
}

func (m Model) renderMembers() string {
	st := m.lists[TabMembers]
	if st.detail {
		if mem := m.currentMember(); mem != nil {
			return renderMemberDetail(mem)
		}
	}

	page := m.memberPage()
	rows := make([]string, len(page.Items))
	for i, mem := range page.Items {
		rows[i] = fmt.Sprintf("%-10s %-24s %-28s %s",
			FormatStatus(mem.Status), truncate(mem.FullName, 24), truncate(mem.School, 28),
			truncate(strings.Join(mem.Skills, ", "), 30))
	}

	title := fmt.Sprintf("Find Team (%d)", page.Total)
	if m.search != "" {
		title += fmt.Sprintf("  /%s", m.search)
	}
	s := m.renderList(title, rows, st.cursor, page.Number, page.TotalPages)
	if m.mode == ModeSearch {
		s = "/" + m.input.View() + "\n\n" + s
	}
	return s
}

func renderMemberDetail(mem *model.Member) string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(Primary).Render(mem.FullName) + "  " + FormatStatus(mem.Status) + "\n\n")
	fmt.Fprintf(&b, "Email:  %s\nSchool: %s\nMajor:  %s\n", mem.Email, mem.School, mem.Major)
	if len(mem.Skills) > 0 {
		b.WriteString("Skills: " + strings.Join(mem.Skills, ", ") + "\n")
	}
	if mem.Interests != "" {
		b.WriteString("\n" + mem.Interests + "\n")
	}
	if contact := mem.Contact(); len(contact) > 0 {
		b.WriteString("\n" + strings.Join(contact, "\n") + "\n")
	}
	b.WriteString("\n" + HelpStyle.Render("a: accept  x: reject  p: pending  enter/esc: back"))
	return b.String()
}

func (m Model) renderConfirm() string {
	title := "this post"
	if p := m.currentPost(); p != nil {
		title = fmt.Sprintf("%q", truncate(p.Title, 40))
	}
	content := lipgloss.NewStyle().Bold(true).Render("Delete "+title+"?") + "\n\n"
	content += HelpStyle.Render("y: delete  n/esc: cancel")
	return ModalStyle.Render(content)
}

func (m Model) renderStatusBar() string {
	help := "tab:switch  ↑↓:move  ←→:page  enter:details  r:refresh  ?:help  q:quit"
	switch m.tab {
	case TabPosts:
		help = "d:delete  " + help
	case TabMembers:
		help = "a/x/p:accept/reject/pending  /:search  " + help
	}
	if m.message != "" {
		help = m.message
	}

	session := fmt.Sprintf("%s  ⏱ %s", m.identity, formatRemaining(m.remaining))
	avail := m.width - lipgloss.Width(help) - lipgloss.Width(session) - 4
	if avail > 0 {
		help += strings.Repeat(" ", avail) + session
	} else {
		help += "  " + session
	}

	return StatusBarStyle.Width(m.width).Render(help)
}

func (m Model) renderHelp() string {
	help := `
╭─── Keyboard Shortcuts ─────────╮
│                                │
│  Navigation                    │
│  ──────────                    │
│  1-4 / Tab   Switch tab        │
│  j/↓  k/↑    Move              │
│  h/←  l/→    Change page       │
│  Enter       Toggle details    │
│                                │
│  Find Team                     │
│  ─────────                     │
│  a / x / p   Accept / reject / │
│              back to pending   │
│  /           Search            │
│                                │
│  Posts                         │
│  ─────                         │
│  d           Delete            │
│                                │
│  r  Refresh    q  Quit         │
│                                │
╰────────────────────────────────╯

     Press any key to close
`
	return help
}
