package tui

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/existflow/scic/internal/listview"
	"github.com/existflow/scic/internal/logger"
	"github.com/existflow/scic/internal/model"
	"github.com/existflow/scic/internal/session"
)

// tickMsg is sent every second to refresh the session countdown
type tickMsg time.Time

type submissionsMsg struct {
	items []model.Submission
	err   error
}

type postsMsg struct {
	items []model.Post
	err   error
}

type membersMsg struct {
	items []model.Member
	err   error
}

type statusMsg struct {
	id     string
	member *model.Member
	err    error
}

type postDeletedMsg struct {
	id  string
	err error
}

// Init loads every tab and starts the clock
func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), m.spinner.Tick, m.loadSubmissions(), m.loadPosts(), m.loadMembers())
}

func tickCmd() tea.Cmd {
	return tea.Every(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) loadSubmissions() tea.Cmd {
	return func() tea.Msg {
		items, err := m.backend.ListSubmissions(m.ctx)
		return submissionsMsg{items: items, err: err}
	}
}

func (m Model) loadPosts() tea.Cmd {
	return func() tea.Msg {
		items, err := m.backend.ListPosts(m.ctx)
		return postsMsg{items: items, err: err}
	}
}

func (m Model) loadMembers() tea.Cmd {
	return func() tea.Msg {
		items, err := m.backend.ListMembers(m.ctx)
		return membersMsg{items: items, err: err}
	}
}

func (m Model) setStatus(id string, status model.Status) tea.Cmd {
	return func() tea.Msg {
		member, err := m.backend.UpdateMemberStatus(m.ctx, id, status)
		return statusMsg{id: id, member: member, err: err}
	}
}

func (m Model) deletePost(id string) tea.Cmd {
	return func() tea.Msg {
		return postDeletedMsg{id: id, err: m.backend.DeletePost(m.ctx, id)}
	}
}

// refresh reloads all three lists
func (m *Model) refresh() tea.Cmd {
	m.loading = 3
	return tea.Batch(m.loadSubmissions(), m.loadPosts(), m.loadMembers())
}

// fail records err. A session error ends the dashboard.
func (m *Model) fail(what string, err error) tea.Cmd {
	if errors.Is(err, session.ErrSessionExpired) || errors.Is(err, session.ErrUnauthenticated) {
		logger.Warn("Dashboard session ended", logger.F("error", err))
		m.expired = true
		return tea.Quit
	}
	logger.Error("Dashboard request failed", logger.F("action", what), logger.F("error", err))
	m.message = fmt.Sprintf("%s failed: %v", what, err)
	return nil
}

func (m *Model) loaded() {
	if m.loading > 0 {
		m.loading--
	}
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.remaining = m.session.TimeRemaining(m.ctx)
		if m.remaining <= 0 {
			m.expired = true
			return m, tea.Quit
		}
		return m, tickCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case submissionsMsg:
		m.loaded()
		if msg.err != nil {
			return m, m.fail("Loading submissions", msg.err)
		}
		m.submissions = msg.items
		m.clamp()
		return m, nil

	case postsMsg:
		m.loaded()
		if msg.err != nil {
			return m, m.fail("Loading posts", msg.err)
		}
		m.posts = msg.items
		listview.SortPostsNewest(m.posts)
		m.clamp()
		return m, nil

	case membersMsg:
		m.loaded()
		if msg.err != nil {
			return m, m.fail("Loading registrations", msg.err)
		}
		m.members = msg.items
		m.clamp()
		return m, nil

	case statusMsg:
		if msg.err != nil {
			return m, m.fail("Status update", msg.err)
		}
		// Responses are applied in arrival order; the last one wins
		for i := range m.members {
			if m.members[i].ID == msg.id {
				m.members[i].Status = msg.member.Status
				m.message = fmt.Sprintf("%s is now %s", m.members[i].FullName, msg.member.Status.Label())
				break
			}
		}
		m.clamp()
		return m, nil

	case postDeletedMsg:
		if msg.err != nil {
			return m, m.fail("Delete", msg.err)
		}
		for i := range m.posts {
			if m.posts[i].ID == msg.id {
				m.message = fmt.Sprintf("Deleted %q", m.posts[i].Title)
				m.posts = append(m.posts[:i], m.posts[i+1:]...)
				break
			}
		}
		m.clamp()
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case ModeConfirmDelete:
			return m.updateConfirm(msg)
		case ModeSearch:
			return m.updateSearch(msg)
		case ModeHelp:
			m.mode = ModeNormal
			return m, nil
		}
		return m.updateNormal(msg)
	}

	return m, nil
}

func (m Model) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	st := m.state()

	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.NextTab):
		m.tab = (m.tab + 1) % Tab(len(tabNames))
		m.message = ""

	case key.Matches(msg, keys.PrevTab):
		m.tab = (m.tab + Tab(len(tabNames)) - 1) % Tab(len(tabNames))
		m.message = ""

	case msg.String() >= "1" && msg.String() <= "4" && len(msg.String()) == 1:
		m.tab = Tab(msg.String()[0] - '1')
		m.message = ""

	case key.Matches(msg, keys.Refresh):
		m.message = "Refreshing..."
		return m, m.refresh()

	case key.Matches(msg, keys.Help):
		m.mode = ModeHelp

	case st == nil:
		// Overview has no list

	case key.Matches(msg, keys.Escape):
		st.detail = false
		if m.tab == TabMembers && m.search != "" {
			m.search = ""
			m.input.SetValue("")
			m.message = "Search cleared"
			m.clamp()
		}

	case key.Matches(msg, keys.Up):
		if st.cursor > 0 {
			st.cursor--
		}

	case key.Matches(msg, keys.Down):
		if n, _ := m.pageInfo(); st.cursor < n-1 {
			st.cursor++
		}

	case key.Matches(msg, keys.PrevPage):
		if st.page > 1 {
			st.page--
			st.cursor = 0
		}

	case key.Matches(msg, keys.NextPage):
		if _, pages := m.pageInfo(); st.page < pages {
			st.page++
			st.cursor = 0
		}

	case key.Matches(msg, keys.Enter):
		st.detail = !st.detail

	case m.tab == TabMembers && key.Matches(msg, keys.Search):
		m.mode = ModeSearch
		m.input.SetValue(m.search)
		m.input.Focus()
		return m, textinput.Blink

	case m.tab == TabMembers && key.Matches(msg, keys.Accept):
		return m, m.changeStatus(model.StatusAccepted)

	case m.tab == TabMembers && key.Matches(msg, keys.Reject):
		return m, m.changeStatus(model.StatusRejected)

	case m.tab == TabMembers && key.Matches(msg, keys.Pending):
		return m, m.changeStatus(model.StatusPending)

	case m.tab == TabPosts && key.Matches(msg, keys.Delete):
		if m.currentPost() != nil {
			m.mode = ModeConfirmDelete
		}
	}

	return m, nil
}

func (m *Model) changeStatus(status model.Status) tea.Cmd {
	mem := m.currentMember()
	if mem == nil {
		return nil
	}
	m.message = fmt.Sprintf("Marking %s as %s...", mem.FullName, status.Label())
	return m.setStatus(mem.ID, status)
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Yes):
		m.mode = ModeNormal
		p := m.currentPost()
		if p == nil {
			return m, nil
		}
		m.message = fmt.Sprintf("Deleting %q...", p.Title)
		return m, m.deletePost(p.ID)

	case key.Matches(msg, keys.No):
		m.mode = ModeNormal
		m.message = "Delete cancelled"
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Escape):
		m.mode = ModeNormal
		m.input.Blur()
		return m, nil

	case key.Matches(msg, keys.Enter):
		m.mode = ModeNormal
		m.input.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	// Live filter as user types
	m.search = m.input.Value()
	m.lists[TabMembers].page = 1
	m.lists[TabMembers].cursor = 0
	return m, cmd
}
