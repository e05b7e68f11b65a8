// Package tui is the admin dashboard: submissions, posts and team-finder
// moderation behind the session guard.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"

	"github.com/existflow/scic/internal/listview"
	"github.com/existflow/scic/internal/logger"
	"github.com/existflow/scic/internal/model"
)

// Backend is the part of the API client the dashboard uses.
// *api.Client satisfies it.
type Backend interface {
	ListSubmissions(ctx context.Context) ([]model.Submission, error)
	ListPosts(ctx context.Context) ([]model.Post, error)
	DeletePost(ctx context.Context, id string) error
	ListMembers(ctx context.Context) ([]model.Member, error)
	UpdateMemberStatus(ctx context.Context, id string, status model.Status) (*model.Member, error)
}

// Session reports who is logged in. *session.Guard satisfies it.
type Session interface {
	CurrentIdentity(ctx context.Context) (string, bool)
	TimeRemaining(ctx context.Context) time.Duration
}

// Tab is a dashboard section
type Tab int

const (
	TabOverview Tab = iota
	TabSubmissions
	TabPosts
	TabMembers
)

var tabNames = []string{"Overview", "Submissions", "Posts", "Find Team"}

// String returns the tab title
func (t Tab) String() string {
	if int(t) < len(tabNames) {
		return tabNames[t]
	}
	return "?"
}

// Mode represents the current UI mode
type Mode int

const (
	ModeNormal Mode = iota
	ModeConfirmDelete
	ModeSearch
	ModeHelp
)

// listState is the cursor position in one paginated tab
type listState struct {
	page   int // 1-based
	cursor int // index within the page
	detail bool
}

// Model is the main TUI model
type Model struct {
	ctx     context.Context
	backend Backend
	session Session

	submissions []model.Submission
	posts       []model.Post
	members     []model.Member
	loading     int

	// UI state
	width  int
	height int
	tab    Tab
	mode   Mode
	lists  map[Tab]*listState

	// Find Team search
	input  textinput.Model
	search string

	spinner spinner.Model

	identity  string
	remaining time.Duration
	expired   bool

	message string
}

// NewModel creates a new TUI model
func NewModel(ctx context.Context, backend Backend, sess Session) Model {
	logger.Info("Initializing dashboard")

	ti := textinput.New()
	ti.Placeholder = "name, school, major, interests..."
	ti.CharLimit = 100
	ti.Width = 40

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = HeaderStyle

	m := Model{
		ctx:     ctx,
		backend: backend,
		session: sess,
		tab:     TabOverview,
		mode:    ModeNormal,
		input:   ti,
		spinner: sp,
		loading: 3,
		lists: map[Tab]*listState{
			TabSubmissions: {page: 1},
			TabPosts:       {page: 1},
			TabMembers:     {page: 1},
		},
	}
	m.identity, _ = sess.CurrentIdentity(ctx)
	m.remaining = sess.TimeRemaining(ctx)
	return m
}

// SessionExpired reports whether the dashboard quit because the session ended
func (m Model) SessionExpired() bool {
	return m.expired
}

// Tab returns the active tab
func (m Model) Tab() Tab {
	return m.tab
}

// Message returns the last status bar message
func (m Model) Message() string {
	return m.message
}

// Members returns the loaded registrations
func (m Model) Members() []model.Member {
	return m.members
}

// Posts returns the loaded posts
func (m Model) Posts() []model.Post {
	return m.posts
}

func (m *Model) state() *listState {
	return m.lists[m.tab]
}

// visibleMembers applies the search and the status ordering
func (m *Model) visibleMembers() []model.Member {
	out := listview.FilterMembers(m.members, nil, m.search)
	listview.SortMembersByStatus(out)
	return out
}

func (m *Model) submissionPage() listview.Page[model.Submission] {
	return listview.Paginate(m.submissions, m.lists[TabSubmissions].page, listview.SubmissionsPerPage)
}

func (m *Model) postPage() listview.Page[model.Post] {
	return listview.Paginate(m.posts, m.lists[TabPosts].page, listview.AdminPostsPerPage)
}

func (m *Model) memberPage() listview.Page[model.Member] {
	return listview.Paginate(m.visibleMembers(), m.lists[TabMembers].page, listview.MembersPerPage)
}

// pageInfo returns the size of the current page and the page count
func (m *Model) pageInfo() (items, pages int) {
	switch m.tab {
	case TabSubmissions:
		p := m.submissionPage()
		return len(p.Items), p.TotalPages
	case TabPosts:
		p := m.postPage()
		return len(p.Items), p.TotalPages
	case TabMembers:
		p := m.memberPage()
		return len(p.Items), p.TotalPages
	}
	return 0, 1
}

// clamp keeps page and cursor inside the loaded data
func (m *Model) clamp() {
	for tab, st := range m.lists {
		saved := m.tab
		m.tab = tab
		n, pages := m.pageInfo()
		m.tab = saved

		if st.page > pages {
			st.page = pages
		}
		if st.page < 1 {
			st.page = 1
		}
		if st.cursor >= n {
			st.cursor = n - 1
		}
		if st.cursor < 0 {
			st.cursor = 0
		}
	}
}

func (m *Model) currentSubmission() *model.Submission {
	p := m.submissionPage()
	if c := m.lists[TabSubmissions].cursor; c < len(p.Items) {
		return &p.Items[c]
	}
	return nil
}

func (m *Model) currentPost() *model.Post {
	p := m.postPage()
	if c := m.lists[TabPosts].cursor; c < len(p.Items) {
		return &p.Items[c]
	}
	return nil
}

func (m *Model) currentMember() *model.Member {
	p := m.memberPage()
	if c := m.lists[TabMembers].cursor; c < len(p.Items) {
		mem := p.Items[c]
		return &mem
	}
	return nil
}
