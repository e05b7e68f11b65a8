// Package listview shapes small in-memory lists fetched from the backend
// for display: pagination, ordering and filtering.
package listview

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/existflow/scic/internal/model"
)

// Page sizes used by the list screens
const (
	SubmissionsPerPage = 5
	AdminPostsPerPage  = 5
	NewsPerPage        = 3
	MembersPerPage     = 6
	RecentPostsCount   = 4
	ExcerptLength      = 150
)

// Page is one page of a paginated list. Number is 1-based.
type Page[T any] struct {
	Items      []T `json:"items"`
	Number     int `json:"page"`
	TotalPages int `json:"total_pages"`
	Total      int `json:"total"`
}

// HasPrev reports whether a previous page exists
func (p Page[T]) HasPrev() bool { return p.Number > 1 }

// HasNext reports whether a following page exists
func (p Page[T]) HasNext() bool { return p.Number < p.TotalPages }

// Paginate returns page number n of items. n is clamped into [1, TotalPages];
// an empty list yields a single empty page.
func Paginate[T any](items []T, n, perPage int) Page[T] {
	if perPage <= 0 {
		perPage = 1
	}

	total := len(items)
	pages := (total + perPage - 1) / perPage
	if pages == 0 {
		pages = 1
	}

	if n < 1 {
		n = 1
	}
	if n > pages {
		n = pages
	}

	start := (n - 1) * perPage
	end := start + perPage
	if end > total {
		end = total
	}

	return Page[T]{
		Items:      items[start:end],
		Number:     n,
		TotalPages: pages,
		Total:      total,
	}
}

// SortMembersByStatus orders members pending, accepted, rejected.
// Members with equal status keep their relative order.
func SortMembersByStatus(members []model.Member) {
	sort.SliceStable(members, func(i, j int) bool {
		return members[i].Status.Rank() < members[j].Status.Rank()
	})
}

// SortPostsNewest orders posts by creation time, newest first
func SortPostsNewest(posts []model.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
}

// FilterMembers keeps members having any of skills (all when skills is
// empty) whose name, school, major or interests contain search, ignoring case.
func FilterMembers(members []model.Member, skills []string, search string) []model.Member {
	search = strings.ToLower(strings.TrimSpace(search))

	out := make([]model.Member, 0, len(members))
	for _, m := range members {
		if len(skills) > 0 && !hasAnySkill(&m, skills) {
			continue
		}
		if search != "" && !matchesSearch(&m, search) {
			continue
		}
		out = append(out, m)
	}
	return out
}

func hasAnySkill(m *model.Member, skills []string) bool {
	for _, s := range skills {
		if m.HasSkill(s) {
			return true
		}
	}
	return false
}

func matchesSearch(m *model.Member, search string) bool {
	for _, field := range []string{m.FullName, m.School, m.Major, m.Interests} {
		if strings.Contains(strings.ToLower(field), search) {
			return true
		}
	}
	return false
}

// RecentPosts returns up to n of the newest posts other than excludeID.
// Only the n+1 newest are considered, so the current post never pushes an
// older one into the list.
func RecentPosts(posts []model.Post, excludeID string, n int) []model.Post {
	if n <= 0 {
		return nil
	}

	sorted := make([]model.Post, len(posts))
	copy(sorted, posts)
	SortPostsNewest(sorted)

	if len(sorted) > n+1 {
		sorted = sorted[:n+1]
	}

	out := make([]model.Post, 0, n)
	for _, p := range sorted {
		if p.ID == excludeID {
			continue
		}
		out = append(out, p)
		if len(out) == n {
			break
		}
	}
	return out
}

// Excerpt truncates s to n runes, appending "..." when anything was cut
func Excerpt(s string, n int) string {
	if n < 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "..."
}

// CountByStatus tallies members per status
func CountByStatus(members []model.Member) map[model.Status]int {
	counts := make(map[model.Status]int, len(model.Statuses))
	for _, m := range members {
		counts[m.Status]++
	}
	return counts
}
