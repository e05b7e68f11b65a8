package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/existflow/scic/internal/api"
	"github.com/existflow/scic/internal/session"
)

// backend fakes the competition API
type backend struct {
	*httptest.Server
	mu          sync.Mutex
	hits        map[string]int
	logouts     int
	patched     map[string]string
	submissions []map[string]interface{}
	detailFails atomic.Bool
	forbid      atomic.Bool
}

func newBackend(t *testing.T) *backend {
	b := &backend{hits: map[string]int{}, patched: map[string]string{}}
	for i := 1; i <= 7; i++ {
		b.submissions = append(b.submissions, map[string]interface{}{
			"_id":         fmt.Sprintf("s%d", i),
			"teamName":    fmt.Sprintf("Team %d", i),
			"projectName": fmt.Sprintf("Project %d", i),
			"leader":      map[string]string{"fullName": fmt.Sprintf("Leader %d", i), "email": "l@uni.edu.vn"},
		})
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/user/login", func(w http.ResponseWriter, r *http.Request) {
		var body struct{ Email, Password string }
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Password != "secret1" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"status":"error","message":"Invalid credentials"}`))
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "token", Value: "cookie-123", Path: "/"})
		_, _ = fmt.Fprintf(w, `{"status":"success","data":{"email":%q}}`, body.Email)
	})
	mux.HandleFunc("/api/v1/user/logout", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.logouts++
		b.mu.Unlock()
		http.SetCookie(w, &http.Cookie{Name: "token", Path: "/", MaxAge: -1})
	})
	mux.HandleFunc("/api/v1/submissions", b.private(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"status": "success", "data": b.submissions})
	}))
	mux.HandleFunc("/api/v1/submissions/", b.private(func(w http.ResponseWriter, r *http.Request) {
		if b.detailFails.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(b.submissions[0])
	}))
	mux.HandleFunc("/api/v1/connect/", b.private(func(w http.ResponseWriter, r *http.Request) {
		var body struct{ Status string }
		_ = json.NewDecoder(r.Body).Decode(&body)
		b.mu.Lock()
		b.patched[strings.TrimPrefix(r.URL.Path, "/api/v1/connect/")] = body.Status
		b.mu.Unlock()
		_, _ = w.Write([]byte(`{"status":"success","data":{}}`))
	}))
	mux.HandleFunc("/api/v1/connect", func(w http.ResponseWriter, r *http.Request) {
		b.count(r)
		if r.Method == http.MethodPost {
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"status":"success","data":{"_id":"m1","status":"pending"}}`))
			return
		}
		w.WriteHeader(http.StatusMethodNotAllowed)
	})
	mux.HandleFunc("/api/v1/posts", func(w http.ResponseWriter, r *http.Request) {
		b.count(r)
		_, _ = w.Write([]byte(`[
			{"_id":"p1","title":"Khai mạc","content":"Cuộc thi chính thức bắt đầu","createdAt":"2025-03-01T08:00:00Z"},
			{"_id":"p2","title":"Vòng 1","content":"Kết quả vòng 1","createdAt":"2025-04-01T08:00:00Z"}
		]`))
	})

	b.Server = httptest.NewServer(mux)
	t.Cleanup(b.Close)
	return b
}

func (b *backend) count(r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.hits[r.Method+" "+r.URL.Path]++
}

func (b *backend) hitCount(key string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits[key]
}

func (b *backend) logoutCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.logouts
}

func (b *backend) patchedStatus() map[string]string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(map[string]string, len(b.patched))
	for k, v := range b.patched {
		out[k] = v
	}
	return out
}

func (b *backend) private(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.count(r)
		if c, err := r.Cookie("token"); err != nil || c.Value != "cookie-123" || b.forbid.Load() {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		h(w, r)
	}
}

// cli runs commands against one backend and one session file
type cli struct {
	t       *testing.T
	backend *backend
	dir     string
}

func newCLI(t *testing.T) *cli {
	dir := t.TempDir()
	t.Setenv("SCIC_HOME", dir)
	t.Setenv("SCIC_STORE_PATH", filepath.Join(dir, "session.json"))
	return &cli{t: t, backend: newBackend(t), dir: dir}
}

func (c *cli) run(stdin string, args ...string) (string, error) {
	c.t.Helper()
	base := []string{
		"--api-url", c.backend.URL,
		"--store", "file",
		"--log-file", "",
		"--config", filepath.Join(c.dir, "missing.yaml"),
		"--json=false",
	}

	var out bytes.Buffer
	rootCmd.SetArgs(append(base, args...))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	err := rootCmd.Execute()
	return out.String(), err
}

func (c *cli) login() {
	c.t.Helper()
	out, err := c.run("secret1\n", "login", "--email", "admin@scic.vn", "--password-stdin")
	require.NoError(c.t, err, out)
}

func TestLoginStatusLogout(t *testing.T) {
	c := newCLI(t)

	out, err := c.run("", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Not logged in")

	out, err = c.run("secret1\n", "login", "--email", "admin@scic.vn", "--password-stdin")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as admin@scic.vn")

	out, err = c.run("", "status", "--json")
	require.NoError(t, err)
	var st sessionStatus
	require.NoError(t, json.Unmarshal([]byte(out), &st))
	assert.True(t, st.Authenticated)
	assert.Equal(t, "admin@scic.vn", st.Identity)
	assert.WithinDuration(t, st.IssuedAt.Add(time.Hour), st.ExpiresAt, time.Second)

	out, err = c.run("", "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged out successfully")
	assert.Equal(t, 1, c.backend.logoutCount())

	out, err = c.run("", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Not logged in")
}

func TestLogin_Rejected(t *testing.T) {
	c := newCLI(t)

	_, err := c.run("wrong-pass\n", "login", "--email", "admin@scic.vn", "--password-stdin")
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "❌ Invalid credentials", describeError(err))
}

func TestLogin_ValidatesBeforeSending(t *testing.T) {
	c := newCLI(t)

	_, err := c.run("123\n", "login", "--email", "not-an-email", "--password-stdin")
	var verrs validation.Errors
	require.ErrorAs(t, err, &verrs)
	msg := describeError(err)
	assert.Contains(t, msg, "email: must be a valid email address")
	assert.Contains(t, msg, "password: must be at least 6 characters")
}

func TestAdminCommands_RequireSession(t *testing.T) {
	c := newCLI(t)

	_, err := c.run("", "submissions", "list", "--page", "1")
	require.ErrorIs(t, err, session.ErrUnauthenticated)
	assert.Equal(t, "🔒 "+sessionExpiredMessage, describeError(err))
	assert.Zero(t, c.backend.hitCount("GET /api/v1/submissions"))
}

func TestSubmissionsList_Paginates(t *testing.T) {
	c := newCLI(t)
	c.login()

	out, err := c.run("", "submissions", "list", "--page", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Submissions (7)")
	assert.Contains(t, out, " 6. Team 6 - Project 6")
	assert.Contains(t, out, " 7. Team 7 - Project 7")
	assert.NotContains(t, out, "Team 5")
	assert.Contains(t, out, "Page 2 of 2")
}

func TestSubmissionsShow_FallsBackToListEntry(t *testing.T) {
	c := newCLI(t)
	c.login()
	c.backend.detailFails.Store(true)

	out, err := c.run("", "submissions", "show", "s3")
	require.NoError(t, err)
	assert.Contains(t, out, "Team 3 - Project 3")
	assert.Contains(t, out, "Leader 3")
}

func TestForbidden_EndsSession(t *testing.T) {
	c := newCLI(t)
	c.login()
	c.backend.forbid.Store(true)

	_, err := c.run("", "submissions", "list", "--page", "1")
	require.ErrorIs(t, err, session.ErrSessionExpired)
	assert.Equal(t, "🔒 session expired, please log in again", describeError(err))
	assert.Equal(t, 1, c.backend.logoutCount())

	out, err := c.run("", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Not logged in")
}

func TestConnectAccept(t *testing.T) {
	c := newCLI(t)
	c.login()

	out, err := c.run("", "connect", "accept", "m1", "m2")
	require.NoError(t, err)
	assert.Contains(t, out, "m1 -> Accepted")
	assert.Equal(t, map[string]string{"m1": "accepted", "m2": "accepted"}, c.backend.patchedStatus())

	_, err = c.run("", "connect", "pending", "m1")
	require.NoError(t, err)
	assert.Equal(t, "pending", c.backend.patchedStatus()["m1"])
}

func TestNews_IsPublic(t *testing.T) {
	c := newCLI(t)

	out, err := c.run("", "news", "list", "--page", "1")
	require.NoError(t, err)
	assert.Less(t, strings.Index(out, "Vòng 1"), strings.Index(out, "Khai mạc"), "newest first")

	out, err = c.run("", "news", "list", "--page", "1", "--json")
	require.NoError(t, err)
	var page struct {
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &page))
	assert.Equal(t, 2, page.Total)
}

func TestRegister(t *testing.T) {
	c := newCLI(t)

	_, err := c.run("", "register", "--name", "Lê Văn C")
	require.Error(t, err)
	msg := describeError(err)
	assert.Contains(t, msg, "email: email is required")
	assert.Contains(t, msg, "skills: choose at least one skill")
	assert.Zero(t, c.backend.hitCount("POST /api/v1/connect"))

	out, err := c.run("", "register",
		"--name", "Lê Văn C", "--email", "c@uni.edu.vn", "--school", "ĐH Bách Khoa",
		"--major", "Khoa học máy tính", "--skill", "Python", "--zalo", "0912 345 678")
	require.NoError(t, err)
	assert.Contains(t, out, "Registered Lê Văn C")
	assert.Equal(t, 1, c.backend.hitCount("POST /api/v1/connect"))
}

func TestDelete_NeedsConfirmationWithoutTerminal(t *testing.T) {
	c := newCLI(t)
	c.login()

	_, err := c.run("", "posts", "delete", "p1", "--yes=false")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--yes")
}

func TestDescribeError(t *testing.T) {
	assert.Equal(t, "❌ Team name taken", describeError(&api.Error{StatusCode: 409, Message: "Team name taken"}))
	assert.Contains(t, describeError(fmt.Errorf("%w: dial tcp", api.ErrNetwork)), "Could not reach the backend")
	assert.Equal(t, "❌ boom", describeError(errors.New("boom")))
}

func TestParseMember(t *testing.T) {
	p, err := parseMember("Trần Thị B; SV002 ;b@uni.edu.vn;0912345678")
	require.NoError(t, err)
	assert.Equal(t, "Trần Thị B", p.FullName)
	assert.Equal(t, "SV002", p.StudentID)
	assert.Equal(t, "0912345678", p.Phone)

	_, err = parseMember("only;two")
	assert.Error(t, err)
}
