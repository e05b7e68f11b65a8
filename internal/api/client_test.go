package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/existflow/scic/internal/config"
	"github.com/existflow/scic/internal/form"
	"github.com/existflow/scic/internal/logger"
	"github.com/existflow/scic/internal/model"
	"github.com/existflow/scic/internal/session"
	"github.com/existflow/scic/internal/storage"
)

const credential = "cookie-123"

type fixture struct {
	srv     *httptest.Server
	mux     *http.ServeMux
	client  *Client
	guard   *session.Guard
	hits    atomic.Int32
	logouts atomic.Int32
}

func testAPIConfig(base string) config.API {
	return config.API{
		BaseURL:         base,
		LoginPath:       "/api/v1/user/login",
		LogoutPath:      "/api/v1/user/logout",
		SubmissionsPath: "/api/v1/submissions",
		ExportPath:      "/api/v1/submissions/export",
		PostsPath:       "/api/v1/posts",
		ConnectPath:     "/api/v1/connect",
		Timeout:         5 * time.Second,
	}
}

// newFixture starts a fake backend. Login sets the credential cookie; every
// handler registered with f.private rejects requests without it.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{mux: http.NewServeMux()}

	f.mux.HandleFunc("/api/v1/user/login", func(w http.ResponseWriter, r *http.Request) {
		var body loginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body.Password != "secret1" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"status":"error","message":"Sai email hoặc mật khẩu"}`))
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "token", Value: credential, Path: "/", HttpOnly: true})
		writeJSON(w, http.StatusOK, map[string]interface{}{"status": "success", "data": map[string]string{"email": body.Email}})
	})
	f.mux.HandleFunc("/api/v1/user/logout", func(w http.ResponseWriter, r *http.Request) {
		f.logouts.Add(1)
		http.SetCookie(w, &http.Cookie{Name: "token", Path: "/", MaxAge: -1})
	})

	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.hits.Add(1)
		f.mux.ServeHTTP(w, r)
	}))
	t.Cleanup(f.srv.Close)

	store := storage.NewMemory()
	jar := session.NewCookieJar(store, logger.Nop())
	httpClient := &http.Client{Jar: jar, Timeout: 5 * time.Second}
	cfg := testAPIConfig(f.srv.URL)

	f.guard = session.NewGuard(store, httpClient,
		session.WithLogger(logger.Nop()),
		session.WithLogoutURL(cfg.URL(cfg.LogoutPath)),
		session.WithCookieJar(jar),
	)
	f.client = New(cfg, f.guard, httpClient).WithLogger(logger.Nop())
	return f
}

func (f *fixture) private(pattern string, h http.HandlerFunc) {
	f.mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie("token")
		if err != nil || c.Value != credential {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		h(w, r)
	})
}

func (f *fixture) login(t *testing.T) {
	t.Helper()
	_, err := f.client.Login(context.Background(), "admin@scic.vn", "secret1")
	require.NoError(t, err)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func TestLogin_StartsSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	identity, err := f.client.Login(ctx, "admin@scic.vn", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "admin@scic.vn", identity)

	got, ok := f.guard.CurrentIdentity(ctx)
	assert.True(t, ok)
	assert.Equal(t, "admin@scic.vn", got)
}

func TestLogin_Rejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.client.Login(ctx, "admin@scic.vn", "wrong-password")

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Sai email hoặc mật khẩu", apiErr.Message)
	assert.False(t, f.guard.IsValid(ctx))
}

func TestLogin_RequiresSuccessStatus(t *testing.T) {
	f := newFixture(t)
	f.mux.HandleFunc("/api/v1/other-login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "pending", "message": "Account locked"})
	})
	f.client.cfg.LoginPath = "/api/v1/other-login"

	_, err := f.client.Login(context.Background(), "admin@scic.vn", "secret1")

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Account locked", apiErr.Message)
	assert.False(t, f.guard.IsValid(context.Background()))
}

func TestGuardedCall_FailsFastWithoutSession(t *testing.T) {
	f := newFixture(t)
	f.private("/api/v1/submissions", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []model.Submission{})
	})

	_, err := f.client.ListSubmissions(context.Background())
	assert.ErrorIs(t, err, session.ErrUnauthenticated)
	assert.Equal(t, int32(0), f.hits.Load())
}

func TestListSubmissions_Envelope(t *testing.T) {
	f := newFixture(t)
	var requestID string
	f.private("/api/v1/submissions", func(w http.ResponseWriter, r *http.Request) {
		requestID = r.Header.Get("X-Request-ID")
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status": "success",
			"data": []map[string]interface{}{
				{"_id": "s1", "teamName": "Rocket", "leader": map[string]string{"fullName": "A"}, "createdAt": "2025-03-01T09:00:00Z"},
				{"_id": "s2", "teamName": "Comet", "members": []map[string]string{{"fullName": "B"}}},
			},
		})
	})
	f.login(t)

	subs, err := f.client.ListSubmissions(context.Background())
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, "Rocket", subs[0].TeamName)
	assert.Equal(t, "A", subs[0].Leader.FullName)
	assert.Equal(t, 2, subs[1].TeamSize())
	assert.Len(t, requestID, 36)
}

func TestGuardedCall_ForbiddenEndsSession(t *testing.T) {
	f := newFixture(t)
	f.mux.HandleFunc("/api/v1/submissions/s1", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"message":"forbidden"}`))
	})
	f.login(t)

	_, err := f.client.GetSubmission(context.Background(), "s1")
	assert.ErrorIs(t, err, session.ErrSessionExpired)
	assert.False(t, f.guard.IsValid(context.Background()))

	f.guard.Wait()
	assert.Equal(t, int32(1), f.logouts.Load())
}

func TestGetMember_BareObjectWithStatus(t *testing.T) {
	f := newFixture(t)
	f.private("/api/v1/connect/m1", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"_id": "m1", "full_name": "Le C", "status": "accepted"})
	})
	f.login(t)

	m, err := f.client.GetMember(context.Background(), "m1")
	require.NoError(t, err)
	assert.Equal(t, "Le C", m.FullName)
	assert.Equal(t, model.StatusAccepted, m.Status)
}

func TestApplicationErrors(t *testing.T) {
	f := newFixture(t)
	f.mux.HandleFunc("/api/v1/posts/bad", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "post not found"})
	})
	f.mux.HandleFunc("/api/v1/posts/boom", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("<html>oops</html>"))
	})
	ctx := context.Background()

	var apiErr *Error
	_, err := f.client.GetPost(ctx, "bad")
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "post not found", apiErr.Message)

	_, err = f.client.GetPost(ctx, "boom")
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, "request failed: Internal Server Error", apiErr.Message)
}

func TestNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c := New(testAPIConfig(base), nil, &http.Client{Timeout: time.Second}).WithLogger(logger.Nop())
	_, err := c.ListPosts(context.Background())
	assert.ErrorIs(t, err, ErrNetwork)
}

func TestListPosts_BareArray(t *testing.T) {
	f := newFixture(t)
	f.mux.HandleFunc("/api/v1/posts", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		writeJSON(w, http.StatusOK, []map[string]interface{}{
			{"_id": "p1", "title": "Kick-off", "images": []map[string]string{{"url": "https://cdn/1.png", "fileId": "f1"}}},
		})
	})

	posts, err := f.client.ListPosts(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "https://cdn/1.png", posts[0].Cover())
}

func TestExportSubmissions(t *testing.T) {
	f := newFixture(t)
	f.private("/api/v1/submissions/export", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Disposition", `attachment; filename="scic-2025.xlsx"`)
		w.Write([]byte("PK-binary"))
	})
	f.login(t)

	var buf bytes.Buffer
	name, err := f.client.ExportSubmissions(context.Background(), &buf)
	require.NoError(t, err)
	assert.Equal(t, "scic-2025.xlsx", name)
	assert.Equal(t, "PK-binary", buf.String())
}

func TestExportName(t *testing.T) {
	assert.Equal(t, DefaultExportName, exportName(""))
	assert.Equal(t, DefaultExportName, exportName("attachment"))
	assert.Equal(t, "x.csv", exportName(`attachment; filename="../../x.csv"`))
}

func TestCreateSubmission_Multipart(t *testing.T) {
	f := newFixture(t)
	dir := t.TempDir()
	report := filepath.Join(dir, "report.pdf")
	extra1 := filepath.Join(dir, "demo.zip")
	extra2 := filepath.Join(dir, "poster.png")
	for _, p := range []string{report, extra1, extra2} {
		require.NoError(t, os.WriteFile(p, []byte("data:"+filepath.Base(p)), 0644))
	}

	f.mux.HandleFunc("/api/v1/submissions", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		assert.Equal(t, "Rocket", r.FormValue("teamName"))
		assert.Equal(t, "[]", r.FormValue("members"))
		assert.Empty(t, r.MultipartForm.Value["videoLink"])

		var leader model.Person
		require.NoError(t, json.Unmarshal([]byte(r.FormValue("leader")), &leader))
		assert.Equal(t, "0901234567", leader.Phone)

		reportFiles := r.MultipartForm.File["report"]
		require.Len(t, reportFiles, 1)
		assert.Equal(t, "report.pdf", reportFiles[0].Filename)
		assert.Equal(t, "application/pdf", reportFiles[0].Header.Get("Content-Type"))

		rf, err := reportFiles[0].Open()
		require.NoError(t, err)
		data, _ := io.ReadAll(rf)
		rf.Close()
		assert.Equal(t, "data:report.pdf", string(data))

		assert.Len(t, r.MultipartForm.File["attachments"], 2)

		writeJSON(w, http.StatusCreated, map[string]interface{}{"status": "success", "data": map[string]string{"_id": "s9", "teamName": "Rocket"}})
	})

	sub, err := f.client.CreateSubmission(context.Background(), form.Submission{
		TeamName:    "Rocket",
		ProjectName: "Smart Farm",
		Leader:      model.Person{FullName: "A", StudentID: "1", Email: "a@b.com", Phone: "0901234567"},
		Description: "desc",
		Report:      report,
		Attachments: []string{extra1, extra2},
	})
	require.NoError(t, err)
	assert.Equal(t, "s9", sub.ID)
}

func TestCreateSubmission_MissingFile(t *testing.T) {
	f := newFixture(t)
	_, err := f.client.CreateSubmission(context.Background(), form.Submission{Report: "/does/not/exist.pdf"})
	assert.Error(t, err)
	assert.Equal(t, int32(0), f.hits.Load())
}

func TestUpdatePost_Multipart(t *testing.T) {
	f := newFixture(t)
	img := filepath.Join(t.TempDir(), "new.png")
	require.NoError(t, os.WriteFile(img, []byte("\x89PNG\r\n\x1a\n"), 0644))

	f.private("/api/v1/posts/p1", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "Updated", r.FormValue("title"))
		assert.Equal(t, []string{"f1", "f2"}, r.MultipartForm.Value["removeImages"])
		assert.Equal(t, []string{"v1"}, r.MultipartForm.Value["removeVideos"])
		assert.Len(t, r.MultipartForm.File["images"], 1)
		writeJSON(w, http.StatusOK, map[string]string{"_id": "p1", "title": "Updated"})
	})
	f.login(t)

	p, err := f.client.UpdatePost(context.Background(), "p1", form.Post{Title: "Updated", Content: "Body"}, PostMedia{
		Images:       []string{img},
		RemoveImages: []string{"f1", "f2"},
		RemoveVideos: []string{"v1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Updated", p.Title)
}

func TestCreateAndDeletePost(t *testing.T) {
	f := newFixture(t)
	f.private("/api/v1/posts", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Empty(t, r.MultipartForm.Value["removeImages"])
		writeJSON(w, http.StatusCreated, map[string]string{"_id": "p2", "title": r.FormValue("title")})
	})
	f.private("/api/v1/posts/p2", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	})
	f.login(t)
	ctx := context.Background()

	p, err := f.client.CreatePost(ctx, form.Post{Title: "Hello", Content: "World"}, PostMedia{RemoveImages: []string{"ignored"}})
	require.NoError(t, err)
	assert.Equal(t, "Hello", p.Title)

	require.NoError(t, f.client.DeletePost(ctx, "p2"))
}

func TestUpdateMemberStatus(t *testing.T) {
	f := newFixture(t)
	f.private("/api/v1/connect/m1", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "rejected", body["status"])
		writeJSON(w, http.StatusOK, map[string]interface{}{"status": "success", "data": nil})
	})
	f.login(t)

	m, err := f.client.UpdateMemberStatus(context.Background(), "m1", model.StatusRejected)
	require.NoError(t, err)
	assert.Equal(t, "m1", m.ID)
	assert.Equal(t, model.StatusRejected, m.Status)
}

func TestListAcceptedMembers(t *testing.T) {
	f := newFixture(t)
	f.mux.HandleFunc("/api/v1/connect", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "accepted", r.URL.Query().Get("status"))
		writeJSON(w, http.StatusOK, map[string]interface{}{"status": "success", "data": []map[string]string{
			{"_id": "1", "status": "accepted"},
			{"_id": "2", "status": "pending"},
		}})
	})

	members, err := f.client.ListAcceptedMembers(context.Background())
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "1", members[0].ID)
}

func TestRegister(t *testing.T) {
	f := newFixture(t)
	f.mux.HandleFunc("/api/v1/connect", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Le C", body["full_name"])
		assert.Equal(t, []interface{}{}, body["social_links"])
		writeJSON(w, http.StatusCreated, map[string]interface{}{"status": "success", "data": map[string]string{"_id": "m7", "full_name": "Le C", "status": "pending"}})
	})

	m, err := f.client.Register(context.Background(), form.Registration{FullName: "Le C", Email: "c@d.com", Skills: []string{"IoT"}})
	require.NoError(t, err)
	assert.Equal(t, "m7", m.ID)
	assert.Equal(t, model.StatusPending, m.Status)
}

func TestLogout_ClearsCookieAndSession(t *testing.T) {
	f := newFixture(t)
	f.private("/api/v1/posts/p1", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	f.login(t)
	ctx := context.Background()

	require.NoError(t, f.client.DeletePost(ctx, "p1"))

	f.client.Logout(ctx)
	f.guard.Wait()

	err := f.client.DeletePost(ctx, "p1")
	assert.ErrorIs(t, err, session.ErrUnauthenticated)
}
