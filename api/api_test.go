package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vibeworks/inkwell"
	"github.com/vibeworks/inkwell/internal/config"
	"github.com/vibeworks/inkwell/sudoapi"
)

const (
	adminToken = "admin-secret"
	draftKey   = "draft-secret"
)

type memStore struct {
	mu    sync.Mutex
	posts []*inkwell.Post
}

func (m *memStore) find(f inkwell.PostFilter) []*inkwell.Post {
	var out []*inkwell.Post
	for _, p := range m.posts {
		if f.ID != nil && p.ID != *f.ID {
			continue
		}
		if f.Slug != nil && p.Slug != *f.Slug {
			continue
		}
		if f.Status != nil && p.Status != *f.Status {
			continue
		}
		if f.Type != nil && p.Type != *f.Type {
			continue
		}
		if f.Hero != nil && p.Hero != *f.Hero {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	return out
}

func (m *memStore) Post(ctx context.Context, f inkwell.PostFilter) (*inkwell.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if posts := m.find(f); len(posts) > 0 {
		return posts[0], nil
	}
	return nil, nil
}

func (m *memStore) Posts(ctx context.Context, f inkwell.PostFilter) ([]*inkwell.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	posts := m.find(f)
	if f.Offset < len(posts) {
		posts = posts[f.Offset:]
	} else {
		posts = nil
	}
	if f.Limit > 0 && len(posts) > f.Limit {
		posts = posts[:f.Limit]
	}
	return posts, nil
}

func (m *memStore) CountPosts(ctx context.Context, f inkwell.PostFilter) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.find(f)), nil
}

func (m *memStore) CreatePost(ctx context.Context, in inkwell.PostInput, html string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := len(m.posts) + 1
	if in.Hero {
		for _, p := range m.posts {
			p.Hero = false
		}
	}
	m.posts = append(m.posts, &inkwell.Post{
		ID: id, UpdatedAt: time.Unix(int64(id), 0),
		Title: in.Title, Slug: in.Slug, Content: in.Content, HTMLContent: html,
		Excerpt: in.Excerpt, Status: in.Status, Type: in.Type, ReadTime: in.ReadTime,
		Hero: in.Hero,
	})
	return id, nil
}

func (m *memStore) UpdatePost(ctx context.Context, id int, upd inkwell.PostUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.posts {
		if p.ID != id {
			continue
		}
		if upd.Title != nil {
			p.Title = *upd.Title
		}
		if upd.Status != nil {
			p.Status = *upd.Status
		}
		if upd.Content != nil {
			p.Content = *upd.Content
			p.HTMLContent = *upd.HTMLContent
		}
		p.UpdatedAt = p.UpdatedAt.Add(time.Minute)
		return nil
	}
	return inkwell.ErrNotFound
}

func (m *memStore) DeletePost(ctx context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, p := range m.posts {
		if p.ID == id {
			m.posts = append(m.posts[:i], m.posts[i+1:]...)
		}
	}
	return nil
}

type memImages struct{}

func (memImages) UploadImage(ctx context.Context, file inkwell.Upload, maxSize int64) (string, error) {
	data, err := io.ReadAll(file.Reader)
	if err != nil {
		return "", err
	}
	if int64(len(data)) > maxSize {
		return "", inkwell.Statusf(413, "Image is too large")
	}
	return "https://cdn.example.com/images/" + file.Name, nil
}

func (memImages) DeleteImage(ctx context.Context, key string) error { return nil }

type envelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
}

func newServer(t *testing.T) (*httptest.Server, *memStore) {
	t.Helper()
	store := &memStore{}
	base, err := sudoapi.New(store, memImages{})
	require.NoError(t, err)
	t.Cleanup(base.Close)
	srv := httptest.NewServer(New(base, config.API{AdminToken: adminToken, DraftAPIKey: draftKey}).Handler())
	t.Cleanup(srv.Close)
	return srv, store
}

func do(t *testing.T, srv *httptest.Server, method, path string, body io.Reader, headers map[string]string) (int, envelope, string) {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, body)
	require.NoError(t, err)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var env envelope
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(raw, &env))
	}
	return resp.StatusCode, env, string(raw)
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	buf, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(buf)
}

var (
	adminJSON = map[string]string{"Authorization": "Bearer " + adminToken, "Content-Type": "application/json"}
	draftJSON = map[string]string{"X-API-Key": draftKey, "Content-Type": "application/json"}
)

func TestCreateAndReadPost(t *testing.T) {
	srv, _ := newServer(t)

	code, env, _ := do(t, srv, "POST", "/api/posts", jsonBody(t, map[string]any{
		"title":   "Hello World",
		"content": "# Title\n\n**bold** and `code`\n\n- item one\n- item two",
		"status":  "published",
	}), adminJSON)
	require.Equal(t, http.StatusCreated, code, string(env.Data))
	assert.Equal(t, "success", env.Status)

	var created inkwell.Post
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "hello-world", created.Slug)

	code, env, _ = do(t, srv, "GET", "/api/posts/hello-world", nil, nil)
	require.Equal(t, 200, code)
	var post inkwell.Post
	require.NoError(t, json.Unmarshal(env.Data, &post))
	assert.Equal(t, `<h1 id="title">Title</h1><p><strong>bold</strong> and <code>code</code></p><ul><li>item one</li><li>item two</li></ul>`, post.HTMLContent)

	code, _, raw := do(t, srv, "GET", "/api/posts/hello-world/markdown", nil, nil)
	require.Equal(t, 200, code)
	assert.Contains(t, raw, "# Title")
	assert.Contains(t, raw, "- item one")

	code, env, _ = do(t, srv, "GET", "/api/posts/nope", nil, nil)
	assert.Equal(t, 404, code)
	assert.Equal(t, "error", env.Status)
}

func TestHeroPost(t *testing.T) {
	srv, _ := newServer(t)

	code, _, _ := do(t, srv, "GET", "/api/hero", nil, nil)
	assert.Equal(t, 404, code)

	for _, title := range []string{"Old Hero", "New Hero"} {
		code, env, _ := do(t, srv, "POST", "/api/posts", jsonBody(t, map[string]any{
			"title":   title,
			"content": "Body of " + title,
			"status":  "published",
			"hero":    true,
		}), adminJSON)
		require.Equal(t, http.StatusCreated, code, string(env.Data))
	}

	code, env, _ := do(t, srv, "GET", "/api/hero", nil, nil)
	require.Equal(t, 200, code)
	var hero inkwell.Post
	require.NoError(t, json.Unmarshal(env.Data, &hero))
	assert.Equal(t, "new-hero", hero.Slug)
	assert.True(t, hero.Hero)
	assert.Contains(t, hero.HTMLContent, "Body of New Hero")
}

func TestCreatePostForm(t *testing.T) {
	srv, _ := newServer(t)
	form := url.Values{"title": {"Form Post"}, "content": {"<p>hi</p>"}, "tags": {"a", "b"}}
	code, env, _ := do(t, srv, "POST", "/api/posts", strings.NewReader(form.Encode()), map[string]string{
		"Authorization": "Bearer " + adminToken,
		"Content-Type":  "application/x-www-form-urlencoded",
	})
	require.Equal(t, http.StatusCreated, code, string(env.Data))
	var post inkwell.Post
	require.NoError(t, json.Unmarshal(env.Data, &post))
	assert.Equal(t, "form-post", post.Slug)
	assert.Equal(t, "<p>hi</p>", post.HTMLContent)
}

func TestAuth(t *testing.T) {
	srv, _ := newServer(t)
	body := func() io.Reader { return jsonBody(t, map[string]any{"title": "T", "content": "x"}) }

	tests := []struct {
		name    string
		method  string
		path    string
		headers map[string]string
		want    int
	}{
		{"create no token", "POST", "/api/posts", map[string]string{"Content-Type": "application/json"}, 401},
		{"create wrong token", "POST", "/api/posts", map[string]string{"Authorization": "Bearer nope"}, 401},
		{"create with draft key", "POST", "/api/posts", draftJSON, 401},
		{"draft no key", "POST", "/api/posts/draft", map[string]string{"Content-Type": "application/json"}, 401},
		{"draft admin token", "POST", "/api/posts/draft", adminJSON, 401},
		{"upload no token", "POST", "/api/upload/image", nil, 401},
		{"update no token", "PUT", "/api/posts/1", nil, 401},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, env, _ := do(t, srv, tt.method, tt.path, body(), tt.headers)
			assert.Equal(t, tt.want, code)
			assert.Equal(t, "error", env.Status)
		})
	}
}

func TestSubmitDraft(t *testing.T) {
	srv, _ := newServer(t)

	payload := map[string]any{
		"title":   "External Draft",
		"content": "Intro paragraph\n\n<script>alert(1)</script>",
		"status":  "published",
	}
	code, env, _ := do(t, srv, "POST", "/api/posts/draft", jsonBody(t, payload), draftJSON)
	require.Equal(t, http.StatusCreated, code, string(env.Data))
	var post inkwell.Post
	require.NoError(t, json.Unmarshal(env.Data, &post))
	assert.Equal(t, inkwell.StatusDraft, post.Status)
	assert.NotContains(t, post.HTMLContent, "<script")

	code, env, _ = do(t, srv, "POST", "/api/posts/draft", jsonBody(t, payload), draftJSON)
	assert.Equal(t, http.StatusConflict, code)
	assert.JSONEq(t, `"A post with this slug already exists"`, string(env.Data))

	// Drafts stay hidden from the public
	code, _, _ = do(t, srv, "GET", "/api/posts/external-draft", nil, nil)
	assert.Equal(t, 404, code)
	code, _, _ = do(t, srv, "GET", "/api/posts/external-draft", nil, map[string]string{"Authorization": "Bearer " + adminToken})
	assert.Equal(t, 200, code)

	code, _, _ = do(t, srv, "POST", "/api/posts/draft", jsonBody(t, map[string]any{"title": "No body"}), draftJSON)
	assert.Equal(t, 400, code)

	code, _, _ = do(t, srv, "POST", "/api/posts/draft", strings.NewReader("{"), draftJSON)
	assert.Equal(t, 400, code)
}

func TestListPosts(t *testing.T) {
	srv, _ := newServer(t)
	for _, p := range []map[string]any{
		{"title": "One", "content": "x", "status": "published", "type": "guide"},
		{"title": "Two", "content": "x", "status": "published"},
		{"title": "Three", "content": "x"},
	} {
		code, env, _ := do(t, srv, "POST", "/api/posts", jsonBody(t, p), adminJSON)
		require.Equal(t, http.StatusCreated, code, string(env.Data))
	}

	type listing struct {
		Posts []inkwell.Post `json:"posts"`
		Count int            `json:"count"`
	}
	list := func(query string, headers map[string]string) listing {
		code, env, _ := do(t, srv, "GET", "/api/posts"+query, nil, headers)
		require.Equal(t, 200, code, string(env.Data))
		var l listing
		require.NoError(t, json.Unmarshal(env.Data, &l))
		return l
	}

	assert.Equal(t, 2, list("", nil).Count)
	assert.Equal(t, 3, list("", adminJSON).Count)
	assert.Equal(t, 1, list("?type=guide", nil).Count)
	l := list("?limit=1", nil)
	assert.Equal(t, 2, l.Count)
	assert.Len(t, l.Posts, 1)

	code, _, _ := do(t, srv, "GET", "/api/posts?type=essay", nil, nil)
	assert.Equal(t, 400, code)
	code, _, _ = do(t, srv, "GET", "/api/posts?limit=1000", nil, nil)
	assert.Equal(t, 400, code)
	code, _, _ = do(t, srv, "GET", "/api/posts?limit=abc", nil, nil)
	assert.Equal(t, 400, code)
}

func TestUpdateAndDeletePost(t *testing.T) {
	srv, _ := newServer(t)
	code, env, _ := do(t, srv, "POST", "/api/posts", jsonBody(t, map[string]any{"title": "Edit Me", "content": "old"}), adminJSON)
	require.Equal(t, http.StatusCreated, code, string(env.Data))

	code, env, _ = do(t, srv, "PUT", "/api/posts/1", jsonBody(t, map[string]any{
		"content": `<p>new <img src="x" onerror="alert(1)"></p>`,
		"status":  "published",
	}), adminJSON)
	require.Equal(t, 200, code, string(env.Data))
	var post inkwell.Post
	require.NoError(t, json.Unmarshal(env.Data, &post))
	assert.Equal(t, inkwell.StatusPublished, post.Status)
	assert.NotContains(t, post.HTMLContent, "onerror")

	code, _, _ = do(t, srv, "PUT", "/api/posts/99", jsonBody(t, map[string]any{"title": "x"}), adminJSON)
	assert.Equal(t, 404, code)
	code, _, _ = do(t, srv, "PUT", "/api/posts/abc", jsonBody(t, map[string]any{"title": "x"}), adminJSON)
	assert.Equal(t, 400, code)
	code, _, _ = do(t, srv, "PUT", "/api/posts/1", jsonBody(t, map[string]any{"title": " "}), adminJSON)
	assert.Equal(t, 400, code)

	code, _, _ = do(t, srv, "DELETE", "/api/posts/1", nil, adminJSON)
	assert.Equal(t, 200, code)
	code, _, _ = do(t, srv, "GET", "/api/posts/edit-me", nil, adminJSON)
	assert.Equal(t, 404, code)
}

func TestUploadImage(t *testing.T) {
	srv, _ := newServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("image", "cover.png")
	require.NoError(t, err)
	_, err = fw.Write([]byte("\x89PNG\r\n\x1a\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	code, env, _ := do(t, srv, "POST", "/api/upload/image", &buf, map[string]string{
		"Authorization": "Bearer " + adminToken,
		"Content-Type":  mw.FormDataContentType(),
	})
	require.Equal(t, 200, code, string(env.Data))
	assert.JSONEq(t, `{"url": "https://cdn.example.com/images/cover.png"}`, string(env.Data))

	var empty bytes.Buffer
	mw = multipart.NewWriter(&empty)
	require.NoError(t, mw.WriteField("other", "x"))
	require.NoError(t, mw.Close())
	code, _, _ = do(t, srv, "POST", "/api/upload/image", &empty, map[string]string{
		"Authorization": "Bearer " + adminToken,
		"Content-Type":  mw.FormDataContentType(),
	})
	assert.Equal(t, 400, code)
}

func TestUnknownEndpoint(t *testing.T) {
	srv, _ := newServer(t)
	code, env, _ := do(t, srv, "GET", "/api/nothing/here", nil, nil)
	assert.Equal(t, 404, code)
	assert.Equal(t, "error", env.Status)
}
