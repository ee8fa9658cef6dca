package gist

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/gistnote/internal/apperr"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

type gistRequest struct {
	Public *bool `json:"public"`
	Files  map[string]struct {
		Content string `json:"content"`
	} `json:"files"`
}

func newTestClient(t *testing.T, token string, h http.HandlerFunc) (*Client, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		h(w, r)
	}))
	t.Cleanup(srv.Close)

	base, err := ParseBaseURL(srv.URL)
	require.NoError(t, err)
	return NewClient(staticToken(token), WithBaseURL(base), WithHTTPClient(srv.Client())), &calls
}

func TestCreate_SendsPrivateSingleFileGist(t *testing.T) {
	var got gistRequest
	var auth, method, path string
	c, calls := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		method, path = r.Method, r.URL.Path
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"abc123","html_url":"https://gist.example/abc123"}`))
	})

	meta, err := c.Create(context.Background(), "notes.md", "hello")
	require.NoError(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
	assert.Equal(t, http.MethodPost, method)
	assert.Equal(t, "/gists", path)
	assert.Equal(t, "Bearer tok", auth)
	require.NotNil(t, got.Public)
	assert.False(t, *got.Public)
	require.Len(t, got.Files, 1)
	assert.Equal(t, "hello", got.Files["notes.md"].Content)

	assert.Equal(t, "abc123", meta.ID)
	assert.Equal(t, "https://gist.example/abc123", meta.URL)
}

func TestUpdate_TargetsExistingGist(t *testing.T) {
	var got gistRequest
	var method, path string
	c, _ := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"id":"xyz","html_url":"https://gist.example/xyz"}`))
	})

	meta, err := c.Update(context.Background(), "xyz", "notes.md", "v2")
	require.NoError(t, err)

	assert.Equal(t, http.MethodPatch, method)
	assert.Equal(t, "/gists/xyz", path)
	assert.Equal(t, "v2", got.Files["notes.md"].Content)
	assert.Equal(t, "xyz", meta.ID)
}

func TestCreate_MissingTokenMakesNoRequest(t *testing.T) {
	c, calls := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	_, err := c.Create(context.Background(), "notes.md", "hello")
	require.ErrorIs(t, err, apperr.ErrMissingCredential)
	_, err = c.Update(context.Background(), "id", "notes.md", "hello")
	require.ErrorIs(t, err, apperr.ErrMissingCredential)
	assert.Equal(t, int32(0), atomic.LoadInt32(calls))
}

func TestCreate_NonSuccessIsRemoteError(t *testing.T) {
	c, _ := newTestClient(t, "bad", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Bad credentials"}`))
	})

	_, err := c.Create(context.Background(), "notes.md", "hello")
	require.ErrorIs(t, err, apperr.ErrRemote)
	var re *apperr.RemoteError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "create", re.Op)
}

func TestCreate_MalformedResponseIsRemoteError(t *testing.T) {
	c, _ := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"abc"}`))
	})

	_, err := c.Create(context.Background(), "notes.md", "hello")
	require.ErrorIs(t, err, apperr.ErrRemote)
}

func TestCreate_ConnectionFailureIsRemoteError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base, err := ParseBaseURL(srv.URL)
	require.NoError(t, err)
	srv.Close()

	c := NewClient(staticToken("tok"), WithBaseURL(base))
	_, err = c.Create(context.Background(), "notes.md", "hello")
	require.ErrorIs(t, err, apperr.ErrRemote)
}

func TestCreate_ReadsTokenPerCall(t *testing.T) {
	var auths []string
	tok := &mutableToken{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auths = append(auths, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"html_url":"https://gist.example/a"}`))
	}))
	defer srv.Close()
	base, _ := ParseBaseURL(srv.URL)
	c := NewClient(tok, WithBaseURL(base))

	tok.v = "one"
	_, err := c.Create(context.Background(), "a.md", "x")
	require.NoError(t, err)
	tok.v = "two"
	_, err = c.Create(context.Background(), "a.md", "x")
	require.NoError(t, err)

	assert.Equal(t, []string{"Bearer one", "Bearer two"}, auths)
}

type mutableToken struct{ v string }

func (m *mutableToken) Token() string { return m.v }

func TestIDFromURL(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "https://gist.github.com/abc123", want: "abc123"},
		{in: "https://gist.github.com/user/abc123/", want: "abc123"},
		{in: "https://gist.example/abc123", want: "abc123"},
		{in: "https://gist.example/", wantErr: true},
		{in: "https://gist.example", wantErr: true},
	}
	for _, tc := range cases {
		got, err := IDFromURL(tc.in)
		if tc.wantErr {
			assert.Error(t, err, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestParseBaseURL(t *testing.T) {
	u, err := ParseBaseURL("https://ghe.example/api/v3")
	require.NoError(t, err)
	assert.Equal(t, "https://ghe.example/api/v3/", u.String())

	u, err = ParseBaseURL("")
	require.NoError(t, err)
	assert.Nil(t, u)

	_, err = ParseBaseURL("not-a-url")
	assert.Error(t, err)
}
