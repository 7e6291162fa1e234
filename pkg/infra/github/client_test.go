package github_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/codefreeze/pkg/domain/interfaces"
	"github.com/m-mizutani/codefreeze/pkg/domain/types"
	githubinfra "github.com/m-mizutani/codefreeze/pkg/infra/github"
)

// fakeGitHub serves the subset of the GitHub REST API the client uses
type fakeGitHub struct {
	mu       sync.Mutex
	branches map[string]string // name -> sha
	files    map[string]string // ref + ":" + path -> content
	requests []recordedRequest
	status   int // forced status for every request when non-zero
}

type recordedRequest struct {
	Method string
	Path   string
	Body   map[string]any
}

func newFakeGitHub() *fakeGitHub {
	return &fakeGitHub{
		branches: map[string]string{"master": "base-sha"},
		files:    map[string]string{},
	}
}

func (f *fakeGitHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var body map[string]any
	if raw, _ := io.ReadAll(r.Body); len(raw) > 0 {
		_ = json.Unmarshal(raw, &body)
	}
	f.requests = append(f.requests, recordedRequest{Method: r.Method, Path: r.URL.Path, Body: body})

	if f.status != 0 {
		writeJSON(w, f.status, map[string]string{"message": http.StatusText(f.status)})
		return
	}

	const prefix = "/repos/owner/repo/"
	path := r.URL.Path
	switch {
	case r.Method == http.MethodGet && hasPrefix(path, prefix+"branches/"):
		name := path[len(prefix+"branches/"):]
		sha, ok := f.branches[name]
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "Branch not found"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"name": name, "commit": map[string]string{"sha": sha}})

	case r.Method == http.MethodPost && path == prefix+"git/refs":
		ref, _ := body["ref"].(string)
		sha, _ := body["sha"].(string)
		name := ref[len("refs/heads/"):]
		if _, exists := f.branches[name]; exists {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"message": "Reference already exists"})
			return
		}
		f.branches[name] = sha
		writeJSON(w, http.StatusCreated, map[string]any{"ref": ref, "object": map[string]string{"sha": sha}})

	case hasPrefix(path, prefix+"contents/"):
		filePath := path[len(prefix+"contents/"):]
		f.serveContents(w, r, filePath, body)

	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
	}
}

func (f *fakeGitHub) serveContents(w http.ResponseWriter, r *http.Request, filePath string, body map[string]any) {
	switch r.Method {
	case http.MethodGet:
		ref := r.URL.Query().Get("ref")
		content, ok := f.files[ref+":"+filePath]
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"type":     "file",
			"path":     filePath,
			"sha":      "sha-of-" + filePath,
			"encoding": "base64",
			"content":  base64.StdEncoding.EncodeToString([]byte(content)),
		})

	case http.MethodPut:
		branch, _ := body["branch"].(string)
		encoded, _ := body["content"].(string)
		decoded, _ := base64.StdEncoding.DecodeString(encoded)
		f.files[branch+":"+filePath] = string(decoded)
		writeJSON(w, http.StatusOK, map[string]any{
			"content": map[string]string{"path": filePath},
			"commit":  map[string]string{"sha": "new-commit"},
		})
	}
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func setup(t *testing.T) (*fakeGitHub, interfaces.Repository) {
	t.Helper()
	fake := newFakeGitHub()
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	client, err := githubinfra.NewClient("test-token", "owner/repo", githubinfra.WithBaseURL(server.URL))
	gt.NoError(t, err)
	return fake, client
}

func TestNewClient_Validation(t *testing.T) {
	tests := []struct {
		name       string
		token      string
		repository string
	}{
		{name: "missing token", token: "", repository: "owner/repo"},
		{name: "no slash", token: "t", repository: "repo"},
		{name: "empty owner", token: "t", repository: "/repo"},
		{name: "too many segments", token: "t", repository: "a/b/c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := githubinfra.NewClient(tt.token, tt.repository)
			gt.Error(t, err)
			gt.True(t, errors.Is(err, types.ErrConfiguration))
		})
	}
}

func TestClient_BranchExists(t *testing.T) {
	ctx := context.Background()
	_, client := setup(t)

	exists, err := client.BranchExists(ctx, "master")
	gt.NoError(t, err)
	gt.True(t, exists)

	exists, err = client.BranchExists(ctx, "2024-03-01/1.2")
	gt.NoError(t, err)
	gt.False(t, exists)
}

func TestClient_CreateBranch(t *testing.T) {
	ctx := context.Background()
	fake, client := setup(t)

	gt.NoError(t, client.CreateBranch(ctx, "2024-03-01/1.2", "master"))
	gt.Value(t, fake.branches["2024-03-01/1.2"]).Equal("base-sha")

	created := fake.requests[len(fake.requests)-1]
	gt.Value(t, created.Method).Equal(http.MethodPost)
	gt.Value(t, created.Path).Equal("/repos/owner/repo/git/refs")
	gt.Value(t, created.Body["ref"]).Equal(any("refs/heads/2024-03-01/1.2"))
	gt.Value(t, created.Body["sha"]).Equal(any("base-sha"))

	err := client.CreateBranch(ctx, "2024-03-01/1.2", "master")
	gt.True(t, errors.Is(err, types.ErrData))

	err = client.CreateBranch(ctx, "x/1.0", "no-such-base")
	gt.True(t, errors.Is(err, types.ErrRemote))
}

func TestClient_ReadFileAtRef(t *testing.T) {
	ctx := context.Background()
	fake, client := setup(t)
	fake.files["2024-01-01/1.0:featureflags/FF.csv"] = "FLAG_A,ON\n"

	content, found, err := client.ReadFileAtRef(ctx, "featureflags/FF.csv", "2024-01-01/1.0")
	gt.NoError(t, err)
	gt.True(t, found)
	gt.Value(t, string(content)).Equal("FLAG_A,ON\n")

	content, found, err = client.ReadFileAtRef(ctx, "featureflags/FF.csv", "missing/0.1")
	gt.NoError(t, err)
	gt.False(t, found)
	gt.Value(t, len(content)).Equal(0)
}

func TestClient_CommitFile(t *testing.T) {
	ctx := context.Background()

	t.Run("updates existing file with its sha", func(t *testing.T) {
		fake, client := setup(t)
		fake.files["master:release.plist"] = "1.1\n"

		gt.NoError(t, client.CommitFile(ctx, "release.plist", []byte("1.2\n"), "master", "Update current release to x/1.2"))
		gt.Value(t, fake.files["master:release.plist"]).Equal("1.2\n")

		last := fake.requests[len(fake.requests)-1]
		gt.Value(t, last.Method).Equal(http.MethodPut)
		gt.Value(t, last.Body["sha"]).Equal("sha-of-release.plist")
		gt.Value(t, last.Body["message"]).Equal("Update current release to x/1.2")
	})

	t.Run("creates missing file without sha", func(t *testing.T) {
		fake, client := setup(t)

		gt.NoError(t, client.CommitFile(ctx, "release.plist", []byte("1.0\n"), "master", "init"))
		last := fake.requests[len(fake.requests)-1]
		_, hasSHA := last.Body["sha"]
		gt.False(t, hasSHA)
	})
}

func TestClient_RemoteFailures(t *testing.T) {
	ctx := context.Background()
	fake, client := setup(t)
	fake.status = http.StatusUnauthorized

	_, err := client.BranchExists(ctx, "master")
	gt.True(t, errors.Is(err, types.ErrRemote))

	_, _, err = client.ReadFileAtRef(ctx, "release.plist", "master")
	gt.True(t, errors.Is(err, types.ErrRemote))

	err = client.CommitFile(ctx, "release.plist", []byte("1.0"), "master", "msg")
	gt.True(t, errors.Is(err, types.ErrRemote))
}

func TestClient_WithRealAPI(t *testing.T) {
	token := os.Getenv("TEST_GITHUB_ACCESS_TOKEN")
	repository := os.Getenv("TEST_GITHUB_REPOSITORY")
	if token == "" || repository == "" {
		t.Skip("TEST_GITHUB_ACCESS_TOKEN and TEST_GITHUB_REPOSITORY are not set")
	}

	client, err := githubinfra.NewClient(token, repository)
	gt.NoError(t, err)

	exists, err := client.BranchExists(context.Background(), "codefreeze-test-branch-that-does-not-exist")
	gt.NoError(t, err)
	gt.False(t, exists)
}
