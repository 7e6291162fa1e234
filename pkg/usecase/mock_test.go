package usecase_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/codefreeze/pkg/usecase"
)

// MockRepository is a mock implementation of interfaces.Repository. Branches
// and files are kept in memory; func fields override the default behavior.
type MockRepository struct {
	branches map[string]bool
	files    map[string][]byte // key: ref + ":" + path

	branchExistsFunc func(ctx context.Context, name string) (bool, error)
	createBranchFunc func(ctx context.Context, name, baseRef string) error
	commitFileFunc   func(ctx context.Context, path string, content []byte, branch, message string) error

	calls   []string
	commits []MockCommit
}

type MockCommit struct {
	Path    string
	Content []byte
	Branch  string
	Message string
}

func newMockRepository() *MockRepository {
	return &MockRepository{
		branches: map[string]bool{"master": true},
		files:    map[string][]byte{},
	}
}

func (m *MockRepository) putFile(ref, path string, content string) {
	m.branches[ref] = true
	m.files[ref+":"+path] = []byte(content)
}

func (m *MockRepository) BranchExists(ctx context.Context, name string) (bool, error) {
	m.calls = append(m.calls, "BranchExists:"+name)
	if m.branchExistsFunc != nil {
		return m.branchExistsFunc(ctx, name)
	}
	return m.branches[name], nil
}

func (m *MockRepository) CreateBranch(ctx context.Context, name, baseRef string) error {
	m.calls = append(m.calls, "CreateBranch:"+name)
	if m.createBranchFunc != nil {
		return m.createBranchFunc(ctx, name, baseRef)
	}
	m.branches[name] = true
	return nil
}

func (m *MockRepository) CommitFile(ctx context.Context, path string, content []byte, branch, message string) error {
	m.calls = append(m.calls, "CommitFile:"+path)
	if m.commitFileFunc != nil {
		return m.commitFileFunc(ctx, path, content, branch, message)
	}
	m.commits = append(m.commits, MockCommit{Path: path, Content: content, Branch: branch, Message: message})
	m.files[branch+":"+path] = content
	return nil
}

func (m *MockRepository) ReadFileAtRef(ctx context.Context, path, ref string) ([]byte, bool, error) {
	m.calls = append(m.calls, "ReadFileAtRef:"+ref+":"+path)
	content, ok := m.files[ref+":"+path]
	return content, ok, nil
}

// MockNotifier records posted messages
type MockNotifier struct {
	messages []string
	err      error
}

func (m *MockNotifier) Notify(ctx context.Context, text string) error {
	if m.err != nil {
		return m.err
	}
	m.messages = append(m.messages, text)
	return nil
}

const testPlist = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>CFBundleShortVersionString</key>
	<string>1.1</string>
	<key>SLKReleaseName</key>
	<string>2024-02-01</string>
</dict>
</plist>
`

const testVersions = `name,version
2024-01-01,1.0
2024-02-01,1.1
2024-03-01,1.2
`

const testFlags = "FLAG_A,ON\nFLAG_C,ON\n"

// setupWorkTree writes a release repository checkout into a temp dir
func setupWorkTree(t *testing.T, files map[string]string) usecase.Settings {
	t.Helper()

	settings := usecase.DefaultSettings()
	settings.WorkDir = t.TempDir()

	defaults := map[string]string{
		settings.VersionsFile:   testVersions,
		settings.DescriptorFile: testPlist,
		settings.FlagsFile:      testFlags,
	}
	for path, content := range files {
		defaults[path] = content
	}

	for path, content := range defaults {
		full := filepath.Join(settings.WorkDir, path)
		gt.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
		gt.NoError(t, os.WriteFile(full, []byte(content), 0644))
	}

	return settings
}

// prepare builds a release context over a temp work tree and mock remote
func prepare(t *testing.T, repo *MockRepository, files map[string]string) *usecase.ReleaseContext {
	t.Helper()
	settings := setupWorkTree(t, files)
	orch := usecase.NewOrchestrator(usecase.NewRegistry(), repo, settings)
	rctx, err := orch.Prepare(context.Background())
	gt.NoError(t, err)
	return rctx
}
