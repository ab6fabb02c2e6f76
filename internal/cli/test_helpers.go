package cli

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"e2egen/internal/config"
	"e2egen/internal/output"
)

// testApp is an App backed by an in-memory filesystem with captured output.
type testApp struct {
	*App
	out    *bytes.Buffer
	stderr *bytes.Buffer
}

// newTestApp creates an [App] with default config, a MemMapFs and buffers
// for printer and stderr output.
func newTestApp(t *testing.T) *testApp {
	t.Helper()

	out := &bytes.Buffer{}
	return &testApp{
		App: &App{
			Config:  config.DefaultConfig(),
			Printer: output.NewPrinterWithWriter(out),
			Logger:  log.New(io.Discard),
			Fs:      afero.NewMemMapFs(),
		},
		out:    out,
		stderr: &bytes.Buffer{},
	}
}

// run executes the CLI with args against the test app.
func (a *testApp) run(args ...string) ExecuteResult {
	return run(context.Background(), a.App, args, a.stderr)
}

// writeFile creates path with content in the test app's filesystem.
func (a *testApp) writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, a.Fs.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, afero.WriteFile(a.Fs, path, []byte(content), 0644))
}

// readFile returns the content of path in the test app's filesystem.
func (a *testApp) readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := afero.ReadFile(a.Fs, path)
	require.NoError(t, err)
	return string(data)
}

// exists reports whether path exists in the test app's filesystem.
func (a *testApp) exists(t *testing.T, path string) bool {
	t.Helper()
	ok, err := afero.Exists(a.Fs, path)
	require.NoError(t, err)
	return ok
}
