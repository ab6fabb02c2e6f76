package generator

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"e2egen/internal/output"
	"e2egen/internal/workflow"
)

const outDir = ".github/workflows"

// countingFs counts write opens per path. The failAt-th write open of
// failPath fails with ENOSPC.
type countingFs struct {
	afero.Fs
	failPath string
	failAt   int
	opens    map[string]int
}

func newCountingFs(failPath string, failAt int) *countingFs {
	return &countingFs{Fs: afero.NewMemMapFs(), failPath: failPath, failAt: failAt, opens: map[string]int{}}
}

func (f *countingFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if flag&(os.O_WRONLY|os.O_RDWR) != 0 {
		f.opens[name]++
		if name == f.failPath && f.opens[name] == f.failAt {
			return nil, &os.PathError{Op: "open", Path: name, Err: syscall.ENOSPC}
		}
	}
	return f.Fs.OpenFile(name, flag, perm)
}

func newRenderer(t *testing.T) *workflow.Renderer {
	t.Helper()
	variant, err := workflow.Preset(workflow.VariantDefault)
	require.NoError(t, err)
	r, err := workflow.NewRenderer(workflow.DefaultJob(), variant)
	require.NoError(t, err)
	return r
}

func setupGenerator(t *testing.T, fs afero.Fs, opts Options) (*Generator, *bytes.Buffer) {
	t.Helper()
	buf := &bytes.Buffer{}
	if opts.OutputDir == "" {
		opts.OutputDir = outDir
	}
	return New(fs, newRenderer(t), output.NewPrinterWithWriter(buf), nil, opts), buf
}

func readFile(t *testing.T, fs afero.Fs, path string) string {
	t.Helper()
	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	return string(data)
}

func listDir(t *testing.T, fs afero.Fs, dir string) []string {
	t.Helper()
	infos, err := afero.ReadDir(fs, dir)
	require.NoError(t, err)
	names := make([]string, len(infos))
	for i, info := range infos {
		names[i] = info.Name()
	}
	return names
}

func TestGenerator_Generate_Login(t *testing.T) {
	fs := afero.NewMemMapFs()
	g, buf := setupGenerator(t, fs, Options{Strict: true})

	err := g.Generate(context.Background(), []string{"login"})
	require.NoError(t, err)

	content := readFile(t, fs, filepath.Join(outDir, "login.yml"))
	assert.Contains(t, content, "name: e2etest-login\n")
	assert.Contains(t, content,
		"run: go test -timeout 240s -run ^login$ github.com/brevdev/brev-cli/e2etest/setup\n")
	assert.Equal(t, "Generated e2e-login.yml\n", buf.String())

	want, err := newRenderer(t).Render("login")
	require.NoError(t, err)
	assert.Equal(t, string(want), content)
}

func TestGenerator_Generate_Identifiers(t *testing.T) {
	tests := []struct {
		name        string
		identifiers []string
		wantFiles   []string
		wantOutput  string
	}{
		{
			name:        "empty entries are skipped",
			identifiers: []string{"a", "", "b"},
			wantFiles:   []string{"a.yml", "b.yml"},
			wantOutput:  "Generated e2e-a.yml\nGenerated e2e-b.yml\n",
		},
		{
			name:        "duplicates are written again",
			identifiers: []string{"login", "login"},
			wantFiles:   []string{"login.yml"},
			wantOutput:  "Generated e2e-login.yml\nGenerated e2e-login.yml\n",
		},
		{
			name:        "only empty entries",
			identifiers: []string{"", ""},
			wantFiles:   []string{},
			wantOutput:  "",
		},
		{
			name:        "input order is kept",
			identifiers: []string{"Test_NoUserBrevProj", "Test_NoProjectBrev"},
			wantFiles:   []string{"Test_NoProjectBrev.yml", "Test_NoUserBrevProj.yml"},
			wantOutput:  "Generated e2e-Test_NoUserBrevProj.yml\nGenerated e2e-Test_NoProjectBrev.yml\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			g, buf := setupGenerator(t, fs, Options{Strict: true})

			require.NoError(t, g.Generate(context.Background(), tt.identifiers))

			assert.Equal(t, tt.wantFiles, listDir(t, fs, outDir))
			assert.Equal(t, tt.wantOutput, buf.String())
		})
	}
}

func TestGenerator_Generate_OverwritesExisting(t *testing.T) {
	fs := afero.NewMemMapFs()
	path := filepath.Join(outDir, "login.yml")
	require.NoError(t, fs.MkdirAll(outDir, 0755))
	require.NoError(t, afero.WriteFile(fs, path, []byte("name: hand-edited\nextra: true\n"), 0644))

	g, _ := setupGenerator(t, fs, Options{Strict: true})
	require.NoError(t, g.Generate(context.Background(), []string{"login"}))

	want, err := newRenderer(t).Render("login")
	require.NoError(t, err)
	assert.Equal(t, string(want), readFile(t, fs, path))
}

func TestGenerator_Generate_Idempotent(t *testing.T) {
	fs := afero.NewMemMapFs()
	g, _ := setupGenerator(t, fs, Options{Strict: true})
	path := filepath.Join(outDir, "login.yml")

	require.NoError(t, g.Generate(context.Background(), []string{"login"}))
	first := readFile(t, fs, path)

	require.NoError(t, g.Generate(context.Background(), []string{"login"}))
	assert.Equal(t, first, readFile(t, fs, path))
}

func TestGenerator_Generate_CreatesNestedDir(t *testing.T) {
	fs := afero.NewMemMapFs()
	g, _ := setupGenerator(t, fs, Options{OutputDir: "deep/nested/workflows"})

	require.NoError(t, g.Generate(context.Background(), nil))

	isDir, err := afero.IsDir(fs, "deep/nested/workflows")
	require.NoError(t, err)
	assert.True(t, isDir)
}

func TestGenerator_Generate_Extension(t *testing.T) {
	fs := afero.NewMemMapFs()
	g, buf := setupGenerator(t, fs, Options{Extension: "yaml"})

	require.NoError(t, g.Generate(context.Background(), []string{"login"}))

	exists, err := afero.Exists(fs, filepath.Join(outDir, "login.yaml"))
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, "Generated e2e-login.yaml\n", buf.String())
}

func TestGenerator_Generate_CreateDirFails(t *testing.T) {
	fs := afero.NewReadOnlyFs(afero.NewMemMapFs())
	g, buf := setupGenerator(t, fs, Options{})

	err := g.Generate(context.Background(), []string{"login"})
	require.ErrorIs(t, err, ErrCreateDir)
	assert.ErrorIs(t, err, syscall.EPERM)
	assert.Empty(t, buf.String())
}

func TestGenerator_Generate_PartialFailure(t *testing.T) {
	fs := newCountingFs(filepath.Join(outDir, "b.yml"), 1)
	mem := fs.Fs
	g, buf := setupGenerator(t, fs, Options{})

	err := g.Generate(context.Background(), []string{"a", "b", "c"})
	require.ErrorIs(t, err, ErrWriteFile)
	assert.ErrorIs(t, err, syscall.ENOSPC)

	// Earlier files stay, later identifiers are not processed.
	assert.Contains(t, readFile(t, mem, filepath.Join(outDir, "a.yml")), "name: e2etest-a\n")
	exists, err := afero.Exists(mem, filepath.Join(outDir, "c.yml"))
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Equal(t, "Generated e2e-a.yml\n", buf.String())
}

func TestGenerator_Generate_CreatesPlaceholderFirst(t *testing.T) {
	path := filepath.Join(outDir, "a.yml")
	fs := newCountingFs(path, 2)
	g, buf := setupGenerator(t, fs, Options{})

	err := g.Generate(context.Background(), []string{"a"})
	require.ErrorIs(t, err, ErrWriteFile)

	// The empty placeholder landed before the rendered write failed.
	assert.Equal(t, 2, fs.opens[path])
	assert.Equal(t, "", readFile(t, fs.Fs, path))
	assert.Empty(t, buf.String())
}

func TestGenerator_Generate_WriteCounts(t *testing.T) {
	newPath := filepath.Join(outDir, "new.yml")
	existingPath := filepath.Join(outDir, "existing.yml")
	fs := newCountingFs("", 0)
	require.NoError(t, fs.Fs.MkdirAll(outDir, 0755))
	require.NoError(t, afero.WriteFile(fs.Fs, existingPath, []byte("old"), 0644))
	g, _ := setupGenerator(t, fs, Options{})

	require.NoError(t, g.Generate(context.Background(), []string{"new", "existing"}))

	assert.Equal(t, 2, fs.opens[newPath], "missing file is touched, then written")
	assert.Equal(t, 1, fs.opens[existingPath], "existing file is only rewritten")
	assert.Contains(t, readFile(t, fs, existingPath), "name: e2etest-existing\n")
}

func TestGenerator_Generate_Strict(t *testing.T) {
	tests := []struct {
		name        string
		identifiers []string
		wantErr     error
	}{
		{name: "slash", identifiers: []string{"ok", "../escape"}, wantErr: ErrInvalidIdentifier},
		{name: "backslash", identifiers: []string{`dir\name`}, wantErr: ErrInvalidIdentifier},
		{name: "dot dot", identifiers: []string{".."}, wantErr: ErrInvalidIdentifier},
		{name: "breaks yaml", identifiers: []string{"a: b"}, wantErr: workflow.ErrMalformedDocument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			g, buf := setupGenerator(t, fs, Options{Strict: true})

			err := g.Generate(context.Background(), tt.identifiers)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, buf.String())

			files, _ := afero.ReadDir(fs, outDir)
			assert.Empty(t, files)
		})
	}
}

func TestGenerator_Generate_NonStrictWritesAnyName(t *testing.T) {
	fs := afero.NewMemMapFs()
	g, _ := setupGenerator(t, fs, Options{})

	require.NoError(t, g.Generate(context.Background(), []string{"a: b"}))
	assert.Contains(t, readFile(t, fs, filepath.Join(outDir, "a: b.yml")), "name: e2etest-a: b\n")
}

func TestGenerator_Generate_DryRun(t *testing.T) {
	fs := afero.NewMemMapFs()
	g, buf := setupGenerator(t, fs, Options{DryRun: true, Strict: true})

	require.NoError(t, g.Generate(context.Background(), []string{"a", "", "b"}))

	exists, err := afero.DirExists(fs, outDir)
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Equal(t,
		"Would generate e2e-a ("+filepath.Join(outDir, "a.yml")+")\n"+
			"Would generate e2e-b ("+filepath.Join(outDir, "b.yml")+")\n",
		buf.String())
}

func TestGenerator_Generate_Canceled(t *testing.T) {
	fs := afero.NewMemMapFs()
	g, buf := setupGenerator(t, fs, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := g.Generate(ctx, []string{"login"})
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, buf.String())
}

func TestValidateIdentifier(t *testing.T) {
	for _, id := range []string{"login", "Test_NoProjectBrev", "a.b", "with space"} {
		assert.NoError(t, ValidateIdentifier(id), id)
	}
	for _, id := range []string{".", "..", "a/b", `a\b`, "/abs"} {
		assert.ErrorIs(t, ValidateIdentifier(id), ErrInvalidIdentifier, id)
	}
}

func TestNonEmpty(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, NonEmpty([]string{"", "a", "", "b", ""}))
	assert.Empty(t, NonEmpty(nil))
}
