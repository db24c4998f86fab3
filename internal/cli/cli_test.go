package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdejongh/filescout/pkg/config"
	"github.com/sdejongh/filescout/pkg/criteria"
	"github.com/sdejongh/filescout/pkg/models"
	"github.com/sdejongh/filescout/pkg/output"
)

// execute runs the command tree with args and returns its stdout
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCommand()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func createTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for p, content := range files {
		full := filepath.Join(root, p)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0644))
	}
	return root
}

func resultNames(t *testing.T, root string, doc output.JSONReportData) []string {
	t.Helper()
	var names []string
	for _, r := range doc.Results {
		rel, err := filepath.Rel(root, r.Path)
		require.NoError(t, err)
		names = append(names, filepath.ToSlash(rel))
	}
	sort.Strings(names)
	return names
}

func TestCriteriaFlags(t *testing.T) {
	tests := []struct {
		name    string
		flags   criteriaFlags
		check   func(t *testing.T, c criteria.Criteria)
		wantErr bool
	}{
		{
			name:  "Empty",
			flags: criteriaFlags{},
			check: func(t *testing.T, c criteria.Criteria) {
				assert.True(t, c.IsDefault())
			},
		},
		{
			name:  "Sizes",
			flags: criteriaFlags{MinSize: "1KiB", MaxSize: "2MB"},
			check: func(t *testing.T, c criteria.Criteria) {
				require.NotNil(t, c.MinSize)
				require.NotNil(t, c.MaxSize)
				assert.EqualValues(t, 1024, *c.MinSize)
				assert.EqualValues(t, 2000000, *c.MaxSize)
			},
		},
		{
			name:  "Within",
			flags: criteriaFlags{ModifiedWithin: "3d"},
			check: func(t *testing.T, c criteria.Criteria) {
				assert.Equal(t, criteria.TimeDuring, c.TimeMode)
				assert.Equal(t, criteria.Span{Value: 3, Unit: criteria.Days}, c.During)
			},
		},
		{
			name:  "Between",
			flags: criteriaFlags{ModifiedAfter: "2024-01-01", ModifiedBefore: "2024-02-01 12:30"},
			check: func(t *testing.T, c criteria.Criteria) {
				assert.Equal(t, criteria.TimeBetween, c.TimeMode)
				assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local), c.From)
				assert.Equal(t, time.Date(2024, 2, 1, 12, 30, 0, 0, time.Local), c.To)
			},
		},
		{
			name:  "Attributes",
			flags: criteriaFlags{Attrs: "+hidden,-readonly"},
			check: func(t *testing.T, c criteria.Criteria) {
				assert.Equal(t, models.AttrHidden|models.AttrReadOnly, c.AttributesMask)
				assert.Equal(t, models.AttrHidden, c.AttributesValue)
			},
		},
		{name: "InvertedSizes", flags: criteriaFlags{MinSize: "2MB", MaxSize: "1MB"}, wantErr: true},
		{name: "WithinAndAfter", flags: criteriaFlags{ModifiedWithin: "1d", ModifiedAfter: "2024-01-01"}, wantErr: true},
		{name: "BadDate", flags: criteriaFlags{ModifiedAfter: "yesterday"}, wantErr: true},
		{name: "BadAttribute", flags: criteriaFlags{Attrs: "+shiny"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := tt.flags.build()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, c)
		})
	}
}

func TestParseRoots(t *testing.T) {
	roots, err := parseRoots([]string{"a;b", " c ;"}, "*.go", true)
	require.NoError(t, err)
	require.Len(t, roots, 3)
	assert.Equal(t, models.SearchRoot{Path: "c", Mask: "*.go", Recurse: true}, roots[2])

	_, err = parseRoots([]string{";"}, "*", true)
	assert.Error(t, err)
}

func TestFindCommand(t *testing.T) {
	root := createTree(t, map[string]string{
		"a.txt":     "the needle",
		"b.txt":     "hay",
		"sub/c.txt": "needle and thread",
		"sub/d.log": "needle",
	})
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	saved := filepath.Join(t.TempDir(), "results.json")

	out, err := execute(t, "find", "--config", cfgPath, "--look-in", root, "--mask", "*.txt",
		"--containing", "needle", "-o", "json", "--save", saved)
	require.NoError(t, err)

	var doc output.JSONReportData
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "completed", doc.Status)
	assert.Equal(t, []string{"a.txt", "sub/c.txt"}, resultNames(t, root, doc))

	file, err := output.ReadResultsFile(saved)
	require.NoError(t, err)
	assert.Len(t, file.Results, 2)

	t.Run("RefineSubtract", func(t *testing.T) {
		out, err := execute(t, "find", "--config", cfgPath, "--refine", "subtract", "--from", saved,
			"--containing", "thread", "-o", "json")
		require.NoError(t, err)

		var doc output.JSONReportData
		require.NoError(t, json.Unmarshal([]byte(out), &doc))
		assert.Equal(t, "subtract", doc.Mode)
		assert.Equal(t, []string{"a.txt"}, resultNames(t, root, doc))
	})

	t.Run("MaxResults", func(t *testing.T) {
		_, err := execute(t, "find", "--config", cfgPath, "--look-in", root, "--max-results", "1", "-o", "json")
		var exit *ExitError
		require.True(t, errors.As(err, &exit))
		assert.Equal(t, 2, exit.Code)
	})

	t.Run("Human", func(t *testing.T) {
		out, err := execute(t, "find", "-q", "--config", cfgPath, "--look-in", root, "--mask", "*.log")
		require.NoError(t, err)
		assert.Contains(t, out, filepath.Join(root, "sub", "d.log"))
		assert.Contains(t, out, "Search completed")
	})

	t.Run("MissingLookIn", func(t *testing.T) {
		_, err := execute(t, "find", "--config", cfgPath, "--mask", "*.txt")
		assert.Error(t, err)
	})

	t.Run("RegexAndHex", func(t *testing.T) {
		_, err := execute(t, "find", "--config", cfgPath, "--look-in", root, "--containing", "00", "--regex", "--hex")
		assert.Error(t, err)
	})
}

func TestFindProfile(t *testing.T) {
	root := createTree(t, map[string]string{
		"a.md": "# title",
		"b.go": "package b",
	})
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")

	_, err := execute(t, "find", "-q", "--config", cfgPath, "--look-in", root, "--mask", "*.md", "--save-profile", "docs")
	require.NoError(t, err)

	cfg, err := config.LoadFromFile(cfgPath)
	require.NoError(t, err)
	require.Contains(t, cfg.Profiles, "docs")
	assert.Equal(t, "*.md", cfg.Profiles["docs"].Mask)

	out, err := execute(t, "find", "--config", cfgPath, "--profile", "docs", "-o", "json")
	require.NoError(t, err)
	var doc output.JSONReportData
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, []string{"a.md"}, resultNames(t, root, doc))

	_, err = execute(t, "find", "--config", cfgPath, "--profile", "nope")
	assert.ErrorContains(t, err, "unknown profile")
}

func TestDupesCommand(t *testing.T) {
	root := createTree(t, map[string]string{
		"a/photo.jpg": "same bytes",
		"b/photo.jpg": "same bytes",
		"c/other.jpg": "different!",
	})
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")

	out, err := execute(t, "dupes", "--config", cfgPath, "--look-in", root, "--by", "size,content", "--hash", "xxhash", "-o", "json")
	require.NoError(t, err)

	var doc output.JSONReportData
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "duplicates", doc.Mode)
	assert.Equal(t, []string{"a/photo.jpg", "b/photo.jpg"}, resultNames(t, root, doc))
	assert.EqualValues(t, 1, doc.Stats.Groups)
	assert.NotEmpty(t, doc.Results[0].Digest)

	_, err = execute(t, "dupes", "--config", cfgPath, "--look-in", root, "--by", "content")
	assert.Error(t, err, "content without size")
}

func TestIgnoreCommands(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	rules := func() []string {
		cfg, err := config.LoadFromFile(cfgPath)
		require.NoError(t, err)
		var paths []string
		for _, r := range cfg.Ignore {
			mark := "-"
			if r.Enabled {
				mark = "+"
			}
			paths = append(paths, mark+r.Path)
		}
		return paths
	}

	out, err := execute(t, "ignore", "add", "node_modules", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "substring")
	assert.Equal(t, []string{`+\System Volume Information`, `-Local Settings\Temporary Internet Files`, "+node_modules"}, rules())

	_, err = execute(t, "ignore", "add", "NODE_MODULES/", "--config", cfgPath)
	require.NoError(t, err)
	assert.Len(t, rules(), 3)

	_, err = execute(t, "ignore", "enable", "2", "--config", cfgPath)
	require.NoError(t, err)
	_, err = execute(t, "ignore", "disable", "1", "--config", cfgPath)
	require.NoError(t, err)
	_, err = execute(t, "ignore", "move", "3", "1", "--config", cfgPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"+node_modules", `-\System Volume Information`, `+Local Settings\Temporary Internet Files`}, rules())

	_, err = execute(t, "ignore", "remove", "2", "--config", cfgPath)
	require.NoError(t, err)
	assert.Len(t, rules(), 2)

	_, err = execute(t, "ignore", "remove", "9", "--config", cfgPath)
	assert.Error(t, err)
	_, err = execute(t, "ignore", "remove", "zero", "--config", cfgPath)
	assert.Error(t, err)

	_, err = execute(t, "ignore", "reset", "--config", cfgPath)
	require.NoError(t, err)
	assert.Len(t, rules(), 2)

	out, err = execute(t, "ignore", "list", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "root-relative")
}

func TestConfigCommands(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")

	out, err := execute(t, "config", "init", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, cfgPath)

	_, err = execute(t, "config", "init", "--config", cfgPath)
	assert.ErrorContains(t, err, "already exists")

	_, err = execute(t, "config", "init", "--force", "--config", cfgPath)
	assert.NoError(t, err)

	out, err = execute(t, "config", "show", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "window_size:")
	assert.Contains(t, out, "hash: md5")
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, moduleVersion()+"\n", out)
}
