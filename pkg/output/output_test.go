package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdejongh/filescout/pkg/models"
	"github.com/sdejongh/filescout/pkg/search"
)

func sampleReport() *models.SearchReport {
	return &models.SearchReport{
		SessionID: "1234",
		Mode:      models.ModeDuplicates,
		Roots:     []string{"/data"},
		Duration:  1500 * time.Millisecond,
		Status:    models.StatusCompleted,
		Stats: models.Statistics{
			DirsScanned:     3,
			EntriesExamined: 10,
			Matches:         2,
			Groups:          1,
			BytesHashed:     4096,
			Errors:          1,
		},
		Log: []models.LogEntry{
			{Severity: models.SeverityInfo, Message: "search started"},
			{Severity: models.SeverityError, Message: "cannot list directory: permission denied", Path: "/data/private"},
		},
	}
}

func sampleResults() []models.Result {
	mod := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	group := 1
	return []models.Result{
		{MatchedFile: models.MatchedFile{Name: "a.bin", Dir: "/data/x", Size: 2048, ModTime: mod}, Group: &group, Digest: "abcd"},
		{MatchedFile: models.MatchedFile{Name: "a.bin", Dir: "/data/y", Size: 2048, ModTime: mod}, Group: &group, Digest: "abcd"},
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		format   string
		progress bool
		want     string
		wantErr  bool
	}{
		{"human", false, "human", false},
		{"", false, "human", false},
		{"human", true, "progress", false},
		{"json", true, "json", false},
		{"xml", false, "", true},
	}

	for _, tt := range tests {
		f, err := New(tt.format, tt.progress)
		if tt.wantErr {
			assert.Error(t, err, tt.format)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, f.Name())
	}
}

func TestHumanFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := NewHumanFormatter()
	require.NoError(t, f.Start(&buf, StartInfo{Mode: models.ModeDuplicates}))
	require.NoError(t, f.Complete(sampleReport(), sampleResults()))

	out := buf.String()
	assert.Contains(t, out, "[   1]")
	assert.Contains(t, out, "2.0 KiB")
	assert.Contains(t, out, filepath.Join("/data/x", "a.bin"))
	assert.Contains(t, out, "Search completed in 1.5s")
	assert.Contains(t, out, "Duplicate groups:     1")
	assert.Contains(t, out, "/data/private: cannot list directory")
	assert.NotContains(t, out, "search started")
	assert.NotContains(t, out, "\033[", "no colour on a buffer")
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := NewJSONFormatter()
	require.NoError(t, f.Start(&buf, StartInfo{}))
	require.NoError(t, f.Progress(search.StatusUpdate{Path: "/data", Percent: -1}))
	require.NoError(t, f.Complete(sampleReport(), sampleResults()))

	var doc JSONReportData
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "completed", doc.Status)
	assert.Equal(t, "duplicates", doc.Mode)
	assert.EqualValues(t, 1500, doc.DurationMs)
	require.Len(t, doc.Results, 2)
	assert.Equal(t, filepath.Join("/data/y", "a.bin"), doc.Results[1].Path)
	assert.Equal(t, "2024-03-01T12:00:00Z", doc.Results[0].ModTime)
	require.NotNil(t, doc.Results[0].Group)
	assert.Equal(t, 1, *doc.Results[0].Group)
	assert.EqualValues(t, 4096, doc.Stats.BytesHashed)

	t.Run("Error", func(t *testing.T) {
		var buf bytes.Buffer
		f := NewJSONFormatter()
		require.NoError(t, f.Start(&buf, StartInfo{}))
		require.NoError(t, f.Error(errors.New("boom")))
		assert.JSONEq(t, `{"error":"boom"}`, buf.String())
	})
}

func TestProgressFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := NewProgressFormatter()
	require.NoError(t, f.Start(&buf, StartInfo{}))
	assert.Equal(t, defaultTermWidth, f.termWidth)

	require.NoError(t, f.Progress(search.StatusUpdate{Path: "/data/x", Percent: -1, Results: 1234}))
	assert.Contains(t, buf.String(), "1,234 matches  /data/x")

	// throttled
	buf.Reset()
	require.NoError(t, f.Progress(search.StatusUpdate{Path: "/data/y", Percent: -1}))
	assert.Empty(t, buf.String())

	f.interval = 0
	require.NoError(t, f.Progress(search.StatusUpdate{Path: "/data/x/a.bin", Percent: 50}))
	assert.Contains(t, buf.String(), "50%")
	assert.Contains(t, buf.String(), "/data/x/a.bin")
	require.NotNil(t, f.bar)

	buf.Reset()
	require.NoError(t, f.Complete(sampleReport(), sampleResults()))
	assert.Nil(t, f.bar)
	assert.True(t, strings.HasPrefix(buf.String(), "\r\033[2K"))
	assert.Contains(t, buf.String(), "Search completed")
}

func TestProgressFormatterStreamsResults(t *testing.T) {
	results := sampleResults()
	list := search.NewResultList(0)
	require.NoError(t, list.Add(results[0]))

	var buf bytes.Buffer
	f := NewProgressFormatter()
	require.NoError(t, f.Start(&buf, StartInfo{Results: list, Criteria: "size >= 1.0 KiB"}))

	require.NoError(t, f.Progress(search.StatusUpdate{Path: "/data", Percent: -1, Redraw: true, Results: 1}))
	assert.Contains(t, buf.String(), "/data/x/a.bin")
	assert.NotContains(t, buf.String(), "/data/y/a.bin")

	require.NoError(t, list.Add(results[1]))
	buf.Reset()
	require.NoError(t, f.Complete(sampleReport(), list.Snapshot()))
	out := buf.String()
	assert.NotContains(t, out, "/data/x/a.bin")
	assert.Contains(t, out, "/data/y/a.bin")
	assert.Contains(t, out, "Criteria:             size >= 1.0 KiB")
}

func TestTruncate(t *testing.T) {
	f := &ProgressFormatter{termWidth: 10}
	assert.Equal(t, "short", f.truncateLine("short"))
	assert.Equal(t, "abcdef...", f.truncateLine("abcdefghijklmnop"))

	assert.Equal(t, "/a/b", truncateLeft("/a/b", 10))
	assert.Equal(t, "...ef/g.txt", truncateLeft("/abc/def/ef/g.txt", 11))
}

func TestResultsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.json")
	require.NoError(t, WriteResultsFile(path, sampleReport(), sampleResults()))

	doc, err := ReadResultsFile(path)
	require.NoError(t, err)
	assert.Equal(t, "1234", doc.SessionID)
	assert.Equal(t, models.ModeDuplicates, doc.Mode)
	require.Len(t, doc.Results, 2)
	assert.Equal(t, sampleResults()[1].Path(), doc.Results[1].Path())
	assert.True(t, sampleResults()[0].ModTime.Equal(doc.Results[0].ModTime))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file removed")

	t.Run("WrongVersion", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), "old.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{"version": 0, "results": []}`), 0644))
		_, err := ReadResultsFile(bad)
		assert.ErrorContains(t, err, "version")
	})

	t.Run("Missing", func(t *testing.T) {
		_, err := ReadResultsFile(filepath.Join(t.TempDir(), "nope.json"))
		assert.Error(t, err)
	})
}
