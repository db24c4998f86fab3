package logging

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sdejongh/filescout/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	ctx := context.Background()

	t.Run("CollectsInfoAndErrors", func(t *testing.T) {
		c := NewCollector(nil, 0)
		c.Debug(ctx, "not kept", nil)
		c.Info(ctx, "skipped ignored directory", Path("/data/tmp"))
		c.Error(ctx, "cannot read directory", errors.New("permission denied"), Path("/root"))

		entries := c.Entries()
		require.Len(t, entries, 2)
		assert.Equal(t, models.SeverityInfo, entries[0].Severity)
		assert.Equal(t, "/data/tmp", entries[0].Path)
		assert.Equal(t, models.SeverityError, entries[1].Severity)
		assert.Equal(t, "cannot read directory: permission denied", entries[1].Message)
		assert.Equal(t, int64(1), c.ErrorCount())
	})

	t.Run("WithFieldsSharesEntries", func(t *testing.T) {
		c := NewCollector(nil, 0)
		child := c.WithFields(Path("/srv/share"))
		child.Warn(ctx, "enumeration interrupted", nil)

		entries := c.Entries()
		require.Len(t, entries, 1)
		assert.Equal(t, "/srv/share", entries[0].Path)
		assert.Equal(t, models.SeverityError, entries[0].Severity)
	})

	t.Run("Limit", func(t *testing.T) {
		c := NewCollector(nil, 2)
		for i := 0; i < 5; i++ {
			c.Error(ctx, "failure", nil, nil)
		}
		assert.Len(t, c.Entries(), 2)
		assert.Equal(t, 3, c.Dropped())
		assert.Equal(t, int64(5), c.ErrorCount())
	})

	t.Run("Forwards", func(t *testing.T) {
		var buf bytes.Buffer
		c := NewCollector(NewConsoleLogger(&buf, InfoLevel), 0)
		c.Info(ctx, "hello", Path("/x"))
		assert.Contains(t, buf.String(), "hello: /x")
	})
}

func TestConsoleLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLogger(&buf, WarnLevel)
	ctx := context.Background()

	logger.Info(ctx, "filtered", nil)
	logger.WithFields(Fields{"root": "/data"}).Error(ctx, "path too long", errors.New("limit 4096"), Path("/data/x"))

	out := buf.String()
	assert.NotContains(t, out, "filtered")
	assert.Contains(t, out, "[ERROR] path too long: /data/x (limit 4096) root=/data")
	assert.Equal(t, 1, strings.Count(out, "\n"))
	assert.False(t, IsTerminal(&buf))
}
