package criteria

import (
	"testing"
	"time"

	"github.com/sdejongh/filescout/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func size(n int64) *int64 { return &n }

func TestCriteriaTest(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		c     Criteria
		attrs models.Attributes
		size  int64
		mod   time.Time
		want  bool
	}{
		{"Default", Criteria{}, models.AttrHidden, 10, now, true},
		{"HiddenRequired", Criteria{AttributesMask: models.AttrHidden, AttributesValue: models.AttrHidden}, 0, 10, now, false},
		{"HiddenExcluded", Criteria{AttributesMask: models.AttrHidden}, models.AttrHidden, 10, now, false},
		{"OtherAttributesIgnored", Criteria{AttributesMask: models.AttrHidden}, models.AttrReadOnly, 10, now, true},
		{"BelowMin", Criteria{MinSize: size(100)}, 0, 99, now, false},
		{"AtMin", Criteria{MinSize: size(100)}, 0, 100, now, true},
		{"AboveMax", Criteria{MaxSize: size(100)}, 0, 101, now, false},
		{"DirectoryIgnoresSize", Criteria{MinSize: size(100)}, models.AttrDirectory, 0, now, true},
		{"DuringInside", Criteria{TimeMode: TimeDuring, During: Span{3, Days}}, 0, 1, now.AddDate(0, 0, -2), true},
		{"DuringOutside", Criteria{TimeMode: TimeDuring, During: Span{3, Days}}, 0, 1, now.AddDate(0, 0, -4), false},
		{"DuringMonths", Criteria{TimeMode: TimeDuring, During: Span{1, Months}}, 0, 1, now.AddDate(0, 0, -20), true},
		{"BetweenInside", Criteria{TimeMode: TimeBetween, From: now.AddDate(0, -1, 0), To: now}, 0, 1, now.AddDate(0, 0, -3), true},
		{"BetweenAfterEnd", Criteria{TimeMode: TimeBetween, To: now.AddDate(0, 0, -5)}, 0, 1, now, false},
		{"BetweenOpenEnd", Criteria{TimeMode: TimeBetween, From: now.AddDate(0, 0, -5)}, 0, 1, now, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.c
			c.Prepare(now)
			assert.Equal(t, tt.want, c.Test(tt.attrs, tt.size, tt.mod))
		})
	}
}

func TestParseSpan(t *testing.T) {
	tests := []struct {
		input   string
		want    Span
		wantErr bool
	}{
		{"90s", Span{90, Seconds}, false},
		{"3d", Span{3, Days}, false},
		{"7", Span{7, Days}, false},
		{"6mo", Span{6, Months}, false},
		{"1Y", Span{1, Years}, false},
		{"d", Span{}, true},
		{"3 fortnights", Span{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseSpan(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseAttributes(t *testing.T) {
	mask, value, err := ParseAttributes("+hidden, -readonly")
	require.NoError(t, err)
	assert.Equal(t, models.AttrHidden|models.AttrReadOnly, mask)
	assert.Equal(t, models.AttrHidden, value)

	_, _, err = ParseAttributes("+archive")
	assert.Error(t, err)
}

func TestParseSize(t *testing.T) {
	n, err := ParseSize("10 MiB")
	require.NoError(t, err)
	assert.Equal(t, int64(10*1024*1024), n)

	n, err = ParseSize("1kB")
	require.NoError(t, err)
	assert.Equal(t, int64(1000), n)

	_, err = ParseSize("lots")
	assert.Error(t, err)
}

func TestValidateAndDescribe(t *testing.T) {
	c := Criteria{MinSize: size(10), MaxSize: size(5)}
	assert.Error(t, c.Validate())

	c = Criteria{TimeMode: TimeDuring}
	assert.Error(t, c.Validate())

	c = Criteria{
		AttributesMask:  models.AttrHidden | models.AttrReadOnly,
		AttributesValue: models.AttrHidden,
		MinSize:         size(2048),
		TimeMode:        TimeDuring,
		During:          Span{2, Weeks},
	}
	require.NoError(t, c.Validate())
	assert.False(t, c.IsDefault())
	assert.Equal(t, "attributes -r,+h, size >= 2.0 KiB, modified within 2w", c.Describe())

	assert.True(t, (&Criteria{}).IsDefault())
	assert.Equal(t, "", (&Criteria{}).Describe())
}
