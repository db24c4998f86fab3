// Package criteria implements the attribute, size and date filter applied to
// every enumerated entry.
package criteria

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sdejongh/filescout/pkg/models"
)

// TimeMode selects how the last write time is checked
type TimeMode string

const (
	// TimeAny ignores the last write time
	TimeAny TimeMode = "any"
	// TimeDuring keeps entries written within the last During units
	TimeDuring TimeMode = "during"
	// TimeBetween keeps entries written between From and To
	TimeBetween TimeMode = "between"
)

// TimeUnit is the unit of Criteria.During
type TimeUnit string

const (
	Seconds TimeUnit = "s"
	Minutes TimeUnit = "m"
	Hours   TimeUnit = "h"
	Days    TimeUnit = "d"
	Weeks   TimeUnit = "w"
	Months  TimeUnit = "mo"
	Years   TimeUnit = "y"
)

// Span is an amount of calendar time such as "3 months"
type Span struct {
	Value int      `yaml:"value" json:"value"`
	Unit  TimeUnit `yaml:"unit" json:"unit"`
}

// ParseSpan parses "90s", "15m", "3d", "2w", "6mo" or "1y"
func ParseSpan(s string) (Span, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 {
		return Span{}, fmt.Errorf("invalid time span %q: missing number", s)
	}
	v, err := strconv.Atoi(s[:i])
	if err != nil {
		return Span{}, fmt.Errorf("invalid time span %q: %w", s, err)
	}
	unit := TimeUnit(s[i:])
	switch unit {
	case Seconds, Minutes, Hours, Days, Weeks, Months, Years:
	case "":
		unit = Days
	default:
		return Span{}, fmt.Errorf("invalid time span %q: unknown unit %q", s, unit)
	}
	return Span{Value: v, Unit: unit}, nil
}

// Before returns the instant Span before now
func (s Span) Before(now time.Time) time.Time {
	switch s.Unit {
	case Seconds:
		return now.Add(-time.Duration(s.Value) * time.Second)
	case Minutes:
		return now.Add(-time.Duration(s.Value) * time.Minute)
	case Hours:
		return now.Add(-time.Duration(s.Value) * time.Hour)
	case Weeks:
		return now.AddDate(0, 0, -7*s.Value)
	case Months:
		return now.AddDate(0, -s.Value, 0)
	case Years:
		return now.AddDate(-s.Value, 0, 0)
	default:
		return now.AddDate(0, 0, -s.Value)
	}
}

func (s Span) String() string {
	return strconv.Itoa(s.Value) + string(s.Unit)
}

// Criteria is the attribute/size/date predicate. Call Prepare before Test.
type Criteria struct {
	// AttributesMask selects the attributes that matter; AttributesValue
	// gives their required state.
	AttributesMask  models.Attributes `yaml:"attributes_mask" json:"attributes_mask"`
	AttributesValue models.Attributes `yaml:"attributes_value" json:"attributes_value"`

	// MinSize and MaxSize bound file sizes in bytes; nil disables the bound.
	// Directories are never rejected by size.
	MinSize *int64 `yaml:"min_size,omitempty" json:"min_size,omitempty"`
	MaxSize *int64 `yaml:"max_size,omitempty" json:"max_size,omitempty"`

	TimeMode TimeMode  `yaml:"time_mode" json:"time_mode"`
	During   Span      `yaml:"during" json:"during"`
	From     time.Time `yaml:"from,omitempty" json:"from,omitempty"`
	To       time.Time `yaml:"to,omitempty" json:"to,omitempty"`

	minTime, maxTime time.Time
	prepared         bool
}

// Prepare computes the time window relative to now
func (c *Criteria) Prepare(now time.Time) {
	c.minTime, c.maxTime = time.Time{}, time.Time{}
	switch c.TimeMode {
	case TimeDuring:
		c.minTime = c.During.Before(now)
	case TimeBetween:
		c.minTime = c.From
		c.maxTime = c.To
	}
	c.prepared = true
}

// Test reports whether an entry passes every configured condition
func (c *Criteria) Test(attrs models.Attributes, size int64, modTime time.Time) bool {
	if !c.prepared {
		c.Prepare(time.Now())
	}

	if attrs&c.AttributesMask != c.AttributesValue&c.AttributesMask {
		return false
	}

	if !attrs.Has(models.AttrDirectory) {
		if c.MinSize != nil && size < *c.MinSize {
			return false
		}
		if c.MaxSize != nil && size > *c.MaxSize {
			return false
		}
	}

	if !c.minTime.IsZero() && modTime.Before(c.minTime) {
		return false
	}
	if !c.maxTime.IsZero() && modTime.After(c.maxTime) {
		return false
	}

	return true
}

// IsDefault reports whether the criteria accept everything
func (c *Criteria) IsDefault() bool {
	return c.AttributesMask == 0 && c.MinSize == nil && c.MaxSize == nil &&
		(c.TimeMode == "" || c.TimeMode == TimeAny)
}

// Validate checks the bounds are consistent
func (c *Criteria) Validate() error {
	if c.MinSize != nil && c.MaxSize != nil && *c.MinSize > *c.MaxSize {
		return &models.ValidationError{Field: "size", Message: "minimum size exceeds maximum size"}
	}
	switch c.TimeMode {
	case "", TimeAny:
	case TimeDuring:
		if c.During.Value <= 0 {
			return &models.ValidationError{Field: "during", Message: "must be positive"}
		}
	case TimeBetween:
		if c.From.IsZero() && c.To.IsZero() {
			return &models.ValidationError{Field: "between", Message: "needs a start or an end"}
		}
		if !c.From.IsZero() && !c.To.IsZero() && c.From.After(c.To) {
			return &models.ValidationError{Field: "between", Message: "start is after end"}
		}
	default:
		return &models.ValidationError{Field: "time_mode", Message: "must be any, during or between"}
	}
	return nil
}

// Describe summarises the non-default settings, or returns ""
func (c *Criteria) Describe() string {
	var parts []string
	if c.AttributesMask != 0 {
		var attrs []string
		for bit := models.AttrReadOnly; bit <= models.AttrSystem; bit <<= 1 {
			if c.AttributesMask&bit == 0 {
				continue
			}
			sign := "-"
			if c.AttributesValue&bit != 0 {
				sign = "+"
			}
			attrs = append(attrs, sign+attributeName(bit))
		}
		parts = append(parts, "attributes "+strings.Join(attrs, ","))
	}
	if c.MinSize != nil {
		parts = append(parts, "size >= "+humanize.IBytes(uint64(*c.MinSize)))
	}
	if c.MaxSize != nil {
		parts = append(parts, "size <= "+humanize.IBytes(uint64(*c.MaxSize)))
	}
	switch c.TimeMode {
	case TimeDuring:
		parts = append(parts, "modified within "+c.During.String())
	case TimeBetween:
		if !c.From.IsZero() {
			parts = append(parts, "modified after "+c.From.Format(time.DateTime))
		}
		if !c.To.IsZero() {
			parts = append(parts, "modified before "+c.To.Format(time.DateTime))
		}
	}
	return strings.Join(parts, ", ")
}

func attributeName(bit models.Attributes) string {
	s := bit.String()
	for i := 0; i < len(s); i++ {
		if s[i] != '-' {
			return s[i : i+1]
		}
	}
	return "?"
}

// ParseAttributes parses "+hidden,-readonly" into a mask and value
func ParseAttributes(list string) (mask, value models.Attributes, err error) {
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		want := true
		switch part[0] {
		case '+':
			part = part[1:]
		case '-', '!':
			want = false
			part = part[1:]
		}
		attr, err := models.ParseAttribute(part)
		if err != nil {
			return 0, 0, err
		}
		mask |= attr
		if want {
			value |= attr
		}
	}
	return mask, value, nil
}

// ParseSize parses a human size ("10MB", "1.5 GiB", "512")
func ParseSize(s string) (int64, error) {
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", s, err)
	}
	return int64(n), nil
}
