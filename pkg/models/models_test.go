package models

import (
	"path/filepath"
	"testing"
	"time"
)

// ============== MatchedFile Tests ==============

func TestMatchedFile(t *testing.T) {
	t.Run("Path", func(t *testing.T) {
		f := MatchedFile{
			Name:    "file.txt",
			Dir:     filepath.Join("home", "user"),
			Size:    1024,
			ModTime: time.Now(),
		}

		want := filepath.Join("home", "user", "file.txt")
		if f.Path() != want {
			t.Errorf("Path() = %s, want %s", f.Path(), want)
		}
	})

	t.Run("IsLink", func(t *testing.T) {
		f := MatchedFile{Name: "link", Attributes: AttrSymlink | AttrHidden}
		if !f.IsLink() {
			t.Error("IsLink() should be true")
		}
		f.Attributes = AttrHidden
		if f.IsLink() {
			t.Error("IsLink() should be false")
		}
	})
}

func TestAttributes(t *testing.T) {
	t.Run("String", func(t *testing.T) {
		a := AttrDirectory | AttrHidden
		if a.String() != "d-h---" {
			t.Errorf("String() = %s, want d-h---", a.String())
		}
	})

	tests := []struct {
		input    string
		expected Attributes
		wantErr  bool
	}{
		{"hidden", AttrHidden, false},
		{"ReadOnly", AttrReadOnly, false},
		{"x", AttrExecutable, false},
		{" symlink ", AttrSymlink, false},
		{"archive", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseAttribute(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseAttribute(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.expected {
				t.Errorf("ParseAttribute(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

// ============== Session Option Tests ==============

func TestParseSearchMode(t *testing.T) {
	tests := []struct {
		input    string
		expected SearchMode
		refine   bool
	}{
		{"", ModeFresh, false},
		{"fresh", ModeFresh, false},
		{"Intersect", ModeIntersect, true},
		{"subtract", ModeSubtract, true},
		{"duplicates", ModeDuplicates, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseSearchMode(tt.input)
			if err != nil {
				t.Fatalf("ParseSearchMode() error = %v", err)
			}
			if got != tt.expected {
				t.Errorf("ParseSearchMode(%q) = %s, want %s", tt.input, got, tt.expected)
			}
			if got.IsRefine() != tt.refine {
				t.Errorf("IsRefine() = %v, want %v", got.IsRefine(), tt.refine)
			}
		})
	}

	t.Run("Invalid", func(t *testing.T) {
		if _, err := ParseSearchMode("merge"); err == nil {
			t.Error("expected error for unknown mode")
		}
	})
}

func TestGrepPatternValidate(t *testing.T) {
	t.Run("EmptyText", func(t *testing.T) {
		p := &GrepPattern{Kind: PatternLiteral}
		err := p.Validate()
		if err == nil {
			t.Fatal("expected validation error")
		}
		if ve, ok := err.(*ValidationError); ok {
			if ve.Field != "Text" {
				t.Errorf("ValidationError.Field = %s, want Text", ve.Field)
			}
		}
	})

	t.Run("RegexWithoutLineEndings", func(t *testing.T) {
		p := &GrepPattern{Kind: PatternRegex, Text: "a.b"}
		if err := p.Validate(); err == nil {
			t.Error("expected validation error")
		}
	})

	t.Run("Valid", func(t *testing.T) {
		p := &GrepPattern{Kind: PatternRegex, Text: "a.b", LineEndings: AllLineEndings()}
		if err := p.Validate(); err != nil {
			t.Errorf("Validate() error = %v", err)
		}
	})
}

func TestParseLineEndings(t *testing.T) {
	eol, err := ParseLineEndings("lf, CRLF")
	if err != nil {
		t.Fatalf("ParseLineEndings() error = %v", err)
	}
	if eol.CR || !eol.LF || !eol.CRLF {
		t.Errorf("ParseLineEndings() = %+v", eol)
	}
	if eol.String() != "lf,crlf" {
		t.Errorf("String() = %s, want lf,crlf", eol.String())
	}
	if _, err := ParseLineEndings("nel"); err == nil {
		t.Error("expected error for unknown line ending")
	}
}

func TestDuplicateCriteria(t *testing.T) {
	tests := []struct {
		input   string
		want    DuplicateCriteria
		wantErr bool
	}{
		{"name", DuplicateCriteria{ByName: true}, false},
		{"name,size", DuplicateCriteria{ByName: true, BySize: true}, false},
		{"size,content", DuplicateCriteria{BySize: true, ByContent: true}, false},
		{"name,content", DuplicateCriteria{ByName: true, ByContent: true}, true},
		{"", DuplicateCriteria{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDuplicateCriteria(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDuplicateCriteria(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseDuplicateCriteria(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

// ============== SessionStatus Tests ==============

func TestSessionStatusExitCode(t *testing.T) {
	tests := []struct {
		status   SessionStatus
		expected int
	}{
		{StatusCompleted, 0},
		{StatusStopped, 1},
		{StatusFailed, 2},
		{StatusRunning, 2},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.ExitCode(); got != tt.expected {
				t.Errorf("ExitCode() = %d, want %d", got, tt.expected)
			}
		})
	}
}
