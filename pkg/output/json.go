package output

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/sdejongh/filescout/pkg/models"
	"github.com/sdejongh/filescout/pkg/search"
)

// JSONFormatter formats output as JSON for automation and scripting
type JSONFormatter struct {
	writer io.Writer
	info   StartInfo
}

// JSONReportData represents the final document
type JSONReportData struct {
	SessionID  string            `json:"session_id"`
	Mode       string            `json:"mode"`
	Roots      []string          `json:"roots"`
	Status     string            `json:"status"`
	Duration   string            `json:"duration"`
	DurationMs int64             `json:"duration_ms"`
	Stats      models.Statistics `json:"stats"`
	Results    []JSONResultData  `json:"results"`
	Log        []models.LogEntry `json:"log,omitempty"`
	Error      string            `json:"error,omitempty"`
}

// JSONResultData represents one result
type JSONResultData struct {
	Path       string `json:"path"`
	Size       int64  `json:"size"`
	ModTime    string `json:"mod_time"`
	Attributes string `json:"attributes,omitempty"`
	IsDir      bool   `json:"is_dir,omitempty"`
	Group      *int   `json:"group,omitempty"`
	Digest     string `json:"digest,omitempty"`
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// Start initializes the formatter
func (f *JSONFormatter) Start(writer io.Writer, info StartInfo) error {
	if writer == nil {
		writer = os.Stdout
	}
	f.writer = writer
	f.info = info
	return nil
}

// Progress is ignored to keep the output parseable
func (f *JSONFormatter) Progress(update search.StatusUpdate) error {
	return nil
}

// Complete writes the report and the results as one JSON document
func (f *JSONFormatter) Complete(report *models.SearchReport, results []models.Result) error {
	if f.writer == nil {
		f.writer = io.Discard
	}

	data := JSONReportData{
		SessionID:  report.SessionID,
		Mode:       string(report.Mode),
		Roots:      report.Roots,
		Status:     string(report.Status),
		Duration:   report.Duration.Round(time.Millisecond).String(),
		DurationMs: report.Duration.Milliseconds(),
		Stats:      report.Stats,
		Results:    make([]JSONResultData, 0, len(results)),
		Log:        report.Log,
		Error:      report.Error,
	}

	for i := range results {
		r := &results[i]
		data.Results = append(data.Results, JSONResultData{
			Path:       r.Path(),
			Size:       r.Size,
			ModTime:    r.ModTime.UTC().Format(time.RFC3339),
			Attributes: r.Attributes.String(),
			IsDir:      r.IsDir,
			Group:      r.Group,
			Digest:     r.Digest,
		})
	}

	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// Error writes an error object for commands that fail before a report exists
func (f *JSONFormatter) Error(err error) error {
	if f.writer == nil {
		f.writer = os.Stderr
	}
	return json.NewEncoder(f.writer).Encode(map[string]string{"error": err.Error()})
}

// Name returns the formatter name
func (f *JSONFormatter) Name() string {
	return "json"
}
