package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sdejongh/filescout/pkg/models"
)

// resultsFileVersion is bumped when the layout changes incompatibly
const resultsFileVersion = 1

// ResultsFile is the saved form of a session's results, read back by
// refine searches
type ResultsFile struct {
	Version   int               `json:"version"`
	SessionID string            `json:"session_id"`
	Mode      models.SearchMode `json:"mode"`
	Roots     []string          `json:"roots"`
	Saved     time.Time         `json:"saved"`
	Results   []models.Result   `json:"results"`
}

// WriteResultsFile saves results to path. The file is replaced atomically.
func WriteResultsFile(path string, report *models.SearchReport, results []models.Result) error {
	doc := ResultsFile{
		Version: resultsFileVersion,
		Saved:   time.Now().UTC(),
		Results: results,
	}
	if report != nil {
		doc.SessionID = report.SessionID
		doc.Mode = report.Mode
		doc.Roots = report.Roots
	}
	if doc.Results == nil {
		doc.Results = []models.Result{}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create results file: %w", err)
	}
	defer os.Remove(tmp.Name())

	encoder := json.NewEncoder(tmp)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(doc); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write results file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write results file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to save results file: %w", err)
	}
	return nil
}

// ReadResultsFile loads a file written by WriteResultsFile
func ReadResultsFile(path string) (*ResultsFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read results file: %w", err)
	}

	var doc ResultsFile
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse results file %s: %w", path, err)
	}
	if doc.Version != resultsFileVersion {
		return nil, fmt.Errorf("results file %s has version %d, want %d", path, doc.Version, resultsFileVersion)
	}
	return &doc, nil
}
