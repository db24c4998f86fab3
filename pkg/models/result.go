package models

// Result is one entry of a session's result list. Group, Alternation and
// Digest are only set by duplicate searches.
type Result struct {
	MatchedFile

	// Group numbers duplicate groups densely from 0; nil outside
	// duplicate searches
	Group *int `json:"group,omitempty"`

	// Alternation flips between consecutive groups
	Alternation bool `json:"alternation,omitempty"`

	// Digest is the hex content hash when content was compared
	Digest string `json:"digest,omitempty"`
}

// Files returns the file records of results
func Files(results []Result) []MatchedFile {
	files := make([]MatchedFile, len(results))
	for i := range results {
		files[i] = results[i].MatchedFile
	}
	return files
}
