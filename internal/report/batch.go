package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/tuivet/tuivet/internal/pipeline"
	"github.com/tuivet/tuivet/internal/types"
)

type fileReport struct {
	Path   string                  `json:"path"`
	Result *types.ValidationResult `json:"result"`
}

// WriteBatch renders batch validation results as a JSON array in input
// order.
func WriteBatch(w io.Writer, results []pipeline.FileResult) error {
	reports := make([]fileReport, 0, len(results))
	for _, fr := range results {
		reports = append(reports, fileReport{Path: fr.Path, Result: fr.Result})
	}
	data, err := json.MarshalIndent(reports, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode batch results: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
