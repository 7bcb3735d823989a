package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/channelintel/pricewire/internal/models"
)

const timestampLayout = "20060102T150405Z"

// Filename returns the timestamped artifact name for a report, e.g.
// report_20260826T120000Z.json.
func Filename(r *models.Report, ext string) string {
	return fmt.Sprintf("report_%s.%s", r.GeneratedAt.UTC().Format(timestampLayout), ext)
}

// WriteJSON serialises the report into dir under its timestamped name.
// Existing files are never overwritten; a second write of the same
// second fails rather than clobbering an artifact.
func WriteJSON(r *models.Report, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(dir, Filename(r, "json"))
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return "", fmt.Errorf("failed to write report JSON: %w", err)
	}
	return path, nil
}

// ReadJSON loads a previously written report artifact.
func ReadJSON(path string) (*models.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report file: %w", err)
	}
	var r models.Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse report file %s: %w", path, err)
	}
	return &r, nil
}
