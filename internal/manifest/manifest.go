// Package manifest reads e2e test manifests.
//
// A manifest lists the test identifiers to generate workflows for, so a
// checked-in file can replace a long command line. Files ending in .csv are
// read as CSV; anything else is read as YAML (see [ReadFromBytes]).
//
// CSV format:
//
//	test,skip,description
//	Test_UserBrevProjectBrevV0,,user with brev project
//	Test_NoProjectBrev,,
//	Test_NoUserBrevProj,true,flaky on self-hosted runners
//
// Only the test column is required. Rows keep their file order. Blank test
// names are kept; the generator skips them.
package manifest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/afero"
	"go.trai.ch/zerr"
)

var (
	// ErrManifestEmpty is returned when a manifest lists no tests.
	ErrManifestEmpty = zerr.New("manifest contains no tests")

	// ErrMissingColumn is returned when a CSV manifest lacks a required column.
	ErrMissingColumn = zerr.New("manifest missing required column")
)

// Entry is a single test listed in a manifest.
type Entry struct {
	// Test is the test function name passed to go test -run.
	Test string `yaml:"test"`

	// Skip excludes the entry from [Manifest.Tests] while keeping it listed.
	Skip bool `yaml:"skip"`

	// Description is free text for humans. It is not rendered.
	Description string `yaml:"description"`
}

// Manifest holds the entries of a manifest file in file order.
type Manifest struct {
	Entries []Entry
}

// ReadFromFile reads a manifest from fs, choosing the format by extension.
func ReadFromFile(fs afero.Fs, path string) (*Manifest, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest %s: %w", path, err)
	}

	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return ReadFromString(string(data))
	}
	return ReadFromBytes(data)
}

// ReadFromString parses a CSV manifest.
func ReadFromString(data string) (*Manifest, error) {
	return readFromReader(strings.NewReader(data))
}

func readFromReader(r io.Reader) (*Manifest, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest header: %w", err)
	}

	colIndex := buildColumnIndex(header)
	if err := validateColumns(colIndex); err != nil {
		return nil, err
	}

	var entries []Entry
	lineNum := 1
	for {
		lineNum++
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read manifest line %d: %w", lineNum, err)
		}

		skip, err := parseSkip(getField(record, colIndex, "skip"))
		if err != nil {
			return nil, fmt.Errorf("manifest line %d: %w", lineNum, err)
		}

		entries = append(entries, Entry{
			Test:        getField(record, colIndex, "test"),
			Skip:        skip,
			Description: getField(record, colIndex, "description"),
		})
	}

	if len(entries) == 0 {
		return nil, ErrManifestEmpty
	}

	return &Manifest{Entries: entries}, nil
}

// requiredColumns are the columns that must be present in a CSV manifest.
var requiredColumns = []string{"test"}

func buildColumnIndex(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for i, col := range header {
		index[strings.TrimSpace(strings.ToLower(col))] = i
	}
	return index
}

func validateColumns(colIndex map[string]int) error {
	for _, col := range requiredColumns {
		if _, ok := colIndex[col]; !ok {
			return fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}
	return nil
}

func getField(record []string, colIndex map[string]int, column string) string {
	idx, ok := colIndex[column]
	if !ok || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

func parseSkip(value string) (bool, error) {
	switch strings.ToLower(value) {
	case "", "no", "n":
		return false, nil
	case "yes", "y":
		return true, nil
	}
	skip, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid skip value %q", value)
	}
	return skip, nil
}

// Tests returns the test names of entries not marked skip, in file order.
func (m *Manifest) Tests() []string {
	tests := make([]string, 0, len(m.Entries))
	for _, e := range m.Entries {
		if !e.Skip {
			tests = append(tests, e.Test)
		}
	}
	return tests
}
