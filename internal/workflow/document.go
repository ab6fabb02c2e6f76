package workflow

import (
	"fmt"
	"strings"

	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// ErrMalformedDocument is returned when a rendered document is not valid
// YAML or lacks the name field or the test step.
var ErrMalformedDocument = zerr.New("malformed workflow document")

// Document is the subset of a workflow file that the generator checks.
type Document struct {
	Name string                 `yaml:"name"`
	Jobs map[string]DocumentJob `yaml:"jobs"`
}

// DocumentJob is a job entry of a parsed [Document].
type DocumentJob struct {
	If     string   `yaml:"if"`
	RunsOn []string `yaml:"runs-on"`
	Steps  []Step   `yaml:"steps"`
}

// Step is a step entry of a parsed job.
type Step struct {
	Name string `yaml:"name"`
	Uses string `yaml:"uses"`
	If   string `yaml:"if"`
	Run  string `yaml:"run"`
}

// Parse decodes a rendered workflow document.
//
// It returns [ErrMalformedDocument] when the YAML does not decode, the name
// field is empty, or no step runs go test.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedDocument, err)
	}
	if doc.Name == "" {
		return nil, fmt.Errorf("%w: missing name", ErrMalformedDocument)
	}
	if doc.TestCommand() == "" {
		return nil, fmt.Errorf("%w: missing test step", ErrMalformedDocument)
	}
	return &doc, nil
}

// TestCommand returns the first go test command found in the document.
func (d *Document) TestCommand() string {
	for _, job := range d.Jobs {
		for _, step := range job.Steps {
			if strings.HasPrefix(step.Run, "go test ") {
				return step.Run
			}
		}
	}
	return ""
}
