package manifest

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// manifestFile is the raw YAML structure of a manifest.
type manifestFile struct {
	Tests []Entry `yaml:"tests"`
}

// ReadFromBytes parses a YAML manifest.
//
// Entries are either plain test names or mappings:
//
//	tests:
//	  - Test_UserBrevProjectBrevV0
//	  - test: Test_NoUserBrevProj
//	    skip: true
//	    description: flaky on self-hosted runners
func ReadFromBytes(data []byte) (*Manifest, error) {
	var raw manifestFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}

	if len(raw.Tests) == 0 {
		return nil, ErrManifestEmpty
	}

	return &Manifest{Entries: raw.Tests}, nil
}

// UnmarshalYAML accepts a bare scalar as shorthand for an entry with only
// a test name.
func (e *Entry) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		return node.Decode(&e.Test)
	}

	type plain Entry
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*e = Entry(p)
	return nil
}
