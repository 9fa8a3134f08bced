package source

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/arloliu/grouper/types"
)

// File implements a roster provider that reads a YAML or JSON file on every load.
//
// Two layouts are accepted: a top-level list of people, or a mapping with a
// "people" key holding the list.
//
//	people:
//	  - name: 佐藤 健
//	    job: エンジニア
//	    department: プロダクト事業部
type File struct {
	path string
}

var _ types.RosterProvider = (*File)(nil)

// NewFile creates a file-backed roster provider.
//
// The file is not read until ListPeople is called, so a missing file surfaces
// as a roster load failure rather than a construction error.
func NewFile(path string) *File {
	return &File{path: path}
}

// Path returns the roster file path.
func (f *File) Path() string {
	return f.path
}

// ListPeople reads and parses the roster file.
//
// Returns:
//   - []types.Person: Roster in file order
//   - error: Read or parse error
func (f *File) ListPeople(_ context.Context) ([]types.Person, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read roster file: %w", err)
	}

	people, err := ParseRoster(data)
	if err != nil {
		return nil, fmt.Errorf("roster file %s: %w", f.path, err)
	}

	return people, nil
}

type rosterDocument struct {
	People []types.Person `yaml:"people"`
}

// ParseRoster decodes a roster document in YAML or JSON.
//
// Parameters:
//   - data: Document bytes (a list, or a mapping with a "people" key)
//
// Returns:
//   - []types.Person: Parsed people (empty, non-nil for an empty document)
//   - error: Decode error or a person without a name
func ParseRoster(data []byte) ([]types.Person, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse roster: %w", err)
	}

	people := []types.Person{}
	if len(bytes.TrimSpace(data)) > 0 && len(root.Content) > 0 {
		node := root.Content[0]
		switch node.Kind {
		case yaml.SequenceNode:
			if err := node.Decode(&people); err != nil {
				return nil, fmt.Errorf("failed to decode roster list: %w", err)
			}
		case yaml.MappingNode:
			var doc rosterDocument
			if err := node.Decode(&doc); err != nil {
				return nil, fmt.Errorf("failed to decode roster document: %w", err)
			}
			if doc.People != nil {
				people = doc.People
			}
		default:
			return nil, fmt.Errorf("failed to parse roster: expected a list or a mapping with a people key")
		}
	}

	for i, p := range people {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i+1, err)
		}
	}

	return people, nil
}
