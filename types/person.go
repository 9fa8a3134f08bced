package types

import "strings"

// Person is a single roster entry.
//
// Name is used as the display key and is expected to be unique within a roster.
// Job and Department are category labels used for balancing.
type Person struct {
	Name       string `json:"name" yaml:"name" db:"name"`
	Job        string `json:"job" yaml:"job" db:"job"`
	Department string `json:"department" yaml:"department" db:"department"`
}

// BucketKey returns the balancing key for the person: Job followed directly by
// Department, with no separator.
//
// Two persons with identical Job and Department always share a bucket key.
//
// Returns:
//   - string: Concatenated job and department
func (p Person) BucketKey() string {
	return p.Job + p.Department
}

// Validate reports whether the person carries a usable name.
//
// Job and Department may be empty; an empty label is still a valid category.
//
// Returns:
//   - error: ErrInvalidPerson when the name is blank, nil otherwise
func (p Person) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrInvalidPerson
	}

	return nil
}

// Group is one output partition of a roster.
type Group []Person

// Names returns the member names in group order.
func (g Group) Names() []string {
	names := make([]string, len(g))
	for i, p := range g {
		names[i] = p.Name
	}

	return names
}

// Len returns the number of members in the group.
func (g Group) Len() int {
	return len(g)
}
