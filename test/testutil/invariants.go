package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/arloliu/grouper/types"
)

// AssertGroupsConsistent verifies that groups are a partition of roster:
// the expected number of groups is present, and the multiset union of all
// group members equals the roster exactly (no person lost or duplicated).
//
// With expectedGroups == 0 only emptiness is checked; a non-positive group
// count drops every person.
//
// Parameters:
//   - t: testing handle
//   - roster: the input that was partitioned
//   - groups: the partition result
//   - expectedGroups: expected number of groups
func AssertGroupsConsistent(t testing.TB, roster []types.Person, groups []types.Group, expectedGroups int) {
	t.Helper()

	if len(groups) != expectedGroups {
		t.Fatalf("group count (%d) does not equal expected (%d)", len(groups), expectedGroups)
	}
	if expectedGroups == 0 {
		return
	}

	remaining := make(map[types.Person]int, len(roster))
	for _, p := range roster {
		remaining[p]++
	}

	sum := 0
	for gi, g := range groups {
		if g == nil {
			t.Fatalf("group %d is nil, want empty non-nil group", gi)
		}
		sum += len(g)
		for _, p := range g {
			if remaining[p] == 0 {
				t.Fatalf("person %q in group %d is duplicated or not in roster", p.Name, gi)
			}
			remaining[p]--
		}
	}

	if sum != len(roster) {
		t.Fatalf("sum of group sizes (%d) does not equal roster size (%d)", sum, len(roster))
	}
	for p, n := range remaining {
		if n != 0 {
			t.Fatalf("person %q missing from groups (%d occurrence(s))", p.Name, n)
		}
	}
}

// Composition returns a canonical string describing which names are in which
// group, suitable for comparing arrangements across repeated calls.
func Composition(groups []types.Group) string {
	var sb strings.Builder
	for i, g := range groups {
		fmt.Fprintf(&sb, "%d:%s;", i, strings.Join(g.Names(), ","))
	}

	return sb.String()
}

// GenerateRoster builds a roster with perBucket people for every
// (job, department) pair, named "<job>-<department>-<n>".
//
// Parameters:
//   - jobs: job labels
//   - departments: department labels
//   - perBucket: people per (job, department) pair
//
// Returns:
//   - []types.Person: generated roster, grouped by pair in input order
func GenerateRoster(jobs, departments []string, perBucket int) []types.Person {
	people := make([]types.Person, 0, len(jobs)*len(departments)*perBucket)
	for _, job := range jobs {
		for _, dept := range departments {
			for n := range perBucket {
				people = append(people, types.Person{
					Name:       fmt.Sprintf("%s-%s-%d", job, dept, n),
					Job:        job,
					Department: dept,
				})
			}
		}
	}

	return people
}
