package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/arloliu/grouper"
)

// printGroups writes one line per group in the shuffle page format.
func printGroups(w io.Writer, groups []grouper.Group) error {
	for i, g := range groups {
		if _, err := fmt.Fprintf(w, "グループ%d: %s\n", i+1, strings.Join(g.Names(), ", ")); err != nil {
			return err
		}
	}

	return nil
}

// printRoster writes the per-job member listing in first-seen job order.
func printRoster(w io.Writer, people []grouper.Person) error {
	for _, job := range grouper.Jobs(people) {
		if _, err := fmt.Fprintf(w, "職種: %s\n", job); err != nil {
			return err
		}
		for _, p := range grouper.MembersByJob(people, job) {
			if _, err := fmt.Fprintf(w, "  %s - (%s)\n", p.Name, p.Department); err != nil {
				return err
			}
		}
	}

	return nil
}
