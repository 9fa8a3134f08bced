package grouper

import (
	"math"
	"strings"
	"unicode"

	"github.com/arloliu/grouper/strategy"
)

var defaultStrategy = strategy.NewBalancedShuffle()

// Partition splits a roster into at most groupCount groups with the balanced strategy.
//
// People sharing a job and department are spread across groups as evenly as
// possible, and the arrangement is freshly randomized on every call. The
// roster is not modified.
//
// Parameters:
//   - roster: People to group
//   - groupCount: Requested number of groups
//
// Returns:
//   - []Group: min(groupCount, len(roster)) groups; empty (never nil) when that is <= 0
//
// Example:
//
//	groups := grouper.Partition(people, 3)
//	for i, g := range groups {
//	    fmt.Printf("グループ%d: %s\n", i+1, strings.Join(g.Names(), ", "))
//	}
func Partition(roster []Person, groupCount int) []Group {
	return defaultStrategy.Group(roster, groupCount)
}

// Jobs returns the distinct jobs of the roster in first-encounter order.
func Jobs(roster []Person) []string {
	seen := make(map[string]struct{}, len(roster))
	jobs := make([]string, 0)

	for _, p := range roster {
		if _, ok := seen[p.Job]; ok {
			continue
		}
		seen[p.Job] = struct{}{}
		jobs = append(jobs, p.Job)
	}

	return jobs
}

// MembersByJob returns the people holding job, in roster order.
func MembersByJob(roster []Person, job string) []Person {
	members := make([]Person, 0)
	for _, p := range roster {
		if p.Job == job {
			members = append(members, p)
		}
	}

	return members
}

// ParseGroupCount converts user-entered text into a group count.
//
// Parsing is lenient: leading whitespace is skipped, an optional sign is
// accepted, and the longest run of ASCII digits that follows is used; any
// trailing text is ignored. Text without leading digits yields 0, which
// Partition turns into an empty result. Values beyond the int range
// saturate to math.MaxInt or math.MinInt.
//
// Examples:
//
//	ParseGroupCount("3")     // 3
//	ParseGroupCount(" 4人")  // 4
//	ParseGroupCount("-2")    // -2
//	ParseGroupCount("abc")   // 0
//	ParseGroupCount("")      // 0
func ParseGroupCount(raw string) int {
	s := strings.TrimLeftFunc(raw, unicode.IsSpace)

	negative := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		negative = s[0] == '-'
		s = s[1:]
	}

	n := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			break
		}
		d := int(c - '0')

		if negative {
			if n < (math.MinInt+d)/10 {
				return math.MinInt
			}
			n = n*10 - d
		} else {
			if n > (math.MaxInt-d)/10 {
				return math.MaxInt
			}
			n = n*10 + d
		}
	}

	return n
}
