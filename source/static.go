package source

import (
	"context"
	"sync"

	"github.com/arloliu/grouper/types"
)

// Static implements a roster provider with a fixed list of people.
type Static struct {
	mu     sync.RWMutex
	people []types.Person
}

var _ types.RosterProvider = (*Static)(nil)

// NewStatic creates a new static roster provider.
//
// The provider returns a fixed list of people that only changes through Update.
// Useful for testing and for small teams whose roster is known at startup.
//
// Parameters:
//   - people: Fixed roster (copied)
//
// Returns:
//   - *Static: Initialized static provider
//
// Example:
//
//	src := source.NewStatic(source.DefaultRoster())
//	svc, err := grouper.NewService(&cfg, src)
func NewStatic(people []types.Person) *Static {
	s := &Static{}
	s.Update(people)

	return s
}

// ListPeople returns a copy of the static roster.
//
// Returns:
//   - []types.Person: The fixed roster
//   - error: Always nil (never fails)
func (s *Static) ListPeople(_ context.Context) ([]types.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]types.Person, len(s.people))
	copy(result, s.people)

	return result, nil
}

// Update replaces the roster.
//
// This allows the static provider to simulate roster changes, which is useful
// for testing refresh scenarios.
//
// Parameters:
//   - people: New roster (copied)
func (s *Static) Update(people []types.Person) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.people = make([]types.Person, len(people))
	copy(s.people, people)
}

// DefaultRoster returns the built-in sample roster of twelve people:
// five engineers and three designers in the product division, and four
// salespeople in the sales division.
func DefaultRoster() []types.Person {
	const (
		engineer = "エンジニア"
		designer = "デザイナー"
		sales    = "セールス"
		product  = "プロダクト事業部"
		salesDiv = "セールス事業部"
	)

	return []types.Person{
		{Name: "佐藤 健", Job: engineer, Department: product},
		{Name: "鈴木 美咲", Job: engineer, Department: product},
		{Name: "高橋 翔", Job: engineer, Department: product},
		{Name: "田中 優子", Job: engineer, Department: product},
		{Name: "伊藤 大輔", Job: engineer, Department: product},
		{Name: "渡辺 彩", Job: designer, Department: product},
		{Name: "山本 拓海", Job: designer, Department: product},
		{Name: "中村 結衣", Job: designer, Department: product},
		{Name: "小林 誠", Job: sales, Department: salesDiv},
		{Name: "加藤 真由", Job: sales, Department: salesDiv},
		{Name: "吉田 亮", Job: sales, Department: salesDiv},
		{Name: "山田 花子", Job: sales, Department: salesDiv},
	}
}
