package types

import "slices"

// PatternSet is the merged, deduplicated collection of patterns registered
// for one datasource. The zero value is an empty set.
//
// A PatternSet has no mutating methods; sets handed out by the registry
// are snapshots that cannot change the registry's state.
type PatternSet struct {
	members map[Pattern]struct{}
}

// NewPatternSet builds a set from patterns, dropping duplicates.
func NewPatternSet(patterns ...Pattern) PatternSet {
	if len(patterns) == 0 {
		return PatternSet{}
	}
	members := make(map[Pattern]struct{}, len(patterns))
	for _, p := range patterns {
		members[p] = struct{}{}
	}
	return PatternSet{members: members}
}

// Len returns the number of distinct patterns in the set.
func (s PatternSet) Len() int {
	return len(s.members)
}

// Empty reports whether the set has no patterns.
func (s PatternSet) Empty() bool {
	return len(s.members) == 0
}

// Contains reports whether p is a member of the set.
func (s PatternSet) Contains(p Pattern) bool {
	_, ok := s.members[p]
	return ok
}

// Union returns a new set holding the members of both sets.
// Neither input is modified.
func (s PatternSet) Union(other PatternSet) PatternSet {
	if other.Empty() {
		return s
	}
	if s.Empty() {
		return other
	}
	members := make(map[Pattern]struct{}, len(s.members)+len(other.members))
	for p := range s.members {
		members[p] = struct{}{}
	}
	for p := range other.members {
		members[p] = struct{}{}
	}
	return PatternSet{members: members}
}

// Slice returns the patterns as a sorted copy. Sorting makes the output
// independent of contribution order.
func (s PatternSet) Slice() []Pattern {
	patterns := make([]Pattern, 0, len(s.members))
	for p := range s.members {
		patterns = append(patterns, p)
	}
	slices.Sort(patterns)
	return patterns
}

// Strings returns the patterns as sorted strings.
func (s PatternSet) Strings() []string {
	strs := make([]string, 0, len(s.members))
	for p := range s.members {
		strs = append(strs, string(p))
	}
	slices.Sort(strs)
	return strs
}
