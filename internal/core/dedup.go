package core

import (
	"slices"
	"strconv"
	"strings"
)

// RecordSet is a set of records that remembers first-insertion order.
// Two records are equal when they have the same number of fields and every
// field is the same string at the same position.
type RecordSet struct {
	index map[string]struct{}
	rows  []Record
}

// NewRecordSet returns an empty set.
func NewRecordSet() *RecordSet {
	return &RecordSet{index: make(map[string]struct{})}
}

// Add inserts rec if no equal record is present and reports whether it did.
func (s *RecordSet) Add(rec Record) bool {
	key := recordKey(rec)
	if _, ok := s.index[key]; ok {
		return false
	}
	s.index[key] = struct{}{}
	s.rows = append(s.rows, rec)
	return true
}

// Contains reports whether an equal record is present.
func (s *RecordSet) Contains(rec Record) bool {
	_, ok := s.index[recordKey(rec)]
	return ok
}

// Len returns the number of distinct records.
func (s *RecordSet) Len() int {
	return len(s.rows)
}

// Records returns the records in the requested order. The returned slice is
// a copy; the records themselves are shared.
func (s *RecordSet) Records(order OrderPolicy) []Record {
	out := slices.Clone(s.rows)
	if order == OrderSorted {
		slices.SortFunc(out, func(a, b Record) int {
			return slices.Compare(a, b)
		})
	}
	return out
}

// recordKey encodes a record injectively: each field is prefixed by its
// byte length, so field contents can never be mistaken for a boundary.
func recordKey(rec Record) string {
	var b strings.Builder
	for _, f := range rec {
		b.WriteString(strconv.Itoa(len(f)))
		b.WriteByte(':')
		b.WriteString(f)
	}
	return b.String()
}
