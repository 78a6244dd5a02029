package metrics

import "sort"

// StatusCount is one row of a status histogram.
type StatusCount struct {
	Code  int   `json:"code" yaml:"code"`
	Count int64 `json:"count" yaml:"count"`
}

// KindCount is one row of the error breakdown.
type KindCount struct {
	Kind  ErrorKind `json:"kind" yaml:"kind"`
	Count int64     `json:"count" yaml:"count"`
}

// SortedStatuses flattens a status histogram into rows ordered by code.
func SortedStatuses(hist map[int]int64) []StatusCount {
	if len(hist) == 0 {
		return nil
	}
	rows := make([]StatusCount, 0, len(hist))
	for code, count := range hist {
		rows = append(rows, StatusCount{Code: code, Count: count})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Code < rows[j].Code })
	return rows
}

// SortedKinds flattens the error breakdown into rows ordered by descending
// count, then by kind for stability.
func SortedKinds(kinds map[ErrorKind]int64) []KindCount {
	if len(kinds) == 0 {
		return nil
	}
	rows := make([]KindCount, 0, len(kinds))
	for kind, count := range kinds {
		rows = append(rows, KindCount{Kind: kind, Count: count})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count == rows[j].Count {
			return rows[i].Kind < rows[j].Kind
		}
		return rows[i].Count > rows[j].Count
	})
	return rows
}
