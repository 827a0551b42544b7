package dayview

// ColumnSpan is the half-open range of layout columns [StartColumn, EndColumn)
// an event occupies.
type ColumnSpan struct {
	StartColumn int `json:"start_column"`
	EndColumn   int `json:"end_column"`
}

// Width returns the number of columns covered by the span.
func (s ColumnSpan) Width() int {
	return s.EndColumn - s.StartColumn
}

// ResolveColumnSpans assigns a column span to every range so that no two
// conflicting ranges share a start column. The returned slice is aligned
// with ranges; the int is the total number of columns used.
//
// Placement is greedy and follows input order, so callers should sort by
// start time first:
//
//   - every range takes the lowest column not already started by a
//     conflicting, previously placed range
//   - once all ranges are placed, each one grows to the right across
//     columns that hold no conflicting range, up to the column count
//
// Non-conflicting ranges are never merged back into fewer columns.
func ResolveColumnSpans(ranges []TimeRange) ([]ColumnSpan, int) {
	spans := make([]ColumnSpan, 0, len(ranges))
	columnCount := 0

	for i := range ranges {
		for c := 0; c < len(ranges); c++ {
			if !columnEmpty(ranges, spans, c, i) {
				continue
			}
			spans = append(spans, ColumnSpan{StartColumn: c, EndColumn: c + 1})
			columnCount = max(columnCount, c+1)
			break
		}
	}

	for i := range spans {
		for c := spans[i].EndColumn; c < columnCount; c++ {
			if !columnEmpty(ranges, spans, c, i) {
				break
			}
			spans[i].EndColumn++
		}
	}

	return spans, columnCount
}

// columnEmpty reports whether no placed span other than position starts at
// column while conflicting with ranges[position].
func columnEmpty(ranges []TimeRange, spans []ColumnSpan, column, position int) bool {
	for i, span := range spans {
		if i == position {
			continue
		}
		if span.StartColumn == column && ranges[i].Conflicts(ranges[position]) {
			return false
		}
	}
	return true
}
