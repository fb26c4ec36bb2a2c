package model

import "fmt"

type SortColumn string

const (
	SortVendorRating SortColumn = "rating"
	SortDistance     SortColumn = "distance"
	SortMenuItems    SortColumn = "item_count"
)

type SortDirection string

const (
	SortAscending  SortDirection = "asc"
	SortDescending SortDirection = "desc"
)

// ParseSortColumn accepts the wire value of a column.
func ParseSortColumn(s string) (SortColumn, error) {
	switch SortColumn(s) {
	case SortVendorRating, SortDistance, SortMenuItems:
		return SortColumn(s), nil
	}
	return "", fmt.Errorf("unknown sort column %q", s)
}

// DefaultDirection is the direction a column starts in when first selected.
func (c SortColumn) DefaultDirection() SortDirection {
	switch c {
	case SortDistance:
		return SortAscending
	default:
		return SortDescending
	}
}

func (d SortDirection) Flip() SortDirection {
	if d == SortAscending {
		return SortDescending
	}
	return SortAscending
}

// SortState is the active column and direction for the result table.
type SortState struct {
	Column    SortColumn    `json:"column"`
	Direction SortDirection `json:"direction"`
}

// DefaultSortState matches the backend's default ordering.
func DefaultSortState() SortState {
	return SortState{Column: SortMenuItems, Direction: SortDescending}
}

// Next returns the state after the user selects column: the same column
// flips direction, a new column starts at its default direction.
func (s SortState) Next(column SortColumn) SortState {
	if s.Column == column {
		return SortState{Column: column, Direction: s.Direction.Flip()}
	}
	return SortState{Column: column, Direction: column.DefaultDirection()}
}

func (s SortState) WireSortBy() string    { return string(s.Column) }
func (s SortState) WireDirection() string { return string(s.Direction) }

func (s SortState) String() string {
	return fmt.Sprintf("%s %s", s.Column, s.Direction)
}
