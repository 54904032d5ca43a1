package domain

import "errors"

var (
	// ErrIncompleteSelection is returned when a selection lacks state, district, commodity or date.
	ErrIncompleteSelection = errors.New("incomplete selection")

	// ErrInvalidDate is returned for dates not in DateLayout.
	ErrInvalidDate = errors.New("invalid date")
)

// User-facing messages for the informational outcomes of a lookup.
const (
	MsgNoMatch      = "No data available for the selected inputs."
	MsgNoAdvisories = "No advisories available for this crop stage."
)
