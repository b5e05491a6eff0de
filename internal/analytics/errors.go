package analytics

import "errors"

var (
	ErrInvalidActivityType   = errors.New("invalid activity type")
	ErrInvalidActivityCursor = errors.New("invalid activity cursor")
)
