package domain

import "errors"

var (
	// ErrDataUnavailable means the reference dataset could not be loaded or parsed.
	ErrDataUnavailable = errors.New("reference data unavailable")

	// ErrInvalidSoilProfile means the caller supplied missing or out-of-range soil values.
	ErrInvalidSoilProfile = errors.New("invalid soil profile")
)
