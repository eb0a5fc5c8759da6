package services

import "errors"

// Dashboard service errors
var (
	// ErrDatasetNotLoaded is returned by every read before the first successful load.
	ErrDatasetNotLoaded = errors.New("dataset not loaded")

	// ErrNoDistrictData is returned when no loaded source carries a district column.
	ErrNoDistrictData = errors.New("no district data")

	// ErrEmptySelection is returned when a dashboard is requested without states.
	ErrEmptySelection = errors.New("at least one state must be selected")
)
