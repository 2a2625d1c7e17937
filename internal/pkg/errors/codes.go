package errors

import "net/http"

var (
	ErrOutsideBoundary = New(
		"OUTSIDE_BOUNDARY",
		"Selected point is outside the supported area",
		http.StatusUnprocessableEntity,
	)

	ErrInvalidCoordinates = New(
		"INVALID_COORDINATES",
		"Invalid coordinates provided",
		http.StatusBadRequest,
	)

	ErrInvalidRadius = New(
		"INVALID_RADIUS",
		"Invalid radius value",
		http.StatusBadRequest,
	)

	ErrInvalidTime = New(
		"INVALID_TIME",
		"Please enter a valid time (hour 1-12, minute 0-59)",
		http.StatusBadRequest,
	)

	ErrInvalidCategory = New(
		"INVALID_CATEGORY",
		"Unknown facility category",
		http.StatusBadRequest,
	)

	ErrNoPointSelected = New(
		"NO_POINT_SELECTED",
		"Select a location before running the analysis",
		http.StatusConflict,
	)

	ErrNoFeatureData = New(
		"NO_FEATURE_DATA",
		"Facility data has not been loaded yet",
		http.StatusServiceUnavailable,
	)

	ErrUpstreamUnavailable = New(
		"UPSTREAM_UNAVAILABLE",
		"External data provider is unavailable",
		http.StatusBadGateway,
	)

	ErrSessionNotFound = New(
		"SESSION_NOT_FOUND",
		"Session not found",
		http.StatusNotFound,
	)

	ErrAnalysisNotFound = New(
		"ANALYSIS_NOT_FOUND",
		"Analysis not found",
		http.StatusNotFound,
	)

	ErrLocationNotFound = New(
		"LOCATION_NOT_FOUND",
		"Location not found",
		http.StatusNotFound,
	)

	ErrStaleResult = New(
		"STALE_RESULT",
		"Selection changed while the request was in flight",
		http.StatusConflict,
	)

	ErrDatabaseError = New(
		"DATABASE_ERROR",
		"Database operation failed",
		http.StatusInternalServerError,
	)

	ErrCacheError = New(
		"CACHE_ERROR",
		"Cache operation failed",
		http.StatusInternalServerError,
	)

	ErrInvalidRequest = New(
		"INVALID_REQUEST",
		"Invalid request parameters",
		http.StatusBadRequest,
	)

	ErrInternalServer = New(
		"INTERNAL_SERVER_ERROR",
		"Internal server error",
		http.StatusInternalServerError,
	)
)
