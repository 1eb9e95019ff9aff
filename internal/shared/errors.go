package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Catalog errors
	ErrTrackNotFound  = fmt.Errorf("track not found")
	ErrUnknownCatalog = fmt.Errorf("unknown catalog")
	ErrAlreadyLiked   = fmt.Errorf("song already liked")
	ErrNotLiked       = fmt.Errorf("song not liked")

	// Player errors
	ErrNoActiveTrack = fmt.Errorf("no active track")
	ErrNoAudio       = fmt.Errorf("audio not initialized")
	ErrClosed        = fmt.Errorf("coordinator closed")

	// Remote backend errors
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrUnknownProcedure   = fmt.Errorf("unknown procedure")
	ErrInvalidField       = fmt.Errorf("invalid field")
	ErrRemoteRead         = fmt.Errorf("remote read failed")
	ErrRemoteRPC          = fmt.Errorf("remote procedure call failed")
	ErrRemoteWrite        = fmt.Errorf("remote write failed")
	ErrAPIRequest         = fmt.Errorf("API request failed")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
