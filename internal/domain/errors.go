package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// saved itinerary does not exist or is not owned by the caller.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned when a trip request fails validation (missing
// destination, end date not after start date, no interests, ...).
// It is always raised before any outbound network call.
// Handlers should map this to HTTP 400.
var ErrValidation = errors.New("validation error")

// ErrGeneration is returned when the generative model call fails or its
// output cannot be decoded into a valid ItineraryPlan. It is the only
// total-failure path of the itinerary pipeline and is never retried.
// Handlers should map this to HTTP 502.
var ErrGeneration = errors.New("generation error")

// ErrUnauthorized is returned by the auth middleware when a request carries
// no valid access token.
var ErrUnauthorized = errors.New("unauthorized")
