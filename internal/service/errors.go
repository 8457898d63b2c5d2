package service

import "errors"

// Sentinel errors returned by the service layer. Handlers translate them
// to HTTP statuses; nothing below this package leaks raw storage errors.
var (
	// ErrValidation covers malformed or invalid payloads: empty ingredient
	// list, duplicate ingredient ids, amount < 1, cooking_time < 1, unknown
	// tag or ingredient references.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when a referenced recipe, user, tag or
	// ingredient does not exist, or when removing an absent pair.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateEntry is returned when re-adding an already present
	// favorite, shopping-cart or follow pair.
	ErrDuplicateEntry = errors.New("already exists")

	// ErrSelfFollow is returned for any subscribe attempt targeting the
	// requester themselves, regardless of current state.
	ErrSelfFollow = errors.New("cannot subscribe to yourself")

	// ErrForbidden is returned when a user tries to modify a recipe they
	// do not own.
	ErrForbidden = errors.New("not the author of this recipe")

	// ErrInvalidCredentials is returned on failed token issuance.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
