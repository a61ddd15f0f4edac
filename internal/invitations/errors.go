package invitations

import "errors"

// Closed set of lifecycle failures. Handlers match these with errors.Is and
// map them to HTTP responses; anything else is an internal error.
var (
	ErrUnauthorized         = errors.New("actor may not manage invitations for this company")
	ErrAlreadyMember        = errors.New("email already belongs to a member of this company")
	ErrDuplicatePending     = errors.New("a pending invitation for this email already exists")
	ErrNotFound             = errors.New("invitation not found")
	ErrAlreadyAccepted      = errors.New("invitation was already accepted")
	ErrCancelled            = errors.New("invitation was cancelled")
	ErrExpired              = errors.New("invitation has expired")
	ErrRegistrationRequired = errors.New("no account exists for the invited email")
	ErrAuthRequired         = errors.New("sign in with the invited email to accept")
	ErrEmailNotVerified     = errors.New("the invited email is not verified")
	ErrDispatchFailed       = errors.New("invitation email could not be sent")
)
