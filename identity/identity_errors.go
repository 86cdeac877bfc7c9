package identity

import "errors"

var (
	MissingCredentialErr   = errors.New("missing credential")
	MalformedCredentialErr = errors.New("malformed credential")
	InvalidCredentialErr   = errors.New("invalid credential")
	UserNotFoundErr        = errors.New("user not found")
)
