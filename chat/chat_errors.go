package chat

import "errors"

var (
	RecipientOfflineErr = errors.New("recipient offline")
	CrossTenantErr      = errors.New("recipient outside sender tenant")
	UnknownEventErr     = errors.New("unknown event")
	MalformedEventErr   = errors.New("malformed event")
)
