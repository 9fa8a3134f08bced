package grouper

import "github.com/arloliu/grouper/types"

// Sentinel errors returned by the Service and the roster sources.
//
// They are re-exported from the types package so errors.Is works no matter
// which package produced the error.
var (
	ErrInvalidConfig          = types.ErrInvalidConfig
	ErrRosterProviderRequired = types.ErrRosterProviderRequired
	ErrAlreadyStarted         = types.ErrAlreadyStarted
	ErrNotStarted             = types.ErrNotStarted
	ErrRosterLoading          = types.ErrRosterLoading
	ErrRosterUnavailable      = types.ErrRosterUnavailable
	ErrUnknownStrategy        = types.ErrUnknownStrategy
	ErrUnknownSource          = types.ErrUnknownSource
	ErrInvalidPerson          = types.ErrInvalidPerson
	ErrNotionRequest          = types.ErrNotionRequest
	ErrConnectivity           = types.ErrConnectivity
)
