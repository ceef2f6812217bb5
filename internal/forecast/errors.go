package forecast

import "errors"

// Validation failures returned synchronously to the caller. The engine does
// no I/O, so there is nothing transient to retry internally; callers decide
// whether to correct the input or surface the error.
var (
	ErrUnknownMetric       = errors.New("unknown metric")
	ErrUnknownModel        = errors.New("unknown model")
	ErrInvalidHorizon      = errors.New("invalid horizon")
	ErrUnsupportedInterval = errors.New("unsupported interval")
	ErrParameterOutOfRange = errors.New("scenario parameter out of range")
)
