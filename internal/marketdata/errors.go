package marketdata

import "errors"

var (
	ErrNotFound    = errors.New("no market data for this ticker")
	ErrRateLimited = errors.New("rate limited by provider")
	ErrAuthFailed  = errors.New("provider authentication failed")
)
