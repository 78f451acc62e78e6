package lease

import "errors"

// ErrLeaseUnavailable indicates the lease backend could not be reached
var ErrLeaseUnavailable = errors.New("lease: backend unavailable")
