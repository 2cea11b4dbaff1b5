package folding

import "errors"

// ErrInvalidArgument is wrapped by every validation error returned by this package.
var ErrInvalidArgument = errors.New("invalid argument")
