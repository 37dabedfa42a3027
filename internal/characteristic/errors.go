package characteristic

import "errors"

// Domain errors for the characteristic package.
//
//	if errors.Is(err, characteristic.ErrTypeMismatch) {
//	    // report an invalid value to the remote writer
//	}
var (
	// ErrTypeMismatch is returned when an untyped value cannot be converted
	// to the characteristic's declared value type. The stored value is left
	// untouched.
	ErrTypeMismatch = errors.New("characteristic: value type mismatch")
)
