package accessory

import "errors"

var (
	// ErrNotFound is returned when an aid/iid pair does not exist.
	ErrNotFound = errors.New("accessory: characteristic not found")

	// ErrNotificationNotSupported is returned when subscribing to a
	// characteristic without the events permission.
	ErrNotificationNotSupported = errors.New("accessory: characteristic does not support events")

	// ErrInvalidState is returned when stored device state cannot be decoded.
	ErrInvalidState = errors.New("accessory: invalid stored state")
)

// HAP status codes reported per characteristic by ReadCharacteristics and
// WriteCharacteristics.
const (
	StatusSuccess                 = 0
	StatusReadOnly                = -70404
	StatusWriteOnly               = -70405
	StatusNotificationUnsupported = -70406
	StatusNotFound                = -70409
	StatusInvalidValue            = -70410
)
