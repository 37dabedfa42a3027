package characteristic

import (
	"fmt"
	"math"

	"github.com/spf13/cast"
)

// Value is the set of Go types a characteristic can hold.
type Value interface {
	bool | uint8 | uint16 | uint32 | uint64 | int | int32 | float32 | float64 | string
}

// formatOf returns the default wire format for T.
func formatOf[T Value]() Format {
	var zero T
	switch any(zero).(type) {
	case bool:
		return FormatBool
	case uint8:
		return FormatUInt8
	case uint16:
		return FormatUInt16
	case uint32:
		return FormatUInt32
	case uint64:
		return FormatUInt64
	case int, int32:
		return FormatInt
	case float32, float64:
		return FormatFloat
	default:
		return FormatString
	}
}

// coerce converts an untyped value (typically decoded JSON) to T.
//
// Numeric targets reject values outside their range instead of wrapping,
// and integer targets reject fractional floats instead of truncating.
// Any failure is reported as ErrTypeMismatch.
func coerce[T Value](v any) (T, error) {
	var zero T
	var (
		out any
		err error
	)

	switch any(zero).(type) {
	case uint8, uint16, uint32, uint64:
		err = integral(v, 0, twoTo64)
	case int, int32:
		err = integral(v, -twoTo63, twoTo63)
	}
	if err != nil {
		return zero, fmt.Errorf("%w: cannot use %v (%T) as %T: %v", ErrTypeMismatch, v, v, zero, err)
	}

	switch any(zero).(type) {
	case bool:
		out, err = cast.ToBoolE(v)
	case uint8:
		var u uint64
		if u, err = unsigned(v, math.MaxUint8); err == nil {
			out = uint8(u)
		}
	case uint16:
		var u uint64
		if u, err = unsigned(v, math.MaxUint16); err == nil {
			out = uint16(u)
		}
	case uint32:
		var u uint64
		if u, err = unsigned(v, math.MaxUint32); err == nil {
			out = uint32(u)
		}
	case uint64:
		out, err = unsigned(v, math.MaxUint64)
	case int:
		out, err = cast.ToIntE(v)
	case int32:
		var i int64
		if i, err = cast.ToInt64E(v); err == nil {
			if i < math.MinInt32 || i > math.MaxInt32 {
				err = fmt.Errorf("%d out of int32 range", i)
			} else {
				out = int32(i)
			}
		}
	case float32:
		var f float64
		if f, err = cast.ToFloat64E(v); err == nil {
			if math.Abs(f) > math.MaxFloat32 && !math.IsInf(f, 0) {
				err = fmt.Errorf("%g out of float32 range", f)
			} else {
				out = float32(f)
			}
		}
	case float64:
		out, err = cast.ToFloat64E(v)
	case string:
		out, err = cast.ToStringE(v)
	}

	if err != nil {
		return zero, fmt.Errorf("%w: cannot use %v (%T) as %T: %v", ErrTypeMismatch, v, v, zero, err)
	}

	t, ok := out.(T)
	if !ok {
		return zero, fmt.Errorf("%w: cannot use %v (%T) as %T", ErrTypeMismatch, v, v, zero)
	}
	return t, nil
}

const (
	twoTo63 = 1 << 63
	twoTo64 = 1 << 64
)

// integral rejects float inputs that are fractional or outside [lo, hi).
// Other input types are left to the conversion.
func integral(v any, lo, hi float64) error {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	default:
		return nil
	}
	if f != math.Trunc(f) {
		return fmt.Errorf("%g is not an integer", f)
	}
	if f < lo || f >= hi {
		return fmt.Errorf("%g out of range", f)
	}
	return nil
}

// unsigned converts v to an unsigned integer no greater than limit.
func unsigned(v any, limit uint64) (uint64, error) {
	u, err := cast.ToUint64E(v)
	if err != nil {
		return 0, err
	}
	if u > limit {
		return 0, fmt.Errorf("%d exceeds maximum %d", u, limit)
	}
	return u, nil
}
