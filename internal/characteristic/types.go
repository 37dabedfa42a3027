package characteristic

// Permission governs which client operations a characteristic allows.
type Permission string

// Permissions as they appear in the serialized "perms" list.
const (
	PermissionRead   Permission = "read"
	PermissionWrite  Permission = "write"
	PermissionEvents Permission = "events" // subscribe to changes
)

// DefaultPermissions is used when a characteristic is built without WithPermissions.
var DefaultPermissions = []Permission{PermissionRead, PermissionWrite, PermissionEvents}

// Format is the wire format tag of a characteristic value.
// The zero value means no format is configured.
type Format string

// Value formats.
const (
	FormatBool   Format = "bool"
	FormatUInt8  Format = "uint8"
	FormatUInt16 Format = "uint16"
	FormatUInt32 Format = "uint32"
	FormatUInt64 Format = "uint64"
	FormatInt    Format = "int"
	FormatFloat  Format = "float"
	FormatString Format = "string"
	FormatTLV8   Format = "tlv8"
	FormatData   Format = "data"
)

// Unit is the unit tag of a characteristic value.
// The zero value means no unit is configured.
type Unit string

// Value units.
const (
	UnitCelsius    Unit = "celsius"
	UnitPercentage Unit = "percentage"
	UnitArcDegrees Unit = "arcdegrees"
	UnitLux        Unit = "lux"
	UnitSeconds    Unit = "seconds"
	UnitPPM        Unit = "ppm"
)

// Type identifies the kind of a characteristic (HAP short UUID form).
type Type string

// Characteristic types used by the predefined constructors.
const (
	TypeOn                            Type = "25"
	TypeBrightness                    Type = "8"
	TypeHue                           Type = "13"
	TypeSaturation                    Type = "2F"
	TypeColorTemperature              Type = "CE"
	TypeName                          Type = "23"
	TypeIdentify                      Type = "14"
	TypeManufacturer                  Type = "20"
	TypeModel                         Type = "21"
	TypeSerialNumber                  Type = "30"
	TypeFirmwareRevision              Type = "52"
	TypeCurrentTemperature            Type = "11"
	TypeTargetTemperature             Type = "35"
	TypeRotationSpeed                 Type = "29"
	TypeProgrammableSwitchOutputState Type = "74"
	TypeSleepInterval                 Type = "3A"
	TypeCarbonMonoxidePeakLevel       Type = "91"
)

// ConnectionID is an opaque identity for a remote subscriber.
// It is only ever compared, never interpreted.
type ConnectionID string

// NoConnection is the absent connection: nothing is excluded from fan-out.
const NoConnection ConnectionID = ""

// Metadata is the fixed descriptive metadata of a characteristic.
// Empty strings and nil pointers mean "not configured".
type Metadata struct {
	Description string
	Format      Format
	Unit        Unit
	MaxLength   *int
	MaxValue    *float64
	MinValue    *float64
	MinStep     *float64
}

// Notifier fans a characteristic's current state out to subscribed
// connections. Implemented by the device.
type Notifier interface {
	// Notify pushes the state of every listener to each subscribed connection
	// except the one identified by except (NoConnection excludes nobody).
	Notify(listeners []Characteristic, except ConnectionID)
}

// Owner is the non-owning handle a characteristic keeps to its service.
//
// Notifier is resolved on every notification and returns nil once the
// service/accessory/device chain has been torn down.
type Owner interface {
	Notifier() Notifier
}

// Characteristic is the type-erased view of a Generic cell.
// Services store this interface so cells of different value types coexist.
type Characteristic interface {
	IID() uint64
	SetIID(iid uint64)
	Type() Type
	Permissions() []Permission

	Description() string
	Format() Format
	Unit() Unit
	MaxLength() *int
	MaxValue() *float64
	MinValue() *float64
	MinStep() *float64

	Owner() Owner
	SetOwner(owner Owner)

	// UntypedValue returns the current value boxed, or nil when absent.
	UntypedValue() any

	// SetUntypedValue converts v to the declared type and stores it.
	// A nil v clears the value. On success the owning device is always
	// notified, excluding origin.
	SetUntypedValue(v any, origin ConnectionID) error
}

// HasPermission reports whether c grants p.
func HasPermission(c Characteristic, p Permission) bool {
	for _, have := range c.Permissions() {
		if have == p {
			return true
		}
	}
	return false
}
