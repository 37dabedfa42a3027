package characteristic

// Predefined characteristics with their standard metadata. Caller options are
// applied after the defaults, so any default can be overridden.

// withDefaults places caller options after the defaults.
func withDefaults(opts []Option, defaults ...Option) []Option {
	return append(defaults, opts...)
}

// NewOn creates the power state characteristic.
func NewOn(value bool, opts ...Option) *Generic[bool] {
	return New(TypeOn, &value, withDefaults(opts,
		WithDescription("On"),
	)...)
}

// NewBrightness creates the brightness characteristic (percent).
func NewBrightness(value int, opts ...Option) *Generic[int] {
	return New(TypeBrightness, &value, withDefaults(opts,
		WithDescription("Brightness"),
		WithUnit(UnitPercentage),
		WithMaxValue(100),
		WithMinValue(0),
		WithMinStep(1),
	)...)
}

// NewHue creates the hue characteristic (degrees).
func NewHue(value float32, opts ...Option) *Generic[float32] {
	return New(TypeHue, &value, withDefaults(opts,
		WithDescription("Hue"),
		WithUnit(UnitArcDegrees),
		WithMaxValue(360),
		WithMinValue(0),
		WithMinStep(1),
	)...)
}

// NewSaturation creates the saturation characteristic (percent).
func NewSaturation(value float32, opts ...Option) *Generic[float32] {
	return New(TypeSaturation, &value, withDefaults(opts,
		WithDescription("Saturation"),
		WithUnit(UnitPercentage),
		WithMaxValue(100),
		WithMinValue(0),
		WithMinStep(1),
	)...)
}

// NewColorTemperature creates the colour temperature characteristic (mireds).
func NewColorTemperature(value uint32, opts ...Option) *Generic[uint32] {
	return New(TypeColorTemperature, &value, withDefaults(opts,
		WithDescription("Color Temperature"),
		WithMaxValue(500),
		WithMinValue(140),
		WithMinStep(1),
	)...)
}

// NewName creates the read-only name characteristic.
func NewName(value string, opts ...Option) *Generic[string] {
	return New(TypeName, &value, withDefaults(opts,
		WithPermissions(PermissionRead),
		WithDescription("Name"),
	)...)
}

// NewIdentify creates the write-only identify characteristic. It has no value.
func NewIdentify(opts ...Option) *Generic[bool] {
	return New[bool](TypeIdentify, nil, withDefaults(opts,
		WithPermissions(PermissionWrite),
		WithDescription("Identify"),
	)...)
}

// NewManufacturer creates the read-only manufacturer characteristic.
func NewManufacturer(value string, opts ...Option) *Generic[string] {
	return New(TypeManufacturer, &value, withDefaults(opts,
		WithPermissions(PermissionRead),
		WithDescription("Manufacturer"),
	)...)
}

// NewModel creates the read-only model characteristic.
func NewModel(value string, opts ...Option) *Generic[string] {
	return New(TypeModel, &value, withDefaults(opts,
		WithPermissions(PermissionRead),
		WithDescription("Model"),
	)...)
}

// NewSerialNumber creates the read-only serial number characteristic.
func NewSerialNumber(value string, opts ...Option) *Generic[string] {
	return New(TypeSerialNumber, &value, withDefaults(opts,
		WithPermissions(PermissionRead),
		WithDescription("Serial Number"),
	)...)
}

// NewFirmwareRevision creates the read-only firmware revision characteristic.
func NewFirmwareRevision(value string, opts ...Option) *Generic[string] {
	return New(TypeFirmwareRevision, &value, withDefaults(opts,
		WithPermissions(PermissionRead),
		WithDescription("Firmware Revision"),
	)...)
}

// NewCurrentTemperature creates the measured temperature characteristic.
func NewCurrentTemperature(value float32, opts ...Option) *Generic[float32] {
	return New(TypeCurrentTemperature, &value, withDefaults(opts,
		WithPermissions(PermissionRead, PermissionEvents),
		WithDescription("Current Temperature"),
		WithUnit(UnitCelsius),
		WithMaxValue(100),
		WithMinValue(0),
		WithMinStep(0.1),
	)...)
}

// NewTargetTemperature creates the thermostat set point characteristic.
func NewTargetTemperature(value float32, opts ...Option) *Generic[float32] {
	return New(TypeTargetTemperature, &value, withDefaults(opts,
		WithDescription("Target Temperature"),
		WithUnit(UnitCelsius),
		WithMaxValue(38),
		WithMinValue(10),
		WithMinStep(0.1),
	)...)
}

// NewRotationSpeed creates the fan speed characteristic.
func NewRotationSpeed(value float32, opts ...Option) *Generic[float32] {
	return New(TypeRotationSpeed, &value, withDefaults(opts,
		WithDescription("Rotation Speed"),
		WithMaxValue(100),
		WithMinValue(0),
		WithMinStep(1),
	)...)
}

// NewProgrammableSwitchOutputState creates the programmable switch output characteristic.
func NewProgrammableSwitchOutputState(value uint8, opts ...Option) *Generic[uint8] {
	return New(TypeProgrammableSwitchOutputState, &value, withDefaults(opts,
		WithDescription("Programmable Switch Output State"),
		WithMaxValue(1),
		WithMinValue(0),
		WithMinStep(1),
	)...)
}

// NewSleepInterval creates the sleep interval characteristic.
func NewSleepInterval(value uint32, opts ...Option) *Generic[uint32] {
	return New(TypeSleepInterval, &value, withDefaults(opts,
		WithPermissions(PermissionRead, PermissionEvents),
		WithDescription("Sleep Interval"),
		WithMinValue(0),
		WithMinStep(1),
	)...)
}

// NewCarbonMonoxidePeakLevel creates the CO peak level characteristic.
func NewCarbonMonoxidePeakLevel(value float32, opts ...Option) *Generic[float32] {
	return New(TypeCarbonMonoxidePeakLevel, &value, withDefaults(opts,
		WithPermissions(PermissionRead, PermissionEvents),
		WithDescription("Carbon monoxide Peak Level"),
		WithUnit(UnitPPM),
		WithMaxValue(100),
		WithMinValue(0),
		WithMinStep(1),
	)...)
}
