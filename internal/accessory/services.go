package accessory

import "github.com/nerrad567/gray-logic-hap/internal/characteristic"

// Lightbulb is a dimmable colour bulb service with typed handles.
type Lightbulb struct {
	*Service
	On               *characteristic.Generic[bool]
	Brightness       *characteristic.Generic[int]
	Hue              *characteristic.Generic[float32]
	Saturation       *characteristic.Generic[float32]
	ColorTemperature *characteristic.Generic[uint32]
}

// NewLightbulb creates a bulb that is off at full brightness.
func NewLightbulb() *Lightbulb {
	l := &Lightbulb{
		On:               characteristic.NewOn(false),
		Brightness:       characteristic.NewBrightness(100),
		Hue:              characteristic.NewHue(0),
		Saturation:       characteristic.NewSaturation(0),
		ColorTemperature: characteristic.NewColorTemperature(140),
	}
	l.Service = NewService(ServiceLightbulb, l.On, l.Brightness, l.Hue, l.Saturation, l.ColorTemperature)
	return l
}

// Fan is a fan service.
type Fan struct {
	*Service
	On            *characteristic.Generic[bool]
	RotationSpeed *characteristic.Generic[float32]
}

// NewFan creates a stopped fan.
func NewFan() *Fan {
	f := &Fan{
		On:            characteristic.NewOn(false),
		RotationSpeed: characteristic.NewRotationSpeed(0),
	}
	f.Service = NewService(ServiceFan, f.On, f.RotationSpeed)
	return f
}

// Thermostat is a heating set point with a measured temperature.
type Thermostat struct {
	*Service
	CurrentTemperature *characteristic.Generic[float32]
	TargetTemperature  *characteristic.Generic[float32]
}

// NewThermostat creates a thermostat reading current and targeting target.
func NewThermostat(current, target float32) *Thermostat {
	t := &Thermostat{
		CurrentTemperature: characteristic.NewCurrentTemperature(current),
		TargetTemperature:  characteristic.NewTargetTemperature(target),
	}
	t.Service = NewService(ServiceThermostat, t.CurrentTemperature, t.TargetTemperature)
	return t
}

// StatelessSwitch is a programmable switch with an output state.
type StatelessSwitch struct {
	*Service
	OutputState *characteristic.Generic[uint8]
}

// NewStatelessSwitch creates a switch with output state 0.
func NewStatelessSwitch() *StatelessSwitch {
	s := &StatelessSwitch{OutputState: characteristic.NewProgrammableSwitchOutputState(0)}
	s.Service = NewService(ServiceStatelessSwitch, s.OutputState)
	return s
}

// CarbonMonoxideSensor reports the peak CO level and its sleep interval.
type CarbonMonoxideSensor struct {
	*Service
	PeakLevel     *characteristic.Generic[float32]
	SleepInterval *characteristic.Generic[uint32]
}

// NewCarbonMonoxideSensor creates a sensor reading zero.
func NewCarbonMonoxideSensor() *CarbonMonoxideSensor {
	s := &CarbonMonoxideSensor{
		PeakLevel:     characteristic.NewCarbonMonoxidePeakLevel(0),
		SleepInterval: characteristic.NewSleepInterval(0),
	}
	s.Service = NewService(ServiceCarbonMonoxideSensor, s.PeakLevel, s.SleepInterval)
	return s
}
