package message

type SetWindSpeed struct {
	Speed float64
}

func (m *SetWindSpeed) Validate() error { return checkNonNegative("Speed", m.Speed) }

type SetAirTemperature struct {
	Temperature float64
}

func (m *SetAirTemperature) Validate() error { return nil }

type SetTrackTemperature struct {
	Temperature float64
}

func (m *SetTrackTemperature) Validate() error { return nil }

// Relative humidity in percent
type SetHumidity struct {
	Humidity float64
}

func (m *SetHumidity) Validate() (err error) {
	if m.Humidity < 0 || m.Humidity >= 100 {
		err = outOfRange("Humidity", m.Humidity)
	}
	return
}

// Pressure in millibar
type SetAtmosphericPressure struct {
	Pressure float64
}

func (m *SetAtmosphericPressure) Validate() error { return checkPositive("Pressure", m.Pressure) }

type SetIsWet struct {
	IsWet bool
}

func (m *SetIsWet) Validate() error { return nil }

// Wind direction in degrees
type SetWindAngle struct {
	Angle int
}

func (m *SetWindAngle) Validate() (err error) {
	if !IsValidWindAngle(m.Angle) {
		err = outOfRange("Angle", m.Angle)
	}
	return
}

func IsValidWindAngle(angle int) bool {
	return angle >= 0 && angle <= 360
}
