package message

import "fmt"

// Numeric argument outside of its permitted range
type ArgumentOutOfRangeError struct {
	Param string
	Value any
}

func (e *ArgumentOutOfRangeError) Error() string {
	return fmt.Sprintf("argument %s out of range: %v", e.Param, e.Value)
}

// Argument that is missing or otherwise invalid
type ArgumentError struct {
	Param  string
	Reason string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("invalid argument %s: %s", e.Param, e.Reason)
}

func outOfRange(param string, value any) error {
	return &ArgumentOutOfRangeError{Param: param, Value: value}
}

func checkDriver(driverID int) (err error) {
	if driverID <= 0 {
		err = outOfRange("DriverID", driverID)
	}
	return
}

func checkNonNegative[V ~int | ~int64 | ~float64](param string, value V) (err error) {
	if value < 0 {
		err = outOfRange(param, value)
	}
	return
}

func checkPositive[V ~int | ~int64 | ~float64](param string, value V) (err error) {
	if value <= 0 {
		err = outOfRange(param, value)
	}
	return
}

func checkSector(param string, sector int) (err error) {
	if sector < 1 || sector > 3 {
		err = outOfRange(param, sector)
	}
	return
}

func checkNotNil(param string, present bool) (err error) {
	if !present {
		err = &ArgumentError{Param: param, Reason: "value is required"}
	}
	return
}

type enum interface {
	IsValid() bool
}

func checkEnum(param string, value enum) (err error) {
	if !value.IsValid() {
		err = outOfRange(param, value)
	}
	return
}
