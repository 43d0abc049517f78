package inventory

import (
	"errors"
	"fmt"
)

var (
	// ErrNonMonotonicTimes is returned when irradiation and cooling times of
	// consecutive time steps decrease.
	ErrNonMonotonicTimes = errors.New("irradiation and cooling times should be monotonically increasing")

	// ErrZAIMismatch is returned when an explicit ZAI disagrees with element,
	// mass number and state.
	ErrZAIMismatch = errors.New("zai does not match element, isotope and state")

	// ErrGammaSpectrumSize is returned when a gamma spectrum has not exactly
	// one more boundary than values.
	ErrGammaSpectrumSize = errors.New("gamma spectrum boundaries and values sizes are incompatible")

	// ErrNoTimeSteps is returned when inventory data is empty.
	ErrNoTimeSteps = errors.New("inventory has no time steps")

	// ErrInvalidIsotope is returned for a nuclide mass number below one.
	ErrInvalidIsotope = errors.New("isotope mass number should be positive")
)

// NonMonotonicError describes the time step where time went backwards.
type NonMonotonicError struct {
	Step                int // 1-based position in inventory_data
	PrevIrradiationTime float64
	PrevCoolingTime     float64
	IrradiationTime     float64
	CoolingTime         float64
}

// Error implements error.
func (e *NonMonotonicError) Error() string {
	return fmt.Sprintf("time step %d: irradiation %g -> %g, cooling %g -> %g: %v",
		e.Step, e.PrevIrradiationTime, e.IrradiationTime, e.PrevCoolingTime, e.CoolingTime,
		ErrNonMonotonicTimes)
}

// Is makes NonMonotonicError match ErrNonMonotonicTimes.
func (e *NonMonotonicError) Is(target error) bool {
	return target == ErrNonMonotonicTimes
}
