package vm

import "time"

// nativeClock backs the single Non-goal-exempt native the reference
// interpreter ships: `clock()` returns seconds since an arbitrary
// epoch, used by benchmark scripts to time themselves.
func nativeClock(args []Value) (Value, error) {
	return Number(float64(time.Now().UnixNano()) / 1e9), nil
}
