package schedule

import (
	"fmt"
)

// Window is one generated slot interval, before persistence.
type Window struct {
	Start TimeOfDay
	End   TimeOfDay
}

// ExpandWindow enumerates consecutive fixed-length intervals covering
// [start, end]. The loop continues while cursor+duration <= end+1: the one
// minute of tolerance admits a final slot whose end lands exactly on the
// window end. A trailing remainder shorter than the duration is dropped,
// never emitted as a short slot.
//
// The whole sequence is computed before anything is written, so invalid
// input can never leave a partial batch behind.
func ExpandWindow(start, end TimeOfDay, durationMinutes int) ([]Window, error) {
	if durationMinutes <= 0 {
		return nil, fmt.Errorf("%w: duration_minutes must be positive", ErrValidation)
	}
	if start >= end {
		return nil, fmt.Errorf("%w: start_time must be before end_time", ErrValidation)
	}

	var windows []Window
	for cursor := start; cursor.Add(durationMinutes) <= end.Add(1); cursor = cursor.Add(durationMinutes) {
		windows = append(windows, Window{
			Start: cursor,
			End:   cursor.Add(durationMinutes),
		})
	}
	return windows, nil
}
