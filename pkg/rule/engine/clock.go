package engine

import "time"

// Clock is the collaborator spec.md §6.2 names for now/today/age builtins:
// now_utc() and today_local(zone). The shipped builtins.Registry only
// consumes a bare func() time.Time today (it predates this interface), so
// SystemClock.NowUTC is what the Engine wires into it; TodayLocal is
// exposed for callers assembling their own function registry against a
// specific zone.
type Clock interface {
	NowUTC() time.Time
	TodayLocal(zone string) (time.Time, error)
}

// SystemClock is the real-time Clock backed by the OS clock.
type SystemClock struct{}

var _ Clock = SystemClock{}

// NowUTC returns the current instant in UTC.
func (SystemClock) NowUTC() time.Time {
	return time.Now().UTC()
}

// TodayLocal returns the current instant converted to the named IANA zone
// (e.g. "America/New_York"); an empty zone means the local system zone.
func (SystemClock) TodayLocal(zone string) (time.Time, error) {
	if zone == "" {
		return time.Now(), nil
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return time.Time{}, err
	}
	return time.Now().In(loc), nil
}
