package chrono

import "time"

// TimeAPI is where every component gets the current time from.
type TimeAPI interface {
	Now() time.Time
	Location() *time.Location
}

type StandardTime struct {
	location *time.Location
}

// NewStandardTime loads the named IANA location, an empty name means UTC.
func NewStandardTime(name string) (StandardTime, error) {
	if name == "" {
		return StandardTime{location: time.UTC}, nil
	}
	location, err := time.LoadLocation(name)
	if err != nil {
		return StandardTime{}, err
	}
	return StandardTime{location: location}, nil
}

func (s StandardTime) Now() time.Time {
	return time.Now().In(s.location)
}

func (s StandardTime) Location() *time.Location {
	return s.location
}

// FixedTime is a TimeAPI whose clock only moves when told to.
type FixedTime struct {
	now time.Time
}

func NewFixedTime(now time.Time) *FixedTime {
	return &FixedTime{now: now}
}

func (f *FixedTime) Now() time.Time {
	return f.now
}

func (f *FixedTime) Location() *time.Location {
	return f.now.Location()
}

func (f *FixedTime) Advance(d time.Duration) {
	f.now = f.now.Add(d)
}
