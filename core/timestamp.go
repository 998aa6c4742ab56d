package core

import (
	"strconv"
	"time"
)

// Timestamp is a point in time with nanosecond resolution, stored as a
// seconds/nanoseconds pair so values round-trip without float loss.
type Timestamp struct {
	Seconds int64
	Nanos   int32
}

// TimestampOf converts a time.Time.
func TimestampOf(t time.Time) Timestamp {
	return Timestamp{Seconds: t.Unix(), Nanos: int32(t.Nanosecond())}
}

// Time converts back to a time.Time in UTC.
func (t Timestamp) Time() time.Time {
	return time.Unix(t.Seconds, int64(t.Nanos)).UTC()
}

// Compare orders two timestamps. The result is <0, 0 or >0.
func (t Timestamp) Compare(o Timestamp) int {
	switch {
	case t.Seconds < o.Seconds:
		return -1
	case t.Seconds > o.Seconds:
		return 1
	case t.Nanos < o.Nanos:
		return -1
	case t.Nanos > o.Nanos:
		return 1
	}
	return 0
}

// String renders the timestamp for query descriptions.
func (t Timestamp) String() string {
	return "T" + strconv.FormatInt(t.Seconds, 10) + ":" + strconv.FormatInt(int64(t.Nanos), 10)
}
