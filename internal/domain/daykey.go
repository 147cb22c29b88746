package domain

import (
	"fmt"
	"time"
)

// DayKeyLayout is the format of a day key.
const DayKeyLayout = "2006-01-02"

// DefaultDayOffsetHours 默认按 UTC+9 划分自然日，所有房间成员对“今天”的判断一致。
const DefaultDayOffsetHours = 9

// DayZone returns the fixed zone used to cut calendar days.
func DayZone(offsetHours int) *time.Location {
	return time.FixedZone(fmt.Sprintf("UTC%+03d", offsetHours), offsetHours*3600)
}

var defaultDayZone = DayZone(DefaultDayOffsetHours)

// DayKey returns the calendar day of now in the default zone.
func DayKey(now time.Time) string {
	return DayKeyIn(now, defaultDayZone)
}

// DayKeyIn returns the calendar day of now in loc. The caller's own location
// never matters, only the instant.
func DayKeyIn(now time.Time, loc *time.Location) string {
	return now.In(loc).Format(DayKeyLayout)
}
