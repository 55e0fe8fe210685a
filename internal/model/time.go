package model

import (
	"fmt"
	"time"
)

// LocalTime marshals as "YYYY-MM-DD HH:MM:SS" in UTC.
type LocalTime time.Time

const timeFormat = "2006-01-02 15:04:05"

func (t LocalTime) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", time.Time(t).UTC().Format(timeFormat))), nil
}
