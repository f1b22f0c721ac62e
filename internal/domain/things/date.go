package things

import (
	"errors"
	"fmt"
	"time"
)

// Things stores calendar dates as year<<16 | month<<12 | day<<7.
const (
	dayUnit   = 128
	monthUnit = 32 * dayUnit
	yearUnit  = 16 * monthUnit
)

const orgDateLayout = "2006-01-02 Mon"

var ErrInvalidDate = errors.New("invalid packed date")

type PackedDate int64

func EncodeDate(year, month, day int) PackedDate {
	return PackedDate(int64(year)*yearUnit + int64(month)*monthUnit + int64(day)*dayUnit)
}

func (d PackedDate) Decode() (year, month, day int) {
	v := int64(d)
	y := v / yearUnit
	v -= y * yearUnit
	m := v / monthUnit
	v -= m * monthUnit
	return int(y), int(m), int(v / dayUnit)
}

// Validate rejects values whose month or day is out of range, which
// time.Date would otherwise roll into a neighbouring month.
func (d PackedDate) Validate() error {
	year, month, day := d.Decode()
	if month < 1 || month > 12 || day < 1 {
		return fmt.Errorf("%w %d: %s", ErrInvalidDate, int64(d), d)
	}
	if last := time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day(); day > last {
		return fmt.Errorf("%w %d: %s", ErrInvalidDate, int64(d), d)
	}
	return nil
}

func (d PackedDate) Time() time.Time {
	year, month, day := d.Decode()
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// Format renders the date the way Org timestamps expect it, e.g. "2024-03-05 Tue".
func (d PackedDate) Format() string {
	return d.Time().Format(orgDateLayout)
}

func (d PackedDate) String() string {
	year, month, day := d.Decode()
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
}
