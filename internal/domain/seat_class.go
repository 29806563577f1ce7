package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// SeatClass selects one of the three independent seat pools of a flight.
// The numeric values are part of the snapshot format.
type SeatClass int

const (
	SeatClassEconomy  SeatClass = 1
	SeatClassBusiness SeatClass = 2
	SeatClassFirst    SeatClass = 3
)

var seatClasses = []SeatClass{SeatClassEconomy, SeatClassBusiness, SeatClassFirst}

// SeatClasses returns every valid class in ascending order.
func SeatClasses() []SeatClass {
	out := make([]SeatClass, len(seatClasses))
	copy(out, seatClasses)
	return out
}

func (c SeatClass) Valid() bool {
	switch c {
	case SeatClassEconomy, SeatClassBusiness, SeatClassFirst:
		return true
	}
	return false
}

func (c SeatClass) String() string {
	switch c {
	case SeatClassEconomy:
		return "Economy"
	case SeatClassBusiness:
		return "Business"
	case SeatClassFirst:
		return "First Class"
	default:
		return fmt.Sprintf("SeatClass(%d)", int(c))
	}
}

// ParseSeatClass converts the persisted integer code. Values other than
// 1, 2 or 3 are rejected.
func ParseSeatClass(code int) (SeatClass, error) {
	c := SeatClass(code)
	if !c.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrInvalidSeatClass, code)
	}
	return c, nil
}

// SeatClassFromName accepts the numeric code or a human name such as
// "economy", "business", "first" or "first class".
func SeatClassFromName(name string) (SeatClass, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if code, err := strconv.Atoi(normalized); err == nil {
		return ParseSeatClass(code)
	}
	switch normalized {
	case "economy", "eco":
		return SeatClassEconomy, nil
	case "business":
		return SeatClassBusiness, nil
	case "first", "first class", "first-class", "firstclass":
		return SeatClassFirst, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidSeatClass, name)
}
