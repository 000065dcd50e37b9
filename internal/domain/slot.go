package domain

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// SlotCapacity is how many orders one pickup slot accepts.
	SlotCapacity = 20

	// MinLeadTime is the minimum gap between checkout and slot start.
	MinLeadTime = 24 * time.Hour
)

type PickupWindow string

const (
	Window10to12 PickupWindow = "10:00-12:00"
	Window12to14 PickupWindow = "12:00-14:00"
	Window14to16 PickupWindow = "14:00-16:00"
	Window16to18 PickupWindow = "16:00-18:00"
)

var pickupWindows = []PickupWindow{Window10to12, Window12to14, Window14to16, Window16to18}

func PickupWindows() []PickupWindow {
	return slices.Clone(pickupWindows)
}

func ParsePickupWindow(s string) (PickupWindow, error) {
	w := PickupWindow(strings.TrimSpace(s))
	if !slices.Contains(pickupWindows, w) {
		return "", fmt.Errorf("%w: pickup window %q", ErrInvalidInput, s)
	}

	return w, nil
}

// StartOffset is the window start relative to midnight.
func (w PickupWindow) StartOffset() time.Duration {
	var h, m int
	_, _ = fmt.Sscanf(string(w), "%d:%d-", &h, &m)

	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute
}

// Day is a calendar date without a clock component.
type Day struct {
	Year  int
	Month time.Month
	Date  int
}

func DayOf(t time.Time) Day {
	y, m, d := t.Date()
	return Day{Year: y, Month: m, Date: d}
}

func ParseDay(s string) (Day, error) {
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	if err != nil {
		return Day{}, fmt.Errorf("%w: pickup day %q", ErrInvalidInput, s)
	}

	return DayOf(t), nil
}

// Time returns midnight of the day in loc.
func (d Day) Time(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Date, 0, 0, 0, 0, loc)
}

func (d Day) Weekday() time.Weekday {
	return d.Time(time.UTC).Weekday()
}

func (d Day) String() string {
	return d.Time(time.UTC).Format(time.DateOnly)
}

type Slot struct {
	ID       uuid.UUID
	Day      Day
	Window   PickupWindow
	Booked   int
	Capacity int

	CreatedAt time.Time
}

func (s Slot) Remaining() int {
	return max(s.Capacity-s.Booked, 0)
}

// PickupStart is the moment window opens on day in the store's location.
func PickupStart(day Day, window PickupWindow, loc *time.Location) time.Time {
	return day.Time(loc).Add(window.StartOffset())
}

type SlotAvailability struct {
	Available bool
	Remaining int
}

type ReservationStatus string

const (
	ReservationHeld      ReservationStatus = "held"
	ReservationCommitted ReservationStatus = "committed"
	ReservationReleased  ReservationStatus = "released"
)

// Reservation is one unit of slot capacity claimed by a checkout attempt.
type Reservation struct {
	ID        uuid.UUID
	SlotID    uuid.UUID
	CartID    uuid.UUID
	Status    ReservationStatus
	CreatedAt time.Time
}
