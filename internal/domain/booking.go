package domain

import "time"

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingApproved  BookingStatus = "approved"
	BookingRejected  BookingStatus = "rejected"
	BookingCancelled BookingStatus = "cancelled"
	// BookingConfirmed is used by availability slot bookings, which have no staff gate.
	BookingConfirmed BookingStatus = "confirmed"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingApproved, BookingRejected, BookingCancelled, BookingConfirmed:
		return true
	}
	return false
}

// Holding reports whether a booking with this status occupies its interval.
func (s BookingStatus) Holding() bool {
	return s == BookingApproved || s == BookingConfirmed
}

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:  {BookingApproved, BookingRejected, BookingCancelled},
	BookingApproved: {BookingCancelled},
}

// CanTransitionBooking reports whether from -> to is a legal booking status change.
func CanTransitionBooking(from, to BookingStatus) bool {
	for _, s := range bookingTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// HoldingBookingStatuses are the statuses that must stay pairwise non-overlapping per resource.
func HoldingBookingStatuses() []string {
	return []string{string(BookingApproved), string(BookingConfirmed)}
}

type Booking struct {
	ID             int64         `json:"id"`
	ResourceID     int64         `json:"resource_id" gorm:"not null;index:idx_bookings_resource_status_start,priority:1"`
	AvailabilityID *int64        `json:"availability_id,omitempty" gorm:"index"`
	BookerID       int64         `json:"booker_id" gorm:"not null;index"`
	BookerName     string        `json:"booker_name"`
	StartTime      time.Time     `json:"start_time" gorm:"not null;index:idx_bookings_resource_status_start,priority:3"`
	EndTime        time.Time     `json:"end_time" gorm:"not null"`
	Purpose        string        `json:"purpose,omitempty" gorm:"type:text"`
	Status         BookingStatus `json:"status" gorm:"type:varchar(16);not null;index:idx_bookings_resource_status_start,priority:2"`
	DecidedBy      *int64        `json:"decided_by,omitempty"`
	DecidedAt      *time.Time    `json:"decided_at,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

func (Booking) TableName() string { return "bookings" }

func (b Booking) Interval() Interval {
	return Interval{Start: b.StartTime, End: b.EndTime}
}

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (i Interval) Valid() bool {
	return i.Start.Before(i.End)
}

// Overlaps uses the half-open rule: adjacent intervals do not overlap.
func (i Interval) Overlaps(o Interval) bool {
	return i.Start.Before(o.End) && o.Start.Before(i.End)
}

// NormalizeTime strips sub-second precision and the location so stored times compare consistently.
func NormalizeTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}
