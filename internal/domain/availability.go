package domain

import "time"

// Availability is a window published by staff; each booking against it consumes one slot.
type Availability struct {
	ID            int64     `json:"id"`
	ResourceID    int64     `json:"resource_id" gorm:"not null;index"`
	PublisherID   int64     `json:"publisher_id" gorm:"not null"`
	PublisherName string    `json:"publisher_name"`
	StartTime     time.Time `json:"start_time" gorm:"not null;index"`
	EndTime       time.Time `json:"end_time" gorm:"not null"`
	MaxSlots      int       `json:"max_slots" gorm:"not null;check:chk_availability_max_slots,max_slots > 0"`
	BookedSlots   int       `json:"booked_slots" gorm:"not null;default:0;check:chk_availability_booked_slots,booked_slots >= 0 AND booked_slots <= max_slots"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (Availability) TableName() string { return "availabilities" }

func (a Availability) Interval() Interval {
	return Interval{Start: a.StartTime, End: a.EndTime}
}

func (a Availability) RemainingSlots() int {
	if a.BookedSlots >= a.MaxSlots {
		return 0
	}
	return a.MaxSlots - a.BookedSlots
}
