package domain

import "time"

// Equipment is a quantity-based resource. AvailableQty never leaves [0, TotalQty].
type Equipment struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name" gorm:"not null" validate:"required,max=120"`
	Category     string    `json:"category,omitempty"`
	TotalQty     int       `json:"total_qty" gorm:"not null;default:0;check:chk_equipment_total_qty,total_qty >= 0" validate:"gte=0"`
	AvailableQty int       `json:"available_qty" gorm:"not null;default:0;check:chk_equipment_available_qty,available_qty >= 0 AND available_qty <= total_qty"`
	IsActive     bool      `json:"is_active" gorm:"not null;default:true"`
	CreatedBy    int64     `json:"created_by"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Equipment) TableName() string { return "equipment" }

// OnLoan is the quantity currently held by pending or active loans.
func (e Equipment) OnLoan() int {
	return e.TotalQty - e.AvailableQty
}
