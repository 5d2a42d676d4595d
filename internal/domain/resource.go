package domain

import "time"

type ResourceKind string

const (
	ResourceStudio ResourceKind = "studio"
	ResourceBooth  ResourceKind = "booth"
	ResourceRoom   ResourceKind = "room"
)

func (k ResourceKind) Valid() bool {
	switch k {
	case ResourceStudio, ResourceBooth, ResourceRoom:
		return true
	}
	return false
}

// Resource is a time-based bookable entity: a studio or an ERC booth/room.
type Resource struct {
	ID          int64        `json:"id"`
	Kind        ResourceKind `json:"kind" gorm:"type:varchar(16);not null;index" validate:"required,oneof=studio booth room"`
	Name        string       `json:"name" gorm:"not null" validate:"required,max=120"`
	Description string       `json:"description,omitempty" gorm:"type:text"`
	Location    string       `json:"location,omitempty"`
	Capacity    int          `json:"capacity" gorm:"not null;default:1" validate:"required,gt=0"`
	IsActive    bool         `json:"is_active" gorm:"not null;default:true"`
	CreatedBy   int64        `json:"created_by"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

func (Resource) TableName() string { return "resources" }
