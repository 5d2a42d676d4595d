package catalog

import "musicportal/internal/domain"

type ResourceRequest struct {
	Kind        domain.ResourceKind `json:"kind" validate:"required,oneof=studio booth room"`
	Name        string              `json:"name" validate:"required,max=120"`
	Description string              `json:"description" validate:"max=2000"`
	Location    string              `json:"location" validate:"max=200"`
	Capacity    int                 `json:"capacity" validate:"required,gt=0"`
}

type CreateEquipmentRequest struct {
	Name     string `json:"name" validate:"required,max=120"`
	Category string `json:"category" validate:"max=60"`
	TotalQty int    `json:"total_qty" validate:"gte=0"`
}

type UpdateEquipmentRequest struct {
	Name     string `json:"name" validate:"required,max=120"`
	Category string `json:"category" validate:"max=60"`
}
