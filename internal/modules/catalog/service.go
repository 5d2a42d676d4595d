package catalog

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"musicportal/internal/domain"
	"musicportal/internal/pkg/sanitize"
	"musicportal/internal/pkg/validator"
	"musicportal/internal/repository"
)

type Service struct {
	resources *repository.ResourceRepository
	equipment *repository.EquipmentRepository
	cache     Cache
	log       *zap.Logger
}

func NewService(
	resources *repository.ResourceRepository,
	equipment *repository.EquipmentRepository,
	cache Cache,
	log *zap.Logger,
) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		resources: resources,
		equipment: equipment,
		cache:     cache,
		log:       log,
	}
}

/* ---------- RESOURCES ---------- */

func (s *Service) CreateResource(ctx context.Context, actor domain.Actor, req ResourceRequest) (*domain.Resource, error) {
	if !actor.IsStaff() {
		return nil, domain.ErrUnauthorized
	}
	req = cleanResource(req)
	if err := validator.Struct(req); err != nil {
		return nil, err
	}

	res := &domain.Resource{
		Kind:        req.Kind,
		Name:        req.Name,
		Description: req.Description,
		Location:    req.Location,
		Capacity:    req.Capacity,
		IsActive:    true,
		CreatedBy:   actor.UserID,
	}
	if err := s.resources.Create(ctx, res); err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}

	s.log.Info("resource created", zap.Int64("resource_id", res.ID), zap.String("kind", string(res.Kind)), zap.Int64("by", actor.UserID))
	return res, nil
}

func (s *Service) UpdateResource(ctx context.Context, actor domain.Actor, id int64, req ResourceRequest) (*domain.Resource, error) {
	if !actor.IsStaff() {
		return nil, domain.ErrUnauthorized
	}
	req = cleanResource(req)
	if err := validator.Struct(req); err != nil {
		return nil, err
	}

	res := &domain.Resource{
		ID:          id,
		Kind:        req.Kind,
		Name:        req.Name,
		Description: req.Description,
		Location:    req.Location,
		Capacity:    req.Capacity,
	}
	if err := s.resources.UpdateDetails(ctx, res); err != nil {
		return nil, err
	}
	s.invalidateResource(ctx, id)

	return s.resources.GetByID(ctx, id)
}

// DeactivateResource hides the resource from new bookings. Existing bookings are left untouched.
func (s *Service) DeactivateResource(ctx context.Context, actor domain.Actor, id int64) error {
	if !actor.IsStaff() {
		return domain.ErrUnauthorized
	}
	if err := s.resources.SetActive(ctx, id, false); err != nil {
		return err
	}
	s.invalidateResource(ctx, id)

	s.log.Info("resource deactivated", zap.Int64("resource_id", id), zap.Int64("by", actor.UserID))
	return nil
}

func (s *Service) GetResource(ctx context.Context, id int64) (*domain.Resource, error) {
	if s.cache != nil {
		if res, ok := s.cache.GetResource(ctx, id); ok {
			return res, nil
		}
	}

	res, err := s.resources.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.SetResource(ctx, res)
	}
	return res, nil
}

func (s *Service) ListResources(ctx context.Context, actor domain.Actor, f repository.ResourceFilter) ([]domain.Resource, error) {
	if f.Kind != "" && !f.Kind.Valid() {
		return nil, domain.NewValidationError("kind", "must be studio, booth or room")
	}
	if !actor.IsStaff() {
		f.IncludeInactive = false
	}
	return s.resources.List(ctx, f)
}

/* ---------- EQUIPMENT ---------- */

func (s *Service) CreateEquipment(ctx context.Context, actor domain.Actor, req CreateEquipmentRequest) (*domain.Equipment, error) {
	if !actor.IsStaff() {
		return nil, domain.ErrUnauthorized
	}
	req.Name = sanitize.Text(req.Name, 0)
	req.Category = sanitize.Text(req.Category, 0)
	if err := validator.Struct(req); err != nil {
		return nil, err
	}

	item := &domain.Equipment{
		Name:         req.Name,
		Category:     req.Category,
		TotalQty:     req.TotalQty,
		AvailableQty: req.TotalQty,
		IsActive:     true,
		CreatedBy:    actor.UserID,
	}
	if err := s.equipment.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("create equipment: %w", err)
	}

	s.log.Info("equipment created", zap.Int64("equipment_id", item.ID), zap.Int("total_qty", item.TotalQty), zap.Int64("by", actor.UserID))
	return item, nil
}

// UpdateEquipment edits descriptive fields only; quantities change through the inventory tracker.
func (s *Service) UpdateEquipment(ctx context.Context, actor domain.Actor, id int64, req UpdateEquipmentRequest) (*domain.Equipment, error) {
	if !actor.IsStaff() {
		return nil, domain.ErrUnauthorized
	}
	req.Name = sanitize.Text(req.Name, 0)
	req.Category = sanitize.Text(req.Category, 0)
	if err := validator.Struct(req); err != nil {
		return nil, err
	}

	if err := s.equipment.UpdateDetails(ctx, &domain.Equipment{ID: id, Name: req.Name, Category: req.Category}); err != nil {
		return nil, err
	}
	s.invalidateEquipment(ctx, id)

	return s.equipment.GetByID(ctx, id)
}

func (s *Service) DeactivateEquipment(ctx context.Context, actor domain.Actor, id int64) error {
	if !actor.IsStaff() {
		return domain.ErrUnauthorized
	}
	if err := s.equipment.SetActive(ctx, id, false); err != nil {
		return err
	}
	s.invalidateEquipment(ctx, id)

	s.log.Info("equipment deactivated", zap.Int64("equipment_id", id), zap.Int64("by", actor.UserID))
	return nil
}

func (s *Service) GetEquipment(ctx context.Context, id int64) (*domain.Equipment, error) {
	if s.cache != nil {
		if item, ok := s.cache.GetEquipment(ctx, id); ok {
			return item, nil
		}
	}

	item, err := s.equipment.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.SetEquipment(ctx, item)
	}
	return item, nil
}

func (s *Service) ListEquipment(ctx context.Context, actor domain.Actor, f repository.EquipmentFilter) ([]domain.Equipment, error) {
	if !actor.IsStaff() {
		f.IncludeInactive = false
	}
	return s.equipment.List(ctx, f)
}

func (s *Service) invalidateResource(ctx context.Context, id int64) {
	if s.cache != nil {
		s.cache.InvalidateResource(ctx, id)
	}
}

func (s *Service) invalidateEquipment(ctx context.Context, id int64) {
	if s.cache != nil {
		s.cache.InvalidateEquipment(ctx, id)
	}
}

func cleanResource(req ResourceRequest) ResourceRequest {
	req.Name = sanitize.Text(req.Name, 0)
	req.Description = sanitize.Text(req.Description, 0)
	req.Location = sanitize.Text(req.Location, 0)
	return req
}
