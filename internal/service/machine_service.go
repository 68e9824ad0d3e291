package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "powereye/internal/errors"
	"powereye/internal/model"
	"powereye/internal/repository"
)

// MachineInput carries the editable machine fields.
type MachineInput struct {
	Name        string
	Model       string
	Type        *string
	Location    *string
	RatedPower  decimal.NullDecimal
	Description *string
	Status      string
}

// MachineService handles machine operations. Reads see every machine;
// writes only touch the requester's own.
type MachineService interface {
	List(ctx context.Context) ([]model.Machine, error)
	Get(ctx context.Context, id uint) (*model.Machine, error)
	Create(ctx context.Context, ownerID uint, in MachineInput) (*model.Machine, error)
	Update(ctx context.Context, ownerID, id uint, in MachineInput) error
	Delete(ctx context.Context, ownerID, id uint) error
}

type machineService struct {
	machineRepo repository.MachineRepository
}

// NewMachineService creates a new machine service.
func NewMachineService(machineRepo repository.MachineRepository) MachineService {
	return &machineService{machineRepo: machineRepo}
}

func (s *machineService) List(ctx context.Context) ([]model.Machine, error) {
	machines, err := s.machineRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list machines: %w", err)
	}
	return machines, nil
}

func (s *machineService) Get(ctx context.Context, id uint) (*model.Machine, error) {
	machine, err := s.machineRepo.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.ErrMachineNotFound
		}
		return nil, fmt.Errorf("find machine %d: %w", id, err)
	}
	return machine, nil
}

// Create adds a machine owned by ownerID. Names are unique per owner.
func (s *machineService) Create(ctx context.Context, ownerID uint, in MachineInput) (*model.Machine, error) {
	if err := s.checkNameFree(ctx, ownerID, 0, in.Name); err != nil {
		return nil, err
	}

	machine := in.toModel()
	machine.UserID = ownerID
	if err := s.machineRepo.Create(ctx, machine); err != nil {
		if isDuplicateKey(err) {
			return nil, apperrors.ErrDuplicateMachineName
		}
		// owner deleted while the token is still valid
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("create machine: %w", err)
	}
	return machine, nil
}

// Update replaces the editable fields of a machine the requester owns.
// Ownership is settled before the name so a foreign or missing id is
// always ErrMachineNotFound.
func (s *machineService) Update(ctx context.Context, ownerID, id uint, in MachineInput) error {
	current, err := s.machineRepo.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return apperrors.ErrMachineNotFound
		}
		return fmt.Errorf("find machine %d: %w", id, err)
	}
	if current.UserID != ownerID {
		return apperrors.ErrMachineNotFound
	}

	if err := s.checkNameFree(ctx, ownerID, id, in.Name); err != nil {
		return err
	}

	machine := in.toModel()
	machine.ID = id
	machine.UserID = ownerID

	found, err := s.machineRepo.UpdateOwned(ctx, machine)
	if err != nil {
		if isDuplicateKey(err) {
			return apperrors.ErrDuplicateMachineName
		}
		return fmt.Errorf("update machine %d: %w", id, err)
	}
	if !found {
		return apperrors.ErrMachineNotFound
	}
	return nil
}

// Delete removes a machine the requester owns, along with its alerts.
func (s *machineService) Delete(ctx context.Context, ownerID, id uint) error {
	found, err := s.machineRepo.DeleteOwned(ctx, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete machine %d: %w", id, err)
	}
	if !found {
		return apperrors.ErrMachineNotFound
	}
	return nil
}

// checkNameFree fails when another machine of ownerID already uses name.
// selfID is the machine being renamed, or 0 on create.
func (s *machineService) checkNameFree(ctx context.Context, ownerID, selfID uint, name string) error {
	existing, err := s.machineRepo.FindByOwnerAndName(ctx, ownerID, name)
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return fmt.Errorf("check machine name: %w", err)
	}
	if existing.ID != selfID {
		return apperrors.ErrDuplicateMachineName
	}
	return nil
}

func (in MachineInput) toModel() *model.Machine {
	m := &model.Machine{
		Name:        in.Name,
		Model:       in.Model,
		Type:        in.Type,
		Location:    in.Location,
		RatedPower:  in.RatedPower,
		Description: in.Description,
		Status:      in.Status,
	}
	if m.Model == "" {
		m.Model = model.DefaultMachineModel
	}
	if m.Status == "" {
		m.Status = model.MachineActive
	}
	return m
}
