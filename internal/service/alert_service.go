package service

import (
	"context"
	"fmt"

	apperrors "powereye/internal/errors"
	"powereye/internal/model"
	"powereye/internal/repository"
)

// AlertInput carries the fields of a new alert.
type AlertInput struct {
	MachineID uint
	AlertType string
	Severity  string
	Message   string
}

// AlertService handles alert operations. Alerts are visible to every
// authenticated user.
type AlertService interface {
	List(ctx context.Context) ([]model.AlertWithMachine, error)
	Create(ctx context.Context, in AlertInput) (*model.Alert, error)
	Resolve(ctx context.Context, id uint) error
}

type alertService struct {
	alertRepo   repository.AlertRepository
	machineRepo repository.MachineRepository
}

// NewAlertService creates a new alert service.
func NewAlertService(alertRepo repository.AlertRepository, machineRepo repository.MachineRepository) AlertService {
	return &alertService{
		alertRepo:   alertRepo,
		machineRepo: machineRepo,
	}
}

// List returns the newest alerts, capped at repository.MaxAlertsListed.
func (s *alertService) List(ctx context.Context) ([]model.AlertWithMachine, error) {
	alerts, err := s.alertRepo.ListRecent(ctx, repository.MaxAlertsListed)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	return alerts, nil
}

// Create raises an alert against an existing machine.
func (s *alertService) Create(ctx context.Context, in AlertInput) (*model.Alert, error) {
	if _, err := s.machineRepo.FindByID(ctx, in.MachineID); err != nil {
		if isNotFound(err) {
			return nil, apperrors.ErrMachineNotFound
		}
		return nil, fmt.Errorf("find machine %d: %w", in.MachineID, err)
	}

	alert := &model.Alert{
		MachineID: in.MachineID,
		AlertType: in.AlertType,
		Severity:  in.Severity,
		Message:   in.Message,
	}
	if alert.Severity == "" {
		alert.Severity = model.SeverityMedium
	}

	if err := s.alertRepo.Create(ctx, alert); err != nil {
		return nil, fmt.Errorf("create alert: %w", err)
	}
	return alert, nil
}

// Resolve marks an alert resolved. Resolving twice is not an error.
func (s *alertService) Resolve(ctx context.Context, id uint) error {
	found, err := s.alertRepo.Resolve(ctx, id)
	if err != nil {
		return fmt.Errorf("resolve alert %d: %w", id, err)
	}
	if !found {
		return apperrors.ErrAlertNotFound
	}
	return nil
}
