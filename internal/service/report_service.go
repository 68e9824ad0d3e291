package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"powereye/internal/repository"
)

// Summary aggregates the fleet for the reports page.
type Summary struct {
	TotalMachines        int64            `json:"total_machines"`
	MachinesByStatus     map[string]int64 `json:"machines_by_status"`
	OpenAlerts           int64            `json:"open_alerts"`
	OpenAlertsBySeverity map[string]int64 `json:"open_alerts_by_severity"`
	TotalRatedPower      decimal.Decimal  `json:"total_rated_power"`
}

// ReportService builds fleet-wide reports.
type ReportService interface {
	Summary(ctx context.Context) (*Summary, error)
}

type reportService struct {
	machineRepo repository.MachineRepository
	alertRepo   repository.AlertRepository
}

// NewReportService creates a new report service.
func NewReportService(machineRepo repository.MachineRepository, alertRepo repository.AlertRepository) ReportService {
	return &reportService{
		machineRepo: machineRepo,
		alertRepo:   alertRepo,
	}
}

func (s *reportService) Summary(ctx context.Context) (*Summary, error) {
	byStatus, err := s.machineRepo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("count machines: %w", err)
	}
	bySeverity, err := s.alertRepo.CountOpenBySeverity(ctx)
	if err != nil {
		return nil, fmt.Errorf("count alerts: %w", err)
	}
	power, err := s.machineRepo.TotalRatedPower(ctx)
	if err != nil {
		return nil, fmt.Errorf("sum rated power: %w", err)
	}

	summary := &Summary{
		MachinesByStatus:     byStatus,
		OpenAlertsBySeverity: bySeverity,
		TotalRatedPower:      power,
	}
	for _, n := range byStatus {
		summary.TotalMachines += n
	}
	for _, n := range bySeverity {
		summary.OpenAlerts += n
	}
	return summary, nil
}
