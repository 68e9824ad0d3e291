package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportService_Summary(t *testing.T) {
	machines := new(MockMachineRepository)
	alerts := new(MockAlertRepository)
	svc := NewReportService(machines, alerts)

	machines.On("CountByStatus", ctx).Return(map[string]int64{"active": 5, "idle": 2, "maintenance": 1}, nil)
	machines.On("TotalRatedPower", ctx).Return(decimal.RequireFromString("412.50"), nil)
	alerts.On("CountOpenBySeverity", ctx).Return(map[string]int64{"high": 2, "low": 1}, nil)

	summary, err := svc.Summary(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(8), summary.TotalMachines)
	assert.Equal(t, int64(3), summary.OpenAlerts)
	assert.Equal(t, int64(2), summary.OpenAlertsBySeverity["high"])
	assert.True(t, summary.TotalRatedPower.Equal(decimal.RequireFromString("412.5")))
}

func TestReportService_SummaryFailure(t *testing.T) {
	machines := new(MockMachineRepository)
	svc := NewReportService(machines, new(MockAlertRepository))
	machines.On("CountByStatus", ctx).Return(nil, errBroken)

	_, err := svc.Summary(ctx)
	assert.ErrorIs(t, err, errBroken)
}
