package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	apperrors "powereye/internal/errors"
	"powereye/internal/model"
	"powereye/internal/repository"
)

func TestAlertService_Create(t *testing.T) {
	t.Run("defaults severity", func(t *testing.T) {
		alerts := new(MockAlertRepository)
		machines := new(MockMachineRepository)
		svc := NewAlertService(alerts, machines)

		machines.On("FindByID", ctx, uint(2)).Return(&model.Machine{ID: 2}, nil)
		alerts.On("Create", ctx, mock.MatchedBy(func(a *model.Alert) bool {
			return a.MachineID == 2 && a.AlertType == "overload" && a.Severity == model.SeverityMedium
		})).Run(func(args mock.Arguments) { args.Get(1).(*model.Alert).ID = 30 }).Return(nil)

		alert, err := svc.Create(ctx, AlertInput{MachineID: 2, AlertType: "overload"})
		require.NoError(t, err)
		assert.Equal(t, uint(30), alert.ID)
		assert.Empty(t, alert.Message)
	})

	t.Run("unknown machine", func(t *testing.T) {
		alerts := new(MockAlertRepository)
		machines := new(MockMachineRepository)
		svc := NewAlertService(alerts, machines)

		machines.On("FindByID", ctx, uint(99)).Return(nil, gorm.ErrRecordNotFound)

		_, err := svc.Create(ctx, AlertInput{MachineID: 99, AlertType: "overload", Severity: model.SeverityHigh})
		assert.ErrorIs(t, err, apperrors.ErrMachineNotFound)
		alerts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestAlertService_List(t *testing.T) {
	alerts := new(MockAlertRepository)
	svc := NewAlertService(alerts, new(MockMachineRepository))
	alerts.On("ListRecent", ctx, repository.MaxAlertsListed).Return([]model.AlertWithMachine{{ID: 1, MachineName: "Pump1", Machine: "Pump1"}}, nil)

	got, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Pump1", got[0].Machine)
}

func TestAlertService_Resolve(t *testing.T) {
	alerts := new(MockAlertRepository)
	svc := NewAlertService(alerts, new(MockMachineRepository))
	alerts.On("Resolve", ctx, uint(1)).Return(true, nil)
	alerts.On("Resolve", ctx, uint(404)).Return(false, nil)
	alerts.On("Resolve", ctx, uint(500)).Return(false, errBroken)

	assert.NoError(t, svc.Resolve(ctx, 1))
	assert.ErrorIs(t, svc.Resolve(ctx, 404), apperrors.ErrAlertNotFound)

	err := svc.Resolve(ctx, 500)
	assert.ErrorIs(t, err, errBroken)
	assert.NotErrorIs(t, err, apperrors.ErrAlertNotFound)
}
