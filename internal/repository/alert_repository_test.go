package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"powereye/internal/model"
)

func TestAlertRepository_ListRecentJoinsMachine(t *testing.T) {
	gormDB := newTestDB(t)
	repo := NewAlertRepository(gormDB)
	alice := seedUser(t, gormDB, "alice@x.com")
	pump := seedMachine(t, gormDB, alice.ID, "Pump1")
	motor := seedMachine(t, gormDB, alice.ID, "Motor")

	alerts, err := repo.ListRecent(ctx, MaxAlertsListed)
	require.NoError(t, err)
	assert.NotNil(t, alerts)
	assert.Empty(t, alerts)

	require.NoError(t, repo.Create(ctx, &model.Alert{MachineID: pump.ID, AlertType: "overload", Severity: model.SeverityHigh, Message: "load 130%"}))
	require.NoError(t, repo.Create(ctx, &model.Alert{MachineID: motor.ID, AlertType: "vibration", Severity: model.SeverityLow}))

	alerts, err = repo.ListRecent(ctx, MaxAlertsListed)
	require.NoError(t, err)
	require.Len(t, alerts, 2)

	assert.Equal(t, "vibration", alerts[0].AlertType)
	assert.Equal(t, "Motor", alerts[0].MachineName)
	assert.Equal(t, "Motor", alerts[0].Machine)
	assert.Equal(t, "Pump1", alerts[1].Machine)
	assert.Equal(t, "load 130%", alerts[1].Message)
	assert.False(t, alerts[1].Resolved)
}

func TestAlertRepository_ListRecentCapped(t *testing.T) {
	gormDB := newTestDB(t)
	repo := NewAlertRepository(gormDB)
	alice := seedUser(t, gormDB, "alice@x.com")
	pump := seedMachine(t, gormDB, alice.ID, "Pump1")

	for i := 0; i < MaxAlertsListed+5; i++ {
		require.NoError(t, repo.Create(ctx, &model.Alert{MachineID: pump.ID, AlertType: fmt.Sprintf("a%d", i), Severity: model.SeverityInfo}))
	}

	alerts, err := repo.ListRecent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, alerts, MaxAlertsListed)
	assert.Equal(t, fmt.Sprintf("a%d", MaxAlertsListed+4), alerts[0].AlertType)
}

func TestAlertRepository_Resolve(t *testing.T) {
	gormDB := newTestDB(t)
	repo := NewAlertRepository(gormDB)
	alice := seedUser(t, gormDB, "alice@x.com")
	pump := seedMachine(t, gormDB, alice.ID, "Pump1")

	first := &model.Alert{MachineID: pump.ID, AlertType: "overload", Severity: model.SeverityHigh}
	second := &model.Alert{MachineID: pump.ID, AlertType: "heat", Severity: model.SeverityCritical}
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	found, err := repo.Resolve(ctx, 9999)
	require.NoError(t, err)
	assert.False(t, found)

	found, err = repo.Resolve(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, found)

	found, err = repo.Resolve(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, found)

	var stored []model.Alert
	require.NoError(t, gormDB.Order("id").Find(&stored).Error)
	assert.True(t, stored[0].Resolved)
	assert.False(t, stored[1].Resolved)

	counts, err := repo.CountOpenBySeverity(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"critical": 1}, counts)
}

func TestAlertRepository_StoreFailure(t *testing.T) {
	gormDB, mock := newMockDB(t)
	repo := NewAlertRepository(gormDB)
	boom := errors.New("table alerts is marked as crashed")

	mock.ExpectQuery("SELECT a.id, .* FROM alerts AS a JOIN machines m").WillReturnError(boom)

	_, err := repo.ListRecent(ctx, MaxAlertsListed)
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}
