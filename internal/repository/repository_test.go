package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"powereye/internal/db"
	"powereye/internal/model"
	"powereye/internal/testutil"
)

var ctx = context.Background()

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), db.Config(nil))
	require.NoError(t, err)
	return gormDB, mock
}

func seedUser(t *testing.T, gormDB *gorm.DB, email string) *model.User {
	t.Helper()
	user := &model.User{Email: email, PasswordHash: "x", Name: email, Role: model.RoleOperator}
	require.NoError(t, gormDB.Create(user).Error)
	return user
}

func seedMachine(t *testing.T, gormDB *gorm.DB, ownerID uint, name string) *model.Machine {
	t.Helper()
	machine := &model.Machine{Name: name, Model: model.DefaultMachineModel, Status: model.MachineActive, UserID: ownerID}
	require.NoError(t, gormDB.Create(machine).Error)
	return machine
}

func newTestDB(t *testing.T) *gorm.DB {
	return testutil.NewDB(t)
}
