package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"powereye/internal/auth"
	"powereye/internal/config"
	"powereye/internal/db"
	"powereye/internal/logging"
	"powereye/internal/model"
	"powereye/internal/repository"
)

type seedUser struct {
	Email    string
	Password string
	Name     string
	Role     string
}

type seedMachine struct {
	Owner       string
	Name        string
	Model       string
	Type        string
	Location    string
	RatedPower  string
	Description string
}

var demoUsers = []seedUser{
	{Email: "admin@powereye.com", Password: "admin123", Name: "Admin User", Role: model.RoleAdmin},
	{Email: "student@powereye.com", Password: "student123", Name: "Student User", Role: model.RoleOperator},
	{Email: "kaviya@powereye.com", Password: "kaviya123", Name: "Kaviya Kumar", Role: model.RoleOperator},
}

var demoMachines = []seedMachine{
	{"admin@powereye.com", "Motor Alpha", "Industrial Motor X-2000", "Motor", "Factory Floor A", "5.5", "Main production motor"},
	{"admin@powereye.com", "Pump Beta", "Centrifugal Pump CP-500", "Pump", "Basement Level 1", "3.2", "Water circulation pump"},
	{"student@powereye.com", "Compressor Unit 1", "Pneumatic Compressor PRO-300", "Compressor", "Workshop", "4.0", "Air supply compressor"},
	{"student@powereye.com", "Generator G1", "Diesel Generator DG-750", "Generator", "Backup Room", "7.5", "Emergency power backup"},
	{"student@powereye.com", "Furnace Unit", "Industrial Furnace F-1200", "Furnace", "Heating Section", "12.0", "Industrial furnace for processing"},
	{"kaviya@powereye.com", "Conveyor Belt A", "Modular Conveyor CB-100", "Conveyor", "Production Line 1", "2.2", "Main production conveyor"},
	{"kaviya@powereye.com", "Drill Press", "CNC Drill DP-3000", "Drill", "Machine Shop", "5.0", "Precision drilling machine"},
	{"kaviya@powereye.com", "Press Machine", "Hydraulic Press HP-200", "Press", "Manufacturing", "8.5", "Heavy duty press machine"},
}

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)

	gormDB, err := db.NewMySQL(cfg.DSN(), logger)
	if err != nil {
		logger.Error("connect to database", "error", err)
		os.Exit(1)
	}
	if err := db.Migrate(gormDB, false); err != nil {
		logger.Error("migrate", "error", err)
		os.Exit(1)
	}

	users, machines, err := seed(context.Background(), gormDB, auth.NewPasswordHasher(auth.BcryptCost), logger)
	if err != nil {
		logger.Error("seed failed", "error", err)
		os.Exit(1)
	}

	fmt.Printf("\nDatabase initialization complete: %d users, %d machines\n\nLogin credentials:\n", users, machines)
	for _, u := range demoUsers {
		fmt.Printf("  %-9s %s / %s\n", u.Role+":", u.Email, u.Password)
	}
}

// seed wipes alerts, machines and users and inserts the demo data in one
// transaction.
func seed(ctx context.Context, gormDB *gorm.DB, hasher *auth.PasswordHasher, logger *slog.Logger) (int, int, error) {
	var users, machines int

	err := gormDB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, table := range []interface{}{&model.Alert{}, &model.Machine{}, &model.User{}} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(table).Error; err != nil {
				return fmt.Errorf("clear %T: %w", table, err)
			}
		}

		userRepo := repository.NewUserRepository(tx)
		machineRepo := repository.NewMachineRepository(tx)

		owners := make(map[string]uint, len(demoUsers))
		for _, u := range demoUsers {
			hash, err := hasher.Hash(u.Password)
			if err != nil {
				return fmt.Errorf("hash password for %s: %w", u.Email, err)
			}
			user := &model.User{Email: u.Email, PasswordHash: hash, Name: u.Name, Role: u.Role}
			if err := userRepo.Create(ctx, user); err != nil {
				return fmt.Errorf("insert user %s: %w", u.Email, err)
			}
			owners[u.Email] = user.ID
			users++
			logger.Info("user inserted", "email", u.Email, "id", user.ID)
		}

		for _, m := range demoMachines {
			machine := &model.Machine{
				Name:        m.Name,
				Model:       m.Model,
				Type:        strPtr(m.Type),
				Location:    strPtr(m.Location),
				RatedPower:  decimal.NewNullDecimal(decimal.RequireFromString(m.RatedPower)),
				Description: strPtr(m.Description),
				Status:      model.MachineActive,
				UserID:      owners[m.Owner],
			}
			if err := machineRepo.Create(ctx, machine); err != nil {
				return fmt.Errorf("insert machine %s: %w", m.Name, err)
			}
			machines++
			logger.Info("machine inserted", "name", m.Name, "user_id", machine.UserID)
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return users, machines, nil
}

func strPtr(s string) *string {
	return &s
}
