package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"powereye/internal/model"
)

// MachineRepository defines machine persistence operations. Reads are not
// scoped by owner; writes are.
type MachineRepository interface {
	Create(ctx context.Context, machine *model.Machine) error
	List(ctx context.Context) ([]model.Machine, error)
	FindByID(ctx context.Context, id uint) (*model.Machine, error)
	FindByOwnerAndName(ctx context.Context, ownerID uint, name string) (*model.Machine, error)
	UpdateOwned(ctx context.Context, machine *model.Machine) (bool, error)
	DeleteOwned(ctx context.Context, id, ownerID uint) (bool, error)
	CountByStatus(ctx context.Context) (map[string]int64, error)
	TotalRatedPower(ctx context.Context) (decimal.Decimal, error)
}

type machineRepository struct {
	db *gorm.DB
}

// NewMachineRepository creates a new machine repository.
func NewMachineRepository(db *gorm.DB) MachineRepository {
	return &machineRepository{db: db}
}

// Create creates a new machine.
func (r *machineRepository) Create(ctx context.Context, machine *model.Machine) error {
	return r.db.WithContext(ctx).Create(machine).Error
}

// List returns every machine, newest first.
func (r *machineRepository) List(ctx context.Context) ([]model.Machine, error) {
	machines := []model.Machine{}
	if err := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&machines).Error; err != nil {
		return nil, err
	}
	return machines, nil
}

// FindByID finds a machine by ID regardless of owner.
func (r *machineRepository) FindByID(ctx context.Context, id uint) (*model.Machine, error) {
	var machine model.Machine
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&machine).Error; err != nil {
		return nil, err
	}
	return &machine, nil
}

// FindByOwnerAndName finds the owner's machine with the given name.
func (r *machineRepository) FindByOwnerAndName(ctx context.Context, ownerID uint, name string) (*model.Machine, error) {
	var machine model.Machine
	if err := r.db.WithContext(ctx).Where("user_id = ? AND name = ?", ownerID, name).First(&machine).Error; err != nil {
		return nil, err
	}
	return &machine, nil
}

// UpdateOwned overwrites the editable columns of machine.ID when it belongs
// to machine.UserID. It reports whether such a row exists.
func (r *machineRepository) UpdateOwned(ctx context.Context, machine *model.Machine) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Machine{}).
		Where("id = ? AND user_id = ?", machine.ID, machine.UserID).
		Updates(map[string]interface{}{
			"name":        machine.Name,
			"model":       machine.Model,
			"type":        machine.Type,
			"location":    machine.Location,
			"rated_power": machine.RatedPower,
			"description": machine.Description,
			"status":      machine.Status,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// DeleteOwned deletes the machine when it belongs to ownerID. Its alerts
// cascade.
func (r *machineRepository) DeleteOwned(ctx context.Context, id, ownerID uint) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, ownerID).Delete(&model.Machine{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// CountByStatus returns the number of machines per status.
func (r *machineRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Status string
		Total  int64
	}
	if err := r.db.WithContext(ctx).Model(&model.Machine{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}

// TotalRatedPower sums rated_power over all machines; NULLs count as zero.
func (r *machineRepository) TotalRatedPower(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	if err := r.db.WithContext(ctx).Model(&model.Machine{}).
		Select("COALESCE(SUM(rated_power), 0)").
		Row().Scan(&total); err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}
