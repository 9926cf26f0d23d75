// Package seed populates a fresh database with demo accounts and a
// starter catalog so the tool is usable straight after first launch.
package seed

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/workdesk/workdesk/internal/auth"
	"github.com/workdesk/workdesk/internal/models"
	"github.com/workdesk/workdesk/internal/repository"
	"github.com/workdesk/workdesk/internal/services/orders"
	"github.com/workdesk/workdesk/internal/util"
)

// demoUsers is one account per role. The passwords are printed at seed
// time and meant for demo databases only.
var demoUsers = []struct {
	Username   string
	Password   string
	Role       models.Role
	FullName   string
	Department string
}{
	{"admin", "admin", models.RoleAdmin, "Администратор", ""},
	{"sidorova", "manager", models.RoleManager, "Сидорова С.С.", "Управление"},
	{"ivanov", "customer", models.RoleCustomer, "Иванов И.И.", "Отдел заказов"},
	{"kuznetsov", "executor", models.RoleExecutor, "Кузнецов К.К.", "Цех №2"},
	{"petrov", "storeman", models.RoleStoreman, "Петров П.П.", "Склад"},
}

var starterCatalog = []*models.Resource{
	{Name: "Болт М8х40", Quantity: 500, Unit: "шт", MinQuantity: 50, Type: models.TypeConsumable},
	{Name: "Гайка М8", Quantity: 500, Unit: "шт", MinQuantity: 50, Type: models.TypeConsumable},
	{Name: "Лист стальной 2мм", Quantity: 40, Unit: "лист", MinQuantity: 5, Type: models.TypeMaterial},
	{Name: "Электрод МР-3 3мм", Quantity: 25, Unit: "кг", MinQuantity: 10, Type: models.TypeConsumable},
	{
		Name: "Станок токарный ТВ-320", Quantity: 1, Unit: "шт", Type: models.TypeEquipment,
		Attributes: map[string]string{
			"inventory_number": "INV-2019-014",
			"serial_number":    "SN-449210",
			"model":            "ТВ-320",
		},
	},
	{
		Name: "Растворитель 646", Quantity: 30, Unit: "л", MinQuantity: 10, Type: models.TypeChemical,
		Attributes: map[string]string{
			"safety_class":       "3",
			"storage_conditions": "Прохладное тёмное помещение",
		},
	},
}

// Run seeds demo users and the starter catalog. It refuses to touch a
// database that already has accounts.
func Run(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	users := repository.NewUserRepository(db)
	resources := repository.NewResourceRepository(db)

	count, err := users.Count(ctx)
	if err != nil {
		return fmt.Errorf("checking existing users: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("database already has %d users, refusing to seed", count)
	}

	var manager *models.User
	for _, du := range demoUsers {
		user := &models.User{
			Username:     du.Username,
			PasswordHash: auth.HashPassword(du.Password),
			Role:         du.Role,
			FullName:     du.FullName,
			Department:   du.Department,
			Status:       models.UserActive,
		}
		if err := users.Create(ctx, nil, user); err != nil {
			return fmt.Errorf("seeding user %q: %w", du.Username, err)
		}
		logger.Info("seeded user", "username", du.Username, "role", du.Role, "password", du.Password)
		if user.Role == models.RoleManager {
			manager = user
		}
	}

	for _, res := range starterCatalog {
		if res.Attributes == nil {
			res.Attributes = map[string]string{}
		}
		if err := resources.Create(ctx, nil, res); err != nil {
			return fmt.Errorf("seeding resource %q: %w", res.Name, err)
		}
	}
	logger.Info("seeded catalog", "resources", len(starterCatalog))

	if err := seedDemoOrder(ctx, db, logger, manager); err != nil {
		return err
	}

	return nil
}

// seedDemoOrder registers one work order so the orders board is not
// empty on a fresh database.
func seedDemoOrder(ctx context.Context, db *sql.DB, logger *slog.Logger, manager *models.User) error {
	start, err := util.ParseDate("15.09.2026")
	if err != nil {
		return fmt.Errorf("parsing demo stage date: %w", err)
	}
	end, err := util.ParseDate("30.09.2026")
	if err != nil {
		return fmt.Errorf("parsing demo stage date: %w", err)
	}
	mid := start.AddDate(0, 0, 7)

	svc := orders.NewService(db, logger)
	app, err := svc.CreateApplication(ctx, manager, orders.CreateApplicationInput{
		Customer:       "ООО Ремдеталь",
		ContractNumber: "Д-2026/14",
		Description:    "Ремонт редуктора конвейера",
		Stages: []orders.StageInput{
			{
				Name:             "Разборка и дефектовка",
				Executor:         "kuznetsov",
				PlannedStartDate: &start,
				PlannedEndDate:   &mid,
			},
			{
				Name:             "Замена изношенных деталей и сборка",
				Executor:         "kuznetsov",
				PlannedStartDate: &mid,
				PlannedEndDate:   &end,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("seeding demo order: %w", err)
	}
	logger.Info("seeded work order", "application_id", app.ID, "stages", len(app.Stages))
	return nil
}
