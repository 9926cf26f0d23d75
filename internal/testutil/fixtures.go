package testutil

import (
	"time"

	"github.com/google/uuid"
	"github.com/workdesk/workdesk/internal/models"
)

// FixtureUser creates a test user with sensible defaults.
func FixtureUser(overrides ...func(*models.User)) *models.User {
	now := time.Now().UTC()

	user := &models.User{
		Username:     "ivanov",
		PasswordHash: "0000000000000000000000000000000000000000000000000000000000000000",
		Role:         models.RoleCustomer,
		FullName:     "Иванов И.И.",
		Department:   "Цех №1",
		Status:       models.UserActive,
		CreatedAt:    now,
	}

	for _, override := range overrides {
		override(user)
	}

	return user
}

// FixtureStoreman creates a test user with warehouse permissions.
func FixtureStoreman(overrides ...func(*models.User)) *models.User {
	return FixtureUser(append([]func(*models.User){
		func(u *models.User) {
			u.Username = "petrov"
			u.Role = models.RoleStoreman
			u.FullName = "Петров П.П."
			u.Department = "Склад"
		},
	}, overrides...)...)
}

// FixtureManager creates a test manager user.
func FixtureManager(overrides ...func(*models.User)) *models.User {
	return FixtureUser(append([]func(*models.User){
		func(u *models.User) {
			u.Username = "sidorova"
			u.Role = models.RoleManager
			u.FullName = "Сидорова С.С."
			u.Department = "Управление"
		},
	}, overrides...)...)
}

// FixtureExecutor creates a test executor user.
func FixtureExecutor(overrides ...func(*models.User)) *models.User {
	return FixtureUser(append([]func(*models.User){
		func(u *models.User) {
			u.Username = "kuznetsov"
			u.Role = models.RoleExecutor
			u.FullName = "Кузнецов К.К."
			u.Department = "Цех №2"
		},
	}, overrides...)...)
}

// FixtureResource creates a test consumable resource with sensible defaults.
func FixtureResource(overrides ...func(*models.Resource)) *models.Resource {
	now := time.Now().UTC()

	resource := &models.Resource{
		Name:        "Болт М8",
		Quantity:    100,
		Unit:        "шт",
		MinQuantity: 10,
		Type:        models.TypeConsumable,
		Attributes:  map[string]string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	for _, override := range overrides {
		override(resource)
	}

	return resource
}

// FixtureEquipment creates a test equipment resource with the required
// typed attributes filled in.
func FixtureEquipment(overrides ...func(*models.Resource)) *models.Resource {
	return FixtureResource(append([]func(*models.Resource){
		func(r *models.Resource) {
			r.Name = "Станок токарный ТВ-320"
			r.Quantity = 1
			r.MinQuantity = 0
			r.Type = models.TypeEquipment
			r.Attributes = map[string]string{
				"inventory_number": "INV-2024-001",
				"serial_number":    "SN-449210",
				"model":            "ТВ-320",
			}
		},
	}, overrides...)...)
}

// FixtureChemical creates a test chemical resource with required
// safety attributes.
func FixtureChemical(overrides ...func(*models.Resource)) *models.Resource {
	return FixtureResource(append([]func(*models.Resource){
		func(r *models.Resource) {
			r.Name = "Растворитель 646"
			r.Quantity = 20
			r.Unit = "л"
			r.MinQuantity = 5
			r.Type = models.TypeChemical
			r.Attributes = map[string]string{
				"safety_class":       "3",
				"storage_conditions": "Прохладное тёмное место",
			}
		},
	}, overrides...)...)
}

// FixtureApplication creates a test work order with sensible defaults.
func FixtureApplication(overrides ...func(*models.Application)) *models.Application {
	id := uuid.New().String()
	now := time.Now().UTC()

	app := &models.Application{
		ID:             id,
		Customer:       "ООО Ромашка",
		ContractNumber: "Д-" + id[:8],
		Description:    "Изготовление партии деталей",
		Status:         models.ApplicationCreated,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	for _, override := range overrides {
		override(app)
	}

	return app
}

// FixtureStage creates a test work stage attached to an application.
func FixtureStage(applicationID string, overrides ...func(*models.Stage)) *models.Stage {
	id := uuid.New().String()
	now := time.Now().UTC()

	stage := &models.Stage{
		ID:            id,
		ApplicationID: applicationID,
		Name:          "Токарная обработка",
		Description:   "Черновая и чистовая обработка",
		Status:        models.StageAssigned,
		Position:      1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	for _, override := range overrides {
		override(stage)
	}

	return stage
}

// FixtureRequest creates a pending resource request for a stage.
func FixtureRequest(applicationID, stageID string, overrides ...func(*models.ResourceRequest)) *models.ResourceRequest {
	id := uuid.New().String()
	now := time.Now().UTC()

	req := &models.ResourceRequest{
		ID:            id,
		ApplicationID: applicationID,
		StageID:       stageID,
		ResourceName:  "Болт М8",
		Quantity:      10,
		Status:        models.RequestRequested,
		RequestedBy:   "kuznetsov",
		RequestDate:   now,
		Position:      1,
	}

	for _, override := range overrides {
		override(req)
	}

	return req
}

// FixtureReceiptLine creates a stock receipt line.
func FixtureReceiptLine(overrides ...func(*models.ReceiptLine)) *models.ReceiptLine {
	line := &models.ReceiptLine{
		ResourceName: "Болт М8",
		Quantity:     50,
		Unit:         "шт",
		Type:         models.TypeConsumable,
		Attributes:   map[string]string{},
		Position:     1,
	}

	for _, override := range overrides {
		override(line)
	}

	return line
}

// StringPtr returns a pointer to a string value.
func StringPtr(s string) *string {
	return &s
}

// IntPtr returns a pointer to an int value.
func IntPtr(i int) *int {
	return &i
}

// TimePtr returns a pointer to a time value.
func TimePtr(t time.Time) *time.Time {
	return &t
}
