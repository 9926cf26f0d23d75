package orders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/workdesk/workdesk/internal/models"
	"github.com/workdesk/workdesk/internal/testutil"
)

func TestStageTemplates(t *testing.T) {
	svc, db := setupService(t)
	defer db.Close(t)

	ctx := context.Background()
	manager := testutil.FixtureManager()

	template, err := svc.CreateTemplate(ctx, manager, TemplateInput{
		Name:         "Дефектовка",
		Description:  "Разборка и составление дефектной ведомости",
		DurationDays: 5,
		RequiredResources: []models.TemplateResource{
			{ResourceName: "Растворитель 646", Quantity: 2},
		},
	})
	if err != nil {
		t.Fatalf("failed to create template: %v", err)
	}

	t.Run("Round trip", func(t *testing.T) {
		found, err := svc.GetTemplate(ctx, template.ID)
		if err != nil {
			t.Fatalf("failed to get template: %v", err)
		}
		if found.Name != "Дефектовка" || found.DurationDays != 5 {
			t.Errorf("unexpected template: %+v", found)
		}
		if len(found.RequiredResources) != 1 || found.RequiredResources[0].Quantity != 2 {
			t.Errorf("unexpected required resources: %+v", found.RequiredResources)
		}
		if found.CreatedBy != manager.Username {
			t.Errorf("expected created_by %s, got %s", manager.Username, found.CreatedBy)
		}
	})

	t.Run("Update", func(t *testing.T) {
		updated, err := svc.UpdateTemplate(ctx, manager, template.ID, TemplateInput{
			Name:         "Дефектовка узла",
			DurationDays: 7,
		})
		if err != nil {
			t.Fatalf("failed to update template: %v", err)
		}
		if updated.Name != "Дефектовка узла" || updated.DurationDays != 7 {
			t.Errorf("unexpected template after update: %+v", updated)
		}

		found, _ := svc.GetTemplate(ctx, template.ID)
		if len(found.RequiredResources) != 0 {
			t.Errorf("expected resources cleared, got %+v", found.RequiredResources)
		}
	})

	t.Run("List is name ordered", func(t *testing.T) {
		if _, err := svc.CreateTemplate(ctx, manager, TemplateInput{Name: "Балансировка"}); err != nil {
			t.Fatalf("failed to create template: %v", err)
		}
		templates, err := svc.ListTemplates(ctx)
		if err != nil {
			t.Fatalf("failed to list templates: %v", err)
		}
		if len(templates) != 2 || templates[0].Name != "Балансировка" {
			t.Errorf("unexpected list: %+v", templates)
		}
	})

	t.Run("Validation", func(t *testing.T) {
		_, err := svc.CreateTemplate(ctx, manager, TemplateInput{Name: "  "})
		var verr *models.ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("expected ValidationError, got %v", err)
		}

		_, err = svc.CreateTemplate(ctx, manager, TemplateInput{
			Name:              "Без количества",
			RequiredResources: []models.TemplateResource{{ResourceName: "Болт М8"}},
		})
		if !errors.As(err, &verr) {
			t.Errorf("expected ValidationError, got %v", err)
		}
	})

	t.Run("Executor denied", func(t *testing.T) {
		_, err := svc.CreateTemplate(ctx, testutil.FixtureExecutor(), TemplateInput{Name: "Сборка"})
		if !errors.Is(err, models.ErrPermissionDenied) {
			t.Errorf("expected ErrPermissionDenied, got %v", err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		if err := svc.DeleteTemplate(ctx, manager, template.ID); err != nil {
			t.Fatalf("failed to delete template: %v", err)
		}
		if _, err := svc.GetTemplate(ctx, template.ID); !errors.Is(err, models.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestApplyTemplate(t *testing.T) {
	svc, db := setupService(t)
	defer db.Close(t)

	ctx := context.Background()
	manager := testutil.FixtureManager()

	app, err := svc.CreateApplication(ctx, manager, CreateApplicationInput{
		Customer: "ООО Ремдеталь",
	})
	if err != nil {
		t.Fatalf("failed to create application: %v", err)
	}

	template, err := svc.CreateTemplate(ctx, manager, TemplateInput{
		Name:         "Окраска",
		Description:  "Грунтовка и окраска в два слоя",
		DurationDays: 3,
	})
	if err != nil {
		t.Fatalf("failed to create template: %v", err)
	}

	t.Run("Stage takes template fields and computed end date", func(t *testing.T) {
		start := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
		stage, err := svc.ApplyTemplate(ctx, manager, app.ID, template.ID, ApplyTemplateInput{
			Executor:         "kuznetsov",
			PlannedStartDate: &start,
		})
		if err != nil {
			t.Fatalf("failed to apply template: %v", err)
		}
		if stage.Name != "Окраска" || stage.Description != "Грунтовка и окраска в два слоя" {
			t.Errorf("unexpected stage fields: %+v", stage)
		}
		if stage.PlannedEndDate == nil || !stage.PlannedEndDate.Equal(start.AddDate(0, 0, 3)) {
			t.Errorf("expected planned end %s, got %v", start.AddDate(0, 0, 3), stage.PlannedEndDate)
		}

		found, err := svc.GetApplication(ctx, app.ID)
		if err != nil {
			t.Fatalf("failed to get application: %v", err)
		}
		if len(found.Stages) != 1 {
			t.Fatalf("expected 1 stage, got %d", len(found.Stages))
		}
	})

	t.Run("No start date leaves end open", func(t *testing.T) {
		stage, err := svc.ApplyTemplate(ctx, manager, app.ID, template.ID, ApplyTemplateInput{
			Executor: "kuznetsov",
		})
		if err != nil {
			t.Fatalf("failed to apply template: %v", err)
		}
		if stage.PlannedEndDate != nil {
			t.Errorf("expected no planned end, got %v", stage.PlannedEndDate)
		}
	})

	t.Run("Unknown template", func(t *testing.T) {
		_, err := svc.ApplyTemplate(ctx, manager, app.ID, "missing", ApplyTemplateInput{})
		if !errors.Is(err, models.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}
