package catalog

import "github.com/workdesk/workdesk/internal/models"

// AddResourceInput contains data for creating a catalog entry.
type AddResourceInput struct {
	Name        string
	Quantity    int
	Unit        string
	MinQuantity int
	Type        models.ResourceType
	Attributes  map[string]string
}

// UpdateResourceInput contains optional changes to a catalog entry.
// Nil fields are left untouched. Changing Type revalidates the entry's
// attributes against the new type's schema.
type UpdateResourceInput struct {
	Quantity    *int
	Unit        *string
	MinQuantity *int
	Type        *models.ResourceType
	Attributes  map[string]string
}
