package models

// ResourceType is the closed set of warehouse resource categories.
type ResourceType string

const (
	TypeEquipment   ResourceType = "equipment"
	TypeConsumable  ResourceType = "consumable"
	TypeMaterial    ResourceType = "material"
	TypeTool        ResourceType = "tool"
	TypeElectronics ResourceType = "electronics"
	TypeChemical    ResourceType = "chemical"
)

func (t ResourceType) String() string {
	return string(t)
}

// Valid reports whether t is one of the six known types.
func (t ResourceType) Valid() bool {
	_, ok := typeIndex[t]
	return ok
}

// ParseResourceType converts a stored string into a ResourceType.
func ParseResourceType(s string) (ResourceType, bool) {
	t := ResourceType(s)
	return t, t.Valid()
}

// AttributeKind is the value kind of a type attribute.
type AttributeKind string

const (
	AttrText   AttributeKind = "text"
	AttrNumber AttributeKind = "number"
	AttrDate   AttributeKind = "date"
)

// AttributeDef describes one attribute in a resource type's schema.
type AttributeDef struct {
	Name     string
	Label    string
	Kind     AttributeKind
	Required bool
}

// TypeDefinition is the static schema of a resource type. The registry is
// initialized once and read-only; it is configuration, not state.
type TypeDefinition struct {
	Type        ResourceType
	Name        string
	Description string
	Attributes  []AttributeDef
}

// The schemas mirror the warehouse paper forms, so the labels stay in the
// operators' language.
var typeDefinitions = []TypeDefinition{
	{
		Type:        TypeEquipment,
		Name:        "Оборудование",
		Description: "Стационарное оборудование и техника",
		Attributes: []AttributeDef{
			{Name: "inventory_number", Label: "Инвентарный номер", Kind: AttrText, Required: true},
			{Name: "serial_number", Label: "Серийный номер", Kind: AttrText},
			{Name: "model", Label: "Модель", Kind: AttrText},
			{Name: "manufacturer", Label: "Производитель", Kind: AttrText},
			{Name: "purchase_date", Label: "Дата приобретения", Kind: AttrDate},
			{Name: "warranty_months", Label: "Гарантия (мес.)", Kind: AttrNumber},
		},
	},
	{
		Type:        TypeConsumable,
		Name:        "Расходные материалы",
		Description: "Материалы одноразового использования",
		Attributes: []AttributeDef{
			{Name: "batch_number", Label: "Номер партии", Kind: AttrText},
			{Name: "supplier", Label: "Поставщик", Kind: AttrText},
			{Name: "expiry_date", Label: "Срок годности", Kind: AttrDate},
			{Name: "storage_conditions", Label: "Условия хранения", Kind: AttrText},
		},
	},
	{
		Type:        TypeMaterial,
		Name:        "Материалы",
		Description: "Сырье и материалы для производства",
		Attributes: []AttributeDef{
			{Name: "quality_grade", Label: "Сорт/Качество", Kind: AttrText},
			{Name: "batch_number", Label: "Номер партии", Kind: AttrText},
			{Name: "supplier", Label: "Поставщик", Kind: AttrText},
			{Name: "specifications", Label: "Технические характеристики", Kind: AttrText},
		},
	},
	{
		Type:        TypeTool,
		Name:        "Инструменты",
		Description: "Ручной и механизированный инструмент",
		Attributes: []AttributeDef{
			{Name: "inventory_number", Label: "Инвентарный номер", Kind: AttrText, Required: true},
			{Name: "condition", Label: "Состояние", Kind: AttrText},
			{Name: "last_maintenance", Label: "Последнее обслуживание", Kind: AttrDate},
			{Name: "maintenance_interval", Label: "Интервал обслуживания (дн.)", Kind: AttrNumber},
		},
	},
	{
		Type:        TypeElectronics,
		Name:        "Электроника",
		Description: "Электронные компоненты и устройства",
		Attributes: []AttributeDef{
			{Name: "model", Label: "Модель", Kind: AttrText},
			{Name: "manufacturer", Label: "Производитель", Kind: AttrText},
			{Name: "specifications", Label: "Технические характеристики", Kind: AttrText},
			{Name: "compatibility", Label: "Совместимость", Kind: AttrText},
		},
	},
	{
		Type:        TypeChemical,
		Name:        "Химикаты",
		Description: "Химические вещества и реактивы",
		Attributes: []AttributeDef{
			{Name: "safety_class", Label: "Класс опасности", Kind: AttrText, Required: true},
			{Name: "storage_conditions", Label: "Условия хранения", Kind: AttrText, Required: true},
			{Name: "expiry_date", Label: "Срок годности", Kind: AttrDate},
			{Name: "msds_number", Label: "Номер MSDS", Kind: AttrText},
		},
	},
}

var typeIndex = func() map[ResourceType]*TypeDefinition {
	m := make(map[ResourceType]*TypeDefinition, len(typeDefinitions))
	for i := range typeDefinitions {
		m[typeDefinitions[i].Type] = &typeDefinitions[i]
	}
	return m
}()

// AllResourceTypes returns every type definition in declaration order.
func AllResourceTypes() []TypeDefinition {
	out := make([]TypeDefinition, len(typeDefinitions))
	copy(out, typeDefinitions)
	return out
}

// TypeDefinitionFor returns the schema for a type, or nil for an unknown type.
func TypeDefinitionFor(t ResourceType) *TypeDefinition {
	return typeIndex[t]
}

// AttributesFor returns the ordered attribute definitions for a type.
// Unknown types yield an empty list.
func AttributesFor(t ResourceType) []AttributeDef {
	def := typeIndex[t]
	if def == nil {
		return nil
	}
	return def.Attributes
}

// ValidateAttributes checks that every required attribute of the type has
// a non-empty value. It returns a *ValidationError naming the missing
// attributes, or nil when the payload is acceptable.
func ValidateAttributes(t ResourceType, attributes map[string]string) error {
	if !t.Valid() {
		return &ValidationError{Field: "resource_type", Reason: "unknown resource type " + string(t)}
	}

	var missing []string
	for _, def := range typeIndex[t].Attributes {
		if !def.Required {
			continue
		}
		if attributes[def.Name] == "" {
			missing = append(missing, def.Name)
		}
	}

	if len(missing) > 0 {
		return &ValidationError{MissingAttributes: missing}
	}
	return nil
}
