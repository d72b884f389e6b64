package models

// Typed views over record fields. Records travel as loose field maps; these
// are the shapes the CLI and the costing report work with.

// Ingredient is a purchasable input: flour, ghee, sugar, saffron.
type Ingredient struct {
	ID           string
	Name         string
	Unit         string
	PricePerUnit float64
}

func (i Ingredient) Fields() map[string]any {
	return map[string]any{
		"name":           i.Name,
		"unit":           i.Unit,
		"price_per_unit": i.PricePerUnit,
	}
}

func IngredientFromRecord(r *Record) Ingredient {
	return Ingredient{
		ID:           r.ID,
		Name:         r.Name(),
		Unit:         stringField(r, "unit"),
		PricePerUnit: floatField(r, "price_per_unit"),
	}
}

// RecipeLink ties a recipe to one ingredient with a quantity. Links are
// replaced wholesale on every recipe update, never diffed.
type RecipeLink struct {
	IngredientID string  `json:"ingredient_id"`
	Quantity     float64 `json:"quantity"`
}

// Recipe is a produced sweet with its ingredient links and selling price.
type Recipe struct {
	ID           string
	Name         string
	BatchSize    float64
	SellingPrice float64
	Links        []RecipeLink
}

func (r Recipe) Fields() map[string]any {
	links := make([]any, 0, len(r.Links))
	for _, l := range r.Links {
		links = append(links, map[string]any{
			"ingredient_id": l.IngredientID,
			"quantity":      l.Quantity,
		})
	}
	return map[string]any{
		"name":          r.Name,
		"batch_size":    r.BatchSize,
		"selling_price": r.SellingPrice,
		"links":         links,
	}
}

func RecipeFromRecord(rec *Record) Recipe {
	r := Recipe{
		ID:           rec.ID,
		Name:         rec.Name(),
		BatchSize:    floatField(rec, "batch_size"),
		SellingPrice: floatField(rec, "selling_price"),
	}
	raw, _ := rec.Fields["links"].([]any)
	for _, el := range raw {
		m, ok := el.(map[string]any)
		if !ok {
			continue
		}
		id, _ := m["ingredient_id"].(string)
		qty, _ := m["quantity"].(float64)
		r.Links = append(r.Links, RecipeLink{IngredientID: id, Quantity: qty})
	}
	return r
}

// Staff is an employee with a monthly salary, used for payroll overhead.
type Staff struct {
	ID            string
	Name          string
	Role          string
	MonthlySalary float64
}

func (s Staff) Fields() map[string]any {
	return map[string]any{
		"name":           s.Name,
		"role":           s.Role,
		"monthly_salary": s.MonthlySalary,
	}
}

func StaffFromRecord(r *Record) Staff {
	return Staff{
		ID:            r.ID,
		Name:          r.Name(),
		Role:          stringField(r, "role"),
		MonthlySalary: floatField(r, "monthly_salary"),
	}
}

// Settings holds workspace-wide knobs: overhead percentage applied on top of
// ingredient cost, currency label.
type Settings struct {
	OverheadPercent float64
	Currency        string
}

func (s Settings) Fields() map[string]any {
	return map[string]any{
		"overhead_percent": s.OverheadPercent,
		"currency":         s.Currency,
	}
}

func SettingsFromRecord(r *Record) Settings {
	return Settings{
		OverheadPercent: floatField(r, "overhead_percent"),
		Currency:        stringField(r, "currency"),
	}
}

// AuditEntry is a backend-written change-tracking row. The client only
// reads these.
type AuditEntry struct {
	ID         string         `json:"id"`
	Workspace  string         `json:"workspace"`
	UserID     string         `json:"user_id"`
	UserEmail  string         `json:"user_email"`
	Collection string         `json:"collection"`
	RecordID   string         `json:"record_id"`
	Action     string         `json:"action"`
	Before     map[string]any `json:"before,omitempty"`
	After      map[string]any `json:"after,omitempty"`
	At         string         `json:"at"`
}

func stringField(r *Record, key string) string {
	v, _ := r.Fields[key].(string)
	return v
}

func floatField(r *Record, key string) float64 {
	switch v := r.Fields[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}
