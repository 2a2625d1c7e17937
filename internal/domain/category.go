package domain

import "fmt"

// Category - ключ семантической категории объекта из фиксированного закрытого набора
type Category string

const (
	CategoryHospitals      Category = "hospitals"
	CategoryFireStations   Category = "fire_stations"
	CategoryPoliceStations Category = "police_stations"
	CategoryAirports       Category = "airports"
	CategorySchools        Category = "schools"
	CategoryTransit        Category = "transit"
	CategoryConstruction   Category = "construction"
	CategoryTraffic        Category = "traffic"
)

// CategoryMeta - статические метаданные отображения категории (конфигурация, не данные)
type CategoryMeta struct {
	Key       Category `json:"key"`
	Label     string   `json:"label"`
	Color     string   `json:"color"`
	TypeLabel string   `json:"type_label"`
	IconText  string   `json:"icon_text"`
}

// CategoryCatalog - упорядоченный набор сконфигурированных категорий.
// Порядок фиксирован и используется как tie-break при сортировке и выборе доминирующей категории.
type CategoryCatalog struct {
	items []CategoryMeta
	index map[Category]int
}

// NewCategoryCatalog создаёт каталог; ключи должны быть уникальными и непустыми
func NewCategoryCatalog(items []CategoryMeta) (*CategoryCatalog, error) {
	c := &CategoryCatalog{
		items: make([]CategoryMeta, 0, len(items)),
		index: make(map[Category]int, len(items)),
	}
	for _, item := range items {
		if item.Key == "" {
			return nil, fmt.Errorf("category key must not be empty")
		}
		if _, dup := c.index[item.Key]; dup {
			return nil, fmt.Errorf("duplicate category key %q", item.Key)
		}
		c.index[item.Key] = len(c.items)
		c.items = append(c.items, item)
	}
	return c, nil
}

// DefaultCategoryCatalog возвращает стандартный набор из восьми категорий
func DefaultCategoryCatalog() *CategoryCatalog {
	c, _ := NewCategoryCatalog([]CategoryMeta{
		{Key: CategoryHospitals, Label: "Hospitals & Clinics", Color: "#ef4444", TypeLabel: "Hospital or Clinic", IconText: "H"},
		{Key: CategoryFireStations, Label: "Fire Stations", Color: "#f97316", TypeLabel: "Fire Station", IconText: "F"},
		{Key: CategoryPoliceStations, Label: "Police Stations", Color: "#3b82f6", TypeLabel: "Police Station", IconText: "P"},
		{Key: CategoryAirports, Label: "Airports & Helipads", Color: "#8b5cf6", TypeLabel: "Airport or Airfield", IconText: "A"},
		{Key: CategorySchools, Label: "Schools", Color: "#10b981", TypeLabel: "School", IconText: "S"},
		{Key: CategoryTransit, Label: "Public Transport", Color: "#0ea5e9", TypeLabel: "Transit Hub", IconText: "T"},
		{Key: CategoryConstruction, Label: "Construction Activity", Color: "#facc15", TypeLabel: "Construction Site", IconText: "C"},
		{Key: CategoryTraffic, Label: "Traffic Corridors", Color: "#94a3b8", TypeLabel: "Major Traffic Corridor", IconText: "Rd"},
	})
	return c
}

// Items возвращает копию метаданных в порядке конфигурации
func (c *CategoryCatalog) Items() []CategoryMeta {
	out := make([]CategoryMeta, len(c.items))
	copy(out, c.items)
	return out
}

// Keys возвращает ключи категорий в порядке конфигурации
func (c *CategoryCatalog) Keys() []Category {
	keys := make([]Category, len(c.items))
	for i, item := range c.items {
		keys[i] = item.Key
	}
	return keys
}

// Contains проверяет, сконфигурирована ли категория
func (c *CategoryCatalog) Contains(key Category) bool {
	_, ok := c.index[key]
	return ok
}

// Len возвращает количество категорий
func (c *CategoryCatalog) Len() int {
	return len(c.items)
}

// ZeroCounts возвращает карту счётчиков с нулями для каждой категории
func (c *CategoryCatalog) ZeroCounts() CategoryCounts {
	counts := make(CategoryCounts, len(c.items))
	for _, item := range c.items {
		counts[item.Key] = 0
	}
	return counts
}

// CategoryCounts - количество объектов в радиусе по каждой категории
type CategoryCounts map[Category]int

// Total возвращает сумму по всем категориям
func (c CategoryCounts) Total() int {
	total := 0
	for _, v := range c {
		total += v
	}
	return total
}

// Visibility - флаги видимости слоёв; отсутствующая запись означает "видим"
type Visibility map[Category]bool

// IsVisible возвращает видимость категории
func (v Visibility) IsVisible(key Category) bool {
	if v == nil {
		return true
	}
	visible, ok := v[key]
	if !ok {
		return true
	}
	return visible
}

// Clone возвращает независимую копию флагов
func (v Visibility) Clone() Visibility {
	out := make(Visibility, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}
