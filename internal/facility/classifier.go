package facility

import "github.com/scoutscape/internal/domain"

// Predicate проверяет набор тегов и геометрический тип объекта
type Predicate func(tags map[string]string, kind domain.FeatureKind) bool

// Rule связывает категорию с её предикатом
type Rule struct {
	Category domain.Category
	Match    Predicate
}

// Classifier - декларативная таблица правил, вычисляемая один раз на объект
type Classifier struct {
	rules   []Rule
	exclude Predicate
}

// NewClassifier создаёт классификатор; exclude проверяется первым и отменяет все правила
func NewClassifier(rules []Rule, exclude Predicate) *Classifier {
	if exclude == nil {
		exclude = func(map[string]string, domain.FeatureKind) bool { return false }
	}
	return &Classifier{rules: rules, exclude: exclude}
}

// NewDefaultClassifier создаёт классификатор со стандартной таблицей правил
func NewDefaultClassifier() *Classifier {
	return NewClassifier(DefaultRules(), IsRouteDefinition)
}

// Classify возвращает множество категорий объекта в порядке правил.
// Пустой результат означает "не отслеживаемый объект".
func (c *Classifier) Classify(tags map[string]string, kind domain.FeatureKind) []domain.Category {
	if len(tags) == 0 || c.exclude(tags, kind) {
		return nil
	}

	var out []domain.Category
	seen := make(map[domain.Category]struct{}, 2)
	for _, r := range c.rules {
		if _, dup := seen[r.Category]; dup {
			continue
		}
		if r.Match(tags, kind) {
			seen[r.Category] = struct{}{}
			out = append(out, r.Category)
		}
	}
	return out
}

// IsRouteDefinition отсекает описания маршрутов: это не физические места
func IsRouteDefinition(tags map[string]string, _ domain.FeatureKind) bool {
	t := tags["type"]
	return t == "route" || t == "route_master"
}

// DefaultRules - таблица соответствия тегов категориям
func DefaultRules() []Rule {
	return []Rule{
		{
			Category: domain.CategoryHospitals,
			Match: AnyOf(
				TagIn("amenity", "hospital", "clinic", "doctors"),
				TagIn("healthcare", "hospital"),
			),
		},
		{
			Category: domain.CategoryFireStations,
			Match:    TagIn("amenity", "fire_station"),
		},
		{
			Category: domain.CategoryPoliceStations,
			Match:    TagIn("amenity", "police"),
		},
		{
			Category: domain.CategoryAirports,
			Match:    TagIn("aeroway", "aerodrome", "airport", "heliport", "helipad", "runway", "taxiway"),
		},
		{
			Category: domain.CategorySchools,
			Match: AnyOf(
				TagIn("amenity", "school", "college", "university", "kindergarten"),
				TagPresent("school"),
				TagPresent("isced:level"),
			),
		},
		{
			Category: domain.CategoryTransit,
			Match: AnyOf(
				TagIn("amenity", "bus_station", "ferry_terminal", "public_transport"),
				TagIn("public_transport", "station", "stop_position", "platform", "stop_area"),
				TagIn("highway", "bus_stop"),
				TagIn("railway", "station", "stop", "halt", "tram_stop", "light_rail", "subway_entrance"),
			),
		},
		{
			Category: domain.CategoryConstruction,
			Match: AnyOf(
				TagIn("landuse", "construction"),
				TagPresent("construction"),
				TagIn("building", "construction"),
			),
		},
		{
			Category: domain.CategoryTraffic,
			Match: AllOf(
				TagIn("highway",
					"motorway", "motorway_link",
					"trunk", "trunk_link",
					"primary", "primary_link",
					"secondary", "secondary_link",
				),
				// highway-отношения - агрегаты маршрутов, а не сегменты дороги
				KindNot(domain.FeatureKindArea),
			),
		},
	}
}

// TagIn - точное совпадение значения тега с одним из перечисленных
func TagIn(key string, values ...string) Predicate {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return func(tags map[string]string, _ domain.FeatureKind) bool {
		v, ok := tags[key]
		if !ok {
			return false
		}
		_, hit := set[v]
		return hit
	}
}

// TagPresent - тег задан непустым значением
func TagPresent(key string) Predicate {
	return func(tags map[string]string, _ domain.FeatureKind) bool {
		return tags[key] != ""
	}
}

// KindNot - геометрический тип отличается от указанного
func KindNot(kind domain.FeatureKind) Predicate {
	return func(_ map[string]string, k domain.FeatureKind) bool {
		return k != kind
	}
}

func AnyOf(preds ...Predicate) Predicate {
	return func(tags map[string]string, kind domain.FeatureKind) bool {
		for _, p := range preds {
			if p(tags, kind) {
				return true
			}
		}
		return false
	}
}

func AllOf(preds ...Predicate) Predicate {
	return func(tags map[string]string, kind domain.FeatureKind) bool {
		for _, p := range preds {
			if !p(tags, kind) {
				return false
			}
		}
		return true
	}
}
