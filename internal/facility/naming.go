package facility

import (
	"strings"

	"github.com/scoutscape/internal/domain"
)

// UnnamedLabel - подпись для объектов без имени
const UnnamedLabel = "Unnamed"

// TagRule извлекает строку из тегов; пустая строка означает "правило не сработало"
type TagRule func(tags map[string]string) string

// FirstOf применяет правила по порядку и возвращает первое непустое значение или fallback
func FirstOf(tags map[string]string, fallback string, rules ...TagRule) string {
	for _, r := range rules {
		if v := r(tags); v != "" {
			return v
		}
	}
	return fallback
}

// TagValue - правило, возвращающее значение одного тега
func TagValue(key string) TagRule {
	return func(tags map[string]string) string {
		return strings.TrimSpace(tags[key])
	}
}

// JoinedTags - непустые значения тегов через пробел
func JoinedTags(keys ...string) TagRule {
	return func(tags map[string]string) string {
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			if v := strings.TrimSpace(tags[k]); v != "" {
				parts = append(parts, v)
			}
		}
		return strings.Join(parts, " ")
	}
}

var (
	nameRules = []TagRule{
		TagValue("name"),
		TagValue("ref"),
	}

	addressRules = []TagRule{
		TagValue("addr:full"),
		JoinedTags("addr:housenumber", "addr:street"),
		TagValue("addr:street"),
	}
)

// Name: name, затем ref, затем "Unnamed"
func Name(f domain.RawFeature) string {
	return FirstOf(f.Tags, UnnamedLabel, nameRules...)
}

// Address: addr:full, затем "номер улица", затем addr:street; по умолчанию пустая строка
func Address(f domain.RawFeature) string {
	return FirstOf(f.Tags, "", addressRules...)
}
