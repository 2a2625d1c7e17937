package overpass

import (
	"fmt"
	"strings"
)

// selectors - фильтры Overpass QL, покрывающие все правила классификатора.
// Каждый фильтр применяется к node, way и relation.
var selectors = []string{
	`["amenity"~"^(hospital|clinic|doctors)$"]`,
	`["healthcare"="hospital"]`,
	`["amenity"="fire_station"]`,
	`["amenity"="police"]`,
	`["aeroway"~"^(aerodrome|airport|heliport|helipad|runway|taxiway)$"]`,
	`["amenity"~"^(school|college|university|kindergarten)$"]`,
	`["school"]`,
	`["isced:level"]`,
	`["amenity"~"^(bus_station|ferry_terminal|public_transport)$"]`,
	`["public_transport"~"^(station|stop_position|platform|stop_area)$"]`,
	`["highway"="bus_stop"]`,
	`["railway"~"^(station|stop|halt|tram_stop|light_rail|subway_entrance)$"]`,
	`["landuse"="construction"]`,
	`["construction"]`,
	`["building"="construction"]`,
	`["highway"~"^(motorway|motorway_link|trunk|trunk_link|primary|primary_link|secondary|secondary_link)$"]`,
}

var elementTypes = []string{"node", "way", "relation"}

// BuildQuery строит один union-запрос по административной границе города.
// "out body bb" добавляет границы для линий и областей, "> ; out skel qt" подтягивает вершины линий.
func BuildQuery(areaName, adminLevel string, timeoutSeconds int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "[out:json][timeout:%d];\n", timeoutSeconds)
	fmt.Fprintf(&b, "area[\"name\"=%q][\"admin_level\"=%q][\"boundary\"=\"administrative\"]->.searchArea;\n", areaName, adminLevel)
	b.WriteString("(\n")
	for _, sel := range selectors {
		for _, t := range elementTypes {
			fmt.Fprintf(&b, "  %s%s(area.searchArea);\n", t, sel)
		}
	}
	b.WriteString(");\n")
	b.WriteString("out body bb;\n")
	b.WriteString(">;\n")
	b.WriteString("out skel qt;\n")

	return b.String()
}
