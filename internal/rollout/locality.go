package rollout

import "strings"

// nominative maps declined and historical spellings of city names to the nominative form stored
// in the address table. Keys are lower-case.
var nominative = map[string]string{
	"астане":            "Астана",
	"алмате":            "Алматы",
	"алматы":            "Алматы",
	"алма-ате":          "Алматы",
	"алма-аты":          "Алматы",
	"шымкенте":          "Шымкент",
	"шимкенте":          "Шымкент",
	"шимкент":           "Шымкент",
	"актобе":            "Актобе",
	"актюбинске":        "Актобе",
	"таразе":            "Тараз",
	"павлодаре":         "Павлодар",
	"усть-каменогорске": "Усть-Каменогорск",
	"оскемене":          "Усть-Каменогорск",
	"семее":             "Семей",
	"семипалатинске":    "Семей",
	"костанае":          "Костанай",
	"кустанае":          "Костанай",
	"кызылорде":         "Кызылорда",
	"атырау":            "Атырау",
	"актау":             "Актау",
	"петропавловске":    "Петропавловск",
	"туркестане":        "Туркестан",
	"кокшетау":          "Кокшетау",
	"кокшетауе":         "Кокшетау",
	"талдыкоргане":      "Талдыкорган",
	"темиртау":          "Темиртау",
	"темиртауе":         "Темиртау",
	"рудном":            "Рудный",
	"жезказгане":        "Жезказган",
	"экибастузе":        "Экибастуз",
}

func init() {
	for _, n := range nominative {
		nominative[strings.ToLower(n)] = n
	}
}

// NormalizeLocality returns the stored nominative form of a city name. Unknown names are returned
// trimmed so they can still be matched against the database. Blank input returns "".
func NormalizeLocality(city string) string {
	city = strings.Join(strings.Fields(city), " ")
	if city == "" {
		return ""
	}
	if n, ok := nominative[strings.ToLower(city)]; ok {
		return n
	}
	return city
}
