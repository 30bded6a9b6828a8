package model

import (
	"strings"
	"unicode/utf8"
)

const NATIONALITY_UNKNOWN = "UNK"

// nationalityCodes maps the country names the stats provider reports to
// ISO 3166-1 alpha-3 codes. Only countries that have actually shown up in
// provider data are listed; everything else goes through the fallback in
// ParseNationality.
var nationalityCodes = map[string]string{
	"Argentina":            "ARG",
	"Australia":            "AUS",
	"Austria":              "AUT",
	"Belgium":              "BEL",
	"Brazil":               "BRA",
	"Cameroon":             "CMR",
	"Canada":               "CAN",
	"Colombia":             "COL",
	"Croatia":              "HRV",
	"Côte d'Ivoire":        "CIV",
	"Czech Republic":       "CZE",
	"Denmark":              "DNK",
	"Ecuador":              "ECU",
	"Egypt":                "EGY",
	"England":              "ENG",
	"France":               "FRA",
	"Germany":              "DEU",
	"Ghana":                "GHA",
	"Greece":               "GRC",
	"Italy":                "ITA",
	"Ivory Coast":          "CIV",
	"Japan":                "JPN",
	"Mexico":               "MEX",
	"Morocco":              "MAR",
	"Netherlands":          "NLD",
	"Nigeria":              "NGA",
	"Norway":               "NOR",
	"Poland":               "POL",
	"Portugal":             "PRT",
	"Scotland":             "SCO",
	"Senegal":              "SEN",
	"Serbia":               "SRB",
	"South Korea":          "KOR",
	"Spain":                "ESP",
	"Sweden":               "SWE",
	"Switzerland":          "CHE",
	"Turkey":               "TUR",
	"United States":        "USA",
	"Uruguay":              "URY",
	"Wales":                "WAL",
}

// ParseNationality converts a country name into an ISO-3 style code. Names
// missing from the lookup table fall back to the first three characters
// uppercased, which keeps codes stable even for countries we haven't mapped.
func ParseNationality(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return NATIONALITY_UNKNOWN
	}
	if code, ok := nationalityCodes[name]; ok {
		return code
	}
	// Slice runes, not bytes, so accented names don't produce a torn code.
	runes := []rune(name)
	if len(runes) < 3 {
		return NATIONALITY_UNKNOWN
	}
	return strings.ToUpper(string(runes[:3]))
}

func validNationality(code string) bool {
	return utf8.RuneCountInString(code) == 3 && code != NATIONALITY_UNKNOWN
}
