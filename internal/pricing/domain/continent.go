package domain

import "strings"

// continentByCountry maps ISO 3166-1 alpha-2 codes to the continent
// codes used by regional pricing entries. Cover the markets the catalog
// actually prices; unknown countries simply never match a continent rule.
var continentByCountry = map[string]string{
	// North America
	"US": "NA", "CA": "NA", "MX": "NA",
	// South America
	"BR": "SA", "AR": "SA", "CL": "SA", "CO": "SA", "PE": "SA",
	// Europe
	"GB": "EU", "DE": "EU", "FR": "EU", "NL": "EU", "ES": "EU",
	"IT": "EU", "PL": "EU", "SE": "EU", "NO": "EU", "FI": "EU",
	"DK": "EU", "IE": "EU", "PT": "EU", "AT": "EU", "BE": "EU",
	"CH": "EU", "CZ": "EU", "GR": "EU", "HU": "EU", "RO": "EU",
	// Asia
	"ID": "AS", "SG": "AS", "MY": "AS", "TH": "AS", "VN": "AS",
	"PH": "AS", "IN": "AS", "CN": "AS", "JP": "AS", "KR": "AS",
	"HK": "AS", "TW": "AS", "AE": "AS", "SA": "AS", "IL": "AS",
	"PK": "AS", "BD": "AS",
	// Africa
	"ZA": "AF", "NG": "AF", "EG": "AF", "KE": "AF", "MA": "AF",
	// Oceania
	"AU": "OC", "NZ": "OC",
}

// ContinentOf returns the continent code for a country, or "" when the
// country is unknown.
func ContinentOf(country string) string {
	return continentByCountry[strings.ToUpper(strings.TrimSpace(country))]
}
