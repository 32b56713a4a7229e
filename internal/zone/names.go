package zone

import "strings"

var friendlyNames = map[string]string{
	"Asia/Kathmandu":      "Nepal",
	"Asia/Manila":         "Philippines",
	"Asia/Bangkok":        "Thailand",
	"Asia/Dhaka":          "Bangladesh",
	"Europe/Kyiv":         "Ukraine",
	"Europe/Lisbon":       "Portugal",
	"America/New_York":    "US Eastern",
	"America/Los_Angeles": "US Pacific",
	"Europe/London":       "UK",
	"Europe/Berlin":       "Germany",
	"Asia/Tokyo":          "Japan",
	"Australia/Sydney":    "Australia",
	"Pacific/Auckland":    "New Zealand",
}

// FriendlyName returns a short human label for a timezone id.
func FriendlyName(tz string) string {
	if n, ok := friendlyNames[tz]; ok {
		return n
	}
	if i := strings.LastIndexByte(tz, '/'); i >= 0 && i+1 < len(tz) {
		return tz[i+1:]
	}
	return tz
}

var countryByZone = map[string]string{
	"Asia/Kolkata":      "IN",
	"Asia/Kathmandu":    "NP",
	"Asia/Dhaka":        "BD",
	"Asia/Karachi":      "PK",
	"Asia/Colombo":      "LK",
	"Asia/Manila":       "PH",
	"Asia/Bangkok":      "TH",
	"Asia/Ho_Chi_Minh":  "VN",
	"Asia/Jakarta":      "ID",
	"Asia/Singapore":    "SG",
	"Asia/Kuala_Lumpur": "MY",
	"Asia/Seoul":        "KR",
	"Asia/Tokyo":        "JP",
	"Asia/Shanghai":     "CN",
	"Asia/Hong_Kong":    "HK",
	"Asia/Taipei":       "TW",
	"Asia/Dubai":        "AE",
	"Asia/Qatar":        "QA",
	"Asia/Kuwait":       "KW",
	"Asia/Riyadh":       "SA",
	"Asia/Tehran":       "IR",
	"Asia/Jerusalem":    "IL",

	"Europe/London":     "GB",
	"Europe/Paris":      "FR",
	"Europe/Berlin":     "DE",
	"Europe/Rome":       "IT",
	"Europe/Madrid":     "ES",
	"Europe/Amsterdam":  "NL",
	"Europe/Brussels":   "BE",
	"Europe/Vienna":     "AT",
	"Europe/Zurich":     "CH",
	"Europe/Stockholm":  "SE",
	"Europe/Oslo":       "NO",
	"Europe/Copenhagen": "DK",
	"Europe/Helsinki":   "FI",
	"Europe/Warsaw":     "PL",
	"Europe/Prague":     "CZ",
	"Europe/Budapest":   "HU",
	"Europe/Bucharest":  "RO",
	"Europe/Sofia":      "BG",
	"Europe/Athens":     "GR",
	"Europe/Istanbul":   "TR",
	"Europe/Moscow":     "RU",
	"Europe/Kiev":       "UA",
	"Europe/Kyiv":       "UA",
	"Europe/Lisbon":     "PT",

	"America/New_York":               "US",
	"America/Chicago":                "US",
	"America/Denver":                 "US",
	"America/Los_Angeles":            "US",
	"America/Toronto":                "CA",
	"America/Vancouver":              "CA",
	"America/Mexico_City":            "MX",
	"America/Sao_Paulo":              "BR",
	"America/Argentina/Buenos_Aires": "AR",
	"America/Santiago":               "CL",
	"America/Lima":                   "PE",
	"America/Bogota":                 "CO",

	"Australia/Sydney":    "AU",
	"Australia/Melbourne": "AU",
	"Australia/Perth":     "AU",
	"Pacific/Auckland":    "NZ",
	"Pacific/Fiji":        "FJ",

	"Africa/Cairo":        "EG",
	"Africa/Johannesburg": "ZA",
	"Africa/Lagos":        "NG",
	"Africa/Nairobi":      "KE",
	"Africa/Casablanca":   "MA",

	"UTC": "GL",
	"GMT": "GB",
}

// CountryCode returns an ISO-3166 alpha-2 code for a timezone, or "GL"
// (global) when no country can be inferred.
func CountryCode(tz string) string {
	if c, ok := countryByZone[tz]; ok {
		return c
	}
	if strings.HasPrefix(tz, "UTC+") || strings.HasPrefix(tz, "UTC-") {
		return "GL"
	}
	parts := strings.Split(tz, "/")
	if len(parts) >= 2 {
		// Match on the city segment so aliases like "Asia/Calcutta" style
		// variants still land when the city is known.
		city := parts[1]
		for id, c := range countryByZone {
			if i := strings.LastIndexByte(id, '/'); i >= 0 && id[i+1:] == city {
				return c
			}
		}
	}
	return "GL"
}

// CommonZones is the curated list offered by timezone pickers.
func CommonZones() []string {
	return []string{
		"Asia/Manila",
		"Asia/Bangkok",
		"Asia/Dhaka",
		"Asia/Kathmandu",
		"Europe/Kyiv",
		"Europe/Lisbon",
		"America/New_York",
		"America/Los_Angeles",
		"Europe/London",
		"Europe/Berlin",
		"Asia/Tokyo",
		"Australia/Sydney",
		"Pacific/Auckland",
	}
}
