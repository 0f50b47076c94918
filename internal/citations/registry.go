package citations

import "strings"

// Citation identifies the agronomy source a rule is grounded on. Quality is
// a static per-source score feeding the trust report.
type Citation struct {
	ID      string  `json:"id"`
	Title   string  `json:"title"`
	Source  string  `json:"source"`
	Version string  `json:"version"`
	Quality float64 `json:"quality"`
}

// Static citation registry. These mirror the sources the rulepack was
// compiled from; the rulepack references them by id.
var registry = map[string]Citation{
	"CIT-AZ-IRR": {
		ID:      "CIT-AZ-IRR",
		Title:   "Suvarma normaları və rejimi üzrə təlimat",
		Source:  "AZ Kənd Təsərrüfatı Nazirliyi",
		Version: "2025.2",
		Quality: 0.9,
	},
	"CIT-AZ-FRT": {
		ID:      "CIT-AZ-FRT",
		Title:   "Gübrələmə normativləri",
		Source:  "Aqrar Elm və İnnovasiya Mərkəzi",
		Version: "2025.1",
		Quality: 0.85,
	},
	"CIT-AZ-PST": {
		ID:      "CIT-AZ-PST",
		Title:   "Bitki mühafizəsi üzrə tövsiyələr",
		Source:  "Bitki Mühafizə və Texniki Bitkilər ETİ",
		Version: "2024.4",
		Quality: 0.85,
	},
	"CIT-AZ-HRV": {
		ID:      "CIT-AZ-HRV",
		Title:   "Taxıl yığımı üzrə aqrotexniki qaydalar",
		Source:  "AZ Kənd Təsərrüfatı Nazirliyi",
		Version: "2025.1",
		Quality: 0.9,
	},
	"CIT-AZ-SOL": {
		ID:      "CIT-AZ-SOL",
		Title:   "Torpaqların meliorasiyası üzrə təlimat",
		Source:  "Torpaqşünaslıq və Aqrokimya İnstitutu",
		Version: "2024.3",
		Quality: 0.8,
	},
	"CIT-AZ-LVS": {
		ID:      "CIT-AZ-LVS",
		Title:   "Heyvandarlıqda isti stressin idarə olunması",
		Source:  "Baytarlıq Elmi-Tədqiqat İnstitutu",
		Version: "2024.2",
		Quality: 0.8,
	},
	"CIT-AZ-SBS": {
		ID:      "CIT-AZ-SBS",
		Title:   "Əkin subsidiyası qaydaları",
		Source:  "Aqrar Kredit və İnkişaf Agentliyi",
		Version: "2026.1",
		Quality: 0.95,
	},
}

// Lookup returns the citation for an id.
func Lookup(id string) (Citation, bool) {
	c, ok := registry[strings.TrimSpace(id)]
	return c, ok
}

// Quality returns the static quality score for a citation id, or the given
// fallback when the id is unknown.
func Quality(id string, fallback float64) float64 {
	if c, ok := Lookup(id); ok {
		return c.Quality
	}
	return fallback
}
