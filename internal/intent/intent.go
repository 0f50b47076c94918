package intent

// Intent is a canonical classification of a normalized farmer query.
type Intent string

const (
	Irrigation    Intent = "irrigation"
	Fertilization Intent = "fertilization"
	PestControl   Intent = "pest_control"
	Harvest       Intent = "harvest"
	Livestock     Intent = "livestock"
	Soil          Intent = "soil"
	Subsidy       Intent = "subsidy"
	Weather       Intent = "weather"
	Unknown       Intent = "unknown"
)

// Category returns the rulebook category an intent maps to. Weather queries
// ground into irrigation rules; everything else maps one-to-one.
func (i Intent) Category() string {
	if i == Weather {
		return string(Irrigation)
	}
	return string(i)
}
