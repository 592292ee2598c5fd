package model

// Gavi support labels derived from gavi_spec.
const (
	GaviSupportedYes = "supported by gavi"
	GaviSupportedNo  = "not supported by gavi"
)

// Dose labels (HPV_INT_DOSES). RuleCLabel is matched case-insensitively by
// Rule C; HarmonizeLabel is matched with its exact casing by the final
// harmonization pass. The asymmetry mirrors the upstream data convention and
// is deliberate.
const (
	DoseNotYetIntroduced = "Not_yet_introduced"
	DoseNoInformation    = "no information report vax"
	DoseIntroduced       = "vaccine introduced"
	RuleCLabel           = "not yet introduced"
	HarmonizeLabel       = "Not yet introduced"
)

// Gavi regimes (time-varying, row-level).
const (
	RegimeClassic = "Classic Gavi"
	RegimeMIC     = "MICs approach / post-Gavi"
	RegimeNever   = "Never Gavi"
)

// Gavi trajectories (time-invariant, country-level).
const (
	TrajectoryClassicAlways = "Classic Gavi (always)"
	TrajectoryGraduated     = "Classic → MIC (graduated)"
	TrajectoryMICEntry      = "Never → MIC (MICs entry)"
	TrajectoryNeverAlways   = "Never Gavi (always)"
)

// TrajectoryCode returns the numeric coding used in modeling output.
func TrajectoryCodeOf(trajectory string) int {
	switch trajectory {
	case TrajectoryClassicAlways:
		return 1
	case TrajectoryGraduated:
		return 2
	case TrajectoryMICEntry:
		return 3
	case TrajectoryNeverAlways:
		return 4
	default:
		return 0
	}
}

// Income groups.
const (
	IncomeGroupHIC    = "HIC"
	IncomeGroupNonHIC = "Non-HIC"
)

// IncomeClassLabel maps the World Bank short codes to plot-friendly labels.
// Unknown codes pass through unchanged.
func IncomeClassLabelOf(class string) string {
	switch class {
	case "L":
		return "LIC"
	case "LM":
		return "LMIC"
	case "UM":
		return "UMIC"
	case "H":
		return "HIC"
	default:
		return class
	}
}

// Market segments (pricing tiers).
const (
	SegmentGavi73  = "Gavi73"
	SegmentGavi731 = "gavi731"
	SegmentMICs4   = "MICs4"
	SegmentMICs5   = "MICs5"
	SegmentMICs6   = "MICs6"
	SegmentMICs7   = "MICs7"
	SegmentHIC     = "HIC"
	SegmentNC      = "NC"
)

// MICTags are the gavi_spec values marking the MICs-approach transition tier.
var MICTags = map[string]bool{
	"mic_former_gavi": true,
	"mic_never_gavi":  true,
}
