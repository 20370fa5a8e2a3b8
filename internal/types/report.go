package types

// Recommendation is the final hiring call derived from interview performance.
type Recommendation string

// Recommendations ordered from best to worst.
const (
	RecommendStrong Recommendation = "Strong"
	RecommendMedium Recommendation = "Medium"
	RecommendWeak   Recommendation = "Weak"
	RecommendReject Recommendation = "Reject"
)

// Valid reports whether r is one of the defined recommendations.
func (r Recommendation) Valid() bool {
	switch r {
	case RecommendStrong, RecommendMedium, RecommendWeak, RecommendReject:
		return true
	}
	return false
}

// FinalReport is the hiring recommendation plus a short narrative summary.
type FinalReport struct {
	Recommendation Recommendation `json:"recommendation"`
	Report         string         `json:"report"`
}
