package analytics

// Recommendation texts are deliberately simple rule-based messages, not a
// model. The three-way branch on trend is the contract: declining, improving
// or steady (which also covers a missing trend when either bucket is empty).
const (
	msgDeclining = "Recent scores are trending down. Consider extra revision time and a check-in with the class teacher."
	msgImproving = "Scores are improving. Keep up the current study routine!"
	msgSteady    = "Performance is holding steady. Maintain the current routine and review upcoming assessments together."
)

func recommend(trend *int) string {
	switch {
	case trend != nil && *trend < 0:
		return msgDeclining
	case trend != nil && *trend > 0:
		return msgImproving
	default:
		return msgSteady
	}
}
