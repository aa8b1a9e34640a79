package models

// TeammateMatch is one ranked candidate returned by teammate matching.
// MatchingInterests is only filled when the expose_matching_interests
// feature flag is on; by default interests count toward the score but are
// not reported.
type TeammateMatch struct {
	User              User     `json:"user"`
	MatchPercentage   int      `json:"matchPercentage"`
	MatchingSkills    []string `json:"matchingSkills"`
	MatchingInterests []string `json:"matchingInterests,omitempty"`
}
