// Package matchmaking ranks users against a requested set of skills and
// interests.
package matchmaking

import (
	"sort"
	"strings"

	"collabnexus/internal/models"
	"collabnexus/internal/progress"
)

// MaxResults caps the number of candidates returned by FindTeammates.
const MaxResults = 10

// Request is a teammate search.
type Request struct {
	Skills    []string
	Interests []string
}

// FindTeammates scores every user against req and returns the best matches,
// highest first. Users scoring 0 are dropped and ties keep input order.
//
// Interests count toward the score but MatchingInterests is only set when
// exposeInterests is true.
func FindTeammates(users []models.User, req Request, exposeInterests bool) []models.TeammateMatch {
	skills := requestTerms(req.Skills)
	interests := requestTerms(req.Interests)

	total := len(skills) + len(interests)
	matches := make([]models.TeammateMatch, 0)
	if total == 0 {
		return matches
	}

	for i := range users {
		u := &users[i]
		matchingSkills := overlap(skills, u.Skills)
		matchingInterests := overlap(interests, u.Interests)

		pct := progress.Percent(len(matchingSkills)+len(matchingInterests), total)
		if pct == 0 {
			continue
		}

		m := models.TeammateMatch{
			User:            *u.Clone(),
			MatchPercentage: pct,
			MatchingSkills:  matchingSkills,
		}
		if exposeInterests {
			m.MatchingInterests = matchingInterests
		}
		matches = append(matches, m)
	}

	sort.SliceStable(matches, func(a, b int) bool {
		return matches[a].MatchPercentage > matches[b].MatchPercentage
	})
	if len(matches) > MaxResults {
		matches = matches[:MaxResults]
	}
	return matches
}

// overlap returns the requested terms that match at least one owned term.
// Two terms match when either contains the other, ignoring case.
func overlap(requested, owned []string) []string {
	out := make([]string, 0)
	if len(owned) == 0 {
		return out
	}
	lowered := make([]string, 0, len(owned))
	for _, o := range owned {
		if o = strings.ToLower(strings.TrimSpace(o)); o != "" {
			lowered = append(lowered, o)
		}
	}
	for _, term := range requested {
		want := strings.ToLower(term)
		for _, have := range lowered {
			if strings.Contains(have, want) || strings.Contains(want, have) {
				out = append(out, term)
				break
			}
		}
	}
	return out
}

// requestTerms trims request terms and drops blanks. A blank term would be a
// substring of everything.
func requestTerms(in []string) []string {
	out := make([]string, 0, len(in))
	for _, term := range in {
		if term = strings.TrimSpace(term); term != "" {
			out = append(out, term)
		}
	}
	return out
}
