package report

import "strings"

// EstimateTokens approximates the token count of text at 0.75 words per
// token, rounded up. It only drives routing and chunk sizing.
func EstimateTokens(text string) int {
	words := len(strings.Fields(text))
	if words == 0 {
		return 0
	}
	// ceil(words / 0.75) == ceil(4*words / 3)
	return (words*4 + 2) / 3
}
