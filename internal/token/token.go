package token

import "github.com/rivo/uniseg"

// Chat-style tokenizers average roughly four Latin characters per token,
// while CJK scripts land closer to one token per character. Grapheme width
// is used as the script discriminator so the estimate stays conservative for
// mixed-script subtitles.
const narrowPerToken = 4

// Estimate approximates the number of model tokens in s. The estimate only
// needs to be stable and on the high side; batch budgets leave headroom for
// the prompt scaffolding.
func Estimate(s string) int {
	if s == "" {
		return 0
	}
	wide := 0
	narrow := 0
	gr := uniseg.NewGraphemes(s)
	for gr.Next() {
		if gr.Width() >= 2 {
			wide++
		} else {
			narrow++
		}
	}
	est := wide + (narrow+narrowPerToken-1)/narrowPerToken
	if est < 1 {
		est = 1
	}
	return est
}

// EstimateLines sums the estimate over the lines of one segment, plus a
// fixed overhead per line for the JSON scaffolding it is wrapped in.
func EstimateLines(lines []string) int {
	const perLineOverhead = 4
	total := 0
	for _, line := range lines {
		total += Estimate(line) + perLineOverhead
	}
	return total
}
