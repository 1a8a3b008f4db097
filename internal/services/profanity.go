package services

import (
	"regexp"
	"strings"
)

// blockedWords is the public-listing content screen. Matches are checked on a
// normalised form, so leetspeak punctuation and stretched spellings
// ("fuuuck") do not slip through.
var blockedWords = []string{
	"fuck", "shit", "ass", "bitch", "dick", "bastard",
	"damn", "crap", "piss", "asshole", "motherfucker", "fucker",
	"bullshit", "jackass", "dumbass", "shithead", "dipshit",
	"whore", "slut",
}

var (
	nonAlnumRe = regexp.MustCompile(`[^a-z0-9\s-]`)
	blockedRes []*regexp.Regexp
)

func init() {
	blockedRes = make([]*regexp.Regexp, len(blockedWords))
	for i, word := range blockedWords {
		// Whole word, or part of a compound such as "bullshit-detector".
		blockedRes[i] = regexp.MustCompile(`(?:^|[^a-z])` + regexp.QuoteMeta(word) + `(?:[^a-z]|$)`)
	}
}

func normalizeContent(text string) string {
	lowered := strings.ToLower(text)
	lowered = nonAlnumRe.ReplaceAllString(lowered, "")
	return collapseRuns(lowered)
}

// collapseRuns shortens any run of three or more identical runes to a single
// rune. Runs of exactly two are kept, so ordinary doubled letters ("ll" in
// "bullshit") survive while stretched spellings ("fuuuck") collapse.
func collapseRuns(s string) string {
	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(runes); {
		j := i
		for j < len(runes) && runes[j] == runes[i] {
			j++
		}
		n := j - i
		if n >= 3 {
			n = 1
		}
		for k := 0; k < n; k++ {
			b.WriteRune(runes[i])
		}
		i = j
	}
	return b.String()
}

func containsProfanity(text string) bool {
	cleaned := normalizeContent(text)
	for _, re := range blockedRes {
		if re.MatchString(cleaned) {
			return true
		}
	}
	return false
}
