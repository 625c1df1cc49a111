// Package textnorm produces canonical comparable forms of bibliographic
// text and decides whether two records denote the same work.
//
// All comparison in the importer goes through Normalize first so that
// simplified/traditional script differences, decorative brackets and
// status suffixes never cause false mismatches.
package textnorm

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/siongui/gojianfan"
)

// SimilarityThreshold is the minimum title similarity accepted by
// VerifyIdentity. Empirically chosen; aggressive normalization already
// removes most noise, so the threshold can be strict. Tune here.
const SimilarityThreshold = 0.7

// unknownMark appears in every "unknown author"/"unknown title" sentinel.
// Authors containing it are treated as unresolved and excluded from the
// author check.
const unknownMark = "未知"

var (
	bracketSpanRe  = regexp.MustCompile(`[\(\[\{【（][^\)\]\}】）]*[\)\]\}】）]`)
	statusSuffixRe = regexp.MustCompile(`(全文完|完結|連載中|番外)`)

	// Stripped unconditionally: spaces, CJK punctuation and the bracket
	// characters themselves (inner text survives non-aggressive mode).
	strippedChars = []string{" ", "　", "，", ",", "《", "》", "【", "】", "[", "]", "「", "」", ":", "："}
)

// Normalize converts text to its canonical comparable form: simplified
// characters become traditional, the fixed punctuation set is removed and
// the result is lower-cased. With aggressive=true, bracket-delimited spans
// and completion-status suffixes are removed entirely; this mode is meant
// for fuzzy title comparison only.
//
// Normalize is idempotent: Normalize(Normalize(x)) == Normalize(x).
func Normalize(text string, aggressive bool) string {
	if text == "" {
		return ""
	}
	text = gojianfan.S2T(text)

	if aggressive {
		text = bracketSpanRe.ReplaceAllString(text, "")
		text = statusSuffixRe.ReplaceAllString(text, "")
	}

	for _, c := range strippedChars {
		text = strings.ReplaceAll(text, c, "")
	}

	return strings.ToLower(text)
}

// ToTraditional converts simplified characters to traditional without any
// other cleanup. Used when persisting user-facing fields.
func ToTraditional(text string) string {
	if text == "" {
		return ""
	}
	return gojianfan.S2T(text)
}

// Similarity returns an edit-distance based ratio in [0, 1] between two
// strings. Identical strings score 1.
func Similarity(a, b string) float64 {
	if a == "" && b == "" {
		return 1.0
	}
	long := len([]rune(a))
	if l := len([]rune(b)); l > long {
		long = l
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1.0 - float64(dist)/float64(long)
}

// Work is the identity pair compared by VerifyIdentity.
type Work struct {
	Title  string
	Author string
}

// VerifyIdentity decides whether a scraped page describes the same work as
// a candidate record.
//
// Authors are compared non-aggressively; when both are resolved and
// neither contains the other, the pair is rejected regardless of title
// similarity. Titles are compared aggressively with a substring escape
// hatch before the numeric threshold.
func VerifyIdentity(candidate, scraped Work) (bool, string) {
	candAuthor := Normalize(candidate.Author, false)
	webAuthor := Normalize(scraped.Author, false)

	if candAuthor != "" && webAuthor != "" &&
		!strings.Contains(candAuthor, unknownMark) && !strings.Contains(webAuthor, unknownMark) {
		if candAuthor != webAuthor &&
			!strings.Contains(webAuthor, candAuthor) && !strings.Contains(candAuthor, webAuthor) {
			return false, fmt.Sprintf("作者不符 (CSV: %s vs Web: %s)", candidate.Author, scraped.Author)
		}
	}

	candTitle := Normalize(candidate.Title, true)
	webTitle := Normalize(scraped.Title, true)

	sim := Similarity(candTitle, webTitle)
	if sim < SimilarityThreshold &&
		!strings.Contains(webTitle, candTitle) && !strings.Contains(candTitle, webTitle) {
		return false, fmt.Sprintf("標題差異過大 (%s vs %s, sim=%.2f)", candTitle, webTitle, sim)
	}

	return true, "身份驗證通過"
}
