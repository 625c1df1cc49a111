package textnorm

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"《書名》",
		"书名(全)",
		"Some Title - 筆趣閣",
		"重生之娛樂圈【完結】",
		"  spaced out  ",
		"MiXeD Case Title",
	}

	for _, in := range inputs {
		for _, aggressive := range []bool{false, true} {
			t.Run(fmt.Sprintf("%s/aggressive=%v", in, aggressive), func(t *testing.T) {
				once := Normalize(in, aggressive)
				twice := Normalize(once, aggressive)
				assert.Equal(t, once, twice)
			})
		}
	}
}

func TestNormalizeBrackets(t *testing.T) {
	// Non-aggressive keeps inner text, drops the bracket characters.
	assert.Equal(t, "書名", Normalize("《書名》", false))

	// Aggressive removes the whole bracketed span.
	assert.Equal(t, "書名", Normalize("書名(全)", true))
	assert.Equal(t, "書名", Normalize("書名【番外完結】", true))
}

func TestNormalizeStatusSuffixes(t *testing.T) {
	assert.Equal(t, "書名", Normalize("書名全文完", true))
	assert.Equal(t, "書名", Normalize("書名連載中", true))
	// Non-aggressive keeps status words.
	assert.Equal(t, "書名全文完", Normalize("書名全文完", false))
}

func TestNormalizeScriptAndCase(t *testing.T) {
	// Simplified input converges with its traditional form.
	assert.Equal(t, Normalize("书名", false), Normalize("書名", false))
	assert.Equal(t, "abc", Normalize("ABC", false))
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("", ""))
	assert.Equal(t, 1.0, Similarity("abc", "abc"))
	assert.InDelta(t, 0.75, Similarity("abcd", "abcx"), 0.001)
	assert.Equal(t, 0.0, Similarity("abc", "xyz"))
}

func TestVerifyIdentityAcceptsMatchingWork(t *testing.T) {
	ok, reason := VerifyIdentity(
		Work{Title: "镇魂(全)", Author: "Priest"},
		Work{Title: "鎮魂", Author: "priest"},
	)
	assert.True(t, ok)
	assert.Equal(t, "身份驗證通過", reason)
}

func TestVerifyIdentityRejectsDifferentAuthors(t *testing.T) {
	// Title is identical, but both authors are resolved and disjoint.
	ok, reason := VerifyIdentity(
		Work{Title: "同一本書", Author: "作者甲"},
		Work{Title: "同一本書", Author: "某乙"},
	)
	assert.False(t, ok)
	assert.Contains(t, reason, "作者不符")
}

func TestVerifyIdentityAuthorSubstringEscape(t *testing.T) {
	ok, _ := VerifyIdentity(
		Work{Title: "同一本書", Author: "墨香"},
		Work{Title: "同一本書", Author: "墨香銅臭"},
	)
	assert.True(t, ok)
}

func TestVerifyIdentityUnknownAuthorSkipsAuthorCheck(t *testing.T) {
	ok, _ := VerifyIdentity(
		Work{Title: "同一本書", Author: "未知作者"},
		Work{Title: "同一本書", Author: "真實作者"},
	)
	assert.True(t, ok)
}

func TestVerifyIdentityRejectsDissimilarTitles(t *testing.T) {
	ok, reason := VerifyIdentity(
		Work{Title: "完全不同的一本書", Author: "作者甲"},
		Work{Title: "another book entirely", Author: "作者甲"},
	)
	assert.False(t, ok)
	assert.Contains(t, reason, "標題差異過大")
	assert.Contains(t, reason, "sim=")
}

func TestVerifyIdentityTitleSubstringEscape(t *testing.T) {
	// Similarity is below threshold, but one cleaned title contains the other.
	ok, _ := VerifyIdentity(
		Work{Title: "書名", Author: ""},
		Work{Title: "書名之很長很長的副標題延伸版", Author: ""},
	)
	assert.True(t, ok)
}
