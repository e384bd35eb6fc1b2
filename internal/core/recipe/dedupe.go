package recipe

import (
	"strings"

	"aichef-rag/internal/core/retrieval"
)

// Dedupe 去除名稱近似重複的候選，保留先出現者，至多 limit 筆。
// 湊滿 limit 筆後剩餘候選不再評估。
func Dedupe(candidates []retrieval.CandidateRecord, limit int) []retrieval.CandidateRecord {
	accepted := make([]retrieval.CandidateRecord, 0, limit)
	seenNames := make([]string, 0, limit)

	for _, doc := range candidates {
		if len(accepted) >= limit {
			break
		}

		duplicate := false
		for _, existing := range seenNames {
			if namesSimilar(doc.Name, existing) {
				duplicate = true
				break
			}
		}
		if duplicate {
			continue
		}

		seenNames = append(seenNames, doc.Name)
		accepted = append(accepted, doc)
	}

	return accepted
}

// namesSimilar 菜名近似判斷：正規化後相等、包含關係，或字符相似度 > 0.8。
// 菜名通常很短，包含關係即視為重複。
func namesSimilar(name1, name2 string) bool {
	n1 := strings.ToLower(strings.TrimSpace(name1))
	n2 := strings.ToLower(strings.TrimSpace(name2))
	if n1 == n2 {
		return true
	}
	if strings.Contains(n1, n2) || strings.Contains(n2, n1) {
		return true
	}
	return similarityRatio(n1, n2) > 0.8
}

// similarityRatio 字符級相似度：2*M/T，M 為遞歸最長公共子串的匹配總長，
// T 為兩字串長度和。與 difflib.SequenceMatcher.ratio 同構。
func similarityRatio(s1, s2 string) float64 {
	a, b := []rune(s1), []rune(s2)
	total := len(a) + len(b)
	if total == 0 {
		return 1.0
	}
	return 2.0 * float64(matchingTotal(a, b)) / float64(total)
}

func matchingTotal(a, b []rune) int {
	i, j, size := longestMatch(a, b)
	if size == 0 {
		return 0
	}
	return size + matchingTotal(a[:i], b[:j]) + matchingTotal(a[i+size:], b[j+size:])
}

// longestMatch 最長公共子串（動態規劃，返回在 a、b 中的起點與長度）
func longestMatch(a, b []rune) (int, int, int) {
	bestI, bestJ, bestSize := 0, 0, 0
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
				if curr[j] > bestSize {
					bestSize = curr[j]
					bestI = i - bestSize
					bestJ = j - bestSize
				}
			} else {
				curr[j] = 0
			}
		}
		prev, curr = curr, prev
	}

	return bestI, bestJ, bestSize
}
