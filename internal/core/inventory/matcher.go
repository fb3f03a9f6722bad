package inventory

import (
	"strings"
)

// NamesMatch 判斷兩個食材名稱是否指同一項目。
// 規則刻意保持寬鬆：大小寫不敏感的相等，或其中一個等於另一個加上結尾的 "s"。
// 不做詞幹還原也不查同義詞表，"tomato"/"tomatoes" 會配不上，屬已知限制。
func NamesMatch(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}
	if a == b {
		return true
	}
	return a+"s" == b || b+"s" == a
}
