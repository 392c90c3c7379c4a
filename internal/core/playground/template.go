package playground

import (
	"fmt"
	"regexp"
	"strings"

	"prompt-playground/internal/pkg/common"
)

// placeholderPattern 匹配一對不含巢狀大括號的 {...}；是否為佔位符由 isPlaceholder 判斷
var placeholderPattern = regexp.MustCompile(`\{([^{}]*)\}`)

// isPlaceholder 內容為空或以識別字元、數字開頭時視為格式佔位符，
// 例如 {}、{0}、{product:>20}、{product!r}、{product.name}；{"k": 1} 之類的 JSON 不算
func isPlaceholder(body string) bool {
	if body == "" {
		return true
	}
	c := body[0]
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// ResolvePrompt 將模板中的 {product} 替換為 subject。
// 出現其他佔位符時回傳 TEMPLATE_ERROR，插入的 subject 不會被再次解析。
func ResolvePrompt(template, subject string) (string, error) {
	var unknown []string
	for _, m := range placeholderPattern.FindAllStringSubmatch(template, -1) {
		if isPlaceholder(m[1]) && m[1] != SubjectPlaceholder {
			unknown = append(unknown, m[0])
		}
	}
	if len(unknown) > 0 {
		return "", common.ErrTemplate.Wrap(fmt.Errorf(
			"unknown placeholder %s in user prompt template, only {%s} is supported",
			strings.Join(unique(unknown), ", "), SubjectPlaceholder,
		))
	}

	return strings.ReplaceAll(template, "{"+SubjectPlaceholder+"}", subject), nil
}

// Placeholders 回傳模板中出現的佔位符名稱（依出現順序、去重）
func Placeholders(template string) []string {
	var names []string
	for _, m := range placeholderPattern.FindAllStringSubmatch(template, -1) {
		if isPlaceholder(m[1]) {
			names = append(names, m[1])
		}
	}
	return unique(names)
}

func unique(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
