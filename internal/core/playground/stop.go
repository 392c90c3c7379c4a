package playground

import (
	"strings"
)

// ParseStopSequences 解析逗號分隔的停止序列。
// 保留順序與重複項；沒有有效項目時回傳 nil（不送出 stop），而非空切片。
func ParseStopSequences(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	var stops []string
	for _, seg := range strings.Split(raw, ",") {
		if seg = strings.TrimSpace(seg); seg != "" {
			stops = append(stops, seg)
		}
	}
	return stops
}
