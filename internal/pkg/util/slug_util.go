package util

import (
	"strconv"
	"strings"

	"github.com/gosimple/slug"
)

// MakeSlug 由标题生成 URL 片段，标题无可用字符时返回 "post"
func MakeSlug(title string) string {
	s := slug.Make(title)
	if s == "" {
		return "post"
	}
	return s
}

// NextFreeSlug 在已占用集合中为 base 选择最小可用的 base 或 base-N (N>=2)
func NextFreeSlug(base string, taken []string) string {
	used := make(map[int]struct{}, len(taken))
	for _, t := range taken {
		if t == base {
			used[1] = struct{}{}
			continue
		}
		suffix, ok := strings.CutPrefix(t, base+"-")
		if !ok {
			continue
		}
		if n, err := strconv.Atoi(suffix); err == nil && n >= 2 {
			used[n] = struct{}{}
		}
	}

	if _, ok := used[1]; !ok {
		return base
	}
	for n := 2; ; n++ {
		if _, ok := used[n]; !ok {
			return base + "-" + strconv.Itoa(n)
		}
	}
}
