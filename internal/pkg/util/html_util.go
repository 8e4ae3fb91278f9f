package util

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
)

var ugcPolicy = bluemonday.UGCPolicy()

// SanitizeHTML 按 UGC 策略清洗富文本，移除脚本与事件属性
func SanitizeHTML(raw string) string {
	return strings.TrimSpace(ugcPolicy.Sanitize(raw))
}

// PlainText 提取 HTML 中的纯文本，用于检索
func PlainText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}
	doc.Find("script,style").Remove()
	return strings.Join(strings.Fields(doc.Text()), " ")
}
