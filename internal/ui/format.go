package ui

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	markupPattern = regexp.MustCompile(`<[^>]*>?`)
	listPattern   = regexp.MustCompile(`^\s*[*-]\s+(.*)$`)

	richTextPolicy = bluemonday.UGCPolicy()
)

// StripMarkup 去掉所有形似标签的内容
func StripMarkup(content string) string {
	return markupPattern.ReplaceAllString(content, "")
}

// PlainText 去标签并解码实体，供终端显示
func PlainText(content string) string {
	return html.UnescapeString(StripMarkup(content))
}

// FormatContent 把消息文本转为经过过滤的 HTML："* x" 与 "- x" 行变为列表项，
// 其他文本行以 <br /> 结尾，最后经白名单策略去掉脚本与事件属性
func FormatContent(content string) string {
	lines := strings.Split(content, "\n")

	var sb strings.Builder
	inList := false
	for i, line := range lines {
		if m := listPattern.FindStringSubmatch(line); m != nil {
			if !inList {
				sb.WriteString("<ul>")
				inList = true
			}
			sb.WriteString("<li>" + m[1] + "</li>")
			continue
		}
		if inList {
			sb.WriteString("</ul>")
			inList = false
		}

		trimmed := strings.TrimSpace(line)
		sb.WriteString(line)
		if i < len(lines)-1 && !isMarkupLine(trimmed) {
			sb.WriteString("<br />")
		}
	}
	if inList {
		sb.WriteString("</ul>")
	}

	return richTextPolicy.Sanitize(sb.String())
}

func isMarkupLine(line string) bool {
	return strings.HasPrefix(line, "<") && strings.HasSuffix(line, ">")
}
