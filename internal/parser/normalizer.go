package parser

import (
	"regexp"
	"strings"
)

var (
	cidArtifactPattern = regexp.MustCompile(`\(cid:\d+\)`)
	spaceRunPattern    = regexp.MustCompile(`[ \t\f\v\x{00A0}\x{2000}-\x{200A}\x{202F}\x{205F}\x{3000}]+`)
	inlineGlyphPattern = regexp.MustCompile(`\s*[•●▪■◦○►▶✓✔❖➢⁃·\x{F000}-\x{F0FF}]+\s*`)
	leadingGlyphRun    = regexp.MustCompile(`^[•●▪■◦○►▶✓✔❖➢⁃·\x{F000}-\x{F0FF}]+\s*`)
)

// dashReplacer 各种破折号与竖线统一为 "-"
var dashReplacer = strings.NewReplacer(
	"\u2014", "-", // em dash
	"\u2013", "-", // en dash
	"\u2012", "-",
	"\u2015", "-",
	"\u2212", "-",
	"|", "-",
	"\u200b", "",
	"\ufeff", "",
)

// NormalizeText 清洗PDF/DOCX提取出的文本。
// 行首的项目符号统一成 "- "，行内的项目符号变成逗号分隔。不会失败。
func NormalizeText(raw string) string {
	if raw == "" {
		return ""
	}
	text := strings.ReplaceAll(raw, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = cidArtifactPattern.ReplaceAllString(text, " ")
	text = dashReplacer.Replace(text)

	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.TrimSpace(spaceRunPattern.ReplaceAllString(line, " "))
		if line != "" {
			if leadingGlyphRun.MatchString(line) {
				line = leadingGlyphRun.ReplaceAllString(line, "")
				if line != "" {
					line = "- " + line
				}
			}
			line = inlineGlyphPattern.ReplaceAllString(line, ", ")
			line = strings.TrimSpace(strings.TrimRight(line, ", "))
		}
		if line == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
