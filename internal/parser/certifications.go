package parser

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"resume-parser-go/internal/types"
)

const (
	maxCertifications     = 20
	minCertificationRunes = 3
)

var trailingDatePattern = regexp.MustCompile(`(?i)[\s,(\-]*(?:` + monthNamePattern + `\s*,?\s*)?(?:(?:19|20)\d{2}|present)\)?\s*$`)

// ExtractCertifications 证书章节的每一行是一项，去掉项目符号和末尾日期，忽略大小写去重
func ExtractCertifications(doc *Document) ([]string, error) {
	out := []string{}
	lines, ok := doc.Section(types.SectionCertifications)
	if !ok {
		return out, nil
	}
	seen := make(map[string]bool)
	for _, line := range lines {
		cert := stripBullet(line)
		for {
			trimmed := trailingDatePattern.ReplaceAllString(cert, "")
			if trimmed == cert {
				break
			}
			cert = trimmed
		}
		cert = strings.Trim(cert, edgeTrimChars+".")
		if utf8.RuneCountInString(cert) < minCertificationRunes {
			continue
		}
		key := strings.ToLower(cert)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, cert)
		if len(out) == maxCertifications {
			break
		}
	}
	return out, nil
}
