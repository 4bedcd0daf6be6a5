package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	monthNamePattern = `(jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|sept?(?:ember)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)\.?`
	yearPattern      = `((?:19|20)\d{2})`
	rangeSepPattern  = `\s*(?:-|to|until|till)\s*`
	presentPattern   = `(present|current|now|date|today|ongoing)` // "till date" 由分隔符 till 加 date 组成
)

var (
	// Jan 2020 - Dec 2021 / Jan 2020 - Present / Mar - Jun 2021 的结束年份可省略
	monthRangePattern = regexp.MustCompile(`(?i)\b` + monthNamePattern + `\s*,?\s*` + yearPattern + rangeSepPattern +
		`(?:` + monthNamePattern + `(?:\s*,?\s*` + yearPattern + `)?|` + presentPattern + `)`)
	// 01/2020 - 12/2021
	numericRangePattern = regexp.MustCompile(`(?i)\b(\d{1,2})\s*/\s*` + yearPattern + rangeSepPattern +
		`(?:(\d{1,2})\s*/\s*` + yearPattern + `|` + presentPattern + `)`)
	// 2019 - 2020
	yearRangePattern = regexp.MustCompile(`(?i)\b` + yearPattern + rangeSepPattern + `(?:` + yearPattern + `|` + presentPattern + `)\b`)

	anyYearPattern   = regexp.MustCompile(`\b((?:19|20)\d{2})\b`)
	dateTokenPattern = regexp.MustCompile(`(?i)\b(?:` + monthNamePattern + `\s*,?\s*)?(?:19|20)\d{2}\b|\b(?:present|current|ongoing)\b`)
)

// DateRange 一行中识别出的起止时间
type DateRange struct {
	StartYear, StartMonth int
	EndYear, EndMonth     int
	Present               bool
	Start, End            int // 在行中的字节位置
	HasMonth              bool
}

// Months 按月计算的闭区间长度
func (r DateRange) Months() int {
	return (r.EndYear-r.StartYear)*12 + (r.EndMonth - r.StartMonth) + 1
}

// StartDate YYYY-MM
func (r DateRange) StartDate() string {
	return fmt.Sprintf("%04d-%02d", r.StartYear, r.StartMonth)
}

// EndDate YYYY-MM
func (r DateRange) EndDate() string {
	return fmt.Sprintf("%04d-%02d", r.EndYear, r.EndMonth)
}

// monthNumber 按前三个字母解析月份
func monthNumber(name string) int {
	name = strings.ToLower(strings.TrimSuffix(name, "."))
	if len(name) < 3 {
		return 0
	}
	switch name[:3] {
	case "jan":
		return 1
	case "feb":
		return 2
	case "mar":
		return 3
	case "apr":
		return 4
	case "may":
		return 5
	case "jun":
		return 6
	case "jul":
		return 7
	case "aug":
		return 8
	case "sep":
		return 9
	case "oct":
		return 10
	case "nov":
		return 11
	case "dec":
		return 12
	}
	return 0
}

// findDateRange 依次尝试 月份-年份、MM/YYYY、纯年份 三种写法。
// found 表示行中存在日期区间；err 非空表示数值不合法，区间应被丢弃。
func findDateRange(line string, now time.Time) (r DateRange, found bool, err error) {
	if m := monthRangePattern.FindStringSubmatchIndex(line); m != nil {
		g := submatches(line, m)
		r = DateRange{Start: m[0], End: m[1], HasMonth: true}
		r.StartMonth = monthNumber(g[1])
		r.StartYear, _ = strconv.Atoi(g[2])
		switch {
		case g[5] != "":
			r.Present = true
			r.EndYear, r.EndMonth = now.Year(), int(now.Month())
		default:
			r.EndMonth = monthNumber(g[3])
			if g[4] != "" {
				r.EndYear, _ = strconv.Atoi(g[4])
			} else {
				r.EndYear = r.StartYear
			}
		}
		return r, true, validateRange(r, line[m[0]:m[1]])
	}

	if m := numericRangePattern.FindStringSubmatchIndex(line); m != nil {
		g := submatches(line, m)
		r = DateRange{Start: m[0], End: m[1], HasMonth: true}
		r.StartMonth, _ = strconv.Atoi(g[1])
		r.StartYear, _ = strconv.Atoi(g[2])
		if g[5] != "" {
			r.Present = true
			r.EndYear, r.EndMonth = now.Year(), int(now.Month())
		} else {
			r.EndMonth, _ = strconv.Atoi(g[3])
			r.EndYear, _ = strconv.Atoi(g[4])
		}
		return r, true, validateRange(r, line[m[0]:m[1]])
	}

	if m := yearRangePattern.FindStringSubmatchIndex(line); m != nil {
		g := submatches(line, m)
		r = DateRange{Start: m[0], End: m[1], StartMonth: 1}
		r.StartYear, _ = strconv.Atoi(g[1])
		if g[3] != "" {
			r.Present = true
			r.EndYear, r.EndMonth = now.Year(), int(now.Month())
		} else {
			r.EndYear, _ = strconv.Atoi(g[2])
			r.EndMonth = 12
		}
		return r, true, validateRange(r, line[m[0]:m[1]])
	}
	return DateRange{}, false, nil
}

func validateRange(r DateRange, raw string) error {
	if r.StartMonth < 1 || r.StartMonth > 12 || r.EndMonth < 1 || r.EndMonth > 12 {
		return NewFormatMismatchError("experience.duration", raw)
	}
	if r.EndYear < r.StartYear || (r.EndYear == r.StartYear && r.EndMonth < r.StartMonth) {
		return NewFormatMismatchError("experience.duration", raw)
	}
	return nil
}

func submatches(s string, idx []int) []string {
	out := make([]string, len(idx)/2)
	for i := range out {
		if idx[2*i] >= 0 {
			out[i] = s[idx[2*i]:idx[2*i+1]]
		}
	}
	return out
}

// hasDateToken 行中是否包含年份或 Present 之类的时间词
func hasDateToken(line string) bool {
	return dateTokenPattern.MatchString(line)
}
