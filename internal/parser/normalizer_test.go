package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeText(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"空输入", "", ""},
		{"CRLF与多余空行", "Line one\r\n\r\n\r\nLine two", "Line one\n\nLine two"},
		{"行首项目符号", "• Python\n● Go", "- Python\n- Go"},
		{"行内项目符号", "Python • Go • Rust", "Python, Go, Rust"},
		{"破折号", "Jan 2020 – Dec 2021", "Jan 2020 - Dec 2021"},
		{"竖线", "Engineer | Acme", "Engineer - Acme"},
		{"cid残留", "(cid:127)Python", "Python"},
		{"空白折叠", "A  \t B", "A B"},
		{"首尾空行", "\n\n  Skills  \n\n", "Skills"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizeText(tc.in))
		})
	}
}

func TestNewDocumentLines(t *testing.T) {
	doc := newTestDocument("Skills\n\n  Python, Go  \n")
	assert.Equal(t, []string{"Skills", "Python, Go"}, doc.Lines)
	assert.False(t, doc.Empty())
	assert.Equal(t, "skills\n\npython, go", doc.Lower())

	assert.True(t, newTestDocument(" \n\t\n").Empty())
}
