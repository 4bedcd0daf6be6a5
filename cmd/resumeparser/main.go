// resumeparser 命令行工具：解析简历文件并输出结构化画像
package main

import (
	"fmt"
	"io"
	"os"

	"resume-parser-go/internal/logger"
)

const usage = `用法: resumeparser <命令> [参数]

命令:
  parse <file> [-o out.json] [--pretty] [--report]   解析简历并输出画像JSON
  extract <file>                                     输出规范化后的文本
  sections <file>                                    输出分段结果
  taxonomy [--path file]                             校验技能分类表
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run 执行子命令并返回退出码
func run(args []string, stdout, stderr io.Writer) int {
	logger.Init(logger.Config{Level: "warn", Format: "pretty", Output: "stderr"})
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	var err error
	switch args[0] {
	case "parse":
		err = runParse(args[1:], stdout)
	case "extract":
		err = runExtract(args[1:], stdout)
	case "sections":
		err = runSections(args[1:], stdout)
	case "taxonomy":
		err = runTaxonomy(args[1:], stdout)
	case "-h", "--help", "help":
		fmt.Fprint(stdout, usage)
		return 0
	default:
		fmt.Fprintf(stderr, "错误: 未知命令 '%s'\n\n%s", args[0], usage)
		return 2
	}
	if err != nil {
		fmt.Fprintf(stderr, "错误: %v\n", err)
		return 1
	}
	return 0
}
