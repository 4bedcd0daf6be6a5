package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"resume-parser-go/internal/extractor"
	"resume-parser-go/internal/insights"
	"resume-parser-go/internal/logger"
	"resume-parser-go/internal/parser"
	"resume-parser-go/internal/types"
)

var errMissingFile = errors.New("必须提供简历文件路径")

type parseOutput struct {
	Profile       *types.CandidateProfile `json:"profile"`
	SkillsWarning bool                    `json:"skills_warning"`
	Report        *insights.Report        `json:"report,omitempty"`
}

// runParse 解析失败时仍输出完整的默认画像，退出码为0
func runParse(args []string, stdout io.Writer) error {
	fs := pflag.NewFlagSet("parse", pflag.ContinueOnError)
	output := fs.StringP("output", "o", "", "输出到文件，默认标准输出")
	pretty := fs.Bool("pretty", false, "格式化JSON")
	withReport := fs.Bool("report", false, "同时输出画像报告")
	taxPath := fs.String("taxonomy", "", "自定义技能分类表")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return errMissingFile
	}
	path := fs.Arg(0)

	tax, err := loadTaxonomy(*taxPath)
	if err != nil {
		return err
	}

	out := parseOutput{Profile: types.EmptyProfile()}
	text, err := extractFile(path)
	if err != nil {
		logger.Error().Err(err).Str("file", path).Msg("提取简历文本失败，输出默认画像")
	} else {
		res := parser.NewProfileParser(tax).ParseDetailed(text)
		out.Profile = res.Profile
		out.SkillsWarning = res.SkillsWarning
	}
	if *withReport {
		report := insights.BuildReport(out.Profile)
		out.Report = &report
	}

	var data []byte
	if *pretty {
		data, err = json.MarshalIndent(out, "", "  ")
	} else {
		data, err = json.Marshal(out)
	}
	if err != nil {
		return fmt.Errorf("序列化画像失败: %w", err)
	}

	if *output != "" {
		if err := os.WriteFile(*output, append(data, '\n'), 0644); err != nil {
			return fmt.Errorf("写入输出文件失败: %w", err)
		}
		logger.Info().Str("output", *output).Msg("画像已保存")
		return nil
	}
	_, err = fmt.Fprintln(stdout, string(data))
	return err
}

func extractFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("读取文件失败: %w", err)
	}
	text, _, err := extractor.Extract(context.Background(), path, data)
	return text, err
}
