package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"resume-parser-go/internal/parser"
)

func fileArg(name string, args []string) (string, error) {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	if fs.NArg() < 1 {
		return "", errMissingFile
	}
	return fs.Arg(0), nil
}

// runExtract 输出规范化后的文本
func runExtract(args []string, stdout io.Writer) error {
	path, err := fileArg("extract", args)
	if err != nil {
		return err
	}
	text, err := extractFile(path)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, parser.NormalizeText(text))
	return err
}

// runSections 输出各分段的行
func runSections(args []string, stdout io.Writer) error {
	path, err := fileArg("sections", args)
	if err != nil {
		return err
	}
	text, err := extractFile(path)
	if err != nil {
		return err
	}
	doc := parser.NewProfileParser(nil).NewDocument(text)
	data, err := json.MarshalIndent(doc.Sections().Map(), "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, string(data))
	return err
}
