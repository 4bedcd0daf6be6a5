package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/pflag"

	"resume-parser-go/internal/taxonomy"
)

func loadTaxonomy(path string) (*taxonomy.Taxonomy, error) {
	if path == "" {
		return taxonomy.Default(), nil
	}
	tax, err := taxonomy.Load(path)
	if err != nil {
		return nil, fmt.Errorf("加载技能分类表失败: %w", err)
	}
	return tax, nil
}

// runTaxonomy 校验分类表并输出版本和各项数量
func runTaxonomy(args []string, stdout io.Writer) error {
	fs := pflag.NewFlagSet("taxonomy", pflag.ContinueOnError)
	path := fs.String("path", "", "分类表YAML文件，为空时校验内置分类表")
	if err := fs.Parse(args); err != nil {
		return err
	}
	tax, err := loadTaxonomy(*path)
	if err != nil {
		return err
	}

	stats := tax.Stats()
	keys := make([]string, 0, len(stats))
	for k := range stats {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Fprintf(stdout, "version: %s\n", tax.Version)
	for _, k := range keys {
		fmt.Fprintf(stdout, "%s: %d\n", k, stats[k])
	}
	return nil
}
