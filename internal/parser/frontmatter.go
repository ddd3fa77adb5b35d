package parser

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// frontMatter holds the optional YAML header some spec documents open
// with. All fields are free text; date parsing happens later.
type frontMatter struct {
	Status   string `yaml:"status"`
	Created  string `yaml:"created"`
	Branch   string `yaml:"branch"`
	Priority string `yaml:"priority"`
}

// splitFrontMatter strips a leading YAML fence (--- ... ---) from
// source and returns its parsed fields plus the remaining body. Absent
// or unterminated fences leave the source untouched; a fence with
// invalid YAML is still stripped but yields empty fields.
func splitFrontMatter(source []byte) (frontMatter, []byte) {
	var fm frontMatter

	lines := strings.SplitAfter(string(source), "\n")
	if len(lines) == 0 || strings.TrimRight(lines[0], "\r\n") != "---" {
		return fm, source
	}

	consumed := len(lines[0])
	var yamlLines []string
	closed := false
	for _, line := range lines[1:] {
		consumed += len(line)
		if strings.TrimRight(line, "\r\n") == "---" {
			closed = true
			break
		}
		yamlLines = append(yamlLines, strings.TrimRight(line, "\r\n"))
	}
	if !closed {
		return fm, source
	}

	if err := yaml.Unmarshal([]byte(strings.Join(yamlLines, "\n")), &fm); err != nil {
		fm = frontMatter{}
	}
	return fm, source[consumed:]
}
