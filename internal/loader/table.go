package loader

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format identifies a table encoding
type Format string

const (
	FormatAuto     Format = ""
	FormatDict     Format = "dict"
	FormatYAML     Format = "yaml"
	FormatTSV      Format = "tsv"
	FormatCSV      Format = "csv"
	FormatGeneList Format = "genelist"
)

// Table is an ordered string mapping. Keys keep file order so that the gene
// menu lists genes the way the source file does.
type Table struct {
	Keys   []string
	Values map[string]string
}

// NewTable creates an empty table
func NewTable() *Table {
	return &Table{Values: make(map[string]string)}
}

// Put inserts or overwrites an entry
func (t *Table) Put(key, value string) {
	if _, ok := t.Values[key]; !ok {
		t.Keys = append(t.Keys, key)
	}
	t.Values[key] = value
}

// Get looks up a key
func (t *Table) Get(key string) (string, bool) {
	v, ok := t.Values[key]
	return v, ok
}

// Len returns the number of entries
func (t *Table) Len() int {
	return len(t.Keys)
}

// LoadTable reads a table file, detecting its format
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	t, err := ParseTable(data, DetectFormat(path, data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return t, nil
}

// DetectFormat picks a format from the extension, falling back to content
func DetectFormat(path string, data []byte) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".csv":
		return FormatCSV
	case ".tsv":
		return FormatTSV
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		return FormatDict
	}
	first := trimmed
	if i := bytes.IndexByte(first, '\n'); i >= 0 {
		first = first[:i]
	}
	switch {
	case bytes.IndexByte(first, '\t') >= 0:
		return FormatTSV
	case bytes.IndexByte(first, ',') >= 0:
		return FormatCSV
	case bytes.HasSuffix(bytes.TrimSpace(first), []byte(")")):
		return FormatGeneList
	}
	return FormatTSV
}

// ParseTable decodes table bytes in the given format
func ParseTable(data []byte, format Format) (*Table, error) {
	switch format {
	case FormatDict:
		return parseDict(data)
	case FormatYAML:
		return parseYAML(data)
	case FormatTSV:
		return parseDelimited(data, '\t')
	case FormatCSV:
		return parseDelimited(data, ',')
	case FormatGeneList:
		return parseGeneList(data)
	case FormatAuto:
		return ParseTable(data, DetectFormat("", data))
	}
	return nil, fmt.Errorf("unknown table format %q", format)
}

func parseYAML(data []byte) (*Table, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	t := NewTable()
	if len(node.Content) == 0 {
		return t, nil
	}
	root := node.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("expected a YAML mapping, got kind %d", root.Kind)
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		k, v := root.Content[i], root.Content[i+1]
		value := v.Value
		if v.ShortTag() == "!!null" {
			value = ""
		}
		t.Put(k.Value, value)
	}
	return t, nil
}

func parseDelimited(data []byte, sep rune) (*Table, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = sep
	r.Comment = '#'
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.LazyQuotes = true

	t := NewTable()
	first := true
	for {
		fields, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(fields) == 1 && strings.TrimSpace(fields[0]) == "" {
			continue
		}
		if len(fields) < 2 {
			line, _ := r.FieldPos(0)
			return nil, fmt.Errorf("line %d: expected 2 columns, got %d", line, len(fields))
		}
		key := unquote(strings.TrimSpace(fields[0]))
		value := unquote(strings.TrimSpace(fields[1]))
		if first && isHeader(key) {
			first = false
			continue
		}
		first = false
		t.Put(key, value)
	}
	return t, nil
}

func isHeader(key string) bool {
	switch strings.ToLower(key) {
	case "gene", "gene_name", "name", "gene_id", "genomic_id", "ensg":
		return true
	}
	return false
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}

// parseGeneList reads "ENSG00000223972.5 (DDX11L1)" lines, keyed by gene name
func parseGeneList(data []byte) (*Table, error) {
	t := NewTable()
	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		open := strings.IndexByte(line, '(')
		if open < 0 || !strings.HasSuffix(line, ")") {
			return nil, fmt.Errorf("line %d: expected \"id (name)\"", lineNo)
		}
		id := strings.TrimSpace(line[:open])
		name := strings.TrimSpace(line[open+1 : len(line)-1])
		t.Put(name, id)
	}
	return t, scanner.Err()
}
