package model

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"

	"gopkg.in/yaml.v3"
)

// Node is a structural node of a reconstructed document.
type Node interface {
	// Kind returns the node's type tag, used by the serializers.
	Kind() string
}

// Title is a section heading with its hierarchy level (1 = top).
type Title struct {
	Page  int    `json:"page" yaml:"page"`
	Level int    `json:"level" yaml:"level"`
	Text  string `json:"text" yaml:"text"`
}

func (t Title) Kind() string { return "title" }

// Paragraph is a run of body text.
type Paragraph struct {
	Page int    `json:"page" yaml:"page"`
	Text string `json:"text" yaml:"text"`
}

func (p Paragraph) Kind() string { return "paragraph" }

// TableNode is a reconstructed table. Rows is nil when no cell extractor
// contributed a grid for the region.
type TableNode struct {
	Page int        `json:"page" yaml:"page"`
	Rows [][]string `json:"rows,omitempty" yaml:"rows,omitempty"`
}

func (t TableNode) Kind() string { return "table" }

// Document is the final output of a pipeline run: an ordered stream of
// structural nodes.
type Document struct {
	Name    string `json:"name" yaml:"name"`
	Content []Node `json:"content" yaml:"content"`
}

// NewDocument creates an empty reconstructed document.
func NewDocument(name string) *Document {
	return &Document{Name: name, Content: make([]Node, 0)}
}

// Append adds a node to the document.
func (d *Document) Append(n Node) {
	d.Content = append(d.Content, n)
}

// Titles returns the document's title nodes in order.
func (d *Document) Titles() []Title {
	var out []Title
	for _, n := range d.Content {
		if t, ok := n.(Title); ok {
			out = append(out, t)
		}
	}
	return out
}

type taggedNode struct {
	Type  string     `json:"type" yaml:"type"`
	Page  int        `json:"page" yaml:"page"`
	Level int        `json:"level,omitempty" yaml:"level,omitempty"`
	Text  string     `json:"text,omitempty" yaml:"text,omitempty"`
	Rows  [][]string `json:"rows,omitempty" yaml:"rows,omitempty"`
}

func (d *Document) tagged() []taggedNode {
	out := make([]taggedNode, 0, len(d.Content))
	for _, n := range d.Content {
		switch v := n.(type) {
		case Title:
			out = append(out, taggedNode{Type: v.Kind(), Page: v.Page, Level: v.Level, Text: v.Text})
		case Paragraph:
			out = append(out, taggedNode{Type: v.Kind(), Page: v.Page, Text: v.Text})
		case TableNode:
			out = append(out, taggedNode{Type: v.Kind(), Page: v.Page, Rows: v.Rows})
		}
	}
	return out
}

// ToJSON serializes the document as indented JSON.
func (d *Document) ToJSON() ([]byte, error) {
	env := struct {
		Name    string       `json:"name"`
		Content []taggedNode `json:"content"`
	}{d.Name, d.tagged()}
	return json.MarshalIndent(env, "", "  ")
}

// ToYAML serializes the document as YAML.
func (d *Document) ToYAML() ([]byte, error) {
	env := struct {
		Name    string       `yaml:"name"`
		Content []taggedNode `yaml:"content"`
	}{d.Name, d.tagged()}
	return yaml.Marshal(env)
}

// ToHTML renders the document as a standalone HTML page. Title levels map
// to h1..h6; deeper levels clamp to h6.
func (d *Document) ToHTML() string {
	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n<html>\n<head>\n")
	fmt.Fprintf(&sb, "<title>%s</title>\n", html.EscapeString(d.Name))
	sb.WriteString("</head>\n<body>\n")
	for _, n := range d.Content {
		switch v := n.(type) {
		case Title:
			level := v.Level
			if level > 6 {
				level = 6
			}
			fmt.Fprintf(&sb, "<h%d>%s</h%d>\n", level, html.EscapeString(v.Text), level)
		case Paragraph:
			fmt.Fprintf(&sb, "<p>%s</p>\n", html.EscapeString(v.Text))
		case TableNode:
			sb.WriteString("<table>\n")
			for _, row := range v.Rows {
				sb.WriteString("<tr>")
				for _, cell := range row {
					fmt.Fprintf(&sb, "<td>%s</td>", html.EscapeString(cell))
				}
				sb.WriteString("</tr>\n")
			}
			sb.WriteString("</table>\n")
		}
	}
	sb.WriteString("</body>\n</html>\n")
	return sb.String()
}

// ToMarkdown renders the document as Markdown. Tables use pipe syntax
// with the first row treated as the header row.
func (d *Document) ToMarkdown() string {
	var sb strings.Builder
	for i, n := range d.Content {
		if i > 0 {
			sb.WriteString("\n")
		}
		switch v := n.(type) {
		case Title:
			level := v.Level
			if level > 6 {
				level = 6
			}
			sb.WriteString(strings.Repeat("#", level))
			sb.WriteString(" ")
			sb.WriteString(v.Text)
			sb.WriteString("\n")
		case Paragraph:
			sb.WriteString(v.Text)
			sb.WriteString("\n")
		case TableNode:
			writeMarkdownTable(&sb, v.Rows)
		}
	}
	return sb.String()
}

func writeMarkdownTable(sb *strings.Builder, rows [][]string) {
	if len(rows) == 0 {
		return
	}
	cols := 0
	for _, row := range rows {
		if len(row) > cols {
			cols = len(row)
		}
	}
	writeMarkdownRow(sb, rows[0], cols)
	sb.WriteString("|")
	for i := 0; i < cols; i++ {
		sb.WriteString(" --- |")
	}
	sb.WriteString("\n")
	for _, row := range rows[1:] {
		writeMarkdownRow(sb, row, cols)
	}
}

func writeMarkdownRow(sb *strings.Builder, row []string, cols int) {
	sb.WriteString("|")
	for i := 0; i < cols; i++ {
		cell := ""
		if i < len(row) {
			cell = strings.ReplaceAll(row[i], "|", "\\|")
			cell = strings.ReplaceAll(cell, "\n", " ")
		}
		fmt.Fprintf(sb, " %s |", cell)
	}
	sb.WriteString("\n")
}
