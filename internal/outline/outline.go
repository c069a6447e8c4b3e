// Package outline reads and writes pages in the Logseq markdown outline
// format: one "- " bullet per block, nesting by indentation, and block
// properties as "key:: value" lines directly under their bullet.
package outline

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/heartmarshall/japanese-cards/internal/domain"
)

const (
	bullet     = "- "
	propSep    = ":: "
	indentUnit = "\t"
)

// SyntaxError reports a line that does not fit the outline structure.
type SyntaxError struct {
	Line int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

// Parse reads an outline into a block forest. Tabs or two spaces count as one
// indentation level. Lines that are not bullets or properties continue the
// text of the previous block on a new line.
func Parse(r io.Reader) ([]domain.BlockNode, error) {
	var (
		roots []domain.BlockNode
		// path holds the index chain from roots to the last block.
		path  []int
		lineN int
	)

	node := func(p []int) *domain.BlockNode {
		n := &roots[p[0]]
		for _, i := range p[1:] {
			n = &n.Children[i]
		}
		return n
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		lineN++
		raw := strings.TrimRight(sc.Text(), " \r")
		if strings.TrimSpace(raw) == "" {
			continue
		}
		depth, rest := indentation(raw)

		if text, ok := strings.CutPrefix(rest, bullet); ok || rest == "-" {
			if !ok {
				text = ""
			}
			if depth > len(path) {
				return nil, &SyntaxError{Line: lineN, Msg: fmt.Sprintf("indented %d levels under a block at level %d", depth, len(path)-1)}
			}
			path = path[:depth]
			nb := domain.BlockNode{Text: text, Properties: domain.Properties{}}
			if depth == 0 {
				roots = append(roots, nb)
				path = append(path, len(roots)-1)
			} else {
				parent := node(path)
				parent.Children = append(parent.Children, nb)
				path = append(path, len(parent.Children)-1)
			}
			continue
		}

		if len(path) == 0 {
			return nil, &SyntaxError{Line: lineN, Msg: "text before the first block"}
		}
		last := node(path)
		if key, value, ok := property(rest); ok {
			last.Properties[key] = value
			continue
		}
		last.Text += "\n" + rest
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read outline: %w", err)
	}
	return roots, nil
}

// Render writes nodes as an outline. Properties are written in key order so
// output is stable.
func Render(w io.Writer, nodes []domain.BlockNode) error {
	bw := bufio.NewWriter(w)
	render(bw, nodes, 0)
	return bw.Flush()
}

func render(w *bufio.Writer, nodes []domain.BlockNode, depth int) {
	indent := strings.Repeat(indentUnit, depth)
	for _, n := range nodes {
		lines := strings.Split(n.Text, "\n")
		w.WriteString(indent + bullet + lines[0] + "\n")
		for _, l := range lines[1:] {
			w.WriteString(indent + "  " + l + "\n")
		}
		keys := make([]string, 0, len(n.Properties))
		for k := range n.Properties {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			w.WriteString(indent + "  " + k + propSep + n.Properties[k] + "\n")
		}
		render(w, n.Children, depth+1)
	}
}

// indentation returns the nesting depth of a line and the line without it.
// Continuation lines are indented two spaces past their bullet; those extra
// spaces are absorbed by the trim.
func indentation(line string) (int, string) {
	depth := 0
	for {
		switch {
		case strings.HasPrefix(line, "\t"):
			line = line[1:]
		case strings.HasPrefix(line, "  "):
			line = line[2:]
		default:
			return depth, strings.TrimLeft(line, " ")
		}
		depth++
	}
}

func property(line string) (string, string, bool) {
	key, value, ok := strings.Cut(line, propSep)
	if !ok {
		key, ok = strings.CutSuffix(line, "::")
		value = ""
	}
	if !ok || key == "" || strings.ContainsAny(key, " \t") {
		return "", "", false
	}
	return key, strings.TrimSpace(value), true
}
