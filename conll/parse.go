package conll

import (
	"strings"

	"github.com/pkg/errors"
)

// Row is one token line of a parsed CoNLL artifact.
type Row struct {
	Line    int // 1-based line number in the artifact
	Columns []string
}

// Block is the parsed form of one exported document.
type Block struct {
	DocID    string
	DocTitle string
	Rows     []Row
}

// Tags returns the tag column of every row. tagColumn is counted from the end:
// 1 for the last column, 2 when a confidence column follows the tag.
func (b *Block) Tags(tagColumn int) []string {
	tags := make([]string, 0, len(b.Rows))
	for _, row := range b.Rows {
		if i := len(row.Columns) - tagColumn; i >= 0 {
			tags = append(tags, row.Columns[i])
		}
	}
	return tags
}

// ParseExport splits a CoNLL artifact into per-document blocks.
//
// A block starts at a "# doc_id = " comment or at the first token line after a blank
// line. Other comment lines are ignored. It fails only for an empty separator.
func ParseExport(text, separator string) ([]Block, error) {
	if separator == "" {
		return nil, errors.New("conll: empty column separator")
	}
	var (
		blocks  []Block
		current *Block
		closed  = true // whether the next token line opens a new block
	)
	open := func() {
		blocks = append(blocks, Block{})
		current = &blocks[len(blocks)-1]
		closed = false
	}
	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		switch {
		case strings.TrimSpace(line) == "":
			if current != nil && len(current.Rows) > 0 {
				closed = true
			}
		case strings.HasPrefix(line, "# doc_id = "):
			open()
			current.DocID = strings.TrimPrefix(line, "# doc_id = ")
		case strings.HasPrefix(line, "# doc_title = "):
			if current == nil || closed {
				open()
			}
			current.DocTitle = strings.TrimPrefix(line, "# doc_title = ")
		case strings.HasPrefix(line, "#"):
		default:
			if current == nil || closed {
				open()
			}
			current.Rows = append(current.Rows, Row{Line: i + 1, Columns: strings.Split(line, separator)})
		}
	}
	return blocks, nil
}
