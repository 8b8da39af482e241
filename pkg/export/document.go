package export

import (
	"fmt"
	"strings"
)

// Document is the rendered export, held as an ordered list of lines.
// It is built fresh for every run.
type Document struct {
	lines    []string
	sections int
	items    int
}

// NewDocument starts a document with the site header block.
func NewDocument(site SiteInfo) *Document {
	return &Document{
		lines: []string{
			"# " + site.Name,
			"> " + site.Description,
			"",
			Intro,
		},
	}
}

// AddSection appends a "## label" heading followed by one line per item.
// Sections without items are dropped so the output never has empty headings.
func (d *Document) AddSection(label string, items []ContentItem) {
	if len(items) == 0 {
		return
	}
	d.lines = append(d.lines, "", "## "+label)
	for _, item := range items {
		d.lines = append(d.lines, FormatItem(item))
	}
	d.sections++
	d.items += len(items)
}

// FormatItem renders a single item line.
func FormatItem(item ContentItem) string {
	return fmt.Sprintf("- [%s](%s): ID %s", item.Title, item.Permalink, item.ID)
}

// Sections returns the number of non-empty sections.
func (d *Document) Sections() int {
	return d.sections
}

// Items returns the number of item lines.
func (d *Document) Items() int {
	return d.items
}

// String joins the lines with newlines. There is no trailing newline.
func (d *Document) String() string {
	return strings.Join(d.lines, "\n")
}

// Bytes returns the serialized document.
func (d *Document) Bytes() []byte {
	return []byte(d.String())
}
