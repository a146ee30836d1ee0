package cbsa

import (
	"io"
	"strings"

	"github.com/abelzeko/border-wait/internal/entities"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// TreeParser reads the table by walking html nodes directly
type TreeParser struct {
	opts options
}

// Parse reads and parses an HTML document
func (p *TreeParser) Parse(r io.Reader) ([]entities.CanadaBorderCrossingTimes, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	return p.ParseNode(doc)
}

// ParseNode extracts records from an already parsed document or subtree
func (p *TreeParser) ParseNode(doc *html.Node) ([]entities.CanadaBorderCrossingTimes, error) {
	table := findFirst(doc, func(n *html.Node) bool {
		return n.DataAtom == atom.Table && attr(n, "id") == p.opts.tableID
	})
	if table == nil {
		return nil, &entities.StructuralError{Element: "table #" + p.opts.tableID}
	}

	var data []entities.CanadaBorderCrossingTimes
	for _, body := range elementChildren(table, atom.Tbody) {
		for _, row := range elementChildren(body, atom.Tr) {
			cells := elementChildren(row, atom.Th, atom.Td)
			if len(cells) < 4 {
				continue
			}

			raw := rawRow{
				office:     nodeOfficeText(cells[0]),
				commercial: textContent(cells[1]),
				travellers: textContent(cells[2]),
			}

			if tm := findFirst(cells[3], func(n *html.Node) bool { return n.DataAtom == atom.Time }); tm != nil {
				raw.hasTime = true
				raw.datetime = attr(tm, "datetime")
				raw.timeText = textContent(tm)
			}

			if rec, ok := raw.toRecord(); ok {
				data = append(data, rec)
			}
		}
	}

	return data, nil
}

func nodeOfficeText(cell *html.Node) string {
	var fragments []string
	for c := cell.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			fragments = append(fragments, textContent(c))
		}
	}
	if office := joinFragments(fragments); office != "" {
		return office
	}
	return strings.TrimSpace(textContent(cell))
}

// findFirst returns the first node in document order, root included, matching fn
func findFirst(root *html.Node, fn func(*html.Node) bool) *html.Node {
	if root.Type == html.ElementNode && fn(root) {
		return root
	}
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, fn); found != nil {
			return found
		}
	}
	return nil
}

// elementChildren returns the direct element children with one of the given tags
func elementChildren(n *html.Node, tags ...atom.Atom) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		for _, t := range tags {
			if c.DataAtom == t {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val
		}
	}
	return ""
}

// textContent concatenates every text node below n, like goquery's Text
func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
