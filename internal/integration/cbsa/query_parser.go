package cbsa

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/abelzeko/border-wait/internal/entities"
)

// QueryParser reads the table through goquery selections
type QueryParser struct {
	opts options
}

// Parse reads and parses an HTML document
func (p *QueryParser) Parse(r io.Reader) ([]entities.CanadaBorderCrossingTimes, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}
	return p.ParseDocument(doc)
}

// ParseDocument extracts records from an already loaded document
func (p *QueryParser) ParseDocument(doc *goquery.Document) ([]entities.CanadaBorderCrossingTimes, error) {
	table := doc.Find(`table[id="` + p.opts.tableID + `"]`).First()
	if table.Length() == 0 {
		return nil, &entities.StructuralError{Element: "table #" + p.opts.tableID}
	}

	var data []entities.CanadaBorderCrossingTimes
	table.ChildrenFiltered("tbody").ChildrenFiltered("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.ChildrenFiltered("th, td")
		if cells.Length() < 4 {
			return
		}

		raw := rawRow{
			office:     officeText(cells.Eq(0)),
			commercial: cells.Eq(1).Text(),
			travellers: cells.Eq(2).Text(),
		}

		if tm := cells.Eq(3).Find("time").First(); tm.Length() > 0 {
			raw.hasTime = true
			raw.datetime = tm.AttrOr("datetime", "")
			raw.timeText = tm.Text()
		}

		if rec, ok := raw.toRecord(); ok {
			data = append(data, rec)
		}
	})

	return data, nil
}

// officeText joins the text of each child element, one per line
func officeText(cell *goquery.Selection) string {
	fragments := cell.Children().Map(func(_ int, s *goquery.Selection) string {
		return s.Text()
	})
	if office := joinFragments(fragments); office != "" {
		return office
	}
	return strings.TrimSpace(cell.Text())
}
