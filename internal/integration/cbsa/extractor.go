// Package cbsa extracts border wait times from the CBSA wait times table.
//
// Only rows announced in a Pacific time zone are kept: the table lists every
// land crossing in Canada, and the crossings into Washington state are the
// ones this service reports on.
package cbsa

import (
	"io"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/abelzeko/border-wait/internal/entities"
)

// TableID is the id attribute of the wait times table on the CBSA page
const TableID = "bwttaTable"

// Parser turns a CBSA page into crossing records
type Parser interface {
	Parse(r io.Reader) ([]entities.CanadaBorderCrossingTimes, error)
}

// Option configures a parser
type Option func(*options)

type options struct {
	tableID  string
	strategy Strategy
}

// Strategy names one of the two table walkers
type Strategy string

const (
	// StrategyQuery walks the table with goquery selections
	StrategyQuery Strategy = "query"
	// StrategyTree walks the raw x/net/html node tree
	StrategyTree Strategy = "tree"
)

// WithStrategy picks the walker used for markup and readers.
// An empty strategy leaves the default (query) in place.
func WithStrategy(s Strategy) Option {
	return func(o *options) {
		if s != "" {
			o.strategy = s
		}
	}
}

// WithTableID overrides the id of the table to read
func WithTableID(id string) Option {
	return func(o *options) {
		o.tableID = id
	}
}

func buildOptions(opts []Option) options {
	o := options{tableID: TableID, strategy: StrategyQuery}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// New returns the selector-based parser
func New(opts ...Option) *QueryParser {
	return &QueryParser{opts: buildOptions(opts)}
}

// NewTreeParser returns the parser that walks the raw node tree
func NewTreeParser(opts ...Option) *TreeParser {
	return &TreeParser{opts: buildOptions(opts)}
}

// NewParser returns the parser named by WithStrategy, the query parser by default
func NewParser(opts ...Option) (Parser, error) {
	o := buildOptions(opts)
	switch o.strategy {
	case StrategyQuery:
		return &QueryParser{opts: o}, nil
	case StrategyTree:
		return &TreeParser{opts: o}, nil
	default:
		return nil, &entities.FormatError{Value: string(o.strategy), Expected: "parse strategy query or tree"}
	}
}

// NewFor returns the parser able to read input.
// An already built goquery document binds the query parser and a parsed
// *html.Node binds the tree parser, whatever WithStrategy says. Markup and
// readers get the parser NewParser picks.
func NewFor(input any, opts ...Option) (Parser, error) {
	switch input.(type) {
	case *goquery.Document:
		return New(opts...), nil
	case *html.Node:
		return NewTreeParser(opts...), nil
	case string, io.Reader:
		return NewParser(opts...)
	default:
		return nil, &entities.TypeError{Value: input}
	}
}

// Extract runs the parser NewFor selects over input
func Extract(input any, opts ...Option) ([]entities.CanadaBorderCrossingTimes, error) {
	p, err := NewFor(input, opts...)
	if err != nil {
		return nil, err
	}
	switch v := input.(type) {
	case *goquery.Document:
		return p.(*QueryParser).ParseDocument(v)
	case *html.Node:
		return p.(*TreeParser).ParseNode(v)
	case string:
		return p.Parse(strings.NewReader(v))
	default:
		return p.Parse(v.(io.Reader))
	}
}

// Parse extracts Pacific-zone records from markup
func Parse(markup string, opts ...Option) ([]entities.CanadaBorderCrossingTimes, error) {
	return Extract(markup, opts...)
}

// rawRow holds the four cells of a table row before any interpretation
type rawRow struct {
	office     string
	commercial string
	travellers string
	datetime   string // datetime attribute of the <time> element
	timeText   string // text of the <time> element
	hasTime    bool
}

// layouts accepted in the datetime attribute when it carries no offset
var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// toRecord applies the zone filter and builds the record.
// ok is false for rows that are dropped.
func (r rawRow) toRecord() (entities.CanadaBorderCrossingTimes, bool) {
	if !r.hasTime {
		return entities.CanadaBorderCrossingTimes{}, false
	}
	tz, found := entities.FindTimeZone(r.timeText)
	if !found || !tz.IsPacific() {
		return entities.CanadaBorderCrossingTimes{}, false
	}
	updated, ok := parseUpdated(strings.TrimSpace(r.datetime), tz)
	if !ok {
		return entities.CanadaBorderCrossingTimes{}, false
	}

	// flow validation is advisory, the scraped text is kept as is
	commercial, _ := entities.ParseFlowValue(r.commercial)
	travellers, _ := entities.ParseFlowValue(r.travellers)

	return entities.CanadaBorderCrossingTimes{
		CbsaOffice:     r.office,
		CommercialFlow: commercial,
		TravellersFlow: travellers,
		Updated:        updated,
		TimeZone:       tz,
	}, true
}

func parseUpdated(value string, tz entities.TimeZone) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	loc, err := tz.Location()
	if err != nil {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.In(loc), true
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// joinFragments joins non-empty trimmed fragments with newlines
func joinFragments(fragments []string) string {
	var kept []string
	for _, f := range fragments {
		f = strings.TrimSpace(f)
		if f != "" {
			kept = append(kept, f)
		}
	}
	return strings.Join(kept, "\n")
}
