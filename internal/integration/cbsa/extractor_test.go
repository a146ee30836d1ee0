package cbsa

import (
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/abelzeko/border-wait/internal/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

const waitTimesPage = `
<!DOCTYPE html>
<html>
<head><title>Border Wait Times</title></head>
<body>
<table class="wb-tables" id="otherTable"><tbody><tr><td>a</td><td>b</td><td>c</td><td><time datetime="2022-06-29T14:30">PDT</time></td></tr></tbody></table>
<table id="bwttaTable">
  <thead>
    <tr><th>CBSA Office</th><th>Commercial Flow</th><th>Travellers Flow</th><th>Updated</th></tr>
  </thead>
  <tbody>
    <tr>
      <th scope="row"><b>Pacific Highway</b><br><span>Surrey, BC / Blaine, WA</span></th>
      <td>No Delay</td>
      <td>10 minutes</td>
      <td><time datetime="2022-06-29T14:30:00-07:00">2022-06-29 02:30 PM PDT</time></td>
    </tr>
    <tr>
      <td><b>Lacolle: Route 15</b><br><span>Lacolle, QC / Champlain, NY</span></td>
      <td>No Delay</td>
      <td>No Delay</td>
      <td><time datetime="2022-06-29T17:30">2022-06-29 05:30 PM EDT</time></td>
    </tr>
    <tr>
      <td><b>Douglas</b><br><span></span><span>Surrey, BC / Blaine, WA</span></td>
      <td>Not Applicable</td>
      <td>1 hour</td>
      <td><time datetime="2022-01-15 09:05">2022-01-15 09:05 am pst</time></td>
    </tr>
    <tr>
      <td><b>Aldergrove</b></td>
      <td>Not Applicable</td>
      <td>5 minutes</td>
      <td>Temporarily closed PST</td>
    </tr>
    <tr>
      <td><b>Abbotsford-Huntingdon</b></td>
      <td>2 minute</td>
      <td>1 hours</td>
      <td><span><time datetime="2022-06-29 14:10">2:10 PM PDT</time></span></td>
    </tr>
    <tr>
      <td><b>Boundary Bay</b></td>
      <td>No Delay</td>
      <td>No Delay</td>
      <td><time datetime="sometime">2:10 PM PDT</time></td>
    </tr>
    <tr>
      <td><b>Osoyoos</b></td>
      <td>No Delay</td>
      <td><time datetime="2022-06-29T14:30">2:30 PM PDT</time></td>
    </tr>
    <tr>
      <td>Kingsgate</td>
      <td>No Delay</td>
      <td>No Delay</td>
      <td><time datetime="2022-06-29T14:45">2:45 PM MDT</time></td>
    </tr>
  </tbody>
</table>
</body>
</html>`

var pdt = time.FixedZone("PDT", -7*3600)

func expectedRecords() []entities.CanadaBorderCrossingTimes {
	return []entities.CanadaBorderCrossingTimes{
		{
			CbsaOffice:     "Pacific Highway\nSurrey, BC / Blaine, WA",
			CommercialFlow: entities.FlowNoDelay,
			TravellersFlow: "10 minutes",
			Updated:        time.Date(2022, 6, 29, 14, 30, 0, 0, pdt),
			TimeZone:       "PDT",
		},
		{
			CbsaOffice:     "Douglas\nSurrey, BC / Blaine, WA",
			CommercialFlow: entities.FlowNotApplicable,
			TravellersFlow: "1 hour",
			Updated:        time.Date(2022, 1, 15, 9, 5, 0, 0, time.FixedZone("PST", -8*3600)),
			TimeZone:       "PST",
		},
		{
			CbsaOffice:     "Abbotsford-Huntingdon",
			CommercialFlow: "2 minute",
			TravellersFlow: "1 hours",
			Updated:        time.Date(2022, 6, 29, 14, 10, 0, 0, pdt),
			TimeZone:       "PDT",
		},
	}
}

func assertRecords(t *testing.T, want, got []entities.CanadaBorderCrossingTimes) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].CbsaOffice, got[i].CbsaOffice, "office %d", i)
		assert.Equal(t, want[i].CommercialFlow, got[i].CommercialFlow, "commercial %d", i)
		assert.Equal(t, want[i].TravellersFlow, got[i].TravellersFlow, "travellers %d", i)
		assert.Equal(t, want[i].TimeZone, got[i].TimeZone, "zone %d", i)
		assert.True(t, want[i].Updated.Equal(got[i].Updated), "updated %d: want %s got %s", i, want[i].Updated, got[i].Updated)
		name, _ := got[i].Updated.Zone()
		assert.Equal(t, string(want[i].TimeZone), name, "updated %d is not in the announced zone", i)
	}
}

func parsers() map[string]Parser {
	return map[string]Parser{
		"query": New(),
		"tree":  NewTreeParser(),
	}
}

func TestParsePacificRows(t *testing.T) {
	for name, p := range parsers() {
		t.Run(name, func(t *testing.T) {
			got, err := p.Parse(strings.NewReader(waitTimesPage))
			require.NoError(t, err)
			assertRecords(t, expectedRecords(), got)
		})
	}
}

func TestParseStrategiesAgree(t *testing.T) {
	query, err := New().Parse(strings.NewReader(waitTimesPage))
	require.NoError(t, err)
	tree, err := NewTreeParser().Parse(strings.NewReader(waitTimesPage))
	require.NoError(t, err)
	assert.Equal(t, query, tree)
}

func TestParseMissingTable(t *testing.T) {
	page := `<html><body><table id="somethingElse"><tr><td>x</td></tr></table></body></html>`
	for name, p := range parsers() {
		t.Run(name, func(t *testing.T) {
			_, err := p.Parse(strings.NewReader(page))
			var se *entities.StructuralError
			require.ErrorAs(t, err, &se)
			assert.Contains(t, se.Error(), TableID)
		})
	}
}

func TestParseZoneFilter(t *testing.T) {
	row := func(timeCell string) string {
		return `<table id="bwttaTable"><tr><td><b>Office</b></td><td>No Delay</td><td>No Delay</td><td>` +
			timeCell + `</td></tr></table>`
	}

	cases := []struct {
		name string
		cell string
		keep bool
	}{
		{"pst", `<time datetime="2022-06-29T14:30">2:30 PM PST</time>`, true},
		{"est", `<time datetime="2022-06-29T14:30">2:30 PM EST</time>`, false},
		{"no zone", `<time datetime="2022-06-29T14:30">2:30 PM</time>`, false},
		{"no time element", `2022-06-29 2:30 PM PST`, false},
		{"missing datetime", `<time>2:30 PM PST</time>`, false},
	}

	for _, tc := range cases {
		for name, p := range parsers() {
			t.Run(tc.name+"/"+name, func(t *testing.T) {
				got, err := p.Parse(strings.NewReader(row(tc.cell)))
				require.NoError(t, err)
				if tc.keep {
					assert.Len(t, got, 1)
				} else {
					assert.Empty(t, got)
				}
			})
		}
	}
}

func TestParseDocumentAndNode(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(waitTimesPage))
	require.NoError(t, err)
	got, err := New().ParseDocument(doc)
	require.NoError(t, err)
	assertRecords(t, expectedRecords(), got)

	node, err := html.Parse(strings.NewReader(waitTimesPage))
	require.NoError(t, err)
	got, err = NewTreeParser().ParseNode(node)
	require.NoError(t, err)
	assertRecords(t, expectedRecords(), got)
}

func TestWithTableID(t *testing.T) {
	for name, p := range map[string]Parser{
		"query": New(WithTableID("otherTable")),
		"tree":  NewTreeParser(WithTableID("otherTable")),
	} {
		t.Run(name, func(t *testing.T) {
			got, err := p.Parse(strings.NewReader(waitTimesPage))
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, "a", got[0].CbsaOffice)
		})
	}
}

func TestParseConvenience(t *testing.T) {
	got, err := Parse(waitTimesPage)
	require.NoError(t, err)
	assertRecords(t, expectedRecords(), got)
}

func TestNewParserStrategy(t *testing.T) {
	p, err := NewParser()
	require.NoError(t, err)
	assert.IsType(t, &QueryParser{}, p)

	p, err = NewParser(WithStrategy(StrategyTree))
	require.NoError(t, err)
	assert.IsType(t, &TreeParser{}, p)

	p, err = NewParser(WithStrategy(""))
	require.NoError(t, err)
	assert.IsType(t, &QueryParser{}, p)

	_, err = NewParser(WithStrategy("regex"))
	var fe *entities.FormatError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "regex", fe.Value)
}

func TestNewForSelectsByInput(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(waitTimesPage))
	require.NoError(t, err)
	node, err := html.Parse(strings.NewReader(waitTimesPage))
	require.NoError(t, err)

	cases := []struct {
		name  string
		input any
		opts  []Option
		want  Parser
	}{
		{"document", doc, nil, &QueryParser{}},
		{"document ignores strategy", doc, []Option{WithStrategy(StrategyTree)}, &QueryParser{}},
		{"node", node, nil, &TreeParser{}},
		{"node ignores strategy", node, []Option{WithStrategy(StrategyQuery)}, &TreeParser{}},
		{"markup", waitTimesPage, nil, &QueryParser{}},
		{"markup with tree strategy", waitTimesPage, []Option{WithStrategy(StrategyTree)}, &TreeParser{}},
		{"reader", strings.NewReader(waitTimesPage), []Option{WithStrategy(StrategyTree)}, &TreeParser{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := NewFor(tc.input, tc.opts...)
			require.NoError(t, err)
			assert.IsType(t, tc.want, p)
		})
	}

	_, err = NewFor(42)
	var te *entities.TypeError
	require.ErrorAs(t, err, &te)
}

func TestExtractInputs(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(waitTimesPage))
	require.NoError(t, err)
	node, err := html.Parse(strings.NewReader(waitTimesPage))
	require.NoError(t, err)

	for name, input := range map[string]any{
		"document": doc,
		"node":     node,
		"markup":   waitTimesPage,
		"reader":   strings.NewReader(waitTimesPage),
	} {
		t.Run(name, func(t *testing.T) {
			got, err := Extract(input)
			require.NoError(t, err)
			assertRecords(t, expectedRecords(), got)
		})
	}

	got, err := Parse(waitTimesPage, WithStrategy(StrategyTree))
	require.NoError(t, err)
	assertRecords(t, expectedRecords(), got)

	_, err = Extract([]byte(waitTimesPage))
	var te *entities.TypeError
	assert.ErrorAs(t, err, &te)
}
