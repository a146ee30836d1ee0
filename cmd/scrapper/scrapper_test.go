package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/abelzeko/border-wait/internal/config"
	"github.com/abelzeko/border-wait/internal/usecases"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mockCBSA = `<html><body><table id="bwttaTable"><tbody>
<tr><td><b>Pacific Highway</b><br><span>Surrey, BC / Blaine, WA</span></td><td>No Delay</td><td>1 hour</td>
<td><time datetime="2022-06-29T14:30:00-07:00">2022-06-29 02:30 PM PDT</time></td></tr>
</tbody></table></body></html>`

const mockCBP = `[{"port_number":"300401","port_name":"Blaine","crossing_name":"Pacific Highway","date":"6/29/2022","time":"21:30:00",
"passenger_vehicle_lanes":{"maximum_lanes":"10","standard_lanes":{"delay_minutes":"35","lanes_open":"6","operational_status":"delay","update_time":""}}},
{"port_number":"070801","port_name":"Buffalo","crossing_name":"Peace Bridge","date":"6/29/2022","time":"21:30:00"}]`

// mockServer serves the CBSA page on /cbsa and the CBP feed on /cbp
func mockServer() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/cbsa", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		io.WriteString(w, mockCBSA)
	})
	mux.HandleFunc("/cbp", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, mockCBP)
	})
	return httptest.NewServer(mux)
}

func newTestUseCase(t *testing.T, server *httptest.Server) *usecases.CrossingUseCase {
	t.Helper()
	uc, err := newUseCase(&config.Config{
		CBSAURL:          server.URL + "/cbsa",
		CBPURL:           server.URL + "/cbp",
		CBSAParser:       "tree",
		RegionPrefix:     "30",
		RestrictToRegion: true,
		PortIDPrefix:     "02",
		HTTPTimeout:      5 * time.Second,
	})
	require.NoError(t, err)
	return uc
}

func TestRunPrintsBothSources(t *testing.T) {
	server := mockServer()
	defer server.Close()

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), newTestUseCase(t, server), "", &out))

	text := out.String()
	assert.Contains(t, text, "Pacific Highway - Surrey, BC / Blaine, WA")
	assert.Contains(t, text, "🚗 Travellers: 1 hour")
	assert.Contains(t, text, "Blaine - Pacific Highway (300401)")
	assert.Contains(t, text, "35 min, 6 lanes open")
	assert.NotContains(t, text, "Buffalo")
}

func TestRunSinglePort(t *testing.T) {
	server := mockServer()
	defer server.Close()

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), newTestUseCase(t, server), "300401", &out))
	assert.Contains(t, out.String(), "Blaine - Pacific Highway (300401)")
	assert.NotContains(t, out.String(), "Entering Canada")

	err := run(context.Background(), newTestUseCase(t, server), "070801", &out)
	assert.ErrorIs(t, err, usecases.ErrPortNotFound)
}

func TestRunBothSourcesDown(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	err := run(context.Background(), newTestUseCase(t, server), "", io.Discard)
	assert.Error(t, err)
}
