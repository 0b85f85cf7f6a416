package monitor

import (
	"encoding/json"
	"html/template"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/niceyeti/ionhop/plugin"
)

// Server is the optional read-only status server: one websocket
// broadcast of BlockReport snapshots, a JSON polling endpoint, and a
// single status page. It is registered as the loop's plugin.OutputHook
// and never touches the environment lattice itself — it only reads the
// view it's handed.
type Server struct {
	addr    string
	stats   *LiveStats
	updates chan BlockReport

	router *mux.Router
	last   time.Time
}

// NewServer builds a Server bound to addr. Call Serve to block and
// accept connections; OnDataOutput is safe to call concurrently with
// Serve, since the hook runs synchronously on the solver's goroutine
// while Serve's handlers run on their own.
func NewServer(addr string) *Server {
	s := &Server{
		addr:    addr,
		stats:   NewLiveStats(),
		updates: make(chan BlockReport, 1),
	}
	s.router = mux.NewRouter()
	s.router.HandleFunc("/", s.serveIndex).Methods(http.MethodGet)
	s.router.HandleFunc("/ws", s.serveWebsocket).Methods(http.MethodGet)
	s.router.HandleFunc("/state.json", s.serveState).Methods(http.MethodGet)
	return s
}

// OnDataOutput implements plugin.OutputHook: it updates the atomically
// readable LiveStats snapshot and, if a client is connected, offers the
// report on the update channel non-blocking, since a plugin hook must
// not stall the solver's own goroutine.
func (s *Server) OnDataOutput(v plugin.SimulationView) {
	var rateHz float64
	if v.SimulatedTime > 0 {
		rateHz = float64(v.CycleCount) / v.SimulatedTime
	}
	var mcsPerSecond float64
	if v.SimulatedTime > 0 {
		mcsPerSecond = float64(v.MCSCount) / v.SimulatedTime
	}
	r := BlockReport{
		CycleCount:      v.CycleCount,
		MCSCount:        v.MCSCount,
		GoalMCSCount:    v.GoalMCSCount,
		SimulatedTime:   v.SimulatedTime,
		LatticeEnergyEV: v.LatticeEnergyEV,
		CycleRateHz:     rateHz,
		EtaSeconds:      RemainingRunTimeSeconds(v.MCSCount, v.GoalMCSCount, mcsPerSecond),
	}
	s.stats.Update(r)

	select {
	case s.updates <- r:
	default:
		// Drop when nobody is listening or the previous report hasn't
		// been consumed yet; the next block's report supersedes it.
	}
}

// Serve blocks, serving the status page, websocket, and JSON endpoint.
func (s *Server) Serve() error {
	return http.ListenAndServe(s.addr, s.router)
}

func (s *Server) serveWebsocket(w http.ResponseWriter, r *http.Request) {
	stream, err := newReportStream(w, r, s.updates)
	if err != nil {
		return
	}
	defer stream.ws.Close()
	_ = stream.sync()
}

func (s *Server) serveState(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.stats.Snapshot())
}

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html><head><title>ion-hop</title></head>
<body>
<h1>ion-hop solver status</h1>
<dl>
<dt>cycle count</dt><dd id="cycles">{{.CycleCount}}</dd>
<dt>mcs count</dt><dd id="mcs">{{.MCSCount}}</dd>
<dt>simulated time (s)</dt><dd id="time">{{.SimulatedTime}}</dd>
<dt>lattice energy (eV)</dt><dd id="energy">{{.LatticeEnergyEV}}</dd>
<dt>cycle rate (Hz)</dt><dd id="rate">{{.CycleRateHz}}</dd>
<dt>eta (s)</dt><dd id="eta">{{.EtaSeconds}}</dd>
</dl>
<script>
var ws = new WebSocket((location.protocol === "https:" ? "wss://" : "ws://") + location.host + "/ws");
ws.onmessage = function(ev) {
  var r = JSON.parse(ev.data);
  document.getElementById("cycles").textContent = r.cycleCount;
  document.getElementById("mcs").textContent = r.mcsCount;
  document.getElementById("time").textContent = r.simulatedTimeS;
  document.getElementById("energy").textContent = r.latticeEnergyEV;
  document.getElementById("rate").textContent = r.cycleRateHz;
  document.getElementById("eta").textContent = r.etaSeconds;
};
</script>
</body></html>`))

func (s *Server) serveIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	_ = indexTemplate.Execute(w, s.stats.Snapshot())
}
