// Package monitoring turns a running simulation into a small HTTP server
// exposing JSON status endpoints: stat snapshots, simulation progress, and
// process resource usage. There is no user interface; the endpoints are
// meant for scripts and external dashboards.
package monitoring

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"

	// Enable profiling.
	_ "net/http/pprof"

	"github.com/gorilla/mux"
	"github.com/shirou/gopsutil/process"

	"github.com/sarchlab/nvmsim/sim"
	"github.com/sarchlab/nvmsim/stats"
)

// CycleSource reports simulation progress.
type CycleSource interface {
	Name() string
	CurrentCycle() sim.Cycle
}

// Monitor serves the status endpoints of one simulation.
type Monitor struct {
	source     CycleSource
	registry   *stats.Registry
	portNumber int
}

// NewMonitor creates a new Monitor.
func NewMonitor() *Monitor {
	return &Monitor{}
}

// WithPortNumber sets the port the monitor listens on. Ports below 1000 are
// rejected and replaced with a random port.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber != 0 && portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is not allowed for the monitoring server, "+
				"using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// RegisterSource registers the simulation whose progress is reported.
func (m *Monitor) RegisterSource(s CycleSource) {
	m.source = s
}

// RegisterRegistry registers the stat registry served by /api/stats.
func (m *Monitor) RegisterRegistry(reg *stats.Registry) {
	m.registry = reg
}

// Router builds the HTTP routes of the monitor.
func (m *Monitor) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/stats", m.handleStats)
	r.HandleFunc("/api/progress", m.handleProgress)
	r.HandleFunc("/api/resources", m.handleResources)
	r.PathPrefix("/debug/pprof/").Handler(http.DefaultServeMux)

	return r
}

// StartServer starts serving in the background and returns the bound
// address.
func (m *Monitor) StartServer() (string, error) {
	listener, err := net.Listen("tcp",
		fmt.Sprintf("127.0.0.1:%d", m.portNumber))
	if err != nil {
		return "", err
	}

	addr := listener.Addr().String()
	fmt.Fprintf(os.Stderr, "Monitoring server started at http://%s\n", addr)

	go func() {
		if err := http.Serve(listener, m.Router()); err != nil {
			fmt.Fprintf(os.Stderr, "monitoring: %v\n", err)
		}
	}()

	return addr, nil
}

type statEntry struct {
	Name  string `json:"name"`
	Value string `json:"value"`
	Units string `json:"units,omitempty"`
}

func (m *Monitor) handleStats(w http.ResponseWriter, _ *http.Request) {
	entries := []statEntry{}
	if m.registry != nil {
		m.registry.Each(func(s *stats.Stat) {
			entries = append(entries, statEntry{
				Name:  s.Name,
				Value: fmt.Sprintf("%v", s.Get()),
				Units: s.Units,
			})
		})
	}

	writeJSON(w, entries)
}

func (m *Monitor) handleProgress(w http.ResponseWriter, _ *http.Request) {
	progress := map[string]any{}
	if m.source != nil {
		progress["name"] = m.source.Name()
		progress["cycle"] = m.source.CurrentCycle()
	}

	writeJSON(w, progress)
}

func (m *Monitor) handleResources(w http.ResponseWriter, _ *http.Request) {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resources := map[string]any{}
	if memInfo, err := p.MemoryInfo(); err == nil {
		resources["rss"] = memInfo.RSS
		resources["vms"] = memInfo.VMS
	}
	if cpuPercent, err := p.CPUPercent(); err == nil {
		resources["cpuPercent"] = cpuPercent
	}

	writeJSON(w, resources)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
