// Package aurtest serves a fake AUR RPC endpoint for tests.
package aurtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"

	rpc "github.com/Jguer/aur"
	"github.com/go-chi/chi/v5"
)

// Server answers info and search queries from an in-memory set of
// packages.
type Server struct {
	*httptest.Server

	r chi.Router

	mu       sync.Mutex
	pkgs     map[string]rpc.Pkg
	requests []string

	// Fail makes every request answer with an internal error.
	Fail bool
	// OmitResults drops the "results" key from the answers.
	OmitResults bool
}

// New starts a fake server preloaded with pkgs.  Close it when done.
func New(pkgs ...rpc.Pkg) *Server {
	s := Server{
		r:    chi.NewRouter(),
		pkgs: make(map[string]rpc.Pkg),
	}
	s.Add(pkgs...)

	s.r.HandleFunc("/", s.rpcHandler)
	s.r.HandleFunc("/*", s.rpcHandler)
	s.Server = httptest.NewServer(s.r)
	return &s
}

// Add makes more packages known to the server.  PackageBase defaults
// to the name.
func (s *Server) Add(pkgs ...rpc.Pkg) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range pkgs {
		if p.PackageBase == "" {
			p.PackageBase = p.Name
		}
		s.pkgs[p.Name] = p
	}
}

// Requests returns the "type" of every query received so far.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

func (s *Server) rpcHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	qtype := r.Form.Get("type")
	s.requests = append(s.requests, qtype)

	if s.Fail {
		http.Error(w, "backend unavailable", http.StatusInternalServerError)
		return
	}

	var results []rpc.Pkg
	switch qtype {
	case "info", "multiinfo":
		args := r.Form["arg[]"]
		if len(args) == 0 {
			args = r.Form["arg"]
		}
		for _, a := range args {
			if p, ok := s.pkgs[a]; ok {
				results = append(results, p)
			}
		}
	case "search":
		term := r.Form.Get("arg")
		desc := r.Form.Get("by") != "name"
		for _, p := range s.pkgs {
			if strings.Contains(p.Name, term) || (desc && strings.Contains(p.Description, term)) {
				results = append(results, p)
			}
		}
		sort.Slice(results, func(i, j int) bool { return results[i].Name > results[j].Name })
	default:
		writeJSON(w, map[string]interface{}{
			"version":     5,
			"type":        "error",
			"resultcount": 0,
			"results":     []rpc.Pkg{},
			"error":       "Incorrect request type specified.",
		})
		return
	}

	resp := map[string]interface{}{
		"version":     5,
		"type":        qtype,
		"resultcount": len(results),
	}
	if !s.OmitResults {
		if results == nil {
			results = []rpc.Pkg{}
		}
		resp["results"] = results
	}
	writeJSON(w, resp)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
