// Package avisatest provides an in-process fake of the scheduling service.
package avisatest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/oneee-playground/playback-tester/internal/avisa"
)

const (
	CallReserve = "reserve"
	CallRelease = "release"
	CallDevice  = "device"
	CallSubmit  = "submit"
	CallStatus  = "status"
)

// Server answers the five scheduling endpoints from canned state.
// Status sequences are consumed one value per poll; the last value repeats.
type Server struct {
	*httptest.Server

	mu sync.Mutex

	reserveCode  int
	reservations []avisa.ReservedDevice
	deviceOS     map[avisa.ID]string
	submitCode   int
	tests        []avisa.TestRecord
	statuses     map[avisa.ID][]int

	calls       map[string]int
	reservation *avisa.ReservationRequest
	submission  *avisa.TestSubmission
	released    []string
}

func NewServer() *Server {
	s := &Server{
		reserveCode: http.StatusOK,
		submitCode:  http.StatusOK,
		deviceOS:    make(map[avisa.ID]string),
		statuses:    make(map[avisa.ID][]int),
		calls:       make(map[string]int),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/reservations/", s.handleReserve)
	mux.HandleFunc("DELETE /api/reservations/{id}", s.handleRelease)
	mux.HandleFunc("GET /api/devices/{id}", s.handleDevice)
	mux.HandleFunc("POST /api/tests/", s.handleSubmit)
	mux.HandleFunc("GET /api/tests/status/{id}", s.handleStatus)

	s.Server = httptest.NewServer(mux)
	return s
}

// Host is the host:port the client should be pointed at.
func (s *Server) Host() string {
	return strings.TrimPrefix(s.URL, "http://")
}

func (s *Server) SetReservations(code int, devices ...avisa.ReservedDevice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reserveCode = code
	s.reservations = devices
}

func (s *Server) SetDeviceOS(id avisa.ID, os string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deviceOS[id] = os
}

func (s *Server) SetTests(code int, records ...avisa.TestRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitCode = code
	s.tests = records
}

func (s *Server) SetStatuses(testID avisa.ID, seq ...int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[testID] = seq
}

func (s *Server) Calls(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[name]
}

func (s *Server) LastReservation() *avisa.ReservationRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reservation
}

func (s *Server) LastSubmission() *avisa.TestSubmission {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submission
}

func (s *Server) Released() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.released...)
}

func (s *Server) handleReserve(w http.ResponseWriter, r *http.Request) {
	var req avisa.ReservationRequest
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls[CallReserve]++
	s.reservation = &req

	if s.reserveCode != http.StatusOK {
		writeJSON(w, s.reserveCode, map[string]string{"error": "no devices available"})
		return
	}

	devices := s.reservations
	if devices == nil {
		devices = []avisa.ReservedDevice{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"reservations": devices})
}

func (s *Server) handleRelease(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls[CallRelease]++
	s.released = append(s.released, r.PathValue("id"))

	writeJSON(w, http.StatusOK, map[string]string{})
}

func (s *Server) handleDevice(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls[CallDevice]++

	os, ok := s.deviceOS[avisa.ID(r.PathValue("id"))]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "device not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"device": map[string]string{"os": os}})
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var sub avisa.TestSubmission
	if err := readJSON(r, &sub); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls[CallSubmit]++
	s.submission = &sub

	if s.submitCode != http.StatusOK {
		writeJSON(w, s.submitCode, map[string]string{"error": "rejected"})
		return
	}

	tests := s.tests
	if tests == nil {
		tests = []avisa.TestRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"tests": tests})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls[CallStatus]++

	id := avisa.ID(r.PathValue("id"))
	seq, ok := s.statuses[id]
	if !ok || len(seq) == 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "test not found"})
		return
	}

	status := seq[0]
	if len(seq) > 1 {
		s.statuses[id] = seq[1:]
	}
	writeJSON(w, http.StatusOK, map[string]int{"status": status})
}

func readJSON(r *http.Request, dst any) error {
	defer r.Body.Close()

	b, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, dst)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
