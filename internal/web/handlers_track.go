package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/emiliopalmerini/abtrack/internal/abtest"
	"github.com/emiliopalmerini/abtrack/internal/domain"
)

const (
	maxTrackBody = 64 << 10
	resultsLimit = 100
)

type trackRequest struct {
	TestID    string          `json:"testId"`
	VariantID string          `json:"variantId"`
	UserID    string          `json:"userId"`
	Event     string          `json:"event"`
	Value     *float64        `json:"value"`
	Timestamp json.RawMessage `json:"timestamp"`
}

// parseTimestamp accepts RFC 3339 strings and Unix milliseconds. Times
// outside years 0 to 9999 are rejected since they cannot be encoded back.
func parseTimestamp(raw json.RawMessage) (time.Time, bool, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return time.Time{}, false, nil
	}

	var t time.Time
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if s == "" {
			return time.Time{}, false, nil
		}
		if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
			t = time.UnixMilli(ms)
		} else if t, err = time.Parse(time.RFC3339Nano, s); err != nil {
			return time.Time{}, false, fmt.Errorf("invalid timestamp %q", s)
		}
	} else {
		var ms float64
		if err := json.Unmarshal(raw, &ms); err != nil {
			return time.Time{}, false, errors.New("timestamp must be a string or a number")
		}
		if ms >= math.MaxInt64 || ms <= math.MinInt64 {
			return time.Time{}, false, fmt.Errorf("timestamp %s out of range", raw)
		}
		t = time.UnixMilli(int64(ms))
	}

	t = t.UTC()
	if t.Year() < 0 || t.Year() > 9999 {
		return time.Time{}, false, fmt.Errorf("timestamp %s out of range", raw)
	}
	return t, true, nil
}

func (s *Server) handleTrack(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req trackRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxTrackBody)).Decode(&req); err != nil {
		s.metrics.Rejected("invalid_json")
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if req.TestID == "" || req.VariantID == "" || req.Event == "" {
		s.metrics.Rejected("missing_fields")
		writeError(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	ts, ok, err := parseTimestamp(req.Timestamp)
	if err != nil {
		s.metrics.Rejected("invalid_timestamp")
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !ok {
		ts = s.now().UTC()
	}

	ev := domain.TrackedEvent{
		TestID:    req.TestID,
		VariantID: req.VariantID,
		UserID:    req.UserID,
		Timestamp: ts,
		Event:     req.Event,
		Value:     req.Value,
	}

	if _, known := s.registry.Get(ev.TestID); !known {
		s.logger.Debug("event for unregistered experiment", zap.String("test_id", ev.TestID))
	}

	if err := s.events.Save(ctx, &ev); err != nil {
		s.logger.Error("failed to store event", zap.String("test_id", ev.TestID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to track event")
		return
	}

	s.metrics.EventIngested(ev)
	if s.dispatcher != nil {
		s.dispatcher.Emit(ev)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Event tracked successfully",
	})
}

type resultsResponse struct {
	TestID      string                `json:"testId"`
	TotalEvents int                   `json:"totalEvents"`
	Stats       []domain.VariantStats `json:"stats"`
	Results     []domain.TrackedEvent `json:"results"`
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	testID := r.URL.Query().Get("testId")
	if testID == "" {
		writeError(w, http.StatusBadRequest, "testId parameter required")
		return
	}

	events, err := s.events.ListByExperiment(ctx, testID, 0)
	if err != nil {
		s.logger.Error("failed to load events", zap.String("test_id", testID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to get results")
		return
	}

	recent := events
	if len(recent) > resultsLimit {
		recent = recent[len(recent)-resultsLimit:]
	}
	if recent == nil {
		recent = []domain.TrackedEvent{}
	}

	writeJSON(w, http.StatusOK, resultsResponse{
		TestID:      testID,
		TotalEvents: len(events),
		Stats:       domain.ComputeVariantStats(events),
		Results:     recent,
	})
}

type variantResponse struct {
	TestID  string          `json:"testId"`
	UserID  string          `json:"userId"`
	Variant *domain.Variant `json:"variant"`
	Config  map[string]any  `json:"config"`
}

// userNamespace keeps server-side identities apart from device namespaces.
func userNamespace(userID string) string {
	return "user:" + userID
}

func (s *Server) handleVariant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	testID := r.URL.Query().Get("testId")
	userID := r.URL.Query().Get("userId")
	if testID == "" || userID == "" {
		writeError(w, http.StatusBadRequest, "testId and userId parameters required")
		return
	}
	if userID == abtest.SentinelUserID {
		writeError(w, http.StatusBadRequest, "reserved userId")
		return
	}

	if _, ok := s.registry.Get(testID); !ok {
		writeError(w, http.StatusNotFound, "unknown experiment")
		return
	}

	m := abtest.New(ctx, s.registry, s.stores(userNamespace(userID)),
		abtest.WithUserID(userID),
		abtest.WithLogger(s.logger),
		abtest.WithClock(s.now),
	)

	writeJSON(w, http.StatusOK, variantResponse{
		TestID:  testID,
		UserID:  userID,
		Variant: m.GetVariant(ctx, testID),
		Config:  m.GetConfig(ctx, testID),
	})
}
