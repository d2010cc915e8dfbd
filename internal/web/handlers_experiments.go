package web

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/emiliopalmerini/abtrack/internal/web/templates"
)

func (s *Server) handleExperiments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	exps := s.registry.List()
	experiments := make([]templates.Experiment, 0, len(exps))
	for _, e := range exps {
		exp := templates.Experiment{
			ID:             e.ID,
			Name:           e.Name,
			Description:    e.Description,
			Status:         string(e.Status),
			TrafficPercent: e.TrafficPercent,
			Goal:           e.Goal,
			TargetMetric:   e.TargetMetric,
		}
		for _, v := range e.Variants {
			exp.Variants = append(exp.Variants, templates.Variant{
				ID:          v.ID,
				Name:        v.Name,
				Description: v.Description,
				Weight:      v.Weight,
			})
		}

		count, err := s.events.CountByExperiment(ctx, e.ID)
		if err != nil {
			s.logger.Warn("failed to count events", zap.String("test_id", e.ID), zap.Error(err))
		}
		exp.TotalEvents = count

		experiments = append(experiments, exp)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.Experiments(experiments).Render(ctx, w); err != nil {
		s.logger.Error("failed to render experiments", zap.Error(err))
	}
}

func (s *Server) handleAPIExperiments(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.registry.List())
}
