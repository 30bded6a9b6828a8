package web

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/unrolled/render"

	"github.com/cameza/transfer_manager/controller"
	"github.com/cameza/transfer_manager/model"
	"github.com/cameza/transfer_manager/ratelimit"
)

const headerCronSecret = "X-Cron-Secret"

type syncRequest struct {
	Strategy    string `json:"strategy"`
	Season      string `json:"season"`
	ManualToken string `json:"manualToken"`
}

type syncResponse struct {
	Success         bool                       `json:"success"`
	Strategy        model.SyncStrategy         `json:"strategy"`
	Season          string                     `json:"season"`
	Result          *model.SyncResult          `json:"result"`
	RateLimitStatus ratelimit.Status           `json:"rateLimitStatus"`
	Context         controller.StrategyContext `json:"context"`
	Timestamp       time.Time                  `json:"timestamp"`
}

type errorResponse struct {
	Error         string     `json:"error"`
	NextAllowedAt *time.Time `json:"nextAllowedAt,omitempty"`
}

// syncHandler is the manual/cron sync trigger. A trusted cron header
// bypasses the manual-token checks entirely; everyone else needs the
// shared manual token and a free hourly slot for it.
func syncHandler(ctrl controller.C, render *render.Render, secrets Secrets) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req syncRequest
		// An empty body is a valid "sync with defaults" request.
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			render.JSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
			return
		}

		trigger := model.TRIGGER_MANUAL
		isCron := secrets.CronSecret != "" && r.Header.Get(headerCronSecret) == secrets.CronSecret
		if isCron {
			trigger = model.TRIGGER_CRON
		} else {
			if req.ManualToken == "" {
				render.JSON(w, http.StatusBadRequest, errorResponse{Error: "manualToken is required"})
				return
			}
			if req.ManualToken != secrets.ManualSyncSecret {
				render.JSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid manual token"})
				return
			}
		}

		// An explicit caller-supplied strategy always wins over the
		// computed one.
		strategy, sctx := ctrl.DecideStrategy()
		if req.Strategy != "" {
			s, ok := model.ParseStrategy(req.Strategy)
			if !ok {
				render.JSON(w, http.StatusBadRequest, errorResponse{Error: "unknown strategy: " + req.Strategy})
				return
			}
			strategy = s
		}

		season := req.Season
		if season == "" {
			season = model.SeasonForDate(time.Now().UTC())
		}

		// The hourly slot is consumed last, once the request is going to
		// run. A rejected request must not lock the token out.
		if !isCron {
			slot := ctrl.AcquireManualSlot(r.Context(), req.ManualToken)
			if !slot.Allowed {
				resp := errorResponse{Error: slot.Reason}
				if !slot.NextAllowedAt.IsZero() {
					resp.NextAllowedAt = &slot.NextAllowedAt
				}
				render.JSON(w, http.StatusTooManyRequests, resp)
				return
			}
		}

		result := ctrl.RunSync(r.Context(), strategy, season, trigger)

		render.JSON(w, http.StatusOK, syncResponse{
			Success:         result.Success(),
			Strategy:        strategy,
			Season:          season,
			Result:          result,
			RateLimitStatus: ctrl.RateLimitStatus(),
			Context:         sctx,
			Timestamp:       time.Now().UTC(),
		})
	}
}

func syncStatusHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logs, err := ctrl.ListSyncLogs(r.Context(), 20)
		if err != nil {
			render.JSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
			return
		}

		strategy, sctx := ctrl.DecideStrategy()
		render.JSON(w, http.StatusOK, map[string]any{
			"strategy":        strategy,
			"context":         sctx,
			"rateLimitStatus": ctrl.RateLimitStatus(),
			"recentSyncs":     logs,
		})
	}
}

func listTransfersHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		season := r.URL.Query().Get("season")
		if season == "" {
			season = model.SeasonForDate(time.Now().UTC())
		}

		limit := 100
		if l := r.URL.Query().Get("limit"); l != "" {
			n, err := strconv.Atoi(l)
			if err != nil || n < 1 || n > 1000 {
				render.JSON(w, http.StatusBadRequest, errorResponse{Error: "limit must be between 1 and 1000"})
				return
			}
			limit = n
		}

		transfers, err := ctrl.ListTransfers(r.Context(), season, limit)
		if err != nil {
			render.JSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
			return
		}

		render.JSON(w, http.StatusOK, map[string]any{
			"season":    season,
			"transfers": transfers,
		})
	}
}

type enrichRequest struct {
	Season        string `json:"season"`
	ResumeAfterID int64  `json:"resumeAfterId"`
	MaxRetries    int    `json:"maxRetries"`
}

func enrichHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req enrichRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			render.JSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
			return
		}
		if req.Season == "" {
			req.Season = model.SeasonForDate(time.Now().UTC())
		}

		progress, err := ctrl.EnrichTransfers(r.Context(), req.Season, req.ResumeAfterID)
		if err != nil {
			log.Printf("enrichment batch failed: %v", err)
			render.JSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
			return
		}

		render.JSON(w, http.StatusOK, progress)
	}
}

func enrichRetryHandler(ctrl controller.C, render *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req enrichRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			render.JSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
			return
		}

		progress, err := ctrl.RetryFailedEnrichments(r.Context(), req.MaxRetries)
		if err != nil {
			log.Printf("enrichment retry failed: %v", err)
			render.JSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
			return
		}

		render.JSON(w, http.StatusOK, progress)
	}
}
