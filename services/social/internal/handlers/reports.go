package handlers

import (
	"errors"
	"net/http"

	"github.com/example/socialtrust/internal/platform/api"
	"github.com/example/socialtrust/internal/platform/httpserver"
	"github.com/example/socialtrust/services/social/internal/actions"
	"github.com/example/socialtrust/services/social/internal/moderation"
	"github.com/example/socialtrust/services/social/internal/policy"
	"github.com/example/socialtrust/services/social/internal/store"
)

// FileReport handles POST /v1/reports. When the report is stored but the
// author's penalty is not, the response is 500 PARTIAL_FAILURE and carries
// the report id so the client does not file it again.
func FileReport(svc *actions.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}
		var in moderation.ReportInput
		if !decodeBody(w, r, &in) {
			return
		}
		in.ReporterID = userID

		rep, err := svc.FileReport(r.Context(), in)
		var partial *policy.PartialFailureError
		if errors.As(err, &partial) && rep.ID != "" {
			api.PartialFailure(w, "PARTIAL_FAILURE", "report recorded, penalty pending",
				httpserver.RequestIDFromContext(r.Context()), map[string]any{
					"report_id": rep.ID,
					"completed": partial.Completed,
					"pending":   partial.Pending,
				})
			return
		}
		if err != nil {
			writeError(w, r, err)
			return
		}
		api.WriteJSON(w, http.StatusCreated, rep)
	}
}

// ListReports handles GET /v1/reports?limit=N for moderators.
func ListReports(svc *actions.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}
		reps, err := svc.ListReports(r.Context(), userID, queryInt(r, "limit", 50))
		if err != nil {
			writeError(w, r, err)
			return
		}
		if reps == nil {
			reps = []store.Report{}
		}
		api.WriteJSON(w, http.StatusOK, map[string]any{"reports": reps})
	}
}

// RetryPenalty handles POST /v1/reports/{report_id}/retry for moderators.
func RetryPenalty(svc *actions.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}
		reportID := urlParam(r, "report_id")
		if reportID == "" {
			badRequest(w, r, "report_id is required")
			return
		}
		rep, err := svc.RetryPenalty(r.Context(), userID, reportID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, rep)
	}
}
