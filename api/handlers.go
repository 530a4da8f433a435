/*
handlers.go - HTTP API handlers for the refund engine

PURPOSE:
  Exposes refund evaluation via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to the refund package.

ENDPOINTS:
  Reference:
    GET    /api/health                 Liveness
    GET    /api/zones                  Zone label table

  Evaluation:
    POST   /api/evaluate               Assess one trade record (not stored)
    POST   /api/evaluations            Assess a batch and store the run
    GET    /api/evaluations            Run history, newest first
    GET    /api/evaluations/{id}       One run with every decision

  Samples:
    GET    /api/samples                Built-in trade records
    POST   /api/samples/evaluate       Assess and store the samples

  Policies:
    GET    /api/policies               List all policies
    POST   /api/policies               Create or replace a policy from JSON
    GET    /api/policies/{id}          Get one policy

  Admin:
    POST   /api/admin/reset            Clear stored data, reinstall the default policy

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Store: Policies and evaluation runs
  - PolicyFactory: JSON to Policy conversion
  - Zones: Label table shared by every evaluator
  - Cached policies for quick lookups

POLICY SELECTION:
  Evaluation endpoints take an optional policy_id. Empty means the policy
  installed as default at startup.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Malformed body, invalid policy
  - 404: Unknown policy or run
  - 500: Store failures
  A record the engine cannot decide is a 200 with decision "indeterminate".

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/warp/refund-engine/factory"
	"github.com/warp/refund-engine/generic"
	"github.com/warp/refund-engine/refund"
	"github.com/warp/refund-engine/store/sqlite"
)

// maxBatchSize bounds the records accepted by one batch request.
const maxBatchSize = 10000

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store         Store
	PolicyFactory *factory.PolicyFactory
	Zones         *generic.ZoneResolver
	Workers       int

	log zerolog.Logger
	now func() time.Time

	mu              sync.RWMutex
	policies        map[string]*refund.Policy
	defaultPolicyID string
}

// NewHandler creates a new handler with the given store.
func NewHandler(store Store, log zerolog.Logger) *Handler {
	return &Handler{
		Store:         store,
		PolicyFactory: factory.NewPolicyFactory(),
		Zones:         generic.DefaultZoneResolver(),
		Workers:       4,
		log:           log.With().Str("component", "api").Logger(),
		now:           time.Now,
		policies:      make(map[string]*refund.Policy),
	}
}

// InstallPolicy stores policy, caches it and makes it the default.
func (h *Handler) InstallPolicy(ctx context.Context, policy *refund.Policy) error {
	if err := h.savePolicy(ctx, policy); err != nil {
		return err
	}
	h.mu.Lock()
	h.defaultPolicyID = policy.ID
	h.mu.Unlock()

	h.log.Info().Str("policy_id", policy.ID).Msg("Default policy installed")
	return nil
}

// LoadPolicies loads all policies from the database into cache.
func (h *Handler) LoadPolicies(ctx context.Context) error {
	records, err := h.Store.ListPolicies(ctx)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, r := range records {
		policy, err := h.PolicyFactory.ParsePolicy(r.ConfigJSON)
		if err != nil {
			h.log.Warn().Err(err).Str("policy_id", r.ID).Msg("Skipping invalid stored policy")
			continue
		}
		h.policies[policy.ID] = policy
	}
	return nil
}

func (h *Handler) savePolicy(ctx context.Context, policy *refund.Policy) error {
	configJSON, err := h.PolicyFactory.Marshal(policy)
	if err != nil {
		return err
	}
	record := sqlite.PolicyRecord{
		ID:         policy.ID,
		Name:       policy.Name,
		ConfigJSON: configJSON,
	}
	if err := h.Store.SavePolicy(ctx, record); err != nil {
		return err
	}

	h.mu.Lock()
	h.policies[policy.ID] = policy
	h.mu.Unlock()
	return nil
}

// policy returns the policy for id, or the default policy when id is empty.
func (h *Handler) policy(ctx context.Context, id string) (*refund.Policy, error) {
	h.mu.RLock()
	if id == "" {
		id = h.defaultPolicyID
	}
	cached, ok := h.policies[id]
	h.mu.RUnlock()
	if ok {
		return cached, nil
	}
	if id == "" {
		return nil, fmt.Errorf("%w: no default policy installed", generic.ErrPolicyNotFound)
	}

	record, err := h.Store.GetPolicy(ctx, id)
	if err != nil {
		return nil, err
	}
	policy, err := h.PolicyFactory.ParsePolicy(record.ConfigJSON)
	if err != nil {
		return nil, err
	}

	h.mu.Lock()
	h.policies[policy.ID] = policy
	h.mu.Unlock()
	return policy, nil
}

func (h *Handler) isDefault(id string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return id == h.defaultPolicyID
}

// =============================================================================
// REFERENCE HANDLERS
// =============================================================================

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListZones returns the zone label table.
func (h *Handler) ListZones(w http.ResponseWriter, r *http.Request) {
	entries := h.Zones.Entries()
	dtos := make([]ZoneDTO, len(entries))
	for i, e := range entries {
		dtos[i] = toZoneDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// EVALUATION HANDLERS
// =============================================================================

// Evaluate assesses one trade record. The result is not stored.
// POST /api/evaluate?policy_id=...
func (h *Handler) Evaluate(w http.ResponseWriter, r *http.Request) {
	var record refund.TradeRecord
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	policy, err := h.policy(r.Context(), r.URL.Query().Get("policy_id"))
	if err != nil {
		writeDomainError(w, "Failed to load policy", err)
		return
	}

	a := refund.NewEvaluator(h.Zones, policy).Assess(record)
	writeJSON(w, http.StatusOK, toAssessmentDTO(a))
}

// CreateEvaluation assesses a batch of records and stores the run.
// POST /api/evaluations
func (h *Handler) CreateEvaluation(w http.ResponseWriter, r *http.Request) {
	var req EvaluateBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if len(req.Trades) == 0 {
		writeError(w, http.StatusBadRequest, "No trades to evaluate", nil)
		return
	}
	if len(req.Trades) > maxBatchSize {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("At most %d trades per request", maxBatchSize), nil)
		return
	}

	h.runBatch(w, r, req.PolicyID, req.Trades)
}

// ListEvaluations returns stored runs, newest first, without their decisions.
// GET /api/evaluations?limit=N
func (h *Handler) ListEvaluations(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit", err)
			return
		}
		limit = n
	}

	runs, err := h.Store.ListRuns(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list evaluations", err)
		return
	}

	dtos := make([]RunDTO, len(runs))
	for i, run := range runs {
		dtos[i] = toRunDTO(run)
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": dtos})
}

// GetEvaluation returns one stored run with its decisions.
// GET /api/evaluations/{id}
func (h *Handler) GetEvaluation(w http.ResponseWriter, r *http.Request) {
	run, err := h.Store.GetRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "Failed to get evaluation", err)
		return
	}
	writeJSON(w, http.StatusOK, toRunDTO(*run))
}

func (h *Handler) runBatch(w http.ResponseWriter, r *http.Request, policyID string, trades []refund.TradeRecord) {
	ctx := r.Context()

	policy, err := h.policy(ctx, policyID)
	if err != nil {
		writeDomainError(w, "Failed to load policy", err)
		return
	}

	assessments, err := refund.EvaluateBatch(ctx, refund.NewEvaluator(h.Zones, policy), trades, h.Workers)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Evaluation interrupted", err)
		return
	}

	run := sqlite.NewRun(uuid.NewString(), policy.ID, h.now(), assessments)
	if err := h.Store.SaveRun(ctx, run); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to store evaluation", err)
		return
	}

	for _, a := range assessments {
		if a.Decision == refund.Indeterminate {
			h.log.Debug().
				Str("run_id", run.ID).
				Str("name", a.Record.Name).
				Str("reason_code", generic.ReasonCode(a.Reason)).
				Err(a.Reason).
				Msg("Record indeterminate")
		}
	}
	h.log.Info().
		Str("run_id", run.ID).
		Str("policy_id", policy.ID).
		Int("total", run.Summary.Total).
		Int("approved", run.Summary.Approved).
		Int("denied", run.Summary.Denied).
		Int("indeterminate", run.Summary.Indeterminate).
		Msg("Batch evaluated")

	writeJSON(w, http.StatusCreated, toRunDTO(run))
}

// =============================================================================
// SAMPLE HANDLERS
// =============================================================================

// ListSamples returns the built-in trade records.
func (h *Handler) ListSamples(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, refund.SampleTrades())
}

// EvaluateSamples assesses the built-in records and stores the run.
// POST /api/samples/evaluate?policy_id=...
func (h *Handler) EvaluateSamples(w http.ResponseWriter, r *http.Request) {
	h.runBatch(w, r, r.URL.Query().Get("policy_id"), refund.SampleTrades())
}

// =============================================================================
// POLICY HANDLERS
// =============================================================================

// ListPolicies returns all policies.
func (h *Handler) ListPolicies(w http.ResponseWriter, r *http.Request) {
	policies, err := h.Store.ListPolicies(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list policies", err)
		return
	}

	dtos := make([]PolicyDTO, len(policies))
	for i, p := range policies {
		dtos[i] = h.toPolicyDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreatePolicy creates or replaces a policy.
func (h *Handler) CreatePolicy(w http.ResponseWriter, r *http.Request) {
	var req CreatePolicyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	// Validate by parsing
	policy, err := h.PolicyFactory.FromJSON(req.Config)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid policy configuration", err)
		return
	}

	if err := h.savePolicy(r.Context(), policy); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create policy", err)
		return
	}

	record, err := h.Store.GetPolicy(r.Context(), policy.ID)
	if err != nil {
		writeDomainError(w, "Failed to reload policy", err)
		return
	}

	h.log.Info().Str("policy_id", policy.ID).Int("version", record.Version).Msg("Policy saved")
	writeJSON(w, http.StatusCreated, h.toPolicyDTO(*record))
}

// GetPolicy returns a single policy.
func (h *Handler) GetPolicy(w http.ResponseWriter, r *http.Request) {
	record, err := h.Store.GetPolicy(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "Failed to get policy", err)
		return
	}
	writeJSON(w, http.StatusOK, h.toPolicyDTO(*record))
}

// DeletePolicy removes a policy. The default policy cannot be deleted.
func (h *Handler) DeletePolicy(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if h.isDefault(id) {
		writeError(w, http.StatusConflict, "Cannot delete the default policy", nil)
		return
	}

	if err := h.Store.DeletePolicy(r.Context(), id); err != nil {
		writeDomainError(w, "Failed to delete policy", err)
		return
	}

	h.mu.Lock()
	delete(h.policies, id)
	h.mu.Unlock()

	h.log.Info().Str("policy_id", id).Msg("Policy deleted")
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) toPolicyDTO(p sqlite.PolicyRecord) PolicyDTO {
	var config factory.PolicyJSON
	json.Unmarshal([]byte(p.ConfigJSON), &config)

	return PolicyDTO{
		ID:        p.ID,
		Name:      p.Name,
		Config:    config,
		Version:   p.Version,
		Default:   h.isDefault(p.ID),
		CreatedAt: formatInstant(p.CreatedAt),
		UpdatedAt: formatInstant(p.UpdatedAt),
	}
}

// =============================================================================
// ADMIN HANDLERS
// =============================================================================

// ResetDatabase clears all data and reinstalls the default policy.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	h.mu.RLock()
	def := h.policies[h.defaultPolicyID]
	h.mu.RUnlock()

	if err := h.Store.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}

	// Clear caches
	h.mu.Lock()
	h.policies = make(map[string]*refund.Policy)
	h.mu.Unlock()

	if def != nil {
		if err := h.InstallPolicy(ctx, def); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to reinstall default policy", err)
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError picks the status from the error's kind.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case generic.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case generic.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	case errors.Is(err, context.Canceled):
		writeError(w, http.StatusServiceUnavailable, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}
