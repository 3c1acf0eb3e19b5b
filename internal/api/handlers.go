package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"dicekit/internal/dice"
	"dicekit/internal/fair"
	"dicekit/internal/rng"
	"dicekit/internal/store"
)

// handleRoll evaluates a notation against a live source and persists the roll
func (s *Server) handleRoll(w http.ResponseWriter, r *http.Request) {
	var req RollRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeValidationError(w, r, fmt.Errorf("invalid JSON format"))
		return
	}
	if err := ValidateRollRequest(&req); err != nil {
		s.writeValidationError(w, r, err)
		return
	}

	spec, err := dice.Parse(req.Notation, s.cfg)
	if err != nil {
		s.writeNotationError(w, r, req.Notation, err)
		return
	}

	var src dice.Source
	seeded := req.Seed != nil
	if seeded {
		src = rng.Seeded(*req.Seed)
	} else {
		src = rng.Crypto()
	}

	outcome := spec.Eval(src)

	roll := &store.Roll{
		Notation: spec.Code(),
		Kind:     string(spec.Kind()),
		Result:   outcome.Result,
		Detail:   outcome.Detail,
	}
	if err := s.db.SaveRoll(r.Context(), roll); err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	requestID := middleware.GetReqID(r.Context())
	s.security.LogRollOperation(requestID, roll.Notation, roll.Kind, seeded, outcome.Result)

	s.writeJSON(w, http.StatusOK, RollResponse{
		ID:            roll.ID,
		Notation:      roll.Notation,
		Kind:          roll.Kind,
		Result:        outcome.Result,
		Detail:        outcome.Detail,
		EngineVersion: EngineVersion,
	})
}

// handleVerify replays a single nonce deterministically
func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req VerifyRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeValidationError(w, r, fmt.Errorf("invalid JSON format"))
		return
	}
	if err := ValidateVerifyRequest(&req); err != nil {
		s.writeValidationError(w, r, err)
		return
	}

	spec, err := dice.Parse(req.Notation, s.cfg)
	if err != nil {
		s.writeNotationError(w, r, req.Notation, err)
		return
	}

	requestID := middleware.GetReqID(r.Context())
	s.security.LogVerifyOperation(requestID, spec.Code(), req.ServerSeed, req.ClientSeed, req.Nonce)

	outcome := spec.Eval(fair.New(req.ServerSeed, req.ClientSeed, req.Nonce))

	s.logger.Printf(
		"verify_completed notation=%s nonce=%d result=%d",
		spec.Code(), req.Nonce, outcome.Result,
	)

	s.writeJSON(w, http.StatusOK, VerifyResponse{
		Nonce:         req.Nonce,
		Kind:          string(spec.Kind()),
		Result:        outcome.Result,
		Detail:        outcome.Detail,
		EngineVersion: EngineVersion,
		Echo:          req,
	})
}

// handleScan runs a nonce-range scan and persists the run with its hits
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	var req ScanRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeValidationError(w, r, fmt.Errorf("invalid JSON format"))
		return
	}
	if err := ValidateScanRequest(&req); err != nil {
		s.writeValidationError(w, r, err)
		return
	}

	// Set default timeout if not specified
	if req.TimeoutMs == 0 {
		req.TimeoutMs = 60000 // 60 seconds default
	}

	requestID := middleware.GetReqID(r.Context())
	s.security.LogScanOperation(requestID, req.Notation, req.ServerSeed, req.ClientSeed,
		req.NonceStart, req.NonceEnd, req.TargetOp, req.TargetVal, req.Limit, req.TimeoutMs)

	result, err := s.scanner.Scan(r.Context(), convertToScanRequest(&req), s.cfg)
	if err != nil {
		s.writeScanError(w, r, req, err)
		return
	}

	run := &store.Run{
		Notation:       req.Notation,
		ServerSeed:     req.ServerSeed,
		ClientSeed:     req.ClientSeed,
		NonceStart:     req.NonceStart,
		NonceEnd:       req.NonceEnd,
		TargetOp:       req.TargetOp,
		TargetVal:      req.TargetVal,
		TargetVal2:     req.TargetVal2,
		HitLimit:       req.Limit,
		TimedOut:       result.Summary.TimedOut,
		HitCount:       result.Summary.HitsFound,
		TotalEvaluated: result.Summary.TotalEvaluated,
		MinResult:      result.Summary.MinResult,
		MaxResult:      result.Summary.MaxResult,
		MeanResult:     result.Summary.MeanResult.String(),
		HitRate:        result.Summary.HitRate.String(),
		EngineVersion:  EngineVersion,
	}
	if err := s.db.SaveRun(r.Context(), run); err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	storeHits := make([]store.Hit, len(result.Hits))
	for i, hit := range result.Hits {
		storeHits[i] = store.Hit{Nonce: hit.Nonce, Result: hit.Result, Detail: hit.Detail}
	}
	if err := s.db.SaveHits(r.Context(), run.ID, storeHits); err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	s.logger.Printf(
		"scan_completed run_id=%s hits_found=%d total_evaluated=%d timed_out=%t",
		run.ID, result.Summary.HitsFound, result.Summary.TotalEvaluated, result.Summary.TimedOut,
	)

	s.writeJSON(w, http.StatusOK, ScanResponse{
		RunID:         run.ID,
		Hits:          result.Hits,
		Summary:       result.Summary,
		EngineVersion: EngineVersion,
		Echo:          req,
	})
}

// handleVariants returns the supported notation grammars
func (s *Server) handleVariants(w http.ResponseWriter, r *http.Request) {
	variants := dice.Variants()

	s.logger.Printf("variants_request total_variants=%d", len(variants))

	s.writeJSON(w, http.StatusOK, VariantsResponse{
		Variants:      variants,
		EngineVersion: EngineVersion,
	})
}

// handleVersion returns build version information
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, GetVersionInfo())
}

// handleListRolls returns persisted rolls, most recent first
func (s *Server) handleListRolls(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := parsePagination(r, 50, 500)
	if err != nil {
		s.writeValidationError(w, r, err)
		return
	}

	rolls, err := s.db.ListRolls(r.Context(), limit, offset)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	if rolls == nil {
		rolls = []store.Roll{}
	}

	s.writeJSON(w, http.StatusOK, RollsResponse{
		Rolls:         rolls,
		EngineVersion: EngineVersion,
	})
}

// handleGetRun returns one persisted scan run
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	run, err := s.db.GetRun(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, RunResponse{
		Run:           run,
		EngineVersion: EngineVersion,
	})
}

// handleGetRunHits returns the persisted hits of a run in nonce order
func (s *Server) handleGetRunHits(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if _, err := s.db.GetRun(r.Context(), id); err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	limit, offset, err := parsePagination(r, 100, 1000)
	if err != nil {
		s.writeValidationError(w, r, err)
		return
	}

	hits, err := s.db.GetHits(r.Context(), id, limit, offset)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	if hits == nil {
		hits = []store.Hit{}
	}

	s.writeJSON(w, http.StatusOK, RunHitsResponse{
		RunID:         id,
		Hits:          hits,
		EngineVersion: EngineVersion,
	})
}

// handleSeedHash returns the SHA256 commitment of a server seed
func (s *Server) handleSeedHash(w http.ResponseWriter, r *http.Request) {
	var req SeedHashRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeValidationError(w, r, fmt.Errorf("invalid JSON format"))
		return
	}
	if err := ValidateSeedHashRequest(&req); err != nil {
		s.writeValidationError(w, r, err)
		return
	}

	hash := fair.HashSeed(req.ServerSeed)

	requestID := middleware.GetReqID(r.Context())
	s.security.LogSeedHashOperation(requestID, req.ServerSeed, hash)

	s.writeJSON(w, http.StatusOK, SeedHashResponse{
		Hash:          hash,
		EngineVersion: EngineVersion,
		Echo:          req,
	})
}
