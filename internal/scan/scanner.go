// Package scan searches nonce ranges for dice outcomes matching a target.
package scan

import (
	"context"
	"math"
	"runtime"
	"sort"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"dicekit/internal/dice"
	"dicekit/internal/fair"
)

const engineVersion = "1.0.0"

// TargetOp represents comparison operations for scanning
type TargetOp string

const (
	OpEqual        TargetOp = "eq"
	OpGreater      TargetOp = "gt"
	OpGreaterEqual TargetOp = "ge"
	OpLess         TargetOp = "lt"
	OpLessEqual    TargetOp = "le"
	OpBetween      TargetOp = "between"
	OpOutside      TargetOp = "outside"
)

func (op TargetOp) valid() bool {
	switch op {
	case OpEqual, OpGreater, OpGreaterEqual, OpLess, OpLessEqual, OpBetween, OpOutside:
		return true
	default:
		return false
	}
}

// Request represents a scan operation request
type Request struct {
	Notation   string   `json:"notation"`
	ServerSeed string   `json:"server_seed"`
	ClientSeed string   `json:"client_seed"`
	NonceStart uint64   `json:"nonce_start"`
	NonceEnd   uint64   `json:"nonce_end"`
	TargetOp   TargetOp `json:"target_op"`
	TargetVal  int64    `json:"target_val"`
	TargetVal2 int64    `json:"target_val2,omitempty"` // for "between" and "outside"
	Limit      int      `json:"limit,omitempty"`
	TimeoutMs  int      `json:"timeout_ms,omitempty"`
}

// Hit represents a single matching nonce
type Hit struct {
	Nonce  uint64 `json:"nonce"`
	Result int64  `json:"result"`
	Detail string `json:"detail"`
}

// Summary contains aggregate statistics over the collected hits
type Summary struct {
	TotalEvaluated uint64          `json:"total_evaluated"`
	HitsFound      int             `json:"hits_found"`
	MinResult      int64           `json:"min_result"`
	MaxResult      int64           `json:"max_result"`
	MeanResult     decimal.Decimal `json:"mean_result"`
	HitRate        decimal.Decimal `json:"hit_rate"`
	TimedOut       bool            `json:"timed_out,omitempty"`
}

// Result contains the complete scan results
type Result struct {
	Hits          []Hit   `json:"hits"`
	Summary       Summary `json:"summary"`
	EngineVersion string  `json:"engine_version"`
	Echo          Request `json:"echo"`
}

// job is a batch of nonces handed to one worker at a time.
type job struct {
	nonceStart uint64
	nonceEnd   uint64
}

// Scanner performs parallel scanning across nonce ranges
type Scanner struct {
	workerCount int
}

// targetEvaluator decides whether an outcome matches the requested target.
// Dice results are exact integers, so comparisons carry no tolerance.
type targetEvaluator struct {
	op   TargetOp
	val1 int64
	val2 int64 // for "between" and "outside"
}

func (te *targetEvaluator) matches(result int64) bool {
	switch te.op {
	case OpEqual:
		return result == te.val1
	case OpGreater:
		return result > te.val1
	case OpGreaterEqual:
		return result >= te.val1
	case OpLess:
		return result < te.val1
	case OpLessEqual:
		return result <= te.val1
	case OpBetween:
		return result >= te.val1 && result <= te.val2
	case OpOutside:
		return result < te.val1 || result > te.val2
	default:
		return false
	}
}

// NewScanner creates a new scanner sized to the available CPUs
func NewScanner() *Scanner {
	return &Scanner{workerCount: runtime.GOMAXPROCS(0)}
}

// Scan evaluates every nonce in the requested range and collects matches.
// The notation is parsed once; the resulting spec is shared by all workers,
// each of which derives an independent provably-fair stream per nonce.
func (s *Scanner) Scan(ctx context.Context, req Request, cfg dice.Config) (*Result, error) {
	if req.NonceEnd < req.NonceStart {
		return nil, ErrInvalidRange
	}
	if !req.TargetOp.valid() {
		return nil, ErrUnknownOp
	}

	spec, err := dice.Parse(req.Notation, cfg)
	if err != nil {
		return nil, err
	}

	// Setup timeout context if specified
	if req.TimeoutMs > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(req.TimeoutMs)*time.Millisecond)
		defer cancel()
	}

	evaluator := &targetEvaluator{op: req.TargetOp, val1: req.TargetVal, val2: req.TargetVal2}

	// Both channels are buffered so dispatch and collection rarely block the workers.
	jobs := make(chan job, s.workerCount*2)
	hits := make(chan Hit, 1000)

	var evaluated atomic.Uint64

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return generateJobs(gctx, jobs, req.NonceStart, req.NonceEnd)
	})

	for i := 0; i < s.workerCount; i++ {
		g.Go(func() error {
			w := &worker{
				spec:      spec,
				server:    req.ServerSeed,
				client:    req.ClientSeed,
				evaluator: evaluator,
				hits:      hits,
				evaluated: &evaluated,
			}
			return w.run(gctx, jobs)
		})
	}

	// Close the hit channel once the producer side has fully drained.
	// Workers report nil on cancellation, so the group error is always nil.
	go func() {
		_ = g.Wait()
		close(hits)
	}()

	collector := &resultCollector{hits: hits, limit: req.Limit}
	collected, timedOut := collector.collect(ctx)

	total := evaluated.Load()
	if timedOut && total == 0 {
		return nil, ErrTimeout
	}

	result := &Result{
		Hits:          collected,
		Summary:       buildSummary(collected, total, timedOut),
		EngineVersion: engineVersion,
		Echo:          req,
	}
	return result, nil
}

// generateJobs creates job batches for optimal throughput
func generateJobs(ctx context.Context, jobs chan<- job, start, end uint64) error {
	defer close(jobs)

	const batchSize = 8192 // nonces per batch, balances dispatch overhead against latency

	for current := start; current <= end; {
		batchEnd := current + batchSize - 1
		if batchEnd > end || batchEnd < current {
			batchEnd = end
		}

		select {
		case jobs <- job{nonceStart: current, nonceEnd: batchEnd}:
			if batchEnd == math.MaxUint64 {
				return nil
			}
			current = batchEnd + 1
		case <-ctx.Done():
			return nil
		}
	}
	return nil
}

// worker evaluates jobs and streams matching nonces to the hit channel
type worker struct {
	spec      dice.Spec
	server    string
	client    string
	evaluator *targetEvaluator
	hits      chan<- Hit
	evaluated *atomic.Uint64
}

func (w *worker) run(ctx context.Context, jobs <-chan job) error {
	for {
		select {
		case jb, ok := <-jobs:
			if !ok {
				return nil // Channel closed, worker should exit
			}
			if done := w.processJob(ctx, jb); done {
				return nil
			}
		case <-ctx.Done():
			return nil
		}
	}
}

// processJob evaluates a single batch of nonces. It reports true when the
// context expired mid-batch and the worker should stop.
func (w *worker) processJob(ctx context.Context, jb job) bool {
	for nonce := jb.nonceStart; ; nonce++ {
		select {
		case <-ctx.Done():
			return true
		default:
		}

		src := fair.New(w.server, w.client, nonce)
		outcome := w.spec.Eval(src)
		w.evaluated.Add(1)

		if w.evaluator.matches(outcome.Result) {
			hit := Hit{Nonce: nonce, Result: outcome.Result, Detail: outcome.Detail}
			select {
			case w.hits <- hit:
			case <-ctx.Done():
				return true
			}
		}

		if nonce == jb.nonceEnd {
			return false
		}
	}
}

// resultCollector aggregates hits from the workers
type resultCollector struct {
	hits  <-chan Hit
	limit int
}

// collect drains the hit channel until the workers close it. Hits beyond the
// limit are discarded rather than blocking the workers, and the survivors are
// returned in nonce order.
func (rc *resultCollector) collect(ctx context.Context) ([]Hit, bool) {
	initialCap := 1000
	if rc.limit > 0 && rc.limit < initialCap {
		initialCap = rc.limit
	}

	collected := make([]Hit, 0, initialCap)
	for hit := range rc.hits {
		if rc.limit > 0 && len(collected) >= rc.limit {
			continue // keep draining so the workers can finish
		}
		collected = append(collected, hit)
	}

	sort.Slice(collected, func(i, j int) bool { return collected[i].Nonce < collected[j].Nonce })

	return collected, ctx.Err() != nil
}

// buildSummary computes aggregate statistics over the collected hits
func buildSummary(hits []Hit, totalEvaluated uint64, timedOut bool) Summary {
	summary := Summary{
		TotalEvaluated: totalEvaluated,
		HitsFound:      len(hits),
		MeanResult:     decimal.Zero,
		HitRate:        decimal.Zero,
		TimedOut:       timedOut,
	}

	if totalEvaluated > 0 {
		summary.HitRate = decimal.NewFromInt(int64(len(hits))).Div(decimal.NewFromInt(int64(totalEvaluated)))
	}

	if len(hits) == 0 {
		return summary
	}

	min := hits[0].Result
	max := hits[0].Result
	sum := decimal.Zero

	for _, hit := range hits {
		if hit.Result < min {
			min = hit.Result
		}
		if hit.Result > max {
			max = hit.Result
		}
		sum = sum.Add(decimal.NewFromInt(hit.Result))
	}

	summary.MinResult = min
	summary.MaxResult = max
	summary.MeanResult = sum.Div(decimal.NewFromInt(int64(len(hits))))

	return summary
}
