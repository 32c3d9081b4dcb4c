package execution

import (
	"fmt"
	"math"
	"sync"

	"github.com/davidjameshieb-sketch/quantlabs-sub010/internal/domain/models"
	"github.com/davidjameshieb-sketch/quantlabs-sub010/pkg/util"
)

// spreadWindow bounds the rolling spread sample per pair.
const spreadWindow = 120

// Config holds the execution safety tunables.
type Config struct {
	SessionK          map[models.TradingSession]float64 `yaml:"session_k"`
	SpreadInstability float64                           `yaml:"spread_instability"` // spreadVol/meanSpread throttle bound
	SlippageEstPips   float64                           `yaml:"slippage_est_pips"`
	LatencyDriftPips  float64                           `yaml:"latency_drift_pips"`
}

// DefaultConfig returns the production execution safety configuration.
// K is the required expected-move-to-friction multiple; rollover and
// Asian sessions demand a wider margin.
func DefaultConfig() Config {
	return Config{
		SessionK: map[models.TradingSession]float64{
			models.SessionRollover: 4.0,
			models.SessionSydney:   3.5,
			models.SessionAsian:    3.5,
			models.SessionLondon:   2.5,
			models.SessionNewYork:  2.5,
			models.SessionOverlap:  2.25,
		},
		SpreadInstability: 0.35,
		SlippageEstPips:   0.3,
		LatencyDriftPips:  0.2,
	}
}

// riskyRegimes throttle rather than trade through.
var riskyRegimes = map[models.RegimeLabel]bool{
	models.RegimeTransition: true,
	models.RegimeExhaustion: true,
	models.RegimeIgnition:   true,
}

// Engine gates live orders on execution friction and tracks rolling
// execution telemetry for the protection monitor.
type Engine struct {
	cfg Config

	mu      sync.Mutex
	spreads map[string]*util.Ring[float64] // pips, per pair
	records *util.Ring[models.ExecutionRecord]
	status  models.ProtectionStatus
}

// NewEngine creates the execution safety engine.
func NewEngine(cfg Config) *Engine {
	if len(cfg.SessionK) == 0 {
		cfg.SessionK = DefaultConfig().SessionK
	}
	if cfg.SpreadInstability <= 0 {
		cfg.SpreadInstability = DefaultConfig().SpreadInstability
	}
	if cfg.SlippageEstPips <= 0 {
		cfg.SlippageEstPips = DefaultConfig().SlippageEstPips
	}
	if cfg.LatencyDriftPips <= 0 {
		cfg.LatencyDriftPips = DefaultConfig().LatencyDriftPips
	}
	return &Engine{
		cfg:     cfg,
		spreads: make(map[string]*util.Ring[float64]),
		records: util.NewRing[models.ExecutionRecord](200),
		status: models.ProtectionStatus{
			Level:             models.ProtectionNormal,
			DensityMultiplier: 1.0,
		},
	}
}

// ObserveSpread feeds a live spread observation into the rolling
// per-pair sample.
func (e *Engine) ObserveSpread(pair string, pips float64) {
	if pips < 0 || math.IsNaN(pips) {
		return
	}
	e.mu.Lock()
	ring, ok := e.spreads[pair]
	if !ok {
		ring = util.NewRing[float64](spreadWindow)
		e.spreads[pair] = ring
	}
	ring.Append(pips)
	e.mu.Unlock()
}

// FrictionBudget computes the current friction budget for a pair. With
// no spread telemetry a conservative default of 1.2 pips mean spread is
// assumed.
func (e *Engine) FrictionBudget(pair string) models.FrictionBudget {
	e.mu.Lock()
	defer e.mu.Unlock()
	mean, vol := 1.2, 0.3
	if ring, ok := e.spreads[pair]; ok && ring.Len() >= 10 {
		mean, vol = meanStd(ring.Items())
	}
	return models.FrictionBudget{
		MeanSpread:   mean,
		SpreadVol:    vol,
		SlippageEst:  e.cfg.SlippageEstPips,
		LatencyDrift: e.cfg.LatencyDriftPips,
	}
}

// RunPreTradeGate evaluates the friction/session/regime gate for a
// prospective order.
func (e *Engine) RunPreTradeGate(pair string, expectedMovePips float64, regime models.MarketRegimeSnapshot, session models.TradingSession) models.PreTradeGateResult {
	budget := e.FrictionBudget(pair)
	k, ok := e.cfg.SessionK[session]
	if !ok {
		k = 3.0
	}

	res := models.PreTradeGateResult{
		Pair:          pair,
		Session:       session,
		Budget:        budget,
		RequiredRatio: k,
	}

	total := budget.Total()
	if total <= 0 || expectedMovePips <= 0 {
		res.Result = models.GateReject
		res.Reasons = append(res.Reasons, "cannot compute friction ratio: missing inputs")
		return res
	}

	ratio := expectedMovePips / total
	res.FrictionScore = ratio

	if ratio < k {
		res.Result = models.GateReject
		res.Reasons = append(res.Reasons,
			fmt.Sprintf("expected move %.1f pips is only %.2fx friction %.1f pips (need %.2fx)",
				expectedMovePips, ratio, total, k))
		return res
	}

	if budget.MeanSpread > 0 && budget.SpreadVol/budget.MeanSpread > e.cfg.SpreadInstability {
		res.Result = models.GateThrottle
		res.Reasons = append(res.Reasons,
			fmt.Sprintf("spread unstable: vol/mean %.2f above %.2f",
				budget.SpreadVol/budget.MeanSpread, e.cfg.SpreadInstability))
		return res
	}
	if riskyRegimes[regime.Label] {
		res.Result = models.GateThrottle
		res.Reasons = append(res.Reasons, fmt.Sprintf("regime %s: unstable execution conditions", regime.Label))
		return res
	}

	res.Result = models.GatePass
	return res
}

func meanStd(xs []float64) (mean, std float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))
	var ss float64
	for _, x := range xs {
		d := x - mean
		ss += d * d
	}
	return mean, math.Sqrt(ss / float64(len(xs)))
}
