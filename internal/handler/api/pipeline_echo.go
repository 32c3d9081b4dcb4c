package api

import (
	"fmt"
	"time"

	models "github.com/davidjameshieb-sketch/quantlabs-sub010/internal/domain/models"
	"github.com/davidjameshieb-sketch/quantlabs-sub010/internal/services/allocation"
	"github.com/davidjameshieb-sketch/quantlabs-sub010/internal/usecase"
	xhttp "github.com/davidjameshieb-sketch/quantlabs-sub010/pkg/http"
	xlogger "github.com/davidjameshieb-sketch/quantlabs-sub010/pkg/logger"
	"github.com/davidjameshieb-sketch/quantlabs-sub010/pkg/util"

	"github.com/labstack/echo/v4"
)

// PipelineEchoHandler exposes the evaluation pipeline, status, drift
// and risk-config endpoints over Echo.
type PipelineEchoHandler struct {
	logger   *xlogger.Logger
	pipeline *usecase.Pipeline
	status   *usecase.StatusService
	riskCfg  *allocation.DiscoveryRiskConfig
}

func NewPipelineEchoHandler(
	logger *xlogger.Logger,
	pipeline *usecase.Pipeline,
	status *usecase.StatusService,
	riskCfg *allocation.DiscoveryRiskConfig,
) *PipelineEchoHandler {
	return &PipelineEchoHandler{
		logger:   logger,
		pipeline: pipeline,
		status:   status,
		riskCfg:  riskCfg,
	}
}

func (h *PipelineEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.POST("/evaluate", h.Evaluate)
	g.GET("/status", h.Status)
	g.GET("/decisions", h.Decisions)
	g.GET("/regime", h.Regime)
	g.GET("/drift", h.Drift)
	g.GET("/drift/memory", h.DriftMemory)
	g.GET("/drift/reversions", h.Reversions)
	g.GET("/config/risk", h.RiskConfig)
	g.PUT("/config/risk", h.UpdateRiskConfig)
}

func (h *PipelineEchoHandler) Evaluate(c echo.Context) error {
	req := &models.EvaluateRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	proposal := models.TradeProposal{
		ID:        fmt.Sprintf("%s-%s-%d", req.Pair, req.AgentID, time.Now().UnixNano()),
		Pair:      req.Pair,
		Intent:    models.Direction(req.Intent),
		AgentID:   req.AgentID,
		Timeframe: req.Timeframe,
		CreatedAt: time.Now(),
	}

	decision, err := h.pipeline.Evaluate(c.Request().Context(), proposal)
	if err != nil {
		h.logger.Error("evaluate usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("evaluate failed", err))
	}
	return xhttp.SuccessResponse(c, decision)
}

func (h *PipelineEchoHandler) Status(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.status.Status())
}

func (h *PipelineEchoHandler) Decisions(c echo.Context) error {
	req := &models.DecisionsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	since := util.ParseTimeDefault(req.Since, time.Time{})

	decisions := h.pipeline.Decisions(req.Limit)
	if req.Pair != "" || !since.IsZero() {
		filtered := decisions[:0]
		for _, d := range decisions {
			if req.Pair != "" && d.Proposal.Pair != req.Pair {
				continue
			}
			if !since.IsZero() && d.EvaluatedAt.Before(since) {
				continue
			}
			filtered = append(filtered, d)
		}
		decisions = filtered
	}
	return xhttp.ListResponse(c, decisions, int64(len(decisions)))
}

func (h *PipelineEchoHandler) Regime(c echo.Context) error {
	req := &models.RegimeStatusRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	regimes := h.pipeline.Regimes()
	snap, ok := regimes[req.Pair]
	if !ok {
		return xhttp.NotFoundResponse(c, map[string]string{"pair": "no regime snapshot yet"})
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=15")
	return xhttp.SuccessResponse(c, snap)
}

func (h *PipelineEchoHandler) Drift(c echo.Context) error {
	scan := h.status.LastScan()
	if scan == nil {
		fresh := h.status.RunDriftScan(c.Request().Context())
		scan = &fresh
	}
	return xhttp.SuccessResponse(c, scan)
}

func (h *PipelineEchoHandler) DriftMemory(c echo.Context) error {
	entries := h.status.EdgeMemory()
	return xhttp.ListResponse(c, entries, int64(len(entries)))
}

func (h *PipelineEchoHandler) Reversions(c echo.Context) error {
	revs := h.status.Reversions()
	return xhttp.ListResponse(c, revs, int64(len(revs)))
}

func (h *PipelineEchoHandler) RiskConfig(c echo.Context) error {
	return xhttp.SuccessResponse(c, stateView(h.riskCfg))
}

func (h *PipelineEchoHandler) UpdateRiskConfig(c echo.Context) error {
	req := &models.UpdateRiskConfigRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	if req.Enabled != nil {
		h.riskCfg.SetEnabled(*req.Enabled)
	}
	if req.EdgeBoostMultiplier != nil {
		h.riskCfg.SetEdgeBoostMultiplier(*req.EdgeBoostMultiplier)
	}
	if req.BaselineReductionMultiplier != nil {
		h.riskCfg.SetBaselineReductionMultiplier(*req.BaselineReductionMultiplier)
	}
	if req.SpreadBlockThreshold != nil {
		h.riskCfg.SetSpreadBlockThreshold(*req.SpreadBlockThreshold)
	}
	if req.IgnitionMinComposite != nil {
		h.riskCfg.SetIgnitionMinComposite(*req.IgnitionMinComposite)
	}

	h.logger.Info("risk config updated",
		xlogger.Bool("enabled", h.riskCfg.Enabled()),
		xlogger.Any("edge_boost", h.riskCfg.EdgeBoostMultiplier()),
		xlogger.Any("baseline_reduction", h.riskCfg.BaselineReductionMultiplier()),
	)
	return xhttp.SuccessResponse(c, stateView(h.riskCfg))
}

func stateView(cfg *allocation.DiscoveryRiskConfig) models.DiscoveryRiskState {
	return models.DiscoveryRiskState{
		Enabled:                     cfg.Enabled(),
		EdgeBoostMultiplier:         cfg.EdgeBoostMultiplier(),
		BaselineReductionMultiplier: cfg.BaselineReductionMultiplier(),
		SpreadBlockThreshold:        cfg.SpreadBlockThreshold(),
		IgnitionMinComposite:        cfg.IgnitionMinComposite(),
	}
}
