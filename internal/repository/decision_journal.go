package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/davidjameshieb-sketch/quantlabs-sub010/internal/domain/models"
	domrepo "github.com/davidjameshieb-sketch/quantlabs-sub010/internal/domain/repository"
	"github.com/davidjameshieb-sketch/quantlabs-sub010/pkg/clickhouse"
)

const (
	decisionsTable = "scalpgov_decisions"
	tradesTable    = "scalpgov_closed_trades"
)

var journalSchema = []string{
	`CREATE TABLE IF NOT EXISTS ` + decisionsTable + ` (
		ts DateTime64(3),
		proposal_id String,
		pair LowCardinality(String),
		agent_id LowCardinality(String),
		session LowCardinality(String),
		outcome LowCardinality(String),
		stage LowCardinality(String),
		direction LowCardinality(String),
		size_multiplier Float64,
		composite Float64,
		gate_failed String,
		regime LowCardinality(String),
		reasons String,
		elapsed_ms Float64
	) ENGINE = MergeTree()
	PARTITION BY toYYYYMM(ts)
	ORDER BY (pair, ts)`,
	`CREATE TABLE IF NOT EXISTS ` + tradesTable + ` (
		closed_at DateTime64(3),
		opened_at DateTime64(3),
		pair LowCardinality(String),
		agent_id LowCardinality(String),
		direction LowCardinality(String),
		regime LowCardinality(String),
		session LowCardinality(String),
		pips_gained Float64,
		slippage_pips Float64,
		fill_latency_ms Float64
	) ENGINE = MergeTree()
	PARTITION BY toYYYYMM(closed_at)
	ORDER BY (pair, closed_at)`,
}

// ClickHouseJournal implements DecisionJournal on ClickHouse.
type ClickHouseJournal struct {
	client *clickhouse.Client
	db     *sql.DB
}

// NewClickHouseJournal creates the decision journal.
func NewClickHouseJournal(client *clickhouse.Client) domrepo.DecisionJournal {
	return &ClickHouseJournal{client: client, db: client.DB()}
}

func (j *ClickHouseJournal) Init(ctx context.Context) error {
	return j.client.InitSchema(ctx, journalSchema)
}

func (j *ClickHouseJournal) AppendDecision(ctx context.Context, d *models.PipelineDecision) error {
	var (
		composite  float64
		gateFailed string
		regime     string
	)
	if d.Governance != nil {
		composite = d.Governance.Composite
		gateFailed = d.Governance.GateFailed
	}
	if d.Regime != nil {
		regime = string(d.Regime.Label)
	}
	q := fmt.Sprintf(`INSERT INTO %s
		(ts, proposal_id, pair, agent_id, session, outcome, stage, direction,
		 size_multiplier, composite, gate_failed, regime, reasons, elapsed_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, decisionsTable)
	_, err := j.db.ExecContext(ctx, q,
		d.EvaluatedAt,
		d.Proposal.ID,
		d.Proposal.Pair,
		d.Proposal.AgentID,
		string(d.Proposal.Session()),
		string(d.Outcome),
		d.Stage,
		string(d.Direction),
		d.SizeMultiplier,
		composite,
		gateFailed,
		regime,
		strings.Join(d.Reasons, "; "),
		float64(d.Elapsed.Microseconds())/1000,
	)
	if err != nil {
		return fmt.Errorf("insert decision: %w", err)
	}
	return nil
}

func (j *ClickHouseJournal) AppendClosedTrade(ctx context.Context, t *models.ClosedTrade) error {
	q := fmt.Sprintf(`INSERT INTO %s
		(closed_at, opened_at, pair, agent_id, direction, regime, session,
		 pips_gained, slippage_pips, fill_latency_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, tradesTable)
	_, err := j.db.ExecContext(ctx, q,
		t.ClosedAt,
		t.OpenedAt,
		t.Pair,
		t.AgentID,
		string(t.Direction),
		t.Regime,
		string(t.Session),
		t.PipsGained,
		t.SlippagePips,
		float64(t.FillLatency.Milliseconds()),
	)
	if err != nil {
		return fmt.Errorf("insert closed trade: %w", err)
	}
	return nil
}

func (j *ClickHouseJournal) RecentTrades(ctx context.Context, pair string, since time.Time, limit int) ([]models.ClosedTrade, error) {
	if limit <= 0 {
		limit = 100
	}
	q := fmt.Sprintf(`SELECT closed_at, opened_at, pair, agent_id, direction, regime, session,
		pips_gained, slippage_pips, fill_latency_ms
		FROM %s WHERE pair = ? AND closed_at >= ?
		ORDER BY closed_at ASC LIMIT ?`, tradesTable)
	rows, err := j.db.QueryContext(ctx, q, pair, since, limit)
	if err != nil {
		return nil, fmt.Errorf("query trades: %w", err)
	}
	defer rows.Close()

	var trades []models.ClosedTrade
	for rows.Next() {
		var (
			t         models.ClosedTrade
			direction string
			session   string
			latencyMs float64
		)
		if err := rows.Scan(&t.ClosedAt, &t.OpenedAt, &t.Pair, &t.AgentID,
			&direction, &t.Regime, &session, &t.PipsGained, &t.SlippagePips, &latencyMs); err != nil {
			return nil, err
		}
		t.Direction = models.Direction(direction)
		t.Session = models.TradingSession(session)
		t.FillLatency = time.Duration(latencyMs * float64(time.Millisecond))
		trades = append(trades, t)
	}
	return trades, rows.Err()
}

func (j *ClickHouseJournal) Health(ctx context.Context) error {
	return j.db.PingContext(ctx)
}

func (j *ClickHouseJournal) Close() error {
	return nil // client lifecycle managed by pkg
}
