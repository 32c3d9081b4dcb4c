package oanda

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/davidjameshieb-sketch/quantlabs-sub010/internal/domain/models"
	drepo "github.com/davidjameshieb-sketch/quantlabs-sub010/internal/domain/repository"
	"github.com/davidjameshieb-sketch/quantlabs-sub010/internal/service/cache"
	"github.com/davidjameshieb-sketch/quantlabs-sub010/internal/service/ratelimit"
	xhttp "github.com/davidjameshieb-sketch/quantlabs-sub010/pkg/http"
)

const (
	candleCacheTTL = 15 * time.Second
	restCapacity   = 5.0 // burst requests per instrument
	restRefillRate = 2.0 // requests per second per instrument
)

// Candles implements CandleSource over the broker's REST candles
// endpoint with a short read-through cache and per-instrument rate
// limiting.
type Candles struct {
	baseURL  string
	apiToken string
	client   *xhttp.Client
	cache    cache.BytesCache
	limiter  *ratelimit.Limiter
}

// NewCandles creates the REST candle source.
func NewCandles(baseURL, apiToken string, timeout time.Duration, c cache.BytesCache) drepo.CandleSource {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Candles{
		baseURL:  baseURL,
		apiToken: apiToken,
		client:   xhttp.NewClient(xhttp.WithTimeout(timeout)),
		cache:    c,
		limiter:  ratelimit.New(),
	}
}

type candlesResponse struct {
	Instrument  string `json:"instrument"`
	Granularity string `json:"granularity"`
	Candles     []struct {
		Time     string  `json:"time"`
		Volume   float64 `json:"volume"`
		Complete bool    `json:"complete"`
		Mid      struct {
			O string `json:"o"`
			H string `json:"h"`
			L string `json:"l"`
			C string `json:"c"`
		} `json:"mid"`
	} `json:"candles"`
}

// GetCandles fetches up to count most recent bars, oldest first.
func (c *Candles) GetCandles(ctx context.Context, pair string, granularity drepo.Granularity, count int) ([]models.Candle, error) {
	if count <= 0 {
		count = 100
	}
	key := fmt.Sprintf("candles:%s:%s:%d", pair, granularity, count)
	if c.cache != nil {
		if b, ok, err := c.cache.GetBytes(key); err == nil && ok {
			var cached []models.Candle
			if err := json.Unmarshal(b, &cached); err == nil {
				return cached, nil
			}
		}
	}

	if !c.limiter.Allow("candles:"+pair, restCapacity, restRefillRate) {
		return nil, fmt.Errorf("candles rate limited for %s", pair)
	}

	instrument := toInstrument(pair)
	var resp candlesResponse
	err := c.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    fmt.Sprintf("%s/v3/instruments/%s/candles", c.baseURL, instrument),
		Headers: map[string]string{
			"Authorization": "Bearer " + c.apiToken,
		},
		QueryParams: map[string][]string{
			"granularity": {string(granularity)},
			"count":       {strconv.Itoa(count)},
			"price":       {"M"},
		},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("fetch candles %s: %w", pair, err)
	}

	bars := make([]models.Candle, 0, len(resp.Candles))
	for _, rc := range resp.Candles {
		t, err := time.Parse(time.RFC3339Nano, rc.Time)
		if err != nil {
			continue
		}
		o, err1 := strconv.ParseFloat(rc.Mid.O, 64)
		h, err2 := strconv.ParseFloat(rc.Mid.H, 64)
		l, err3 := strconv.ParseFloat(rc.Mid.L, 64)
		cl, err4 := strconv.ParseFloat(rc.Mid.C, 64)
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
			continue
		}
		bars = append(bars, models.Candle{
			Time:     t,
			Pair:     pair,
			Open:     o,
			High:     h,
			Low:      l,
			Close:    cl,
			Volume:   rc.Volume,
			Complete: rc.Complete,
		})
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("no candles for %s", pair)
	}

	if c.cache != nil {
		if b, err := json.Marshal(bars); err == nil {
			_ = c.cache.SetBytes(key, b, candleCacheTTL)
		}
	}
	return bars, nil
}

// toInstrument converts EURUSD to the gateway's EUR_USD form.
func toInstrument(pair string) string {
	if len(pair) == 6 {
		return pair[:3] + "_" + pair[3:]
	}
	return pair
}
