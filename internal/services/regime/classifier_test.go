package regime

import (
	"testing"
	"time"

	"github.com/davidjameshieb-sketch/quantlabs-sub010/internal/domain/models"
)

func barAt(i int, open, close, high, low float64) models.Candle {
	return models.Candle{
		Time:  time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC).Add(time.Duration(i) * time.Minute),
		Pair:  "EUR_USD",
		Open:  open,
		Close: close,
		High:  high,
		Low:   low,
	}
}

// steadyUptrend builds a clean linear climb: every bar closes higher
// with constant range.
func steadyUptrend(n int) []models.Candle {
	bars := make([]models.Candle, n)
	price := 1.0
	for i := range bars {
		open := price
		close := price + 0.0010
		bars[i] = barAt(i, open, close, close+0.0005, open-0.0005)
		price = close
	}
	return bars
}

// dampedChop oscillates around a flat level with shrinking amplitude:
// no direction, volatility bleeding out.
func dampedChop(n int) []models.Candle {
	bars := make([]models.Candle, n)
	for i := range bars {
		amp := 0.0020 * (1 - float64(i)/float64(n))
		offset := amp
		if i%2 == 1 {
			offset = -amp
		}
		close := 1.0 + offset
		open := 1.0 - offset
		high := close
		if open > high {
			high = open
		}
		low := close
		if open < low {
			low = open
		}
		bars[i] = barAt(i, open, close, high+amp/2, low-amp/2)
	}
	return bars
}

// fadingUptrend climbs steadily for 100 bars, then keeps climbing with
// per-bar gains shrinking toward 0.2 pips: momentum fades but every bar
// still prints a higher high and higher low.
func fadingUptrend(n int) []models.Candle {
	bars := make([]models.Candle, n)
	price := 1.0
	for i := range bars {
		gain := 0.0010
		if i >= 100 {
			frac := float64(i-100) / float64(n-1-100)
			gain = 0.0010 - 0.0008*frac
		}
		open := price
		close := price + gain
		bars[i] = barAt(i, open, close, close+0.0005, open-0.0005)
		price = close
	}
	return bars
}

// stalledUptrend is the same fading climb, but the final four bars
// drift slightly lower so the last swing no longer makes higher
// highs/lows.
func stalledUptrend(n int) []models.Candle {
	bars := make([]models.Candle, n)
	price := 1.0
	for i := range bars {
		if i >= n-4 {
			open := price
			close := price - 0.00005
			bars[i] = barAt(i, open, close, open+0.0001, close-0.0006)
			price = close
			continue
		}
		gain := 0.0010
		if i >= 100 {
			frac := float64(i-100) / float64(n-5-100)
			gain = 0.0010 - 0.0008*frac
		}
		open := price
		close := price + gain
		bars[i] = barAt(i, open, close, close+0.0005, open-0.0005)
		price = close
	}
	return bars
}

func TestClassifyRejectsShortWindow(t *testing.T) {
	c := New(Config{})
	_, err := c.Classify("EUR_USD", steadyUptrend(MinBars-1))
	if err == nil {
		t.Fatalf("expected error on short window")
	}
}

func TestClassifyUptrendIsBullish(t *testing.T) {
	c := New(Config{})
	snap, err := c.Classify("EUR_USD", steadyUptrend(120))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.DominantDirection != models.DirectionLong {
		t.Fatalf("expected LONG dominant, got %s", snap.DominantDirection)
	}
	if snap.Label != models.RegimeMomentum && snap.Label != models.RegimeExpansion {
		t.Fatalf("steady climb should read as trend continuation, got %s", snap.Label)
	}
	if snap.FamilyLabel != models.FamilyBullish {
		t.Fatalf("expected bullish family, got %s", snap.FamilyLabel)
	}
	if snap.DirectionalPersistence < 65 {
		t.Fatalf("persistence should be high, got %.1f", snap.DirectionalPersistence)
	}
}

func TestClassifyStableTrendIsConfirmed(t *testing.T) {
	c := New(Config{})
	snap, err := c.Classify("EUR_USD", steadyUptrend(120))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !snap.RegimeConfirmed {
		t.Fatalf("a regime holding across the full lookback must confirm, hold=%d", snap.HoldBars)
	}
	if snap.HoldBars != 5 || snap.FamilyHoldBars != 5 {
		t.Fatalf("expected full 5-bar hold, got %d/%d", snap.HoldBars, snap.FamilyHoldBars)
	}
	if snap.RegimeDiverging || snap.RegimeEarlyWarning {
		t.Fatalf("stable trend must not diverge: %+v", snap)
	}

	// Once confirmed, a persisting regime must stay confirmed on every
	// later bar of the same trend.
	bars := steadyUptrend(120)
	confirmedAt := 0
	for n := 65; n <= len(bars); n++ {
		snap, err := c.Classify("EUR_USD", bars[:n])
		if err != nil {
			t.Fatalf("prefix %d: unexpected error: %v", n, err)
		}
		if snap.RegimeConfirmed {
			if confirmedAt == 0 {
				confirmedAt = n
			}
		} else if confirmedAt != 0 {
			t.Fatalf("confirmation flickered off at bar %d after confirming at bar %d", n, confirmedAt)
		}
	}
	if confirmedAt == 0 {
		t.Fatalf("steady trend never confirmed across 120 bars")
	}
}

func TestClassifyFadingTrendStaysContinuation(t *testing.T) {
	c := New(Config{})
	snap, err := c.Classify("EUR_USD", fadingUptrend(120))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.DominantDirection != models.DirectionLong {
		t.Fatalf("expected LONG dominant, got %s", snap.DominantDirection)
	}
	if snap.Label == models.RegimeExhaustion {
		t.Fatalf("fading momentum with intact swing structure must not read exhaustion")
	}
	if snap.Label != models.RegimeMomentum && snap.Label != models.RegimeExpansion {
		t.Fatalf("expected continuation label, got %s", snap.Label)
	}
	if snap.DirectionalPersistence < 65 {
		t.Fatalf("persistence should stay high through the fade, got %.1f", snap.DirectionalPersistence)
	}
}

func TestClassifyBrokenStructureIsExhaustion(t *testing.T) {
	c := New(Config{})
	snap, err := c.Classify("EUR_USD", stalledUptrend(120))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.DominantDirection != models.DirectionLong {
		t.Fatalf("a four-bar dip must not flip dominance, got %s", snap.DominantDirection)
	}
	if snap.Label != models.RegimeExhaustion {
		t.Fatalf("fading momentum plus broken structure must read exhaustion, got %s", snap.Label)
	}
	if snap.DirectionalPersistence < 65 {
		t.Fatalf("exhaustion requires persistent trend context, got %.1f", snap.DirectionalPersistence)
	}
}

func TestClassifyDampedChopIsQuiet(t *testing.T) {
	c := New(Config{})
	snap, err := c.Classify("EUR_USD", dampedChop(120))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.Label != models.RegimeCompression && snap.Label != models.RegimeFlat {
		t.Fatalf("damped chop should read quiet, got %s", snap.Label)
	}
	if snap.FamilyLabel != models.FamilyNeutral {
		t.Fatalf("quiet regime must be neutral family, got %s", snap.FamilyLabel)
	}
	if snap.DirectionalPersistence > 45 {
		t.Fatalf("chop must not score persistent, got %.1f", snap.DirectionalPersistence)
	}
}

func TestMapRatioScoreBands(t *testing.T) {
	cases := []struct {
		ratio float64
		lo    float64
		hi    float64
	}{
		{0.0, 0, 0},
		{0.35, 17, 18},
		{1.0, 50, 50},
		{1.3, 65, 65},
		{2.5, 100, 100},
	}
	for _, tc := range cases {
		got := mapRatioScore(tc.ratio)
		if got < tc.lo || got > tc.hi {
			t.Fatalf("mapRatioScore(%.2f) = %.2f, want [%.0f,%.0f]", tc.ratio, got, tc.lo, tc.hi)
		}
	}
}

func TestStrengthBounded(t *testing.T) {
	a := axisValues{persScore: 100, volScore: 100}
	if s := a.strength(); s != 1 {
		t.Fatalf("expected strength clamp at 1, got %.2f", s)
	}
	b := axisValues{}
	if s := b.strength(); s != 0 {
		t.Fatalf("expected zero strength, got %.2f", s)
	}
}
