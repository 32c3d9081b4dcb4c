package models

import (
	"testing"
	"time"
)

func TestSessionAt(t *testing.T) {
	cases := []struct {
		hour int
		want TradingSession
	}{
		{0, SessionSydney},
		{2, SessionAsian},
		{6, SessionAsian},
		{7, SessionLondon},
		{11, SessionLondon},
		{12, SessionOverlap},
		{15, SessionOverlap},
		{16, SessionNewYork},
		{20, SessionNewYork},
		{21, SessionRollover},
		{22, SessionSydney},
		{23, SessionSydney},
	}
	for _, tc := range cases {
		at := time.Date(2026, 3, 4, tc.hour, 30, 0, 0, time.UTC)
		if got := SessionAt(at); got != tc.want {
			t.Fatalf("SessionAt(%02d:30) = %s, want %s", tc.hour, got, tc.want)
		}
	}
}

func TestSessionAtConvertsToUTC(t *testing.T) {
	est := time.FixedZone("EST", -5*3600)
	// 16:00 EST is 21:00 UTC, inside the rollover window.
	at := time.Date(2026, 3, 4, 16, 0, 0, 0, est)
	if got := SessionAt(at); got != SessionRollover {
		t.Fatalf("expected rollover, got %s", got)
	}
}

func TestFamilyOf(t *testing.T) {
	cases := []struct {
		label    RegimeLabel
		dominant Direction
		want     RegimeFamily
	}{
		{RegimeExpansion, DirectionLong, FamilyBullish},
		{RegimeMomentum, DirectionLong, FamilyBullish},
		{RegimeMomentum, DirectionShort, FamilyNeutral},
		{RegimeBreakdown, DirectionShort, FamilyBearish},
		{RegimeRiskOff, DirectionShort, FamilyBearish},
		{RegimeBreakdown, DirectionLong, FamilyNeutral},
		{RegimeCompression, DirectionLong, FamilyNeutral},
		{RegimeExhaustion, DirectionShort, FamilyNeutral},
		{RegimeFlat, DirectionNeutral, FamilyNeutral},
	}
	for _, tc := range cases {
		if got := FamilyOf(tc.label, tc.dominant); got != tc.want {
			t.Fatalf("FamilyOf(%s, %s) = %s, want %s", tc.label, tc.dominant, got, tc.want)
		}
	}
}

func TestPipSize(t *testing.T) {
	if PipSize("USD_JPY") != 0.01 {
		t.Fatalf("JPY pairs use 0.01 pips")
	}
	if PipSize("EUR_USD") != 0.0001 {
		t.Fatalf("non-JPY pairs use 0.0001 pips")
	}
}

func TestTickSpreadPips(t *testing.T) {
	tick := Tick{Pair: "EUR_USD", Bid: 1.08000, Ask: 1.08012}
	got := tick.SpreadPips()
	if got < 1.19 || got > 1.21 {
		t.Fatalf("expected ~1.2 pips, got %.3f", got)
	}
}

func TestEnvironmentSignature(t *testing.T) {
	sig := EnvironmentSignature("EUR_USD", SessionLondon, RegimeMomentum, DirectionLong, "momentum_rider")
	want := "EUR_USD|london|momentum|LONG|momentum_rider"
	if sig != want {
		t.Fatalf("signature %q, want %q", sig, want)
	}
}
