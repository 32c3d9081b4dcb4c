package repository

// Granularity represents candle resolution buckets, OANDA naming.
type Granularity string

const (
	GranM1  Granularity = "M1"
	GranM5  Granularity = "M5"
	GranM15 Granularity = "M15"
	GranH1  Granularity = "H1"
)

// IsValidGranularity returns true if g is a supported granularity.
func IsValidGranularity(g Granularity) bool {
	switch g {
	case GranM1, GranM5, GranM15, GranH1:
		return true
	default:
		return false
	}
}

// DefaultGranularity returns the default evaluation granularity.
func DefaultGranularity() Granularity { return GranM5 }

// NormalizeGranularity converts a raw string to a valid granularity (or default).
func NormalizeGranularity(s string) Granularity {
	if s == "" {
		return DefaultGranularity()
	}
	g := Granularity(s)
	if IsValidGranularity(g) {
		return g
	}
	return DefaultGranularity()
}
