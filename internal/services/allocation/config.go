package allocation

import "sync"

// DiscoveryRiskConfig is the process-wide risk engine tunables. All
// reads and writes go through the accessors; two concurrent updates
// racing would otherwise lose one.
type DiscoveryRiskConfig struct {
	mu sync.RWMutex

	enabled                     bool
	edgeBoostMultiplier         float64
	baselineReductionMultiplier float64
	spreadBlockThreshold        float64
	ignitionMinComposite        float64
}

// NewDiscoveryRiskConfig returns the config initialized to production
// defaults.
func NewDiscoveryRiskConfig() *DiscoveryRiskConfig {
	return &DiscoveryRiskConfig{
		enabled:                     true,
		edgeBoostMultiplier:         1.35,
		baselineReductionMultiplier: 0.55,
		spreadBlockThreshold:        2.5,
		ignitionMinComposite:        0.70,
	}
}

func (c *DiscoveryRiskConfig) Enabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.enabled
}

func (c *DiscoveryRiskConfig) SetEnabled(v bool) {
	c.mu.Lock()
	c.enabled = v
	c.mu.Unlock()
}

func (c *DiscoveryRiskConfig) EdgeBoostMultiplier() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.edgeBoostMultiplier
}

func (c *DiscoveryRiskConfig) SetEdgeBoostMultiplier(v float64) {
	c.mu.Lock()
	c.edgeBoostMultiplier = v
	c.mu.Unlock()
}

func (c *DiscoveryRiskConfig) BaselineReductionMultiplier() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.baselineReductionMultiplier
}

func (c *DiscoveryRiskConfig) SetBaselineReductionMultiplier(v float64) {
	c.mu.Lock()
	c.baselineReductionMultiplier = v
	c.mu.Unlock()
}

func (c *DiscoveryRiskConfig) SpreadBlockThreshold() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.spreadBlockThreshold
}

func (c *DiscoveryRiskConfig) SetSpreadBlockThreshold(v float64) {
	c.mu.Lock()
	c.spreadBlockThreshold = v
	c.mu.Unlock()
}

func (c *DiscoveryRiskConfig) IgnitionMinComposite() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ignitionMinComposite
}

func (c *DiscoveryRiskConfig) SetIgnitionMinComposite(v float64) {
	c.mu.Lock()
	c.ignitionMinComposite = v
	c.mu.Unlock()
}
