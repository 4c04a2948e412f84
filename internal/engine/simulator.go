package engine

// Outcome is the simulated gateway verdict for a payment that passed every rule.
type Outcome struct {
	Success       bool
	FailureReason string
	RuleCode      string
}

// Simulate draws a uniform sample and approves iff it lands under the
// configured success probability. This is a simulation, not a real gateway;
// the random source only needs to be uniform, and injectable for tests.
func Simulate(cfg Config, rnd Rand) Outcome {
	if rnd.Float64() < cfg.SuccessProbability {
		return Outcome{Success: true}
	}
	return Outcome{
		Success:       false,
		FailureReason: "Gateway declined the transaction",
		RuleCode:      RuleRandomFail,
	}
}
