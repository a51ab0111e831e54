package sim

// Snapshot is the state of a cell after one step.
type Snapshot struct {
	Step        int
	Temperature float64   // K, all particles
	Species     []float64 // K, per species index; 0 when absent
	Energy      float64   // J, total kinetic energy
	Absorbed    float64   // J, threshold energy taken by inelastic channels so far
	Particles   int
	Accepted    int // collisions during this step
}

// Total is the conserved quantity: kinetic plus absorbed energy.
func (s Snapshot) Total() float64 { return s.Energy + s.Absorbed }

type Metric interface {
	Name() string
	Observe(s Snapshot)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(s Snapshot)
}

type Config struct {
	Steps         int
	PairsPerStep  int
	SnapshotEvery int
	Seed          int64
}

// Population seeds one species with a Maxwellian at Temperature.
type Population struct {
	Species     string
	Count       int
	Temperature float64
}

// Counters tally what happened to trial pairs.
type Counters struct {
	Trials         int `json:"trials"`
	Accepted       int `json:"accepted"`
	Rejected       int `json:"rejected"`
	DomainErrors   int `json:"domain_errors"`
	BelowThreshold int `json:"below_threshold"`
}

func (c *Counters) add(o Counters) {
	c.Trials += o.Trials
	c.Accepted += o.Accepted
	c.Rejected += o.Rejected
	c.DomainErrors += o.DomainErrors
	c.BelowThreshold += o.BelowThreshold
}

// AcceptanceRate is accepted over trials.
func (c Counters) AcceptanceRate() float64 {
	if c.Trials == 0 {
		return 0
	}
	return float64(c.Accepted) / float64(c.Trials)
}

type Result struct {
	Snapshots   []Snapshot
	Counters    Counters
	Channels    map[string]int // "section: equation" -> accepted collisions
	StepsTaken  int
	EnergyDrift float64 // max |E+absorbed-E0|/E0 over the snapshots
	Metrics     map[string]float64
}
