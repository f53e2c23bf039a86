package metrics

// StackSample is the per-stack slice of a step record.
type StackSample struct {
	Index         int
	Mode          string
	TargetW       float64
	MassFlowKgS   float64
	CellVoltage   float64
	Current       float64
	Degradation   float64
	CycleCount    int
	UptimeSeconds float64
}

// StepRecord captures one supervisor control step.
type StepRecord struct {
	Step       int
	SimTime    float64
	Policy     string
	PowerInW   float64
	PowerLeftW float64
	CurtailedW float64
	HydrogenKg float64
	StacksOn   int
	StacksWait int
	Stacks     []StackSample
}

// Sink records supervisor step results for observability purposes.
type Sink interface {
	RecordStep(rec StepRecord) error
}

// NopSink implements Sink with no-op methods.
type NopSink struct{}

func (NopSink) RecordStep(StepRecord) error { return nil }

// MultiSink fans step records out to multiple sinks.
type MultiSink struct {
	Sinks []Sink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordStep forwards the record to all sinks, returning the first
// error encountered.
func (m *MultiSink) RecordStep(rec StepRecord) error {
	for _, s := range m.Sinks {
		if err := s.RecordStep(rec); err != nil {
			return err
		}
	}
	return nil
}
