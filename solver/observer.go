package solver

// Outcome classifies a finished query.
type Outcome string

const (
	Proved  Outcome = "proved"
	Failed  Outcome = "failed"
	Errored Outcome = "error"
)

// Observer receives the statistics of each finished query. Implementations must
// be safe for concurrent use when the solver runs batches.
type Observer interface {
	ObserveQuery(stats Stats, outcome Outcome)
}
