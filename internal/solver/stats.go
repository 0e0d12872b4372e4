package solver

// Stats counts what happened to the candidates of a search.
type Stats struct {
	Expanded     int `json:"expanded"`     // boards popped from the frontier
	Attempted    int `json:"attempted"`    // candidate placements tried
	Rejected     int `json:"rejected"`     // placements over blocked tiles or filtered out
	Duplicates   int `json:"duplicates"`   // grids already registered
	Disconnected int `json:"disconnected"` // boards failing the path check
	Accepted     int `json:"accepted"`     // boards pushed back on the frontier
	Improvements int `json:"improvements"` // best-found record updates
	Registered   int `json:"registered"`   // distinct grids in the registry
}

// add folds the counters of o into s.
func (s *Stats) add(o Stats) {
	s.Expanded += o.Expanded
	s.Attempted += o.Attempted
	s.Rejected += o.Rejected
	s.Duplicates += o.Duplicates
	s.Disconnected += o.Disconnected
	s.Accepted += o.Accepted
	s.Improvements += o.Improvements
}
