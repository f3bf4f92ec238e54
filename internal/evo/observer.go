package evo

// Progress is emitted each time the best-known fitness strictly improves.
type Progress struct {
	Generation int       `json:"generation"`
	Candidate  Candidate `json:"candidate"`
	Fitness    int       `json:"fitness"`
}

type GenerationDiagnostics struct {
	Generation       int     `json:"generation"`
	BestFitness      int     `json:"best_fitness"`
	MeanFitness      float64 `json:"mean_fitness"`
	WorstFitness     int     `json:"worst_fitness"`
	DistinctChildren int     `json:"distinct_children"`
}

// Observer receives loop events on the control goroutine.
type Observer interface {
	OnImprovement(Progress)
	OnGeneration(GenerationDiagnostics)
}

// ObserverFuncs adapts plain functions to Observer. Nil fields are skipped.
type ObserverFuncs struct {
	Improvement func(Progress)
	Generation  func(GenerationDiagnostics)
}

func (o ObserverFuncs) OnImprovement(p Progress) {
	if o.Improvement != nil {
		o.Improvement(p)
	}
}

func (o ObserverFuncs) OnGeneration(d GenerationDiagnostics) {
	if o.Generation != nil {
		o.Generation(d)
	}
}

// MultiObserver fans events out in order.
type MultiObserver []Observer

func (m MultiObserver) OnImprovement(p Progress) {
	for _, o := range m {
		if o != nil {
			o.OnImprovement(p)
		}
	}
}

func (m MultiObserver) OnGeneration(d GenerationDiagnostics) {
	for _, o := range m {
		if o != nil {
			o.OnGeneration(d)
		}
	}
}

// DefaultDiagnosticsWindow is the number of recent generations a
// DiagnosticsWindow keeps when no size is given.
const DefaultDiagnosticsWindow = 1000

// DiagnosticsWindow retains the diagnostics of the most recent generations in
// a fixed-size ring, so unbounded runs use constant memory.
type DiagnosticsWindow struct {
	ring  []GenerationDiagnostics
	next  int
	total int
}

func NewDiagnosticsWindow(size int) *DiagnosticsWindow {
	if size <= 0 {
		size = DefaultDiagnosticsWindow
	}
	return &DiagnosticsWindow{ring: make([]GenerationDiagnostics, 0, size)}
}

func (w *DiagnosticsWindow) OnImprovement(Progress) {}

func (w *DiagnosticsWindow) OnGeneration(d GenerationDiagnostics) {
	w.total++
	if len(w.ring) < cap(w.ring) {
		w.ring = append(w.ring, d)
		return
	}
	w.ring[w.next] = d
	w.next = (w.next + 1) % len(w.ring)
}

// Snapshot returns the retained generations oldest first.
func (w *DiagnosticsWindow) Snapshot() []GenerationDiagnostics {
	out := make([]GenerationDiagnostics, 0, len(w.ring))
	out = append(out, w.ring[w.next:]...)
	return append(out, w.ring[:w.next]...)
}

// Dropped reports how many generations fell out of the window.
func (w *DiagnosticsWindow) Dropped() int {
	return w.total - len(w.ring)
}
