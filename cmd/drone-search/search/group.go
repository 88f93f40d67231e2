package search

// GroupResult is the aggregated outcome of the trials run for one configuration
type GroupResult struct {
	Successes      int
	Trials         int
	MeanTimeToFind float64 // seconds, averaged over successful trials only
}

// Success applies the majority rule: strictly more than half of the trials found the objective
func (g GroupResult) Success() bool {
	return g.Trials > 0 && 2*g.Successes > g.Trials
}

// Group accumulates trial outcomes until Size trials have completed
type Group struct {
	Size int

	trials     int
	successes  int
	summedTime float64
}

// NewGroup creates an accumulator for size trials
func NewGroup(size int) *Group {
	if size < 1 {
		size = 1
	}
	return &Group{Size: size}
}

// Add records one trial. elapsed is only counted for successful trials.
func (g *Group) Add(found bool, elapsed float64) {
	g.trials++
	if found {
		g.successes++
		g.summedTime += elapsed
	}
}

// Complete reports whether every trial of the group has been recorded
func (g *Group) Complete() bool { return g.trials >= g.Size }

// Trials returns the number of trials recorded so far
func (g *Group) Trials() int { return g.trials }

// Result summarizes the recorded trials
func (g *Group) Result() GroupResult {
	r := GroupResult{Successes: g.successes, Trials: g.trials}
	if g.successes > 0 {
		r.MeanTimeToFind = g.summedTime / float64(g.successes)
	}
	return r
}

// Reset clears the accumulator for the next configuration
func (g *Group) Reset() {
	g.trials = 0
	g.successes = 0
	g.summedTime = 0
}
