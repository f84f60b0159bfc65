package diff

// PosteriorState tracks a running mean/variance of a strategy's observed
// cost (Welford's online algorithm) plus a Beta(alpha, beta) posterior over
// its probability of being the optimal (lowest-cost) strategy for a given
// frame. Both are updated every frame for every strategy, whether or not
// that strategy was the one actually chosen, since cost is cheap to
// estimate for all three candidates without presenting anything.
type PosteriorState struct {
	count         float64
	mean          float64
	m2            float64 // sum of squared deviations from the mean
	Alpha, Beta   float64
}

// NewPosteriorState returns a state with a weak uniform Beta(1,1) prior and
// no cost observations yet.
func NewPosteriorState() *PosteriorState {
	return &PosteriorState{Alpha: 1, Beta: 1}
}

// Observe folds one cost sample into the running mean/variance via Welford's
// algorithm, and updates the Beta posterior by one success if wasOptimal.
func (p *PosteriorState) Observe(cost float64, wasOptimal bool) {
	p.count++
	delta := cost - p.mean
	p.mean += delta / p.count
	delta2 := cost - p.mean
	p.m2 += delta * delta2

	if wasOptimal {
		p.Alpha++
	} else {
		p.Beta++
	}
}

// Mean is the running expected cost.
func (p *PosteriorState) Mean() float64 {
	if p.count == 0 {
		return 0
	}
	return p.mean
}

// Variance is the running sample variance of observed cost.
func (p *PosteriorState) Variance() float64 {
	if p.count < 2 {
		return 0
	}
	return p.m2 / (p.count - 1)
}

// OptimalProbability is the Beta posterior mean, the current estimate of
// this strategy's probability of being optimal.
func (p *PosteriorState) OptimalProbability() float64 {
	return p.Alpha / (p.Alpha + p.Beta)
}
