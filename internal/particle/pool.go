package particle

// Pool is a fixed-capacity set of reusable particles.
//
// All particles are allocated once by NewPool and never reallocated, so
// pointers returned by Acquire stay valid for the lifetime of the pool.
// When every slot is active, Acquire returns nil and the caller simply
// activates fewer particles: the pool never grows.
type Pool struct {
	particles []Particle
	cursor    int // next slot Acquire starts scanning from
	active    int
}

// NewPool creates a pool of capacity inactive particles.
// factory supplies each particle's default visual attributes (BaseScale);
// it may be nil. A capacity below 1 is raised to 1.
func NewPool(capacity int, factory func(i int) Particle) *Pool {
	if capacity < 1 {
		capacity = 1
	}

	p := &Pool{particles: make([]Particle, capacity)}
	for i := range p.particles {
		var proto Particle
		if factory != nil {
			proto = factory(i)
		}
		if proto.BaseScale <= 0 {
			proto.BaseScale = 1.0
		}
		proto.index = i
		proto.Active = false
		proto.Scale = proto.BaseScale
		proto.Opacity = 1.0
		p.particles[i] = proto
	}
	return p
}

// Acquire returns the next inactive particle, or nil when the pool is saturated.
// The returned particle is not yet marked active; the caller assigns its
// kinematic state and sets Active.
func (p *Pool) Acquire() *Particle {
	n := len(p.particles)
	if p.active >= n {
		return nil
	}
	for i := 0; i < n; i++ {
		idx := (p.cursor + i) % n
		if !p.particles[idx].Active {
			p.cursor = (idx + 1) % n
			return &p.particles[idx]
		}
	}
	return nil
}

// Activate marks an acquired particle active and counts it against capacity.
// Activating an already active particle is a no-op.
func (p *Pool) Activate(pt *Particle) {
	if !p.owns(pt) || pt.Active {
		return
	}
	pt.Active = true
	p.active++
}

// Release returns a particle to the pool and restores its transient fields
// so stale visuals never leak into the next activation.
// Releasing an inactive particle, or one from another pool, changes nothing.
func (p *Pool) Release(pt *Particle) {
	if !p.owns(pt) || !pt.Active {
		return
	}
	pt.Active = false
	pt.Age = 0
	pt.MaxLifetime = 0
	pt.Velocity = pt.Velocity.Mul(0)
	pt.Scale = pt.BaseScale
	pt.Opacity = 1.0
	p.active--
}

// ReleaseAll deactivates every particle.
func (p *Pool) ReleaseAll() {
	for i := range p.particles {
		p.Release(&p.particles[i])
	}
	p.cursor = 0
}

// Capacity returns the fixed number of particles in the pool.
func (p *Pool) Capacity() int {
	return len(p.particles)
}

// ActiveCount returns how many particles are currently active.
func (p *Pool) ActiveCount() int {
	return p.active
}

// IdleCount returns how many particles can still be acquired.
func (p *Pool) IdleCount() int {
	return len(p.particles) - p.active
}

// Each calls fn for every active particle.
func (p *Pool) Each(fn func(pt *Particle)) {
	for i := range p.particles {
		if p.particles[i].Active {
			fn(&p.particles[i])
		}
	}
}

// Particles exposes the backing slice for renderers. Callers must not
// modify the particles or retain the slice across ticks.
func (p *Pool) Particles() []Particle {
	return p.particles
}

func (p *Pool) owns(pt *Particle) bool {
	if pt == nil || pt.index < 0 || pt.index >= len(p.particles) {
		return false
	}
	return &p.particles[pt.index] == pt
}
