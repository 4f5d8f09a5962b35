package experience

import "sync"

// VectorPool recycles fixed-size state vectors between ticks
type VectorPool struct {
	size int
	pool sync.Pool
}

// NewVectorPool creates a pool of vectors of length size
func NewVectorPool(size int) *VectorPool {
	vp := &VectorPool{size: size}
	vp.pool.New = func() interface{} {
		v := make([]float64, size)
		return &v
	}
	return vp
}

// Size returns the length of every vector handed out
func (vp *VectorPool) Size() int { return vp.size }

// Get retrieves a zeroed vector from the pool
func (vp *VectorPool) Get() []float64 {
	v := *(vp.pool.Get().(*[]float64))
	clear(v)
	return v
}

// Put returns a vector to the pool. Vectors of the wrong size are dropped.
func (vp *VectorPool) Put(v []float64) {
	if cap(v) < vp.size {
		return
	}
	v = v[:vp.size]
	vp.pool.Put(&v)
}

// Scope tracks vectors taken during one unit of work so they can all be
// returned with a single Release call.
type Scope struct {
	pool  *VectorPool
	taken [][]float64
}

// Scope starts a new scope on the pool
func (vp *VectorPool) Scope() *Scope {
	return &Scope{pool: vp}
}

// Get retrieves a vector that will be returned on Release
func (s *Scope) Get() []float64 {
	v := s.pool.Get()
	s.taken = append(s.taken, v)
	return v
}

// Outstanding reports how many vectors the scope currently holds
func (s *Scope) Outstanding() int { return len(s.taken) }

// Release returns every vector taken through the scope. It is safe to call more than once.
func (s *Scope) Release() {
	for _, v := range s.taken {
		s.pool.Put(v)
	}
	clear(s.taken)
	s.taken = s.taken[:0]
}
