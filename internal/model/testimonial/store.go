package testimonial

// Store exposes the read-only content pool.
type Store interface {
	List() []Testimonial
	FindByName(name string) (Testimonial, bool)
}

// MemoryStore implements Store with an in-memory slice.
type MemoryStore struct {
	items []Testimonial
}

// NewMemoryStore returns a MemoryStore preloaded with the supplied testimonials.
func NewMemoryStore(items []Testimonial) *MemoryStore {
	return &MemoryStore{items: append([]Testimonial(nil), items...)}
}

// List returns the content pool in its original order.
func (s *MemoryStore) List() []Testimonial {
	return append([]Testimonial(nil), s.items...)
}

// FindByName looks up a testimonial by its unique name.
func (s *MemoryStore) FindByName(name string) (Testimonial, bool) {
	for _, item := range s.items {
		if item.Name == name {
			return item, true
		}
	}
	return Testimonial{}, false
}
