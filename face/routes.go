package face

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/Fantom-foundation/segpipe/name"
)

// ErrPrefixTaken is returned when registering a prefix twice.
var ErrPrefixTaken = errors.New("prefix already registered")

type route struct {
	prefix  name.Name
	handler InterestHandler
}

// Routes is a longest-prefix match table of interest handlers.
type Routes struct {
	routes map[string]route
	mu     sync.RWMutex
}

func NewRoutes() *Routes {
	return &Routes{
		routes: make(map[string]route),
	}
}

// Add registers h under prefix.
func (r *Routes) Add(prefix name.Name, h InterestHandler) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := prefix.Key()
	if _, ok := r.routes[key]; ok {
		return errors.Wrap(ErrPrefixTaken, prefix.String())
	}
	r.routes[key] = route{prefix, h}
	return nil
}

// Remove unregisters prefix.
func (r *Routes) Remove(prefix name.Name) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.routes, prefix.Key())
}

// Lookup returns the handler of the longest registered prefix of n.
func (r *Routes) Lookup(n name.Name) (InterestHandler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := len(n); i >= 0; i-- {
		if rt, ok := r.routes[n.Prefix(i).Key()]; ok {
			return rt.handler, true
		}
	}
	return nil, false
}

// Len is the number of registered prefixes.
func (r *Routes) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.routes)
}
