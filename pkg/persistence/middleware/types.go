package middleware

import "github.com/aretw0/loom/pkg/ports"

// Middleware wraps a SimulationStore to add behavior.
type Middleware func(ports.SimulationStore) ports.SimulationStore

// Chain applies mws so that the first one is the outermost.
func Chain(store ports.SimulationStore, mws ...Middleware) ports.SimulationStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
