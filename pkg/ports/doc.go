/*
Package ports defines the driven ports (interfaces) for loom hosts.

The graph engine itself has no external dependencies. Hosts that keep
simulation state across processes persist it through these interfaces.

# Key Interfaces

  - SimulationStore: persists and loads simulation snapshots.
  - DistributedLocker: serializes access to one simulation across replicas.
*/
package ports
