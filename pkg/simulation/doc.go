/*
Package simulation implements simulation state that outlives a single
evaluation.

A Session is the storage handed to a graph through graph.WithSimulation;
step and commit nodes read and write it while the host advances time. The
Manager persists sessions through a ports.SimulationStore and serializes
access to each one, locally and, with a DistributedLocker, across replicas.
*/
package simulation
