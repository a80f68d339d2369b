// Package aggregates defines the write boundaries whose invariants must hold
// atomically, independent of the persistence layer that implements them.
package aggregates
