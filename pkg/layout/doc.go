// Package layout positions, sizes, and colors graph nodes for rendering.
//
// A layout pass runs in fixed stages: circular initial placement (with a
// jittered fallback for degenerate geometry), degree-based sizing, Louvain
// community detection, a global force-directed simulation with grid-based
// far-field approximation, bounding-box overlap resolution, local
// refinement of oversized communities, and finally normalization into a
// fixed viewport. Every stage degrades instead of failing: community
// detection falls back to a single community, and any coordinate that ends
// up non-finite snaps to the origin and is tallied in the stats.
//
// All randomness flows through the Options.Rand generator, so a seeded
// generator makes the whole pass reproducible.
package layout
