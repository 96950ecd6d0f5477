// Package domain holds the engagement campaign rules that do not touch the
// network: the cyclic session numbering and its phases, the wall-clock
// schedule table, the participation store, streaks, engagement scoring, the
// warning escalation table, and report rendering.
//
// Nothing in this package is safe for concurrent use on its own. The
// application engine owns a single Store and serializes every mutation.
package domain
