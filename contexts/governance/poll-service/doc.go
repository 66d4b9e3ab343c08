// Package pollservice implements the poll lifecycle and vote tally engine
// inside the governance context.
//
// The module owns poll state transitions (draft -> open -> closed ->
// published), single-ballot enforcement per voter, weight snapshotting at cast
// time, and the pure tally computation (weighted counts, yes/no outcomes and
// instant-runoff rounds). It keeps business rules in application/domain layers
// and isolates infrastructure concerns behind ports and adapters.
package pollservice
