// Package filter implements session-type filtering for the provider
// directory.
//
// Two filtering layers live here:
//
//   - Selection: the per-client set of active session-type tags, mutated by
//     toggle/clear actions. Visible computes the provider subset a client
//     should see for a given selection. An empty selection is a pass-through:
//     filtering is opt-in, and a provider matches when at least one of its
//     session types is active (logical OR across active tags).
//
//   - Load-time filters: operator-configured include/exclude rules for
//     provider names (glob patterns) and session-type tags, applied once
//     when a directory document is loaded. Exclude takes precedence over
//     include, and a provider must pass both the name and the tag filter.
//
// Selection deliberately accepts any string. Toggling a tag no provider
// carries is not an error; it simply yields an empty visible set until it is
// toggled off again.
package filter
