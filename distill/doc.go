// Package distill turns raw content into structured knowledge cards
// using a language model.
//
// A run first attempts a fast path: one model call that produces a
// complete card directly. When that call fails or returns something
// unusable, the run degrades to a staged path of five model calls —
// extract, analyze, enrich, verify, synthesize — where each stage has a
// deterministic fallback, so a finished card comes out even when every
// call fails.
//
// Two conditions end a run early: content that is empty after image
// grounding, and a gateway that reports missing credentials. Both still
// produce a structurally complete card describing the failure.
package distill
