// Package mock provides test doubles for the ai interfaces.
//
// MockGateway supports a queue of canned responses (Enqueue/EnqueueError)
// for scripting multi-stage pipeline runs, a CompleteFunc for arbitrary
// behavior, and call recording for asserting which prompts were sent.
// MockEmbedder and MockResolver follow the same function-field pattern.
package mock
