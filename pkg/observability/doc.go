/*
Package observability turns runtime lifecycle events into logs, metrics and traces.

Every constructor here returns a domain.LifecycleHooks value; combine them with
domain.ComposeHooks and hand the result to the engine.
*/
package observability
