// Package metric holds the per-value statistics for hot-parameter flow
// control:
//
//   - [RollingCounter]: a fixed-bucket rolling window counter for one
//     parameter value.
//   - [ValueCache]: a bounded, sharded LRU cache mapping parameter values to
//     their counters.
//   - [ParamMetric]: the counters for one (resource, parameter index) pair.
//   - [Registry]: the process-wide table of ParamMetric instances.
//
// Everything in this package sits on the admission hot path and is safe for
// concurrent use without a global lock.
package metric
