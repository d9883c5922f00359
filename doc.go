// Package hotparam provides per-parameter-value admission control: for a
// protected operation it decides whether an individual call may proceed
// based on how often the distinguishing value of one of its arguments — a
// "hot parameter" such as a user id or item id — has been seen recently.
// A single abusive key is throttled without affecting other keys on the
// same operation.
//
// # Key Concepts
//
//   - [Resource] identifies a protected operation subject to admission
//     control.
//   - [Rule] limits how often one value of one call argument may be seen in
//     a rolling time window, with optional burst tolerance and per-value
//     overrides.
//   - [Behavior] controls what happens when a value is over its threshold:
//     reject immediately, or throttle with the option to wait.
//   - [Source] supplies the active rules. An in-memory source is used by
//     default; SQLite- and Redis-backed sources are available in the rules
//     subpackage.
//   - [Recorder] observes pass/block outcomes. A Prometheus implementation
//     is available in the promrecorder subpackage.
//
// # Quick Start
//
//	limiter := hotparam.New()
//	limiter.LoadRules(hotparam.Rule{
//		Resource:   "GET:/api/orders",
//		ParamIndex: 0,
//		Threshold:  100,
//		Window:     time.Second,
//	})
//
//	res := hotparam.Resource{Name: "GET:/api/orders"}
//	if err := limiter.Entry(res, userID); err != nil {
//		// blocked: reject the call
//	}
//
// For pipeline integration, wrap the limiter in a [ParamFlowSlot] and
// compose it with other stages in a [Chain].
//
// See the [Limiter] documentation for the full API.
package hotparam
