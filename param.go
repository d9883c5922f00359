package hotparam

import "strconv"

// paramKey normalizes an argument value into the cache key used for
// counting. Only scalar-like values are countable: strings, booleans and all
// numeric widths. Composite values report ok=false and the rule inspecting
// them is skipped for that call.
//
// Numbers collapse into one canonical decimal form so int(1), uint8(1) and
// float64(1) share a counter, while the string "1" stays distinct.
func paramKey(v any) (key string, ok bool) {
	switch v := v.(type) {
	case string:
		return "s:" + v, true
	case bool:
		return "b:" + strconv.FormatBool(v), true
	case int:
		return numKey(int64(v)), true
	case int8:
		return numKey(int64(v)), true
	case int16:
		return numKey(int64(v)), true
	case int32:
		return numKey(int64(v)), true
	case int64:
		return numKey(v), true
	case uint:
		return "n:" + strconv.FormatUint(uint64(v), 10), true
	case uint8:
		return numKey(int64(v)), true
	case uint16:
		return numKey(int64(v)), true
	case uint32:
		return numKey(int64(v)), true
	case uint64:
		return "n:" + strconv.FormatUint(v, 10), true
	case float32:
		return floatKey(float64(v)), true
	case float64:
		return floatKey(v), true
	default:
		return "", false
	}
}

func numKey(n int64) string {
	return "n:" + strconv.FormatInt(n, 10)
}

// floatKey formats integral floats as integers so values decoded from JSON
// (always float64) key the same as their integer counterparts.
func floatKey(f float64) string {
	if f >= -1<<53 && f <= 1<<53 && f == float64(int64(f)) {
		return numKey(int64(f))
	}
	return "n:" + strconv.FormatFloat(f, 'g', -1, 64)
}
