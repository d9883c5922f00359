package hotparam

import "testing"

func TestParamKey(t *testing.T) {
	tests := []struct {
		name  string
		value any
		key   string
		ok    bool
	}{
		{"string", "userA", "s:userA", true},
		{"bool", true, "b:true", true},
		{"int", 42, "n:42", true},
		{"int64", int64(-7), "n:-7", true},
		{"uint8", uint8(42), "n:42", true},
		{"uint64", uint64(42), "n:42", true},
		{"integral float", float64(42), "n:42", true},
		{"fractional float", 1.5, "n:1.5", true},
		{"struct", struct{ x int }{1}, "", false},
		{"slice", []int{1}, "", false},
		{"map", map[string]int{}, "", false},
		{"pointer", new(int), "", false},
		{"nil", nil, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, ok := paramKey(tt.value)
			if ok != tt.ok {
				t.Fatalf("paramKey(%v) ok = %v, want %v", tt.value, ok, tt.ok)
			}
			if key != tt.key {
				t.Errorf("paramKey(%v) = %q, want %q", tt.value, key, tt.key)
			}
		})
	}
}

func TestParamKeyNumericStringDistinct(t *testing.T) {
	numKey, _ := paramKey(1)
	strKey, _ := paramKey("1")
	if numKey == strKey {
		t.Errorf("numeric 1 and string \"1\" share key %q", numKey)
	}
}

func TestParamKeyNumericWidthsCollapse(t *testing.T) {
	want, _ := paramKey(int(7))
	for _, v := range []any{int8(7), int32(7), uint16(7), uint64(7), float32(7), float64(7)} {
		got, ok := paramKey(v)
		if !ok || got != want {
			t.Errorf("paramKey(%T %v) = %q, want %q", v, v, got, want)
		}
	}
}
