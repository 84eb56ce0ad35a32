package points

import "testing"

func TestFromLabel(t *testing.T) {
	cases := []struct {
		label    string
		expected Category
		ok       bool
	}{
		{"DRY", Dry, true},
		{"wet", Wet, true},
		{" EWASTE ", EWaste, true},
		{"Ewaste", EWaste, true},
		{"PLASTIC", "", false},
		{"", "", false},
	}

	for _, tc := range cases {
		c, ok := FromLabel(tc.label)
		if ok != tc.ok {
			t.Errorf("FromLabel(%q): expected ok=%v, got %v", tc.label, tc.ok, ok)
			continue
		}
		if ok && c != tc.expected {
			t.Errorf("FromLabel(%q): expected %q, got %q", tc.label, tc.expected, c)
		}
	}
}

func TestValue(t *testing.T) {
	if v := Value(Dry); v != 5 {
		t.Errorf("expected dry to be worth 5, got %d", v)
	}
	if v := Value(Wet); v != 8 {
		t.Errorf("expected wet to be worth 8, got %d", v)
	}
	if v := Value(EWaste); v != 10 {
		t.Errorf("expected ewaste to be worth 10, got %d", v)
	}
	if v := Value(Category("plastic")); v != 0 {
		t.Errorf("expected unknown category to be worth 0, got %d", v)
	}
}

func TestTotal(t *testing.T) {
	if total := Total(0, 0, 0); total != 0 {
		t.Errorf("expected zero total, got %d", total)
	}
	if total := Total(2, 3, 1); total != 2*5+3*8+1*10 {
		t.Errorf("expected total 44, got %d", total)
	}
}
