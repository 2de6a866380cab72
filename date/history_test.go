package date

import "testing"

func TestAppend(t *testing.T) {
	h := new(History[float64])
	d1, v1 := New(2025, 07, 01), 25.0
	d2, v2 := New(2024, 07, 01), 24.0

	// Two values appended in reverse order must end up sorted.

	if h.Len() != 0 {
		t.Errorf("History.Len() = %v want 0", h.Len())
	}

	h.Append(d1, v1)
	if h.Len() != 1 {
		t.Errorf("Append(d1, v1).Len() = %v want 1", h.Len())
	}

	h.Append(d2, v2)
	if h.Len() != 2 {
		t.Errorf("Append(d2, v2).Len() = %v want 2", h.Len())
	}

	if h.days[1] != d1 {
		t.Errorf("history[1].day = %v want %v", h.days[1], d1)
	}
	if h.days[0] != d2 {
		t.Errorf("history[0].day = %v want %v", h.days[0], d2)
	}
	if h.values[1] != v1 {
		t.Errorf("history[1].value = %v want %v", h.values[1], v1)
	}
	if h.values[0] != v2 {
		t.Errorf("history[0].value = %v want %v", h.values[0], v2)
	}

	// same day overwrites
	h.Append(d1, 26)
	if v, _ := h.Get(d1); h.Len() != 2 || v != 26 {
		t.Errorf("Append(d1, 26) = %v (len %d), want 26 (len 2)", v, h.Len())
	}
}

func TestAppendAddAndBetween(t *testing.T) {
	h := new(History[float64])
	h.AppendAdd(New(2025, 1, 10), 100)
	h.AppendAdd(New(2025, 1, 10), 50)
	h.AppendAdd(New(2025, 1, 20), -30)

	if v, _ := h.Get(New(2025, 1, 10)); v != 150 {
		t.Errorf("AppendAdd() accumulated %v, want 150", v)
	}
	if got := h.Between(New(2025, 1, 10), New(2025, 1, 20)); got != -30 {
		t.Errorf("Between() = %v, want -30 (lower bound excluded)", got)
	}
	if got := h.Between(New(2025, 1, 1), New(2025, 1, 31)); got != 120 {
		t.Errorf("Between() = %v, want 120", got)
	}
}

func TestValueAsOfAndSince(t *testing.T) {
	h := new(History[float64])
	h.Append(New(2025, 1, 1), 1).Append(New(2025, 1, 3), 3)

	if _, ok := h.ValueAsOf(New(2024, 12, 31)); ok {
		t.Error("ValueAsOf() before the first point should not be found")
	}
	if v, ok := h.ValueAsOf(New(2025, 1, 2)); !ok || v != 1 {
		t.Errorf("ValueAsOf(2025-01-02) = %v, %v want 1, true", v, ok)
	}
	s := h.Since(New(2025, 1, 2))
	if s.Len() != 1 {
		t.Fatalf("Since().Len() = %d, want 1", s.Len())
	}
	if d, v := s.First(); d != New(2025, 1, 3) || v != 3 {
		t.Errorf("Since().First() = %v %v, want 2025-01-03 3", d, v)
	}
}
