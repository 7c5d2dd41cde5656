package usage

import "testing"

func TestNewReport(t *testing.T) {
	r := NewReport("embedding", PeriodMonth, 1700000000, 1702600000, 384200, 1000000, 615800)

	if r.Kind() != "embedding" {
		t.Errorf("Kind() = %q", r.Kind())
	}
	if r.Period() != PeriodMonth {
		t.Errorf("Period() = %q", r.Period())
	}
	if r.PeriodStart() != 1700000000 || r.PeriodEnd() != 1702600000 {
		t.Errorf("period = [%d, %d)", r.PeriodStart(), r.PeriodEnd())
	}
	if r.TokensUsed() != 384200 || r.TokensLimit() != 1000000 || r.TokensRemaining() != 615800 {
		t.Errorf("tokens = %d/%d/%d", r.TokensUsed(), r.TokensLimit(), r.TokensRemaining())
	}
	if r.IsExhausted() {
		t.Error("IsExhausted() = true, want false")
	}
}

func TestReport_IsExhausted(t *testing.T) {
	tests := []struct {
		name      string
		limit     int64
		remaining int64
		want      bool
	}{
		{"spent", 1000, 0, true},
		{"left", 1000, 1, false},
		{"unlimited", 0, -1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReport("completion", PeriodDay, 0, 0, 0, tt.limit, tt.remaining)
			if got := r.IsExhausted(); got != tt.want {
				t.Errorf("IsExhausted() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		in   string
		want Period
		ok   bool
	}{
		{"", PeriodDay, true},
		{"day", PeriodDay, true},
		{"month", PeriodMonth, true},
		{"total", "", false},
	}
	for _, tt := range tests {
		got, ok := ParsePeriod(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParsePeriod(%q) = %q, %v", tt.in, got, ok)
		}
	}
}
