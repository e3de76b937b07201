package core

import "testing"

func TestMonthlyStrategy_Next(t *testing.T) {
	strategy := MonthlyStrategy{}

	tests := []struct {
		name string
		due  Date
		want Date
	}{
		{
			name: "mid month",
			due:  NewDate(2025, 3, 15),
			want: NewDate(2025, 4, 15),
		},
		{
			name: "december rolls into next year",
			due:  NewDate(2025, 12, 10),
			want: NewDate(2026, 1, 10),
		},
		{
			name: "jan 31 clamps to feb 28",
			due:  NewDate(2025, 1, 31),
			want: NewDate(2025, 2, 28),
		},
		{
			name: "jan 31 clamps to feb 29 in leap year",
			due:  NewDate(2024, 1, 31),
			want: NewDate(2024, 2, 29),
		},
		{
			name: "may 31 clamps to jun 30",
			due:  NewDate(2025, 5, 31),
			want: NewDate(2025, 6, 30),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := strategy.Next(tt.due)
			if !got.Equal(tt.want.Time) {
				t.Errorf("MonthlyStrategy.Next() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestQuarterlyStrategy_Next(t *testing.T) {
	strategy := QuarterlyStrategy{}

	tests := []struct {
		name string
		due  Date
		want Date
	}{
		{
			name: "plain quarter",
			due:  NewDate(2025, 2, 10),
			want: NewDate(2025, 5, 10),
		},
		{
			name: "crosses year boundary",
			due:  NewDate(2025, 11, 30),
			want: NewDate(2026, 2, 28),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := strategy.Next(tt.due)
			if !got.Equal(tt.want.Time) {
				t.Errorf("QuarterlyStrategy.Next() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBiannualStrategy_Next(t *testing.T) {
	strategy := BiannualStrategy{}

	got := strategy.Next(NewDate(2025, 8, 31))
	want := NewDate(2026, 2, 28)
	if !got.Equal(want.Time) {
		t.Errorf("BiannualStrategy.Next() = %v, want %v", got, want)
	}
}

func TestAnnualStrategy_Next(t *testing.T) {
	strategy := AnnualStrategy{}

	tests := []struct {
		name string
		due  Date
		want Date
	}{
		{
			name: "plain year",
			due:  NewDate(2025, 6, 15),
			want: NewDate(2026, 6, 15),
		},
		{
			name: "leap day clamps to feb 28",
			due:  NewDate(2024, 2, 29),
			want: NewDate(2025, 2, 28),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := strategy.Next(tt.due)
			if !got.Equal(tt.want.Time) {
				t.Errorf("AnnualStrategy.Next() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetRecurrenceStrategy(t *testing.T) {
	tests := []struct {
		name      string
		frequency BillFrequency
		wantErr   bool
	}{
		{"monthly", FrequencyMonthly, false},
		{"quarterly", FrequencyQuarterly, false},
		{"biannually", FrequencyBiannually, false},
		{"annually", FrequencyAnnually, false},
		{"one_time has no next cycle", FrequencyOneTime, true},
		{"unknown", BillFrequency("weekly"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			strategy, err := GetRecurrenceStrategy(tt.frequency)
			if (err != nil) != tt.wantErr {
				t.Errorf("GetRecurrenceStrategy() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && strategy == nil {
				t.Error("GetRecurrenceStrategy() returned nil strategy")
			}
		})
	}
}

func TestRegisterRecurrenceStrategy(t *testing.T) {
	customFreq := BillFrequency("weekly")

	RegisterRecurrenceStrategy(customFreq, MonthlyStrategy{})

	strategy, err := GetRecurrenceStrategy(customFreq)
	if err != nil {
		t.Errorf("GetRecurrenceStrategy() after register error = %v", err)
	}
	if strategy == nil {
		t.Error("GetRecurrenceStrategy() returned nil after registration")
	}

	// Cleanup - remove the custom strategy to avoid affecting other tests
	delete(recurrenceStrategies, customFreq)
}

func TestNextDueDate(t *testing.T) {
	recurring := Bill{Frequency: FrequencyMonthly, DueDate: NewDate(2025, 1, 31)}
	next, ok := NextDueDate(recurring)
	if !ok {
		t.Fatal("NextDueDate() ok = false for monthly bill")
	}
	if want := NewDate(2025, 2, 28); !next.Equal(want.Time) {
		t.Errorf("NextDueDate() = %v, want %v", next, want)
	}

	oneTime := Bill{Frequency: FrequencyOneTime, DueDate: NewDate(2025, 1, 31)}
	if _, ok := NextDueDate(oneTime); ok {
		t.Error("NextDueDate() ok = true for one_time bill")
	}
}
