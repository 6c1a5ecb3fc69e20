package domain

import "testing"

func TestCandle_Valid(t *testing.T) {
	tests := []struct {
		name   string
		candle Candle
		want   bool
	}{
		{"flat", Candle{Time: 60, Open: 10, High: 10, Low: 10, Close: 10}, true},
		{"up candle", Candle{Time: 60, Open: 10, High: 11, Low: 9.8, Close: 10.5}, true},
		{"high below close", Candle{Time: 60, Open: 10, High: 10.2, Low: 9.8, Close: 10.5}, false},
		{"low above open", Candle{Time: 60, Open: 10, High: 11, Low: 10.2, Close: 10.5}, false},
		{"close below floor", Candle{Time: 60, Open: 0.02, High: 0.02, Low: 0.001, Close: 0.001}, false},
		{"close at floor", Candle{Time: 60, Open: 0.01, High: 0.01, Low: 0.01, Close: 0.01}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.candle.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}
