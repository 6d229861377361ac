package subscriber

import (
	"errors"
	"testing"
)

func TestPackChannels(t *testing.T) {
	tests := []struct {
		name    string
		input   []byte
		want    uint32
		tooMany bool
	}{
		{"Nil", nil, 0, false},
		{"Empty", []byte{}, 0, false},
		{"OneByte", []byte{0x0f}, 0x0f, false},
		{"TwoBytes", []byte{0x01, 0x02}, 0x0201, false},
		{"FourBytes", []byte{0x01, 0x02, 0x03, 0x04}, 0x04030201, false},
		{"AllSet", []byte{0xff, 0xff, 0xff, 0xff}, 0xffffffff, false},
		{"FiveBytes", []byte{1, 2, 3, 4, 5}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PackChannels(tt.input)
			if tt.tooMany {
				if !errors.Is(err, ErrTooManyChannels) {
					t.Fatalf("expected ErrTooManyChannels, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %#x, want %#x", got, tt.want)
			}
		})
	}
}

func TestSubscribed(t *testing.T) {
	s := &Subscriber{Channels: 0b1010}

	tests := []struct {
		channel uint8
		want    bool
	}{
		{0, false},
		{1, true},
		{2, false},
		{3, true},
		{31, false},
		{32, false}, // out of bitmap range
	}

	for _, tt := range tests {
		if got := s.Subscribed(tt.channel); got != tt.want {
			t.Errorf("Subscribed(%d): got %v, want %v", tt.channel, got, tt.want)
		}
	}
}
