package audio_test

import (
	"testing"

	"github.com/intervo/intervo/pkg/audio"
)

func TestStereoToMono_AveragesPairs(t *testing.T) {
	in := []int16{100, 200, -100, 100, 32767, 32767}
	got := audio.StereoToMono(in)
	want := []int16{150, 0, 32767}
	if len(got) != len(want) {
		t.Fatalf("length = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestResampleMono_HalvesSampleCount(t *testing.T) {
	in := make([]int16, 3200) // 100ms at 32kHz
	got := audio.ResampleMono(in, 32000, 16000)
	if len(got) != 1600 {
		t.Errorf("resampled length = %d, want 1600", len(got))
	}
}

func TestResampleMono_SameRate_ReturnsInputUnchanged(t *testing.T) {
	in := []int16{1, 2, 3}
	got := audio.ResampleMono(in, 16000, 16000)
	if len(got) != 3 || got[0] != 1 || got[2] != 3 {
		t.Errorf("same-rate resample altered input: %v", got)
	}
}

func TestResampleMono_InterpolatesBetweenSamples(t *testing.T) {
	in := []int16{0, 100, 200, 300}
	got := audio.ResampleMono(in, 16000, 32000)
	if len(got) != 8 {
		t.Fatalf("length = %d, want 8", len(got))
	}
	// Odd output positions fall halfway between source samples.
	if got[1] != 50 {
		t.Errorf("interpolated sample = %d, want 50", got[1])
	}
}
