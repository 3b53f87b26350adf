package scroll

import (
	"testing"

	"pgregory.net/rapid"
)

type fakePane struct {
	gotoBottom int
}

func (p *fakePane) GotoBottom() { p.gotoBottom++ }

func TestNewTrackerIsPinned(t *testing.T) {
	if !New().Pinned() {
		t.Fatal("new tracker should be pinned")
	}
}

func TestSampleExactBottomPins(t *testing.T) {
	tr := New()
	tr.Sample(PaneMetrics{Offset: 0, Visible: 10, Total: 40})
	if tr.Pinned() {
		t.Fatal("expected unpinned when scrolled to the top")
	}
	if !tr.Sample(PaneMetrics{Offset: 30, Visible: 10, Total: 40}) {
		t.Fatal("expected pinned at offset+visible == total")
	}
}

func TestSampleWithinEpsilon(t *testing.T) {
	tr := New()
	if !tr.Sample(PaneMetrics{Offset: 29.6, Visible: 10, Total: 40}) {
		t.Error("0.4 rows short should count as the bottom")
	}
	if tr.Sample(PaneMetrics{Offset: 29, Visible: 10, Total: 40}) {
		t.Error("a full row short must unpin")
	}
}

func TestContentShorterThanPaneIsAtBottom(t *testing.T) {
	tr := New()
	if !tr.Sample(PaneMetrics{Offset: 0, Visible: 20, Total: 5}) {
		t.Fatal("content that fits the pane is always at the bottom")
	}
}

// Feature: notegen, Property 5: Scroll follows if and only if the last sample was at the bottom
func TestBufferUpdateFollowsIffPinned(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		tr := New()
		samples := rapid.SliceOfN(rapid.Custom(func(t *rapid.T) PaneMetrics {
			total := rapid.Float64Range(0, 1000).Draw(t, "total")
			visible := rapid.Float64Range(1, 100).Draw(t, "visible")
			offset := rapid.Float64Range(0, total).Draw(t, "offset")
			return PaneMetrics{Offset: offset, Visible: visible, Total: total}
		}), 1, 20).Draw(t, "samples")

		for _, s := range samples {
			tr.Sample(s)
		}
		last := samples[len(samples)-1]
		want := last.Offset+last.Visible >= last.Total-Epsilon

		pane := &fakePane{}
		scrolled := tr.OnBufferUpdate(pane)
		if scrolled != want || (pane.gotoBottom == 1) != want {
			t.Fatalf("last sample %+v: scrolled=%v gotoBottom=%d, want follow=%v",
				last, scrolled, pane.gotoBottom, want)
		}
	})
}

// Feature: notegen, Property 6: Batching samples does not change the outcome
func TestBatchedSamplesMatchLatest(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 10).Draw(t, "n")
		var samples []PaneMetrics
		for i := 0; i < n; i++ {
			samples = append(samples, PaneMetrics{
				Offset:  float64(rapid.IntRange(0, 100).Draw(t, "offset")),
				Visible: float64(rapid.IntRange(1, 30).Draw(t, "visible")),
				Total:   float64(rapid.IntRange(0, 130).Draw(t, "total")),
			})
		}
		all := New()
		for _, s := range samples {
			all.Sample(s)
		}
		latest := New()
		latest.Sample(samples[len(samples)-1])
		if all.Pinned() != latest.Pinned() {
			t.Fatalf("every-sample=%v latest-only=%v", all.Pinned(), latest.Pinned())
		}
	})
}

func TestResetRepins(t *testing.T) {
	tr := New()
	tr.Sample(PaneMetrics{Offset: 0, Visible: 10, Total: 100})
	pane := &fakePane{}
	if tr.OnBufferUpdate(pane) || pane.gotoBottom != 0 {
		t.Fatal("unpinned tracker must not scroll")
	}
	tr.Reset()
	if !tr.OnBufferUpdate(pane) || pane.gotoBottom != 1 {
		t.Fatal("reset tracker should follow output")
	}
}
