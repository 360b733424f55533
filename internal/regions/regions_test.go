package regions

import (
	"math"
	"testing"

	"github.com/ironsheep/subpixel-mcp/internal/ndimage"
)

func mustImage(t *testing.T, data []float64, sizes ...int) *ndimage.Image {
	t.Helper()
	img, err := ndimage.New(data, sizes...)
	if err != nil {
		t.Fatalf("failed to create image: %v", err)
	}
	return img
}

func TestLabelMaxima(t *testing.T) {
	// Two isolated peaks and one two-pixel plateau.
	img := mustImage(t, []float64{
		0, 0, 0, 0, 0, 0,
		0, 5, 0, 0, 0, 0,
		0, 0, 0, 3, 3, 0,
		0, 0, 0, 0, 0, 0,
		0, 0, 7, 0, 0, 0,
	}, 6, 5)

	labels, err := LabelMaxima(img, 2)
	if err != nil {
		t.Fatalf("LabelMaxima failed: %v", err)
	}
	if labels.Count != 3 {
		t.Fatalf("Count: got %d, want 3", labels.Count)
	}
	if labels.Data[1+6*1] != 1 {
		t.Errorf("first peak label: got %d, want 1", labels.Data[7])
	}
	if labels.Data[3+6*2] != 2 || labels.Data[4+6*2] != 2 {
		t.Errorf("plateau should share label 2")
	}
	if labels.Data[2+6*4] != 3 {
		t.Errorf("third peak label: got %d, want 3", labels.Data[26])
	}
}

func TestLabelMaxima_ConstantImage(t *testing.T) {
	img := mustImage(t, make([]float64, 16), 4, 4)
	labels, err := LabelMaxima(img, 2)
	if err != nil {
		t.Fatalf("LabelMaxima failed: %v", err)
	}
	if labels.Count != 1 {
		t.Fatalf("constant image should be one plateau, got %d", labels.Count)
	}
	labels.DiscardBorder()
	for _, l := range labels.Data {
		if l != 0 {
			t.Fatal("border-touching plateau was not discarded")
		}
	}
}

func TestLabelMinima(t *testing.T) {
	img := mustImage(t, []float64{
		9, 9, 9, 9, 9,
		9, 9, 9, 9, 9,
		9, 9, 1, 9, 9,
		9, 9, 9, 9, 9,
	}, 5, 4)
	labels, err := LabelMinima(img, 2)
	if err != nil {
		t.Fatalf("LabelMinima failed: %v", err)
	}
	if labels.Count != 1 || labels.Data[2+5*2] != 1 {
		t.Errorf("expected single minimum at (2,2), got count %d", labels.Count)
	}
}

func TestLabel_NaNSamples(t *testing.T) {
	nan := math.NaN()
	img := mustImage(t, []float64{
		0, 0, 0, 0, 0, 0,
		0, nan, 0, 0, 0, 0,
		0, 0, 0, 4, nan, 0,
		0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0,
	}, 6, 5)

	maxima, err := LabelMaxima(img, 2)
	if err != nil {
		t.Fatalf("LabelMaxima failed: %v", err)
	}
	if maxima.Count != 1 || maxima.Data[3+6*2] != 1 {
		t.Errorf("expected the single maximum at (3,2), got count %d", maxima.Count)
	}

	minima, err := LabelMinima(img, 2)
	if err != nil {
		t.Fatalf("LabelMinima failed: %v", err)
	}
	for _, idx := range []int{1 + 6*1, 4 + 6*2} {
		if maxima.Data[idx] != 0 || minima.Data[idx] != 0 {
			t.Errorf("NaN sample %d should not be labelled", idx)
		}
	}
	// The zero background is one plateau around the NaNs and the peak.
	if minima.Count != 1 {
		t.Errorf("minima count: got %d, want 1", minima.Count)
	}
}

func TestLabel_Connectivity(t *testing.T) {
	// Diagonal pair: one region with full connectivity, two with face connectivity.
	img := mustImage(t, []float64{
		0, 0, 0, 0,
		0, 4, 0, 0,
		0, 0, 4, 0,
		0, 0, 0, 0,
	}, 4, 4)

	tests := []struct {
		connectivity int
		want         int
	}{
		{1, 2},
		{2, 1},
	}
	for _, tt := range tests {
		labels, err := LabelMaxima(img, tt.connectivity)
		if err != nil {
			t.Fatalf("LabelMaxima failed: %v", err)
		}
		if labels.Count != tt.want {
			t.Errorf("connectivity %d: got %d regions, want %d", tt.connectivity, labels.Count, tt.want)
		}
	}

	if _, err := LabelMaxima(img, 3); err == nil {
		t.Error("connectivity above dimensionality should fail")
	}
}

func TestLabels_Mask(t *testing.T) {
	img := mustImage(t, []float64{
		0, 0, 0, 0, 0,
		0, 5, 0, 6, 0,
		0, 0, 0, 0, 0,
	}, 5, 3)
	labels, _ := LabelMaxima(img, 2)

	// Column mask broadcast along y: hide x=3.
	mask, _ := ndimage.New([]bool{true, true, true, false, true}, 5, 1)
	if err := labels.Mask(mask); err != nil {
		t.Fatalf("Mask failed: %v", err)
	}
	if labels.Data[1+5] == 0 {
		t.Error("unmasked peak was removed")
	}
	if labels.Data[3+5] != 0 {
		t.Error("masked peak was kept")
	}
}

func TestMeasure(t *testing.T) {
	img := mustImage(t, []float64{
		0, 0, 0, 0, 0, 0,
		0, 5, 0, 0, 0, 0,
		0, 0, 0, 3, 3, 0,
		0, 0, 0, 0, 0, 0,
	}, 6, 4)
	labels, _ := LabelMaxima(img, 2)
	labels.DiscardBorder()

	ms, err := Measure(labels, img)
	if err != nil {
		t.Fatalf("Measure failed: %v", err)
	}
	if len(ms) != 2 {
		t.Fatalf("got %d measurements, want 2", len(ms))
	}

	if ms[0].Size != 1 || ms[0].Centroid[0] != 1 || ms[0].Centroid[1] != 1 || ms[0].Mean != 5 {
		t.Errorf("first region: %+v", ms[0])
	}
	if ms[1].Size != 2 || math.Abs(ms[1].Centroid[0]-3.5) > 1e-12 || ms[1].Centroid[1] != 2 || ms[1].Mean != 3 {
		t.Errorf("plateau region: %+v", ms[1])
	}
}

func TestNeighbourhood(t *testing.T) {
	tests := []struct {
		nd, conn, want int
	}{
		{1, 1, 2},
		{2, 1, 4},
		{2, 2, 8},
		{3, 1, 6},
		{3, 2, 18},
		{3, 3, 26},
	}
	for _, tt := range tests {
		if got := len(neighbourhood(tt.nd, tt.conn)); got != tt.want {
			t.Errorf("neighbourhood(%d,%d): got %d, want %d", tt.nd, tt.conn, got, tt.want)
		}
	}
}
