package dbscan

import (
	"errors"
	"math/rand"
	"testing"
)

// randomPoints returns n 2D points from a fixed seed.
func randomPoints(n int) [][]float64 {
	r := rand.New(rand.NewSource(42))
	data := make([][]float64, n)
	for i := range data {
		data[i] = []float64{r.Float64() * 10, r.Float64() * 10}
	}
	return data
}

func TestRegionQuery_Line(t *testing.T) {
	data := [][]float64{{0}, {1}, {2}, {3}}
	ix := NewNeighborIndex(data, nil, 1)

	got := ix.RegionQuery(1, 1.0)
	want := []int{0, 1, 2}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestRegionQuery_IncludesSelf(t *testing.T) {
	data := randomPoints(20)
	ix := NewNeighborIndex(data, nil, 1)
	for i := 0; i < ix.Len(); i++ {
		found := false
		for _, j := range ix.RegionQuery(i, 0.001) {
			if j == i {
				found = true
			}
		}
		if !found {
			t.Errorf("RegionQuery(%d) does not include the point itself", i)
		}
	}
}

func TestRegionQuery_Symmetric(t *testing.T) {
	data := randomPoints(30)
	ix := NewNeighborIndex(data, nil, 1)

	for _, eps := range []float64{0.5, 2, 5} {
		member := make([]map[int]bool, ix.Len())
		for i := 0; i < ix.Len(); i++ {
			member[i] = map[int]bool{}
			for _, j := range ix.RegionQuery(i, eps) {
				member[i][j] = true
			}
		}
		for i := 0; i < ix.Len(); i++ {
			for j := range member[i] {
				if !member[j][i] {
					t.Errorf("eps=%f: %d in region of %d but not vice versa", eps, j, i)
				}
			}
		}
	}
}

func TestRegionQuery_AscendingOrder(t *testing.T) {
	data := randomPoints(25)
	ix := NewNeighborIndex(data, nil, 1)
	for i := 0; i < ix.Len(); i++ {
		got := ix.RegionQuery(i, 4)
		for k := 1; k < len(got); k++ {
			if got[k] <= got[k-1] {
				t.Fatalf("RegionQuery(%d) not strictly ascending: %v", i, got)
			}
		}
	}
}

func TestKDistance_Line(t *testing.T) {
	data := [][]float64{{0}, {1}, {3}}
	ix := NewNeighborIndex(data, nil, 1)

	cases := []struct {
		i, k int
		want float64
	}{
		{0, 1, 1}, {0, 2, 3},
		{1, 1, 1}, {1, 2, 2},
		{2, 1, 2}, {2, 2, 3},
	}
	for _, c := range cases {
		got, err := ix.KDistance(c.i, c.k)
		if err != nil {
			t.Fatalf("KDistance(%d, %d): unexpected error: %v", c.i, c.k, err)
		}
		if got != c.want {
			t.Errorf("KDistance(%d, %d): expected %f, got %f", c.i, c.k, c.want, got)
		}
	}
}

func TestKDistance_Errors(t *testing.T) {
	ix := NewNeighborIndex([][]float64{{0}, {1}, {3}}, nil, 1)

	if _, err := ix.KDistance(0, 0); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("k=0: expected ErrInvalidParameter, got %v", err)
	}
	if _, err := ix.KDistance(0, 3); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("k=n: expected ErrInsufficientData, got %v", err)
	}
	if _, err := ix.KDistances(5); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("KDistances(5): expected ErrInsufficientData, got %v", err)
	}
}

func TestKDistances_MatchesKDistance(t *testing.T) {
	data := randomPoints(15)
	ix := NewNeighborIndex(data, nil, 1)

	all, err := ix.KDistances(4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range data {
		single, err := ix.KDistance(i, 4)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if all[i] != single {
			t.Errorf("point %d: KDistances %f vs KDistance %f", i, all[i], single)
		}
	}
}
