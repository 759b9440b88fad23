package hist

import (
	"github.com/VividCortex/gohistogram"
	"github.com/cockroachdb/errors"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"math"
	"math/rand"
	"testing"
)

func mustNew(t *testing.T, capacity int) *StreamHist {
	h, err := New(capacity)
	require.NoError(t, err)
	return h
}

func mustInsert(t *testing.T, h *StreamHist, values ...float64) {
	for _, value := range values {
		require.NoError(t, h.Insert(value))
	}
}

func mustSnapshot(t *testing.T, snapshot Snapshot) *StreamHist {
	h, err := FromSnapshot(snapshot)
	require.NoError(t, err)
	return h
}

func assertBins(t *testing.T, expected []Bin, h *StreamHist) {
	t.Helper()
	if diff := cmp.Diff(expected, h.Bins()); diff != "" {
		t.Fatalf("unexpected bins (-want +got):\n%s", diff)
	}
}

func assertInvariants(t *testing.T, h *StreamHist) {
	t.Helper()
	bins := h.Bins()
	require.LessOrEqual(t, len(bins), h.Capacity())
	for i := 1; i < len(bins); i++ {
		require.Less(t, bins[i-1].Mean, bins[i].Mean)
	}
	require.Equal(t, sumCounts(bins), h.Count())
}

func TestNew_InvalidCapacity(t *testing.T) {
	for _, capacity := range []int{0, -1} {
		h, err := New(capacity)
		assert.Nil(t, h)
		assert.True(t, errors.Is(err, ErrInvalidCapacity))
	}
}

func TestNew_Empty(t *testing.T) {
	h := mustNew(t, 5)
	assert.True(t, h.IsEmpty())
	assert.Equal(t, uint64(0), h.Count())
	assert.Equal(t, 5, h.Capacity())
	_, err := h.Min()
	assert.True(t, errors.Is(err, ErrEmptyHistogram))
}

func TestInsert_Invalid(t *testing.T) {
	h := mustNew(t, 3)
	mustInsert(t, h, 1, 2, 3)
	for _, value := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		err := h.Insert(value)
		assert.True(t, errors.Is(err, ErrInvalidInput), "value %v", value)
	}
	assert.Equal(t, uint64(3), h.Count())
	assertBins(t, []Bin{{1, 1}, {2, 1}, {3, 1}}, h)
}

func TestInsert(t *testing.T) {
	h := mustNew(t, 3)

	mustInsert(t, h, 10)
	assertBins(t, []Bin{{10, 1}}, h)

	mustInsert(t, h, 30, 20)
	assertBins(t, []Bin{{10, 1}, {20, 1}, {30, 1}}, h)

	// repeated value increments its bin
	mustInsert(t, h, 10)
	assertBins(t, []Bin{{10, 2}, {20, 1}, {30, 1}}, h)

	mustInsert(t, h, 35)
	assertBins(t, []Bin{{10, 2}, {20, 1}, {32.5, 2}}, h)

	mustInsert(t, h, 1)
	assertBins(t, []Bin{{7, 3}, {20, 1}, {32.5, 2}}, h)

	mustInsert(t, h, 37)
	assertBins(t, []Bin{{7, 3}, {20, 1}, {34, 3}}, h)

	mustInsert(t, h, 22)
	assertBins(t, []Bin{{7, 3}, {21, 2}, {34, 3}}, h)

	min, err := h.Min()
	require.NoError(t, err)
	max, err := h.Max()
	require.NoError(t, err)
	assert.Equal(t, 1.0, min)
	assert.Equal(t, 37.0, max)
	assert.Equal(t, uint64(8), h.Count())
}

func TestInsert_ExactExample(t *testing.T) {
	h := mustNew(t, 3)
	mustInsert(t, h, 1, 2, 3)
	assert.Equal(t, 3, h.Len())

	mustInsert(t, h, 4)
	assertBins(t, []Bin{{1.5, 2}, {3, 1}, {4, 1}}, h)
	assert.Equal(t, uint64(4), h.Count())

	mean, err := h.Mean()
	require.NoError(t, err)
	assert.InDelta(t, 2.5, mean, 1e-12)
}

func TestInsert_Invariants(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for capacity := 1; capacity <= 8; capacity++ {
		h := mustNew(t, capacity)
		for i := 0; i < 500; i++ {
			value := math.Round(rng.NormFloat64()*100) / 10
			require.NoError(t, h.Insert(value))
			assertInvariants(t, h)
			require.Equal(t, uint64(i+1), h.Count())
		}
	}
}

func TestInsert_CapacityOne(t *testing.T) {
	h := mustNew(t, 1)
	mustInsert(t, h, 1, 2, 3, 6)
	assertBins(t, []Bin{{3, 4}}, h)
}

func TestInsert_MatchesReference(t *testing.T) {
	// gohistogram implements the same update procedure, including the
	// leftmost choice among equally close bins.
	rng := rand.New(rand.NewSource(7))
	h := mustNew(t, 16)
	reference := gohistogram.NewHistogram(16)
	for i := 0; i < 2000; i++ {
		value := rng.ExpFloat64() * 10
		require.NoError(t, h.Insert(value))
		reference.Add(value)
	}

	mean, err := h.Mean()
	require.NoError(t, err)
	variance, err := h.Variance()
	require.NoError(t, err)
	assert.Equal(t, reference.Count(), float64(h.Count()))
	assert.InDelta(t, reference.Mean(), mean, 1e-9)
	assert.InDelta(t, reference.Variance(), variance, 1e-6)
}

func TestResize(t *testing.T) {
	h, err := FromValues(1, 2, 3, 4, 5, 6, 7, 8, 9, 10)
	require.NoError(t, err)
	assert.Equal(t, 10, h.Capacity())
	assert.Equal(t, 10, h.Len())

	require.NoError(t, h.Resize(5))
	expected := []Bin{{1.5, 2}, {3.5, 2}, {5.5, 2}, {7.5, 2}, {9.5, 2}}
	assertBins(t, expected, h)
	assert.Equal(t, 5, h.Capacity())
	assert.Equal(t, uint64(10), h.Count())

	// growing only raises the ceiling
	require.NoError(t, h.Resize(20))
	assertBins(t, expected, h)
	assert.Equal(t, 20, h.Capacity())

	min, _ := h.Min()
	max, _ := h.Max()
	assert.Equal(t, 1.0, min)
	assert.Equal(t, 10.0, max)
}

func TestResize_Idempotent(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	h := mustNew(t, 50)
	for i := 0; i < 300; i++ {
		mustInsert(t, h, rng.Float64()*100)
	}
	require.NoError(t, h.Resize(7))
	once := h.Bins()
	require.NoError(t, h.Resize(7))
	assert.Equal(t, once, h.Bins())
	assertInvariants(t, h)
}

func TestResize_Invalid(t *testing.T) {
	h := mustNew(t, 3)
	mustInsert(t, h, 1, 2, 3)
	assert.True(t, errors.Is(h.Resize(0), ErrInvalidCapacity))
	assert.Equal(t, 3, h.Capacity())
	assert.Equal(t, 3, h.Len())
}

func TestMerge(t *testing.T) {
	h1, err := FromValues(1, 2, 3)
	require.NoError(t, err)
	h2 := mustSnapshot(t, Snapshot{
		Capacity: 4,
		Bins:     []Bin{{0, 1}, {1, 2}, {2.5, 1}, {6, 2}},
		Min:      math.NaN(),
		Max:      math.NaN(),
	})
	h1Before, h2Before := h1.Clone(), h2.Clone()

	merged := h1.Merge(h2)
	assert.Equal(t, 4, merged.Capacity())
	assertBins(t, []Bin{{0, 1}, {1, 3}, {2.5, 3}, {6, 2}}, merged)
	assert.Equal(t, h1.Count()+h2.Count(), merged.Count())

	min, _ := merged.Min()
	max, _ := merged.Max()
	assert.Equal(t, 0.0, min)
	assert.Equal(t, 6.0, max)

	// inputs stay untouched and independent of the result
	assert.True(t, h1.Equal(h1Before))
	assert.True(t, h2.Equal(h2Before))
	mustInsert(t, merged, 100)
	assert.True(t, h1.Equal(h1Before))
	assert.True(t, h2.Equal(h2Before))
}

func TestMerge_Empty(t *testing.T) {
	merged := mustNew(t, 2).Merge(mustNew(t, 5))
	assert.True(t, merged.IsEmpty())
	assert.Equal(t, 5, merged.Capacity())

	h, err := FromValues(3, 4)
	require.NoError(t, err)
	merged = mustNew(t, 1).Merge(h)
	assert.True(t, merged.Equal(h))
}

func TestMerge_Mass(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 20; i++ {
		a := mustNew(t, 1+rng.Intn(10))
		b := mustNew(t, 1+rng.Intn(10))
		for j := rng.Intn(200); j > 0; j-- {
			mustInsert(t, a, math.Round(rng.Float64()*50))
		}
		for j := rng.Intn(200); j > 0; j-- {
			mustInsert(t, b, math.Round(rng.Float64()*50))
		}
		merged := a.Merge(b)
		assert.Equal(t, a.Count()+b.Count(), merged.Count())
		assertInvariants(t, merged)
	}
}

func TestMergeAll(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	hists := make([]*StreamHist, 4)
	total := uint64(0)
	for i := range hists {
		hists[i] = mustNew(t, 4+i)
		for j := 0; j < 100; j++ {
			mustInsert(t, hists[i], math.Round(rng.NormFloat64()*20))
		}
		total += hists[i].Count()
	}

	merged, err := MergeAll(hists...)
	require.NoError(t, err)
	assert.Equal(t, 7, merged.Capacity())
	assert.Equal(t, total, merged.Count())
	assertInvariants(t, merged)

	pairwise, err := MergeAll(hists[0], hists[1])
	require.NoError(t, err)
	assert.True(t, pairwise.Equal(hists[0].Merge(hists[1])))

	_, err = MergeAll()
	assert.Error(t, err)
}

func TestClone(t *testing.T) {
	h, err := FromValues(1, 2, 3)
	require.NoError(t, err)
	clone := h.Clone()
	assert.True(t, clone.Equal(h))

	mustInsert(t, clone, 10)
	assert.False(t, clone.Equal(h))
	assertBins(t, []Bin{{1, 1}, {2, 1}, {3, 1}}, h)
}

func TestSnapshot_RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	h := mustNew(t, 12)
	for i := 0; i < 400; i++ {
		mustInsert(t, h, rng.NormFloat64())
	}
	restored := mustSnapshot(t, h.Snapshot())
	assert.True(t, restored.Equal(h))

	empty := mustSnapshot(t, mustNew(t, 3).Snapshot())
	assert.True(t, empty.IsEmpty())
	assert.Equal(t, 3, empty.Capacity())
}

func TestFromSnapshot_Canonical(t *testing.T) {
	h := mustSnapshot(t, Snapshot{
		Capacity: 5,
		Bins:     []Bin{{5, 1}, {1, 1}, {3, 2}, {1, 2}},
		Min:      math.NaN(),
		Max:      math.NaN(),
	})
	assertBins(t, []Bin{{1, 3}, {3, 2}, {5, 1}}, h)
	min, _ := h.Min()
	max, _ := h.Max()
	assert.Equal(t, 1.0, min)
	assert.Equal(t, 5.0, max)

	// extremes inside the bin range are ignored
	h = mustSnapshot(t, Snapshot{Capacity: 2, Bins: []Bin{{1, 1}, {2, 1}}, Min: 1.5, Max: 3})
	min, _ = h.Min()
	max, _ = h.Max()
	assert.Equal(t, 1.0, min)
	assert.Equal(t, 3.0, max)
}

func TestFromSnapshot_Invalid(t *testing.T) {
	cases := []struct {
		name     string
		snapshot Snapshot
		err      error
	}{
		{"capacity", Snapshot{Capacity: 0}, ErrInvalidCapacity},
		{"too many bins", Snapshot{Capacity: 1, Bins: []Bin{{1, 1}, {2, 1}}}, ErrInvalidCapacity},
		{"NaN mean", Snapshot{Capacity: 2, Bins: []Bin{{math.NaN(), 1}}}, ErrInvalidInput},
		{"infinite mean", Snapshot{Capacity: 2, Bins: []Bin{{math.Inf(1), 1}}}, ErrInvalidInput},
		{"zero count", Snapshot{Capacity: 2, Bins: []Bin{{1, 0}}}, ErrInvalidInput},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := FromSnapshot(c.snapshot)
			assert.True(t, errors.Is(err, c.err), "got %v", err)
		})
	}
}
