package summary

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/jadenpxrk/fastats/internal/fasta"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fastaOf builds a FASTA document with one sequence per length, wrapped at
// 60 residues per line.
func fastaOf(lengths ...int) string {
	var b strings.Builder
	for i, n := range lengths {
		fmt.Fprintf(&b, ">seq%d\n", i)
		seq := strings.Repeat("A", n)
		for len(seq) > 60 {
			b.WriteString(seq[:60] + "\n")
			seq = seq[60:]
		}
		if seq != "" {
			b.WriteString(seq + "\n")
		}
	}
	return b.String()
}

func TestSummarizeTwoSequences(t *testing.T) {
	s, err := Summarize("two.fa", strings.NewReader(fastaOf(120, 237)), 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"two.fa", "2", "357", "120", "178", "237"}, s.Fields())
}

func TestSummarizeEmptyFile(t *testing.T) {
	s, err := Summarize("empty.fa", strings.NewReader(""), 0)
	require.NoError(t, err)
	assert.Nil(t, s.Extent)
	assert.Equal(t, []string{"empty.fa", "0", "0", "-", "-", "-"}, s.Fields())

	_, ok := s.Average()
	assert.False(t, ok)
}

func TestSummarizeMinLenExcludesShortSequences(t *testing.T) {
	s, err := Summarize("f", strings.NewReader(fastaOf(10, 50, 100)), 50)
	require.NoError(t, err)
	assert.Equal(t, []string{"f", "2", "150", "50", "75", "100"}, s.Fields())

	s, err = Summarize("f", strings.NewReader(fastaOf(10, 50, 100)), 101)
	require.NoError(t, err)
	assert.Equal(t, []string{"f", "0", "0", "-", "-", "-"}, s.Fields())
}

func TestZeroLengthSequenceIsNotAbsence(t *testing.T) {
	s, err := Summarize("z", strings.NewReader(">a\n>b\n"), 0)
	require.NoError(t, err)
	require.NotNil(t, s.Extent)
	assert.Equal(t, []string{"z", "2", "0", "0", "0", "0"}, s.Fields())
}

func TestSummarizeParseErrorYieldsNoSummary(t *testing.T) {
	s, err := Summarize("bad", strings.NewReader("ACGT\n>a\nAC\n"), 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, fasta.ErrMalformed))
	assert.Equal(t, Summary{}, s)
}

func TestAccumulatorAddReportsFilter(t *testing.T) {
	acc := Accumulator{MinLen: 5}
	assert.False(t, acc.Add(4))
	assert.True(t, acc.Add(5))
	assert.True(t, acc.Add(9))
	s := acc.Summary("x")
	assert.Equal(t, 2, s.NumSeq)
	assert.Equal(t, int64(14), s.Total)
	assert.Equal(t, &Extent{Min: 5, Max: 9}, s.Extent)

	// the finalized summary does not alias accumulator state
	acc.Add(100)
	assert.Equal(t, 9, s.Extent.Max)
}

func TestAverageFloors(t *testing.T) {
	s := Summary{NumSeq: 3, Total: 11, Extent: &Extent{Min: 1, Max: 5}}
	avg, ok := s.Average()
	require.True(t, ok)
	assert.Equal(t, int64(3), avg)
}

func TestSummarizeMatchesDirectAggregation(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 50; trial++ {
		lengths := make([]int, rng.Intn(20))
		for i := range lengths {
			lengths[i] = rng.Intn(300)
		}
		minLen := rng.Intn(200)

		var kept []int
		for _, n := range lengths {
			if n >= minLen {
				kept = append(kept, n)
			}
		}

		s, err := Summarize("r", strings.NewReader(fastaOf(lengths...)), minLen)
		require.NoError(t, err)
		require.Equal(t, len(kept), s.NumSeq)
		if len(kept) == 0 {
			assert.Nil(t, s.Extent)
			assert.Zero(t, s.Total)
			continue
		}

		var total int64
		lo, hi := kept[0], kept[0]
		for _, n := range kept {
			total += int64(n)
			lo = min(lo, n)
			hi = max(hi, n)
		}
		assert.Equal(t, total, s.Total)
		assert.Equal(t, lo, s.Extent.Min)
		assert.Equal(t, hi, s.Extent.Max)
		avg, ok := s.Average()
		require.True(t, ok)
		assert.Equal(t, total/int64(len(kept)), avg)
	}
}

func TestRaisingMinLenNeverIncreasesCounts(t *testing.T) {
	doc := fastaOf(0, 3, 17, 17, 60, 61, 240, 999)
	prevN, prevTotal := -1, int64(-1)
	for minLen := 1000; minLen >= 0; minLen -= 7 {
		s, err := Summarize("m", strings.NewReader(doc), minLen)
		require.NoError(t, err)
		if prevN >= 0 {
			assert.GreaterOrEqual(t, s.NumSeq, prevN)
			assert.GreaterOrEqual(t, s.Total, prevTotal)
		}
		prevN, prevTotal = s.NumSeq, s.Total
	}
}
