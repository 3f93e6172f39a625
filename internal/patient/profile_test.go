package patient

import (
	"errors"
	"math"
	"math/rand"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/synheart/synheart-bpsim/internal/history"
	"github.com/synheart/synheart-bpsim/internal/models"
)

// fixedRand replays a fixed sequence of draws, repeating the last one
type fixedRand struct {
	draws []float64
	i     int
}

func (r *fixedRand) Float64() float64 {
	v := r.draws[r.i]
	if r.i < len(r.draws)-1 {
		r.i++
	}
	return v
}

func testDiary() *history.MemoryProvider {
	return history.NewMemoryProvider(
		[]string{"Datetime", "SBP", "DBP"},
		[][]string{
			{"2021-03-01 08:00:00", "120", "70"},
			{"2021-03-03 08:00:00", "70", "60"},
			{"2021-03-04 08:00:00", "118", "66"},
		},
	)
}

func TestNewProfile(t *testing.T) {
	p, err := NewProfile(testDiary(), history.DefaultColumns())
	require.NoError(t, err)

	assert.InDelta(t, 102.7, p.MeanSBP(), 0.05)
	assert.InDelta(t, 65.3, p.MeanDBP(), 0.05)

	probs := p.Probabilities()
	assert.Equal(t, Probabilities{Normal: 0.5, Bad: 0.25, Missing: 0.25}, probs)
	assert.NoError(t, probs.Validate())

	assert.Equal(t, models.StateNormal, p.InitialState())
	assert.Equal(t, p.InitialState(), p.CurrentState())
	assert.Equal(t, map[models.State]int{models.StateNormal: 2, models.StateBad: 1, models.StateMissing: 1}, p.Counts())
}

func TestNewProfile_NotFound(t *testing.T) {
	provider := history.NewDelimitedProvider(filepath.Join(t.TempDir(), "not-existing.tsv"), 0)

	_, err := NewProfile(provider, history.DefaultColumns())
	require.Error(t, err)

	var nf *models.NotFoundError
	assert.True(t, errors.As(err, &nf))
}

func TestClassify_MultipleReadingsPerDayAndNulls(t *testing.T) {
	provider := history.NewMemoryProvider(
		[]string{"Datetime", "SBP", "DBP"},
		[][]string{
			{"2021-01-01T07:00:00", "130", "85"},
			{"2021-01-01T19:00:00", "190", "100"},
			{"2021-01-01T22:00:00", "", ""},
			{"2021-01-05T07:00:00", "125", "80"},
		},
	)
	dated, err := provider.LoadDated("SBP", "DBP", "Datetime")
	require.NoError(t, err)

	probs, counts, err := Classify(dated, models.DefaultThresholds())
	require.NoError(t, err)

	// 3 readings on day 1, 3 empty days, 1 reading on day 5
	assert.Equal(t, 2, counts[models.StateNormal])
	assert.Equal(t, 1, counts[models.StateBad])
	assert.Equal(t, 4, counts[models.StateMissing])
	assert.InDelta(t, 1.0, probs.Sum(), 1e-12)
	assert.Equal(t, models.StateMissing, probs.MostLikely())
}

func TestClassify_Empty(t *testing.T) {
	_, _, err := Classify(nil, models.DefaultThresholds())
	assert.True(t, errors.Is(err, models.ErrInsufficientData))
}

func TestProbabilities_SumToOne(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for trial := 0; trial < 25; trial++ {
		rows := make([][]string, 0)
		for day := 1; day <= 28; day++ {
			if rng.Float64() < 0.3 {
				continue
			}
			sbp := 60 + rng.Intn(140)
			dbp := 40 + rng.Intn(90)
			rows = append(rows, []string{
				"2022-02-" + twoDigits(day) + " 08:00",
				itoa(sbp),
				itoa(dbp),
			})
		}
		if len(rows) == 0 {
			continue
		}
		p, err := NewProfile(history.NewMemoryProvider([]string{"Datetime", "SBP", "DBP"}, rows), history.DefaultColumns())
		require.NoError(t, err)
		assert.InDelta(t, 1.0, p.Probabilities().Sum(), 1e-9)
	}
}

func TestMostLikely_TieBreak(t *testing.T) {
	assert.Equal(t, models.StateNormal, Probabilities{Normal: 0.4, Bad: 0.4, Missing: 0.2}.MostLikely())
	assert.Equal(t, models.StateBad, Probabilities{Normal: 0.2, Bad: 0.4, Missing: 0.4}.MostLikely())
	assert.Equal(t, models.StateNormal, Probabilities{Normal: 1.0 / 3, Bad: 1.0 / 3, Missing: 1.0 / 3}.MostLikely())
}

func TestAscending_StableOnTies(t *testing.T) {
	probs := Probabilities{Normal: 0.5, Bad: 0.25, Missing: 0.25}
	assert.Equal(t, []models.State{models.StateBad, models.StateMissing, models.StateNormal}, probs.Ascending())
}

func TestTransition_StateChanges(t *testing.T) {
	p, err := NewProfile(testDiary(), history.DefaultColumns())
	require.NoError(t, err)

	p.Transition(&fixedRand{draws: []float64{0.2}})
	assert.NotEqual(t, p.InitialState(), p.CurrentState())
	assert.Equal(t, models.StateBad, p.CurrentState())

	p.Reset()
	assert.Equal(t, models.StateNormal, p.CurrentState())
}

func TestTwoSided(t *testing.T) {
	probs := Probabilities{Normal: 0.5, Bad: 0.25, Missing: 0.25}

	tests := []struct {
		name    string
		draws   []float64
		current models.State
		want    models.State
	}{
		{"lower half small draw", []float64{0.1, 0.2}, models.StateNormal, models.StateBad},
		{"lower half near 0.5", []float64{0.1, 0.9}, models.StateBad, models.StateNormal},
		{"upper half draw at 0.5", []float64{0.7, 0.0}, models.StateBad, models.StateNormal},
		{"upper half no match keeps state", []float64{0.7, 0.5}, models.StateMissing, models.StateMissing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TwoSided{}.Next(&fixedRand{draws: tt.draws}, tt.current, probs)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCategorical(t *testing.T) {
	probs := Probabilities{Normal: 0.5, Bad: 0.25, Missing: 0.25}

	assert.Equal(t, models.StateNormal, Categorical{}.Next(&fixedRand{draws: []float64{0.49}}, models.StateBad, probs))
	assert.Equal(t, models.StateBad, Categorical{}.Next(&fixedRand{draws: []float64{0.5}}, models.StateNormal, probs))
	assert.Equal(t, models.StateMissing, Categorical{}.Next(&fixedRand{draws: []float64{0.99}}, models.StateNormal, probs))

	rng := rand.New(rand.NewSource(11))
	counts := map[models.State]int{}
	const n = 20000
	for i := 0; i < n; i++ {
		counts[Categorical{}.Next(rng, models.StateNormal, probs)]++
	}
	for _, s := range models.States {
		assert.InDelta(t, probs.Of(s), float64(counts[s])/n, 0.02, string(s))
	}
}

func TestPolicyByName(t *testing.T) {
	p, err := PolicyByName("")
	require.NoError(t, err)
	assert.Equal(t, "two-sided", p.Name())

	p, err = PolicyByName("categorical")
	require.NoError(t, err)
	assert.Equal(t, "categorical", p.Name())

	_, err = PolicyByName("markov")
	assert.Error(t, err)
}

func TestProbabilities_Validate(t *testing.T) {
	assert.Error(t, Probabilities{Normal: 0.5, Bad: 0.4}.Validate())
	assert.Error(t, Probabilities{Normal: 1.2, Bad: -0.2}.Validate())
	assert.Error(t, Probabilities{Normal: math.NaN()}.Validate())
	assert.NoError(t, Probabilities{Missing: 1}.Validate())
}

func twoDigits(n int) string {
	if n < 10 {
		return "0" + itoa(n)
	}
	return itoa(n)
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
