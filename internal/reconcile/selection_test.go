package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intp(i int) *int { return &i }

func TestSelection(t *testing.T) {
	tests := []struct {
		name   string
		prior  *int
		length int
		expect *int
	}{
		{"empty list clears selection", intp(0), 0, nil},
		{"empty list without prior", nil, 0, nil},
		{"in range kept", intp(1), 3, intp(1)},
		{"last row kept", intp(2), 3, intp(2)},
		{"no prior selects first", nil, 2, intp(0)},
		{"out of range selects first", intp(2), 2, intp(0)},
		{"negative selects first", intp(-1), 4, intp(0)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expect, Selection(tc.prior, tc.length))
		})
	}
}

func TestSelection_Bounds(t *testing.T) {
	for n := 0; n <= 6; n++ {
		priors := []*int{nil}
		for i := -2; i <= 8; i++ {
			priors = append(priors, intp(i))
		}
		for _, prior := range priors {
			got := Selection(prior, n)
			if n == 0 {
				assert.Nil(t, got)
				continue
			}
			require.NotNil(t, got)
			assert.GreaterOrEqual(t, *got, 0)
			assert.Less(t, *got, n)
			if prior != nil && *prior >= 0 && *prior < n {
				assert.Equal(t, *prior, *got)
			} else {
				assert.Equal(t, 0, *got)
			}
		}
	}
}

func TestSelection_DoesNotAliasPrior(t *testing.T) {
	prior := intp(1)
	got := Selection(prior, 3)
	*prior = 7
	assert.Equal(t, 1, *got)
}
