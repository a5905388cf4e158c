package priority

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const plainURL = "https://example.com/resources/intro"

func TestCalculateStepFunction(t *testing.T) {
	cases := []struct {
		count int64
		want  int
	}{
		{0, 1},
		{1, 1},
		{2, 2},
		{3, 3},
		{4, 3},
		{5, 4},
		{9, 4},
		{10, 5},
		{11, 5},
		{250, 5},
	}

	for _, tc := range cases {
		res, err := Calculate(Input{RequestCount: tc.count, ResourceURL: plainURL, SourceURL: plainURL})
		require.NoError(t, err)
		assert.Equal(t, tc.want, res.Level, "count %d", tc.count)
	}
}

func TestCalculateTopTiersIgnoreBonuses(t *testing.T) {
	url := "https://example.com/resources/negotiation-playbook"

	for count := int64(5); count < 10; count++ {
		res, err := Calculate(Input{RequestCount: count, DaysSinceFirst: 40, ResourceURL: url})
		require.NoError(t, err)
		assert.Equal(t, 4, res.Level)
	}

	for count := int64(10); count < 30; count++ {
		res, err := Calculate(Input{RequestCount: count, DaysSinceFirst: 40, ResourceURL: url})
		require.NoError(t, err)
		assert.Equal(t, 5, res.Level)
	}
}

func TestCalculateMonotonic(t *testing.T) {
	urls := []string{plainURL, "https://example.com/pricing-template"}

	for _, u := range urls {
		for days := 0; days <= 30; days += 7 {
			prev := 0
			for count := int64(1); count <= 15; count++ {
				res, err := Calculate(Input{RequestCount: count, DaysSinceFirst: days, ResourceURL: u})
				require.NoError(t, err)
				assert.GreaterOrEqual(t, res.Level, prev, "url %s days %d count %d", u, days, count)
				assert.GreaterOrEqual(t, res.Level, MinLevel)
				assert.LessOrEqual(t, res.Level, MaxLevel)
				prev = res.Level
			}
		}
	}
}

func TestCalculateBonuses(t *testing.T) {
	res, err := Calculate(Input{RequestCount: 1, ResourceURL: "https://example.com/downloads/Pricing-Guide.pdf"})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Level)
	assert.True(t, hasFactor(res, "high_value_resource"))

	res, err = Calculate(Input{RequestCount: 2, DaysSinceFirst: 20, ResourceURL: plainURL})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Level)
	assert.True(t, hasFactor(res, "long_standing_demand"))

	// Both bonuses on top of level 3 stop at 4
	res, err = Calculate(Input{RequestCount: 3, DaysSinceFirst: 20, ResourceURL: "https://example.com/audit-checklist"})
	require.NoError(t, err)
	assert.Equal(t, 4, res.Level)
	assert.True(t, res.High())
}

func TestCalculateInformationalFactors(t *testing.T) {
	res, err := Calculate(Input{RequestCount: 1, ResourceURL: plainURL})
	require.NoError(t, err)
	assert.True(t, hasFactor(res, "direct_request"))

	res, err = Calculate(Input{RequestCount: 1, ResourceURL: plainURL, SourceURL: "https://news.ycombinator.com/item?id=1"})
	require.NoError(t, err)
	assert.True(t, hasFactor(res, "external_referral"))
	assert.Equal(t, 1, res.Level)

	res, err = Calculate(Input{RequestCount: 1, ResourceURL: plainURL, SourceURL: "https://www.example.com/blog"})
	require.NoError(t, err)
	assert.False(t, hasFactor(res, "external_referral"))
}

func TestCalculateInvalidInput(t *testing.T) {
	_, err := Calculate(Input{RequestCount: -1})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = Calculate(Input{RequestCount: 1, DaysSinceFirst: -2})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func hasFactor(r Result, name string) bool {
	for _, f := range r.Factors {
		if f.Name == name {
			return true
		}
	}

	return false
}
