package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZanzyTHEbar/glucoscreen/internal/types"
)

func groupNames(groups []AdviceGroup) []string {
	names := make([]string, len(groups))
	for i, g := range groups {
		names[i] = g.Group
	}
	return names
}

func TestAdvisoryRules_Table(t *testing.T) {
	expected := []struct {
		group string
		lines int
	}{
		{GroupGlucose, 5},
		{GroupInsulin, 4},
		{GroupFamilyHistory, 4},
		{GroupAge, 2},
		{GroupBloodPressure, 4},
		{GroupSkin, 4},
		{GroupBMI, 5},
	}

	rules := AdvisoryRules()
	require.Len(t, rules, len(expected))
	for i, e := range expected {
		assert.Equal(t, e.group, rules[i].Group)
		assert.Len(t, rules[i].Lines, e.lines, e.group)
	}
}

func TestEvaluateAdviceGroups(t *testing.T) {
	// baseline: nothing elevated, secondary guard holds, secondary values low
	base := types.FeatureVector{1, 100, 70, 20, 20, 25, 0.3, 30}

	with := func(changes map[types.Field]float64) types.FeatureVector {
		v := base
		for f, val := range changes {
			v[f] = val
		}
		return v
	}

	tests := []struct {
		name     string
		vector   types.FeatureVector
		expected []string
	}{
		{
			name:     "nothing fires",
			vector:   base,
			expected: []string{},
		},
		{
			name:     "glucose 125 is not elevated",
			vector:   with(map[types.Field]float64{types.Glucose: 125}),
			expected: []string{},
		},
		{
			name:     "glucose 126 fires",
			vector:   with(map[types.Field]float64{types.Glucose: 126}),
			expected: []string{GroupGlucose},
		},
		{
			name:     "insulin 31 fires",
			vector:   with(map[types.Field]float64{types.Insulin: 31}),
			expected: []string{GroupInsulin},
		},
		{
			name:     "dpf above 0.5 fires",
			vector:   with(map[types.Field]float64{types.DiabetesPedigreeFunction: 0.51}),
			expected: []string{GroupFamilyHistory},
		},
		{
			name:     "age 61 fires",
			vector:   with(map[types.Field]float64{types.Age: 61}),
			expected: []string{GroupAge},
		},
		{
			name:     "secondary groups fire under the guard",
			vector:   with(map[types.Field]float64{types.BloodPressure: 81, types.SkinThickness: 31, types.BMI: 30.1}),
			expected: []string{GroupBloodPressure, GroupSkin, GroupBMI},
		},
		{
			name:     "secondary thresholds are exclusive",
			vector:   with(map[types.Field]float64{types.BloodPressure: 80, types.SkinThickness: 30, types.BMI: 30}),
			expected: []string{},
		},
		{
			name:     "insulin 25 still unlocks the secondary block",
			vector:   with(map[types.Field]float64{types.Insulin: 25, types.BMI: 35}),
			expected: []string{GroupBMI},
		},
		{
			name:     "insulin 28 fires nothing and locks the secondary block",
			vector:   with(map[types.Field]float64{types.Insulin: 28, types.BloodPressure: 90, types.SkinThickness: 40, types.BMI: 35}),
			expected: []string{},
		},
		{
			name:     "insulin 30 is still inside the gap",
			vector:   with(map[types.Field]float64{types.Insulin: 30, types.BMI: 35}),
			expected: []string{},
		},
		{
			name:     "primary age rule suppresses secondary block",
			vector:   with(map[types.Field]float64{types.Age: 65, types.BloodPressure: 90}),
			expected: []string{GroupAge},
		},
		{
			name:     "primary glucose rule suppresses secondary block",
			vector:   with(map[types.Field]float64{types.Glucose: 150, types.BMI: 40}),
			expected: []string{GroupGlucose},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, groupNames(EvaluateAdviceGroups(tt.vector)))
		})
	}
}

func TestEvaluateAdvice_ScenarioB(t *testing.T) {
	v := types.FeatureVector{2, 180, 85, 35, 40, 34.0, 0.6, 65}

	groups := EvaluateAdviceGroups(v)
	assert.Equal(t, []string{GroupGlucose, GroupInsulin, GroupFamilyHistory, GroupAge}, groupNames(groups))

	lines := EvaluateAdvice(v)
	require.Len(t, lines, 15)
	assert.Equal(t, "• High glucose levels can be managed by reducing sugar intake, eating a balanced diet, and increasing physical activity.", lines[0])
	assert.Equal(t, "• High insulin levels can be controlled by following a healthy diet, maintaining a healthy weight, and avoiding excessive sugar intake.", lines[5])
	assert.Equal(t, "• Ensure regular monitoring of blood glucose levels and consult a healthcare provider for appropriate measures.", lines[14])
}

func TestEvaluateAdvice_Pure(t *testing.T) {
	a := types.FeatureVector{2, 180, 85, 35, 40, 34.0, 0.6, 65}
	b := types.FeatureVector{1, 100, 90, 40, 10, 35, 0.2, 30}

	firstA := EvaluateAdvice(a)
	firstB := EvaluateAdvice(b)

	for i := 0; i < 3; i++ {
		assert.Equal(t, firstB, EvaluateAdvice(b))
		assert.Equal(t, firstA, EvaluateAdvice(a))
	}

	// callers mutating the result must not affect the table
	firstA[0] = "changed"
	assert.NotEqual(t, "changed", EvaluateAdvice(a)[0])
}

func TestEvaluateAdvice_EmptyIsNonNil(t *testing.T) {
	lines := EvaluateAdvice(types.FeatureVector{1, 100, 70, 20, 20, 25, 0.3, 30})
	assert.NotNil(t, lines)
	assert.Empty(t, lines)
}
