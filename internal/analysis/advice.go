package analysis

import "github.com/ZanzyTHEbar/glucoscreen/internal/types"

// AdvisoryRule maps a predicate over a raw vector to fixed advice lines.
type AdvisoryRule struct {
	Group string
	Fires func(v types.FeatureVector) bool
	Lines []string
}

// AdviceGroup is the output of one rule that fired.
type AdviceGroup struct {
	Group string   `json:"group"`
	Lines []string `json:"lines"`
}

// Advice group names.
const (
	GroupGlucose       = "glucose-management"
	GroupInsulin       = "insulin-management"
	GroupFamilyHistory = "family-history"
	GroupAge           = "age-related"
	GroupBloodPressure = "bp-management"
	GroupSkin          = "skin-management"
	GroupBMI           = "bmi-management"
)

// secondaryGuard unlocks the lifestyle rules only when no primary risk factor
// is elevated. Insulin uses 25 here while the primary rule uses 30; values in
// (25, 30] fire neither.
func secondaryGuard(v types.FeatureVector) bool {
	return v[types.Glucose] <= 125 &&
		v[types.Insulin] <= 25 &&
		v[types.DiabetesPedigreeFunction] <= 0.5 &&
		v[types.Age] <= 60
}

var advisoryRules = []AdvisoryRule{
	{
		Group: GroupGlucose,
		Fires: func(v types.FeatureVector) bool { return v[types.Glucose] > 125 },
		Lines: []string{
			"• High glucose levels can be managed by reducing sugar intake, eating a balanced diet, and increasing physical activity.",
			"• Regular monitoring of blood sugar levels is important.",
			"• Consult a healthcare professional for personalized advice.",
			"• Consider joining a diabetes education program for more guidance.",
			"• Monitor glucose levels regularly to prevent complications.",
		},
	},
	{
		Group: GroupInsulin,
		Fires: func(v types.FeatureVector) bool { return v[types.Insulin] > 30 },
		Lines: []string{
			"• High insulin levels can be controlled by following a healthy diet, maintaining a healthy weight, and avoiding excessive sugar intake.",
			"• Consider regular physical activity to improve insulin sensitivity.",
			"• Consult a dietitian for a personalized meal plan.",
			"• Discuss with a healthcare provider if medication adjustments are needed.",
		},
	},
	{
		Group: GroupFamilyHistory,
		Fires: func(v types.FeatureVector) bool { return v[types.DiabetesPedigreeFunction] > 0.5 },
		Lines: []string{
			"• A high Diabetes Pedigree Function indicates a family history of diabetes. Maintain a healthy lifestyle and get regular check-ups.",
			"• Consider genetic counseling if there is a significant family history.",
			"• Stay informed about diabetes prevention strategies.",
			"• Monitor your health regularly for early signs of diabetes.",
		},
	},
	{
		Group: GroupAge,
		Fires: func(v types.FeatureVector) bool { return v[types.Age] > 60 },
		Lines: []string{
			"• Older age can increase the risk of diabetes. Regular health check-ups and maintaining a healthy lifestyle are important.",
			"• Ensure regular monitoring of blood glucose levels and consult a healthcare provider for appropriate measures.",
		},
	},
	{
		Group: GroupBloodPressure,
		Fires: func(v types.FeatureVector) bool { return secondaryGuard(v) && v[types.BloodPressure] > 80 },
		Lines: []string{
			"• High blood pressure can be managed by reducing salt intake, exercising regularly, and avoiding stress.",
			"• Monitor blood pressure frequently and take medications if prescribed.",
			"• Maintain a healthy weight and reduce alcohol consumption.",
			"• Regular check-ups with a healthcare provider are recommended.",
		},
	},
	{
		Group: GroupSkin,
		Fires: func(v types.FeatureVector) bool { return secondaryGuard(v) && v[types.SkinThickness] > 30 },
		Lines: []string{
			"• Increased skin thickness can be managed by improving diet and increasing physical activity.",
			"• Monitor skin changes and consult a dermatologist if needed.",
			"• Regular exercise and a balanced diet are key.",
			"• Check for other potential underlying conditions with a healthcare provider.",
		},
	},
	{
		Group: GroupBMI,
		Fires: func(v types.FeatureVector) bool { return secondaryGuard(v) && v[types.BMI] > 30 },
		Lines: []string{
			"• A high BMI indicates obesity. Consider a balanced diet and regular exercise to maintain a healthy weight.",
			"• Aim for gradual weight loss through lifestyle changes.",
			"• Consult a healthcare provider for a weight management plan.",
			"• Avoid fad diets and focus on sustainable changes.",
			"• Incorporate both aerobic and strength training exercises.",
		},
	},
}

// AdvisoryRules returns a copy of the rule table in evaluation order.
func AdvisoryRules() []AdvisoryRule {
	return append([]AdvisoryRule(nil), advisoryRules...)
}

// EvaluateAdviceGroups returns every group whose rule fires, in table order.
func EvaluateAdviceGroups(v types.FeatureVector) []AdviceGroup {
	var groups []AdviceGroup
	for _, rule := range advisoryRules {
		if rule.Fires(v) {
			groups = append(groups, AdviceGroup{
				Group: rule.Group,
				Lines: append([]string(nil), rule.Lines...),
			})
		}
	}
	return groups
}

// EvaluateAdvice concatenates the lines of every group that fires.
// It returns an empty, non-nil slice when nothing fires.
func EvaluateAdvice(v types.FeatureVector) []string {
	lines := []string{}
	for _, g := range EvaluateAdviceGroups(v) {
		lines = append(lines, g.Lines...)
	}
	return lines
}
