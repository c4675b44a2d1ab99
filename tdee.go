package main

import "math"

// activityMultipliers maps activity level codes to their TDEE multiplier.
// This is the single source of truth for valid activity levels, also used for
// input validation in validateUserInfo.
var activityMultipliers = map[string]float64{
	"sedentary":  1.2,   // little or no exercise
	"light":      1.375, // light exercise 1-3 days/week
	"moderate":   1.55,  // moderate exercise 3-5 days/week
	"active":     1.725, // heavy exercise 6-7 days/week
	"veryActive": 1.9,   // physical job or training twice a day
}

// dailyCalorieDeficit is the flat deficit subtracted from TDEE for weight loss.
const dailyCalorieDeficit = 500

// calculateBMI returns weight / height² (height in cm, weight in kg) rounded
// to one decimal. Callers must guard heightCM <= 0.
func calculateBMI(heightCM, weightKG float64) float64 {
	heightM := heightCM / 100
	return math.Round(weightKG/(heightM*heightM)*10) / 10
}

// calculateBMR computes BMR via Mifflin-St Jeor from the profile.
// Returns 0 when any of weight, height, age or gender is missing.
func calculateBMR(p userProfile) int {
	if p.Weight == nil || p.Height == nil || p.Age == nil || p.Gender == "" ||
		*p.Weight == 0 || *p.Height == 0 || *p.Age == 0 {
		return 0
	}

	weight, height, age := *p.Weight, *p.Height, float64(*p.Age)

	// Different constant for male vs female
	bmr := 10*weight + 6.25*height - 5*age
	if p.Gender == "male" {
		bmr += 5
	} else {
		bmr -= 161
	}
	return int(math.Round(bmr))
}

// calculateTDEE multiplies BMR by the activity level multiplier.
// Returns ok=false for an unknown activity level.
func calculateTDEE(bmr int, activityLevel string) (int, bool) {
	mult, found := activityMultipliers[activityLevel]
	if !found {
		return 0, false
	}
	return int(math.Round(float64(bmr) * mult)), true
}

// calculateDailyCalorieTarget applies the fixed weight-loss deficit.
func calculateDailyCalorieTarget(tdee int) int {
	return tdee - dailyCalorieDeficit
}

// bmiCategory classifies a BMI value. Obese is checked before overweight so
// both bands are reachable.
func bmiCategory(bmi float64) string {
	switch {
	case bmi < 18.5:
		return "偏瘦"
	case bmi >= 30:
		return "肥胖"
	case bmi >= 25:
		return "超重"
	default:
		return "正常"
	}
}

// profileBMI returns the stored BMI, or computes it when height and weight are
// both present. Returns ok=false when it can't be computed.
func profileBMI(p userProfile) (float64, bool) {
	if p.BMI != nil {
		return *p.BMI, true
	}
	if p.Height == nil || p.Weight == nil || *p.Height <= 0 {
		return 0, false
	}
	return calculateBMI(*p.Height, *p.Weight), true
}
