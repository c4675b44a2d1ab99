package main

import (
	"fmt"
	"strconv"
	"strings"
)

/* ─── Lookup tables ──────────────────────────────────────────────────── */

var activityLevelText = map[string]string{
	"sedentary":  "久坐（几乎不运动）",
	"light":      "轻度活动（每周运动1-3次）",
	"moderate":   "中度活动（每周运动3-5次）",
	"active":     "重度活动（每周运动6-7次）",
	"veryActive": "非常活跃（每天高强度训练或体力劳动）",
}

var cuisineTypeText = map[string]string{
	"chinese":  "中式",
	"western":  "西式",
	"japanese": "日式",
	"mixed":    "混合",
}

var cookingTimeText = map[string]string{
	"short":  "快速（15分钟内）",
	"medium": "适中（15-30分钟）",
	"long":   "不限时间",
}

// restrictionText doubles as the set of restriction tags the preferences form accepts.
var restrictionText = map[string]string{
	"vegetarian": "素食",
	"vegan":      "纯素食",
	"glutenFree": "无麸质",
	"dairyFree":  "无乳糖",
	"nutFree":    "无坚果",
	"lowCarb":    "低碳水",
	"lowFat":     "低脂",
}

// translate returns the mapped text, or the code itself when unmapped.
func translate(table map[string]string, code string) string {
	if text, ok := table[code]; ok {
		return text
	}
	return code
}

func activityLevelToText(level string) string { return translate(activityLevelText, level) }
func cuisineTypeToText(cuisine string) string { return translate(cuisineTypeText, cuisine) }
func cookingTimeToText(t string) string       { return translate(cookingTimeText, t) }
func restrictionToText(tag string) string     { return translate(restrictionText, tag) }

/* ─── Prompt ─────────────────────────────────────────────────────────── */

const mealPlanRequestLine = "请根据以上信息，帮我设计一份今日减脂餐食谱，包括早餐、午餐、晚餐及加餐（如需要）。"

// formatUserDataForPrompt renders the profile as the user turn sent to the
// model. Unset numeric fields, and a BMI that can't be computed from them,
// print as 未填写; an unknown activity level
// leaves the calorie target at 0 rather than a negative number.
func formatUserDataForPrompt(p userProfile) string {
	bmr := calculateBMR(p)
	calorieTarget := 0
	if tdee, ok := calculateTDEE(bmr, p.ActivityLevel); ok {
		calorieTarget = calculateDailyCalorieTarget(tdee)
	}
	bmiLine := "未填写"
	if bmi, ok := profileBMI(p); ok {
		bmiLine = fmt.Sprintf("%s（%s）", formatNumber(bmi), bmiCategory(bmi))
	}

	gender := "女"
	if p.Gender == "male" {
		gender = "男"
	}

	restrictions := "无"
	if len(p.DietaryPreferences.Restrictions) > 0 {
		labels := make([]string, 0, len(p.DietaryPreferences.Restrictions))
		for _, tag := range p.DietaryPreferences.Restrictions {
			labels = append(labels, restrictionToText(tag))
		}
		restrictions = strings.Join(labels, "、")
	}

	var sb strings.Builder
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "性别：%s\n", gender)
	fmt.Fprintf(&sb, "年龄：%s岁\n", formatOptionalInt(p.Age))
	fmt.Fprintf(&sb, "身高：%scm\n", formatOptionalNumber(p.Height))
	fmt.Fprintf(&sb, "体重：%skg\n", formatOptionalNumber(p.Weight))
	fmt.Fprintf(&sb, "目标体重：%skg\n", formatOptionalNumber(p.TargetWeight))
	fmt.Fprintf(&sb, "BMI：%s\n", bmiLine)
	fmt.Fprintf(&sb, "基础代谢率：%d卡路里\n", bmr)
	fmt.Fprintf(&sb, "活动水平：%s\n", activityLevelToText(p.ActivityLevel))
	fmt.Fprintf(&sb, "每日目标热量：%d卡路里\n", calorieTarget)
	sb.WriteString("\n饮食偏好：\n")
	fmt.Fprintf(&sb, "忌口：%s\n", restrictions)
	fmt.Fprintf(&sb, "口味偏好：%s\n", cuisineTypeToText(p.DietaryPreferences.CuisineType))
	fmt.Fprintf(&sb, "烹饪时间要求：%s\n", cookingTimeToText(p.DietaryPreferences.CookingTime))
	sb.WriteString("\n")
	sb.WriteString(mealPlanRequestLine)
	sb.WriteString("\n")
	return sb.String()
}

// formatNumber prints without trailing zeros: 65 -> "65", 22.5 -> "22.5".
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatOptionalNumber(v *float64) string {
	if v == nil {
		return "未填写"
	}
	return formatNumber(*v)
}

func formatOptionalInt(v *int) string {
	if v == nil {
		return "未填写"
	}
	return strconv.Itoa(*v)
}
