package main

import (
	"regexp"
	"strings"
)

// shoppingListPattern captures everything after the first "## 购物清单"
// heading up to the next "##" or end of text. Non-greedy, first match only.
var shoppingListPattern = regexp.MustCompile(`(?i)## 购物清单([\s\S]*?)(?:##|$)`)

// extractShoppingList pulls the "- item" lines out of the shopping list
// section of a meal plan. Returns an empty (non-nil) list when there is no
// such section; that means "nothing extracted", not a failed request.
func extractShoppingList(mealPlan string) []string {
	items := []string{}

	match := shoppingListPattern.FindStringSubmatch(mealPlan)
	if match == nil || match[1] == "" {
		return items
	}

	for _, line := range strings.Split(match[1], "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "-") {
			continue
		}
		items = append(items, strings.TrimSpace(line[1:]))
	}
	return items
}

// formatShoppingListText renders items the way the "copy shopping list"
// button puts them on the clipboard.
func formatShoppingListText(items []string) string {
	var sb strings.Builder
	sb.WriteString("购物清单:")
	for _, item := range items {
		sb.WriteString("\n- ")
		sb.WriteString(item)
	}
	return sb.String()
}
