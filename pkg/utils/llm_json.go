package utils

import "strings"

// ExtractJSONObject isolates a JSON object from raw LLM output.
// Models often wrap JSON in markdown fences or prose, so we strip
// fences first and then slice from the first '{' to the last '}'.
// Returns "" when no object can be found.
func ExtractJSONObject(response string) string {
	response = stripFences(response)

	startIdx := strings.Index(response, "{")
	endIdx := strings.LastIndex(response, "}")

	if startIdx == -1 || endIdx == -1 || endIdx <= startIdx {
		return ""
	}

	return response[startIdx : endIdx+1]
}

// ExtractJSONArray is the array counterpart of ExtractJSONObject.
func ExtractJSONArray(response string) string {
	response = stripFences(response)

	startIdx := strings.Index(response, "[")
	endIdx := strings.LastIndex(response, "]")

	if startIdx == -1 || endIdx == -1 || endIdx <= startIdx {
		return ""
	}

	return response[startIdx : endIdx+1]
}

func stripFences(response string) string {
	response = strings.TrimSpace(response)
	response = strings.TrimPrefix(response, "```json")
	response = strings.TrimPrefix(response, "```")
	response = strings.TrimSuffix(response, "```")
	return strings.TrimSpace(response)
}
