package gateway

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

// ErrNoJSONFound is returned when no JSON object is found in the text.
var ErrNoJSONFound = errors.New("no JSON object found in text")

var (
	codeFencePattern    = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")
	trailingCommaObject = regexp.MustCompile(`,\s*}`)
	trailingCommaArray  = regexp.MustCompile(`,\s*]`)
)

// ExtractJSONFromText pulls the first JSON object out of raw model output.
// Models often wrap JSON in markdown code fences or surround it with prose,
// so the extraction tries, in order: fenced blocks, then the outermost
// brace-delimited region.
func ExtractJSONFromText(text string) (string, error) {
	if match := codeFencePattern.FindStringSubmatch(text); match != nil {
		candidate := strings.TrimSpace(match[1])
		if strings.HasPrefix(candidate, "{") {
			return candidate, nil
		}
	}

	startIdx := strings.Index(text, "{")
	endIdx := strings.LastIndex(text, "}")
	if startIdx == -1 || endIdx == -1 || startIdx > endIdx {
		return "", ErrNoJSONFound
	}
	return text[startIdx : endIdx+1], nil
}

// RepairJSON removes trailing commas before closing braces and brackets, a
// common model output defect that json.Unmarshal rejects.
func RepairJSON(jsonStr string) string {
	repaired := trailingCommaObject.ReplaceAllString(jsonStr, "}")
	repaired = trailingCommaArray.ReplaceAllString(repaired, "]")
	return repaired
}

// DecodeStructured extracts JSON from raw model output and unmarshals it
// into v, attempting the trailing-comma repair before giving up. Any failure
// is a MalformedResponse.
func DecodeStructured(raw string, v interface{}) error {
	jsonStr, err := ExtractJSONFromText(raw)
	if err != nil {
		return NewError(KindMalformedResponse, "response contains no JSON object", err)
	}

	if err := json.Unmarshal([]byte(jsonStr), v); err != nil {
		repaired := RepairJSON(jsonStr)
		if repairErr := json.Unmarshal([]byte(repaired), v); repairErr != nil {
			return NewError(KindMalformedResponse, "response JSON does not match the expected schema: "+err.Error(), err)
		}
	}
	return nil
}
