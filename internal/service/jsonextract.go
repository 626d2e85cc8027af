package service

import (
	"encoding/json"
	"regexp"
	"wikiquiz/internal/domain"
)

// The model is instructed to return bare JSON but real responses are
// often wrapped in prose or code fences. The greedy span from the first
// '{' to the last '}' tolerates that wrapping while still rejecting
// responses with no object at all.
var jsonObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)

// ExtractJSON locates the first JSON object span in text and unmarshals
// it into v. It fails with a MALFORMED_OUTPUT domain error when no span
// exists or the span does not parse.
func ExtractJSON(text string, v any) error {
	span := jsonObjectPattern.FindString(text)
	if span == "" {
		return domain.NewError(domain.CodeMalformedOutput, "No JSON object found in model output", nil)
	}
	if err := json.Unmarshal([]byte(span), v); err != nil {
		return domain.NewMalformedOutputError(err)
	}
	return nil
}
