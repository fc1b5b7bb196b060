package extract

import (
	"encoding/json"
	"strings"
)

// BuildSystemPrompt composes the fixed extraction instruction: the exact
// invoice JSON shape, date and currency conventions, and formatting hygiene.
func BuildSystemPrompt(defaultCurrency string) string {
	cur := strings.TrimSpace(defaultCurrency)
	if cur == "" {
		cur = "NPR"
	}
	parts := []string{
		"You are an expert invoice data extractor. Extract structured invoice information from the provided text.",
		"Return ONLY a JSON object that matches the provided JSON Schema.",
		"Extract all line items with quantities, prices, and tax rates.",
		"Tax rates are percentages (e.g., 13 for 13%).",
		"Infer missing data intelligently, but never invent a vendor or client business name.",
		"Currency must be a 3-letter ISO 4217 code; default to " + cur + " if not specified.",
		"Dates must be in YYYY-MM-DD format.",
		"Never output null. If a field is not present, omit it.",
	}
	return strings.Join(parts, " ") + "\n\nJSON Schema:\n" + mustJSON(BuildInvoiceJSONSchema())
}

// BuildUserPrompt packages the raw invoice text for the model.
func BuildUserPrompt(text string) string {
	return "Extract invoice data from this text:\n\n" + text
}

func mustJSON(v any) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}
