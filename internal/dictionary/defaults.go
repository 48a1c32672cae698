package dictionary

type CategoryDef struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

type CurrencyDef struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

var categories = []CategoryDef{
	{Code: "salary", Label: "Salary"},
	{Code: "interest", Label: "Interest"},
	{Code: "refund", Label: "Refund"},
	{Code: "groceries", Label: "Groceries"},
	{Code: "eating_out", Label: "Eating Out"},
	{Code: "rent", Label: "Rent"},
	{Code: "utilities", Label: "Utilities"},
	{Code: "transport", Label: "Transport"},
	{Code: "shopping", Label: "Shopping"},
	{Code: "entertainment", Label: "Entertainment"},
	{Code: "health", Label: "Health"},
	{Code: "general", Label: "General"},
}

var currencies = []CurrencyDef{
	{Code: "USD", Name: "US Dollar"},
	{Code: "EUR", Name: "Euro"},
	{Code: "GBP", Name: "Pound Sterling"},
	{Code: "JPY", Name: "Yen"},
	{Code: "NGN", Name: "Naira"},
	{Code: "INR", Name: "Indian Rupee"},
}

// Categories returns a copy of the curated category list.
func Categories() []CategoryDef {
	out := make([]CategoryDef, len(categories))
	copy(out, categories)
	return out
}

// Currencies returns a copy of the curated currency list.
func Currencies() []CurrencyDef {
	out := make([]CurrencyDef, len(currencies))
	copy(out, currencies)
	return out
}
