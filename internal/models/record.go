package models

// Record is one grid row exactly as the site renders it. No field is parsed
// or validated here.
type Record struct {
	Type         string `json:"type"`
	Date         string `json:"date"`
	Price        string `json:"price"`
	Area         string `json:"area"`
	PricePerArea string `json:"price_per_area"`
	Subject      string `json:"subject"`
	Location     string `json:"location"`
}

// RecordColumns are the spreadsheet headers, in Values order.
var RecordColumns = []string{"Tip", "Datum", "Cena", "Površina", "Cena/m²", "Predmet", "Lokacija"}

func (r Record) Values() []string {
	return []string{r.Type, r.Date, r.Price, r.Area, r.PricePerArea, r.Subject, r.Location}
}
