package model

// ReadingRequest is the profile payload both generation endpoints
// accept. Payment fields identify the session gating the request; the
// rest is prompt material and is never interpreted beyond defaulting.
type ReadingRequest struct {
	TypeCode    string   `json:"typeCode"`
	Zodiac      string   `json:"zodiac"`
	Tarot       []string `json:"tarot"`
	Reflection  string   `json:"reflection"`
	EnergyLevel string   `json:"energyLevel"`
	Keywords    []string `json:"keywords"`

	PaymentID    string `json:"paymentId,omitempty"`
	PaymentToken string `json:"paymentToken,omitempty"`
}
