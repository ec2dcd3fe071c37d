package domain

// BIN is a bank identification number prefix that cards are minted against.
// Issuance-only: authorization never touches it.
type BIN struct {
	Number     string
	Country    string
	CardVendor string
	Name       string
}

func NewBIN(number, country, cardVendor, name string) (*BIN, error) {
	if number == "" {
		return nil, NewMissingRequiredFieldError("bin number")
	}
	if name == "" {
		return nil, NewMissingRequiredFieldError("bin name")
	}
	return &BIN{
		Number:     number,
		Country:    country,
		CardVendor: cardVendor,
		Name:       name,
	}, nil
}
