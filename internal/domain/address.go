package domain

// Address is a shipping address from a user's address book.
type Address struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"user_id"`
	Receiver  string `json:"receiver"`
	Addr      string `json:"addr"`
	ZipCode   string `json:"zip_code"`
	Phone     string `json:"phone"`
	IsDefault bool   `json:"is_default"`
}
