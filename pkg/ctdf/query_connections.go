package ctdf

type QueryConnections struct {
	From  string
	To    string
	Via   []string
	Limit int

	// Time and Date are passed through as is, eg. 14:05 and 2024-03-01
	Time string
	Date string

	DirectOnly bool
}
