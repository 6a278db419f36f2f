package purgetestusers

type Input struct {
	Confirm bool `json:"confirm"`
}

type Output struct {
	Message string   `json:"message"`
	Deleted []string `json:"deleted"`
}
