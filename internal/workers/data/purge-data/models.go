package purgedata

type Input struct {
	Confirm bool `json:"confirm"`
}

type Output struct {
	Message string   `json:"message"`
	Tables  []string `json:"tables"`
}
