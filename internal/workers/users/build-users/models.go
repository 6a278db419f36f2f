package buildusers

import "legalaid-seeder/internal/models"

type Input struct {
	NumUsers int `json:"numUsers"`
}

type Output struct {
	Message string            `json:"message"`
	Users   []models.UserData `json:"users"`
}
