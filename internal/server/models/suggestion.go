package models

type Suggestion struct {
	Title       string          `json:"title"`
	Body        string          `json:"body"`
	LearningURL []string        `json:"learning_url"`
	WorkingURL  []string        `json:"working_url"`
	Products    []ProductDetail `json:"products"`
}
