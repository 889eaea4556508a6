// Package pipelines seeds the default sales and service pipelines and holds
// the request status lifecycle.
package pipelines

type Stage struct {
	Name        string `json:"name"`
	Order       int    `json:"order"`
	Probability *int   `json:"probability,omitempty"`
	IsClosed    bool   `json:"isClosed"`
	IsWon       bool   `json:"isWon"`
}

type Pipeline struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	EntityType  string  `json:"entityType"`
	IsDefault   bool    `json:"isDefault"`
	Stages      []Stage `json:"stages"`
}

func probability(p int) *int { return &p }

func SalesPipeline() Pipeline {
	return Pipeline{
		Title:       "Sales Pipeline",
		Description: "Default sales pipeline for tracking leads from first contact through to won or lost.",
		EntityType:  "lead",
		IsDefault:   true,
		Stages: []Stage{
			{Name: "New", Order: 0, Probability: probability(10)},
			{Name: "Contacted", Order: 1, Probability: probability(20)},
			{Name: "Qualified", Order: 2, Probability: probability(40)},
			{Name: "Proposal", Order: 3, Probability: probability(60)},
			{Name: "Negotiation", Order: 4, Probability: probability(80)},
			{Name: "Won", Order: 5, Probability: probability(100), IsClosed: true, IsWon: true},
			{Name: "Lost", Order: 6, Probability: probability(0), IsClosed: true},
		},
	}
}

func ServiceRequestsPipeline() Pipeline {
	return Pipeline{
		Title:       "Service Requests",
		Description: "Default pipeline for tracking service requests from intake through completion.",
		EntityType:  "request",
		Stages: []Stage{
			{Name: "New", Order: 0},
			{Name: "In Progress", Order: 1},
			{Name: "Completed", Order: 2, IsClosed: true, IsWon: true},
			{Name: "Rejected", Order: 3, IsClosed: true},
			{Name: "Converted to Case", Order: 4, IsClosed: true},
		},
	}
}

func Defaults() []Pipeline {
	return []Pipeline{SalesPipeline(), ServiceRequestsPipeline()}
}
