// internal/workers/recommendation/trending-product-types/models.go
package trendingproducttypes

type Input struct {
	Days  int `json:"days,omitempty"`
	Limit int `json:"limit,omitempty"`
}

type Output struct {
	ProductTypes []string `json:"productTypes"`
	WindowDays   int      `json:"windowDays"`
	OrderCount   int      `json:"orderCount"`
	GeneratedAt  string   `json:"generatedAt"`
}
