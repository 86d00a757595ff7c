package domain

// Product mirrors the core service inventory shape.
type Product struct {
	SKU           string   `json:"sku"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Category      string   `json:"category"`
	Price         float64  `json:"price"`
	Availability  bool     `json:"availability"`
	StoreLocation string   `json:"storeLocation"`
	Compatibility []string `json:"compatibility,omitempty"`
}

// ProductSearchResult is the search_products response shape.
type ProductSearchResult struct {
	Products   []Product `json:"products"`
	TotalCount int       `json:"totalCount"`
}

// GuideStep is one numbered step within a project guide.
type GuideStep struct {
	StepNumber  int      `json:"stepNumber"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tips        []string `json:"tips,omitempty"`
	Warnings    []string `json:"warnings,omitempty"`
}

// ProjectGuide is a step-by-step guide for one project type.
type ProjectGuide struct {
	ID                string      `json:"id"`
	Title             string      `json:"title"`
	Description       string      `json:"description"`
	Difficulty        string      `json:"difficulty"`
	EstimatedTime     string      `json:"estimatedTime"`
	Steps             []GuideStep `json:"steps"`
	RequiredTools     []string    `json:"requiredTools,omitempty"`
	RequiredMaterials []string    `json:"requiredMaterials,omitempty"`
}

// GuideResult is the get_project_guide response shape. A nil Guide is a
// valid non-error outcome: no guide exists for the project type.
type GuideResult struct {
	Guide *ProjectGuide `json:"guide"`
}

// CompatibilityResult is the check_compatibility response shape.
type CompatibilityResult struct {
	Compatible bool   `json:"compatible"`
	ProductA   string `json:"productA"`
	ProductB   string `json:"productB"`
	Notes      string `json:"notes"`
	Confidence string `json:"confidence"`
}
