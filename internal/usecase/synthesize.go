package usecase

import (
	"fmt"
	"log/slog"
	"strings"

	"handycan-agent/internal/domain"
)

const (
	maxRenderedProducts = 3
	maxRenderedSteps    = 3
)

// synthesizeResponse merges the model text with the rendered outcomes of
// the requested tool calls. With no results the model text passes
// through verbatim. Repeated calls with identical arguments render once;
// error results render nothing.
func synthesizeResponse(text string, results []domain.ToolResult) string {
	if len(results) == 0 {
		return text
	}

	var b strings.Builder
	b.WriteString(text)
	b.WriteString("\n\n")

	rendered := make(map[string]struct{}, len(results))
	for _, result := range results {
		key := result.Call.Key()
		if _, seen := rendered[key]; seen {
			continue
		}
		rendered[key] = struct{}{}

		if result.Err != nil {
			if result.Call.Name == domain.ToolGetProjectGuide {
				// Guide content has a fallback upstream, so a missing
				// guide is not worth surfacing to the user.
				slog.Debug("project guide unavailable, relying on model text", "err", result.Err)
			}
			continue
		}

		// CompatibilityResult payloads intentionally have no rendering
		// arm; the model text alone covers them today.
		// TODO: render check_compatibility results once the response
		// copy for them is agreed with the mobile client.
		switch payload := result.Payload.(type) {
		case domain.ProductSearchResult:
			renderProducts(&b, payload)
		case domain.GuideResult:
			renderGuide(&b, payload)
		}
	}
	return b.String()
}

func renderProducts(b *strings.Builder, res domain.ProductSearchResult) {
	if len(res.Products) == 0 {
		return
	}
	b.WriteString("**Here are some products I found:**\n")
	for i, product := range res.Products {
		if i == maxRenderedProducts {
			break
		}
		stock := "Out of stock"
		if product.Availability {
			stock = "In stock"
		}
		fmt.Fprintf(b, "• %s - $%.2f (%s)\n", product.Name, product.Price, stock)
	}
}

func renderGuide(b *strings.Builder, res domain.GuideResult) {
	guide := res.Guide
	if guide == nil {
		return
	}
	title := guide.Title
	if title == "" {
		title = "Project Guide"
	}
	fmt.Fprintf(b, "\n**%s**\n", title)
	fmt.Fprintf(b, "Difficulty: %s\n", guide.Difficulty)
	fmt.Fprintf(b, "Estimated time: %s\n\n", guide.EstimatedTime)
	b.WriteString("**First few steps:**\n")
	for i, step := range guide.Steps {
		if i == maxRenderedSteps {
			break
		}
		fmt.Fprintf(b, "%d. %s\n", step.StepNumber, step.Title)
	}
}
