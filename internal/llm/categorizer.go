package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/harborstreet/tally/internal/model"
)

// Categorizer classifies transactions through the external model, falling
// back to deterministic heuristics. Categorize never returns an error:
// every failure mode resolves to a usable classification.
type Categorizer struct {
	client     Client
	heuristics *Heuristics
	now        func() time.Time
	categories []string
}

// NewCategorizer creates a categorizer. A nil client means no credential
// is configured; categorization skips the network entirely and goes
// straight to heuristics.
func NewCategorizer(client Client, categories []string, heuristics *Heuristics) *Categorizer {
	if heuristics == nil {
		heuristics = NewHeuristics(DefaultHeuristicsConfig())
	}
	if len(categories) == 0 {
		categories = model.CategoryNames()
	}
	return &Categorizer{
		client:     client,
		heuristics: heuristics,
		categories: categories,
		now:        time.Now,
	}
}

// Enabled reports whether an AI client is configured.
func (c *Categorizer) Enabled() bool {
	return c.client != nil
}

// Fallback classifies through the heuristics alone, bypassing the AI.
// Bulk imports use this path to bound cost and latency.
func (c *Categorizer) Fallback(txn model.Transaction) model.Classification {
	result := c.heuristics.Classify(txn)
	result.ClassifiedAt = c.now()
	return result
}

// Categorize classifies one transaction, preferring the AI when available.
func (c *Categorizer) Categorize(ctx context.Context, txn model.Transaction) model.Classification {
	if c.client == nil {
		return c.Fallback(txn)
	}

	reply, err := c.client.Generate(ctx, c.buildPrompt(txn))
	if err != nil {
		slog.Warn("AI categorization failed, using fallback",
			"description", txn.Description, "error", err)
		return c.Fallback(txn)
	}

	result := c.parseReply(reply, txn)
	result.ClassifiedAt = c.now()
	return result
}

// Result pairs a transaction with its suggested classification.
type Result struct {
	Transaction model.Transaction
	Suggestion  model.Classification
}

// BatchCategorize classifies transactions concurrently, collecting results
// in input order. A single item's failure resolves to that item's own
// fallback; it never aborts the batch.
func (c *Categorizer) BatchCategorize(ctx context.Context, txns []model.Transaction) []Result {
	results := make([]Result, len(txns))

	var wg sync.WaitGroup
	for i, txn := range txns {
		wg.Add(1)
		go func(i int, txn model.Transaction) {
			defer wg.Done()
			results[i] = Result{
				Transaction: txn,
				Suggestion:  c.Categorize(ctx, txn),
			}
		}(i, txn)
	}
	wg.Wait()

	return results
}

func (c *Categorizer) buildPrompt(txn model.Transaction) string {
	return fmt.Sprintf(`Categorize this financial transaction:
Description: %q
Amount: $%.2f

Available categories: %s

Respond with ONLY a JSON object (no markdown, no explanation) with these exact fields:
{
    "type": "income" or "expense",
    "category": "one of the available categories",
    "subcategory": "specific subcategory or null",
    "confidence": 0.0 to 1.0,
    "entity": "Real Estate", "Tech Business", "Personal", "Investment", or null
}`, txn.Description, txn.Amount, strings.Join(c.categories, ", "))
}

// aiReply is the JSON shape the prompt demands.
type aiReply struct {
	Type        string   `json:"type"`
	Category    string   `json:"category"`
	SubCategory *string  `json:"subcategory"`
	Entity      *string  `json:"entity"`
	Confidence  *float64 `json:"confidence"`
}

// parseReply extracts the classification from the model's reply. Parse
// failures and missing fields resolve to conservative defaults rather than
// an error; the only trace is a warn log and a 0.5 confidence.
func (c *Categorizer) parseReply(reply string, txn model.Transaction) model.Classification {
	result := model.Classification{
		Type:       typeForAmount(txn.Amount),
		Category:   model.CategoryUncategorized,
		Confidence: 0.5,
		Reasoning:  "AI categorization",
		Source:     "AI",
		Method:     model.MethodAI,
	}

	var parsed aiReply
	if err := json.Unmarshal([]byte(stripFences(reply)), &parsed); err != nil {
		slog.Warn("unparsable AI reply, applying defaults",
			"description", txn.Description, "error", err)
		result.Reasoning = "AI reply could not be parsed"
		result.Normalize()
		return result
	}

	if parsed.Type == "income" || parsed.Type == "expense" {
		result.Type = parsed.Type
	}
	if parsed.Category != "" {
		result.Category = parsed.Category
	}
	if parsed.SubCategory != nil {
		result.SubCategory = *parsed.SubCategory
	}
	if parsed.Entity != nil {
		result.Entity = *parsed.Entity
	}
	if parsed.Confidence != nil {
		result.Confidence = *parsed.Confidence
	}

	result.Normalize()
	return result
}

// stripFences removes a markdown code-fence wrapper from a model reply.
func stripFences(reply string) string {
	reply = strings.TrimSpace(reply)
	reply = strings.TrimPrefix(reply, "```json")
	reply = strings.TrimPrefix(reply, "```")
	reply = strings.TrimSuffix(reply, "```")
	return strings.TrimSpace(reply)
}
