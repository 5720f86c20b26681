package llm

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborstreet/tally/internal/model"
)

// mockClient scripts the transport. reply and err apply to every call
// unless replyFor overrides by description match.
type mockClient struct {
	replyFor map[string]string
	errFor   map[string]error
	reply    string
	err      error
	calls    atomic.Int64
}

func (m *mockClient) Generate(_ context.Context, prompt string) (string, error) {
	m.calls.Add(1)
	for needle, reply := range m.replyFor {
		if containsAny(prompt, []string{needle}) {
			return reply, nil
		}
	}
	for needle, err := range m.errFor {
		if containsAny(prompt, []string{needle}) {
			return "", err
		}
	}
	return m.reply, m.err
}

func TestNoCredentialSkipsTransport(t *testing.T) {
	c := NewCategorizer(nil, nil, nil)
	assert.False(t, c.Enabled())

	result := c.Categorize(context.Background(), fbTxn("9999", "UNKNOWN MERCHANT XYZ", -42.17))
	assert.Equal(t, model.CategoryUncategorized, result.Category)
	assert.Equal(t, model.MethodFallbackDefault, result.Method)
	assert.InDelta(t, 0.1, result.Confidence, 0.001)
}

func TestTransportFailureResolvesToFallback(t *testing.T) {
	client := &mockClient{err: fmt.Errorf("gemini API error (status 500): internal")}
	c := NewCategorizer(client, nil, nil)

	result := c.Categorize(context.Background(), fbTxn("7588", "ROCKET MTG PAYMENT", -2100))
	assert.Equal(t, "Mortgage", result.Category)
	assert.Equal(t, model.MethodFallbackRule, result.Method)
	assert.EqualValues(t, 1, client.calls.Load())
}

func TestParsesFencedJSONReply(t *testing.T) {
	client := &mockClient{reply: "```json\n" +
		`{"type":"expense","category":"Utilities","subcategory":"Internet","confidence":0.92,"entity":"Personal"}` +
		"\n```"}
	c := NewCategorizer(client, nil, nil)

	result := c.Categorize(context.Background(), fbTxn("7588", "SOME ISP", -60))
	assert.Equal(t, "Utilities", result.Category)
	assert.Equal(t, "Internet", result.SubCategory)
	assert.Equal(t, "Personal", result.Entity)
	assert.InDelta(t, 0.92, result.Confidence, 0.001)
	assert.Equal(t, model.MethodAI, result.Method)
}

func TestUnparsableReplyAppliesDefaults(t *testing.T) {
	client := &mockClient{reply: "I think this is probably groceries."}
	c := NewCategorizer(client, nil, nil)

	result := c.Categorize(context.Background(), fbTxn("7588", "SOMETHING", -10))
	assert.Equal(t, model.CategoryUncategorized, result.Category)
	assert.Equal(t, "expense", result.Type)
	assert.InDelta(t, 0.5, result.Confidence, 0.001)
	assert.Equal(t, model.MethodAI, result.Method)
}

func TestMissingFieldsGetConservativeDefaults(t *testing.T) {
	client := &mockClient{reply: `{"category":"Healthcare"}`}
	c := NewCategorizer(client, nil, nil)

	result := c.Categorize(context.Background(), fbTxn("7588", "PHARMACY", 12.50))
	assert.Equal(t, "Healthcare", result.Category)
	assert.Equal(t, "income", result.Type) // inferred from sign
	assert.InDelta(t, 0.5, result.Confidence, 0.001)
}

func TestOutOfRangeConfidenceIsClamped(t *testing.T) {
	client := &mockClient{reply: `{"type":"expense","category":"Utilities","confidence":3.5}`}
	c := NewCategorizer(client, nil, nil)

	result := c.Categorize(context.Background(), fbTxn("7588", "ISP", -60))
	assert.Equal(t, 1.0, result.Confidence)
}

func TestBatchPreservesOrderAndIsolatesFailures(t *testing.T) {
	client := &mockClient{
		replyFor: map[string]string{
			"GOOD ONE": `{"type":"expense","category":"Utilities","confidence":0.9}`,
		},
		err: fmt.Errorf("boom"),
	}
	c := NewCategorizer(client, nil, nil)

	txns := []model.Transaction{
		fbTxn("7588", "GOOD ONE", -10),
		fbTxn("7588", "ROCKET MTG PAYMENT", -2100), // transport error -> fallback branch
		fbTxn("9999", "TOTALLY UNKNOWN", -1),       // transport error -> terminal default
	}

	results := c.BatchCategorize(context.Background(), txns)
	require.Len(t, results, 3)

	assert.Equal(t, "GOOD ONE", results[0].Transaction.Description)
	assert.Equal(t, "Utilities", results[0].Suggestion.Category)
	assert.Equal(t, "Mortgage", results[1].Suggestion.Category)
	assert.Equal(t, model.CategoryUncategorized, results[2].Suggestion.Category)
}
