package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/harborstreet/tally/internal/common"
	"github.com/harborstreet/tally/internal/model"
)

const defaultCollectionBase = "tally"

// FirestoreStore implements Store on Google Cloud Firestore. Documents
// are keyed by transaction id, so re-committing a row is an upsert.
type FirestoreStore struct {
	client         *firestore.Client
	collectionBase string
}

// NewFirestoreStore connects to the configured project. Credentials come
// from the configured service account file, or Application Default
// Credentials when none is set.
func NewFirestoreStore(ctx context.Context, cfg Config) (*FirestoreStore, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(cfg.ProjectID, "projectID"); err != nil {
		return nil, err
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}
	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}

	base := cfg.CollectionBase
	if base == "" {
		base = defaultCollectionBase
	}
	return &FirestoreStore{client: client, collectionBase: base}, nil
}

// Migrate is a no-op; Firestore collections are created on first write.
func (s *FirestoreStore) Migrate(_ context.Context) error {
	return nil
}

// Close closes the Firestore client.
func (s *FirestoreStore) Close() error {
	return s.client.Close()
}

func (s *FirestoreStore) transactions() *firestore.CollectionRef {
	return s.client.Collection(s.collectionBase + "-transactions")
}

func (s *FirestoreStore) settings() *firestore.CollectionRef {
	return s.client.Collection(s.collectionBase + "-settings")
}

// txnDoc is the Firestore document shape for a transaction.
type txnDoc struct {
	ID          string    `firestore:"id"`
	Date        time.Time `firestore:"date"`
	Description string    `firestore:"description"`
	Account     string    `firestore:"account"`
	Amount      float64   `firestore:"amount"`
	Balance     *float64  `firestore:"balance,omitempty"`
	Type        string    `firestore:"type"`
	Category    string    `firestore:"category"`
	SubCategory string    `firestore:"subcategory"`
	Property    string    `firestore:"property"`
	Entity      string    `firestore:"entity"`
	Confidence  float64   `firestore:"confidence"`
	Method      string    `firestore:"method"`
	Reasoning   string    `firestore:"reasoning"`
	CreatedAt   time.Time `firestore:"createdAt"`
}

func toDoc(txn model.Transaction, now time.Time) txnDoc {
	return txnDoc{
		ID:          txn.ID,
		Date:        txn.Date.UTC(),
		Description: txn.Description,
		Account:     txn.Account,
		Amount:      txn.Amount,
		Balance:     txn.Balance,
		Type:        txn.Type,
		Category:    txn.Category,
		SubCategory: txn.SubCategory,
		Property:    txn.Property,
		Entity:      txn.Entity,
		Confidence:  txn.Confidence,
		Method:      string(txn.Method),
		Reasoning:   txn.Reasoning,
		CreatedAt:   now,
	}
}

func (d txnDoc) toModel() model.Transaction {
	return model.Transaction{
		ID:          d.ID,
		Date:        d.Date,
		Description: d.Description,
		Account:     d.Account,
		Amount:      d.Amount,
		Balance:     d.Balance,
		Type:        d.Type,
		Category:    d.Category,
		SubCategory: d.SubCategory,
		Property:    d.Property,
		Entity:      d.Entity,
		Confidence:  d.Confidence,
		Method:      model.Method(d.Method),
		Reasoning:   d.Reasoning,
	}
}

// LoadAllTransactions scans the full transaction collection.
func (s *FirestoreStore) LoadAllTransactions(ctx context.Context) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	iter := s.transactions().OrderBy("date", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var txns []model.Transaction
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate transactions: %w", err)
		}
		var d txnDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, fmt.Errorf("failed to parse transaction %s: %w", doc.Ref.ID, err)
		}
		txns = append(txns, d.toModel())
	}
	return txns, nil
}

// AddTransactionBatch writes each transaction as its own document,
// counting failures per row.
func (s *FirestoreStore) AddTransactionBatch(ctx context.Context, txns []model.Transaction) (BatchResult, error) {
	if err := validateContext(ctx); err != nil {
		return BatchResult{}, err
	}

	now := time.Now().UTC()
	var result BatchResult
	for i := range txns {
		txn := txns[i]
		if err := txn.Validate(); err != nil {
			slog.Warn("skipping invalid transaction", "description", txn.Description, "error", err)
			result.Failed++
			continue
		}
		if txn.ID == "" {
			txn.ID = txn.GenerateHash()
		}
		if _, err := s.transactions().Doc(txn.ID).Set(ctx, toDoc(txn, now)); err != nil {
			if status.Code(err) == codes.Unavailable {
				return result, fmt.Errorf("firestore unavailable: %w", err)
			}
			slog.Warn("failed to write transaction", "id", txn.ID, "error", err)
			result.Failed++
			continue
		}
		result.Success++
	}
	return result, nil
}

// GetTransactionByID fetches one document by id.
func (s *FirestoreStore) GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	doc, err := s.transactions().Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, fmt.Errorf("transaction %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction %s: %w", id, err)
	}
	var d txnDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, fmt.Errorf("failed to parse transaction %s: %w", id, err)
	}
	txn := d.toModel()
	return &txn, nil
}

// patternDoc is the Firestore document shape for one custom pattern.
type patternDoc struct {
	ID        string    `firestore:"id"`
	Name      string    `firestore:"name"`
	Category  string    `firestore:"category"`
	Account   string    `firestore:"account"`
	Property  string    `firestore:"property"`
	Entity    string    `firestore:"entity"`
	Keywords  []string  `firestore:"keywords"`
	AmountMin *float64  `firestore:"amountMin,omitempty"`
	AmountMax *float64  `firestore:"amountMax,omitempty"`
	CreatedAt time.Time `firestore:"createdAt"`
}

// patternsDoc holds the full pattern list in a single document so the
// read-modify-write cycle replaces the list atomically.
type patternsDoc struct {
	Patterns  []patternDoc `firestore:"patterns"`
	UpdatedAt time.Time    `firestore:"updatedAt"`
}

const customPatternsDocID = "custom-patterns"

// GetCustomPatterns returns the stored pattern list; a missing document
// means no patterns yet.
func (s *FirestoreStore) GetCustomPatterns(ctx context.Context) ([]model.CustomPattern, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	doc, err := s.settings().Doc(customPatternsDocID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return []model.CustomPattern{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get custom patterns: %w", err)
	}
	var d patternsDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, fmt.Errorf("failed to parse custom patterns: %w", err)
	}

	patterns := make([]model.CustomPattern, 0, len(d.Patterns))
	for _, p := range d.Patterns {
		patterns = append(patterns, model.CustomPattern{
			ID:        p.ID,
			Name:      p.Name,
			Category:  p.Category,
			Account:   p.Account,
			Property:  p.Property,
			Entity:    p.Entity,
			Keywords:  p.Keywords,
			AmountMin: p.AmountMin,
			AmountMax: p.AmountMax,
			CreatedAt: p.CreatedAt,
		})
	}
	return patterns, nil
}

// ReplaceCustomPatterns overwrites the pattern document.
func (s *FirestoreStore) ReplaceCustomPatterns(ctx context.Context, patterns []model.CustomPattern) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validatePatterns(patterns); err != nil {
		return err
	}

	docs := make([]patternDoc, 0, len(patterns))
	for _, p := range patterns {
		docs = append(docs, patternDoc{
			ID:        p.ID,
			Name:      p.Name,
			Category:  p.Category,
			Account:   p.Account,
			Property:  p.Property,
			Entity:    p.Entity,
			Keywords:  p.Keywords,
			AmountMin: p.AmountMin,
			AmountMax: p.AmountMax,
			CreatedAt: p.CreatedAt,
		})
	}

	_, err := s.settings().Doc(customPatternsDocID).Set(ctx, patternsDoc{
		Patterns:  docs,
		UpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to replace custom patterns: %w", err)
	}
	return nil
}
