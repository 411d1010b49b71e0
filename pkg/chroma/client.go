package chroma

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"

	"persona-backend/pkg/config"

	chroma "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/amikos-tech/chroma-go/pkg/embeddings/gemini"
)

const collectionName = "persona_samples"

// addBatchSize caps one Add request; the backend rejects larger batches.
const addBatchSize = 100

// ChromaClient wraps the Chroma collection holding sample vectors.
// Single writer assumed; readers tolerate stale results.
type ChromaClient struct {
	client     chroma.Client
	embedFunc  *gemini.GeminiEmbeddingFunction
	config     *config.Config
	collection chroma.Collection

	mu sync.Mutex // guards collection swap during DeleteAll
}

func NewChromaClient(cfg *config.Config) (*ChromaClient, error) {
	if cfg.ChromaAPIKey == "" {
		return nil, fmt.Errorf("CHROMA_API_KEY is required")
	}

	// The embedding function reads the Gemini key from the environment
	if cfg.GeminiApiKey != "" {
		os.Setenv("GEMINI_API_KEY", cfg.GeminiApiKey)
	}

	embedFunc, err := gemini.NewGeminiEmbeddingFunction(
		gemini.WithEnvAPIKey(),
		gemini.WithDefaultModel("text-embedding-004"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini embedding function: %w", err)
	}

	var client chroma.Client
	if cfg.ChromaDatabase != "" && cfg.ChromaTenant != "" {
		client, err = chroma.NewHTTPClient(
			chroma.WithBaseURL(chroma.ChromaCloudEndpoint),
			chroma.WithCloudAPIKey(cfg.ChromaAPIKey),
			chroma.WithDatabaseAndTenant(cfg.ChromaDatabase, cfg.ChromaTenant),
		)
	} else if cfg.ChromaTenant != "" {
		client, err = chroma.NewHTTPClient(
			chroma.WithBaseURL(chroma.ChromaCloudEndpoint),
			chroma.WithCloudAPIKey(cfg.ChromaAPIKey),
			chroma.WithTenant(cfg.ChromaTenant),
		)
	} else {
		client, err = chroma.NewHTTPClient(
			chroma.WithBaseURL(chroma.ChromaCloudEndpoint),
			chroma.WithCloudAPIKey(cfg.ChromaAPIKey),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create Chroma client: %w", err)
	}

	c := &ChromaClient{
		client:    client,
		embedFunc: embedFunc,
		config:    cfg,
	}
	if err := c.openCollection(context.Background()); err != nil {
		return nil, err
	}

	log.Printf("[Chroma] Initialized client with collection: %s", collectionName)
	return c, nil
}

func (c *ChromaClient) openCollection(ctx context.Context) error {
	collection, err := c.client.GetOrCreateCollection(
		ctx,
		collectionName,
		chroma.WithEmbeddingFunctionCreate(c.embedFunc),
	)
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}
	c.collection = collection
	return nil
}

func (c *ChromaClient) getCollection() chroma.Collection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.collection
}

// Add inserts documents in batches of at most addBatchSize. Metadata
// values are already strings by contract.
func (c *ChromaClient) Add(ctx context.Context, ids []string, documents []string, metadatas []map[string]string) error {
	if len(ids) != len(documents) {
		return fmt.Errorf("ids/documents length mismatch: %d vs %d", len(ids), len(documents))
	}

	collection := c.getCollection()

	for start := 0; start < len(ids); start += addBatchSize {
		end := start + addBatchSize
		if end > len(ids) {
			end = len(ids)
		}

		docIDs := make([]chroma.DocumentID, 0, end-start)
		for _, id := range ids[start:end] {
			docIDs = append(docIDs, chroma.DocumentID(id))
		}

		metas := make([]chroma.DocumentMetadata, 0, end-start)
		for i := start; i < end; i++ {
			raw := map[string]interface{}{}
			if metadatas != nil && i < len(metadatas) {
				for k, v := range metadatas[i] {
					raw[k] = v
				}
			}
			meta, err := chroma.NewDocumentMetadataFromMap(raw)
			if err != nil {
				return fmt.Errorf("failed to create metadata: %w", err)
			}
			metas = append(metas, meta)
		}

		err := collection.Add(
			ctx,
			chroma.WithIDs(docIDs...),
			chroma.WithMetadatas(metas...),
			chroma.WithTexts(documents[start:end]...),
		)
		if err != nil {
			return fmt.Errorf("failed to add embeddings: %w", err)
		}
	}

	return nil
}

// Query returns the ids, documents and cosine distances of the k nearest
// neighbors, ascending by distance. An empty index yields empty slices.
func (c *ChromaClient) Query(ctx context.Context, text string, k int) ([]string, []string, []float64, error) {
	collection := c.getCollection()

	results, err := collection.Query(
		ctx,
		chroma.WithQueryTexts(text),
		chroma.WithNResults(k),
	)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to query collection: %w", err)
	}

	if results == nil || results.CountGroups() == 0 {
		return []string{}, []string{}, []float64{}, nil
	}

	idGroups := results.GetIDGroups()
	docGroups := results.GetDocumentsGroups()
	distanceGroups := results.GetDistancesGroups()

	if len(idGroups) == 0 || len(idGroups[0]) == 0 {
		return []string{}, []string{}, []float64{}, nil
	}

	ids := make([]string, 0, len(idGroups[0]))
	for _, id := range idGroups[0] {
		ids = append(ids, string(id))
	}

	docs := make([]string, 0, len(ids))
	if len(docGroups) > 0 {
		for _, d := range docGroups[0] {
			docs = append(docs, d.ContentString())
		}
	}
	for len(docs) < len(ids) {
		docs = append(docs, "")
	}

	distances := make([]float64, 0, len(ids))
	if len(distanceGroups) > 0 {
		for _, d := range distanceGroups[0] {
			distances = append(distances, float64(d))
		}
	}
	for len(distances) < len(ids) {
		distances = append(distances, 0)
	}

	return ids, docs, distances, nil
}

// DeleteAll wipes the collection by dropping and recreating it.
func (c *ChromaClient) DeleteAll(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.client.DeleteCollection(ctx, collectionName); err != nil {
		return fmt.Errorf("failed to delete collection: %w", err)
	}

	collection, err := c.client.GetOrCreateCollection(
		ctx,
		collectionName,
		chroma.WithEmbeddingFunctionCreate(c.embedFunc),
	)
	if err != nil {
		return fmt.Errorf("failed to recreate collection: %w", err)
	}
	c.collection = collection

	log.Printf("[Chroma] Collection %s wiped", collectionName)
	return nil
}

// Count returns the number of vectors in the collection.
func (c *ChromaClient) Count(ctx context.Context) (int, error) {
	collection := c.getCollection()
	count, err := collection.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count collection: %w", err)
	}
	return count, nil
}
