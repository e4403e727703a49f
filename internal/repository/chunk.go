package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/tessera-ai/tessera/internal/domain"
	"github.com/tessera-ai/tessera/internal/service"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// ChunkRepository handles persistence of embedded document chunks.
type ChunkRepository struct {
	db dbtx
}

func NewChunkRepository(pool *pgxpool.Pool) *ChunkRepository {
	return &ChunkRepository{db: pool}
}

func NewChunkRepositoryWithTx(tx dbtx) *ChunkRepository {
	return &ChunkRepository{db: tx}
}

// UpsertChunk inserts a chunk row, replacing any previous row at the same
// (tenant, agent, document, index) position.
func (r *ChunkRepository) UpsertChunk(ctx context.Context, chunk *domain.Chunk) error {
	metadataJSON, err := json.Marshal(chunk.Metadata)
	if err != nil {
		return err
	}

	createdAt := chunk.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO chunks
			(tenant_id, agent_id, document_name, chunk_index, content, provider, embedding, metadata, created_at)
		 VALUES
			($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (tenant_id, agent_id, document_name, chunk_index)
		 DO UPDATE SET
			content = EXCLUDED.content,
			provider = EXCLUDED.provider,
			embedding = EXCLUDED.embedding,
			metadata = EXCLUDED.metadata,
			created_at = EXCLUDED.created_at`,
		chunk.TenantID,
		nullableString(chunk.AgentID),
		chunk.DocumentName,
		chunk.ChunkIndex,
		chunk.Content,
		chunk.Provider,
		pgvector.NewVector(chunk.Embedding),
		metadataJSON,
		createdAt,
	)
	return err
}

// SimilaritySearch returns chunks ranked by cosine similarity against the
// query vector, most similar first. Only chunks embedded by the same provider
// are compared, so vectors of mismatched dimensionality never meet. An empty
// agent searches the whole tenant; a set agent sees its own chunks plus the
// tenant-global ones.
func (r *ChunkRepository) SimilaritySearch(ctx context.Context, query service.SimilarityQuery) ([]*service.SimilarityMatch, error) {
	vec := pgvector.NewVector(query.Vector)

	// The provider filter must be applied before the distance expression:
	// vectors in this table vary in dimensionality across providers, and the
	// <=> operator errors on mismatched operands. OFFSET 0 keeps the planner
	// from pulling the distance qual into the inner scan.
	inner := `
		SELECT id, content, embedding, metadata
		FROM chunks
		WHERE tenant_id = $2
		  AND provider = $3`
	args := []any{vec, query.TenantID, query.Provider, query.Threshold}

	var limitParam string
	if query.AgentID != "" {
		inner += ` AND (agent_id = $5 OR agent_id IS NULL)`
		args = append(args, query.AgentID, query.Limit)
		limitParam = "$6"
	} else {
		args = append(args, query.Limit)
		limitParam = "$5"
	}

	sql := `
		SELECT id, content, 1 - (embedding <=> $1) AS similarity, metadata
		FROM (` + inner + ` OFFSET 0) AS scoped
		WHERE 1 - (embedding <=> $1) >= $4
		ORDER BY embedding <=> $1
		LIMIT ` + limitParam

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]*service.SimilarityMatch, 0)
	for rows.Next() {
		var match service.SimilarityMatch
		var metadataJSON []byte
		if err := rows.Scan(&match.ChunkID, &match.Content, &match.Similarity, &metadataJSON); err != nil {
			return nil, err
		}
		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &match.Metadata); err != nil {
				return nil, err
			}
		}
		matches = append(matches, &match)
	}

	return matches, rows.Err()
}

// DeleteByDocument removes every chunk row of one document and returns the
// number of rows removed. Analytics rows referencing the chunks cascade via
// their foreign keys.
func (r *ChunkRepository) DeleteByDocument(ctx context.Context, ref domain.DocumentRef) (int, error) {
	sql := `DELETE FROM chunks WHERE tenant_id = $1 AND document_name = $2`
	args := []any{ref.TenantID, ref.DocumentName}

	if ref.AgentID != "" {
		sql += ` AND agent_id = $3`
		args = append(args, ref.AgentID)
	} else {
		sql += ` AND agent_id IS NULL`
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	return int(cmdTag.RowsAffected()), nil
}

// ListDocuments aggregates a tenant's chunk rows into per-document summaries.
func (r *ChunkRepository) ListDocuments(ctx context.Context, tenantID, agentID string) ([]*domain.DocumentInfo, error) {
	sql := `
		SELECT tenant_id, COALESCE(agent_id, ''), document_name,
		       COALESCE(MAX(metadata->>'content_type'), ''),
		       COUNT(*), COALESCE(SUM(LENGTH(content)), 0), MIN(created_at)
		FROM chunks
		WHERE tenant_id = $1`
	args := []any{tenantID}

	if agentID != "" {
		sql += ` AND (agent_id = $2 OR agent_id IS NULL)`
		args = append(args, agentID)
	}

	sql += `
		GROUP BY tenant_id, agent_id, document_name
		ORDER BY MIN(created_at) DESC`

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	documents := make([]*domain.DocumentInfo, 0)
	for rows.Next() {
		var info domain.DocumentInfo
		if err := rows.Scan(&info.TenantID, &info.AgentID, &info.DocumentName,
			&info.ContentType, &info.ChunkCount, &info.TotalChars, &info.IngestedAt); err != nil {
			return nil, err
		}
		documents = append(documents, &info)
	}

	return documents, rows.Err()
}
