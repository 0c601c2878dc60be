package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/custodia-labs/archa/internal/core/domain"
	"github.com/custodia-labs/archa/internal/core/ports/driven"
)

// validProviderID guards the provider-derived table name. Provider IDs come
// from the closed domain.ProviderKind set, but the table name is
// interpolated into SQL so the shape is enforced here too.
var validProviderID = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// vectorIndex implements driven.VectorIndex with one table per provider
// partition and a brute-force cosine scan.
type vectorIndex struct {
	store *Store
}

var _ driven.VectorIndex = (*vectorIndex)(nil)

// EnsurePartition creates the partition table for a provider if missing and
// records its dimensionality in the registry.
func (v *vectorIndex) EnsurePartition(ctx context.Context, providerID string, dimensions int) error {
	table, err := partitionTable(providerID)
	if err != nil {
		return err
	}
	if dimensions <= 0 {
		return &domain.ValidationError{
			Field:  "dimensions",
			Reason: fmt.Sprintf("must be positive, got %d", dimensions),
		}
	}

	existing, err := v.partitionDimensions(ctx, providerID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	if err == nil && existing != dimensions {
		return fmt.Errorf("partition %s has %d dimensions, provider declares %d",
			providerID, existing, dimensions)
	}

	_, err = v.store.db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			fragment_id TEXT PRIMARY KEY,
			document_id TEXT NOT NULL,
			ordinal INTEGER NOT NULL,
			content TEXT NOT NULL,
			char_start INTEGER NOT NULL,
			char_end INTEGER NOT NULL,
			embedding BLOB NOT NULL
		)
	`, table))
	if err != nil {
		return fmt.Errorf("creating partition table: %w", err)
	}

	_, err = v.store.db.ExecContext(ctx, fmt.Sprintf(
		"CREATE INDEX IF NOT EXISTS idx_%s_document ON %s(document_id)", table, table))
	if err != nil {
		return fmt.Errorf("creating partition index: %w", err)
	}

	_, err = v.store.db.ExecContext(ctx, `
		INSERT INTO vector_partitions (provider_id, dimensions)
		VALUES (?, ?)
		ON CONFLICT(provider_id) DO NOTHING
	`, providerID, dimensions)
	if err != nil {
		return fmt.Errorf("registering partition: %w", err)
	}

	return nil
}

// Upsert writes embedding records into the provider's partition.
func (v *vectorIndex) Upsert(ctx context.Context, providerID string, records []domain.EmbeddingRecord) error {
	if len(records) == 0 {
		return nil
	}

	table, err := partitionTable(providerID)
	if err != nil {
		return err
	}

	dimensions, err := v.partitionDimensions(ctx, providerID)
	if err != nil {
		return fmt.Errorf("looking up partition %s: %w", providerID, err)
	}

	for _, r := range records {
		if len(r.Vector) != dimensions {
			return fmt.Errorf("record %s has %d dimensions, partition %s expects %d",
				r.FragmentID, len(r.Vector), providerID, dimensions)
		}
	}

	tx, err := v.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (fragment_id, document_id, ordinal, content, char_start, char_end, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(fragment_id) DO UPDATE SET
			document_id = excluded.document_id,
			ordinal = excluded.ordinal,
			content = excluded.content,
			char_start = excluded.char_start,
			char_end = excluded.char_end,
			embedding = excluded.embedding
	`, table))
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx, r.FragmentID, r.DocumentID, r.Ordinal,
			r.Text, r.CharStart, r.CharEnd, float32SliceToBytes(r.Vector)); err != nil {
			return fmt.Errorf("saving embedding record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// DeleteByDocument removes all records of a document from the provider's
// partition. A missing partition is a no-op.
func (v *vectorIndex) DeleteByDocument(ctx context.Context, providerID, documentID string) error {
	table, err := partitionTable(providerID)
	if err != nil {
		return err
	}

	if _, err := v.partitionDimensions(ctx, providerID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}

	_, err = v.store.db.ExecContext(ctx,
		fmt.Sprintf("DELETE FROM %s WHERE document_id = ?", table), documentID)
	if err != nil {
		return fmt.Errorf("deleting embedding records: %w", err)
	}
	return nil
}

// QueryNearest scans the provider's partition and returns the k most
// similar fragments. Candidates are filtered BEFORE ranking so a scoped
// query can still fill k results. A missing partition yields no hits.
func (v *vectorIndex) QueryNearest(
	ctx context.Context, providerID string, query []float32, k int, filter *driven.VectorFilter,
) ([]driven.VectorHit, error) {
	table, err := partitionTable(providerID)
	if err != nil {
		return nil, err
	}
	if k <= 0 {
		return nil, nil
	}

	dimensions, err := v.partitionDimensions(ctx, providerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if len(query) != dimensions {
		return nil, fmt.Errorf("query vector has %d dimensions, partition %s expects %d",
			len(query), providerID, dimensions)
	}

	sqlQuery := fmt.Sprintf(
		"SELECT fragment_id, document_id, ordinal, content, embedding FROM %s", table)
	args := []any{}

	switch {
	case filter != nil && filter.DocumentID != "":
		sqlQuery += " WHERE document_id = ?"
		args = append(args, filter.DocumentID)
	case filter != nil && len(filter.DocumentIDs) > 0:
		placeholders := strings.Repeat("?,", len(filter.DocumentIDs))
		sqlQuery += " WHERE document_id IN (" + placeholders[:len(placeholders)-1] + ")"
		for _, id := range filter.DocumentIDs {
			args = append(args, id)
		}
	}

	rows, err := v.store.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("querying partition: %w", err)
	}
	defer rows.Close()

	var hits []driven.VectorHit //nolint:prealloc // size unknown from query
	for rows.Next() {
		var hit driven.VectorHit
		var blob []byte
		if err := rows.Scan(&hit.FragmentID, &hit.DocumentID, &hit.Ordinal, &hit.Text, &blob); err != nil {
			return nil, fmt.Errorf("scanning embedding record: %w", err)
		}

		similarity, err := cosineSimilarity(query, bytesToFloat32Slice(blob))
		if err != nil {
			return nil, fmt.Errorf("scoring fragment %s: %w", hit.FragmentID, err)
		}
		hit.Similarity = similarity
		hits = append(hits, hit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating embedding records: %w", err)
	}

	sortVectorHits(hits)
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Partitions returns the provider IDs that have a partition.
func (v *vectorIndex) Partitions(ctx context.Context) ([]string, error) {
	rows, err := v.store.db.QueryContext(ctx,
		"SELECT provider_id FROM vector_partitions ORDER BY provider_id")
	if err != nil {
		return nil, fmt.Errorf("querying partitions: %w", err)
	}
	defer rows.Close()

	var ids []string //nolint:prealloc // size unknown from query
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning partition: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating partitions: %w", err)
	}

	return ids, nil
}

// Close is a no-op; the shared connection is owned by Store.
func (v *vectorIndex) Close() error {
	return nil
}

// partitionDimensions looks up the registered dimensionality of a partition.
func (v *vectorIndex) partitionDimensions(ctx context.Context, providerID string) (int, error) {
	var dimensions int
	err := v.store.db.QueryRowContext(ctx,
		"SELECT dimensions FROM vector_partitions WHERE provider_id = ?", providerID).
		Scan(&dimensions)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, domain.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("scanning partition dimensions: %w", err)
	}
	return dimensions, nil
}

// partitionTable derives the partition table name for a provider.
func partitionTable(providerID string) (string, error) {
	if !validProviderID.MatchString(providerID) {
		return "", &domain.ValidationError{
			Field:  "provider",
			Reason: fmt.Sprintf("invalid provider id %q", providerID),
		}
	}
	return "vectors_" + providerID, nil
}

// sortVectorHits orders hits by similarity descending, breaking ties by
// ordinal then fragment ID for reproducible results.
func sortVectorHits(hits []driven.VectorHit) {
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Similarity != hits[j].Similarity {
			return hits[i].Similarity > hits[j].Similarity
		}
		if hits[i].Ordinal != hits[j].Ordinal {
			return hits[i].Ordinal < hits[j].Ordinal
		}
		return hits[i].FragmentID < hits[j].FragmentID
	})
}

// cosineSimilarity maps the cosine of two vectors into [0,1].
func cosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("dimension mismatch: %d vs %d", len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		va, vb := float64(a[i]), float64(b[i])
		dot += va * vb
		normA += va * va
		normB += vb * vb
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}

	cos := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	return (cos + 1) / 2, nil
}

// float32SliceToBytes converts a []float32 to a little-endian byte slice.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a little-endian byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
