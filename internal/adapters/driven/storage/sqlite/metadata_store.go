package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/custodia-labs/archa/internal/core/domain"
	"github.com/custodia-labs/archa/internal/core/ports/driven"
)

// exactTitleScore pins exact full-title matches above every bm25 hit.
const exactTitleScore = 1000.0

// categoryMatchExpr matches one category inside the comma-joined
// categories column. LIKE is case-insensitive for ASCII.
const categoryMatchExpr = "(',' || categories || ',') LIKE ('%,' || ? || ',%')"

// categoryMatchExprDoc is the same match qualified for joined queries.
const categoryMatchExprDoc = "(',' || d.categories || ',') LIKE ('%,' || ? || ',%')"

// ftsSpecials strips FTS5 operator characters that would otherwise produce
// syntax errors for everyday queries.
var ftsSpecials = regexp.MustCompile(`[.*"()\-:^]`)

// metadataStore implements driven.MetadataStore.
type metadataStore struct {
	store *Store
}

var _ driven.MetadataStore = (*metadataStore)(nil)

// SaveDocument stores or updates a document. The FTS index row is
// maintained by triggers.
func (s *metadataStore) SaveDocument(ctx context.Context, doc *domain.Document) error {
	now := time.Now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO documents
			(id, title, content, source_kind, source_ref, author, published_date,
			 categories, summary, keywords, tags, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			content = excluded.content,
			source_kind = excluded.source_kind,
			source_ref = excluded.source_ref,
			author = excluded.author,
			published_date = excluded.published_date,
			categories = excluded.categories,
			summary = excluded.summary,
			keywords = excluded.keywords,
			tags = excluded.tags,
			description = excluded.description,
			updated_at = excluded.updated_at
	`, doc.ID, doc.Title, doc.RawText, doc.SourceKind.String(), nullString(doc.SourceRef),
		nullString(doc.Author), nullTime(doc.PublishedDate), joinCategories(doc.Categories),
		nullString(doc.Summary), nullString(doc.Keywords), nullString(doc.Tags),
		nullString(doc.Description), doc.CreatedAt, doc.UpdatedAt)

	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	return nil
}

// GetDocument retrieves a document by ID.
func (s *metadataStore) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, title, content, source_kind, source_ref, author, published_date,
		       categories, summary, keywords, tags, description, created_at, updated_at
		FROM documents WHERE id = ?
	`, id)

	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return doc, nil
}

// DeleteDocument removes a document and, via trigger, its FTS row.
func (s *metadataStore) DeleteDocument(ctx context.Context, id string) error {
	res, err := s.store.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListDocuments returns document summaries matching the options.
func (s *metadataStore) ListDocuments(ctx context.Context, opts domain.ListOptions) ([]domain.DocumentSummary, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 20
	}

	sortKey := opts.SortKey
	if sortKey == "" {
		sortKey = domain.SortByCreatedAt
	}
	if !sortKey.IsValid() {
		return nil, &domain.ValidationError{Field: "sort", Reason: "unknown sort key " + sortKey.String()}
	}

	// Sort keys come from the allowlist above, never from raw input.
	order := sortKey.String() + " DESC"
	if sortKey == domain.SortByTitle {
		order = "title COLLATE NOCASE ASC"
	}

	query := `
		SELECT id, title, categories, author, created_at
		FROM documents
	`
	args := []any{}
	if opts.Category != "" {
		query += " WHERE " + categoryMatchExpr
		args = append(args, strings.TrimSpace(opts.Category))
	}
	query += " ORDER BY " + order + " LIMIT ?"
	args = append(args, limit)

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.DocumentSummary //nolint:prealloc // size unknown from query
	for rows.Next() {
		var d domain.DocumentSummary
		var categories string
		var author sql.NullString
		if err := rows.Scan(&d.ID, &d.Title, &categories, &author, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning document summary: %w", err)
		}
		d.Categories = splitCategories(categories)
		d.Author = author.String
		docs = append(docs, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}

	return docs, nil
}

// SearchKeyword runs the lexical leg: an exact-title pass pinned above
// everything, then a bm25-scored FTS5 pass with the title column weighted.
func (s *metadataStore) SearchKeyword(ctx context.Context, query, category string, limit int) ([]driven.KeywordHit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 10
	}

	scores := make(map[string]float64)
	snippets := make(map[string]string)
	titleMatches := make(map[string]bool)

	if err := s.exactTitleSearch(ctx, query, category, limit, scores, titleMatches); err != nil {
		return nil, err
	}
	if err := s.fulltextSearch(ctx, query, category, limit, scores, snippets); err != nil {
		return nil, err
	}

	hits := make([]driven.KeywordHit, 0, len(scores))
	for id, score := range scores {
		hits = append(hits, driven.KeywordHit{
			DocumentID: id,
			Score:      score,
			Snippet:    snippets[id],
			TitleMatch: titleMatches[id],
		})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].DocumentID < hits[j].DocumentID
	})

	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// exactTitleSearch pins documents whose full title equals the query.
func (s *metadataStore) exactTitleSearch(
	ctx context.Context, query, category string, limit int,
	scores map[string]float64, titleMatches map[string]bool,
) error {
	sqlQuery := "SELECT id FROM documents WHERE title = ? COLLATE NOCASE"
	args := []any{query}
	if category != "" {
		sqlQuery += " AND " + categoryMatchExpr
		args = append(args, strings.TrimSpace(category))
	}
	sqlQuery += " LIMIT ?"
	args = append(args, limit)

	rows, err := s.store.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return fmt.Errorf("title search: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("scanning title hit: %w", err)
		}
		scores[id] = exactTitleScore
		titleMatches[id] = true
	}
	return rows.Err()
}

// fulltextSearch scores documents with bm25 over title, content and
// keywords. bm25 returns negative values for matches, so the score is
// negated to make higher mean better.
func (s *metadataStore) fulltextSearch(
	ctx context.Context, query, category string, limit int,
	scores map[string]float64, snippets map[string]string,
) error {
	sanitized := sanitizeFTSQuery(query)
	if sanitized == "" {
		return nil
	}

	sqlQuery := `
		SELECT f.id,
		       -bm25(documents_fts, 0.0, 5.0, 1.0, 2.0) AS score,
		       snippet(documents_fts, 2, '', '', '...', 16)
		FROM documents_fts f
		JOIN documents d ON d.id = f.id
		WHERE documents_fts MATCH ?
	`
	args := []any{sanitized}
	if category != "" {
		sqlQuery += " AND " + categoryMatchExprDoc
		args = append(args, strings.TrimSpace(category))
	}
	sqlQuery += " ORDER BY score DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.store.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return fmt.Errorf("fulltext search: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, snippet string
		var score float64
		if err := rows.Scan(&id, &score, &snippet); err != nil {
			return fmt.Errorf("scanning fulltext hit: %w", err)
		}
		if score > scores[id] {
			scores[id] = score
		}
		if _, ok := snippets[id]; !ok {
			snippets[id] = snippet
		}
	}
	return rows.Err()
}

// ListCategories computes category counts from the comma-joined column.
// Counts are derived at query time, never stored redundantly.
func (s *metadataStore) ListCategories(ctx context.Context) ([]domain.CategoryCount, error) {
	rows, err := s.store.db.QueryContext(ctx, "SELECT categories FROM documents")
	if err != nil {
		return nil, fmt.Errorf("querying categories: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var categories string
		if err := rows.Scan(&categories); err != nil {
			return nil, fmt.Errorf("scanning categories: %w", err)
		}
		for _, c := range splitCategories(categories) {
			counts[c]++
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating categories: %w", err)
	}

	result := make([]domain.CategoryCount, 0, len(counts))
	for name, count := range counts {
		result = append(result, domain.CategoryCount{Name: name, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})

	return result, nil
}

// DocumentIDsByCategory returns the IDs of documents carrying the category.
func (s *metadataStore) DocumentIDsByCategory(ctx context.Context, category string) ([]string, error) {
	rows, err := s.store.db.QueryContext(ctx,
		"SELECT id FROM documents WHERE "+categoryMatchExpr+" ORDER BY id",
		strings.TrimSpace(category))
	if err != nil {
		return nil, fmt.Errorf("querying documents by category: %w", err)
	}
	defer rows.Close()

	var ids []string //nolint:prealloc // size unknown from query
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning document id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating document ids: %w", err)
	}

	return ids, nil
}

// UpdateMetadata applies a partial metadata update. The FTS row is kept in
// step by the update trigger.
func (s *metadataStore) UpdateMetadata(ctx context.Context, id string, patch domain.MetadataPatch) error {
	sets := []string{}
	args := []any{}

	if patch.Summary != nil {
		sets = append(sets, "summary = ?")
		args = append(args, *patch.Summary)
	}
	if patch.Keywords != nil {
		sets = append(sets, "keywords = ?")
		args = append(args, *patch.Keywords)
	}
	if patch.Tags != nil {
		sets = append(sets, "tags = ?")
		args = append(args, *patch.Tags)
	}
	if patch.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *patch.Description)
	}

	if len(sets) == 0 {
		// Nothing to change; still report unknown IDs.
		_, err := s.GetDocument(ctx, id)
		return err
	}

	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now().UTC(), id)

	res, err := s.store.db.ExecContext(ctx,
		"UPDATE documents SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return fmt.Errorf("updating metadata: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update result: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Close is a no-op; the shared connection is owned by Store.
func (s *metadataStore) Close() error {
	return nil
}

// ==================== Helper Functions ====================

// rowScanner abstracts over *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanDocument scans a full document row.
func scanDocument(row rowScanner) (*domain.Document, error) {
	var doc domain.Document
	var sourceKind, categories string
	var sourceRef, author, summary, keywords, tags, description sql.NullString
	var publishedDate sql.NullTime

	if err := row.Scan(&doc.ID, &doc.Title, &doc.RawText, &sourceKind, &sourceRef,
		&author, &publishedDate, &categories, &summary, &keywords, &tags,
		&description, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}

	doc.SourceKind = domain.SourceKind(sourceKind)
	doc.SourceRef = sourceRef.String
	doc.Author = author.String
	doc.Categories = splitCategories(categories)
	doc.Summary = summary.String
	doc.Keywords = keywords.String
	doc.Tags = tags.String
	doc.Description = description.String
	if publishedDate.Valid {
		t := publishedDate.Time
		doc.PublishedDate = &t
	}

	return &doc, nil
}

// sanitizeFTSQuery strips FTS5 operator characters from everyday queries.
func sanitizeFTSQuery(query string) string {
	sanitized := ftsSpecials.ReplaceAllString(query, " ")
	return strings.Join(strings.Fields(sanitized), " ")
}

// joinCategories normalizes and comma-joins a category set for storage.
func joinCategories(categories []string) string {
	trimmed := make([]string, 0, len(categories))
	for _, c := range categories {
		if c = strings.TrimSpace(c); c != "" {
			trimmed = append(trimmed, c)
		}
	}
	return strings.Join(trimmed, ",")
}

// splitCategories reverses joinCategories.
func splitCategories(categories string) []string {
	if categories == "" {
		return nil
	}
	parts := strings.Split(categories, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			result = append(result, p)
		}
	}
	return result
}

// nullString converts an empty string to NULL for storage.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// nullTime converts a nil time pointer to NULL for storage.
func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
