package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/archa/internal/adapters/driven/embedding/local"
	"github.com/custodia-labs/archa/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/archa/internal/core/domain"
	"github.com/custodia-labs/archa/internal/fragmenter"
)

type askFixture struct {
	ingest *IngestService
	ask    *AskService
}

func newAskFixture(t *testing.T) *askFixture {
	t.Helper()
	metadata := memory.NewMetadataStore()
	vectors := memory.NewVectorIndex()
	embedder := local.NewProvider()
	splitter, err := fragmenter.New(fragmenter.WithLength(150), fragmenter.WithOverlap(30))
	require.NoError(t, err)

	return &askFixture{
		ingest: NewIngestService(metadata, vectors, embedder, splitter),
		ask:    NewAskService(metadata, vectors, embedder),
	}
}

func (f *askFixture) archive(t *testing.T, title, text string) string {
	t.Helper()
	receipt, err := f.ingest.Save(context.Background(), domain.IngestRequest{
		Document: domain.NormalizedDocument{
			Title:      title,
			Text:       text,
			SourceKind: domain.SourceText,
		},
		Categories: []string{"notes"},
	})
	require.NoError(t, err)
	return receipt.ID
}

func TestAskService_RelevantFragments(t *testing.T) {
	f := newAskFixture(t)
	f.archive(t, "Raft Notes",
		"Raft elects a single leader per term. Followers replicate the leader's log and apply committed entries in order. A candidate wins with a majority of votes.")
	f.archive(t, "Sourdough",
		"Feed the starter twice daily. Bulk fermentation takes four to six hours at room temperature depending on hydration.")

	rag, err := f.ask.RelevantFragments(context.Background(), "how does raft elect a leader", "", 3)
	require.NoError(t, err)
	require.NotNil(t, rag)
	require.NotEmpty(t, rag.Fragments)
	assert.LessOrEqual(t, len(rag.Fragments), 3)

	// Fragments arrive best-first.
	for i := 1; i < len(rag.Fragments); i++ {
		assert.GreaterOrEqual(t, rag.Fragments[i-1].Score, rag.Fragments[i].Score)
	}

	// Sources are deduplicated in first-seen order and consistent with
	// the fragments.
	seen := make(map[string]bool)
	for _, src := range rag.Sources {
		assert.False(t, seen[src.DocumentID], "duplicate source %s", src.DocumentID)
		seen[src.DocumentID] = true
		assert.NotEmpty(t, src.Title)
	}
	for _, frag := range rag.Fragments {
		assert.True(t, seen[frag.DocumentID], "fragment without source entry")
	}
}

func TestAskService_ScopedToDocument(t *testing.T) {
	f := newAskFixture(t)
	raftID := f.archive(t, "Raft Notes",
		"Raft elects a single leader per term. Followers replicate the leader's log.")
	f.archive(t, "Paxos Notes",
		"Paxos reaches consensus through prepare and accept phases with proposal numbers.")

	rag, err := f.ask.RelevantFragments(context.Background(), "consensus", raftID, 5)
	require.NoError(t, err)
	require.NotEmpty(t, rag.Fragments)
	for _, frag := range rag.Fragments {
		assert.Equal(t, raftID, frag.DocumentID)
	}
	require.Len(t, rag.Sources, 1)
	assert.Equal(t, raftID, rag.Sources[0].DocumentID)
}

func TestAskService_UnknownDocument(t *testing.T) {
	f := newAskFixture(t)
	f.archive(t, "Something", "Some body.")

	_, err := f.ask.RelevantFragments(context.Background(), "anything", "no-such-id", 5)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAskService_EmptyQuestion(t *testing.T) {
	f := newAskFixture(t)
	_, err := f.ask.RelevantFragments(context.Background(), "  ", "", 5)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAskService_EmptyArchive(t *testing.T) {
	f := newAskFixture(t)
	rag, err := f.ask.RelevantFragments(context.Background(), "anything at all", "", 5)
	require.NoError(t, err)
	assert.Empty(t, rag.Fragments)
	assert.Empty(t, rag.Sources)
}
