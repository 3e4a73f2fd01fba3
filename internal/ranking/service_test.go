package ranking

import (
	"context"
	"errors"
	"testing"

	"github.com/astralabs/astra-backend/internal/images"
)

type stubLister struct {
	records []images.Record
	err     error
}

func (s *stubLister) ListAll(ctx context.Context) ([]images.Record, error) {
	return s.records, s.err
}

type stubExtractor struct {
	keywords []string
	err      error
}

func (s *stubExtractor) ExtractKeywords(ctx context.Context, image []byte, mimeType string) ([]string, error) {
	return s.keywords, s.err
}

func gallery() []images.Record {
	return []images.Record{
		{ID: "a", Prompt: "a red fox in the snow", OwnerID: "u1", OwnerName: "Dana", Votes: 2},
		{ID: "b", Prompt: "red sports car", OwnerID: "u2", OwnerName: "Sam", Votes: 5},
		{ID: "c", Prompt: "blue ocean waves", OwnerID: "u1", OwnerName: "Dana", Votes: 0},
	}
}

func TestSearchByPromptWholeTermOutranksKeywordHits(t *testing.T) {
	svc := NewService(&stubLister{records: gallery()}, &stubExtractor{}, nil)

	got, err := svc.SearchByPrompt(context.Background(), "red fox")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	// "a" matches the whole term (10) plus both keywords (2); "b" only "red" (1)
	if len(got) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(got))
	}
	if got[0].ID != "a" || got[1].ID != "b" {
		t.Fatalf("unexpected order: %s, %s", got[0].ID, got[1].ID)
	}
}

func TestSearchByPromptBlankTermReturnsAll(t *testing.T) {
	svc := NewService(&stubLister{records: gallery()}, &stubExtractor{}, nil)

	got, err := svc.SearchByPrompt(context.Background(), "   ")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected full gallery, got %d", len(got))
	}
}

func TestSearchByPromptNoMatches(t *testing.T) {
	svc := NewService(&stubLister{records: gallery()}, &stubExtractor{}, nil)

	got, err := svc.SearchByPrompt(context.Background(), "zebra")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no matches, got %d", len(got))
	}
}

func TestSearchBySimilarityScoresKeywordOverlap(t *testing.T) {
	extractor := &stubExtractor{keywords: []string{"Red", "snow"}}
	svc := NewService(&stubLister{records: gallery()}, extractor, nil)

	got, err := svc.SearchBySimilarity(context.Background(), []byte("img"), "image/png")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	// "a" hits both keywords (4), "b" one (2)
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "b" {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestSearchBySimilarityNoKeywordsFallsBackToAll(t *testing.T) {
	svc := NewService(&stubLister{records: gallery()}, &stubExtractor{}, nil)

	got, err := svc.SearchBySimilarity(context.Background(), []byte("img"), "image/png")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected full gallery fallback, got %d", len(got))
	}
}

func TestSearchBySimilaritySurfacesExtractionError(t *testing.T) {
	extractor := &stubExtractor{err: errors.New("vision down")}
	svc := NewService(&stubLister{records: gallery()}, extractor, nil)

	if _, err := svc.SearchBySimilarity(context.Background(), []byte("img"), "image/png"); err == nil {
		t.Fatal("expected error")
	}
}

func TestTopVotedFiltersAndTruncates(t *testing.T) {
	svc := NewService(&stubLister{records: gallery()}, &stubExtractor{}, nil)

	got, err := svc.TopVoted(context.Background(), 1)
	if err != nil {
		t.Fatalf("top voted: %v", err)
	}
	if len(got) != 1 || got[0].ID != "b" {
		t.Fatalf("expected single top record b, got %+v", got)
	}

	all, err := svc.TopVoted(context.Background(), 0)
	if err != nil {
		t.Fatalf("top voted: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected zero-vote records excluded, got %d", len(all))
	}
}

func TestDesignerRankings(t *testing.T) {
	svc := NewService(&stubLister{records: gallery()}, &stubExtractor{}, nil)

	got, err := svc.DesignerRankings(context.Background())
	if err != nil {
		t.Fatalf("rankings: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 designers, got %d", len(got))
	}
	if got[0].DesignerID != "u2" || got[0].TotalVotes != 5 || got[0].ImageCount != 1 {
		t.Fatalf("unexpected leader: %+v", got[0])
	}
	if got[1].DesignerID != "u1" || got[1].TotalVotes != 2 || got[1].ImageCount != 2 {
		t.Fatalf("unexpected runner-up: %+v", got[1])
	}
}
