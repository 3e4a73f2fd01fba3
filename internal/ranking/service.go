package ranking

import (
	"context"
	"sort"
	"strings"

	"github.com/astralabs/astra-backend/internal/images"
	"github.com/astralabs/astra-backend/pkg/logger"
)

const (
	wholeTermScore  = 10
	keywordHitScore = 1
	similarHitScore = 2
)

type recordLister interface {
	ListAll(ctx context.Context) ([]images.Record, error)
}

type keywordExtractor interface {
	ExtractKeywords(ctx context.Context, image []byte, mimeType string) ([]string, error)
}

// Service ranks the gallery by keyword relevance and by votes. Scoring runs
// over the full record set in memory; the gallery is small enough that the
// document store does not need a search index.
type Service struct {
	repo      recordLister
	extractor keywordExtractor
	logg      *logger.Logger
}

func NewService(repo recordLister, extractor keywordExtractor, logg *logger.Logger) *Service {
	return &Service{repo: repo, extractor: extractor, logg: logg}
}

// SearchByPrompt scores records against the search term: a whole-term
// substring match on the prompt counts 10, each individual keyword hit counts
// 1. A blank term returns the unfiltered gallery.
func (s *Service) SearchByPrompt(ctx context.Context, term string) ([]images.Record, error) {
	records, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return records, nil
	}
	keywords := strings.Fields(term)

	return rankByScore(records, func(rec images.Record) int {
		prompt := strings.ToLower(rec.Prompt)
		score := 0
		if strings.Contains(prompt, term) {
			score += wholeTermScore
		}
		for _, kw := range keywords {
			if strings.Contains(prompt, kw) {
				score += keywordHitScore
			}
		}
		return score
	}), nil
}

// SearchBySimilarity extracts keywords from the uploaded image and scores
// prompts by keyword overlap, 2 per hit. When extraction yields nothing the
// unfiltered gallery comes back rather than an error.
func (s *Service) SearchBySimilarity(ctx context.Context, image []byte, mimeType string) ([]images.Record, error) {
	keywords, err := s.extractor.ExtractKeywords(ctx, image, mimeType)
	if err != nil {
		return nil, err
	}

	records, listErr := s.repo.ListAll(ctx)
	if listErr != nil {
		return nil, listErr
	}

	if len(keywords) == 0 {
		if s.logg != nil {
			s.logg.Warn(ctx, "ranking.no_keywords_extracted")
		}
		return records, nil
	}

	lowered := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			lowered = append(lowered, kw)
		}
	}

	return rankByScore(records, func(rec images.Record) int {
		prompt := strings.ToLower(rec.Prompt)
		score := 0
		for _, kw := range lowered {
			if strings.Contains(prompt, kw) {
				score += similarHitScore
			}
		}
		return score
	}), nil
}

// TopVoted returns the images with at least one vote, most voted first,
// truncated to limit when positive.
func (s *Service) TopVoted(ctx context.Context, limit int) ([]images.Record, error) {
	records, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	voted := []images.Record{}
	for _, rec := range records {
		if rec.Votes > 0 {
			voted = append(voted, rec)
		}
	}
	sort.SliceStable(voted, func(i, j int) bool {
		return voted[i].Votes > voted[j].Votes
	})

	if limit > 0 && len(voted) > limit {
		voted = voted[:limit]
	}
	return voted, nil
}

// DesignerRank aggregates one designer's gallery standing.
type DesignerRank struct {
	DesignerID   string `json:"designerId"`
	DesignerName string `json:"designerName"`
	TotalVotes   int    `json:"totalVotes"`
	ImageCount   int    `json:"imageCount"`
}

// DesignerRankings groups the gallery by owner, summing votes and counting
// images, ordered by total votes.
func (s *Service) DesignerRankings(ctx context.Context) ([]DesignerRank, error) {
	records, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	byOwner := map[string]*DesignerRank{}
	order := []string{}
	for _, rec := range records {
		if rec.OwnerID == "" {
			continue
		}
		rank, ok := byOwner[rec.OwnerID]
		if !ok {
			rank = &DesignerRank{DesignerID: rec.OwnerID, DesignerName: rec.OwnerName}
			byOwner[rec.OwnerID] = rank
			order = append(order, rec.OwnerID)
		}
		if rank.DesignerName == "" {
			rank.DesignerName = rec.OwnerName
		}
		rank.TotalVotes += rec.Votes
		rank.ImageCount++
	}

	rankings := make([]DesignerRank, 0, len(order))
	for _, ownerID := range order {
		rankings = append(rankings, *byOwner[ownerID])
	}
	sort.SliceStable(rankings, func(i, j int) bool {
		return rankings[i].TotalVotes > rankings[j].TotalVotes
	})
	return rankings, nil
}

type scoredRecord struct {
	rec   images.Record
	score int
}

func rankByScore(records []images.Record, score func(images.Record) int) []images.Record {
	scored := []scoredRecord{}
	for _, rec := range records {
		if s := score(rec); s > 0 {
			scored = append(scored, scoredRecord{rec: rec, score: s})
		}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	out := make([]images.Record, 0, len(scored))
	for _, sr := range scored {
		out = append(out, sr.rec)
	}
	return out
}
