package classify

import (
	"sort"
	"strings"
)

type Input struct {
	Title           string   `json:"title"`
	Summary         string   `json:"summary"`
	MilestoneTopics []string `json:"milestone_topics"`
}

type Result struct {
	Primary    string     `json:"primary"`
	Secondary  []string   `json:"secondary"`
	Confidence Confidence `json:"confidence"`
}

type Confidence struct {
	Primary   float64            `json:"primary"`
	Secondary map[string]float64 `json:"secondary"`
}

// Matched reports whether the primary came from text rather than the fallback.
func (r Result) Matched(defaultSlug string) bool {
	return r.Primary != strings.ToLower(strings.TrimSpace(defaultSlug))
}

type Classifier struct {
	cfg Config
}

func New(cfg Config) (*Classifier, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.DefaultSlug = strings.ToLower(strings.TrimSpace(cfg.DefaultSlug))
	return &Classifier{cfg: cfg}, nil
}

func (c *Classifier) Config() Config { return c.cfg }

// Classify scores in against ix. It never fails: missing fields count as empty text and
// a nil index yields the fallback result.
func (c *Classifier) Classify(ix *Index, in Input) Result {
	scores := c.score(ix, in)

	ranked := make([]int, 0, len(scores))
	for i, s := range scores {
		if s > 0 {
			ranked = append(ranked, i)
		}
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		if scores[ranked[a]] != scores[ranked[b]] {
			return scores[ranked[a]] > scores[ranked[b]]
		}
		return ranked[a] < ranked[b]
	})

	out := Result{
		Primary:   c.cfg.DefaultSlug,
		Secondary: []string{},
		Confidence: Confidence{
			Primary:   c.cfg.BaselineConfidence,
			Secondary: map[string]float64{},
		},
	}
	if len(ranked) == 0 {
		return out
	}

	topics := ix.Topics()
	primary := ranked[0]
	out.Primary = topics[primary].Slug
	out.Confidence.Primary = c.cfg.confidence(scores[primary])

	for _, i := range ranked[1:] {
		if len(out.Secondary) >= c.cfg.MaxSecondary {
			break
		}
		slug := topics[i].Slug
		if slug == c.cfg.DefaultSlug {
			continue
		}
		out.Secondary = append(out.Secondary, slug)
		out.Confidence.Secondary[slug] = c.cfg.confidence(scores[i])
	}
	return out
}

// score sums field weights per phrase occurrence. Every occurrence of every indexed
// phrase counts, overlapping or not, so adding text can only add hits. Fields are
// matched separately so a phrase never spans title and summary.
func (c *Classifier) score(ix *Index, in Input) []float64 {
	if ix == nil || ix.Len() == 0 {
		return nil
	}
	scores := make([]float64, ix.Len())
	add := func(text string, weight float64) {
		tokens := Tokens(text)
		for i := range tokens {
			ix.eachMatch(tokens, i, func(owner int) { scores[owner] += weight })
		}
	}
	add(in.Title, c.cfg.TitleWeight)
	add(in.Summary, c.cfg.SummaryWeight)
	for _, m := range in.MilestoneTopics {
		add(m, c.cfg.MilestoneWeight)
	}
	return scores
}
