// Package matcher proposes a best-guess category for free text, combining
// edit-distance similarity with a keyword-rule fallback for common Brazilian
// spending concepts.
package matcher

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/google/uuid"
	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/rmacedo/extrato/internal/domain/importer/normalizer"
)

// Similarity scoring constants.
const (
	scoreExact     = 1.0
	scoreContains  = 0.9
	scoreKeyword   = 0.85
	MatchThreshold = 0.7
)

// Category is a known ledger category, as loaded from the category store.
type Category struct {
	ID   uuid.UUID
	Name string
	Type string
}

// Match is a scored category proposal. Score is in [0,1]. Never persisted;
// recomputed on every preview generation.
type Match struct {
	CategoryID   uuid.UUID
	CategoryName string
	Score        float64
}

// conceptKeywords maps category-concept keys to description keywords. A
// description containing any keyword suggests a category whose normalized
// name contains the concept key as a substring.
var conceptKeywords = map[string][]string{
	"mercado":     {"mercado", "supermercado", "extra", "carrefour", "atacadao", "pao de acucar", "hortifruti"},
	"transporte":  {"uber", "99", "taxi", "metro", "onibus", "combustivel", "posto", "estacionamento", "pedagio"},
	"alimentacao": {"restaurante", "lanchonete", "ifood", "padaria", "pizzaria", "cafe", "burger", "lanche"},
	"saude":       {"farmacia", "drogaria", "hospital", "clinica", "medico", "laboratorio", "exame"},
	"lazer":       {"cinema", "netflix", "spotify", "show", "teatro", "viagem", "hotel", "ingresso"},
	"casa":        {"aluguel", "condominio", "energia", "luz", "agua", "internet", "telefone", "gas"},
}

// conceptOrder fixes iteration order so ties are deterministic.
var conceptOrder = []string{"mercado", "transporte", "alimentacao", "saude", "lazer", "casa"}

// BestSimilarity returns the highest-scoring category at or above threshold,
// or nil. MatchThreshold is the usual threshold. Exact normalized equality
// scores 1.0, substring containment in either direction 0.9, everything else
// 1 - levenshtein/max(len). Ties keep the first category encountered.
func BestSimilarity(text string, categories []Category, threshold float64) *Match {
	needle := normalizer.Normalize(text)
	if needle == "" {
		return nil
	}

	var best *Match
	for _, c := range categories {
		score := similarity(needle, normalizer.Normalize(c.Name))
		if score < threshold {
			continue
		}
		if best == nil || score > best.Score {
			best = &Match{CategoryID: c.ID, CategoryName: c.Name, Score: score}
		}
	}
	return best
}

// BestKeyword applies the concept-keyword fallback to a transaction
// description. A hit returns the matching category with a fixed 0.85
// confidence; no hit returns nil.
func BestKeyword(description string, categories []Category) *Match {
	desc := normalizer.Normalize(description)
	if desc == "" {
		return nil
	}

	for _, concept := range conceptOrder {
		if !containsAny(desc, conceptKeywords[concept]) {
			continue
		}
		for _, c := range categories {
			if strings.Contains(normalizer.Normalize(c.Name), concept) {
				return &Match{CategoryID: c.ID, CategoryName: c.Name, Score: scoreKeyword}
			}
		}
	}
	return nil
}

// Best tries similarity first, then the keyword fallback.
func Best(text string, categories []Category, threshold float64) *Match {
	if m := BestSimilarity(text, categories, threshold); m != nil {
		return m
	}
	return BestKeyword(text, categories)
}

// Rank returns up to limit categories ordered by fuzzy relevance to text.
// This backs review surfaces that offer alternatives next to the best guess;
// it does not participate in automatic matching.
func Rank(text string, categories []Category, limit int) []Category {
	needle := normalizer.Normalize(text)
	names := make([]string, len(categories))
	byName := make(map[string][]Category, len(categories))
	for i, c := range categories {
		n := normalizer.Normalize(c.Name)
		names[i] = n
		byName[n] = append(byName[n], c)
	}

	ranks := fuzzy.RankFindFold(needle, names)
	sort.Sort(ranks)
	ranked := make([]Category, 0, limit)
	seen := make(map[uuid.UUID]bool)
	for _, r := range ranks {
		for _, c := range byName[r.Target] {
			if seen[c.ID] {
				continue
			}
			seen[c.ID] = true
			ranked = append(ranked, c)
			if limit > 0 && len(ranked) >= limit {
				return ranked
			}
		}
	}
	return ranked
}

func similarity(a, b string) float64 {
	if a == b {
		return scoreExact
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return scoreContains
	}
	maxLen := len([]rune(a))
	if l := len([]rune(b)); l > maxLen {
		maxLen = l
	}
	if maxLen == 0 {
		return 0
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(maxLen)
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
