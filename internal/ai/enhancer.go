package ai

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/postloop/postloop/internal/model"
)

// Enhancer enriches a batch of calendar entries. Implementations must
// return a slice index-aligned with the input; the batch writer falls
// back to the original entries on any error.
type Enhancer interface {
	Enhance(ctx context.Context, entries []*model.Entry) ([]*model.Entry, error)
}

type suggestion struct {
	Index          int      `json:"index"`
	Hashtags       []string `json:"hashtags,omitempty"`
	CallToAction   string   `json:"call_to_action,omitempty"`
	TargetAudience string   `json:"target_audience,omitempty"`
}

type providerEnhancer struct {
	provider IProvider
	model    string
	timeout  time.Duration
	cache    *expirable.LRU[string, string]
}

func NewEnhancer(provider IProvider, modelName string, timeout time.Duration) Enhancer {
	return &providerEnhancer{
		provider: provider,
		model:    modelName,
		timeout:  timeout,
		cache:    expirable.NewLRU[string, string](2000, nil, 2*time.Hour),
	}
}

func (e *providerEnhancer) Enhance(ctx context.Context, entries []*model.Entry) ([]*model.Entry, error) {
	if len(entries) == 0 {
		return entries, nil
	}
	prompt := buildPrompt(entries)
	key := cacheKey(prompt)

	raw, ok := e.cache.Get(key)
	if !ok {
		callCtx := ctx
		if e.timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, e.timeout)
			defer cancel()
		}
		var err error
		raw, err = e.provider.Generate(callCtx, e.model, prompt)
		if err != nil {
			return nil, err
		}
		e.cache.Add(key, raw)
	}

	suggestions, err := parseSuggestions(raw)
	if err != nil {
		return nil, err
	}
	out := make([]*model.Entry, len(entries))
	for i, entry := range entries {
		clone := *entry
		out[i] = &clone
	}
	for _, s := range suggestions {
		if s.Index < 0 || s.Index >= len(out) {
			continue
		}
		applySuggestion(out[s.Index], s)
	}
	logutil.GetLogger(ctx).Debug("batch enhanced",
		zap.Int("entries", len(entries)),
		zap.Int("suggestions", len(suggestions)),
	)
	return out, nil
}

// applySuggestion is strictly additive: only fields the author left
// empty pick up generated values.
func applySuggestion(entry *model.Entry, s suggestion) {
	if len(entry.Hashtags) == 0 && len(s.Hashtags) > 0 {
		tags := make([]string, 0, len(s.Hashtags))
		for _, tag := range s.Hashtags {
			tag = strings.TrimPrefix(strings.TrimSpace(tag), "#")
			if tag != "" {
				tags = append(tags, tag)
			}
		}
		entry.Hashtags = tags
	}
	if entry.CallToAction == "" && s.CallToAction != "" {
		entry.CallToAction = strings.TrimSpace(s.CallToAction)
	}
	if entry.TargetAudience == "" && s.TargetAudience != "" {
		entry.TargetAudience = strings.TrimSpace(s.TargetAudience)
	}
}

func buildPrompt(entries []*model.Entry) string {
	var sb strings.Builder
	sb.WriteString("You help plan social media posts. For each post below, suggest hashtags (no # prefix), ")
	sb.WriteString("a short call to action and a target audience. Respond with a JSON array of objects ")
	sb.WriteString(`shaped like {"index":0,"hashtags":["a"],"call_to_action":"...","target_audience":"..."}. `)
	sb.WriteString("Respond with JSON only.\n\nPosts:\n")
	for i, entry := range entries {
		item := map[string]interface{}{
			"index":        i,
			"title":        entry.Title,
			"description":  entry.Description,
			"platforms":    entry.Platforms,
			"content_type": entry.ContentType,
		}
		encoded, _ := json.Marshal(item)
		sb.Write(encoded)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// parseSuggestions tolerates models wrapping the payload in prose or
// code fences and extracts the outermost JSON array.
func parseSuggestions(raw string) ([]suggestion, error) {
	start := strings.IndexByte(raw, '[')
	end := strings.LastIndexByte(raw, ']')
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no json array in enhancement response")
	}
	var suggestions []suggestion
	if err := json.Unmarshal([]byte(raw[start:end+1]), &suggestions); err != nil {
		return nil, fmt.Errorf("decode enhancement response: %w", err)
	}
	return suggestions, nil
}

func cacheKey(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return hex.EncodeToString(sum[:])
}
