package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"CreatorProfiler/internal/config"
	"CreatorProfiler/internal/domain"
	"CreatorProfiler/internal/ports"
)

// DefaultSampleSize is also the upper bound on items passed to the model.
const DefaultSampleSize = 25

const defaultTemperature = 0.2

const narrativeInstruction = "Write in accessible plain language for parents; identify listed topics and " +
	"polarization/rhetoric explicitly; do not shorten; include uncertainties; be neutral and evidence-tied."

// ChatGPTClient implements ports.NarrativeWriter backed by OpenAI-compatible APIs.
type ChatGPTClient struct {
	endpoint     string
	model        string
	apiKey       string
	systemPrompt string
	temperature  float64
	maxTokens    int
	sampleSize   int
	httpClient   *http.Client
}

var _ ports.NarrativeWriter = (*ChatGPTClient)(nil)

// NewChatGPTClient builds a client from configuration.
func NewChatGPTClient(cfg config.ChatGPTConfig) *ChatGPTClient {
	sample := cfg.SampleSize
	if sample <= 0 || sample > DefaultSampleSize {
		sample = DefaultSampleSize
	}
	temperature := defaultTemperature
	if cfg.Temperature != nil {
		temperature = *cfg.Temperature
	}
	return &ChatGPTClient{
		endpoint:     cfg.Endpoint,
		model:        cfg.Model,
		apiKey:       cfg.APIKey,
		systemPrompt: cfg.SystemPrompt,
		temperature:  temperature,
		maxTokens:    cfg.MaxTokens,
		sampleSize:   sample,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type itemFlags struct {
	SensationalTerms  string `json:"sensational_terms"`
	LoadedTerms       string `json:"loaded_terms"`
	UsVsThem          bool   `json:"us_vs_them"`
	ExplicitLanguage  bool   `json:"explicit_language"`
	Clickbait         bool   `json:"clickbait"`
	AppealAuthority   bool   `json:"appeal_authority"`
	AppealCommonSense bool   `json:"appeal_common_sense"`
	AppealEmotion     bool   `json:"appeal_emotion"`
	AnecdoteAsTrend   bool   `json:"anecdote_as_trend"`
	Monetization      string `json:"monetization"`
}

type itemSample struct {
	Title string    `json:"title"`
	Date  string    `json:"date"`
	Desc  string    `json:"desc"`
	Flags itemFlags `json:"flags"`
}

type reachPayload struct {
	SubscriberCount int64 `json:"subscriberCount"`
	ViewCount       int64 `json:"viewCount"`
	VideoCount      int64 `json:"videoCount"`
}

type narrativePrompt struct {
	Creator       string        `json:"creator"`
	Timeframe     string        `json:"timeframe"`
	Affiliations  []string      `json:"affiliations"`
	Ideologies    []string      `json:"ideologies"`
	Reach         *reachPayload `json:"reach"`
	Controversies [][2]string   `json:"controversies"`
	ItemsSample   []itemSample  `json:"items_sample"`
	FormatOrder   []string      `json:"format_order"`
	Instruction   string        `json:"instruction"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// WriteNarrative asks the model for a parent-facing draft and returns its text.
func (c *ChatGPTClient) WriteNarrative(ctx context.Context, req ports.NarrativeRequest) (string, error) {
	if c == nil {
		return "", fmt.Errorf("chatgpt client is nil")
	}
	if c.apiKey == "" || c.endpoint == "" || c.model == "" {
		return "", fmt.Errorf("chatgpt client misconfigured")
	}

	prompt, err := json.Marshal(buildPrompt(req, c.sampleSize))
	if err != nil {
		return "", fmt.Errorf("marshal prompt: %w", err)
	}

	payload := map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": safePrompt(c.systemPrompt)},
			{"role": "user", "content": string(prompt)},
		},
		"temperature": c.temperature,
	}
	if c.maxTokens > 0 {
		payload["max_tokens"] = c.maxTokens
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal chatgpt payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("send prompt: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("chatgpt error %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode chatgpt response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("chatgpt returned no choices")
	}

	return out.Choices[0].Message.Content, nil
}

func buildPrompt(req ports.NarrativeRequest, sampleSize int) narrativePrompt {
	sample := req.Items
	if len(sample) > sampleSize {
		sample = sample[:sampleSize]
	}

	items := make([]itemSample, 0, len(sample))
	for _, it := range sample {
		items = append(items, itemSample{
			Title: it.Title,
			Date:  it.Date,
			Desc:  it.Description,
			Flags: itemFlags{
				SensationalTerms:  strings.Join(it.SensationalTerms, ", "),
				LoadedTerms:       strings.Join(it.LoadedTerms, ", "),
				UsVsThem:          it.UsVsThem,
				ExplicitLanguage:  it.ExplicitLanguage,
				Clickbait:         it.Clickbait,
				AppealAuthority:   it.AppealAuthority,
				AppealCommonSense: it.AppealCommonSense,
				AppealEmotion:     it.AppealEmotion,
				AnecdoteAsTrend:   it.AnecdoteAsTrend,
				Monetization:      strings.Join(it.Monetization, ", "),
			},
		})
	}

	controversies := make([][2]string, 0, len(req.Controversies))
	for _, ref := range req.Controversies {
		controversies = append(controversies, [2]string{ref.Title, ref.URL})
	}

	return narrativePrompt{
		Creator:       req.Creator,
		Timeframe:     req.Timeframe,
		Affiliations:  nonNil(req.Aggregate.Affiliations),
		Ideologies:    nonNil(req.Aggregate.Ideologies),
		Reach:         toReachPayload(req.Reach),
		Controversies: controversies,
		ItemsSample:   items,
		FormatOrder:   req.SectionOrder,
		Instruction:   narrativeInstruction,
	}
}

func toReachPayload(stats *domain.ReachStats) *reachPayload {
	if stats == nil {
		return nil
	}
	return &reachPayload{
		SubscriberCount: stats.SubscriberCount,
		ViewCount:       stats.ViewCount,
		VideoCount:      stats.VideoCount,
	}
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func safePrompt(prompt string) string {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "You draft non-partisan media profiles in clear language for parents, grounded in evidence."
	}
	return prompt
}
