// Package recap generates the monthly narrative summary by calling a
// hosted generative model with a structured response schema.
package recap

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/jiho-dev/recap-archive/internal/model"
)

// ErrEmptyMonth is returned when a month has no memories to summarize.
// Callers disable the generate action rather than sending an empty
// prompt.
var ErrEmptyMonth = errors.New("month has no memories")

// DefaultBaseURL is the hosted generative endpoint.
const DefaultBaseURL = "https://generativelanguage.googleapis.com"

// DefaultModel is the generation model.
const DefaultModel = "gemini-3-flash-preview"

// Fallback is the deterministic analysis substituted on any service
// failure. Callers are never blocked or crashed by summary errors.
var Fallback = model.Analysis{
	Story:         "조용히 흐르는 시간 속에서 소중한 성장의 흔적을 발견한 한 달이었습니다. 따뜻한 기억들이 바람처럼 스쳐 지나가며 일상의 소소한 행복을 남겼습니다.",
	Mood:          "감성적인",
	KeyHighlights: []string{"고요한 산책", "개인적인 성장", "평온한 저녁 시간"},
}

// Client calls the summary service. It never retries on its own;
// retry, if any, is a user-initiated re-invocation.
type Client struct {
	http  *resty.Client
	model string
	log   zerolog.Logger
}

// New creates a Client. Empty baseURL/modelID fall back to defaults.
func New(apiKey, baseURL, modelID string, log zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if modelID == "" {
		modelID = DefaultModel
	}
	c := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetHeader("x-goog-api-key", apiKey).
		SetTimeout(60 * time.Second)

	return &Client{http: c, model: modelID, log: log}
}

// request/response shapes for the generateContent API.

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMIMEType string         `json:"responseMimeType"`
	ResponseSchema   map[string]any `json:"responseSchema"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// responseSchema asks for exactly the analysis shape: a story, one
// mood word, three highlights.
var responseSchema = map[string]any{
	"type": "OBJECT",
	"properties": map[string]any{
		"story":         map[string]any{"type": "STRING"},
		"mood":          map[string]any{"type": "STRING"},
		"keyHighlights": map[string]any{"type": "ARRAY", "items": map[string]any{"type": "STRING"}},
	},
	"required": []string{"story", "mood", "keyHighlights"},
}

// Summarize builds the recap prompt from the month's captions and tags
// and parses the structured reply. On any failure it returns the fixed
// Fallback instead of an error; only an empty month is rejected.
func (c *Client) Summarize(ctx context.Context, monthName string, memories []model.Memory) (model.Analysis, error) {
	if len(memories) == 0 {
		return model.Analysis{}, ErrEmptyMonth
	}

	req := generateRequest{
		Contents:         []content{{Parts: []part{{Text: buildPrompt(monthName, memories)}}}},
		GenerationConfig: generationConfig{ResponseMIMEType: "application/json", ResponseSchema: responseSchema},
	}

	var parsed generateResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(&req).
		SetResult(&parsed).
		Post(fmt.Sprintf("/v1beta/models/%s:generateContent", c.model))
	if err != nil {
		c.log.Warn().Err(err).Str("month", monthName).Msg("summary request failed, using fallback")
		return Fallback, nil
	}
	if resp.StatusCode() != http.StatusOK {
		c.log.Warn().Int("status", resp.StatusCode()).Str("month", monthName).Msg("summary service error, using fallback")
		return Fallback, nil
	}

	analysis, err := extractAnalysis(&parsed)
	if err != nil {
		c.log.Warn().Err(err).Str("month", monthName).Msg("malformed summary response, using fallback")
		return Fallback, nil
	}

	c.log.Info().Str("month", monthName).Str("mood", analysis.Mood).Msg("summary generated")
	return analysis, nil
}

func extractAnalysis(resp *generateResponse) (model.Analysis, error) {
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return model.Analysis{}, errors.New("empty response")
	}
	var a model.Analysis
	if err := json.Unmarshal([]byte(resp.Candidates[0].Content.Parts[0].Text), &a); err != nil {
		return model.Analysis{}, fmt.Errorf("parse analysis: %w", err)
	}
	if a.Story == "" || a.Mood == "" {
		return model.Analysis{}, errors.New("missing required fields")
	}
	return a, nil
}

// buildPrompt mirrors the client prompt: Korean nostalgic recap of the
// month's memory captions/tags, one mood word, three highlights.
func buildPrompt(monthName string, memories []model.Memory) string {
	var b strings.Builder
	fmt.Fprintf(&b, "다음은 %s의 사진 캡션과 태그 목록입니다.\n", monthName)
	b.WriteString("이 데이터들을 바탕으로 이 달의 추억을 회상하는 아름답고, 향수를 불러일으키며, 시적인 짧은 요약(이야기)을 **한국어**로 작성해 주세요.\n")
	b.WriteString("또한, 이 달의 전체적인 분위기(Mood)를 한 단어로 정의하고, 가장 기억에 남는 3가지 하이라이트를 **한국어**로 추출해 주세요.\n\n")
	b.WriteString("추억 데이터:\n")
	for _, m := range memories {
		fmt.Fprintf(&b, "- 캡션: %s (태그: %s)\n", m.Caption, strings.Join(m.Tags, ", "))
	}
	return b.String()
}
