// Package ai provides the book-analysis capability: given scraped
// metadata, produce tags, a short verdict and a plot summary. The
// capability is opaque to callers; any failure is reported as an error
// and never aborts the surrounding pipeline.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/hsinyu-chen/novelshelf/internal/scraper"
)

// MinPromptLength is the minimum description length worth sending to the
// model; shorter text produces hallucinated analyses.
const MinPromptLength = 20

// Analysis is the model's structured verdict on one book.
type Analysis struct {
	// Tags holds 3-6 short labels; the first two are positionally
	// significant (category, then setting).
	Tags    []string `json:"tags"`
	Summary string   `json:"summary"` // one-line verdict, ~40 chars
	Plot    string   `json:"plot"`    // objective plot summary, ~150 chars
}

// Analyzer is the opaque AI capability consumed by the orchestrator and
// the batch importer.
type Analyzer interface {
	Analyze(ctx context.Context, raw scraper.RawMetadata) (*Analysis, error)
}

// GeminiAnalyzer implements Analyzer on top of the Gemini API.
type GeminiAnalyzer struct {
	apiKey      string
	model       string
	temperature float32
}

// NewGeminiAnalyzer creates an analyzer. Model defaults to
// gemini-2.5-flash.
func NewGeminiAnalyzer(apiKey, model string, temperature float32) *GeminiAnalyzer {
	if model == "" {
		model = "gemini-2.5-flash"
	}
	return &GeminiAnalyzer{apiKey: apiKey, model: model, temperature: temperature}
}

const promptTemplate = `你是一位閱讀量豐富的資深小說愛好者。
你對各類網文套路非常熟悉，品味中肯，擅長用精練的語言向朋友推薦或介紹書籍。

請閱讀以下這本小說的資訊，並回傳 JSON 格式的分析結果。

【書籍資訊】
書名：%s
作者：%s
來源：%s
文案：
%s

【任務要求】
1. **tags (標籤)**：提取 3-6 個最核心的元素標籤（例如：重生, 系統, 甜寵, 娛樂圈, 懸疑, HE...）。請使用台灣讀者習慣的用語。
2. **summary (精闢短評)**：
   - 這是要顯示在列表上的短評。
   - 用一句話 (40字內) 點評這本書的核心看點。
   - 風格要像一般讀者看完書後的真實感想。
3. **plot (劇情摘要)**：
   - 用 150 字以內，客觀總結這本書的主線劇情。

請直接回傳 JSON。`

var markdownFenceRe = regexp.MustCompile("```json|```")

// Analyze sends the book metadata to Gemini and parses the JSON verdict.
func (g *GeminiAnalyzer) Analyze(ctx context.Context, raw scraper.RawMetadata) (*Analysis, error) {
	if g.apiKey == "" {
		return nil, fmt.Errorf("gemini api key is not configured")
	}
	if len([]rune(raw.Description)) < MinPromptLength {
		return nil, fmt.Errorf("description too short for analysis (%d chars)", len([]rune(raw.Description)))
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(g.apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(g.model)
	model.SetTemperature(g.temperature)
	model.ResponseMIMEType = "application/json"

	prompt := fmt.Sprintf(promptTemplate, raw.Title, raw.Author, raw.SourceName, raw.Description)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("no candidates returned from gemini")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return nil, fmt.Errorf("empty content returned from gemini")
	}
	text, ok := candidate.Content.Parts[0].(genai.Text)
	if !ok {
		return nil, fmt.Errorf("unexpected response part type %T", candidate.Content.Parts[0])
	}

	return ParseAnalysis(string(text))
}

// ParseAnalysis decodes a model response into an Analysis, tolerating
// markdown-fenced JSON.
func ParseAnalysis(text string) (*Analysis, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("empty model response")
	}

	var result Analysis
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		cleaned := strings.TrimSpace(markdownFenceRe.ReplaceAllString(text, ""))
		if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
			return nil, fmt.Errorf("decode model response: %w", err)
		}
	}

	if result.Summary == "" {
		result.Summary = "AI 暫無評論"
	}
	if result.Plot == "" {
		result.Plot = "無法生成摘要"
	}
	return &result, nil
}
