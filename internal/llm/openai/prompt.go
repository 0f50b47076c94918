package openai

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"agro-backend/internal/llm"
)

// Message represents an OpenAI chat message.
type Message struct {
	Role    string
	Content string
}

const (
	systemPromptStrict  = "You are an agronomy recommendation engine. Respond with JSON only. Output must match the schema exactly."
	systemPromptFixJSON = "You are a JSON repair tool. Return only valid JSON that matches the schema exactly."
)

// BuildPrompt creates the chat messages for a recommendation request.
func BuildPrompt(input llm.PromptInput, model string) []Message {
	developer := resolvePromptTemplate(input, model)
	return []Message{
		{Role: "system", Content: systemPromptStrict},
		{Role: "developer", Content: developer},
		{Role: "user", Content: buildUserPrompt(input)},
	}
}

func buildFixPrompt(input llm.PromptInput, model string, raw []byte) []Message {
	developer := resolvePromptTemplate(input, model)
	return []Message{
		{Role: "system", Content: systemPromptFixJSON},
		{Role: "developer", Content: developer},
		{Role: "user", Content: fixUserPrompt(raw)},
	}
}

func resolvePromptTemplate(input llm.PromptInput, model string) string {
	version := strings.TrimSpace(input.PromptVersion)
	template, ok := llm.PromptTemplate(version)
	if !ok {
		log.Printf("unknown prompt version %q, defaulting to standard_v1", version)
		version = "standard_v1"
		template, _ = llm.PromptTemplate(version)
	}

	replacer := strings.NewReplacer(
		"{{PROMPT_VERSION}}", version,
		"{{MODEL}}", model,
		"{{LANGUAGE}}", input.Language,
		"{{MAX_RECOMMENDATIONS}}", strconv.Itoa(input.MaxRecommendations),
	)
	return replacer.Replace(template)
}

func buildUserPrompt(input llm.PromptInput) string {
	crops := strings.Join(input.Crops, ", ")
	if crops == "" {
		crops = "N/A"
	}
	return fmt.Sprintf(
		"Farm profile:\nregion: %s\nfarm type: %s\ncrops: %s\nseason phase: %s\ndetected intent: %s\n\nFarmer question:\n%s",
		input.Region, input.FarmType, crops, input.SeasonPhase, input.Intent, input.Query,
	)
}

func fixUserPrompt(raw []byte) string {
	return fmt.Sprintf("Fix this JSON to match the schema exactly. Output JSON only:\n%s", string(raw))
}
