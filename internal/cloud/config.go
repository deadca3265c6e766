// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cloud defines the data structures for application configuration,
// loaded from TOML files. It provides a structured way to manage settings for
// the search pipeline, Google Cloud services, AI models, Pub/Sub topics, and
// prompt templates.
//
// Structs:
//   - SearchSettings: Tunables for the search orchestrator (thresholds, TTL).
//   - YouTubeSettings: Credentials and locale settings for the video search provider.
//   - BigQueryDataSource: Configuration for the BigQuery dataset and tables.
//   - PromptTemplates: Text templates for prompts sent to GenAI models.
//   - VertexAiLLMModel: Configuration for a Vertex AI Large Language Model.
//   - TopicSubscription: Configuration for a single Pub/Sub subscription.
//   - Storage: Configuration for Google Cloud Storage buckets.
//   - Config: The top-level struct that aggregates all of the above.
//
// Functions:
//   - NewConfig: A constructor that initializes a new Config object with empty maps.
package cloud

import "google.golang.org/genai"

// DefaultSafetySettings defines the default content safety thresholds for
// GenAI models. The input data is public review transcripts, so all
// categories pass through without being blocked.
var DefaultSafetySettings = []*genai.SafetySetting{
	{
		Category:  genai.HarmCategoryDangerousContent,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategoryHarassment,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategoryHateSpeech,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategorySexuallyExplicit,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
}

// SearchSettings holds the named policy constants of the search orchestrator.
// These are deliberate product decisions, not tuning knobs; see the search
// service for how each one is applied.
type SearchSettings struct {
	MinQueryLength  int `toml:"min_query_length"`  // Queries shorter than this (after normalization) are a no-op.
	MinReviewCount  int `toml:"min_review_count"`  // Persisted review count considered "enough" to skip backfill.
	MaxResults      int `toml:"max_results"`       // Maximum number of video candidates per backfill.
	OverfetchFactor int `toml:"overfetch_factor"`  // Search requests MaxResults * OverfetchFactor and truncates.
	CacheTTLMinutes int `toml:"cache_ttl_minutes"` // Search cache entry lifetime.
	RecentSearches  int `toml:"recent_searches"`   // Number of product names returned by the recent-searches endpoint.
}

// YouTubeSettings configures the video search and transcript providers.
// APIKey is a provisioned credential: its absence is a configuration error,
// not a runtime/data error.
type YouTubeSettings struct {
	APIKey            string `toml:"api_key"`
	RelevanceLanguage string `toml:"relevance_language"` // e.g. "en".
	QueryQualifier    string `toml:"query_qualifier"`    // Appended to every search query, e.g. "review".
}

// BigQueryDataSource represents the configuration for the BigQuery data source.
type BigQueryDataSource struct {
	DatasetName  string `toml:"dataset"`       // The name of the BigQuery dataset.
	ReviewTable  string `toml:"review_table"`  // Table holding review records, keyed by video id.
	ProductTable string `toml:"product_table"` // Table holding product summaries, keyed by product name.
}

// PromptTemplates holds the Go text/template strings for the prompts sent to
// the generative models.
type PromptTemplates struct {
	AnalyzerPrompt   string `toml:"analyzer"`   // Per-transcript analysis prompt.
	SummarizerPrompt string `toml:"summarizer"` // Product summarization prompt.
	BloggerPrompt    string `toml:"blogger"`    // Blog post generation prompt.
}

// VertexAiLLMModel represents the configuration for a Vertex AI large
// language model (LLM).
type VertexAiLLMModel struct {
	Model              string  `toml:"model"`               // The name of the Vertex AI LLM.
	SystemInstructions string  `toml:"system_instructions"` // The system instructions for the LLM.
	Temperature        float32 `toml:"temperature"`         // The temperature parameter for the LLM.
	TopP               float32 `toml:"top_p"`               // The top_p parameter for the LLM.
	TopK               float32 `toml:"top_k"`               // The top_k parameter for the LLM.
	MaxTokens          int32   `toml:"max_tokens"`          // The maximum number of tokens for the LLM output.
	OutputFormat       string  `toml:"output_format"`       // The desired output format, e.g. "application/json".
	RateLimit          int     `toml:"rate_limit"`          // The rate limit for the LLM in requests per second.
}

// TopicSubscription represents the configuration for a Pub/Sub topic subscription.
type TopicSubscription struct {
	Name             string `toml:"name"`               // The name of the Pub/Sub subscription.
	DeadLetterTopic  string `toml:"dead_letter_topic"`  // The dead-letter topic for the subscription.
	TimeoutInSeconds int    `toml:"timeout_in_seconds"` // The timeout for the subscription in seconds.
}

// Storage represents the configuration for storage buckets.
type Storage struct {
	TranscriptBucket string `toml:"transcript_bucket"` // Bucket where raw transcripts are archived per video id.
	ThumbnailBucket  string `toml:"thumbnail_bucket"`  // Bucket where candidate thumbnails are copied.
}

// Config represents the overall configuration for the application, loaded
// from TOML files. It acts as the root container for all other configuration
// structs.
type Config struct {
	// Application holds general application settings.
	Application struct {
		Name                      string `toml:"name"`                         // The name of the application.
		GoogleProjectId           string `toml:"google_project_id"`            // The Google Cloud project ID.
		GoogleLocation            string `toml:"location"`                     // The Google Cloud location.
		ThreadPoolSize            int    `toml:"thread_pool_size"`             // Worker pool size for parallel fetch/analysis fan-out.
		SignerServiceAccountEmail string `toml:"signer_service_account_email"` // Service account used for signing GCS URLs.
	} `toml:"application"`
	Search             SearchSettings               `toml:"search"`                // Search orchestrator policy constants.
	YouTube            YouTubeSettings              `toml:"youtube"`               // Video search / transcript provider settings.
	Storage            Storage                      `toml:"storage"`               // Storage configuration.
	BigQueryDataSource BigQueryDataSource           `toml:"big_query_data_source"` // BigQuery data source configuration.
	PromptTemplates    PromptTemplates              `toml:"prompt_templates"`      // Prompt templates configuration.
	TopicSubscriptions map[string]TopicSubscription `toml:"topic_subscriptions"`   // Pub/Sub subscriptions, keyed by a logical name (e.g. "SearchTopic").
	AgentModels        map[string]VertexAiLLMModel  `toml:"agent_models"`          // Vertex AI LLM models, keyed by a logical name (e.g. "analyzer").
}

// NewConfig creates a new, initialized Config instance. The maps must be
// initialized before the configuration loader populates them.
//
// Outputs:
//   - *Config: A pointer to a new Config struct with its map fields initialized.
func NewConfig() *Config {
	return &Config{
		TopicSubscriptions: make(map[string]TopicSubscription),
		AgentModels:        make(map[string]VertexAiLLMModel),
	}
}
