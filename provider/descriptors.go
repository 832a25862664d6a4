package provider

// Builtins returns the descriptors for every provider the application
// ships with. Model tables are the static floor; providers with a live
// listing endpoint get merged on top at query time.
func Builtins() []Descriptor {
	return []Descriptor{
		{
			Name:         "openai",
			Kind:         KindOpenAI,
			KeyEnv:       "OPENAI_API_KEY",
			DefaultModel: "gpt-4o-mini",
			Models: []ModelInfo{
				{Name: "gpt-4o", Label: "GPT-4o", Provider: "openai", MaxTokens: 16384},
				{Name: "gpt-4o-mini", Label: "GPT-4o Mini", Provider: "openai", MaxTokens: 16384},
				{Name: "gpt-4-turbo", Label: "GPT-4 Turbo", Provider: "openai", MaxTokens: 4096},
				{Name: "gpt-3.5-turbo", Label: "GPT-3.5 Turbo", Provider: "openai", MaxTokens: 4096},
			},
		},
		{
			Name:         "anthropic",
			Kind:         KindAnthropic,
			KeyEnv:       "ANTHROPIC_API_KEY",
			BaseURL:      "https://api.anthropic.com/v1",
			DefaultModel: "claude-3-5-sonnet-20241022",
			Models: []ModelInfo{
				{Name: "claude-3-5-sonnet-20241022", Label: "Claude 3.5 Sonnet", Provider: "anthropic", MaxTokens: 8192},
				{Name: "claude-3-5-haiku-20241022", Label: "Claude 3.5 Haiku", Provider: "anthropic", MaxTokens: 8192},
				{Name: "claude-3-opus-20240229", Label: "Claude 3 Opus", Provider: "anthropic", MaxTokens: 4096},
			},
		},
		{
			Name:         "google",
			Kind:         KindGemini,
			KeyEnv:       "GEMINI_API_KEY",
			DefaultModel: "gemini-1.5-flash",
			Models: []ModelInfo{
				{Name: "gemini-1.5-pro", Label: "Gemini 1.5 Pro", Provider: "google", MaxTokens: 8192},
				{Name: "gemini-1.5-flash", Label: "Gemini 1.5 Flash", Provider: "google", MaxTokens: 8192},
				{Name: "gemini-2.0-flash", Label: "Gemini 2.0 Flash", Provider: "google", MaxTokens: 8192},
			},
		},
		{
			Name:         "groq",
			Kind:         KindOpenAI,
			KeyEnv:       "GROQ_API_KEY",
			BaseURL:      "https://api.groq.com/openai/v1",
			DefaultModel: "llama-3.3-70b-versatile",
			Models: []ModelInfo{
				{Name: "llama-3.3-70b-versatile", Label: "Llama 3.3 70B", Provider: "groq", MaxTokens: 32768},
				{Name: "llama-3.1-8b-instant", Label: "Llama 3.1 8B Instant", Provider: "groq", MaxTokens: 8192},
				{Name: "mixtral-8x7b-32768", Label: "Mixtral 8x7B", Provider: "groq", MaxTokens: 32768},
			},
		},
		{
			Name:         "together",
			Kind:         KindOpenAI,
			KeyEnv:       "TOGETHER_API_KEY",
			BaseURL:      "https://api.together.xyz/v1",
			DefaultModel: "meta-llama/Meta-Llama-3.1-70B-Instruct-Turbo",
			Models: []ModelInfo{
				{Name: "meta-llama/Meta-Llama-3.1-70B-Instruct-Turbo", Label: "Llama 3.1 70B Turbo", Provider: "together", MaxTokens: 8192},
				{Name: "meta-llama/Meta-Llama-3.1-8B-Instruct-Turbo", Label: "Llama 3.1 8B Turbo", Provider: "together", MaxTokens: 8192},
				{Name: "deepseek-ai/DeepSeek-V3", Label: "DeepSeek V3", Provider: "together", MaxTokens: 8192},
				{Name: "Qwen/Qwen2.5-72B-Instruct-Turbo", Label: "Qwen 2.5 72B", Provider: "together", MaxTokens: 8192},
			},
		},
		{
			Name:         "deepseek",
			Kind:         KindOpenAI,
			KeyEnv:       "DEEPSEEK_API_KEY",
			BaseURL:      "https://api.deepseek.com/v1",
			DefaultModel: "deepseek-chat",
			Models: []ModelInfo{
				{Name: "deepseek-chat", Label: "DeepSeek Chat", Provider: "deepseek", MaxTokens: 8192},
				{Name: "deepseek-reasoner", Label: "DeepSeek Reasoner", Provider: "deepseek", MaxTokens: 8192},
			},
		},
		{
			Name:         "openrouter",
			Kind:         KindOpenAI,
			KeyEnv:       "OPENROUTER_API_KEY",
			BaseURL:      "https://openrouter.ai/api/v1",
			DefaultModel: "anthropic/claude-3.5-sonnet",
			Models: []ModelInfo{
				{Name: "anthropic/claude-3.5-sonnet", Label: "Claude 3.5 Sonnet (OpenRouter)", Provider: "openrouter", MaxTokens: 8192},
				{Name: "openai/gpt-4o", Label: "GPT-4o (OpenRouter)", Provider: "openrouter", MaxTokens: 16384},
				{Name: "meta-llama/llama-3.1-70b-instruct", Label: "Llama 3.1 70B (OpenRouter)", Provider: "openrouter", MaxTokens: 8192},
			},
		},
	}
}
