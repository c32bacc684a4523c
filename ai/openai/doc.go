// Package openai implements the ai interfaces using OpenAI-compatible
// embedding APIs (OpenAI, Ollama, LocalAI, vLLM) via langchaingo.
package openai
