// Package extract recovers model identifiers and token counts from the
// shape-walked result of an intercepted SDK call.
//
// Each provider family spells its usage fields differently, so extraction
// applies an ordered set of field-name patterns:
//
//   - Model: a direct "Model" member, then "ModelId" nested one level inside
//     a "Value" wrapper (Bedrock-style responses).
//   - Tokens under "Usage": "InputTokenCount"/"OutputTokenCount" (OpenAI
//     official SDKs), then "PromptTokens"/"CompletionTokens" (community
//     SDKs).
//   - Tokens under "Metadata": "PromptTokenCount"/"CandidatesTokenCount"
//     (Gemini-style responses), tried only when "Usage" is absent.
//
// Lookups also accept the snake_case spellings because streaming results are
// drained through a JSON round trip and come back as JSON-decoded maps.
//
// Extraction never raises. Misses are reported through found flags and the
// TokenUsage completeness flag so callers can log them without throwing.
package extract
