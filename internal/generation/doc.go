// Package generation defines the boundary between the invocation pipeline and
// the hosted language models. A Client sends one prompt built from the
// selected text and returns the model's raw output; the concrete clients live
// in internal/platform/gemini and internal/platform/openai.
package generation
