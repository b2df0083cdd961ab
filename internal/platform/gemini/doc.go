// Package gemini implements generation.Client on top of Google's Gemini API
// using the google.golang.org/genai SDK.
//
// The API key is supplied per call because it lives in user settings and may
// change between invocations, so a lightweight genai.Client is built for every
// request. Each Generate call issues exactly one GenerateContent request with
// the rendered prompt as a single user-role content and reads the first part
// of the first candidate.
package gemini
