// Package provider implements the model translation backends: a native
// Ollama client and a client for OpenAI-compatible chat endpoints.
//
// Both make a single round trip per request, bounded by a timeout, and
// report every failure as a *codeshift.ModelUnavailableError so the engine
// can fall back to its rule result.
package provider

import "github.com/ZaguanLabs/codeshift"

// ModelTranslator is an alias to the main package interface for convenience.
type ModelTranslator = codeshift.ModelTranslator

// ModelLister is an alias to the main package interface.
type ModelLister = codeshift.ModelLister

// ModelRequest is an alias to the main package type.
type ModelRequest = codeshift.ModelRequest

// MinResponseLength is the shortest cleaned response accepted as code.
const MinResponseLength = 5
