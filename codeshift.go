// Package codeshift provides an adaptive source-code conversion engine.
//
// Codeshift converts code between programming languages by combining a fast,
// deterministic rule-based rewriter with an optional call to a locally hosted
// LLM (Ollama). A policy engine decides per request which translation to
// trust, reconciles the two when both run, and remembers the decision in a
// pattern cache so that structurally similar inputs skip the model next time.
//
// Basic usage:
//
//	import (
//	    "context"
//	    "github.com/ZaguanLabs/codeshift"
//	    "github.com/ZaguanLabs/codeshift/cache"
//	    "github.com/ZaguanLabs/codeshift/provider"
//	    "github.com/ZaguanLabs/codeshift/rules"
//	    "github.com/ZaguanLabs/codeshift/store"
//	)
//
//	func main() {
//	    // Create model client
//	    p := provider.NewOllamaProvider(provider.OllamaConfig{
//	        BaseURL: "http://localhost:11434",
//	    })
//
//	    // Create engine
//	    e := codeshift.NewEngine(rules.NewTranslator(), p,
//	        codeshift.WithCache(cache.NewInMemoryCache()),
//	        codeshift.WithStore(store.NewFileStore("codeshift-state.json")),
//	    )
//	    _ = e.Restore(context.Background())
//
//	    // Convert
//	    result, err := e.Convert(context.Background(), codeshift.Request{
//	        Source: "let x = 5",
//	        From:   codeshift.TypeScript,
//	        To:     codeshift.Java,
//	    })
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(result.Content)
//	    fmt.Println(result.Status) // e.g. "AI correction applied - New pattern learned"
//	}
package codeshift
