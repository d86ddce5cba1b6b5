package codeshift_test

import (
	"context"
	"strings"
	"testing"

	"github.com/ZaguanLabs/codeshift"
	"github.com/ZaguanLabs/codeshift/cache"
	"github.com/ZaguanLabs/codeshift/provider"
	"github.com/ZaguanLabs/codeshift/rules"
)

// Benchmarks for performance validation

const benchSource = `class Point {
    constructor(x: number, y: number) {
        this.x = x;
        this.y = y;
    }

    distance(other: Point): number {
        const dx = this.x - other.x;
        const dy = this.y - other.y;
        return Math.sqrt(dx * dx + dy * dy);
    }
}`

func BenchmarkPatternKey(b *testing.B) {
	for i := 0; i < b.N; i++ {
		codeshift.PatternKey(benchSource, codeshift.TypeScript, codeshift.Java, codeshift.NormalizeLiterals)
	}
}

func BenchmarkSimilarity(b *testing.B) {
	tr := rules.NewTranslator()
	a := tr.Translate(benchSource, codeshift.TypeScript, codeshift.Java)
	c := tr.Translate(benchSource, codeshift.TypeScript, codeshift.CSharp)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		codeshift.Similarity(a, c)
	}
}

func BenchmarkFindDifferences(b *testing.B) {
	tr := rules.NewTranslator()
	a := tr.Translate(benchSource, codeshift.TypeScript, codeshift.Java)
	c := "import java.util.List;\n" + a
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		codeshift.FindDifferences(a, c)
	}
}

func BenchmarkRules_Translate(b *testing.B) {
	tr := rules.NewTranslator()
	targets := []codeshift.Language{codeshift.Java, codeshift.CSharp, codeshift.Python}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tr.Translate(benchSource, codeshift.TypeScript, targets[i%len(targets)])
	}
}

func BenchmarkRules_Translate_Large(b *testing.B) {
	tr := rules.NewTranslator()
	source := strings.Repeat(benchSource+"\n\n", 50)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tr.Translate(source, codeshift.TypeScript, codeshift.Java)
	}
}

func BenchmarkInMemoryCache_Get(b *testing.B) {
	c := cache.NewInMemoryCache()
	_ = c.Set("test-key", "test-value")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Get("test-key")
	}
}

func BenchmarkEngine_Convert_Cached(b *testing.B) {
	engine := codeshift.NewEngine(rules.NewTranslator(), provider.NewMockProvider(),
		codeshift.WithCache(cache.NewInMemoryCache()))
	req := codeshift.Request{Source: benchSource, From: codeshift.TypeScript, To: codeshift.Java}

	// Warm the cache
	if _, err := engine.Convert(context.Background(), req); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := engine.Convert(context.Background(), req); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkEngine_Convert_Rules(b *testing.B) {
	engine := codeshift.NewEngine(rules.NewTranslator(), nil,
		codeshift.WithMode(codeshift.ModeManualOnly))
	req := codeshift.Request{Source: benchSource, From: codeshift.TypeScript, To: codeshift.Python}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := engine.Convert(context.Background(), req); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkParseLanguage(b *testing.B) {
	names := []string{"ts", "Java", "c#", "py", ".rs"}
	for i := 0; i < b.N; i++ {
		_, _ = codeshift.ParseLanguage(names[i%len(names)])
	}
}
