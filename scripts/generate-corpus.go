//go:build ignore

// Package main generates a synthetic paged text corpus for benchmarking
// builds and queries.
// Usage: go run scripts/generate-corpus.go -docs 200 -pages 50 -output testdata/bench
//
// Pages are separated by form feeds. Word frequencies follow a Zipf
// distribution over a generated vocabulary, so a few words occur on most
// pages and most words on few.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
)

var (
	numDocs      = flag.Int("docs", 200, "Number of documents to generate")
	pagesPerDoc  = flag.Int("pages", 50, "Maximum pages per document")
	wordsPerPage = flag.Int("words", 300, "Words per page")
	vocabSize    = flag.Int("vocab", 20000, "Vocabulary size")
	zipfS        = flag.Float64("zipf", 1.1, "Zipf exponent (> 1)")
	outputDir    = flag.String("output", "testdata/bench", "Output directory")
	seed         = flag.Int64("seed", 42, "Random seed for reproducibility")
)

var syllables = []string{
	"ka", "lo", "mi", "ren", "tas", "vo", "du", "pel", "sor", "ni",
	"gra", "tum", "ek", "bri", "os", "fal", "ze", "qui", "hol", "an",
}

func main() {
	flag.Parse()
	if *zipfS <= 1 {
		fmt.Fprintln(os.Stderr, "Error: -zipf must be greater than 1")
		os.Exit(1)
	}

	rng := rand.New(rand.NewSource(*seed))
	vocab := vocabulary(rng, *vocabSize)
	zipf := rand.NewZipf(rng, *zipfS, 1, uint64(len(vocab)-1))

	if err := os.MkdirAll(*outputDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output directory: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Generating %d documents in %s...\n", *numDocs, *outputDir)

	pages := 0
	for i := range *numDocs {
		n := 1 + rng.Intn(*pagesPerDoc)
		path := filepath.Join(*outputDir, fmt.Sprintf("doc-%04d.txt", i+1))
		if err := writeDocument(path, n, rng, zipf, vocab); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", path, err)
			os.Exit(1)
		}
		pages += n
	}

	fmt.Printf("Generated %d documents, %d pages.\n", *numDocs, pages)
}

// vocabulary builds n distinct pronounceable words.
func vocabulary(rng *rand.Rand, n int) []string {
	seen := make(map[string]bool, n)
	words := make([]string, 0, n)
	for len(words) < n {
		var b strings.Builder
		for range 2 + rng.Intn(3) {
			b.WriteString(syllables[rng.Intn(len(syllables))])
		}
		if w := b.String(); !seen[w] {
			seen[w] = true
			words = append(words, w)
		}
	}
	return words
}

func writeDocument(path string, pages int, rng *rand.Rand, zipf *rand.Zipf, vocab []string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for p := range pages {
		if p > 0 {
			_ = w.WriteByte('\f')
		}
		for i := range *wordsPerPage {
			switch {
			case i == 0:
			case i%12 == 0:
				_, _ = w.WriteString(".\n")
			default:
				_ = w.WriteByte(' ')
			}
			_, _ = w.WriteString(vocab[zipf.Uint64()])
		}
		_, _ = w.WriteString(".\n")
	}
	return w.Flush()
}
