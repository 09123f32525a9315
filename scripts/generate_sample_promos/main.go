package main

import (
	"compress/gzip"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
)

// generateSamplePromos writes gzipped promo files in the "CODE[:PERCENT]"
// format read by the promo catalog. Point PROMO_FILES at the output, e.g.
// PROMO_FILES=data/promos/seasonal.gz,data/promos/partners.gz
func main() {
	dataDir := "data/promos"

	// Create directory if it doesn't exist
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	promos := map[string][]string{
		"seasonal.gz": {
			"# seasonal campaigns",
			"SUMMER2024:15",
			"WINTER2024:20",
			"SPRING2024", // default rate
		},
		"partners.gz": {
			"GCASHPROMO:5",
			"BANKDAY:12",
			"WELCOME:25",
		},
	}

	names := make([]string, 0, len(promos))
	for name := range promos {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, filename := range names {
		filePath := filepath.Join(dataDir, filename)

		if err := createPromoFile(filePath, promos[filename]); err != nil {
			log.Fatalf("Failed to create %s: %v", filename, err)
		}

		fmt.Printf("Created %s with %d lines\n", filePath, len(promos[filename]))
	}

	fmt.Println("\nSample promo files created successfully!")
	fmt.Println("Codes without an explicit rate get 10% off. ZANE10 is always built in.")
}

func createPromoFile(filePath string, lines []string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	gzipWriter := gzip.NewWriter(file)
	defer gzipWriter.Close()

	for _, line := range lines {
		if _, err := fmt.Fprintf(gzipWriter, "%s\n", line); err != nil {
			return fmt.Errorf("failed to write promo line: %w", err)
		}
	}

	return nil
}
