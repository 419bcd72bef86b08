// main.go - Lists the Gemini models that support generateContent for the configured key

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/bosocmputer/medicine_scan_gemini/configs"
	"github.com/bosocmputer/medicine_scan_gemini/internal/ai"
	"github.com/bosocmputer/medicine_scan_gemini/internal/logger"
)

func main() {
	configs.LoadConfig()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	provider, err := ai.NewGeminiProvider(ctx, configs.GEMINI_API_KEY, configs.MODEL_NAME)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create Gemini client")
	}
	defer provider.Close()

	models, err := provider.ListGenerateContentModels(ctx)
	if err != nil {
		logger.WithError(err).Fatal("Failed to list models")
	}

	fmt.Printf("Models supporting generateContent (%d):\n", len(models))
	for _, name := range models {
		marker := " "
		if name == "models/"+configs.MODEL_NAME || name == configs.MODEL_NAME {
			marker = "*"
		}
		fmt.Printf(" %s %s\n", marker, name)
	}
}
