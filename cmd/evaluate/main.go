package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"insightengine/config"
	"insightengine/services"

	"github.com/joho/godotenv"
)

func main() {
	configPath := flag.String("config", "./config/config.yml", "path to config file")
	file := flag.String("file", "", "article file to evaluate (default: stdin)")
	title := flag.String("title", "", "optional article title")
	flag.Parse()

	if err := godotenv.Load(); err == nil {
		log.Println("Loaded .env")
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	var text []byte
	if *file != "" {
		text, err = os.ReadFile(*file)
	} else {
		text, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		log.Fatalf("Failed to read article: %v", err)
	}

	if err := services.InitEvaluationService(cfg); err != nil {
		log.Fatalf("Failed to initialize evaluation service: %v", err)
	}

	report, err := services.EvaluateArticle(context.Background(), string(text), *title)
	if err != nil {
		log.Fatalf("Evaluation failed: %v", err)
	}

	fmt.Println(report.Summary())
}
