// Command indexer builds the shared knowledge base: it extracts, chunks, and
// embeds every PDF in a directory and stores the result in MySQL for the
// server to query.
package main

import (
	"context"
	"flag"
	"log"

	"github.com/joho/godotenv"

	"policyqa/internal/ai"
	"policyqa/internal/app"
	"policyqa/internal/config"
	"policyqa/internal/model"
	mysqlClient "policyqa/internal/platform/mysql"
	"policyqa/internal/repository"
)

func main() {
	_ = godotenv.Load()

	dir := flag.String("dir", "data/insurance_docs", "directory of PDF files to index")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}

	ctx := context.Background()
	mysqlDB, err := mysqlClient.New(ctx, cfg.MySQLDSN())
	if err != nil {
		log.Fatalf("connect mysql failed: %v", err)
	}
	if err := mysqlDB.AutoMigrate(&model.KBChunk{}); err != nil {
		log.Fatalf("auto migrate failed: %v", err)
	}

	aiClient := ai.NewClient()
	kbService := app.NewKBService(app.KBServiceConfig{
		Repo:     repository.NewKBChunkRepository(mysqlDB),
		Chat:     aiClient,
		Embedder: aiClient,
		ChatCfg: ai.ChatConfig{
			BaseURL: cfg.LLM.BaseURL,
			APIKey:  cfg.LLM.APIKey,
			Model:   cfg.LLM.Model,
		},
		EmbCfg: ai.EmbeddingConfig{
			BaseURL: cfg.LLM.BaseURL,
			APIKey:  cfg.LLM.APIKey,
			Model:   cfg.LLM.EmbeddingModel,
		},
		ChunkSize:    cfg.Retrieval.KBChunkSize,
		ChunkOverlap: cfg.Retrieval.KBChunkOverlap,
	})

	if err := kbService.IndexDirectory(ctx, *dir); err != nil {
		log.Fatalf("index directory failed: %v", err)
	}
}
