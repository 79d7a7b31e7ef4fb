package cmd

import (
	"context"

	"github.com/Malowking/ragpack/core/config"
	"github.com/Malowking/ragpack/core/file_store"
	"github.com/Malowking/ragpack/core/vector_store"
	"github.com/gogf/gf/v2/frame/g"
)

// init initializes all components of the application
func init() {
	ctx := context.Background()

	// Validate configuration before initializing components
	g.Log().Info(ctx, "Validating application configuration...")
	err := config.ValidateConfiguration(ctx)
	if err != nil {
		g.Log().Fatalf(ctx, "Configuration validation failed:\n%v", err)
	}

	// Initialize storage system
	file_store.InitStorage()

	// Initialize vector database
	_, err = vector_store.GetVectorStore()
	if err != nil {
		g.Log().Fatalf(ctx, "Vector store initialization failed: %v", err)
	}

	g.Log().Info(ctx, "✓ All components initialized successfully")
}
