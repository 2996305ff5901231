package main

import (
	"log"

	"github.com/sashabaranov/go-openai"

	"startup-foundry/internal/api"
	"startup-foundry/internal/config"
	"startup-foundry/internal/database"
	"startup-foundry/internal/services"
	"startup-foundry/internal/storage"
	"startup-foundry/internal/validation"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize the project store (MongoDB if configured, in-memory otherwise)
	var projectStore storage.ProjectStore
	if cfg.MongoDB.URI != "" || cfg.MongoDB.Host != "" {
		log.Printf("Initializing MongoDB connection (Host: %s, Port: %s, Database: %s)",
			cfg.MongoDB.Host, cfg.MongoDB.Port, cfg.MongoDB.Database)
		mongoStore, err := database.NewMongoProjectStore(cfg.MongoDB)
		if err != nil {
			log.Printf("WARNING: Failed to connect to MongoDB (falling back to in-memory store): %v", err)
			projectStore = storage.NewMemoryProjectStore()
		} else {
			log.Printf("Successfully connected to MongoDB for project storage")
			defer mongoStore.Close()
			projectStore = mongoStore
		}
	} else {
		log.Printf("MongoDB not configured (Host and URI are empty), projects are kept in memory")
		projectStore = storage.NewMemoryProjectStore()
	}

	// Initialize S3 (optional - archives stay on local disk without it)
	var s3Service *services.S3Service
	if cfg.S3.Bucket != "" {
		s3Service, err = services.NewS3Service(cfg.S3)
		if err != nil {
			log.Printf("WARNING: Failed to initialize S3 (archive uploads disabled): %v", err)
			s3Service = nil
		}
	} else {
		log.Printf("S3 bucket not configured, archives are served from local disk")
	}

	// Load the generated-app schema used to validate model output
	appSchema, err := validation.LoadSchema("schemas/generated_app_schema.json")
	if err != nil {
		log.Fatalf("Failed to load app schema: %v", err)
	}

	// Initialize the OpenAI client when a key is present; every consumer
	// degrades to its deterministic fallback without one
	var openaiClient *openai.Client
	if cfg.OpenAI.APIKey != "" {
		openaiClient = openai.NewClient(cfg.OpenAI.APIKey)
	} else {
		log.Printf("WARNING: OPENAI_API_KEY not set, generation requests will fail and matching uses fallback scoring")
	}

	// Initialize services
	jobService := services.NewJobService()
	researchService := services.NewResearchService(cfg.Research)
	mediaService := services.NewMediaService(cfg.Media)
	deployService := services.NewDeployService(cfg.Deploy)

	archiveService, err := services.NewArchiveService(cfg.Storage.OutputDir, s3Service)
	if err != nil {
		log.Fatalf("Failed to initialize archive service: %v", err)
	}

	var codegenService *services.CodegenService
	var safetyService *services.SafetyService
	var matchService *services.MatchService
	if openaiClient != nil {
		codegenService = services.NewCodegenService(openaiClient, cfg.OpenAI, appSchema)
		safetyService = services.NewSafetyService(openaiClient, cfg.OpenAI)
		matchService, err = services.NewMatchService(openaiClient, cfg.OpenAI, cfg.Storage.FounderSeedPath)
	} else {
		codegenService = services.NewCodegenService(nil, cfg.OpenAI, appSchema)
		safetyService = services.NewSafetyService(nil, cfg.OpenAI)
		matchService, err = services.NewMatchService(nil, cfg.OpenAI, cfg.Storage.FounderSeedPath)
	}
	if err != nil {
		log.Fatalf("Failed to load founder roster: %v", err)
	}

	generationService := services.NewGenerationService(
		jobService,
		projectStore,
		researchService,
		codegenService,
		archiveService,
	)

	// Start the retention sweeper
	retentionService := services.NewRetentionService(jobService, archiveService, cfg.Retention)
	if err := retentionService.Start(); err != nil {
		log.Printf("WARNING: Failed to start retention sweeper: %v", err)
	}
	defer retentionService.Stop()

	// JWT auth is optional; without a secret the API runs open
	var jwtService *services.JWTService
	if cfg.Auth.JWTSecret != "" {
		jwtService = services.NewJWTService(cfg.Auth.JWTSecret)
	} else {
		log.Printf("JWT_SECRET not set, API authentication disabled")
	}

	// Initialize handlers
	handlers := api.NewHandlers(
		jobService,
		generationService,
		safetyService,
		matchService,
		mediaService,
		deployService,
		archiveService,
		projectStore,
	)

	// Setup routes
	router := api.SetupRoutes(handlers, jwtService)

	// Start server
	addr := cfg.Server.Host + ":" + cfg.Server.Port
	log.Printf("Server starting on %s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
