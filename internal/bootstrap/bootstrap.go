package bootstrap

import (
	"context"
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/hareesh182003/Interview-Agent/internal/config"
	"github.com/hareesh182003/Interview-Agent/internal/repositories"
	"github.com/hareesh182003/Interview-Agent/internal/services"
)

// Container holds the wired application components shared by the API
// server and the admin CLI.
type Container struct {
	DB            *gorm.DB
	SessionRepo   repositories.AnalysisSessionRepository
	CandidateRepo repositories.QualifiedCandidateRepository

	Storage       services.StorageService
	Events        services.EventPublisher
	Qualification services.QualificationService
	Candidates    services.CandidateService
	Analyzer      services.AnalyzerService
	Reports       services.ReportService
	Exports       services.ExportService

	// Index and Worker are nil when the resume index is not configured.
	Index  services.IndexService
	Worker services.Worker
}

func Build(ctx context.Context, cfg *config.Config) (*Container, error) {
	db, err := config.InitDatabase(cfg)
	if err != nil {
		return nil, err
	}

	c := &Container{
		DB:            db,
		SessionRepo:   repositories.NewAnalysisSessionRepository(db),
		CandidateRepo: repositories.NewQualifiedCandidateRepository(db),
		Reports:       services.NewReportService(),
		Exports:       services.NewExportService(),
	}
	log.Println("✅ Repositories initialized successfully")

	unipdfLicensed, err := services.SetUnidocLicense(cfg.Unidoc.LicenseKey)
	switch {
	case err != nil:
		log.Printf("⚠️  %v, unipdf extraction disabled\n", err)
	case unipdfLicensed:
		log.Println("✅ unipdf extraction enabled")
	default:
		log.Println("⚠️  UNIDOC_LICENSE_KEY not set, unipdf extraction disabled")
	}

	awsCfg, err := services.LoadAWSConfig(ctx, cfg.AWS)
	if err != nil {
		return nil, err
	}

	switch cfg.Storage.Backend {
	case "s3":
		if cfg.AWS.S3Bucket == "" {
			return nil, fmt.Errorf("S3_BUCKET is required for the s3 storage backend")
		}
		c.Storage = services.NewS3StorageService(awsCfg, cfg.AWS.S3Bucket, cfg.AWS.S3Endpoint, cfg.Storage.TempPath)
	default:
		c.Storage = services.NewStorageService(cfg.Storage.UploadPath, cfg.Storage.TempPath)
	}
	if err := c.Storage.EnsureUploadDir(); err != nil {
		return nil, err
	}
	log.Printf("✅ Storage initialized (%s)\n", cfg.Storage.Backend)

	c.Events = services.NewNoopPublisher()
	if cfg.RabbitMQ.URL != "" {
		publisher, err := services.NewRabbitPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
		if err != nil {
			log.Printf("⚠️  Events disabled: %v\n", err)
		} else {
			c.Events = publisher
		}
	}

	transports := map[string]services.ModelInvoker{
		services.TransportBedrock: services.NewBedrockInvoker(awsCfg),
	}

	var gemini services.GeminiService
	if cfg.Gemini.APIKey != "" {
		gemini, err = services.NewGeminiService(ctx, cfg.Gemini.APIKey, cfg.Gemini.EmbedModel)
		if err != nil {
			return nil, err
		}
		transports[services.TransportGemini] = gemini
		log.Println("✅ Gemini AI initialized successfully")
	}

	if cfg.IndexEnabled() {
		qdrantService, err := services.NewQdrantService(cfg.Qdrant.URL, cfg.Qdrant.APIKey, cfg.Qdrant.Collection)
		if err != nil {
			return nil, err
		}
		if err := qdrantService.InitCollection(ctx); err != nil {
			return nil, err
		}

		c.Index = services.NewIndexService(c.SessionRepo, qdrantService, gemini, services.NewTextChunker())
		c.Worker = services.NewWorker(c.SessionRepo, c.Index, cfg.Worker.Concurrency, cfg.Worker.PollInterval)
		log.Println("✅ Resume index initialized successfully")
	}

	modelClient := services.NewModelClient(
		services.DefaultProviderRegistry(),
		transports,
		services.GenerationOptions{
			MaxTokens:   cfg.Model.MaxTokens,
			Temperature: cfg.Model.Temperature,
		},
		cfg.Model.Timeout,
	)

	c.Qualification = services.NewQualificationService(c.SessionRepo, c.CandidateRepo, c.Storage, c.Events)
	c.Candidates = services.NewCandidateService(c.CandidateRepo, c.Events)
	c.Analyzer = services.NewAnalyzerService(
		c.SessionRepo,
		services.NewTextExtractor(unipdfLicensed),
		modelClient,
		c.Storage,
		c.Qualification,
		c.Events,
		c.Worker,
		cfg.Model.ID,
		cfg.Storage.MaxFileSize,
	)
	log.Println("✅ Services initialized successfully")

	return c, nil
}

func (c *Container) Close() {
	if c.Worker != nil {
		c.Worker.Stop()
	}
	if err := c.Events.Close(); err != nil {
		log.Printf("⚠️  Failed to close event publisher: %v\n", err)
	}
	if sqlDB, err := c.DB.DB(); err == nil {
		sqlDB.Close()
	}
}
