package main

import (
	"log"

	"awning-admin-api/internal/api"
	"awning-admin-api/internal/config"
	"awning-admin-api/internal/database"
	"awning-admin-api/internal/services"
	"awning-admin-api/internal/validation"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize MongoDB client
	log.Printf("Initializing MongoDB connection (Host: %s, Port: %s, Database: %s)",
		cfg.MongoDB.Host, cfg.MongoDB.Port, cfg.MongoDB.Database)
	mongoClient, err := database.NewMongoDBClient(cfg.MongoDB)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer mongoClient.Close()

	// Load the inbound-email schema used to validate ingest payloads
	ingestSchema, err := validation.LoadSchema("schemas/inbound_email.json")
	if err != nil {
		log.Fatalf("Failed to load ingest schema: %v", err)
	}

	// Initialize email service (optional - document distribution and
	// follow-up notifications are skipped without it)
	var emailService *services.EmailService
	if cfg.Email.APIKey != "" {
		emailService = services.NewEmailService(cfg.Email)
	} else {
		log.Printf("SendGrid API key not configured, outbound email disabled")
	}

	// Initialize the document archive (optional)
	var archive services.DocumentStore
	if cfg.Archive.Bucket != "" {
		s3Service, err := services.NewS3Service(cfg.Archive)
		if err != nil {
			log.Printf("WARNING: Failed to initialize document archive (archiving disabled): %v", err)
		} else {
			archive = s3Service
		}
	} else {
		log.Printf("Archive bucket not configured, document archiving disabled")
	}

	// Initialize services
	guard := services.NewWorkflowGuard(mongoClient)
	linker := services.NewLinker(mongoClient, mongoClient)
	pdfService := services.NewPDFService()
	documentService := services.NewDocumentService(mongoClient, pdfService, emailService, archive)
	auditService := services.NewAuditService(mongoClient)
	jwtService := services.NewJWTService(cfg.JWT)

	// Start the follow-up sweep scheduler
	followUpService := services.NewFollowUpService(mongoClient, emailService, cfg.FollowUp)
	if err := followUpService.Start(); err != nil {
		log.Fatalf("Failed to start follow-up scheduler: %v", err)
	}
	defer followUpService.Stop()

	// Initialize handlers
	handlers := api.NewHandlers(
		mongoClient,
		guard,
		linker,
		documentService,
		auditService,
		followUpService,
		jwtService,
		ingestSchema,
	)

	// Setup routes
	router := api.SetupRoutes(handlers)

	// Start server
	addr := cfg.Server.Host + ":" + cfg.Server.Port
	log.Printf("Server starting on %s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
