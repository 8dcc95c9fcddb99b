package api

import (
	"awning-admin-api/internal/middleware"
	"awning-admin-api/internal/models"

	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all API routes
func SetupRoutes(handlers *Handlers) *gin.Engine {
	router := gin.Default()

	// Add CORS middleware
	router.Use(corsMiddleware())
	router.Use(middleware.CountInFlight())

	// API routes
	api := router.Group("/api")
	{
		api.POST("/auth/login", handlers.LoginHandler)

		// The mail pipeline posts here from inside the network; payloads
		// are schema-validated instead of authenticated
		api.POST("/tasks/ingest", handlers.IngestTaskHandler)

		authed := api.Group("")
		authed.Use(middleware.AuthenticateUser(handlers.jwtService))
		{
			tasks := authed.Group("/tasks")
			{
				tasks.GET("", handlers.ListTasksHandler)
				tasks.GET("/:id", handlers.GetTaskHandler)
				tasks.POST("/:id/open", handlers.OpenTaskHandler)
				tasks.GET("/:id/workflow-status", handlers.WorkflowStatusHandler)
				tasks.PUT("/:id/status", handlers.UpdateTaskStatusHandler)
				tasks.PUT("/:id/assign", handlers.AssignTaskHandler)
				tasks.PUT("/:id/customer", handlers.LinkCustomerHandler)
				tasks.POST("/:id/actions/:action", handlers.QuickActionHandler)
				tasks.GET("/:id/history", handlers.GetTaskHistoryHandler)
				tasks.GET("/:id/history/export", handlers.ExportTaskHistoryCSVHandler)
			}

			customers := authed.Group("/customers")
			{
				customers.POST("", handlers.CreateCustomerHandler)
				customers.GET("/lookup", handlers.LookupCustomerHandler)
				customers.GET("/:id", handlers.GetCustomerHandler)
				customers.PUT("/:id", handlers.UpdateCustomerHandler)
				customers.DELETE("/:id", handlers.DeleteCustomerHandler)
				customers.GET("/:id/workflows", handlers.ListCustomerWorkflowsHandler)
			}

			workflows := authed.Group("/workflows")
			{
				workflows.POST("", handlers.CreateWorkflowHandler)
				workflows.GET("/:id", handlers.GetWorkflowHandler)
				workflows.PUT("/:id/stages", handlers.UpdateWorkflowStagesHandler)
				workflows.POST("/:id/site-visits", handlers.BookSiteVisitHandler)
				workflows.GET("/:id/quotes", handlers.ListWorkflowDocumentsHandler(models.DocumentQuote))
				workflows.GET("/:id/invoices", handlers.ListWorkflowDocumentsHandler(models.DocumentInvoice))
			}

			quotes := authed.Group("/quotes")
			{
				quotes.POST("", handlers.CreateDocumentHandler(models.DocumentQuote))
				quotes.GET("/:id", handlers.GetDocumentHandler(models.DocumentQuote))
				quotes.GET("/:id/pdf", handlers.DownloadDocumentHandler(models.DocumentQuote))
				quotes.GET("/:id/archive", handlers.DownloadArchivedDocumentHandler(models.DocumentQuote))
			}

			invoices := authed.Group("/invoices")
			{
				invoices.POST("", handlers.CreateDocumentHandler(models.DocumentInvoice))
				invoices.GET("/:id", handlers.GetDocumentHandler(models.DocumentInvoice))
				invoices.GET("/:id/pdf", handlers.DownloadDocumentHandler(models.DocumentInvoice))
				invoices.GET("/:id/archive", handlers.DownloadArchivedDocumentHandler(models.DocumentInvoice))
				invoices.POST("/:id/payments", handlers.RecordPaymentHandler)
				invoices.GET("/:id/payments", handlers.ListPaymentsHandler)
			}

			audit := authed.Group("/audit")
			{
				audit.GET("", handlers.GetAuditLogHandler)
				audit.GET("/export", handlers.ExportAuditCSVHandler)
			}

			followUps := authed.Group("/follow-ups")
			{
				followUps.POST("/generate", handlers.GenerateFollowUpsHandler)
				followUps.PUT("/:id/done", handlers.MarkFollowUpDoneHandler)
			}
		}
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "inFlight": middleware.InFlightCount()})
	})

	return router
}

// corsMiddleware adds CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
