package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"awning-admin-api/internal/config"
	"awning-admin-api/internal/database"
	"awning-admin-api/internal/models"
)

func main() {
	// Load config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if len(os.Args) < 2 {
		usage()
	}

	client, err := database.NewMongoDBClient(cfg.MongoDB)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Close()

	switch os.Args[1] {
	case "price":
		lookupPrice(client, os.Args[2:])
	case "seed-prices":
		seedPrices(client, os.Args[2:])
	default:
		usage()
	}
}

func usage() {
	fmt.Println("Usage:")
	fmt.Println("  go run cmd/check-db/main.go price <productID> <widthCm> <projectionCm>")
	fmt.Println("  go run cmd/check-db/main.go seed-prices <csv-file>")
	fmt.Println("Example: go run cmd/check-db/main.go price 1 400 300")
	os.Exit(1)
}

// lookupPrice exercises the price-list query path end to end
func lookupPrice(client *database.MongoDBClient, args []string) {
	if len(args) < 3 {
		usage()
	}

	productID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		log.Fatalf("Invalid product ID: %v", err)
	}
	widthCm, err := strconv.Atoi(args[1])
	if err != nil {
		log.Fatalf("Invalid width: %v", err)
	}
	projectionCm, err := strconv.Atoi(args[2])
	if err != nil {
		log.Fatalf("Invalid projection: %v", err)
	}

	fmt.Printf("=== Price List Lookup ===\n\n")
	fmt.Printf("Product ID: %d\n", productID)
	fmt.Printf("Width: %dcm\n", widthCm)
	fmt.Printf("Projection: %dcm\n\n", projectionCm)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	entry, err := client.GetPrice(ctx, productID, widthCm, projectionCm)
	if err != nil {
		log.Fatalf("Price lookup failed: %v", err)
	}
	if entry == nil {
		fmt.Println("No price entry found")
		return
	}

	fmt.Printf("Product: %s\n", entry.ProductName)
	fmt.Printf("Unit price: %.2f\n", entry.UnitPrice)
}

// seedPrices loads a price-list CSV into the database. Columns:
// productId,productName,widthCm,projectionCm,unitPrice (with header row)
func seedPrices(client *database.MongoDBClient, args []string) {
	if len(args) < 1 {
		usage()
	}

	file, err := os.Open(args[0])
	if err != nil {
		log.Fatalf("Failed to open CSV: %v", err)
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		log.Fatalf("Failed to parse CSV: %v", err)
	}
	if len(rows) < 2 {
		log.Fatalf("CSV has no data rows")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	seeded := 0
	for i, row := range rows[1:] {
		if len(row) < 5 {
			log.Fatalf("Row %d: expected 5 columns, got %d", i+2, len(row))
		}

		productID, err := strconv.ParseInt(row[0], 10, 64)
		if err != nil {
			log.Fatalf("Row %d: invalid product ID: %v", i+2, err)
		}
		widthCm, err := strconv.Atoi(row[2])
		if err != nil {
			log.Fatalf("Row %d: invalid width: %v", i+2, err)
		}
		projectionCm, err := strconv.Atoi(row[3])
		if err != nil {
			log.Fatalf("Row %d: invalid projection: %v", i+2, err)
		}
		unitPrice, err := strconv.ParseFloat(row[4], 64)
		if err != nil {
			log.Fatalf("Row %d: invalid unit price: %v", i+2, err)
		}

		entry := models.PriceEntry{
			ProductID:    productID,
			ProductName:  row[1],
			WidthCm:      widthCm,
			ProjectionCm: projectionCm,
			UnitPrice:    unitPrice,
		}
		if err := client.UpsertPrice(ctx, entry); err != nil {
			log.Fatalf("Row %d: failed to upsert price: %v", i+2, err)
		}
		seeded++
	}

	fmt.Printf("Seeded %d price entries\n", seeded)
}
