// Command generate_feed writes a sample inventory CSV and can register it
// as a local feed source with a demo sync job, for trying the server
// without a real supplier feed.
// Usage: go run cmd/generate_feed/main.go [-out demo-feed.csv] [-rows 50] [-register]
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/computerwizzy/shopify-inventory-sync/internal/config"
	"github.com/computerwizzy/shopify-inventory-sync/internal/database"
	feedsdb "github.com/computerwizzy/shopify-inventory-sync/internal/database/feeds"
	jobsdb "github.com/computerwizzy/shopify-inventory-sync/internal/database/jobs"
	"github.com/computerwizzy/shopify-inventory-sync/internal/entities"
	"github.com/computerwizzy/shopify-inventory-sync/internal/mapping"
)

var products = []string{
	"Widget", "Gadget", "Sprocket", "Gizmo", "Doohickey",
	"Bracket", "Coupler", "Flange", "Grommet", "Spindle",
}

func main() {
	out := flag.String("out", "./demo-feed.csv", "path of the CSV file to write")
	rows := flag.Int("rows", 50, "number of inventory rows to generate")
	seed := flag.Int64("seed", 42, "random seed, fixed for reproducible files")
	register := flag.Bool("register", false, "also register the file as a local feed with a demo job")
	dbPath := flag.String("db", config.DefaultDatabasePath, "database file used with -register")
	flag.Parse()

	rng := rand.New(rand.NewSource(*seed))

	if err := writeCSV(*out, *rows, rng); err != nil {
		log.Fatalf("Failed to write feed file: %v", err)
	}
	log.Printf("Wrote %d rows to %s", *rows, *out)

	if !*register {
		return
	}

	absPath, err := filepath.Abs(*out)
	if err != nil {
		log.Fatalf("Failed to resolve feed path: %v", err)
	}
	if err := registerFeed(*dbPath, absPath); err != nil {
		log.Fatalf("Failed to register feed: %v", err)
	}
	log.Printf("Registered local feed %q with a disabled demo job in %s", "demo-feed", *dbPath)
	log.Printf("Enable the job via the API or run: inventory-sync sync-once -feed demo-feed -dry-run")
}

func writeCSV(path string, rows int, rng *rand.Rand) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"Item Code", "Description", "Stock", "Price"}); err != nil {
		return err
	}

	for i := 0; i < rows; i++ {
		product := products[i%len(products)]
		sku := fmt.Sprintf("%s-%04d", productPrefix(product), i+1)

		// Roughly one row in six is out of stock, like a real feed.
		qty := 0
		if rng.Intn(6) > 0 {
			qty = rng.Intn(250) + 1
		}

		price := fmt.Sprintf("%d.%02d", rng.Intn(90)+5, rng.Intn(100))
		desc := fmt.Sprintf("%s model %d", product, i+1)

		if err := w.Write([]string{sku, desc, fmt.Sprintf("%d", qty), price}); err != nil {
			return err
		}
	}

	return nil
}

func productPrefix(product string) string {
	if len(product) < 3 {
		return product
	}
	return string([]byte{product[0], product[1], product[2]})
}

func registerFeed(dbPath, feedPath string) error {
	db, err := database.NewDatabase(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	columnMapping, err := mapping.ToJSON(map[string]string{
		"sku":      "Item Code",
		"quantity": "Stock",
		"price":    "Price",
	})
	if err != nil {
		return err
	}

	feed := &entities.FeedSource{
		Name:          "demo-feed",
		Type:          entities.FeedTypeLocalFile,
		URL:           feedPath,
		ColumnMapping: columnMapping,
		Enabled:       true,
	}
	if err := feedsdb.NewRepository(db.DB).CreateFeed(feed); err != nil {
		return err
	}

	// Disabled so nothing runs against a store until someone flips it on.
	job := &entities.ScheduledJob{
		Name:            "demo-hourly-sync",
		FeedSourceID:    feed.ID,
		TriggerType:     entities.TriggerTypeInterval,
		IntervalMinutes: 60,
		Enabled:         false,
	}
	return jobsdb.NewRepository(db.DB).CreateJob(job)
}
