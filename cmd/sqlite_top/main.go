package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/mkarlsson/surebet/internal/storage/sqlite"
)

func main() {
	limit := flag.Int("limit", 20, "number of rows to print")
	flag.Parse()

	store, err := sqlite.Open(os.Getenv("SQLITE_PATH"))
	if err != nil {
		log.Fatalf("open sqlite: %v", err)
	}
	defer store.Close()

	rows, err := store.TopOpportunities(context.Background(), *limit)
	if err != nil {
		log.Fatalf("query: %v", err)
	}
	if len(rows) == 0 {
		fmt.Println("no opportunities stored")
		return
	}
	for i, r := range rows {
		fmt.Printf("%2d. %6.2f%%  %s vs %s  %s  (%s, detected %s)\n",
			i+1, r.ProfitPercentage, r.HomeTeam, r.AwayTeam, r.MarketName, r.SportTitle, r.DetectedAt)
	}
}
