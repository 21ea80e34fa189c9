package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/rl1809/aura-kitchen/internal/adapter/client"
	"github.com/rl1809/aura-kitchen/internal/core/domain"
)

func main() {
	apiURL := flag.String("api", "http://localhost:8080", "API base URL")
	orders := flag.Int("orders", 50, "distinct orders to place")
	dup := flag.Int("dup", 2, "submissions per idempotency key")
	flag.Parse()

	ctx := context.Background()
	api, err := client.New(*apiURL)
	if err != nil {
		log.Fatalf("invalid api url: %v", err)
	}

	menu, err := api.ListMenu(ctx, client.MenuQuery{})
	if err != nil {
		log.Fatalf("failed to fetch menu: %v", err)
	}
	if len(menu) == 0 {
		log.Fatalf("menu is empty, run the server with AUTO_MIGRATE=true")
	}

	// Counters
	var created, conflicts, failed atomic.Int32

	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < *orders; i++ {
		i := i
		key := uuid.NewString()
		sub := submission(i, menu[i%len(menu)])

		for j := 0; j < *dup; j++ {
			wg.Add(1)
			go func() {
				defer wg.Done()

				_, err := api.SubmitOrder(ctx, key, sub)
				var serr *domain.SubmissionError
				switch {
				case err == nil:
					created.Add(1)
				case errors.As(err, &serr) && serr.Status == http.StatusConflict:
					conflicts.Add(1)
				default:
					failed.Add(1)
					log.Printf("order %d: %v", i, err)
				}
			}()
		}
	}

	wg.Wait()
	elapsed := time.Since(start)

	total := *orders * *dup
	fmt.Println("========== LOAD TEST RESULTS ==========")
	fmt.Printf("Distinct Orders:  %d\n", *orders)
	fmt.Printf("Total Requests:   %d\n", total)
	fmt.Printf("Created:          %d\n", created.Load())
	fmt.Printf("Duplicates:       %d\n", conflicts.Load())
	fmt.Printf("Failed:           %d\n", failed.Load())
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Printf("Throughput:       %.1f req/s\n", float64(total)/elapsed.Seconds())
	fmt.Println("========================================")

	if created.Load() == int32(*orders) && conflicts.Load() == int32(total-*orders) {
		fmt.Printf("PASS: exactly %d orders created, %d duplicates rejected\n", *orders, total-*orders)
	} else {
		fmt.Printf("FAIL: expected %d created/%d duplicates, got %d/%d\n",
			*orders, total-*orders, created.Load(), conflicts.Load())
	}
}

func submission(n int, item domain.MenuItem) domain.OrderSubmission {
	return domain.OrderSubmission{
		CustomerName: fmt.Sprintf("Load Test %d", n),
		Email:        fmt.Sprintf("load-%d@example.com", n),
		Phone:        "555-0100",
		Address:      "1 Benchmark Street",
		Total:        item.Price + 500,
		Items: []domain.OrderItem{
			{MenuItemID: item.ID, Name: item.Name, Price: item.Price, Quantity: 1},
		},
	}
}
