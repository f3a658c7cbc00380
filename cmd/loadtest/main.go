// Package main is a small concurrent load tester for the search API.
package main

import (
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

func main() {
	url := flag.String("url", "", "target URL (required)")
	requests := flag.Int("requests", 100, "total number of requests")
	concurrency := flag.Int("concurrency", 0, "max in-flight requests (0 = all at once)")
	flag.Parse()

	if *url == "" {
		fmt.Fprintln(os.Stderr, "Usage: loadtest --url <target> [--requests N] [--concurrency N]")
		os.Exit(1)
	}

	limit := *concurrency
	if limit <= 0 {
		limit = *requests
	}
	sem := make(chan struct{}, limit)

	var ok, failed atomic.Int64
	var wg sync.WaitGroup
	start := time.Now()
	for i := 0; i < *requests; i++ {
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			if err := fetch(*url); err != nil {
				failed.Add(1)
				return
			}
			ok.Add(1)
		}()
	}
	wg.Wait()
	duration := time.Since(start)

	fmt.Printf("Received %d responses (%d failed)\n", ok.Load(), failed.Load())
	fmt.Printf("Completed %d requests in %.2f seconds\n", *requests, duration.Seconds())
}

func fetch(url string) error {
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if _, err := io.Copy(io.Discard, resp.Body); err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return nil
}
