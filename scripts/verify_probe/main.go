package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type probe struct {
	Identifier string `json:"identifier"`
	Expect     string `json:"expect"`
	Critical   bool   `json:"critical"`
}

type probeFile struct {
	Probes []probe `json:"probes"`
}

type probeResult struct {
	Probe    probe
	Status   int
	Outcome  string
	Match    bool
	Error    error
	Duration time.Duration
}

func main() {
	var (
		baseURL    string
		probesPath string
		timeout    time.Duration
	)

	flag.StringVar(&baseURL, "base", "http://localhost:8080/api/v1", "API base URL")
	flag.StringVar(&probesPath, "probes", filepath.Join("scripts", "verify_probe", "probes.json"), "Path to JSON probes file")
	flag.DurationVar(&timeout, "timeout", 5*time.Second, "HTTP client timeout")
	flag.Parse()

	probes, err := loadProbes(probesPath)
	if err != nil {
		log.Fatalf("failed to load probes: %v", err)
	}

	client := &http.Client{Timeout: timeout}
	var (
		results  []probeResult
		breaking int
		soft     int
	)

	for _, p := range probes {
		res := runProbe(client, baseURL, p)
		if res.Error != nil || !res.Match {
			if p.Critical {
				breaking++
			} else {
				soft++
			}
		}
		results = append(results, res)
	}

	printReport(results)

	fmt.Printf("Breaking mismatches: %d, Soft mismatches: %d\n", breaking, soft)
	if breaking > 0 {
		os.Exit(1)
	}
}

func loadProbes(path string) ([]probe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file probeFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	if len(file.Probes) == 0 {
		return nil, fmt.Errorf("no probes defined in %s", path)
	}
	return file.Probes, nil
}

func runProbe(client *http.Client, base string, p probe) probeResult {
	res := probeResult{Probe: p}

	payload, err := json.Marshal(map[string]string{"identifier": p.Identifier})
	if err != nil {
		res.Error = err
		return res
	}

	url := strings.TrimRight(base, "/") + "/verify"
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		res.Error = err
		return res
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := client.Do(req)
	res.Duration = time.Since(start)
	if err != nil {
		res.Error = fmt.Errorf("verify request failed: %w", err)
		return res
	}
	defer resp.Body.Close()

	res.Status = resp.StatusCode
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		res.Error = fmt.Errorf("read verify body: %w", err)
		return res
	}

	res.Outcome = extractOutcome(resp.StatusCode, body)
	res.Match = res.Outcome == p.Expect
	return res
}

// extractOutcome maps a verify response to a comparable label. Error
// responses collapse to their error code so probes can expect
// "NOT_FOUND" alongside "verified" or "tampered".
func extractOutcome(status int, body []byte) string {
	var envelope struct {
		Data struct {
			Outcome string `json:"outcome"`
		} `json:"data"`
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Sprintf("HTTP_%d", status)
	}
	if envelope.Data.Outcome != "" {
		return envelope.Data.Outcome
	}
	if envelope.Error.Code != "" {
		return envelope.Error.Code
	}
	return fmt.Sprintf("HTTP_%d", status)
}

func printReport(results []probeResult) {
	fmt.Println("Verify Probe Report")
	fmt.Println("===================")
	for _, res := range results {
		status := "OK"
		if res.Error != nil {
			status = "ERROR"
		} else if !res.Match {
			status = "MISMATCH"
		}
		fmt.Printf("[%s] %s\n", status, res.Probe.Identifier)
		fmt.Printf("  HTTP %d (%s)\n", res.Status, res.Duration)
		if res.Error != nil {
			fmt.Printf("  Error: %v\n", res.Error)
		} else {
			fmt.Printf("  Outcome: %s | Expected: %s | Critical: %t\n", res.Outcome, res.Probe.Expect, res.Probe.Critical)
		}
	}
}
