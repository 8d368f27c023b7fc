/*
Package cli implements the hea-risk command-line interface.

Each command is constructed by a NewXxxCmd function and wired onto the
root command in cmd/hea-risk. Commands share the engine bootstrap in
openEngine, which loads the config file and opens the SQLite store.
*/
package cli

import (
	"fmt"
	"strings"

	"github.com/hea-health/risk-engine/internal/config"
	"github.com/hea-health/risk-engine/internal/engine"
	"github.com/hea-health/risk-engine/internal/risk"
	"github.com/hea-health/risk-engine/internal/storage"
)

// openEngine loads configuration, opens the store, and builds the
// engine. The returned closer releases the store.
func openEngine() (*engine.Engine, func(), error) {
	cfg, err := config.LoadOrCreate()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	store := storage.NewStorage(cfg.DatabasePath)
	if err := store.Init(); err != nil {
		return nil, nil, fmt.Errorf("failed to open storage: %w", err)
	}

	closer := func() { store.Close() }
	return engine.New(cfg, store), closer, nil
}

// printAssessment renders one assessment for the terminal.
func printAssessment(a *risk.Assessment) {
	fmt.Printf("Assessment %s\n", a.ID)
	fmt.Printf("  Risk level:  %s\n", a.RiskLevel)
	fmt.Printf("  Confidence:  %.2f\n", a.Confidence)
	fmt.Printf("  Created:     %s\n", a.CreatedAt.Format("2006-01-02 15:04"))
	if a.Feedback != risk.FeedbackNone {
		fmt.Printf("  Feedback:    %s\n", a.Feedback)
	}
	fmt.Println("  Signals:")
	for _, s := range a.Signals {
		fmt.Printf("    [%.2f] (%s) %s\n", s.Weight, s.Category, s.Description)
	}
	if len(a.Degraded) > 0 {
		fmt.Printf("  Degraded:    %s\n", strings.Join(a.Degraded, "; "))
	}
	fmt.Printf("\n  %s\n", a.Explanation)
}
