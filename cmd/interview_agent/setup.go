package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/interview-agent/internal/cache"
	"github.com/jonathan/interview-agent/internal/config"
	"github.com/jonathan/interview-agent/internal/interview"
	"github.com/jonathan/interview-agent/internal/llm"
	"github.com/jonathan/interview-agent/internal/logger"
)

// buildDispatcher loads configuration and assembles the backend chain. The
// returned dispatcher must be closed by the caller.
func buildDispatcher(ctx context.Context) (*llm.Dispatcher, *config.Config, *zap.Logger, error) {
	var (
		cfg *config.Config
		err error
	)
	if offline {
		cfg = config.Default()
	} else {
		cfg, err = config.Load(configPath)
		if err != nil {
			return nil, nil, nil, err
		}
	}

	log, err := logger.New(cfg.JSONLogs, cfg.Debug)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to build logger: %w", err)
	}

	var dispatcher *llm.Dispatcher
	if offline {
		// Empty chain: every generation reports unavailable and the
		// engine serves its offline fallbacks.
		dispatcher = llm.NewDispatcher(log)
	} else {
		dispatcher, err = llm.NewDispatcherFromConfig(ctx, cfg.LLMConfig(), log)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to build backends: %w", err)
		}
	}
	return dispatcher, cfg, log, nil
}

// buildEngine assembles the configured engine plus its dispatcher. The
// returned dispatcher must be closed by the caller.
func buildEngine(ctx context.Context) (*interview.Engine, *llm.Dispatcher, *zap.Logger, error) {
	dispatcher, cfg, log, err := buildDispatcher(ctx)
	if err != nil {
		return nil, nil, nil, err
	}

	ttl := cfg.CacheTTL()
	engine := interview.NewEngine(dispatcher, cache.New("plans", ttl, log), cache.New("questions", ttl, log), log)
	return engine, dispatcher, log, nil
}

// readTextFile loads a UTF-8 text file and rejects empty content.
func readTextFile(path, what string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s file: %w", what, err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", fmt.Errorf("%s file %s is empty", what, path)
	}
	return text, nil
}

// splitSkills parses a comma-separated skill list flag.
func splitSkills(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
