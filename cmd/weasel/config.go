package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	weaselapi "weasel/pkg/weasel"
)

type runConfig struct {
	Request   weaselapi.RunRequest
	HasTarget bool
}

func loadRunConfig(path string) (runConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return runConfig{}, err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return runConfig{}, err
	}

	var cfg runConfig
	req := &cfg.Request
	var ok bool
	if req.Target, ok, err = asString(raw, "target"); err != nil {
		return runConfig{}, err
	}
	cfg.HasTarget = ok
	if req.RunID, _, err = asString(raw, "run_id"); err != nil {
		return runConfig{}, err
	}
	if req.Alphabet, _, err = asString(raw, "alphabet"); err != nil {
		return runConfig{}, err
	}
	if req.Seed, _, err = asInt64(raw, "seed"); err != nil {
		return runConfig{}, err
	}
	rate, ok, err := asFloat64(raw, "mutation_rate")
	if err != nil {
		return runConfig{}, err
	}
	if ok {
		req.MutationRate = weaselapi.Float64(rate)
	}
	if req.Copies, _, err = asInt(raw, "copies"); err != nil {
		return runConfig{}, err
	}
	if req.Parents, _, err = asInt(raw, "parents"); err != nil {
		return runConfig{}, err
	}
	if req.Recombination, _, err = asString(raw, "recombination"); err != nil {
		return runConfig{}, err
	}
	if req.Workers, _, err = asInt(raw, "workers"); err != nil {
		return runConfig{}, err
	}
	if req.MaxGenerations, _, err = asInt(raw, "max_generations"); err != nil {
		return runConfig{}, err
	}
	if req.DiagnosticsWindow, _, err = asInt(raw, "diagnostics_window"); err != nil {
		return runConfig{}, err
	}
	return cfg, nil
}

func loadOrDefaultRunConfig(configPath string) (runConfig, error) {
	if configPath == "" {
		return runConfig{}, nil
	}
	cfg, err := loadRunConfig(configPath)
	if err != nil {
		return runConfig{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// The as* helpers report whether key is present and reject values of the
// wrong type instead of skipping them.

func asString(raw map[string]any, key string) (string, bool, error) {
	v, ok := raw[key]
	if !ok {
		return "", false, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", false, fmt.Errorf("config %s: expected string, got %v", key, v)
	}
	return s, true, nil
}

func asInt(raw map[string]any, key string) (int, bool, error) {
	n, ok, err := asNumber(raw, key)
	if err != nil || !ok {
		return 0, ok, err
	}
	i, err := strconv.Atoi(n.String())
	if err != nil {
		return 0, false, fmt.Errorf("config %s: expected integer, got %s", key, n)
	}
	return i, true, nil
}

func asInt64(raw map[string]any, key string) (int64, bool, error) {
	n, ok, err := asNumber(raw, key)
	if err != nil || !ok {
		return 0, ok, err
	}
	i, err := n.Int64()
	if err != nil {
		return 0, false, fmt.Errorf("config %s: expected integer, got %s", key, n)
	}
	return i, true, nil
}

func asFloat64(raw map[string]any, key string) (float64, bool, error) {
	n, ok, err := asNumber(raw, key)
	if err != nil || !ok {
		return 0, ok, err
	}
	f, err := n.Float64()
	if err != nil {
		return 0, false, fmt.Errorf("config %s: expected number, got %s", key, n)
	}
	return f, true, nil
}

func asNumber(raw map[string]any, key string) (json.Number, bool, error) {
	v, ok := raw[key]
	if !ok {
		return "", false, nil
	}
	n, ok := v.(json.Number)
	if !ok {
		return "", false, fmt.Errorf("config %s: expected number, got %v", key, v)
	}
	return n, true, nil
}

// overrideFromFlags applies only the flags that were set explicitly, so config
// values survive flag defaults.
func overrideFromFlags(req *weaselapi.RunRequest, set map[string]bool, flagValue map[string]any) error {
	for name, v := range flagValue {
		if !set[name] {
			continue
		}
		switch name {
		case "run-id":
			req.RunID = v.(string)
		case "alphabet":
			req.Alphabet = v.(string)
		case "seed":
			req.Seed = v.(int64)
		case "rate":
			req.MutationRate = weaselapi.Float64(v.(float64))
		case "copies":
			req.Copies = v.(int)
		case "parents":
			req.Parents = v.(int)
		case "recombination":
			req.Recombination = v.(string)
		case "workers":
			req.Workers = v.(int)
		case "max-gens":
			req.MaxGenerations = v.(int)
		case "diagnostics-window":
			req.DiagnosticsWindow = v.(int)
		default:
			return fmt.Errorf("unsupported override flag: %s", name)
		}
	}
	return nil
}
