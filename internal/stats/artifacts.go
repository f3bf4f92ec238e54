package stats

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"weasel/internal/model"
)

const runIndexFile = "run_index.json"

type RunArtifacts struct {
	Run         model.Run                     `json:"run"`
	Progress    []model.ProgressRecord        `json:"progress"`
	Diagnostics []model.GenerationDiagnostics `json:"diagnostics,omitempty"`
}

type RunIndexEntry struct {
	RunID        string `json:"run_id"`
	Target       string `json:"target"`
	Seed         int64  `json:"seed"`
	Generations  int    `json:"generations"`
	Solved       bool   `json:"solved"`
	StartedAtUTC string `json:"started_at_utc"`
}

// WriteRunArtifacts writes one directory per run under baseDir and returns
// its path. progress.txt reproduces the console transcript of the run.
func WriteRunArtifacts(baseDir string, artifacts RunArtifacts) (string, error) {
	if artifacts.Run.ID == "" {
		return "", fmt.Errorf("run id is required")
	}

	runDir := filepath.Join(baseDir, artifacts.Run.ID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, "run.json"), artifacts.Run); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, "progress.json"), artifacts.Progress); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, "generation_diagnostics.json"), artifacts.Diagnostics); err != nil {
		return "", err
	}
	if err := writeTranscript(filepath.Join(runDir, "progress.txt"), artifacts.Run.Target, artifacts.Progress); err != nil {
		return "", err
	}
	return runDir, nil
}

func ReadRunArtifacts(runDir string) (RunArtifacts, error) {
	var artifacts RunArtifacts
	if err := readJSON(filepath.Join(runDir, "run.json"), &artifacts.Run); err != nil {
		return RunArtifacts{}, err
	}
	if err := readJSON(filepath.Join(runDir, "progress.json"), &artifacts.Progress); err != nil {
		return RunArtifacts{}, err
	}
	if err := readJSON(filepath.Join(runDir, "generation_diagnostics.json"), &artifacts.Diagnostics); err != nil {
		return RunArtifacts{}, err
	}
	return artifacts, nil
}

func AppendRunIndex(baseDir string, entry RunIndexEntry) error {
	if entry.RunID == "" {
		return fmt.Errorf("run id is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return err
	}

	index, err := ListRunIndex(baseDir)
	if err != nil {
		return err
	}

	for i := range index {
		if index[i].RunID == entry.RunID {
			index[i] = entry
			return writeJSON(filepath.Join(baseDir, runIndexFile), index)
		}
	}

	index = append(index, entry)
	return writeJSON(filepath.Join(baseDir, runIndexFile), index)
}

func ListRunIndex(baseDir string) ([]RunIndexEntry, error) {
	data, err := os.ReadFile(filepath.Join(baseDir, runIndexFile))
	if err != nil {
		if os.IsNotExist(err) {
			return []RunIndexEntry{}, nil
		}
		return nil, err
	}

	var entries []RunIndexEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func writeTranscript(path, target string, progress []model.ProgressRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	fmt.Fprintln(w, target)
	for _, p := range progress {
		fmt.Fprintf(w, "%s : %d\n", p.Candidate, p.Generation)
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}

func readJSON(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}
