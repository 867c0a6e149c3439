package main

import (
	"os"
	"path/filepath"
	"testing"
)

const testPipelineYAML = `
id: summarize-and-translate
inputs:
  raw: "raw input text"
steps:
  - name: extract
    prompt_template: "extract facts from {{raw}}"
    task_type: ANALYSIS
    output_key: extracted
  - name: translate
    prompt_template: "translate {{extracted}} to french"
    task_type: TRANSLATION
    output_key: translated
`

func TestLoadPipeline_ParsesStepsAndInputs(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pipeline.yaml")
	if err := os.WriteFile(path, []byte(testPipelineYAML), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	pipeline, err := loadPipeline(path)
	if err != nil {
		t.Fatalf("loadPipeline: %v", err)
	}
	if pipeline.ID != "summarize-and-translate" {
		t.Errorf("ID = %q, want summarize-and-translate", pipeline.ID)
	}
	if len(pipeline.Steps) != 2 {
		t.Fatalf("Steps = %d, want 2", len(pipeline.Steps))
	}
	if pipeline.Steps[0].Name != "extract" || pipeline.Steps[0].OutputKey != "extracted" {
		t.Errorf("Steps[0] = %+v, unexpected", pipeline.Steps[0])
	}
	if pipeline.Inputs["raw"] != "raw input text" {
		t.Errorf("Inputs[raw] = %q, want %q", pipeline.Inputs["raw"], "raw input text")
	}
}

func TestLoadPipeline_MissingFileFails(t *testing.T) {
	if _, err := loadPipeline("/nonexistent/pipeline.yaml"); err == nil {
		t.Fatal("expected error for missing pipeline file")
	}
}

func TestChainCommandRegistered(t *testing.T) {
	if chainCmd.Use != "chain" {
		t.Errorf("Use = %q, want chain", chainCmd.Use)
	}
}
