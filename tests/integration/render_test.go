package integration

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// importStarGraph seeds a repo with a star graph of n leaves.
func importStarGraph(t *testing.T, repoDir string, n int) {
	t.Helper()
	graphPath := writeStarGraph(t, repoDir, n)
	if out, err := runHB(t, repoDir, "import", graphPath); err != nil {
		t.Fatalf("import failed: %v\nOutput: %s", err, out)
	}
}

type renderResult struct {
	Status  string `json:"status"`
	Out     string `json:"out"`
	Format  string `json:"format"`
	Backend string `json:"backend"`
	Nodes   int    `json:"nodes"`
	Edges   int    `json:"edges"`
	Level   string `json:"level"`
}

func TestRenderSVG(t *testing.T) {
	repoDir := setupTestRepo(t)
	importStarGraph(t, repoDir, 8)

	outPath := filepath.Join(repoDir, "graph.svg")
	output, err := runHB(t, repoDir, "render", "--out", outPath, "--seed", "1")
	if err != nil {
		t.Fatalf("render failed: %v\nOutput: %s", err, output)
	}

	var result renderResult
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Fatalf("failed to parse JSON output: %v\nOutput: %s", err, output)
	}
	if result.Status != "rendered" || result.Format != "svg" || result.Backend != "vector" {
		t.Errorf("render = %+v, want rendered svg via vector backend", result)
	}
	if result.Nodes != 9 || result.Edges != 8 {
		t.Errorf("render scene had %d nodes / %d edges, want 9/8", result.Nodes, result.Edges)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("reading rendered svg: %v", err)
	}
	if !strings.Contains(string(data), "<svg") {
		t.Error("output file does not look like SVG")
	}
	// Every node becomes a circle element
	if got := strings.Count(string(data), "<circle"); got != 9 {
		t.Errorf("svg has %d circles, want 9", got)
	}
}

func TestRenderPNG(t *testing.T) {
	repoDir := setupTestRepo(t)
	importStarGraph(t, repoDir, 8)

	outPath := filepath.Join(repoDir, "graph.png")
	output, err := runHB(t, repoDir, "render", "--out", outPath, "--seed", "1")
	if err != nil {
		t.Fatalf("render failed: %v\nOutput: %s", err, output)
	}

	var result renderResult
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Fatalf("failed to parse JSON output: %v\nOutput: %s", err, output)
	}
	if result.Format != "png" || result.Backend != "raster" {
		t.Errorf("render = %+v, want png via raster backend", result)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("reading rendered png: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")) {
		t.Error("output file does not start with the PNG signature")
	}
}

func TestRenderHTML(t *testing.T) {
	repoDir := setupTestRepo(t)
	importStarGraph(t, repoDir, 8)

	outPath := filepath.Join(repoDir, "graph.html")
	output, err := runHB(t, repoDir, "render", "--out", outPath, "--seed", "1", "--title", "Citation Map")
	if err != nil {
		t.Fatalf("render failed: %v\nOutput: %s", err, output)
	}
	var result renderResult
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Fatalf("failed to parse JSON output: %v\nOutput: %s", err, output)
	}
	if result.Format != "html" {
		t.Errorf("format = %q, want 'html'", result.Format)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("reading rendered html: %v", err)
	}
	page := string(data)
	if !strings.Contains(page, "<!DOCTYPE html>") {
		t.Error("output does not look like an HTML document")
	}
	if !strings.Contains(page, "<title>Citation Map</title>") {
		t.Error("page title not applied")
	}
	// Online pages pull d3 from the CDN
	if !strings.Contains(page, "cdn.jsdelivr.net") {
		t.Error("online page is missing the CDN script tag")
	}

	// Offline pages must carry no external references
	offPath := filepath.Join(repoDir, "offline.html")
	if out, err := runHB(t, repoDir, "render", "--out", offPath, "--seed", "1", "--offline"); err != nil {
		t.Fatalf("offline render failed: %v\nOutput: %s", err, out)
	}
	data, err = os.ReadFile(offPath)
	if err != nil {
		t.Fatalf("reading offline html: %v", err)
	}
	if strings.Contains(string(data), "cdn.jsdelivr.net") {
		t.Error("offline page still references the CDN")
	}
}

func TestRenderRejectsImpossibleBackend(t *testing.T) {
	repoDir := setupTestRepo(t)
	importStarGraph(t, repoDir, 3)

	output, err := runHB(t, repoDir, "render", "--renderer", "vector", "--out", filepath.Join(repoDir, "x.png"))
	if err == nil {
		t.Fatalf("expected vector-to-png render to fail, got: %s", output)
	}
	if !strings.Contains(output, "cannot write png") {
		t.Errorf("error output = %q, want mention of the format mismatch", output)
	}
}

func TestLayoutSeedDeterminism(t *testing.T) {
	repoDir := setupTestRepo(t)
	importStarGraph(t, repoDir, 10)

	run := func() []byte {
		t.Helper()
		output, err := runHB(t, repoDir, "layout", "--seed", "7", "--ticks", "50")
		if err != nil {
			t.Fatalf("layout failed: %v\nOutput: %s", err, output)
		}
		return []byte(output)
	}

	first := run()
	second := run()
	if !bytes.Equal(first, second) {
		t.Error("two layout runs with the same seed differ")
	}

	var result struct {
		Status    string `json:"status"`
		Nodes     int    `json:"nodes"`
		Ticks     int    `json:"ticks"`
		Positions []struct {
			ID string  `json:"id"`
			X  float64 `json:"x"`
			Y  float64 `json:"y"`
		} `json:"positions"`
	}
	if err := json.Unmarshal(first, &result); err != nil {
		t.Fatalf("failed to parse JSON output: %v\nOutput: %s", err, first)
	}
	if result.Status != "laid-out" || result.Nodes != 11 {
		t.Errorf("layout = %+v, want 11 nodes laid out", result)
	}
	if len(result.Positions) != 11 {
		t.Errorf("got %d positions, want 11", len(result.Positions))
	}
	if result.Ticks == 0 || result.Ticks > 50 {
		t.Errorf("ticks = %d, want between 1 and 50", result.Ticks)
	}
}

func TestReducePreviewAndWrite(t *testing.T) {
	repoDir := setupTestRepo(t)
	importStarGraph(t, repoDir, 30)

	output, err := runHB(t, repoDir, "reduce", "--max-nodes", "10", "--seed", "3")
	if err != nil {
		t.Fatalf("reduce failed: %v\nOutput: %s", err, output)
	}
	var result struct {
		Status      string `json:"status"`
		BeforeNodes int    `json:"before_nodes"`
		Nodes       int    `json:"nodes"`
		Removed     int    `json:"removed"`
		Level       string `json:"level"`
	}
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Fatalf("failed to parse JSON output: %v\nOutput: %s", err, output)
	}
	if result.Status != "preview" {
		t.Errorf("status = %q, want 'preview'", result.Status)
	}
	if result.BeforeNodes != 31 || result.Nodes > 10 {
		t.Errorf("reduce = %+v, want 31 nodes cut to at most 10", result)
	}
	if result.Removed != result.BeforeNodes-result.Nodes {
		t.Errorf("removed = %d, want %d", result.Removed, result.BeforeNodes-result.Nodes)
	}
	if result.Level == "none" {
		t.Error("expected a non-trivial reduction level")
	}

	// Preview must not modify the stored graph
	statsOut, err := runHB(t, repoDir, "stats")
	if err != nil {
		t.Fatalf("stats failed: %v\nOutput: %s", err, statsOut)
	}
	var stats struct {
		Nodes int `json:"nodes"`
	}
	if err := json.Unmarshal([]byte(statsOut), &stats); err != nil {
		t.Fatalf("failed to parse JSON output: %v\nOutput: %s", err, statsOut)
	}
	if stats.Nodes != 31 {
		t.Errorf("after preview stats.Nodes = %d, want 31", stats.Nodes)
	}

	// --write persists the reduction
	if out, err := runHB(t, repoDir, "reduce", "--max-nodes", "10", "--seed", "3", "--write"); err != nil {
		t.Fatalf("reduce --write failed: %v\nOutput: %s", err, out)
	}
	statsOut, err = runHB(t, repoDir, "stats")
	if err != nil {
		t.Fatalf("stats failed: %v\nOutput: %s", err, statsOut)
	}
	if err := json.Unmarshal([]byte(statsOut), &stats); err != nil {
		t.Fatalf("failed to parse JSON output: %v\nOutput: %s", err, statsOut)
	}
	if stats.Nodes > 10 {
		t.Errorf("after reduce --write stats.Nodes = %d, want at most 10", stats.Nodes)
	}
}

func TestImportRejectsCorruptPDF(t *testing.T) {
	repoDir := setupTestRepo(t)

	pdfPath := filepath.Join(repoDir, "broken.pdf")
	if err := os.WriteFile(pdfPath, []byte("not a pdf at all"), 0644); err != nil {
		t.Fatal(err)
	}

	output, err := runHB(t, repoDir, "import", pdfPath)
	if err == nil {
		t.Fatalf("expected corrupt pdf import to fail, got: %s", output)
	}
	if !strings.Contains(output, "broken.pdf") {
		t.Errorf("error output = %q, want the file name mentioned", output)
	}

	// The failed import must leave the repository empty
	statsOut, err := runHB(t, repoDir, "stats")
	if err != nil {
		t.Fatalf("stats failed: %v\nOutput: %s", err, statsOut)
	}
	var stats struct {
		Nodes int `json:"nodes"`
	}
	if err := json.Unmarshal([]byte(statsOut), &stats); err != nil {
		t.Fatalf("failed to parse JSON output: %v\nOutput: %s", err, statsOut)
	}
	if stats.Nodes != 0 {
		t.Errorf("after failed import stats.Nodes = %d, want 0", stats.Nodes)
	}
}
