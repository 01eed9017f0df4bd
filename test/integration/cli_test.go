package integration

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"testing"
	"time"
)

// vigiaBin is the path to the compiled binary, set by TestMain.
var vigiaBin string

func TestMain(m *testing.M) {
	// Build binary once for all tests.
	tmp, err := os.MkdirTemp("", "vigia-integration-*")
	if err != nil {
		fmt.Fprintf(os.Stderr, "create temp dir: %v\n", err)
		os.Exit(1)
	}
	defer os.RemoveAll(tmp)

	vigiaBin = filepath.Join(tmp, "vigia")
	cmd := exec.Command("go", "build", "-o", vigiaBin, "./cmd/vigia/")
	cmd.Dir = findModuleRoot()
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "build failed: %v\n", err)
		os.Exit(1)
	}

	os.Exit(m.Run())
}

// =============================================================================
// Helpers
// =============================================================================

// findModuleRoot walks up from cwd to find go.mod.
func findModuleRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			panic("go.mod not found")
		}
		dir = parent
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

// readingsCSV is a small valid feed file: two rule hits and one calm reading.
const readingsCSV = `timestamp,zone,temp,humidity,wind
2026-07-14 12:00,Monchique,42.0,15.0,20.0
2026-07-14 15:00,Sintra,36.0,25.0,10.0
2026-07-14 18:00,Peneda-Geres,22.0,70.0,12.0
`

// runVigia executes the vigia binary in the given dir with args, returns stdout, stderr, exit code.
func runVigia(t *testing.T, dir string, args ...string) (stdout, stderr string, exitCode int) {
	t.Helper()
	cmd := exec.Command(vigiaBin, args...)
	cmd.Dir = dir

	var outBuf, errBuf strings.Builder
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	err := cmd.Run()
	stdout = outBuf.String()
	stderr = errBuf.String()

	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			t.Fatalf("exec error (not ExitError): %v", err)
		}
	}
	return
}

// startDaemon launches `vigia daemon start` in the background and waits for
// the socket to answer. Returns a cleanup func that stops the daemon.
func startDaemon(t *testing.T, dir string, extraArgs ...string) func() {
	t.Helper()

	args := append([]string{"daemon", "start"}, extraArgs...)
	cmd := exec.Command(vigiaBin, args...)
	cmd.Dir = dir
	if err := cmd.Start(); err != nil {
		t.Fatalf("daemon start: %v", err)
	}
	go cmd.Wait()

	// Poll until the daemon answers health.
	var ready bool
	for i := 0; i < 50; i++ {
		time.Sleep(100 * time.Millisecond)
		stdout, _, _ := runVigia(t, dir, "health")
		if !strings.Contains(stdout, "not running") {
			ready = true
			break
		}
	}
	if !ready {
		cmd.Process.Kill()
		t.Fatal("daemon did not become ready within 5s")
	}

	return func() {
		// Graceful stop.
		runVigia(t, dir, "daemon", "stop")
		// Safety net: force-kill via PID file if still alive.
		pidFile := filepath.Join(dir, ".vigia", "run", "daemon.pid")
		if data, err := os.ReadFile(pidFile); err == nil {
			if pid, err := strconv.Atoi(strings.TrimSpace(string(data))); err == nil {
				syscall.Kill(pid, syscall.SIGKILL)
			}
		}
	}
}

// socketPathForDir computes the expected socket path for a directory.
// Replicates internal/adapters/socket.SocketPath logic.
func socketPathForDir(dir string) string {
	abs, _ := filepath.Abs(dir)
	h := sha256.Sum256([]byte(abs))
	return fmt.Sprintf("/tmp/vigia-%x.sock", h[:6])
}

// =============================================================================
// Standalone commands (no daemon needed)
// =============================================================================

func TestRules_List(t *testing.T) {
	dir := t.TempDir()
	stdout, _, exit := runVigia(t, dir, "rules")
	if exit != 0 {
		t.Fatalf("rules exit %d", exit)
	}
	for _, want := range []string{"5 rules", "critical_heat_drought", "high_dry_lightning", "P1"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("rules output missing %q:\n%s", want, stdout)
		}
	}
}

func TestAssess_RuleMatch(t *testing.T) {
	dir := t.TempDir()
	stdout, _, exit := runVigia(t, dir, "assess",
		"--zone", "Monchique", "--temp", "42", "--hum", "15", "--wind", "20")
	if exit != 0 {
		t.Fatalf("assess exit %d:\n%s", exit, stdout)
	}
	for _, want := range []string{"Monchique", "CRITICAL", "critical_heat_drought"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("assess output missing %q:\n%s", want, stdout)
		}
	}
}

func TestAssess_NoRuleMatch(t *testing.T) {
	dir := t.TempDir()
	stdout, _, exit := runVigia(t, dir, "assess",
		"--zone", "Sintra", "--temp", "20", "--hum", "70", "--wind", "10")
	if exit != 0 {
		t.Fatalf("assess exit %d", exit)
	}
	for _, want := range []string{"NORMAL", "Routine monitoring."} {
		if !strings.Contains(stdout, want) {
			t.Errorf("calm reading output missing %q:\n%s", want, stdout)
		}
	}
}

func TestAssess_NoteEventScan(t *testing.T) {
	dir := t.TempDir()
	stdout, _, exit := runVigia(t, dir, "assess",
		"--zone", "Serra da Estrela", "--temp", "25", "--hum", "50", "--wind", "10",
		"--note", "dry lightning seen on the north ridge")
	if exit != 0 {
		t.Fatalf("assess exit %d", exit)
	}
	for _, want := range []string{"HIGH", "high_dry_lightning", "dry_lightning"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("note scan output missing %q:\n%s", want, stdout)
		}
	}
}

func TestAssess_NoArgs(t *testing.T) {
	dir := t.TempDir()
	_, stderr, exit := runVigia(t, dir, "assess")
	if exit == 0 {
		t.Error("assess with no flags should exit non-zero")
	}
	if !strings.Contains(stderr, "--zone or --file") {
		t.Errorf("error should mention the required flags:\n%s", stderr)
	}
}

func TestAssess_File(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "readings.csv")
	writeFile(t, csvPath, readingsCSV)

	stdout, _, exit := runVigia(t, dir, "assess", "--file", csvPath)
	if exit != 0 {
		t.Fatalf("assess --file exit %d:\n%s", exit, stdout)
	}
	if !strings.Contains(stdout, "3 readings assessed") {
		t.Errorf("should report 3 readings assessed:\n%s", stdout)
	}
	if !strings.Contains(stdout, "actionable") {
		t.Errorf("should list actionable readings:\n%s", stdout)
	}
}

func TestAssess_File_BadRows(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "readings.csv")
	writeFile(t, csvPath, readingsCSV+"garbage,row,here,x,y\n")

	stdout, _, exit := runVigia(t, dir, "assess", "--file", csvPath)
	if exit != 0 {
		t.Fatalf("assess --file exit %d", exit)
	}
	if !strings.Contains(stdout, "3 readings assessed") {
		t.Errorf("good rows should still be assessed:\n%s", stdout)
	}
	if !strings.Contains(stdout, "1 skipped") {
		t.Errorf("bad row should be counted as skipped:\n%s", stdout)
	}
}

func TestRules_Override(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "custom.yaml"), `
- id: frost_watch
  priority: 1
  conditions: [{field: temp, op: "<", value: 2}]
  level: low
  action: Check frost damage.
`)

	stdout, _, exit := runVigia(t, dir, "rules", "--rules", "custom.yaml")
	if exit != 0 {
		t.Fatalf("rules --rules exit %d:\n%s", exit, stdout)
	}
	if !strings.Contains(stdout, "1 rules") {
		t.Errorf("override should replace the embedded pack:\n%s", stdout)
	}
	if !strings.Contains(stdout, "frost_watch") {
		t.Errorf("override rule should be listed:\n%s", stdout)
	}
	if strings.Contains(stdout, "critical_heat_drought") {
		t.Errorf("embedded rules should not leak through the override:\n%s", stdout)
	}
}

func TestAssess_RulesOverride(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "custom.yaml"), `
- id: frost_watch
  priority: 1
  conditions: [{field: temp, op: "<", value: 2}]
  level: low
  action: Check frost damage.
`)

	stdout, _, exit := runVigia(t, dir, "assess", "--rules", "custom.yaml",
		"--zone", "Serra da Estrela", "--temp", "-1", "--hum", "80", "--wind", "5")
	if exit != 0 {
		t.Fatalf("assess --rules exit %d:\n%s", exit, stdout)
	}
	if !strings.Contains(stdout, "frost_watch") {
		t.Errorf("override rule should fire:\n%s", stdout)
	}

	// A reading the embedded pack flags as critical falls through under the override.
	stdout, _, _ = runVigia(t, dir, "assess", "--rules", "custom.yaml",
		"--zone", "Monchique", "--temp", "42", "--hum", "15", "--wind", "20")
	if !strings.Contains(stdout, "no_rule") {
		t.Errorf("embedded rules should not fire under the override:\n%s", stdout)
	}
}

func TestRules_OverrideMissing(t *testing.T) {
	dir := t.TempDir()
	_, stderr, exit := runVigia(t, dir, "rules", "--rules", "absent.yaml")
	if exit == 0 {
		t.Error("missing override file should exit non-zero")
	}
	if !strings.Contains(stderr, "absent.yaml") {
		t.Errorf("error should name the bad path:\n%s", stderr)
	}
}

func TestSimulate_Offline(t *testing.T) {
	dir := t.TempDir()
	stdout, _, exit := runVigia(t, dir, "simulate", "--count", "24", "--seed", "3")
	if exit != 0 {
		t.Fatalf("simulate exit %d", exit)
	}
	if !strings.Contains(stdout, "readings assessed") {
		t.Errorf("simulate should print a report:\n%s", stdout)
	}
}

func TestSimulate_OutCSV(t *testing.T) {
	dir := t.TempDir()
	outPath := filepath.Join(dir, "synthetic.csv")

	stdout, _, exit := runVigia(t, dir, "simulate", "--count", "24", "--seed", "3", "--out", outPath)
	if exit != 0 {
		t.Fatalf("simulate --out exit %d:\n%s", exit, stdout)
	}
	if !strings.Contains(stdout, "wrote 24 synthetic readings") {
		t.Errorf("should report the written count:\n%s", stdout)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read output CSV: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 25 {
		t.Fatalf("expected header + 24 rows, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "timestamp,zone,temp,humidity,wind") {
		t.Errorf("unexpected header: %s", lines[0])
	}

	// The emitted CSV feeds straight back into assess --file.
	stdout, _, exit = runVigia(t, dir, "assess", "--file", outPath)
	if exit != 0 {
		t.Fatalf("assess on simulated CSV exit %d", exit)
	}
	if !strings.Contains(stdout, "24 readings assessed") {
		t.Errorf("all simulated rows should assess cleanly:\n%s", stdout)
	}
}

// =============================================================================
// Train and infer
// =============================================================================

func TestTrain_Synthetic(t *testing.T) {
	dir := t.TempDir()
	stdout, _, exit := runVigia(t, dir, "train", "--synthetic", "500", "--seed", "1")
	if exit != 0 {
		t.Fatalf("train exit %d:\n%s", exit, stdout)
	}
	if !strings.Contains(stdout, "model trained on 500 samples") {
		t.Errorf("should report sample count:\n%s", stdout)
	}
}

func TestTrain_FromCSV(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "training.csv")
	writeFile(t, csvPath, `temp,hum,wind,risk
41.0,12.0,35.0,high
36.0,28.0,20.0,medium
22.0,65.0,10.0,low
18.0,80.0,5.0,low
44.0,10.0,55.0,high
`)

	stdout, _, exit := runVigia(t, dir, "train", "--file", csvPath, "--laplace")
	if exit != 0 {
		t.Fatalf("train --file exit %d:\n%s", exit, stdout)
	}
	if !strings.Contains(stdout, "model trained on 5 samples") {
		t.Errorf("should train on all 5 rows:\n%s", stdout)
	}
}

func TestTrain_NoSource(t *testing.T) {
	dir := t.TempDir()
	_, stderr, exit := runVigia(t, dir, "train")
	if exit == 0 {
		t.Error("train with no source should exit non-zero")
	}
	if !strings.Contains(stderr, "--file or --synthetic") {
		t.Errorf("error should mention the required flags:\n%s", stderr)
	}
}

func TestInfer_Untrained(t *testing.T) {
	dir := t.TempDir()
	_, stderr, exit := runVigia(t, dir, "infer", "--temp", "41", "--hum", "15", "--wind", "60")
	if exit == 0 {
		t.Error("infer without a trained model should exit non-zero")
	}
	if !strings.Contains(stderr, "no trained model") {
		t.Errorf("error should mention 'no trained model':\n%s", stderr)
	}
}

func TestInfer_AfterTrain(t *testing.T) {
	dir := t.TempDir()
	_, _, exit := runVigia(t, dir, "train", "--synthetic", "2000", "--seed", "1", "--laplace")
	if exit != 0 {
		t.Fatal("train failed")
	}

	stdout, _, exit := runVigia(t, dir, "infer", "--temp", "41", "--hum", "15", "--wind", "60")
	if exit != 0 {
		t.Fatalf("infer exit %d:\n%s", exit, stdout)
	}
	for _, want := range []string{"model risk:", "low", "medium", "high"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("infer output missing %q:\n%s", want, stdout)
		}
	}
}

func TestModel_PersistsAcrossInvocations(t *testing.T) {
	dir := t.TempDir()
	runVigia(t, dir, "train", "--synthetic", "500", "--seed", "2")

	// A later assess in the same project should carry the model posterior.
	stdout, _, exit := runVigia(t, dir, "assess",
		"--zone", "Monchique", "--temp", "42", "--hum", "15", "--wind", "20")
	if exit != 0 {
		t.Fatalf("assess exit %d", exit)
	}
	if !strings.Contains(stdout, "model:") {
		t.Errorf("assess after train should print the model line:\n%s", stdout)
	}
}

// =============================================================================
// Report and history
// =============================================================================

func TestReport_NoHistory(t *testing.T) {
	dir := t.TempDir()
	stdout, _, exit := runVigia(t, dir, "report")
	if exit != 0 {
		t.Fatalf("report exit %d", exit)
	}
	if !strings.Contains(stdout, "no assessment history yet") {
		t.Errorf("fresh project should have no history:\n%s", stdout)
	}
}

func TestReport_AfterAssess(t *testing.T) {
	dir := t.TempDir()
	runVigia(t, dir, "assess", "--zone", "Monchique", "--temp", "42", "--hum", "15", "--wind", "20")
	runVigia(t, dir, "assess", "--zone", "Sintra", "--temp", "20", "--hum", "70", "--wind", "10")

	stdout, _, exit := runVigia(t, dir, "report")
	if exit != 0 {
		t.Fatalf("report exit %d", exit)
	}
	if !strings.Contains(stdout, "2 readings assessed") {
		t.Errorf("report should cover both assessments:\n%s", stdout)
	}
	if !strings.Contains(stdout, "Monchique") {
		t.Errorf("actionable list should name the critical zone:\n%s", stdout)
	}
}

// =============================================================================
// Daemon lifecycle
// =============================================================================

func TestHealth_NotRunning(t *testing.T) {
	dir := t.TempDir()
	stdout, _, exit := runVigia(t, dir, "health")
	// health exits 0 even when not running.
	if exit != 0 {
		t.Fatalf("health (no daemon) should exit 0, got %d", exit)
	}
	if !strings.Contains(stdout, "not running") {
		t.Errorf("should say 'not running':\n%s", stdout)
	}
}

func TestStats_NoDaemon(t *testing.T) {
	dir := t.TempDir()
	_, stderr, exit := runVigia(t, dir, "stats")
	if exit == 0 {
		t.Error("stats without daemon should exit non-zero")
	}
	if !strings.Contains(stderr, "daemon not running") {
		t.Errorf("error should mention 'daemon not running':\n%s", stderr)
	}
}

func TestDaemon_StartStop(t *testing.T) {
	dir := t.TempDir()
	cleanup := startDaemon(t, dir)

	// Socket should exist.
	sockPath := socketPathForDir(dir)
	if _, err := os.Stat(sockPath); os.IsNotExist(err) {
		t.Error("socket file not created after start")
	}

	// PID file should exist.
	if _, err := os.Stat(filepath.Join(dir, ".vigia", "run", "daemon.pid")); os.IsNotExist(err) {
		t.Error("PID file not created after start")
	}

	// Health should show daemon fields.
	stdout, _, exit := runVigia(t, dir, "health")
	if exit != 0 {
		t.Fatalf("health exit %d", exit)
	}
	for _, want := range []string{"Status:", "Model:", "Zones:", "Uptime:"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("health missing %q:\n%s", want, stdout)
		}
	}

	cleanup()

	// After stop, socket should be gone.
	time.Sleep(300 * time.Millisecond)
	if _, err := os.Stat(sockPath); err == nil {
		t.Error("socket file should be removed after stop")
	}

	stdout, _, _ = runVigia(t, dir, "health")
	if !strings.Contains(stdout, "not running") {
		t.Errorf("health should say 'not running' after stop:\n%s", stdout)
	}
}

func TestDaemon_DoubleStart(t *testing.T) {
	dir := t.TempDir()
	cleanup := startDaemon(t, dir)
	defer cleanup()

	stdout, _, exit := runVigia(t, dir, "daemon", "start")
	if exit != 0 {
		t.Logf("double start exit %d (non-fatal)", exit)
	}
	if !strings.Contains(stdout, "already running") {
		t.Errorf("should say 'already running':\n%s", stdout)
	}
}

func TestDaemon_StopNotRunning(t *testing.T) {
	dir := t.TempDir()
	stdout, _, exit := runVigia(t, dir, "daemon", "stop")
	if exit != 0 {
		t.Fatalf("stop (not running) exit %d", exit)
	}
	if !strings.Contains(stdout, "not running") {
		t.Errorf("should say 'not running':\n%s", stdout)
	}
}

func TestDaemon_StartStopStart(t *testing.T) {
	dir := t.TempDir()

	// First start/stop cycle.
	startDaemon(t, dir)
	runVigia(t, dir, "daemon", "stop")
	time.Sleep(500 * time.Millisecond)

	// Second start should succeed, the DB lock is released.
	cleanup2 := startDaemon(t, dir)
	defer cleanup2()

	stdout, _, exit := runVigia(t, dir, "health")
	if exit != 0 {
		t.Fatalf("health after restart exit %d", exit)
	}
	if !strings.Contains(stdout, "Uptime:") {
		t.Errorf("health should work after restart:\n%s", stdout)
	}
}

func TestDaemon_AssessAccumulatesStats(t *testing.T) {
	dir := t.TempDir()
	cleanup := startDaemon(t, dir)
	defer cleanup()

	_, _, exit := runVigia(t, dir, "assess",
		"--zone", "Monchique", "--temp", "42", "--hum", "15", "--wind", "20")
	if exit != 0 {
		t.Fatalf("assess via daemon exit %d", exit)
	}
	runVigia(t, dir, "assess", "--zone", "Sintra", "--temp", "20", "--hum", "70", "--wind", "10")

	stdout, _, exit := runVigia(t, dir, "stats")
	if exit != 0 {
		t.Fatalf("stats exit %d", exit)
	}
	for _, want := range []string{"Assessed:    2", "Actionable:  1", "critical", "Rules:       5"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("stats missing %q:\n%s", want, stdout)
		}
	}
}

func TestDaemon_TrainViaSocket(t *testing.T) {
	dir := t.TempDir()
	cleanup := startDaemon(t, dir)
	defer cleanup()

	stdout, _, exit := runVigia(t, dir, "train", "--synthetic", "500", "--seed", "1")
	if exit != 0 {
		t.Fatalf("train via daemon exit %d:\n%s", exit, stdout)
	}
	if !strings.Contains(stdout, "model trained on 500 samples") {
		t.Errorf("should report sample count:\n%s", stdout)
	}

	// Health should now show the trained model.
	stdout, _, _ = runVigia(t, dir, "health")
	if !strings.Contains(stdout, "trained (500 samples)") {
		t.Errorf("health should show trained model:\n%s", stdout)
	}
}

func TestDaemon_AssessFileRefused(t *testing.T) {
	dir := t.TempDir()
	cleanup := startDaemon(t, dir)
	defer cleanup()

	csvPath := filepath.Join(dir, "readings.csv")
	writeFile(t, csvPath, readingsCSV)

	_, stderr, exit := runVigia(t, dir, "assess", "--file", csvPath)
	if exit == 0 {
		t.Error("assess --file with a running daemon should exit non-zero")
	}
	if !strings.Contains(stderr, "drops") {
		t.Errorf("error should point at the drop directory:\n%s", stderr)
	}
}

func TestDaemon_DropDirAssessment(t *testing.T) {
	dir := t.TempDir()
	cleanup := startDaemon(t, dir)
	defer cleanup()

	// Drop a CSV into the watched directory, the daemon should pick it up.
	writeFile(t, filepath.Join(dir, ".vigia", "drops", "field.csv"), readingsCSV)

	var assessed bool
	for i := 0; i < 50; i++ {
		time.Sleep(100 * time.Millisecond)
		stdout, _, _ := runVigia(t, dir, "stats")
		if strings.Contains(stdout, "Assessed:    3") {
			assessed = true
			break
		}
	}
	if !assessed {
		t.Error("daemon should assess a dropped CSV within 5s")
	}
}

// =============================================================================
// Dashboard
// =============================================================================

func TestDashboard_HealthEndpoint(t *testing.T) {
	dir := t.TempDir()
	cleanup := startDaemon(t, dir)
	defer cleanup()

	portData, err := os.ReadFile(filepath.Join(dir, ".vigia", "run", "http.port"))
	if err != nil {
		t.Fatalf("read http.port: %v", err)
	}
	port := strings.TrimSpace(string(portData))
	url := fmt.Sprintf("http://localhost:%s/api/health", port)

	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET /api/health: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}
	if result["status"] != "ok" {
		t.Errorf("expected status 'ok', got %v", result["status"])
	}
}

func TestDashboard_HTMLServed(t *testing.T) {
	dir := t.TempDir()
	cleanup := startDaemon(t, dir)
	defer cleanup()

	portData, err := os.ReadFile(filepath.Join(dir, ".vigia", "run", "http.port"))
	if err != nil {
		t.Fatalf("read http.port: %v", err)
	}
	port := strings.TrimSpace(string(portData))
	url := fmt.Sprintf("http://localhost:%s/static/index.html", port)

	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET dashboard: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	ct := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "text/html") {
		t.Errorf("expected text/html, got %s", ct)
	}
}

func TestDashboard_PortCleanedOnStop(t *testing.T) {
	dir := t.TempDir()
	cleanup := startDaemon(t, dir)
	portFile := filepath.Join(dir, ".vigia", "run", "http.port")

	if _, err := os.Stat(portFile); os.IsNotExist(err) {
		t.Error("http.port file should exist while daemon is running")
	}

	cleanup()
	time.Sleep(300 * time.Millisecond)

	if _, err := os.Stat(portFile); err == nil {
		t.Error("http.port file should be removed after daemon stop")
	}
}

// =============================================================================
// Wipe
// =============================================================================

func TestWipe_Direct(t *testing.T) {
	dir := t.TempDir()
	runVigia(t, dir, "assess", "--zone", "Monchique", "--temp", "42", "--hum", "15", "--wind", "20")

	stdout, _, exit := runVigia(t, dir, "wipe", "--force")
	if exit != 0 {
		t.Fatalf("wipe exit %d", exit)
	}
	if !strings.Contains(stdout, "wiped") {
		t.Errorf("should say 'wiped':\n%s", stdout)
	}

	// History should be gone.
	stdout, _, _ = runVigia(t, dir, "report")
	if !strings.Contains(stdout, "0 readings assessed") && !strings.Contains(stdout, "no assessment history") {
		t.Errorf("report after wipe should be empty:\n%s", stdout)
	}
}

func TestWipe_ViaDaemon(t *testing.T) {
	dir := t.TempDir()
	runVigia(t, dir, "assess", "--zone", "Monchique", "--temp", "42", "--hum", "15", "--wind", "20")

	cleanup := startDaemon(t, dir)
	defer cleanup()

	stdout, _, exit := runVigia(t, dir, "wipe", "--force")
	if exit != 0 {
		t.Fatalf("wipe via daemon exit %d", exit)
	}
	if !strings.Contains(stdout, "wiped (daemon)") {
		t.Errorf("should indicate wipe went via daemon:\n%s", stdout)
	}

	stdout, _, _ = runVigia(t, dir, "stats")
	if !strings.Contains(stdout, "Assessed:    0") {
		t.Errorf("stats should reset after wipe:\n%s", stdout)
	}
}

func TestWipe_NoData(t *testing.T) {
	dir := t.TempDir()
	stdout, _, exit := runVigia(t, dir, "wipe", "--force")
	if exit != 0 {
		t.Fatalf("wipe on fresh dir exit %d", exit)
	}
	if !strings.Contains(stdout, "no data to wipe") {
		t.Errorf("should say 'no data to wipe':\n%s", stdout)
	}
}
