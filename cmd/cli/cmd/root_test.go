package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dvloznov/finwise/internal/domain"
	"github.com/dvloznov/finwise/internal/pipeline"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("AI_PROVIDER", "none")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("GCS_BUCKET", "")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--env-file", filepath.Join(t.TempDir(), "none.env"), "--log-level", "error"}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "jan.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const cliCSV = "date,amount,type,description\n" +
	"2026-01-05,1000,income,Salary\n" +
	"2026-01-06,1500,expense,Rent\n" +
	"2026-01-07,oops,expense,Broken\n"

func TestClassifyCommand(t *testing.T) {
	out, err := runCLI(t, "classify", "Swiggy", "order", "--amount", "450")
	if err != nil {
		t.Fatalf("classify error: %v", err)
	}

	var got domain.Classification
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid output %q: %v", out, err)
	}
	if got.Category != "Food & Dining" || got.ConfidenceScore != 0.6 || got.Source != domain.SourceRules {
		t.Errorf("unexpected classification: %+v", got)
	}
}

func TestClassifyCommand_BadType(t *testing.T) {
	if _, err := runCLI(t, "classify", "Rent", "--type", "transfer"); err == nil {
		t.Fatal("expected error for invalid --type")
	}
	classifyType = string(domain.TransactionTypeExpense)
}

func TestImportCommand(t *testing.T) {
	out, err := runCLI(t, "import", writeCSV(t, cliCSV))
	if err != nil {
		t.Fatalf("import error: %v", err)
	}

	var got pipeline.Result
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid output %q: %v", out, err)
	}
	if got.Added != 2 || len(got.Errors) != 1 {
		t.Errorf("unexpected result: %+v", got)
	}
}

func TestImportCommand_GCSWithoutBucket(t *testing.T) {
	if _, err := runCLI(t, "import", "gs://bucket/jan.csv"); err == nil {
		t.Fatal("expected error without GCS_BUCKET")
	}
}

func TestCoachCommand_FromCSV(t *testing.T) {
	out, err := runCLI(t, "coach", "--csv", writeCSV(t, cliCSV))
	coachCSV = ""
	if err != nil {
		t.Fatalf("coach error: %v", err)
	}

	var got domain.CoachingResult
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid output %q: %v", out, err)
	}
	if got.Source != domain.SourceRules {
		t.Errorf("source = %q, want rules", got.Source)
	}
	if !strings.Contains(strings.Join(got.Insights, " "), "exceed income by ₹500.00") {
		t.Errorf("unexpected insights: %v", got.Insights)
	}
}

func TestCoachCommand_EmptyStore(t *testing.T) {
	if _, err := runCLI(t, "coach"); err == nil {
		t.Fatal("expected error with no stored transactions")
	}
}

func TestUploadCommand_RequiresCSV(t *testing.T) {
	if _, err := runCLI(t, "upload", "statement.pdf"); err == nil {
		t.Fatal("expected error for non-CSV file")
	}
}
