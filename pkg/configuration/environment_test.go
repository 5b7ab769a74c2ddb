package configuration

import (
	"os"
	"testing"
	"time"
)

func TestLoadEnv_ReadsEnvFile(t *testing.T) {
	tmp := t.TempDir()

	requireWriteFile(t, tmp+"/.env.local", "WORKY_TEST_ENV_LOAD=ok\n")

	origWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(origWd) })
	if err := os.Chdir(tmp); err != nil {
		t.Fatalf("chdir: %v", err)
	}

	_ = os.Unsetenv("WORKY_TEST_ENV_LOAD")

	n, err := LoadEnv([]string{".env", ".env.local"})
	if err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 env file loaded, got %d", n)
	}
	if got := os.Getenv("WORKY_TEST_ENV_LOAD"); got != "ok" {
		t.Fatalf("expected env var loaded, got %q", got)
	}
}

func TestImportOptions_Validate(t *testing.T) {
	valid := ImportOptions{MaxUploadSize: 1 << 20, Timeout: time.Minute, BatchSize: 100}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid options rejected: %v", err)
	}

	cases := []ImportOptions{
		{MaxUploadSize: 0, Timeout: time.Minute, BatchSize: 100},
		{MaxUploadSize: 1, Timeout: 0, BatchSize: 100},
		{MaxUploadSize: 1, Timeout: time.Minute, BatchSize: 0},
	}
	for i, c := range cases {
		if err := c.Validate(); err == nil {
			t.Errorf("case %d: expected validation error", i)
		}
	}
}

func requireWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
