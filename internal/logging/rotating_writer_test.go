package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewRotatingFileWriter(t *testing.T) {
	tmpDir := t.TempDir()
	logFile := filepath.Join(tmpDir, "crawl.log")

	writer, err := NewRotatingFileWriter(logFile, 1024, 3)
	if err != nil {
		t.Fatalf("NewRotatingFileWriter failed: %v", err)
	}
	defer writer.Close()

	if writer.filePath != logFile {
		t.Errorf("FilePath = %q, want %q", writer.filePath, logFile)
	}
	if writer.maxSize != 1024 || writer.maxBackups != 3 {
		t.Errorf("unexpected limits: size=%d backups=%d", writer.maxSize, writer.maxBackups)
	}
}

func TestRotatingFileWriter_AppendsToExistingFile(t *testing.T) {
	tmpDir := t.TempDir()
	logFile := filepath.Join(tmpDir, "crawl.log")

	if err := os.WriteFile(logFile, []byte("existing\n"), 0600); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	writer, err := NewRotatingFileWriter(logFile, 1024, 3)
	if err != nil {
		t.Fatalf("NewRotatingFileWriter failed: %v", err)
	}
	if _, err := writer.Write([]byte("appended\n")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	_ = writer.Close()

	content, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if string(content) != "existing\nappended\n" {
		t.Errorf("File content = %q", string(content))
	}
}

func TestRotatingFileWriter_Rotation(t *testing.T) {
	tmpDir := t.TempDir()
	logFile := filepath.Join(tmpDir, "crawl.log")

	writer, err := NewRotatingFileWriter(logFile, 50, 3)
	if err != nil {
		t.Fatalf("NewRotatingFileWriter failed: %v", err)
	}
	defer writer.Close()

	firstMsg := strings.Repeat("A", 30) + "\n"
	secondMsg := strings.Repeat("B", 30) + "\n"

	if _, err := writer.Write([]byte(firstMsg)); err != nil {
		t.Fatalf("First write failed: %v", err)
	}
	if _, err := writer.Write([]byte(secondMsg)); err != nil {
		t.Fatalf("Second write failed: %v", err)
	}

	content, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if string(content) != secondMsg {
		t.Errorf("Current log content = %q, want %q", string(content), secondMsg)
	}

	backup, err := os.ReadFile(filepath.Join(tmpDir, "crawl.1.log"))
	if err != nil {
		t.Fatalf("Backup file was not created: %v", err)
	}
	if string(backup) != firstMsg {
		t.Errorf("Backup content = %q, want %q", string(backup), firstMsg)
	}
}

func TestRotatingFileWriter_MaxBackups(t *testing.T) {
	tmpDir := t.TempDir()
	logFile := filepath.Join(tmpDir, "crawl.log")

	writer, err := NewRotatingFileWriter(logFile, 20, 2)
	if err != nil {
		t.Fatalf("NewRotatingFileWriter failed: %v", err)
	}
	defer writer.Close()

	for i := 0; i < 5; i++ {
		msg := fmt.Sprintf("Message %d: %s\n", i, strings.Repeat("X", 15))
		if _, err := writer.Write([]byte(msg)); err != nil {
			t.Fatalf("Write %d failed: %v", i, err)
		}
	}

	files, err := os.ReadDir(tmpDir)
	if err != nil {
		t.Fatalf("Failed to read directory: %v", err)
	}

	backupCount := 0
	for _, file := range files {
		if file.Name() != "crawl.log" {
			backupCount++
		}
	}
	if backupCount != 2 {
		t.Errorf("Found %d backup files, expected 2", backupCount)
	}

	newest, err := os.ReadFile(filepath.Join(tmpDir, "crawl.1.log"))
	if err != nil {
		t.Fatalf("read newest backup: %v", err)
	}
	if !strings.HasPrefix(string(newest), "Message 3") {
		t.Errorf("newest backup = %q, want Message 3", string(newest))
	}
}

func TestRotatingFileWriter_NoRotationWhenUnlimited(t *testing.T) {
	tmpDir := t.TempDir()
	logFile := filepath.Join(tmpDir, "crawl.log")

	writer, err := NewRotatingFileWriter(logFile, 0, 3)
	if err != nil {
		t.Fatalf("NewRotatingFileWriter failed: %v", err)
	}
	defer writer.Close()

	for i := 0; i < 10; i++ {
		if _, err := writer.Write([]byte(strings.Repeat("Z", 100))); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}

	files, _ := os.ReadDir(tmpDir)
	if len(files) != 1 {
		t.Errorf("expected only the live file, found %d files", len(files))
	}
}

func TestRotatingFileWriter_BackupName(t *testing.T) {
	tmpDir := t.TempDir()
	writer, err := NewRotatingFileWriter(filepath.Join(tmpDir, "app.log"), 1024, 3)
	if err != nil {
		t.Fatalf("NewRotatingFileWriter failed: %v", err)
	}
	defer writer.Close()

	if got, want := writer.backupName(2), filepath.Join(tmpDir, "app.2.log"); got != want {
		t.Errorf("backupName(2) = %q, want %q", got, want)
	}
}
