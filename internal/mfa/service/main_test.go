package service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/casefolio/stepup/pkg/cryptox"
)

func TestMain(m *testing.M) {
	// Code hashing needs a pepper file before the first hash.
	tmpDir := os.TempDir()
	pepperPath := filepath.Join(tmpDir, "stepup-service-test-pepper")
	cryptox.SetPepperPath(pepperPath)

	os.Remove(pepperPath)
	defer os.Remove(pepperPath)

	os.Exit(m.Run())
}
