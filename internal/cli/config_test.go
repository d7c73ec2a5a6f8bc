package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/valter-silva-au/autospark/internal/core"
	"github.com/valter-silva-au/autospark/pkg/models"
	"gopkg.in/yaml.v3"
)

func TestConfigInitCmd_WritesDefaults(t *testing.T) {
	dir := t.TempDir()
	origForce := configInitForce
	defer func() { configInitForce = origForce }()
	configInitForce = false

	out, err := invoke(t, configInitCmd, dir)
	if err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	path := filepath.Join(dir, ".autospark.yaml")
	if !strings.Contains(out, path) {
		t.Errorf("unexpected output:\n%s", out)
	}

	var written models.GlobalConfig
	if err := yaml.Unmarshal([]byte(readFile(t, path)), &written); err != nil {
		t.Fatalf("written config is not YAML: %v", err)
	}
	if written.Launcher.Command != "cmd" || written.Script.Extension != ".bat" {
		t.Errorf("written config = %+v", written)
	}

	// The written file must load back to the same settings.
	loaded, err := core.NewConfigurationManager(dir).LoadGlobalConfig()
	if err != nil {
		t.Fatalf("loading written config: %v", err)
	}
	if loaded.TaskList.DefaultFile != "tasks.txt" || len(loaded.Launcher.Args) != 1 || loaded.Launcher.Args[0] != "/c" {
		t.Errorf("loaded config = %+v", loaded)
	}
}

func TestConfigInitCmd_ExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".autospark.yaml")
	if err := os.WriteFile(path, []byte("script:\n  extension: .cmd\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	origForce := configInitForce
	defer func() { configInitForce = origForce }()

	configInitForce = false
	if _, err := invoke(t, configInitCmd, dir); err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("expected already exists error, got %v", err)
	}
	if !strings.Contains(readFile(t, path), ".cmd") {
		t.Error("existing config must be kept without --force")
	}

	configInitForce = true
	if _, err := invoke(t, configInitCmd, dir); err != nil {
		t.Fatalf("config init --force failed: %v", err)
	}
	if strings.Contains(readFile(t, path), ".cmd") {
		t.Error("--force should overwrite the config")
	}
}

func TestConfigShowCmd(t *testing.T) {
	withSession(t)
	Config.Script.Extension = ".cmd"

	out, err := invoke(t, configShowCmd)
	if err != nil {
		t.Fatalf("config show failed: %v", err)
	}
	if !strings.Contains(out, "extension: .cmd") || !strings.Contains(out, "# base path:") {
		t.Errorf("unexpected output:\n%s", out)
	}

	Config = nil
	if _, err := invoke(t, configShowCmd); err == nil {
		t.Error("expected error when config is not loaded")
	}
}

type configMgrMock struct {
	cfg         *models.GlobalConfig
	loadErr     error
	validateErr error
}

func (m *configMgrMock) LoadGlobalConfig() (*models.GlobalConfig, error) { return m.cfg, m.loadErr }
func (m *configMgrMock) ValidateConfig(*models.GlobalConfig) error     { return m.validateErr }

func TestConfigValidateCmd(t *testing.T) {
	orig := ConfigMgr
	defer func() { ConfigMgr = orig }()

	ConfigMgr = nil
	if _, err := invoke(t, configValidateCmd); err == nil || !strings.Contains(err.Error(), "not initialized") {
		t.Errorf("expected not initialized error, got %v", err)
	}

	ConfigMgr = &configMgrMock{cfg: core.DefaultGlobalConfig()}
	out, err := invoke(t, configValidateCmd)
	if err != nil || !strings.Contains(out, "valid") {
		t.Errorf("valid config: out=%q err=%v", out, err)
	}

	ConfigMgr = &configMgrMock{cfg: core.DefaultGlobalConfig(), validateErr: fmt.Errorf("launcher.command must not be empty")}
	if _, err := invoke(t, configValidateCmd); err == nil || !strings.Contains(err.Error(), "launcher.command") {
		t.Errorf("expected validation error, got %v", err)
	}

	ConfigMgr = &configMgrMock{loadErr: fmt.Errorf("bad yaml")}
	if _, err := invoke(t, configValidateCmd); err == nil || !strings.Contains(err.Error(), "loading config") {
		t.Errorf("expected load error, got %v", err)
	}
}
