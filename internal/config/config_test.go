package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Test blender defaults
	if cfg.Blender.Executable != "blender" {
		t.Errorf("expected executable 'blender', got %s", cfg.Blender.Executable)
	}
	if !cfg.Blender.FactoryStartup {
		t.Error("expected factory startup to be true by default")
	}

	// Test convert defaults
	if cfg.Convert.SourceExt != ".dae" {
		t.Errorf("expected source ext .dae, got %s", cfg.Convert.SourceExt)
	}
	if cfg.Convert.TargetExt != ".stl" {
		t.Errorf("expected target ext .stl, got %s", cfg.Convert.TargetExt)
	}

	// Test mjcf defaults
	if cfg.MJCF.Output != "" {
		t.Errorf("expected empty output, got %s", cfg.MJCF.Output)
	}
	if len(cfg.MJCF.MeshExtensions) != 0 {
		t.Errorf("expected no extension filter, got %v", cfg.MJCF.MeshExtensions)
	}
	if cfg.MJCF.RelativeFiles {
		t.Error("expected relative_files to be false by default")
	}

	// Test logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config must be valid: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	// Create temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
blender:
  executable: /opt/blender/blender
  args: ["--python-use-system-env"]
  factory_startup: false

convert:
  source_ext: .obj

mjcf:
  output: out/model.xml
  mesh_extensions: [".obj"]
  relative_files: true
  indent: 2

logging:
  level: "debug"
  log_file: "meshtool.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Load config
	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Verify values were loaded
	if cfg.Blender.Executable != "/opt/blender/blender" {
		t.Errorf("unexpected executable %s", cfg.Blender.Executable)
	}
	if len(cfg.Blender.Args) != 1 || cfg.Blender.Args[0] != "--python-use-system-env" {
		t.Errorf("unexpected args %v", cfg.Blender.Args)
	}
	if cfg.Blender.FactoryStartup {
		t.Error("expected factory startup to be false")
	}

	if cfg.Convert.SourceExt != ".obj" {
		t.Errorf("expected source ext .obj, got %s", cfg.Convert.SourceExt)
	}
	// Unset keys keep their defaults
	if cfg.Convert.TargetExt != ".stl" {
		t.Errorf("expected target ext .stl, got %s", cfg.Convert.TargetExt)
	}

	if cfg.MJCF.Output != "out/model.xml" {
		t.Errorf("unexpected output %s", cfg.MJCF.Output)
	}
	if !cfg.MJCF.RelativeFiles {
		t.Error("expected relative_files to be true")
	}
	if cfg.MJCF.Indent != 2 {
		t.Errorf("expected indent 2, got %d", cfg.MJCF.Indent)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "meshtool.log" {
		t.Errorf("expected log file 'meshtool.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
mjcf:
  indent: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFromFile(cfg, "/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"obj source", func(c *Config) { c.Convert.SourceExt = ".obj" }, false},
		{"unknown source", func(c *Config) { c.Convert.SourceExt = ".fbx" }, true},
		{"non stl target", func(c *Config) { c.Convert.TargetExt = ".ply" }, true},
		{"empty executable", func(c *Config) { c.Blender.Executable = "" }, true},
		{"bad extension", func(c *Config) { c.MJCF.MeshExtensions = []string{"obj"} }, true},
		{"good extension", func(c *Config) { c.MJCF.MeshExtensions = []string{".obj", ".OBJ"} }, false},
		{"unknown level", func(c *Config) { c.Logging.Level = "verbose" }, true},
		{"negative indent", func(c *Config) { c.MJCF.Indent = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	os.Chdir(tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))

	// No config file exists - should return empty
	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("mjcf:\n  indent: 2\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	if path := findConfigFile(); path == "" {
		t.Error("expected to find config.yaml in current directory")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvBlender, "/usr/local/bin/blender")
	t.Setenv(EnvLogLevel, "warn")

	cfg := Default()
	applyEnv(cfg)

	if cfg.Blender.Executable != "/usr/local/bin/blender" {
		t.Errorf("expected executable from env, got %s", cfg.Blender.Executable)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("expected level from env, got %s", cfg.Logging.Level)
	}
}

func TestLoadDotEnv(t *testing.T) {
	tmpDir := t.TempDir()
	if err := loadDotEnv(filepath.Join(tmpDir, "missing.env")); err != nil {
		t.Errorf("missing .env must be ignored, got %v", err)
	}

	envPath := filepath.Join(tmpDir, ".env")
	if err := os.WriteFile(envPath, []byte(EnvBlender+"=/snap/bin/blender\n"), 0644); err != nil {
		t.Fatalf("failed to write .env: %v", err)
	}
	t.Setenv(EnvBlender, "")
	os.Unsetenv(EnvBlender)

	if err := loadDotEnv(envPath); err != nil {
		t.Fatalf("loadDotEnv: %v", err)
	}
	if got := os.Getenv(EnvBlender); got != "/snap/bin/blender" {
		t.Errorf("expected value from .env, got %q", got)
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*testing.T, *Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name:  "blender flag",
			setup: func() { *flagBlender = "/apps/blender" },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Blender.Executable != "/apps/blender" {
					t.Errorf("expected executable /apps/blender, got %s", cfg.Blender.Executable)
				}
			},
			teardown: func() { *flagBlender = "" },
		},
		{
			name:  "log file flag",
			setup: func() { *flagLogFile = "run.log" },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.LogFile != "run.log" {
					t.Errorf("expected log file run.log, got %s", cfg.Logging.LogFile)
				}
			},
			teardown: func() { *flagLogFile = "" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)
			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
blender:
  executable: /from/file/blender
logging:
  level: warn
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	t.Setenv(EnvLogLevel, "error")
	*flagConfig = configPath
	*flagBlender = "/from/flag/blender"
	defer func() {
		*flagConfig = ""
		*flagBlender = ""
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Executable from flag beats the file
	if cfg.Blender.Executable != "/from/flag/blender" {
		t.Errorf("expected executable from flag, got %s", cfg.Blender.Executable)
	}
	// Level from env beats the file
	if cfg.Logging.Level != "error" {
		t.Errorf("expected level from env, got %s", cfg.Logging.Level)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("convert:\n  target_ext: .obj\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	defer func() { *flagConfig = "" }()

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "invalid config") {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestSaveAndWrite(t *testing.T) {
	cfg := Default()
	cfg.MJCF.RelativeFiles = true

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !loaded.MJCF.RelativeFiles {
		t.Error("relative_files lost on save")
	}

	var buf bytes.Buffer
	if _, err := cfg.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	if !strings.Contains(buf.String(), "relative_files: true") {
		t.Errorf("unexpected YAML:\n%s", buf.String())
	}
}

func TestSaveToUserConfigDir(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)
	t.Setenv("HOME", tmpDir)
	t.Setenv("APPDATA", tmpDir)

	cfg := Default()
	cfg.Blender.Executable = "/opt/blender/blender"
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	path := filepath.Join(ConfigDir(), "config.yaml")
	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("reading saved config: %v", err)
	}
	if loaded.Blender.Executable != "/opt/blender/blender" {
		t.Errorf("expected saved executable, got %s", loaded.Blender.Executable)
	}
}
