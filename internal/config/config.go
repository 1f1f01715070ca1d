// Package config handles meshtool configuration loading and management.
package config

// Config holds all meshtool settings.
type Config struct {
	Blender BlenderConfig `yaml:"blender"`
	Convert ConvertConfig `yaml:"convert"`
	MJCF    MJCFConfig    `yaml:"mjcf"`
	Logging LoggingConfig `yaml:"logging"`
}

// BlenderConfig holds the host application settings.
type BlenderConfig struct {
	Executable string `yaml:"executable" validate:"required"`
	// Args are extra arguments placed before --python.
	Args []string `yaml:"args"`
	// FactoryStartup skips user preferences and the startup file.
	FactoryStartup bool `yaml:"factory_startup"`
}

// ConvertConfig holds batch conversion settings.
type ConvertConfig struct {
	SourceExt string `yaml:"source_ext" validate:"required,oneof=.dae .obj"`
	TargetExt string `yaml:"target_ext" validate:"required,eq=.stl"`
}

// MJCFConfig holds MJCF rewriting settings.
type MJCFConfig struct {
	// Output is the rewritten file. Empty overwrites the input.
	Output         string   `yaml:"output"`
	MeshExtensions []string `yaml:"mesh_extensions" validate:"dive,startswith=."`
	// RelativeFiles writes generated paths relative to meshdir.
	RelativeFiles bool `yaml:"relative_files"`
	Indent        int  `yaml:"indent" validate:"min=0,max=8"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level" validate:"oneof=debug info warn error"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Blender: BlenderConfig{
			Executable:     "blender",
			FactoryStartup: true,
		},
		Convert: ConvertConfig{
			SourceExt: ".dae",
			TargetExt: ".stl",
		},
		MJCF: MJCFConfig{
			Indent: 0,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
