package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/toyz/sapigen/internal/errors"
	"github.com/toyz/sapigen/internal/models"
	"github.com/toyz/sapigen/internal/utils"
)

// Version is the generator version reported by --version
var Version = "dev"

// MaxJobs bounds --jobs
const MaxJobs = 256

// Config holds the configuration for the CLI generator. File values are
// overridden by flags that were set explicitly.
type Config struct {
	// Inputs are header files, directories, or dir/... patterns
	Inputs []string `yaml:"inputs" json:"inputs"`

	Name               string            `yaml:"name" json:"name"`
	OutFile            string            `yaml:"out" json:"out"`
	Namespace          string            `yaml:"namespace" json:"namespace"`
	FunctionNames      []string          `yaml:"functions" json:"functions"`
	EmbedDir           string            `yaml:"embed_dir" json:"embed_dir"`
	EmbedName          string            `yaml:"embed_name" json:"embed_name"`
	WorkDir            string            `yaml:"work_dir" json:"work_dir"`
	GuardSeed          string            `yaml:"guard_seed" json:"guard_seed"`
	FilteredNamespaces []string          `yaml:"filter_namespaces" json:"filter_namespaces"`
	Wrappers           map[string]string `yaml:"wrappers" json:"wrappers"`

	// Jobs bounds the headers parsed concurrently, 0 picks one per CPU
	Jobs int `yaml:"jobs" json:"jobs"`

	ConfigFile  string `yaml:"-" json:"-"`
	Verbose     bool   `yaml:"-" json:"-"`
	Quiet       bool   `yaml:"-" json:"-"`
	ShowVersion bool   `yaml:"-" json:"-"`
}

// NewFlagSet binds the command-line flags to cfg
func NewFlagSet(cfg *Config) *pflag.FlagSet {
	fs := pflag.NewFlagSet("sapigen", pflag.ContinueOnError)
	fs.SortFlags = false

	fs.StringVar(&cfg.Name, "name", "", "base name of the generated classes, e.g. Zlib")
	fs.StringVarP(&cfg.OutFile, "out", "o", "", "output header, stdout when empty; also derives the include guard")
	fs.StringVar(&cfg.Namespace, "namespace", "", "namespace wrapping the generated code, e.g. sapi::zlib")
	fs.StringSliceVar(&cfg.FunctionNames, "functions", nil, "comma separated allowlist of functions, empty selects all")
	fs.StringVar(&cfg.EmbedDir, "embed-dir", "", "directory of the embedded sandboxee header")
	fs.StringVar(&cfg.EmbedName, "embed-name", "", "embedded sandboxee name, enables the sandbox class")
	fs.StringVar(&cfg.WorkDir, "work-dir", "", "directory relative inputs and output are resolved against")
	fs.StringVar(&cfg.GuardSeed, "guard-seed", "", "seed for a reproducible include guard when --out is empty")
	fs.StringSliceVar(&cfg.FilteredNamespaces, "filter-namespace", nil, "extra namespace roots whose types are never declared")
	fs.StringToStringVar(&cfg.Wrappers, "wrapper", nil, "extra transport wrapper, e.g. char16_t=::sapi::v::UShort")
	fs.IntVarP(&cfg.Jobs, "jobs", "j", 0, "headers parsed in parallel, 0 for one per CPU")
	fs.StringVarP(&cfg.ConfigFile, "config", "c", "", "YAML or JSON config file")
	fs.BoolVarP(&cfg.Verbose, "verbose", "v", false, "enable verbose output and detailed error reporting")
	fs.BoolVarP(&cfg.Quiet, "quiet", "q", false, "only show errors")
	fs.BoolVar(&cfg.ShowVersion, "version", false, "print the version and exit")

	return fs
}

// ParseArgs builds the configuration from args (without the program name).
// Positional arguments replace the inputs of the config file.
func ParseArgs(args []string, usageOut io.Writer) (*Config, error) {
	flags := &Config{}
	fs := NewFlagSet(flags)
	fs.SetOutput(usageOut)
	fs.Usage = func() { printUsage(usageOut, fs) }

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg := flags
	if flags.ConfigFile != "" {
		fileCfg, err := LoadConfigFile(flags.ConfigFile)
		if err != nil {
			return nil, err
		}
		fileCfg.overrideWith(flags, fs)
		cfg = fileCfg
	}
	if fs.NArg() > 0 {
		cfg.Inputs = fs.Args()
	}
	return cfg, nil
}

// overrideWith copies the flags that were set on the command line
func (c *Config) overrideWith(flags *Config, fs *pflag.FlagSet) {
	set := func(name string, apply func()) {
		if fs.Changed(name) {
			apply()
		}
	}
	set("name", func() { c.Name = flags.Name })
	set("out", func() { c.OutFile = flags.OutFile })
	set("namespace", func() { c.Namespace = flags.Namespace })
	set("functions", func() { c.FunctionNames = flags.FunctionNames })
	set("embed-dir", func() { c.EmbedDir = flags.EmbedDir })
	set("embed-name", func() { c.EmbedName = flags.EmbedName })
	set("work-dir", func() { c.WorkDir = flags.WorkDir })
	set("guard-seed", func() { c.GuardSeed = flags.GuardSeed })
	set("filter-namespace", func() { c.FilteredNamespaces = flags.FilteredNamespaces })
	set("jobs", func() { c.Jobs = flags.Jobs })
	set("wrapper", func() {
		if c.Wrappers == nil {
			c.Wrappers = make(map[string]string)
		}
		for k, v := range flags.Wrappers {
			c.Wrappers[k] = v
		}
	})

	c.ConfigFile = flags.ConfigFile
	c.Verbose = flags.Verbose
	c.Quiet = flags.Quiet
	c.ShowVersion = flags.ShowVersion
}

// LoadConfigFile reads a YAML (.yaml, .yml) or JSON (.json, .jsonc) config
// file. JSON files may contain comments and trailing commas. Unknown keys are
// rejected. When the file sets no work_dir, its directory is used.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapFileSystemError("read", path, err)
	}

	cfg := &Config{}
	ext := strings.ToLower(filepath.Ext(path))
	if err := utils.IsOneOf("config", ".yaml", ".yml", ".json", ".jsonc")(ext); err != nil {
		return nil, errors.ConfigurationError("config", "unsupported config file '"+path+"'").
			WithCause(err).
			WithSuggestions("Use a .yaml, .yml, .json or .jsonc file")
	}

	switch ext {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && err != io.EOF {
			return nil, errors.WrapConfigurationError(path, "decode", err)
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
		dec.DisallowUnknownFields()
		if err := dec.Decode(cfg); err != nil && err != io.EOF {
			return nil, errors.WrapConfigurationError(path, "decode", err)
		}
	}

	if cfg.WorkDir == "" {
		cfg.WorkDir = filepath.Dir(path)
	} else if !filepath.IsAbs(cfg.WorkDir) {
		cfg.WorkDir = filepath.Join(filepath.Dir(path), cfg.WorkDir)
	}
	return cfg, nil
}

const embedNamePattern = `^[A-Za-z_][A-Za-z0-9_-]*$`

// Validate checks the CLI-only settings. Generator options are validated by
// the generator itself.
func (c *Config) Validate() error {
	var multi *errors.MultipleErrors

	if len(c.Inputs) == 0 {
		errors.AddToMultiple(&multi, errors.ConfigurationError("inputs", "at least one header file or directory is required").
			WithSuggestions("Pass headers as arguments, e.g. sapigen --name=zlib zlib.h"))
	}
	if err := utils.InRange("jobs", 0, MaxJobs)(c.Jobs); err != nil {
		errors.AddToMultiple(&multi, errors.ConfigurationError("jobs", err.Error()))
	}
	if c.Verbose && c.Quiet {
		errors.AddToMultiple(&multi, errors.ConfigurationError("verbosity", "--verbose and --quiet are mutually exclusive"))
	}

	embed := utils.Conditional(func(s string) bool { return s != "" },
		utils.MatchesRegex("embed_name", embedNamePattern))
	if err := embed(c.EmbedName); err != nil {
		errors.AddToMultiple(&multi, errors.ConfigurationError("embed_name", err.Error()))
	}
	if err := utils.ValidateEach("filter_namespaces", utils.IsValidCIdentifier("namespace"))(c.FilteredNamespaces); err != nil {
		errors.AddToMultiple(&multi, errors.ConfigurationError("filter_namespaces", err.Error()))
	}

	return multi.ErrorOrNil()
}

// ToOptions converts the configuration to generator options
func (c *Config) ToOptions() *models.GeneratorOptions {
	return &models.GeneratorOptions{
		WorkDir:            c.WorkDir,
		Name:               c.Name,
		Namespace:          c.Namespace,
		OutFile:            c.OutFile,
		EmbedDir:           c.EmbedDir,
		EmbedName:          c.EmbedName,
		FunctionNames:      trimAll(c.FunctionNames),
		GuardSeed:          c.GuardSeed,
		FilteredNamespaces: trimAll(c.FilteredNamespaces),
		Wrappers:           c.Wrappers,
	}
}

// OutputPath returns where the header is written, empty for stdout
func (c *Config) OutputPath() string {
	return c.resolve(c.OutFile)
}

// InputPatterns returns the inputs resolved against WorkDir
func (c *Config) InputPatterns() []string {
	patterns := make([]string, len(c.Inputs))
	for i, in := range c.Inputs {
		patterns[i] = c.resolve(in)
	}
	return patterns
}

func (c *Config) resolve(path string) string {
	if path == "" || c.WorkDir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.WorkDir, path)
}

// DiagnosticLevel returns the level selected by --verbose and --quiet
func (c *Config) DiagnosticLevel() utils.DiagnosticLevel {
	switch {
	case c.Quiet:
		return utils.DiagnosticError
	case c.Verbose:
		return utils.DiagnosticVerbose
	default:
		return utils.DiagnosticInfo
	}
}

func trimAll(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func printUsage(w io.Writer, fs *pflag.FlagSet) {
	io.WriteString(w, "Usage: sapigen [options] <headers or directories...>\n\n")
	io.WriteString(w, "Sandboxed API header generator\n")
	io.WriteString(w, "Generates a C++ proxy class that calls the selected functions of a C/C++\nlibrary through a Sandboxed API sandbox.\n\n")
	io.WriteString(w, "Options:\n")
	io.WriteString(w, fs.FlagUsages())
	io.WriteString(w, "\nInput Patterns:\n")
	io.WriteString(w, "  zlib.h             A single header\n")
	io.WriteString(w, "  include            Every header directly in the directory\n")
	io.WriteString(w, "  include/...        Every header in the directory and its subdirectories\n")
	io.WriteString(w, "\nExamples:\n")
	io.WriteString(w, "  sapigen --name=Zlib --namespace=sapi::zlib --functions=deflateInit_,deflate -o zlib.sapi.h zlib.h\n")
	io.WriteString(w, "  sapigen --config sapigen.yaml\n")
}
