package lint

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/gnolang/typelint/internal"
	"github.com/gnolang/typelint/internal/lints"
	tt "github.com/gnolang/typelint/internal/types"
	"github.com/gnolang/typelint/scanner"
)

// DefaultConfigFile is the configuration file looked up when none is given.
const DefaultConfigFile = ".typelint.yaml"

// ProgressOutput receives the progress bar of directory runs.
var ProgressOutput io.Writer = os.Stderr

type LintEngine interface {
	Run(filePath string) ([]tt.Issue, error)
	RunSource(source []byte) ([]tt.Issue, error)
	IgnoreRule(rule string)
	IgnorePath(path string)
}

// New creates an engine configured from configurationPath. A missing
// configuration file leaves every rule at its default.
func New(rootDir string, configurationPath string, logger *zap.Logger) (*internal.Engine, error) {
	config, err := parseConfigurationFile(configurationPath)
	if err != nil {
		return nil, err
	}

	engine, err := internal.NewEngine(rootDir, config.Rules, logger)
	if err != nil {
		return nil, err
	}
	for _, p := range config.IgnorePaths {
		engine.IgnorePath(p)
	}
	return engine, nil
}

func ProcessSources(
	ctx context.Context,
	logger *zap.Logger,
	engine LintEngine,
	sources [][]byte,
	processor func(LintEngine, []byte) ([]tt.Issue, error),
) ([]tt.Issue, error) {
	var allIssues []tt.Issue
	for i, source := range sources {
		if err := ctx.Err(); err != nil {
			return allIssues, err
		}
		issues, err := processor(engine, source)
		if err != nil {
			if logger != nil {
				logger.Error("Error processing source", zap.Int("source", i), zap.Error(err))
			}
			return nil, err
		}
		allIssues = append(allIssues, issues...)
	}

	return allIssues, nil
}

func ProcessFiles(
	ctx context.Context,
	logger *zap.Logger,
	engine LintEngine,
	paths []string,
	processor func(LintEngine, string) ([]tt.Issue, error),
) ([]tt.Issue, error) {
	var allIssues []tt.Issue
	for _, path := range paths {
		issues, err := ProcessPath(ctx, logger, engine, path, processor)
		if err != nil {
			if logger != nil {
				logger.Error("Error processing path", zap.String("path", path), zap.Error(err))
			}
			return nil, err
		}
		allIssues = append(allIssues, issues...)
	}

	return allIssues, nil
}

// ProcessPath lints a file, or every target file below a directory.
// Files of a directory are processed concurrently; a file that fails
// does not stop the others, and the failures are returned together
// with the issues of the files that succeeded.
func ProcessPath(
	ctx context.Context,
	logger *zap.Logger,
	engine LintEngine,
	path string,
	processor func(LintEngine, string) ([]tt.Issue, error),
) ([]tt.Issue, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("error accessing %s: %w", path, err)
	}

	if !info.IsDir() {
		if !hasDesiredExtension(path) {
			return nil, nil
		}
		issues, err := processor(engine, path)
		if err != nil {
			return []tt.Issue{}, err
		}
		return issues, nil
	}

	files, err := scanner.New(path, desiredExtensions...).Scan()
	if err != nil {
		return nil, fmt.Errorf("error scanning %s: %w", path, err)
	}

	var (
		mu     sync.Mutex
		issues = make([]tt.Issue, 0)
		errs   []error
	)

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetWriter(ProgressOutput),
		progressbar.OptionSetDescription(path),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))

	// limit the number of workers
	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())

	for _, file := range files {
		if ctx.Err() != nil {
			break
		}
		fp := file.Path
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			bar.Describe(filepath.Base(fp))

			fileIssues, err := processor(engine, fp)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				logger.Error("Error processing file", zap.String("file", fp), zap.Error(err))
				errs = append(errs, fmt.Errorf("%s: %w", fp, err))
			} else {
				issues = append(issues, fileIssues...)
			}
			_ = bar.Add(1)
			return nil
		})
	}
	_ = g.Wait()
	_ = bar.Finish()

	sort.SliceStable(issues, func(i, j int) bool {
		if issues[i].Filename != issues[j].Filename {
			return issues[i].Filename < issues[j].Filename
		}
		return issues[i].Start.Offset < issues[j].Start.Offset
	})

	if err := ctx.Err(); err != nil {
		return issues, err
	}
	return issues, errors.Join(errs...)
}

func ProcessFile(engine LintEngine, filePath string) ([]tt.Issue, error) {
	return engine.Run(filePath)
}

func ProcessSource(engine LintEngine, source []byte) ([]tt.Issue, error) {
	return engine.RunSource(source)
}

var desiredExtensions = []string{".ts", ".mts", ".cts"}

func hasDesiredExtension(path string) bool {
	ext := filepath.Ext(path)
	for _, e := range desiredExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Config represents the overall configuration with a name and a slice of rules.
type Config struct {
	Name        string                   `yaml:"name"`
	Rules       map[string]tt.ConfigRule `yaml:"rules"`
	IgnorePaths []string                 `yaml:"ignore-paths,omitempty"`
}

// DefaultConfig returns the configuration of every registered rule at
// its default severity and options.
func DefaultConfig() Config {
	config := Config{
		Name:  "typelint",
		Rules: make(map[string]tt.ConfigRule),
	}
	for _, name := range internal.RuleNames() {
		rule, _ := internal.NewRule(name, nil)
		cfg := tt.ConfigRule{Severity: rule.Severity()}
		if name == lints.DuplicateConstituentsRule {
			cfg.Options = map[string]any{
				"ignore-intersections": false,
				"ignore-unions":        false,
			}
		}
		config.Rules[name] = cfg
	}
	return config
}

func parseConfigurationFile(configurationPath string) (Config, error) {
	var config Config
	if configurationPath == "" {
		configurationPath = DefaultConfigFile
	}

	// Read the configuration file
	f, err := os.Open(configurationPath)
	if errors.Is(err, fs.ErrNotExist) {
		return config, nil
	}
	if err != nil {
		return config, err
	}
	defer f.Close()

	// Parse the configuration file
	decoder := yaml.NewDecoder(f)
	err = decoder.Decode(&config)
	if err != nil && !errors.Is(err, io.EOF) {
		return config, fmt.Errorf("error parsing %s: %w", configurationPath, err)
	}

	return config, nil
}
