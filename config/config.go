// Package config reads pushgp.toml run configurations.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/they4kman/experimentation/machine-learning/pushgp/gp"
	"github.com/they4kman/experimentation/machine-learning/pushgp/interp"
	"github.com/they4kman/experimentation/machine-learning/pushgp/problem"
)

type Config struct {
	Run         Run         `toml:"run"`
	Interpreter Interpreter `toml:"interpreter"`
	Problem     Problem     `toml:"problem"`

	// Path is the file the configuration was read from (set at load time).
	Path string `toml:"-"`

	// SeedDefined is set when the file gives run.seed explicitly.
	SeedDefined bool `toml:"-"`
}

// Run mirrors gp.Params.
type Run struct {
	PopulationSize         int `toml:"population-size"`
	MaxGenerations         int `toml:"max-generations"`
	ExecutionLimit         int `toml:"execution-limit"`
	MaxRandomCodeSize      int `toml:"max-random-code-size"`
	MaxPointsInProgram     int `toml:"max-points-in-program"`
	TournamentSize         int `toml:"tournament-size"`
	TrivialGeographyRadius int `toml:"trivial-geography-radius"`

	MutationPercent       int `toml:"mutation-percent"`
	CrossoverPercent      int `toml:"crossover-percent"`
	SimplificationPercent int `toml:"simplification-percent"`

	ReproductionSimplifications int `toml:"reproduction-simplifications"`
	ReportSimplifications       int `toml:"report-simplifications"`
	FinalSimplifications        int `toml:"final-simplifications"`
	SimplifyFlattenPercent      int `toml:"simplify-flatten-percent"`

	MutationMode      string  `toml:"mutation-mode"`
	FairMutationRange float64 `toml:"fair-mutation-range"`

	NodeSelectionMode            string  `toml:"node-selection-mode"`
	NodeSelectionLeafProbability float64 `toml:"node-selection-leaf-probability"`
	NodeSelectionTournamentSize  int     `toml:"node-selection-tournament-size"`

	EvaluationWorkers int   `toml:"evaluation-workers"`
	FitnessCacheSize  int   `toml:"fitness-cache-size"`
	Seed              int64 `toml:"seed"`
}

type Interpreter struct {
	// Program-shaped list of instructions, e.g. "(registered.integer input.makeinputs1)"
	InstructionSet string `toml:"instruction-set"`
	CaseSensitive  bool   `toml:"case-sensitive"`

	MinRandomInteger        int64   `toml:"min-random-integer"`
	MaxRandomInteger        int64   `toml:"max-random-integer"`
	RandomIntegerResolution int64   `toml:"random-integer-resolution"`
	MinRandomFloat          float64 `toml:"min-random-float"`
	MaxRandomFloat          float64 `toml:"max-random-float"`
	RandomFloatResolution   float64 `toml:"random-float-resolution"`

	CustomStacks []string `toml:"custom-stacks"`
}

type Problem struct {
	Kind            string      `toml:"kind"`
	Target          string      `toml:"target"`
	Inputs          [][]float64 `toml:"inputs"`
	Cases           []Case      `toml:"case"`
	NoResultPenalty float64     `toml:"no-result-penalty"`
}

type Case struct {
	Inputs   []float64 `toml:"inputs"`
	Expected float64   `toml:"expected"`
}

// Default is the configuration a file is layered on: default run parameters
// and interpreter settings, and integer regression of x*x - 3*x + 2.
func Default() *Config {
	params := gp.DefaultParams()
	settings := interp.DefaultSettings()

	inputs := make([][]float64, 0, 10)
	for x := -4; x < 6; x++ {
		inputs = append(inputs, []float64{float64(x)})
	}

	return &Config{
		Run: Run{
			PopulationSize:               params.PopulationSize,
			MaxGenerations:               params.MaxGenerations,
			ExecutionLimit:               params.ExecutionLimit,
			MaxRandomCodeSize:            params.MaxRandomCodeSize,
			MaxPointsInProgram:           params.MaxPointsInProgram,
			TournamentSize:               params.TournamentSize,
			TrivialGeographyRadius:       params.TrivialGeographyRadius,
			MutationPercent:              params.MutationPercent,
			CrossoverPercent:             params.CrossoverPercent,
			SimplificationPercent:        params.SimplificationPercent,
			ReproductionSimplifications:  params.ReproductionSimplifications,
			ReportSimplifications:        params.ReportSimplifications,
			FinalSimplifications:         params.FinalSimplifications,
			SimplifyFlattenPercent:       params.SimplifyFlattenPercent,
			MutationMode:                 string(params.MutationMode),
			FairMutationRange:            params.FairMutationRange,
			NodeSelectionMode:            string(params.NodeSelectionMode),
			NodeSelectionLeafProbability: params.NodeSelectionLeafProbability,
			NodeSelectionTournamentSize:  params.NodeSelectionTournamentSize,
			EvaluationWorkers:            params.EvaluationWorkers,
			FitnessCacheSize:             params.FitnessCacheSize,
			Seed:                         params.Seed,
		},
		Interpreter: Interpreter{
			InstructionSet:          "(registered.integer registered.exec input.makeinputs1)",
			MinRandomInteger:        settings.MinRandomInteger,
			MaxRandomInteger:        settings.MaxRandomInteger,
			RandomIntegerResolution: settings.RandomIntegerResolution,
			MinRandomFloat:          settings.MinRandomFloat,
			MaxRandomFloat:          settings.MaxRandomFloat,
			RandomFloatResolution:   settings.RandomFloatResolution,
		},
		Problem: Problem{
			Kind:            string(problem.IntegerRegression),
			Target:          "x*x - 3*x + 2",
			Inputs:          inputs,
			NoResultPenalty: 1000,
		},
	}
}

// Load reads the file at path over the defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	c.Path = path
	return c, nil
}

// Parse reads TOML text over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	c := Default()

	md, err := toml.Decode(string(data), c)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown key %s", undecoded[0])
	}

	c.SeedDefined = md.IsDefined("run", "seed")

	// explicit cases replace the default target
	if md.IsDefined("problem", "case") && !md.IsDefined("problem", "target") {
		c.Problem.Target = ""
		c.Problem.Inputs = nil
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	if err := c.Params().Validate(); err != nil {
		return fmt.Errorf("[run] %w", err)
	}

	switch problem.Kind(c.Problem.Kind) {
	case problem.IntegerRegression, problem.FloatRegression:
	default:
		return fmt.Errorf("[problem] unknown kind %q", c.Problem.Kind)
	}
	if c.Problem.Target == "" && len(c.Problem.Cases) == 0 {
		return fmt.Errorf("[problem] needs a target or explicit cases")
	}
	return nil
}

func (c *Config) Params() *gp.Params {
	return &gp.Params{
		PopulationSize:               c.Run.PopulationSize,
		MaxGenerations:               c.Run.MaxGenerations,
		ExecutionLimit:               c.Run.ExecutionLimit,
		MaxRandomCodeSize:            c.Run.MaxRandomCodeSize,
		MaxPointsInProgram:           c.Run.MaxPointsInProgram,
		TournamentSize:               c.Run.TournamentSize,
		TrivialGeographyRadius:       c.Run.TrivialGeographyRadius,
		MutationPercent:              c.Run.MutationPercent,
		CrossoverPercent:             c.Run.CrossoverPercent,
		SimplificationPercent:        c.Run.SimplificationPercent,
		ReproductionSimplifications:  c.Run.ReproductionSimplifications,
		ReportSimplifications:        c.Run.ReportSimplifications,
		FinalSimplifications:         c.Run.FinalSimplifications,
		SimplifyFlattenPercent:       c.Run.SimplifyFlattenPercent,
		MutationMode:                 gp.MutationMode(c.Run.MutationMode),
		FairMutationRange:            c.Run.FairMutationRange,
		NodeSelectionMode:            gp.NodeSelectionMode(c.Run.NodeSelectionMode),
		NodeSelectionLeafProbability: c.Run.NodeSelectionLeafProbability,
		NodeSelectionTournamentSize:  c.Run.NodeSelectionTournamentSize,
		EvaluationWorkers:            c.Run.EvaluationWorkers,
		FitnessCacheSize:             c.Run.FitnessCacheSize,
		Seed:                         c.Run.Seed,
	}
}

func (c *Config) Settings() interp.Settings {
	settings := interp.DefaultSettings()
	settings.CaseSensitive = c.Interpreter.CaseSensitive
	settings.MinRandomInteger = c.Interpreter.MinRandomInteger
	settings.MaxRandomInteger = c.Interpreter.MaxRandomInteger
	settings.RandomIntegerResolution = c.Interpreter.RandomIntegerResolution
	settings.MinRandomFloat = c.Interpreter.MinRandomFloat
	settings.MaxRandomFloat = c.Interpreter.MaxRandomFloat
	settings.RandomFloatResolution = c.Interpreter.RandomFloatResolution
	settings.MaxRandomCodeSize = c.Run.MaxRandomCodeSize
	settings.MaxPointsInProgram = c.Run.MaxPointsInProgram
	settings.Seed = c.Run.Seed
	return settings
}

// NewInterpreter builds an interpreter with the custom stacks and the
// instruction set of c.
func (c *Config) NewInterpreter() (*interp.Interpreter, error) {
	in := interp.New(c.Settings())
	for _, name := range c.Interpreter.CustomStacks {
		if err := in.AddStack(name); err != nil {
			return nil, fmt.Errorf("[interpreter] %w", err)
		}
	}
	if err := in.SetInstructionText(c.Interpreter.InstructionSet); err != nil {
		return nil, fmt.Errorf("[interpreter] instruction-set: %w", err)
	}
	return in, nil
}

func (c *Config) NewProblem() (*problem.Regression, error) {
	def := problem.Definition{
		Kind:            problem.Kind(c.Problem.Kind),
		Target:          c.Problem.Target,
		Inputs:          c.Problem.Inputs,
		NoResultPenalty: c.Problem.NoResultPenalty,
	}
	for _, cs := range c.Problem.Cases {
		def.Cases = append(def.Cases, problem.Case{Inputs: cs.Inputs, Expected: cs.Expected})
	}

	p, err := problem.New(def)
	if err != nil {
		return nil, fmt.Errorf("[problem] %w", err)
	}
	return p, nil
}
