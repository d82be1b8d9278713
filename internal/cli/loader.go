package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"
	"gopkg.in/yaml.v3"

	"github.com/roach88/routegen/internal/compiler"
	"github.com/roach88/routegen/internal/ir"
)

// Input formats accepted by LoadAPI.
const (
	SourceCUE  = "cue"
	SourceJSON = "json"
	SourceYAML = "yaml"
)

// LoadResult is an API read from disk.
type LoadResult struct {
	API       *ir.API
	Source    string // SourceCUE, SourceJSON or SourceYAML
	FileCount int    // number of files read
}

// LoadError represents an error that occurred while loading an API.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadAPI reads an API description from path.
//
// A directory or a .cue file is loaded as a CUE instance and compiled with
// compiler.CompileAPI. A .json, .yaml or .yml file is decoded directly into
// the IR; unknown fields are rejected.
func LoadAPI(path string) (*LoadResult, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("path not found: %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing %s: %v", path, err)}
	}

	if info.IsDir() {
		return loadCUEDir(path)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".cue":
		return loadCUE(filepath.Dir(path), []string{"./" + filepath.Base(path)}, 1)
	case ".json":
		return loadIRFile(path, SourceJSON)
	case ".yaml", ".yml":
		return loadIRFile(path, SourceYAML)
	default:
		return nil, &LoadError{Code: ErrCodeUnsupported, Message: fmt.Sprintf("unsupported input %s: want a directory, .cue, .json or .yaml", path)}
	}
}

func loadCUEDir(dir string) (*LoadResult, error) {
	cueFiles, err := FindCUEFiles(dir)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}
	}
	if len(cueFiles) == 0 {
		return nil, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}
	}
	return loadCUE(dir, []string{"."}, len(cueFiles))
}

func loadCUE(dir string, args []string, fileCount int) (*LoadResult, error) {
	ctx := cuecontext.New()
	instances := load.Instances(args, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}
	}

	inst := instances[0]
	if inst.Err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, &LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}
	}

	api, err := compiler.CompileAPI(value)
	if err != nil {
		return nil, convertCompileError(err)
	}
	return &LoadResult{API: api, Source: SourceCUE, FileCount: fileCount}, nil
}

func loadIRFile(path, source string) (*LoadResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("reading %s: %v", path, err)}
	}

	api := &ir.API{}
	switch source {
	case SourceJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(api)
	default:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(api)
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeDecodeFailed, Message: fmt.Sprintf("decoding %s: %v", path, err)}
	}

	normalizeIR(api)
	return &LoadResult{API: api, Source: source, FileCount: 1}, nil
}

// normalizeIR applies the defaults CompileAPI applies to CUE input.
func normalizeIR(api *ir.API) {
	for i := range api.Namespaces {
		ns := &api.Namespaces[i]
		for j := range ns.Types {
			if ns.Types[j].Kind == "" {
				ns.Types[j].Kind = ir.DefStruct
			}
		}
	}
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// convertCompileError converts a compiler error to a LoadError with position info.
func convertCompileError(err error) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    ErrCodeCompileFailed,
			Message: fmt.Sprintf("%s: %s", compileErr.Field, compileErr.Message),
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{Code: ErrCodeGeneric, Message: err.Error()}
}

// loadErrorCode returns the code and message to report for a LoadAPI error.
func loadErrorCode(err error) (string, string) {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code, loadErr.Message
	}
	return ErrCodeGeneric, err.Error()
}

// Error code constants - unified across all CLI commands. Validation codes
// (E1xx) are defined by the compiler package.
const (
	ErrCodeGeneric       = "E001" // Generic/unknown error
	ErrCodeScanError     = "E002" // Directory scan error
	ErrCodeNoFiles       = "E003" // No CUE files found
	ErrCodeLoadFailed    = "E004" // CUE load failed
	ErrCodeNotFound      = "E005" // Path not found
	ErrCodeBuildFailed   = "E006" // CUE build failed
	ErrCodeWriteFailed   = "E007" // File write error
	ErrCodeCompileFailed = "E008" // CUE value does not describe an API
	ErrCodeDecodeFailed  = "E009" // JSON/YAML IR could not be decoded
	ErrCodeUnsupported   = "E010" // Unknown input file type
	ErrCodeConfig        = "E011" // Config file could not be read
	ErrCodeLedger        = "E012" // Ledger open/read/write error
	ErrCodeDrift         = "E013" // Generated files out of date
)
