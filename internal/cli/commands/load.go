package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/conduit-lang/esgraph/internal/cli/config"
	"github.com/conduit-lang/esgraph/internal/cli/ui"
	"github.com/conduit-lang/esgraph/internal/compiler"
	cerrors "github.com/conduit-lang/esgraph/internal/compiler/errors"
	"github.com/conduit-lang/esgraph/internal/decl"
	"github.com/conduit-lang/esgraph/internal/decl/gosource"
	"github.com/conduit-lang/esgraph/internal/decl/hclschema"
)

// reportedError marks an error whose details were already printed
type reportedError struct{ err error }

func (e reportedError) Error() string { return e.err.Error() }
func (e reportedError) Unwrap() error { return e.err }

func isReported(err error) bool {
	var r reportedError
	return errors.As(err, &r)
}

// LoadError is returned when declarations cannot be read
type LoadError struct {
	Format string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load %s declarations: %v", e.Format, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Diagnostic returns the load failure as an E300 diagnostic
func (e *LoadError) Diagnostic() cerrors.CompilerError {
	return cerrors.New(cerrors.ErrAdapterLoad, e.Error(), cerrors.SourceLocation{})
}

// loadConfig reads the configuration of the project directory and prints a
// readable message when it is invalid.
func loadConfig(stderr io.Writer) (*config.Config, error) {
	cfg, err := config.LoadFrom(projectDir)
	if err != nil {
		fmt.Fprint(stderr, ui.ConfigInvalid(err, noColor))
		return nil, reportedError{err}
	}
	return cfg, nil
}

// loadDeclarations reads the declarations cfg points at
func loadDeclarations(ctx context.Context, cfg *config.Config, log *zap.Logger) (decl.Declarations, error) {
	var (
		decls decl.Declarations
		err   error
	)
	switch cfg.Source.Format {
	case config.FormatHCL:
		decls, err = hclschema.Load(ctx, hclschema.Config{Dir: cfg.Source.Dir, Logger: log})
	default:
		decls, err = gosource.Load(ctx, gosource.Config{
			Dir:      cfg.Source.Dir,
			Patterns: cfg.Source.Patterns,
			Logger:   log,
		})
	}
	if err != nil {
		return nil, &LoadError{Format: cfg.Source.Format, Err: err}
	}
	return decls, nil
}

// compileProject loads and compiles the declarations of cfg
func compileProject(ctx context.Context, cfg *config.Config, log *zap.Logger) (*compiler.Result, error) {
	opts, err := cfg.CompilerOptions(log)
	if err != nil {
		return nil, err
	}
	decls, err := loadDeclarations(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	return compiler.Compile(decls, opts)
}
