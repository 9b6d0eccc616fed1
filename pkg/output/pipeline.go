package output

import (
	"context"
	"sync"

	"github.com/alitto/pond"
	"go.uber.org/zap"

	"github.com/angryss/idp-cli/pkg/template"
	"github.com/angryss/idp-cli/pkg/vars"
)

// Pipeline runs discovery, rendering, and writing for one generate
// invocation. The variable Context is read-only for its lifetime, so
// rendering is parallelized across discovered files when Workers > 1;
// writing stays sequential. Failure handling is fail-fast at batch
// granularity: files written before an error are not rolled back.
type Pipeline struct {
	TemplateDir string
	OutputDir   string
	// Excludes are doublestar patterns matched against relative paths.
	Excludes []string
	// Workers bounds concurrent renders; values below 2 keep rendering
	// sequential.
	Workers int
	// Strict makes unresolved variable references fail the render instead of
	// substituting empty strings.
	Strict bool
	// Warn receives override/overwrite diagnostics. Defaults to the global
	// zap sugared logger. Writes are serialized by the pipeline.
	Warn vars.WarnFunc
}

// Run renders every discovered template against ctx and writes the results
// under OutputDir, returning the absolute paths written.
func (p *Pipeline) Run(runCtx context.Context, ctx *vars.Context) ([]string, error) {
	warn := p.Warn
	if warn == nil {
		warn = zap.S().Warnf
	}
	// single serialized sink shared by concurrent renders and the writer
	var warnMu sync.Mutex
	lockedWarn := func(format string, args ...any) {
		warnMu.Lock()
		defer warnMu.Unlock()
		warn(format, args...)
	}

	files, err := template.Discover(p.TemplateDir, p.Excludes...)
	if err != nil {
		return nil, err
	}

	processor := template.NewProcessor(ctx)
	processor.Renderer().Strict = p.Strict
	processed := make([]template.ProcessedFile, len(files))

	if p.Workers > 1 && len(files) > 1 {
		pool := pond.New(p.Workers, len(files))
		defer pool.StopAndWait()
		group, _ := pool.GroupContext(runCtx)
		for i, tf := range files {
			i, tf := i, tf
			group.Submit(func() error {
				pf, err := processor.ProcessFile(tf)
				if err != nil {
					return err
				}
				processed[i] = pf
				return nil
			})
		}
		if err := group.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i, tf := range files {
			pf, err := processor.ProcessFile(tf)
			if err != nil {
				return nil, err
			}
			processed[i] = pf
		}
	}

	writer := NewWriter(p.OutputDir, lockedWarn)
	return writer.Write(processed)
}
