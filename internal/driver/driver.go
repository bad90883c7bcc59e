// Package driver runs the lowering pipeline over one input file:
// decode, lower every function, simplify, validate, cache.
package driver

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"mirbuild/internal/diag"
	"mirbuild/internal/hir"
	"mirbuild/internal/mir"
	"mirbuild/internal/observ"
	"mirbuild/internal/project"
	"mirbuild/internal/source"
	"mirbuild/internal/trace"
	"mirbuild/internal/types"
	"mirbuild/internal/version"
)

// Options tunes one run of the pipeline.
type Options struct {
	Jobs           int // 0 means GOMAXPROCS
	Validate       bool
	Simplify       bool
	MaxDiagnostics int

	Cache    *DiskCache
	Observer PhaseObserver
	Progress ProgressFunc
}

// Result holds everything a run produced. MIR is never nil; it is empty
// when decoding failed. Functions that failed to lower are missing from it
// and have an error in Bag.
type Result struct {
	FileSet *source.FileSet
	FileID  source.FileID
	Types   *types.Interner
	HIR     *hir.Module
	MIR     *mir.Module
	Bag     *diag.Bag
	Timing  observ.Report
	Cached  bool
}

// LowerFile loads path into a fresh FileSet and lowers it.
func LowerFile(ctx context.Context, path string, opts Options) (*Result, error) {
	fs := source.NewFileSet()
	if abs, err := filepath.Abs(filepath.Dir(path)); err == nil {
		fs.SetBaseDir(abs)
	}
	id, err := fs.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return LowerModule(ctx, fs, id, opts)
}

// LowerModule decodes the file id of fs and lowers its functions, several
// at a time. Problems with the input are reported in Result.Bag; the error
// is reserved for cancellation.
func LowerModule(ctx context.Context, fs *source.FileSet, id source.FileID, opts Options) (*Result, error) {
	file := fs.Get(id)
	tracer := trace.FromContext(ctx)
	pass := trace.Begin(tracer, trace.ScopePass, "lower_module", trace.ParentID(ctx)).WithExtra("file", file.Path)

	r := &run{
		opts:   opts,
		tracer: tracer,
		parent: pass.ID(),
		timer:  observ.NewTimer(),
		res: &Result{
			FileSet: fs,
			FileID:  id,
			Types:   types.NewInterner(),
			MIR:     &mir.Module{},
			Bag:     diag.NewBag(opts.MaxDiagnostics),
		},
	}
	err := r.module(ctx, file)
	r.res.Timing = r.timer.Report()

	detail := fmt.Sprintf("%d funcs", len(r.res.MIR.Funcs))
	if r.res.Cached {
		detail += " (cached)"
	}
	pass.End(detail)
	if err != nil {
		return nil, err
	}
	return r.res, nil
}

type run struct {
	opts   Options
	tracer trace.Tracer
	parent uint64
	timer  *observ.Timer
	res    *Result
}

func (r *run) module(ctx context.Context, file *source.File) error {
	res := r.res

	done := r.phase("decode")
	m, err := hir.Decode(file.Content, res.Types, file.ID)
	if err != nil {
		done("failed")
		r.reportDecode(file.ID, err)
		return nil
	}
	done(fmt.Sprintf("%d funcs", len(m.Funcs)))
	res.HIR = m
	res.MIR.Name = m.Name

	content := project.Digest(file.Hash)
	key := cacheKey(content, file.ID, r.opts)
	hit, cacheErr := r.lookup(key, m.Name, content)
	if hit {
		return nil
	}

	for _, fn := range m.Funcs {
		r.progress(fn.Name, StageNone, StatusQueued)
	}
	funcs := make([]*mir.Func, len(m.Funcs))

	done = r.phase("lower")
	r.progress("", StageLower, StatusWorking)
	err = r.forEach(ctx, len(m.Funcs), func(i int) {
		fn := m.Funcs[i]
		r.progress(fn.Name, StageLower, StatusWorking)
		f, err := mir.LowerFunc(fn, res.Types, mir.Options{Tracer: r.tracer, TraceParent: r.parent})
		if err != nil {
			r.reportLower(fn, err)
			r.progress(fn.Name, StageLower, StatusError)
			return
		}
		funcs[i] = f
	})
	done("")
	if err != nil {
		return err
	}

	if r.opts.Simplify {
		done = r.phase("simplify")
		r.progress("", StageSimplify, StatusWorking)
		err = r.forEach(ctx, len(funcs), func(i int) {
			if funcs[i] == nil {
				return
			}
			r.progress(funcs[i].Name, StageSimplify, StatusWorking)
			mir.SimplifyCFG(funcs[i])
		})
		done("")
		if err != nil {
			return err
		}
	}

	for _, f := range funcs {
		if f != nil {
			res.MIR.Funcs = append(res.MIR.Funcs, f)
		}
	}
	mir.SortFuncs(res.MIR)

	failed := make(map[*mir.Func]bool)
	if r.opts.Validate {
		done = r.phase("validate")
		r.progress("", StageValidate, StatusWorking)
		if err := ctx.Err(); err != nil {
			done("")
			return err
		}
		for _, f := range res.MIR.Funcs {
			r.progress(f.Name, StageValidate, StatusWorking)
		}
		for _, fe := range funcErrors(mir.Validate(res.MIR, res.Types)) {
			failed[fe.Func] = true
			r.reportInvalid(fe.Func, fe.Err)
			r.progress(fe.Func.Name, StageValidate, StatusError)
		}
		done(fmt.Sprintf("%d invalid", len(failed)))
	}

	for _, f := range res.MIR.Funcs {
		if !failed[f] {
			r.progress(f.Name, StageNone, StatusDone)
		}
	}

	if cacheErr != nil {
		res.Bag.Add(diag.New(diag.SevWarning, diag.IOCacheReadError, source.Span{File: file.ID}, cacheErr.Error()))
	} else if err := r.store(key, m.Name, content); err != nil {
		res.Bag.Add(diag.New(diag.SevWarning, diag.IOCacheWriteErr, source.Span{File: file.ID}, err.Error()))
	}
	return nil
}

// lookup fills the result from the cache on a hit.
func (r *run) lookup(key project.Digest, module string, content project.Digest) (bool, error) {
	if r.opts.Cache == nil {
		return false, nil
	}
	done := r.phase("cache")
	var payload DiskPayload
	ok, err := r.opts.Cache.Get(key, &payload)
	if err != nil || !ok || !usablePayload(&payload, module, content) {
		done("miss")
		return false, err
	}
	done("hit")
	r.res.MIR.Funcs = payload.Funcs
	for _, d := range payload.Diags {
		r.res.Bag.Add(d)
	}
	r.res.Cached = true
	for _, f := range payload.Funcs {
		r.progress(f.Name, StageNone, StatusDone)
	}
	return true, nil
}

func (r *run) store(key project.Digest, module string, content project.Digest) error {
	// A truncated bag would replay as a shorter one.
	if r.opts.Cache == nil || r.res.Bag.Dropped() > 0 {
		return nil
	}
	payload := &DiskPayload{
		Schema:      diskCacheSchemaVersion,
		Version:     version.Version,
		Module:      module,
		ContentHash: content,
		Funcs:       r.res.MIR.Funcs,
		Diags:       r.res.Bag.Items(),
	}
	if err := r.opts.Cache.Put(key, payload); err != nil {
		return fmt.Errorf("cache write: %w", err)
	}
	return nil
}

// forEach runs work(0..n-1) on at most Jobs goroutines. Every index is a
// separate slot, so work needs no locking for its own output.
func (r *run) forEach(ctx context.Context, n int, work func(i int)) error {
	if n == 0 {
		return ctx.Err()
	}
	jobs := r.opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, n))
	for i := range n {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			work(i)
			return nil
		})
	}
	return g.Wait()
}

func (r *run) phase(name string) func(note string) {
	if r.opts.Observer != nil {
		r.opts.Observer(PhaseEvent{Name: name, Status: PhaseStart})
	}
	start := time.Now()
	end := r.timer.Track(name)
	return func(note string) {
		end(note)
		if r.opts.Observer != nil {
			r.opts.Observer(PhaseEvent{Name: name, Status: PhaseEnd, Elapsed: time.Since(start)})
		}
	}
}

func (r *run) progress(fn string, stage Stage, status Status) {
	if r.opts.Progress != nil {
		r.opts.Progress(ProgressEvent{Func: fn, Stage: stage, Status: status})
	}
}

func (r *run) reportDecode(file source.FileID, err error) {
	var de *hir.DecodeError
	if errors.As(err, &de) {
		r.res.Bag.Add(diag.NewError(de.Code, de.Span, err.Error()))
		return
	}
	r.res.Bag.Add(diag.NewError(diag.HirMalformed, source.Span{File: file}, err.Error()))
}

func (r *run) reportLower(fn *hir.Func, err error) {
	ie, ok := mir.AsInternal(err)
	if !ok {
		r.res.Bag.Add(diag.NewError(diag.MirInternal, fn.Span, fmt.Sprintf("fn %s: %v", fn.Name, err)))
		return
	}
	sp := ie.Span
	if sp == (source.Span{}) {
		sp = fn.Span
	}
	d := diag.NewError(ie.Code, sp, fmt.Sprintf("fn %s: %s", fn.Name, ie.Msg))
	if sp != fn.Span {
		d = d.WithNote(fn.Span, "while lowering "+fn.Name)
	}
	r.res.Bag.Add(d)
}

// reportInvalid adds one diagnostic per validation failure.
func (r *run) reportInvalid(f *mir.Func, err error) {
	for _, e := range flatten(err) {
		r.res.Bag.Add(diag.NewError(diag.MirValidate, f.Span, fmt.Sprintf("fn %s: %v", f.Name, e)))
	}
}

// funcErrors splits the result of mir.Validate by function.
func funcErrors(err error) []*mir.FuncError {
	var out []*mir.FuncError
	for _, e := range flatten(err) {
		var fe *mir.FuncError
		if errors.As(e, &fe) {
			out = append(out, fe)
		}
	}
	return out
}

func flatten(err error) []error {
	if err == nil {
		return nil
	}
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		return []error{err}
	}
	var out []error
	for _, e := range joined.Unwrap() {
		out = append(out, flatten(e)...)
	}
	return out
}
