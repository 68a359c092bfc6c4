package watch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/conduit-lang/esgraph/internal/compiler"
	"github.com/conduit-lang/esgraph/internal/graph"
)

// BuildFunc loads declarations and compiles them. log is tagged with the
// build id.
type BuildFunc func(ctx context.Context, log *zap.Logger) (*compiler.Result, error)

// Outcome describes one rebuild
type Outcome struct {
	BuildID     string
	Files       []string // Changed files that triggered the rebuild
	Result      *compiler.Result
	Err         error
	Fingerprint string // Hash of the serialized graph, "" when the build failed
	Changed     bool   // Fingerprint differs from the previous successful build
	Duration    time.Duration
}

// Rebuilder runs fresh compiles and tracks whether the graph changed
type Rebuilder struct {
	build BuildFunc
	log   *zap.Logger

	mu     sync.Mutex
	last   string
	builds int
}

// NewRebuilder creates a rebuilder around build
func NewRebuilder(build BuildFunc, log *zap.Logger) *Rebuilder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Rebuilder{build: build, log: log}
}

// Rebuild compiles once. Nothing is carried over from earlier builds except
// the fingerprint used for change detection.
func (r *Rebuilder) Rebuild(ctx context.Context, files []string) Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()

	start := time.Now()
	out := Outcome{BuildID: uuid.NewString(), Files: files}
	log := r.log.With(zap.String("build_id", out.BuildID))

	out.Result, out.Err = r.build(ctx, log)
	out.Duration = time.Since(start)
	r.builds++

	if out.Err != nil || out.Result == nil || out.Result.Graph == nil {
		log.Debug("rebuild failed", zap.Duration("duration", out.Duration), zap.Error(out.Err))
		return out
	}

	fp, err := Fingerprint(out.Result.Graph)
	if err != nil {
		out.Err = err
		return out
	}
	out.Fingerprint = fp
	out.Changed = fp != r.last
	r.last = fp

	log.Debug("rebuilt graph",
		zap.Int("nodes", out.Result.Graph.Len()),
		zap.Bool("changed", out.Changed),
		zap.Duration("duration", out.Duration))
	return out
}

// Builds returns the number of rebuilds run so far
func (r *Rebuilder) Builds() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.builds
}

// Fingerprint hashes the serialized graph
func Fingerprint(g *graph.Graph) (string, error) {
	data, err := graph.Serialize(g)
	if err != nil {
		return "", fmt.Errorf("failed to fingerprint graph: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
