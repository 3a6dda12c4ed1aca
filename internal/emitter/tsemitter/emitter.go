// Package tsemitter renders a validated AAT as a self-contained TypeScript
// client module: type declarations, wire serializers, and a fetch-based Client
// class with one sub-client per service.
package tsemitter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/damascus-dev/damascus/internal/aat"
)

// Options controls how the TypeScript emitter writes its output.
type Options struct {
	OutDir   string // required; target directory
	FileName string // output file name; defaults to <api-name>.ts
	Force    bool   // overwrite an existing file
	DryRun   bool   // don't write, only plan
}

// PlannedFile describes a file the emitter intends to write.
type PlannedFile struct {
	RelPath string
	Size    int
	Mode    os.FileMode
}

// Result returns the planned files and the resolved output name.
type Result struct {
	FileName string
	Planned  []PlannedFile
}

// Generate renders the complete client module as a string. The AAT must have
// passed Validate; dangling references surface here as broken TypeScript.
func Generate(a *aat.AAT) (string, error) {
	if a == nil {
		return "", fmt.Errorf("tsemitter: nil AAT")
	}
	w := newWriter()

	writeFileHeader(w, a)

	if usesStreams(a) {
		w.Raw(webSocketStreamRuntime)
		w.Blank()
	}

	for _, t := range a.Types {
		if err := writeNamedType(w, t); err != nil {
			return "", err
		}
	}
	for _, t := range a.Types {
		if err := writeSerializers(w, t); err != nil {
			return "", err
		}
	}

	writeClientConfig(w, a)
	for _, service := range a.Services {
		if err := writeServiceClient(w, service); err != nil {
			return "", err
		}
	}
	writeClient(w, a)

	return w.String(), nil
}

// Emit renders the client and writes it under opts.OutDir.
func Emit(ctx context.Context, a *aat.AAT, opts Options) (*Result, error) {
	_ = ctx
	if strings.TrimSpace(opts.OutDir) == "" {
		return nil, fmt.Errorf("tsemitter: OutDir is required")
	}

	content, err := Generate(a)
	if err != nil {
		return nil, err
	}

	fileName := strings.TrimSpace(opts.FileName)
	if fileName == "" {
		fileName = toCamelCase(a.Name)
		if fileName == "" {
			fileName = "client"
		}
		fileName += ".ts"
	}

	result := &Result{
		FileName: fileName,
		Planned:  []PlannedFile{{RelPath: fileName, Size: len(content), Mode: 0o644}},
	}
	if opts.DryRun {
		return result, nil
	}
	if err := writeFile(opts.OutDir, fileName, []byte(content), opts.Force); err != nil {
		return nil, err
	}
	return result, nil
}

func writeFileHeader(w *codeWriter, a *aat.AAT) {
	w.Line("// Generated API client for " + a.Name + ". Do not edit by hand.")
	if a.Description != "" {
		w.Line("// " + a.Description)
	}
	if a.Repository != "" {
		w.Line("// Repository: " + a.Repository)
	}
	if a.Docs != "" {
		w.Line("// Docs: " + a.Docs)
	}
	w.Blank()
}

func usesStreams(a *aat.AAT) bool {
	for _, service := range a.Services {
		for _, endpoint := range service.Endpoints {
			if endpoint.Upgrade == aat.UpgradeWs || fieldUsesStream(endpoint.Response) {
				return true
			}
		}
	}
	return false
}

func fieldUsesStream(t aat.FieldType) bool {
	switch t.Kind {
	case aat.KindStream:
		return true
	case aat.KindOptional, aat.KindList, aat.KindMap:
		return fieldUsesStream(*t.Elem)
	case aat.KindTuple, aat.KindIntersection:
		for _, m := range t.Members {
			if fieldUsesStream(m) {
				return true
			}
		}
	}
	return false
}

func writeFile(outDir, name string, content []byte, force bool) error {
	abs, err := filepath.Abs(outDir)
	if err != nil {
		return fmt.Errorf("resolve out dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	target := filepath.Join(abs, name)
	if _, err := os.Stat(target); err == nil && !force {
		return fmt.Errorf("tsemitter: output file %q already exists (use --force to overwrite)", target)
	}
	// atomic write via temp file + rename
	tmp := target + ".tmp-" + time.Now().Format("20060102150405")
	if err := os.WriteFile(tmp, content, 0o644); err != nil {
		return fmt.Errorf("write temp %s: %w", name, err)
	}
	if err := os.Rename(tmp, target); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", name, err)
	}
	return nil
}
