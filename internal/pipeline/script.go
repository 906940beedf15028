package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"docscribe/internal/model"
)

// bootstrap loads the document script and calls run(**kwargs). Anything
// the script prints goes to stderr so stdout carries only the result.
const bootstrap = `import json, runpy, sys
path = sys.argv[1]
kwargs = json.load(sys.stdin)
out = sys.stdout
sys.stdout = sys.stderr
namespace = runpy.run_path(path, run_name="document_script")
run = namespace.get("run")
if not callable(run):
    sys.stderr.write("run function not found in the document script\n")
    sys.exit(3)
result = run(**kwargs)
json.dump(result, out, default=str)
`

// ScriptExecutor runs a document's data script.
type ScriptExecutor struct {
	runner Runner
	python string
	logger *slog.Logger
}

// NewScriptExecutor creates a ScriptExecutor using python for .py scripts.
func NewScriptExecutor(runner Runner, python string, logger *slog.Logger) *ScriptExecutor {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &ScriptExecutor{runner: runner, python: python, logger: logger}
}

// Command builds the invocation for scriptPath.
func (e *ScriptExecutor) Command(scriptPath string, kwargs []byte) Command {
	cmd := Command{Stdin: kwargs, Dir: filepath.Dir(scriptPath)}
	abs, err := filepath.Abs(scriptPath)
	if err != nil {
		abs = scriptPath
	}
	switch strings.ToLower(filepath.Ext(scriptPath)) {
	case ".py":
		cmd.Name, cmd.Args = e.python, []string{"-c", bootstrap, abs}
	case ".sh":
		cmd.Name, cmd.Args = "sh", []string{abs}
	case ".js":
		cmd.Name, cmd.Args = "node", []string{abs}
	default:
		cmd.Name = abs
	}
	return cmd
}

// Execute runs the script with kwargs and returns the decoded result object.
func (e *ScriptExecutor) Execute(ctx context.Context, scriptPath string, kwargs map[string]any) (map[string]any, error) {
	if kwargs == nil {
		kwargs = map[string]any{}
	}
	input, err := json.Marshal(kwargs)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to encode kwargs: %v", model.ErrScriptExecution, err)
	}

	cmd := e.Command(scriptPath, input)
	e.logger.Debug("Running document script", "script", scriptPath, "command", cmd.Name)
	res, err := e.runner.Run(ctx, cmd)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrScriptExecution, err)
	}
	if res.ExitCode != 0 {
		e.logger.Debug("Document script failed", "script", scriptPath, "exit_code", res.ExitCode, "stderr", string(res.Stderr))
		msg := res.LastStderrLine()
		if msg == "" {
			msg = fmt.Sprintf("script exited with status %d", res.ExitCode)
		}
		return nil, fmt.Errorf("%w: %s", model.ErrScriptExecution, msg)
	}

	return DecodeResult(res.Stdout)
}

// DecodeResult parses the JSON object printed by a script. Numbers become
// int64 when integral and float64 otherwise.
func DecodeResult(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: script output is not valid JSON: %v", model.ErrScriptExecution, err)
	}
	obj, ok := normalize(v).(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: script must return a JSON object", model.ErrScriptExecution)
	}
	return obj, nil
}

func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for key, item := range t {
			t[key] = normalize(item)
		}
		return t
	case []any:
		for i, item := range t {
			t[i] = normalize(item)
		}
		return t
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	}
	return v
}
