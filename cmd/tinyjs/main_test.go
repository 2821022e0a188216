package main

import (
	"bytes"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/linkxzhou/mylib/tinyjs"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testHost(t *testing.T) (*host, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	cfg := tinyjs.DefaultConfig()
	cfg.MemorySize = 8192
	h, err := newHost(cfg, &out)
	require.NoError(t, err)
	return h, &out
}

func TestNatives(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tinyjs.cli")
	defer teardown()

	h, out := testHost(t)
	require.NoError(t, h.evalPrint("print('a', 1, {b: true}, 'c')"))
	assert.Equal(t, "a 1 {\"b\":true} c\nundefined\n", out.String())

	out.Reset()
	require.NoError(t, h.evalPrint("str(12) + str('x') + str({})"))
	assert.Equal(t, "\"12x{}\"\n", out.String())

	out.Reset()
	require.NoError(t, h.evalPrint("assert(1 === 1, 'same')"))
	assert.Equal(t, "true\n", out.String())

	_, err := h.eval("test.js", "assert(1 === 2, 'not' + ' same')")
	require.Error(t, err)
	assert.Equal(t, "test.js: ERROR: assertion failed: not same", err.Error())
	assert.ErrorIs(t, err, tinyjs.ErrNative)
	_, err = h.eval("x", "assert(false)")
	assert.EqualError(t, err, "x: ERROR: assertion failed")
	_, err = h.eval("x", "str()")
	assert.EqualError(t, err, "x: ERROR: str: 1 arg expected")

	out.Reset()
	require.NoError(t, h.evalPrint("gc()"))
	assert.Equal(t, "false\n", out.String())
}

func TestRegistryUsage(t *testing.T) {
	lines := defaultNatives(nil).usage()
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "assert "))
	assert.True(t, strings.HasPrefix(lines[1], "gc "))
	assert.True(t, strings.HasPrefix(lines[2], "print "))
	assert.True(t, strings.HasPrefix(lines[3], "str "))
}

func TestRunFiles(t *testing.T) {
	h, out := testHost(t)
	dir := t.TempDir()
	lib := filepath.Join(dir, "lib.js")
	entry := filepath.Join(dir, "main.js")
	bad := filepath.Join(dir, "bad.js")
	require.NoError(t, os.WriteFile(lib, []byte("let sq = function(x) { return x * x; };\n"), 0o644))
	require.NoError(t, os.WriteFile(entry, []byte("print(sq(7));\n"), 0o644))
	require.NoError(t, os.WriteFile(bad, []byte("let y = 1;\nnope;\n"), 0o644))

	require.NoError(t, h.runFiles([]string{lib, entry}))
	assert.Equal(t, "49\n", out.String())

	err := h.runFiles([]string{bad, entry})
	assert.ErrorIs(t, err, tinyjs.ErrNotFound)
	assert.Contains(t, err.Error(), "bad.js: ERROR: 'nope' not found")

	err = h.runFiles([]string{filepath.Join(dir, "missing.js")})
	assert.ErrorContains(t, err, "cannot read")
}

func TestRunReader(t *testing.T) {
	h, out := testHost(t)
	require.NoError(t, h.runReader("<stdin>", strings.NewReader("let a = 2;\na * 21")))
	assert.Equal(t, "42\n", out.String())
	out.Reset()
	require.NoError(t, h.runReader("<stdin>", strings.NewReader("let b = 1;")))
	assert.Equal(t, "", out.String())
	assert.Error(t, h.runReader("<stdin>", strings.NewReader("1 +")))
}

func TestCommands(t *testing.T) {
	h, _ := testHost(t)
	var w bytes.Buffer
	assert.True(t, h.command(":quit", &w))
	assert.False(t, h.command(":help", &w))
	assert.Contains(t, w.String(), ":natives")

	w.Reset()
	h.e.Eval("let s = 'tmp'; s = 0;")
	assert.False(t, h.command(":gc", &w))
	assert.Equal(t, "freed 8 bytes\n", w.String())

	w.Reset()
	h.command(":stats", &w)
	assert.Contains(t, w.String(), "of 8192 bytes")

	w.Reset()
	h.command(":natives", &w)
	assert.Contains(t, w.String(), "print")

	w.Reset()
	h.command(":dump", &w)
	assert.Contains(t, w.String(), "STR 5 [print]")
}

func TestScopeList(t *testing.T) {
	h, _ := testHost(t)
	h.e.Eval("let o = {a: 1, n: {b: 'x'}}; let c = {self: 0}; c.self = c;")
	ll := scopeList(h.e, h.e.Global(), nil, 0, nil)
	var texts []string
	for _, item := range ll {
		texts = append(texts, strings.Repeat(" ", item.Level)+item.Text)
	}
	assert.Contains(t, texts, "c")
	assert.Contains(t, texts, " self = [Circular]")
	assert.Contains(t, texts, "o")
	assert.Contains(t, texts, " n")
	assert.Contains(t, texts, "  b = \"x\"")
	assert.Contains(t, texts, " a = 1")
}

func TestEngineConfig(t *testing.T) {
	fs := flag.NewFlagSet("tinyjs", flag.ContinueOnError)
	opts, files, err := parseFlags(fs, []string{"-mem", "2048", "-gct", "0.5", "-maxdepth", "0", "a.js", "b.js"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.js", "b.js"}, files)
	cfg, err := opts.engineConfig()
	require.NoError(t, err)
	assert.Equal(t, 2048, cfg.MemorySize)
	assert.Equal(t, 0.5, cfg.GCRatio)
	assert.Equal(t, 0, cfg.MaxDepth)
	assert.Equal(t, "Error", cfg.TraceLevel)

	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("memory_size: 1024\ntrace_level: Info\n"), 0o644))
	fs = flag.NewFlagSet("tinyjs", flag.ContinueOnError)
	opts, _, err = parseFlags(fs, []string{"-config", path, "-trace", "Debug"})
	require.NoError(t, err)
	cfg, err = opts.engineConfig()
	require.NoError(t, err)
	assert.Equal(t, 1024, cfg.MemorySize)
	assert.Equal(t, 10000, cfg.MaxDepth)
	assert.Equal(t, "Debug", cfg.TraceLevel)

	fs = flag.NewFlagSet("tinyjs", flag.ContinueOnError)
	opts, _, err = parseFlags(fs, []string{"-gct", "3"})
	require.NoError(t, err)
	_, err = opts.engineConfig()
	assert.Error(t, err)
}
