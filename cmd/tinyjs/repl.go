package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/linkxzhou/mylib/tinyjs"
	"github.com/pterm/pterm"
)

const replHelp = `:help     this text
:stats    arena usage
:gc       collect garbage now
:scope    show the global scope as a tree
:dump     list every arena entity
:natives  list host functions
:quit     leave (or <ctrl>D)`

// repl reads lines until EOF or :quit. Every line is evaluated as a script in
// the same engine.
func (h *host) repl() error {
	rl, err := readline.New("tinyjs> ")
	if err != nil {
		return err
	}
	defer rl.Close()
	pterm.Info.Println("tinyjs, :help lists commands, quit with <ctrl>D")
	for {
		line, err := rl.Readline()
		if err != nil { // io.EOF or interrupt
			break
		}
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		if strings.HasPrefix(line, ":") {
			if quit := h.command(line, os.Stdout); quit {
				break
			}
			continue
		}
		h.printResult(h.e.Eval(line))
	}
	fmt.Println("Good bye!")
	return nil
}

func (h *host) printResult(v tinyjs.Value) {
	if v.IsErr() {
		pterm.Error.Println(h.e.Stringify(v))
		return
	}
	pterm.Info.Println(h.e.Stringify(v))
}

// command executes a REPL command and reports whether the REPL should end.
func (h *host) command(line string, w io.Writer) bool {
	switch strings.Fields(line)[0] {
	case ":quit", ":q":
		return true
	case ":help":
		fmt.Fprintln(w, replHelp)
	case ":stats":
		fmt.Fprintln(w, statsLine(h.e.Stats()))
	case ":gc":
		before := h.e.Stats().Used
		h.e.Collect()
		fmt.Fprintf(w, "freed %d bytes\n", before-h.e.Stats().Used)
	case ":scope":
		root := pterm.NewTreeFromLeveledList(scopeList(h.e, h.e.Global(), nil, 0, nil))
		pterm.DefaultTree.WithRoot(root).Render()
	case ":dump":
		h.e.Dump(w)
	case ":natives":
		for _, l := range h.reg.usage() {
			fmt.Fprintln(w, l)
		}
	default:
		pterm.Error.Println("unknown command " + line + ", try :help")
	}
	return false
}

func statsLine(st tinyjs.Stats) string {
	return fmt.Sprintf("used %d of %d bytes, low watermark %d, max depth %d, digest %016x",
		st.Used, st.Capacity, st.LowWatermark, st.MaxDepth, st.Digest)
}

// scopeList flattens obj into a leveled list, one item per property. Nested
// objects are expanded below their property unless they are already being
// listed.
func scopeList(e *tinyjs.Engine, obj tinyjs.Value, ll pterm.LeveledList, level int, path []tinyjs.Value) pterm.LeveledList {
	path = append(path, obj)
	e.Props(obj, func(key string, val tinyjs.Value) bool {
		if val.Type() != tinyjs.TypeObject {
			ll = append(ll, pterm.LeveledListItem{Level: level, Text: key + " = " + e.Stringify(val)})
			return true
		}
		for _, p := range path {
			if p == val {
				ll = append(ll, pterm.LeveledListItem{Level: level, Text: key + " = [Circular]"})
				return true
			}
		}
		ll = append(ll, pterm.LeveledListItem{Level: level, Text: key})
		ll = scopeList(e, val, ll, level+1, path)
		return true
	})
	return ll
}
