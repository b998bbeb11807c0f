/*
Copyright (C) 2023, 2024  Carl-Philip Hänsch

    This program is free software: you can redistribute it and/or modify
    it under the terms of the GNU General Public License as published by
    the Free Software Foundation, either version 3 of the License, or
    (at your option) any later version.

    This program is distributed in the hope that it will be useful,
    but WITHOUT ANY WARRANTY; without even the implied warranty of
    MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
    GNU General Public License for more details.

    You should have received a copy of the GNU General Public License
    along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/chzyer/readline"
)

const replPrompt = "\033[32mgraph>\033[0m "

// replLoop compiles and plots one relation per line, exactly the
// anti-panic-wrapped shape of scm.Repl: readline for history/editing,
// a recover() around each turn so one bad relation never kills the
// session, and an exit on Ctrl-D or Ctrl-C on an empty line.
func replLoop(p *program, ctx context.Context) {
	l, err := readline.NewEx(&readline.Config{
		Prompt:            replPrompt,
		HistoryFile:       ".inari-graph-history.tmp",
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		fmt.Println("repl:", err)
		return
	}
	defer l.Close()
	l.CaptureExitSignal()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		line, err := l.Readline()
		if err == readline.ErrInterrupt {
			if line == "" {
				return
			}
			continue
		} else if err == io.EOF {
			return
		} else if err != nil {
			fmt.Println("repl:", err)
			return
		}
		if line == "" {
			continue
		}
		func() {
			defer func() {
				if r := recover(); r != nil {
					fmt.Println("panic:", r)
				}
			}()
			p.runOnce(ctx, line)
		}()
	}
}
