/*
hilite is a console utility scanning text files with bundled or custom grammars.
Usage is

	hilite [-g <grammar.yaml>]... [-v] [--no-color] [--match-timeout <d>] [--metrics <file>] <command> ...

Commands are:

	tokens [-l <lang>] [-j] [--timeout <d>] [--max-steps <n>] <file>
		prints token tree of a file (- for stdin), the language is detected if not specified;
	check [-j] <grammar.yaml>...
		compiles grammar files and reports errors, -j dumps decoded descriptions as JSON;
	languages [-j]
		lists registered grammars;
	rank [-l <lang>]... <file>
		prints relevance of a file for each (or each listed) grammar.

-g <grammar.yaml> registers an extra grammar file, may be repeated;

-v enables verbose (development) logging, otherwise only warnings are logged;

--metrics <file> writes scan counters to a file in Prometheus text format after the command completes.
*/
package main

import (
	"os"
)

func main() {
	if e := newRootCmd().Execute(); e != nil {
		os.Exit(1)
	}
}
