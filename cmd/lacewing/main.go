// Command lacewing is the toolchain's CLI driver: lex | parse | compile |
// list | interpret | run <file> | serve <addr> | cache <source>.
//
// Modeled on funxy's cmd/funxy/main.go: no CLI framework, a hand-rolled
// os.Args switch, each subcommand its own handle* function, a single
// recover()-guarded main() that turns a panic into "internal error: ..."
// on stderr plus exit code 1, matching spec §6's single-line-error/exit-code
// contract for every other failure path too.
package main

import (
	"fmt"
	"net"
	"os"

	"google.golang.org/grpc"

	"github.com/lacewing-lang/lacewing/internal/astjson"
	"github.com/lacewing-lang/lacewing/internal/buildinfo"
	"github.com/lacewing-lang/lacewing/internal/bytecode"
	"github.com/lacewing-lang/lacewing/internal/compiler"
	"github.com/lacewing-lang/lacewing/internal/config"
	"github.com/lacewing-lang/lacewing/internal/lexerr"
	"github.com/lacewing-lang/lacewing/internal/machine"
	"github.com/lacewing-lang/lacewing/internal/rpc"
	"github.com/lacewing-lang/lacewing/internal/store"
	"github.com/lacewing-lang/lacewing/internal/value"
)

const usage = `usage: lacewing <command> [args]

commands:
  lex <file>            report that lexing is an external collaborator
  parse <file>           report that parsing is an external collaborator
  compile <file>          compile a JSON AST file to bytecode, print disassembly
  list <file>             compile and list every chunk's index, register and param count
  interpret <file>        compile a JSON AST file and run it
  run <file.lcwb>         load a bytecode file and run it
  serve <addr>            start the CompileService gRPC server
  cache <file>            compile through the SQLite program cache
`

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "internal error: %v\n", r)
			os.Exit(1)
		}
	}()

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cfg, err := config.Load("lacewing.yaml")
	if err != nil {
		fail(err)
	}

	cmd, args := os.Args[1], os.Args[2:]
	switch cmd {
	case "lex":
		fail(lexerr.New(lexerr.Parse, "lexing is an external collaborator, not implemented by this toolchain"))
	case "parse":
		fail(lexerr.New(lexerr.Parse, "parsing is an external collaborator, not implemented by this toolchain"))
	case "compile":
		handleCompile(cfg, args)
	case "list":
		handleList(cfg, args)
	case "interpret":
		handleInterpret(cfg, args)
	case "run":
		handleRun(args)
	case "serve":
		handleServe(cfg, args)
	case "cache":
		handleCache(cfg, args)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		os.Exit(1)
	}
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, err.Error())
	os.Exit(1)
}

func requireArg(args []string, what string) string {
	if len(args) < 1 {
		fail(lexerr.New(lexerr.IO, "missing %s argument", what))
	}
	return args[0]
}

func readProgram(cfg *config.Config, path string) *compiler.Program {
	data, err := os.ReadFile(path)
	if err != nil {
		fail(lexerr.New(lexerr.IO, "reading %s: %s", path, err))
	}
	block, err := astjson.DecodeBlock(data)
	if err != nil {
		fail(lexerr.New(lexerr.Parse, "decoding %s: %s", path, err))
	}
	program, err := compiler.CompileProgram(cfg.WantsDebugInfo(), block)
	if err != nil {
		fail(err)
	}
	return program
}

func handleCompile(cfg *config.Config, args []string) {
	path := requireArg(args, "source file")
	program := readProgram(cfg, path)
	stamp := buildinfo.New(len(program.Chunks))
	fmt.Println(buildinfo.Report(stamp, true))
	fmt.Print(bytecode.Disassemble(program))
}

func handleList(cfg *config.Config, args []string) {
	path := requireArg(args, "source file")
	program := readProgram(cfg, path)
	for i, chunk := range program.Chunks {
		fmt.Printf("chunk %d: %d registers, %d params\n", i, chunk.NumRegisters, chunk.NumParams)
	}
}

func handleInterpret(cfg *config.Config, args []string) {
	path := requireArg(args, "source file")
	program := readProgram(cfg, path)
	run(program)
}

func handleRun(args []string) {
	path := requireArg(args, "bytecode file")
	program, err := bytecode.FromFile(path)
	if err != nil {
		fail(lexerr.New(lexerr.IO, "loading %s: %s", path, err))
	}
	run(program)
}

func run(program *compiler.Program) {
	m := machine.New(program)
	result, err := m.Interpret()
	if err != nil {
		fail(lexerr.New(lexerr.Runtime, "%s", err))
	}
	if result != value.Nil {
		fmt.Println(value.Repr(result))
	}
}

func handleServe(cfg *config.Config, args []string) {
	addr := cfg.ServeAddr
	if len(args) > 0 {
		addr = args[0]
	}
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		fail(lexerr.New(lexerr.IO, "listening on %s: %s", addr, err))
	}
	srv := grpc.NewServer()
	rpc.RegisterCompileServiceServer(srv, &rpc.CompileServer{DebugInfo: cfg.WantsDebugInfo()})
	fmt.Printf("lacewing: serving CompileService on %s\n", addr)
	if err := srv.Serve(lis); err != nil {
		fail(lexerr.New(lexerr.IO, "serving: %s", err))
	}
}

func handleCache(cfg *config.Config, args []string) {
	path := requireArg(args, "source file")
	data, err := os.ReadFile(path)
	if err != nil {
		fail(lexerr.New(lexerr.IO, "reading %s: %s", path, err))
	}

	db, err := store.Open(cfg.CachePath)
	if err != nil {
		fail(err)
	}
	defer db.Close()

	program, err := db.CompileCached(string(data), func(source string) (*compiler.Program, error) {
		block, err := astjson.DecodeBlock([]byte(source))
		if err != nil {
			return nil, lexerr.New(lexerr.Parse, "decoding %s: %s", path, err)
		}
		return compiler.CompileProgram(cfg.WantsDebugInfo(), block)
	})
	if err != nil {
		fail(err)
	}

	stamp := buildinfo.New(len(program.Chunks))
	fmt.Println(buildinfo.Report(stamp, true))
	fmt.Printf("cache key: %s\n", store.Hash(string(data)))
}
