package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/illarion/lockdir/cmd"
	"github.com/illarion/lockdir/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "init":
		runInit(ctx, os.Args[2:])
	case "add":
		runAdd(ctx, os.Args[2:])
	case "lock":
		runLock(ctx, os.Args[2:])
	case "unlock":
		runUnlock(ctx, os.Args[2:])
	case "recover":
		runRecover(ctx, os.Args[2:])
	case "rm":
		runRm(ctx, os.Args[2:])
	case "ls", "status":
		runStatus(ctx, os.Args[2:])
	case "completion":
		runCompletion(ctx, os.Args[2:])
	case "help", "-h", "--help":
		if len(os.Args) <= 2 {
			printUsage()
			return
		}
		printCommandHelp(os.Args[2])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func addLogFlags(fs *flag.FlagSet) (*bool, *bool) {
	verbose := fs.Bool("v", false, "Verbose output")
	debug := fs.Bool("debug", false, "Debug output")
	return verbose, debug
}

func runInit(_ context.Context, args []string) {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	verbose, debug := addLogFlags(fs)
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	cmd.Init(logging.New(*verbose, *debug))
}

func runAdd(_ context.Context, args []string) {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	verbose, debug := addLogFlags(fs)
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: lockdir add <directory>")
		os.Exit(1)
	}
	cmd.Add(logging.New(*verbose, *debug), fs.Arg(0))
}

func runLock(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("lock", flag.ExitOnError)
	all := fs.Bool("all", false, "Lock every tracked folder (best-effort sweep)")
	verbose, debug := addLogFlags(fs)
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	log := logging.New(*verbose, *debug)
	if *all {
		cmd.LockAll(ctx, log)
		return
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: lockdir lock <folder> | lockdir lock --all")
		os.Exit(1)
	}
	cmd.Lock(ctx, log, fs.Arg(0))
}

func runUnlock(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("unlock", flag.ExitOnError)
	verbose, debug := addLogFlags(fs)
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: lockdir unlock <folder>")
		os.Exit(1)
	}
	cmd.Unlock(ctx, logging.New(*verbose, *debug), fs.Arg(0))
}

func runRecover(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("recover", flag.ExitOnError)
	verbose, debug := addLogFlags(fs)
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: lockdir recover <artifact.lockit>")
		os.Exit(1)
	}
	cmd.Recover(ctx, logging.New(*verbose, *debug), fs.Arg(0))
}

func runRm(_ context.Context, args []string) {
	fs := flag.NewFlagSet("rm", flag.ExitOnError)
	verbose, debug := addLogFlags(fs)
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: lockdir rm <folder>")
		os.Exit(1)
	}
	cmd.Remove(logging.New(*verbose, *debug), fs.Arg(0))
}

func runStatus(_ context.Context, args []string) {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	verbose, debug := addLogFlags(fs)
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	cmd.Status(logging.New(*verbose, *debug))
}

func runCompletion(_ context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: lockdir completion <bash|zsh|fish>")
		os.Exit(1)
	}
	cmd.Completion(args[0])
}

func printUsage() {
	fmt.Println("lockdir - Lock directories into encrypted artifacts")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  lockdir <command> [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  init        Create the folder registry and enroll a passphrase")
	fmt.Println("  add         Track a directory")
	fmt.Println("  lock        Encrypt a folder into a .lockit artifact")
	fmt.Println("  unlock      Restore a folder from its .lockit artifact")
	fmt.Println("  recover     Restore a folder from an artifact alone")
	fmt.Println("  rm          Stop tracking a folder (disk untouched)")
	fmt.Println("  ls, status  Show tracked folders and their states")
	fmt.Println("  completion  Generate shell completions")
	fmt.Println("  help        Show help for a command")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  lockdir init                    # Create registry, set passphrase")
	fmt.Println("  lockdir add ~/Documents/Notes   # Start tracking Notes")
	fmt.Println("  lockdir lock Notes              # Replace Notes with Notes.lockit")
	fmt.Println("  lockdir unlock Notes            # Restore Notes, consume artifact")
	fmt.Println("  lockdir lock --all              # Best-effort sweep over all folders")
	fmt.Println()
	fmt.Println("Use 'lockdir help <command>' for more information about a command.")
}

func printCommandHelp(command string) {
	switch command {
	case "init":
		fmt.Println("lockdir init")
		fmt.Println()
		fmt.Println("Creates the folder registry database and enrolls the passphrase")
		fmt.Println("used for authorization. The passphrase is never stored; only a")
		fmt.Println("salted verifier is kept.")
	case "add":
		fmt.Println("lockdir add <directory>")
		fmt.Println()
		fmt.Println("Registers a directory for tracking. Nothing is encrypted until")
		fmt.Println("the first 'lockdir lock'.")
	case "lock":
		fmt.Println("lockdir lock <folder> | lockdir lock --all")
		fmt.Println()
		fmt.Println("Packs the folder, encrypts it with its per-folder key and")
		fmt.Println("replaces the directory with <folder>.lockit. The key is created")
		fmt.Println("at first lock and reused afterwards; a recovery copy is stored")
		fmt.Println("under a hash of the folder's path.")
		fmt.Println()
		fmt.Println("Flags:")
		fmt.Println("  --all   Lock every tracked folder, tolerating individual failures")
	case "unlock":
		fmt.Println("lockdir unlock <folder>")
		fmt.Println()
		fmt.Println("Decrypts <folder>.lockit and restores the directory, removing the")
		fmt.Println("artifact. Fails with an authentication error if the artifact was")
		fmt.Println("tampered with; nothing is written in that case.")
	case "recover":
		fmt.Println("lockdir recover <artifact.lockit>")
		fmt.Println()
		fmt.Println("Restores a folder from its artifact alone, using the recovery key")
		fmt.Println("derived from the artifact's location. Works without a registry")
		fmt.Println("entry; the folder is re-registered on success and the artifact is")
		fmt.Println("consumed.")
	case "rm":
		fmt.Println("lockdir rm <folder>")
		fmt.Println()
		fmt.Println("Stops tracking a folder. The directory or artifact on disk is")
		fmt.Println("left exactly as it is.")
	case "ls", "status":
		fmt.Println("lockdir status")
		fmt.Println()
		fmt.Println("Shows every tracked folder with its state derived from disk.")
		fmt.Println("A folder is locked when its artifact exists and the directory")
		fmt.Println("does not; anything else is reported unlocked, with a note when")
		fmt.Println("the state is ambiguous or the stored location is stale.")
	case "completion":
		fmt.Println("lockdir completion <bash|zsh|fish>")
		fmt.Println()
		fmt.Println("Outputs shell completion script for the specified shell.")
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
	}
}
