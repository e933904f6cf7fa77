package cmd

import (
	"fmt"
	"os"
)

// Completion outputs shell completion scripts
func Completion(shell string) {
	switch shell {
	case "bash":
		fmt.Print(bashCompletion)
	case "zsh":
		fmt.Print(zshCompletion)
	case "fish":
		fmt.Print(fishCompletion)
	default:
		fmt.Fprintf(os.Stderr, "Unknown shell: %s\nSupported: bash, zsh, fish\n", shell)
		os.Exit(1)
	}
}

const bashCompletion = `_lockdir() {
    local cur prev words cword
    _init_completion || return

    local commands="init add lock unlock recover rm ls status help completion"

    if [[ $cword -eq 1 ]]; then
        COMPREPLY=($(compgen -W "$commands" -- "$cur"))
        return
    fi

    local cmd="${words[1]}"
    case "$cmd" in
        add)
            _filedir -d
            ;;
        lock)
            if [[ "$cur" == -* ]]; then
                COMPREPLY=($(compgen -W "--all" -- "$cur"))
            else
                _lockdir_folders
            fi
            ;;
        unlock|rm)
            _lockdir_folders
            ;;
        recover)
            _filedir lockit
            ;;
        help)
            COMPREPLY=($(compgen -W "$commands" -- "$cur"))
            ;;
        completion)
            COMPREPLY=($(compgen -W "bash zsh fish" -- "$cur"))
            ;;
    esac
}

_lockdir_folders() {
    local folders
    folders=$(lockdir ls 2>/dev/null | sed -n 's/^  \(.*\) (.*$/\1/p')
    COMPREPLY=($(compgen -W "$folders" -- "$cur"))
}

complete -F _lockdir lockdir
`

const zshCompletion = `#compdef lockdir

_lockdir() {
    local -a commands
    commands=(
        'init:Create the registry and enroll a passphrase'
        'add:Track a directory'
        'lock:Encrypt a folder into its lock artifact'
        'unlock:Restore a folder from its lock artifact'
        'recover:Restore a folder from an artifact alone'
        'rm:Stop tracking a folder'
        'ls:Show tracked folders and states'
        'status:Show tracked folders and states'
        'help:Show help for a command'
        'completion:Generate shell completions'
    )

    _arguments -C \
        '1: :->command' \
        '*: :->args'

    case "$state" in
        command)
            _describe -t commands 'lockdir commands' commands
            ;;
        args)
            case "${words[2]}" in
                add)
                    _files -/
                    ;;
                lock)
                    _arguments '--all[Lock every tracked folder]' '*:folder:_lockdir_folders'
                    ;;
                unlock|rm)
                    _lockdir_folders
                    ;;
                recover)
                    _files -g '*.lockit'
                    ;;
                help)
                    _describe -t commands 'lockdir commands' commands
                    ;;
                completion)
                    _values 'shell' bash zsh fish
                    ;;
            esac
            ;;
    esac
}

_lockdir_folders() {
    local -a folders
    folders=(${(f)"$(lockdir ls 2>/dev/null | sed -n 's/^  \(.*\) (.*$/\1/p')"})
    _describe -t folders 'tracked folders' folders
}

_lockdir "$@"
`

const fishCompletion = `# lockdir fish completions

set -l commands init add lock unlock recover rm ls status help completion

complete -c lockdir -f

complete -c lockdir -n "not __fish_seen_subcommand_from $commands" -a init -d 'Create registry and enroll passphrase'
complete -c lockdir -n "not __fish_seen_subcommand_from $commands" -a add -d 'Track a directory'
complete -c lockdir -n "not __fish_seen_subcommand_from $commands" -a lock -d 'Encrypt a folder'
complete -c lockdir -n "not __fish_seen_subcommand_from $commands" -a unlock -d 'Restore a folder'
complete -c lockdir -n "not __fish_seen_subcommand_from $commands" -a recover -d 'Restore from artifact alone'
complete -c lockdir -n "not __fish_seen_subcommand_from $commands" -a rm -d 'Stop tracking a folder'
complete -c lockdir -n "not __fish_seen_subcommand_from $commands" -a ls -d 'Show folder states'
complete -c lockdir -n "not __fish_seen_subcommand_from $commands" -a status -d 'Show folder states'
complete -c lockdir -n "not __fish_seen_subcommand_from $commands" -a help -d 'Show help'
complete -c lockdir -n "not __fish_seen_subcommand_from $commands" -a completion -d 'Generate completions'

complete -c lockdir -n "__fish_seen_subcommand_from add" -a "(__fish_complete_directories)"
complete -c lockdir -n "__fish_seen_subcommand_from lock" -l all -d 'Lock every tracked folder'
complete -c lockdir -n "__fish_seen_subcommand_from recover" -k -a "(__fish_complete_suffix .lockit)"
complete -c lockdir -n "__fish_seen_subcommand_from help" -a "$commands"
complete -c lockdir -n "__fish_seen_subcommand_from completion" -a "bash zsh fish"
`
