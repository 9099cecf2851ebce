package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
)

func handleCompletion(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("completion", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return errors.New("usage: wumbo completion [bash|zsh|fish]")
	}
	switch shell := fs.Arg(0); shell {
	case "bash":
		fmt.Fprint(stdout, bashCompletion)
	case "zsh":
		fmt.Fprint(stdout, zshCompletion)
	case "fish":
		fmt.Fprint(stdout, fishCompletion)
	default:
		return fmt.Errorf("unknown shell: %s", shell)
	}
	return nil
}

const bashCompletion = `# bash completion for wumbo
_wumbo_completions()
{
    local cur prev words cword
    _init_completion || return
    local cmds="browse list show play filters config doctor completion version help"
    if [[ ${cword} -eq 1 ]]; then
        COMPREPLY=( $(compgen -W "${cmds}" -- "$cur") )
        return
    fi
    case ${words[1]} in
        browse|tui)
            COMPREPLY=( $(compgen -W "--config --log-level --library" -- "$cur") ) ;;
        list)
            COMPREPLY=( $(compgen -W "--config --log-level --json --library --search --sort --desc --limit" -- "$cur") ) ;;
        show)
            COMPREPLY=( $(compgen -W "--config --log-level --json" -- "$cur") ) ;;
        play)
            COMPREPLY=( $(compgen -W "--config --log-level --clifp" -- "$cur") ) ;;
        filters)
            COMPREPLY=( $(compgen -W "lint show --config --log-level --library" -- "$cur") ) ;;
        config)
            COMPREPLY=( $(compgen -W "validate print wizard --config --log-level --json --out" -- "$cur") ) ;;
        doctor)
            COMPREPLY=( $(compgen -W "--config --verbose --offline" -- "$cur") ) ;;
        completion)
            COMPREPLY=( $(compgen -W "bash zsh fish" -- "$cur") ) ;;
        *) ;;
    esac
}
complete -F _wumbo_completions wumbo
`

const zshCompletion = `#compdef wumbo
# zsh completion for wumbo (basic)
_wumbo() {
  local -a cmds
  cmds=(browse list show play filters config doctor completion version help)
  if (( CURRENT == 2 )); then
    _describe 'command' cmds
    return
  fi
  case $words[2] in
    browse|tui)
      _arguments '*:options:(--config --log-level --library)'
      ;;
    list)
      _arguments '*:options:(--config --log-level --json --library --search --sort --desc --limit)'
      ;;
    show)
      _arguments '*:options:(--config --log-level --json)'
      ;;
    play)
      _arguments '*:options:(--config --log-level --clifp)'
      ;;
    filters)
      _arguments '*:options:(lint show --config --log-level --library)'
      ;;
    config)
      _arguments '*:options:(validate print wizard --config --log-level --json --out)'
      ;;
    doctor)
      _arguments '*:options:(--config --verbose --offline)'
      ;;
    completion)
      _arguments '*:shell:(bash zsh fish)'
      ;;
  esac
}
compdef _wumbo wumbo
`

const fishCompletion = `# fish completion for wumbo
complete -c wumbo -f -n "__fish_use_subcommand" -a "browse list show play filters config doctor completion version help"
complete -c wumbo -n "__fish_seen_subcommand_from list" -l library -d "Library (arcade|theatre)"
complete -c wumbo -n "__fish_seen_subcommand_from list" -l search -d "Title substring"
complete -c wumbo -n "__fish_seen_subcommand_from list" -l sort -d "Sort column (title|developer|publisher)"
complete -c wumbo -n "__fish_seen_subcommand_from list" -l desc -d "Sort descending"
complete -c wumbo -n "__fish_seen_subcommand_from list" -l limit -d "Stop after N entries"
complete -c wumbo -n "__fish_seen_subcommand_from browse tui filters" -l library -d "Library (arcade|theatre)"
complete -c wumbo -n "__fish_seen_subcommand_from play" -l clifp -d "Path to CLIFp"
complete -c wumbo -n "__fish_seen_subcommand_from filters" -a "lint show"
complete -c wumbo -n "__fish_seen_subcommand_from config" -a "validate print wizard"
complete -c wumbo -n "__fish_seen_subcommand_from doctor" -l verbose -d "Show timings"
complete -c wumbo -n "__fish_seen_subcommand_from doctor" -l offline -d "Skip the image server check"
complete -c wumbo -n "__fish_seen_subcommand_from completion" -a "bash zsh fish"
complete -c wumbo -l config -d "Path to config file"
complete -c wumbo -l log-level -d "Log level (debug|info|warn|error)"
complete -c wumbo -l json -d "JSON output"
`
