package shell

import (
	"fmt"
	"io"
)

// Shells lists the shells with an integration script.
var Shells = []string{"bash", "zsh", "fish"}

// WriteInit writes the integration script for the named shell.
func WriteInit(w io.Writer, shell string) error {
	switch shell {
	case "bash":
		WriteBashInit(w)
	case "zsh":
		WriteZshInit(w)
	case "fish":
		WriteFishInit(w)
	default:
		return fmt.Errorf("unsupported shell %q (supported: bash, zsh, fish)", shell)
	}
	return nil
}

// WriteBashInit writes the bash shell integration script to the writer.
func WriteBashInit(w io.Writer) {
	fmt.Fprint(w, `# focusflow shell integration
__focusflow_prompt_hook() {
  eval "$(command focusflow status --env 2>/dev/null)"
}

focusflow_prompt_info() {
  command focusflow status 2>/dev/null
}

if [[ -z "$PROMPT_COMMAND" ]]; then
  PROMPT_COMMAND="__focusflow_prompt_hook"
else
  PROMPT_COMMAND="__focusflow_prompt_hook;${PROMPT_COMMAND}"
fi

eval "$(command focusflow completion bash 2>/dev/null)"
`)
}

// WriteZshInit writes the zsh shell integration script to the writer.
func WriteZshInit(w io.Writer) {
	fmt.Fprint(w, `# focusflow shell integration
__focusflow_prompt_hook() {
  eval "$(command focusflow status --env 2>/dev/null)"
}

focusflow_prompt_info() {
  command focusflow status 2>/dev/null
}

autoload -Uz add-zsh-hook
add-zsh-hook precmd __focusflow_prompt_hook

eval "$(command focusflow completion zsh 2>/dev/null)"
`)
}

// WriteFishInit writes the fish shell integration script to the writer.
func WriteFishInit(w io.Writer) {
	fmt.Fprint(w, `# focusflow shell integration
function __focusflow_prompt_hook --on-event fish_prompt
  command focusflow status --env 2>/dev/null | string replace -r '^export ' 'set -gx ' | string replace '=' ' ' | source
end

function focusflow_prompt_info
  command focusflow status 2>/dev/null
end

command focusflow completion fish 2>/dev/null | source
`)
}
