package importer

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	pkgerrors "github.com/licenzia/inventory-importer/pkg/errors"
)

// Prompter blocks for an explicit yes/no answer before the write phase.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// Confirm asks question until the operator answers y or n, case-insensitively.
// Anything else re-prompts. A closed input stream counts as a decline.
func (p *Prompter) Confirm(question string) (bool, error) {
	for {
		fmt.Fprintf(p.out, "%s (y/n): ", question)

		line, err := p.in.ReadString('\n')
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y":
			return true, nil
		case "n":
			return false, nil
		}
		if err != nil {
			return false, pkgerrors.Wrap(pkgerrors.CodeAborted, err, "confirmation input closed")
		}
		fmt.Fprintln(p.out, "Invalid answer. Enter 'y' to continue or 'n' to abort.")
	}
}
